package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendarEventID(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	id := CalendarEventID("acct-1", "user-1", "tmpl-1", start)
	assert.Equal(t, id, CalendarEventID("acct-1", "user-1", "tmpl-1", start))
	assert.Equal(t, id, CalendarEventID("acct-1", "user-1", "tmpl-1", start.In(time.FixedZone("EET", 2*3600))))

	assert.NotEqual(t, id, CalendarEventID("acct-2", "user-1", "tmpl-1", start))
	assert.NotEqual(t, id, CalendarEventID("acct-1", "", "tmpl-1", start))
	assert.NotEqual(t, id, CalendarEventID("acct-1", "user-1", "tmpl-2", start))
	assert.NotEqual(t, id, CalendarEventID("acct-1", "user-1", "tmpl-1", start.AddDate(0, 1, 0)))
}

func TestJobTerminal(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{JobPending, false},
		{JobProcessing, false},
		{JobCompleted, true},
		{JobFailed, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			job := &Job{Status: tt.status}
			assert.Equal(t, tt.want, job.Terminal())
		})
	}
}
