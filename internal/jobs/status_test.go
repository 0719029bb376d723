package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStatusStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStatusStore(time.Hour)
	defer s.Stop()

	job := &domain.Job{ID: "job-1", Type: domain.JobReceiptOCR, Status: domain.JobPending, CreatedAt: time.Now()}
	require.NoError(t, s.Create(ctx, job))
	assert.Error(t, s.Create(ctx, job), "duplicate create")
	assert.Error(t, s.Create(ctx, &domain.Job{}), "missing ID")

	// stored value is a copy
	job.Status = domain.JobFailed
	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, got.Status)

	got.Status = domain.JobCompleted
	require.NoError(t, s.Update(ctx, got))
	got, err = s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, got.Status)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, s.Update(ctx, &domain.Job{ID: "missing"}), ErrJobNotFound)
}

func TestMemoryStatusStore_Expire(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStatusStore(time.Hour)
	defer s.Stop()
	s.Stop() // idempotent

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Create(ctx, &domain.Job{ID: "old", CreatedAt: base.Add(-2 * time.Hour)}))
	require.NoError(t, s.Create(ctx, &domain.Job{ID: "new", CreatedAt: base.Add(-30 * time.Minute)}))

	s.now = func() time.Time { return base }
	assert.Equal(t, 1, s.expire())

	_, err := s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = s.Get(ctx, "new")
	assert.NoError(t, err)
}
