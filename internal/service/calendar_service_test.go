package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSyncCalendar(t *testing.T) {
	svc, ms := newTestService(t)
	seedTemplate(t, ms, "fi-vat", "vat", `{"startAt":"2024-01-15","frequency":"monthly"}`, true)
	seedTemplate(t, ms, "fi-broken", "broken", `{"frequency":"monthly"}`, true)
	seedTemplate(t, ms, "fi-retired", "retired", `{"startAt":"2024-01-10","frequency":"monthly"}`, false)

	start := date(2024, time.January, 1)
	end := date(2024, time.April, 1)
	req := &api.SyncCalendarRequest{AccountID: "acct-1", RangeStart: &start, RangeEnd: &end}
	ctx := testContextWithUser("member")

	resp, err := svc.SyncCalendar(ctx, connect.NewRequest(req))
	require.NoError(t, err)
	assert.Equal(t, int32(2), resp.Msg.Templates)
	assert.Equal(t, int32(1), resp.Msg.Warnings)
	assert.Equal(t, int32(3), resp.Msg.Occurrences)
	assert.Equal(t, int32(3), resp.Msg.Created)

	// A second sync over the same window creates nothing new.
	resp, err = svc.SyncCalendar(ctx, connect.NewRequest(req))
	require.NoError(t, err)
	assert.Equal(t, int32(3), resp.Msg.Occurrences)
	assert.Equal(t, int32(0), resp.Msg.Created)

	list, err := svc.ListCalendarEvents(ctx, connect.NewRequest(&api.ListCalendarEventsRequest{AccountID: "acct-1"}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Events, 3)
	for i, want := range []time.Time{
		date(2024, time.January, 15),
		date(2024, time.February, 15),
		date(2024, time.March, 15),
	} {
		ev := list.Msg.Events[i]
		assert.True(t, want.Equal(ev.StartAt), "event %d starts %v", i, ev.StartAt)
		assert.True(t, want.AddDate(0, 0, 1).Equal(ev.EndAt))
		assert.Equal(t, "vat deadline", ev.Title)
		assert.Equal(t, "fi-vat", ev.TemplateID)
		assert.Equal(t, domain.EventStatusUpcoming, ev.Status)
	}
}

func TestSyncCalendar_DefaultWindow(t *testing.T) {
	svc, ms := newTestService(t)
	seedTemplate(t, ms, "fi-vat", "vat", `{"startAt":"2023-06-15","frequency":"monthly"}`, true)

	resp, err := svc.SyncCalendar(testContextWithUser("owner"),
		connect.NewRequest(&api.SyncCalendarRequest{AccountID: "acct-1"}))
	require.NoError(t, err)
	// 2024-01-01 through 2025-01-01 holds Jan 15 ... Dec 15.
	assert.Equal(t, int32(12), resp.Msg.Created)
}

func TestSyncCalendar_RangeEndOnly(t *testing.T) {
	svc, ms := newTestService(t)
	seedTemplate(t, ms, "fi-vat", "vat", `{"startAt":"2023-06-15","frequency":"monthly"}`, true)
	end := date(2024, time.March, 31)

	resp, err := svc.SyncCalendar(testContextWithUser("owner"),
		connect.NewRequest(&api.SyncCalendarRequest{AccountID: "acct-1", RangeEnd: &end}))
	require.NoError(t, err)
	// Starts today, 2024-01-01: Jan 15, Feb 15, Mar 15.
	assert.Equal(t, int32(3), resp.Msg.Created)
}

func TestSyncCalendar_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	start := date(2024, time.May, 1)
	end := date(2024, time.April, 1)
	beforeToday := date(2023, time.December, 1)

	tests := []struct {
		name string
		ctx  context.Context
		req  *api.SyncCalendarRequest
		code connect.Code
	}{
		{"unauthenticated", context.Background(), &api.SyncCalendarRequest{AccountID: "acct-1"}, connect.CodeUnauthenticated},
		{"missing account", testContextWithUser("owner"), &api.SyncCalendarRequest{}, connect.CodeInvalidArgument},
		{"unknown account", testContextWithUser("owner"), &api.SyncCalendarRequest{AccountID: "nope"}, connect.CodeNotFound},
		{"non member", testContextWithUser("stranger"), &api.SyncCalendarRequest{AccountID: "acct-1"}, connect.CodePermissionDenied},
		{"viewer", testContextWithUser("viewer"), &api.SyncCalendarRequest{AccountID: "acct-1"}, connect.CodePermissionDenied},
		{"member syncing for another user", testContextWithUser("member"),
			&api.SyncCalendarRequest{AccountID: "acct-1", UserID: "admin"}, connect.CodePermissionDenied},
		{"admin syncing for a non member", testContextWithUser("admin"),
			&api.SyncCalendarRequest{AccountID: "acct-1", UserID: "stranger"}, connect.CodeInvalidArgument},
		{"inverted range", testContextWithUser("owner"),
			&api.SyncCalendarRequest{AccountID: "acct-1", RangeStart: &start, RangeEnd: &end}, connect.CodeInvalidArgument},
		{"range end before today", testContextWithUser("owner"),
			&api.SyncCalendarRequest{AccountID: "acct-1", RangeEnd: &beforeToday}, connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SyncCalendar(tt.ctx, connect.NewRequest(tt.req))
			require.Error(t, err)
			assert.Equal(t, tt.code, connect.CodeOf(err))
		})
	}
}

func TestSyncCalendar_PerUserEvents(t *testing.T) {
	svc, ms := newTestService(t)
	seedTemplate(t, ms, "fi-once", "once", `{"startAt":"2024-03-01","frequency":"once"}`, true)

	start := date(2024, time.January, 1)
	end := date(2024, time.December, 31)
	resp, err := svc.SyncCalendar(testContextWithUser("admin"), connect.NewRequest(&api.SyncCalendarRequest{
		AccountID: "acct-1", UserID: "member", RangeStart: &start, RangeEnd: &end,
	}))
	require.NoError(t, err)
	assert.Equal(t, int32(1), resp.Msg.Created)

	memberEvents, err := svc.ListCalendarEvents(testContextWithUser("member"),
		connect.NewRequest(&api.ListCalendarEventsRequest{AccountID: "acct-1"}))
	require.NoError(t, err)
	require.Len(t, memberEvents.Msg.Events, 1)
	assert.Equal(t, "member", memberEvents.Msg.Events[0].UserID)

	ownerEvents, err := svc.ListCalendarEvents(testContextWithUser("owner"),
		connect.NewRequest(&api.ListCalendarEventsRequest{AccountID: "acct-1"}))
	require.NoError(t, err)
	assert.Empty(t, ownerEvents.Msg.Events)
}

func TestProcessScheduledCalendarSync(t *testing.T) {
	svc, ms := newTestService(t)
	svc.SetSchedulerSecret("s3cret")
	seedTemplate(t, ms, "fi-vat", "vat", `{"startAt":"2024-01-15","frequency":"monthly"}`, true)
	seedTemplate(t, ms, "fi-broken", "broken", `not json`, true)
	require.NoError(t, ms.CreateAccount(context.Background(), &domain.Account{ID: "acct-2", OwnerID: "other"}))

	t.Run("rejects missing secret", func(t *testing.T) {
		_, err := svc.ProcessScheduledCalendarSync(context.Background(),
			connect.NewRequest(&api.ProcessScheduledCalendarSyncRequest{}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		req := connect.NewRequest(&api.ProcessScheduledCalendarSyncRequest{})
		req.Header().Set("X-Scheduler-Secret", "guess")
		_, err := svc.ProcessScheduledCalendarSync(context.Background(), req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("rejects non operator users", func(t *testing.T) {
		_, err := svc.ProcessScheduledCalendarSync(testContextWithUser("owner"),
			connect.NewRequest(&api.ProcessScheduledCalendarSyncRequest{}))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	})

	t.Run("syncs every account with the secret", func(t *testing.T) {
		req := connect.NewRequest(&api.ProcessScheduledCalendarSyncRequest{HorizonMonths: 3})
		req.Header().Set("X-Scheduler-Secret", "s3cret")
		resp, err := svc.ProcessScheduledCalendarSync(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int32(1), resp.Msg.ProcessedCount)
		// Jan 15, Feb 15 and Mar 15 fall inside 2024-01-01 .. 2024-04-01.
		assert.Equal(t, int32(3), resp.Msg.CreatedCount)
		assert.Equal(t, int32(1), resp.Msg.WarningCount)
		// acct-2 has no regime.
		assert.Equal(t, int32(1), resp.Msg.ErrorCount)
	})

	t.Run("operators may trigger a run", func(t *testing.T) {
		resp, err := svc.ProcessScheduledCalendarSync(testContextWithOperator("ops"),
			connect.NewRequest(&api.ProcessScheduledCalendarSyncRequest{}))
		require.NoError(t, err)
		assert.Equal(t, int32(1), resp.Msg.ProcessedCount)
		// Three of the twelve monthly events exist already.
		assert.Equal(t, int32(9), resp.Msg.CreatedCount)
	})
}

func TestCompleteCalendarEvent(t *testing.T) {
	svc, ms := newTestService(t)
	seedTemplate(t, ms, "fi-once", "once", `{"startAt":"2024-03-01","frequency":"once"}`, true)

	ctx := testContextWithUser("member")
	_, err := svc.SyncCalendar(ctx, connect.NewRequest(&api.SyncCalendarRequest{AccountID: "acct-1"}))
	require.NoError(t, err)

	list, err := svc.ListCalendarEvents(ctx, connect.NewRequest(&api.ListCalendarEventsRequest{AccountID: "acct-1"}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Events, 1)
	eventID := list.Msg.Events[0].ID

	_, err = svc.CompleteCalendarEvent(testContextWithUser("viewer"),
		connect.NewRequest(&api.CompleteCalendarEventRequest{EventID: eventID}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = svc.CompleteCalendarEvent(ctx, connect.NewRequest(&api.CompleteCalendarEventRequest{EventID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	resp, err := svc.CompleteCalendarEvent(ctx, connect.NewRequest(&api.CompleteCalendarEventRequest{EventID: eventID}))
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusCompleted, resp.Msg.Event.Status)
	require.NotNil(t, resp.Msg.Event.CompletedAt)
	assert.True(t, testNow.Equal(*resp.Msg.Event.CompletedAt))

	// Re-syncing keeps the completion.
	_, err = svc.SyncCalendar(ctx, connect.NewRequest(&api.SyncCalendarRequest{AccountID: "acct-1"}))
	require.NoError(t, err)
	stored, err := ms.GetCalendarEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusCompleted, stored.Status)
}
