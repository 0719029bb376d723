package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/auth"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/recurrence"
)

const (
	defaultSyncHorizonMonths = 12
	maxSyncHorizonMonths     = 60
)

type syncStats struct {
	templates   int32
	occurrences int32
	created     int32
	warnings    int32
}

// SyncCalendar expands the active templates of the account's regime over the
// requested window and upserts one event per occurrence. A template with a
// bad rule is logged and skipped.
func (s *TaxService) SyncCalendar(ctx context.Context, req *connect.Request[api.SyncCalendarRequest]) (*connect.Response[api.SyncCalendarResponse], error) {
	claims, account, err := s.requireAccountAccess(ctx, req.Msg.AccountID, true)
	if err != nil {
		return nil, err
	}

	userID := req.Msg.UserID
	if userID != "" && userID != claims.UID {
		if !auth.IsAccountAdminOrOwner(claims.UID, account) {
			return nil, connect.NewError(connect.CodePermissionDenied,
				fmt.Errorf("cannot sync another member's calendar"))
		}
		if !auth.IsAccountMember(userID, account) {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("user %s is not a member of this account", userID))
		}
	}

	start, end := s.syncWindow(req.Msg.RangeStart, req.Msg.RangeEnd, defaultSyncHorizonMonths)
	// A lone range end is checked against the defaulted start.
	if err := validateRange(&start, &end); err != nil {
		return nil, err
	}

	stats, err := s.syncAccount(ctx, account, userID, start, end)
	if err != nil {
		return nil, err
	}

	log.Printf("[CalendarSync] account %s: templates=%d occurrences=%d created=%d warnings=%d",
		account.ID, stats.templates, stats.occurrences, stats.created, stats.warnings)

	return connect.NewResponse(&api.SyncCalendarResponse{
		Created:     stats.created,
		Occurrences: stats.occurrences,
		Templates:   stats.templates,
		Warnings:    stats.warnings,
	}), nil
}

// ProcessScheduledCalendarSync syncs account-wide events for every account.
// It is called by Cloud Scheduler with the X-Scheduler-Secret header, or by an
// authenticated operator.
func (s *TaxService) ProcessScheduledCalendarSync(
	ctx context.Context,
	req *connect.Request[api.ProcessScheduledCalendarSyncRequest],
) (*connect.Response[api.ProcessScheduledCalendarSyncResponse], error) {

	claims, hasAuth := auth.GetUserClaims(ctx)
	if !hasAuth {
		providedSecret := req.Header().Get("X-Scheduler-Secret")
		if s.schedulerSecret == "" || providedSecret != s.schedulerSecret {
			return nil, connect.NewError(connect.CodeUnauthenticated,
				fmt.Errorf("missing or invalid authentication: provide a valid auth token or X-Scheduler-Secret header"))
		}
		log.Printf("[CalendarSync] Authenticated via scheduler secret")
	} else if !claims.Operator {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("operator privileges required"))
	}

	months := int(req.Msg.HorizonMonths)
	if months <= 0 {
		months = defaultSyncHorizonMonths
	}
	if months > maxSyncHorizonMonths {
		months = maxSyncHorizonMonths
	}
	start, end := s.syncWindow(nil, nil, months)

	var processedCount, createdCount, warningCount, errorCount int32

	pageToken := ""
	for {
		accounts, nextToken, err := s.store.ListAccounts(ctx, "", 500, pageToken)
		if err != nil {
			return nil, storeError("list accounts", err)
		}

		for _, account := range accounts {
			stats, syncErr := s.syncAccount(ctx, account, "", start, end)
			if syncErr != nil {
				log.Printf("[CalendarSync] error syncing account %s: %v", account.ID, syncErr)
				errorCount++
				continue
			}
			processedCount++
			createdCount += stats.created
			warningCount += stats.warnings
		}

		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	log.Printf("[CalendarSync] scheduled run completed: processed=%d created=%d warnings=%d errors=%d",
		processedCount, createdCount, warningCount, errorCount)

	return connect.NewResponse(&api.ProcessScheduledCalendarSyncResponse{
		ProcessedCount: processedCount,
		CreatedCount:   createdCount,
		WarningCount:   warningCount,
		ErrorCount:     errorCount,
	}), nil
}

// syncWindow fills in a missing window bound. The default window starts at
// midnight UTC today and spans months.
func (s *TaxService) syncWindow(rangeStart, rangeEnd *time.Time, months int) (time.Time, time.Time) {
	var start time.Time
	if rangeStart != nil {
		start = *rangeStart
	} else {
		now := s.now().UTC()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	end := start.AddDate(0, months, 0)
	if rangeEnd != nil {
		end = *rangeEnd
	}
	return start, end
}

func (s *TaxService) syncAccount(ctx context.Context, account *domain.Account, userID string, start, end time.Time) (syncStats, error) {
	var stats syncStats
	if account.RegimeID == "" {
		return stats, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("account %s has no tax regime", account.ID))
	}

	templates, err := s.store.ListActiveTemplates(ctx, account.RegimeID)
	if err != nil {
		return stats, storeError("list templates", err)
	}

	for _, tmpl := range templates {
		stats.templates++

		occurrences, warning := recurrence.Expand(tmpl.RuleJSON, start, end)
		if warning != nil {
			log.Printf("[CalendarSync] skipping template %s (%s): %v", tmpl.ID, tmpl.Code, warning)
			stats.warnings++
			continue
		}

		title := tmpl.Description
		if title == "" {
			title = tmpl.Code
		}
		for _, occ := range occurrences {
			stats.occurrences++
			event := &domain.CalendarEvent{
				AccountID:  account.ID,
				UserID:     userID,
				TemplateID: tmpl.ID,
				Code:       tmpl.Code,
				Title:      title,
				StartAt:    occ.StartAt,
				EndAt:      occ.EndAt,
				Status:     domain.EventStatusUpcoming,
			}
			created, err := s.store.UpsertCalendarEvent(ctx, event)
			if err != nil {
				return stats, storeError("upsert calendar event", err)
			}
			if created {
				stats.created++
			}
		}
	}
	return stats, nil
}

// ListCalendarEvents lists the account's events visible to the caller.
func (s *TaxService) ListCalendarEvents(ctx context.Context, req *connect.Request[api.ListCalendarEventsRequest]) (*connect.Response[api.ListCalendarEventsResponse], error) {
	claims, _, err := s.requireAccountAccess(ctx, req.Msg.AccountID, false)
	if err != nil {
		return nil, err
	}
	if err := validateRange(req.Msg.From, req.Msg.To); err != nil {
		return nil, err
	}

	events, nextToken, err := s.store.ListCalendarEvents(ctx, req.Msg.AccountID, claims.UID,
		req.Msg.From, req.Msg.To, auth.NormalizePageSize(req.Msg.PageSize), req.Msg.PageToken)
	if err != nil {
		return nil, storeError("list calendar events", err)
	}

	return connect.NewResponse(&api.ListCalendarEventsResponse{
		Events:        events,
		NextPageToken: nextToken,
	}), nil
}

// CompleteCalendarEvent marks an event done. Completing an event twice keeps
// the first completion time.
func (s *TaxService) CompleteCalendarEvent(ctx context.Context, req *connect.Request[api.CompleteCalendarEventRequest]) (*connect.Response[api.CompleteCalendarEventResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	if req.Msg.EventID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("event_id is required"))
	}

	event, err := s.store.GetCalendarEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, storeError("get calendar event", err)
	}

	claims, _, err := s.requireAccountAccess(ctx, event.AccountID, true)
	if err != nil {
		return nil, err
	}
	if event.UserID != "" && event.UserID != claims.UID {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("cannot complete another member's event"))
	}

	if event.Status == domain.EventStatusCompleted {
		return connect.NewResponse(&api.CompleteCalendarEventResponse{Event: event}), nil
	}

	now := s.now().UTC()
	event.Status = domain.EventStatusCompleted
	event.CompletedAt = &now
	if err := s.store.UpdateCalendarEvent(ctx, event); err != nil {
		return nil, storeError("update calendar event", err)
	}

	return connect.NewResponse(&api.CompleteCalendarEventResponse{Event: event}), nil
}
