package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/jobs"
	"github.com/castlemilk/taxpilot/backend/internal/store"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.January, 1, 9, 30, 0, 0, time.UTC)

// newTestService builds a TaxService over a seeded memory store:
// regime "fi" and account "acct-1" owned by "owner" with an admin, a member
// and a viewer.
func newTestService(t *testing.T) (*TaxService, *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	ms := store.NewMemoryStore()

	require.NoError(t, ms.UpsertTaxRegime(ctx, &domain.TaxRegime{ID: "fi", Code: "fi", Name: "Finland", Active: true}))
	require.NoError(t, ms.CreateAccount(ctx, &domain.Account{
		ID:       "acct-1",
		Name:     "Household",
		OwnerID:  "owner",
		RegimeID: "fi",
		Members: []domain.AccountMember{
			{UserID: "owner", Role: domain.RoleOwner},
			{UserID: "admin", Role: domain.RoleAdmin},
			{UserID: "member", Role: domain.RoleMember},
			{UserID: "viewer", Role: domain.RoleViewer},
		},
	}))

	svc := NewTaxService(ms, nil)
	svc.now = func() time.Time { return testNow }
	return svc, ms
}

func seedTemplate(t *testing.T, ms *store.MemoryStore, id, code, rule string, active bool) {
	t.Helper()
	require.NoError(t, ms.UpsertEventTemplate(context.Background(), &domain.EventTemplate{
		ID:          id,
		Code:        code,
		RegimeID:    "fi",
		Description: code + " deadline",
		RuleJSON:    json.RawMessage(rule),
		Active:      active,
	}))
}

// fakeJobs records submissions in memory.
type fakeJobs struct {
	submitErr error
	jobs      map[string]*domain.Job
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[string]*domain.Job{}}
}

func (f *fakeJobs) Submit(ctx context.Context, jobType domain.JobType, accountID, userID, subjectID string) (*domain.Job, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	job := &domain.Job{
		ID:        fmt.Sprintf("job-%d", len(f.jobs)+1),
		Type:      jobType,
		AccountID: accountID,
		UserID:    userID,
		SubjectID: subjectID,
		Status:    domain.JobPending,
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobs) Get(ctx context.Context, id string) (*domain.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, jobs.ErrJobNotFound)
	}
	return job, nil
}
