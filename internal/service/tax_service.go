package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/ai"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/auth"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/filestore"
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/castlemilk/taxpilot/backend/internal/search"
	"github.com/castlemilk/taxpilot/backend/internal/store"
)

// JobSubmitter queues background work and reports its progress.
// *jobs.Runner implements it.
type JobSubmitter interface {
	Submit(ctx context.Context, jobType domain.JobType, accountID, userID, subjectID string) (*domain.Job, error)
	Get(ctx context.Context, id string) (*domain.Job, error)
}

// TaxService implements api.TaxServiceHandler.
type TaxService struct {
	store           store.Store
	registry        *scenario.Registry
	jobs            JobSubmitter
	files           filestore.Store
	ai              ai.Client
	index           search.Index
	schedulerSecret string
	now             func() time.Time
}

var _ api.TaxServiceHandler = (*TaxService)(nil)

// NewTaxService creates the service. A nil registry uses the default strategy
// only.
func NewTaxService(s store.Store, registry *scenario.Registry) *TaxService {
	if registry == nil {
		registry = scenario.NewDefaultRegistry()
	}
	return &TaxService{
		store:    s,
		registry: registry,
		now:      time.Now,
	}
}

// SetJobRunner enables scenario runs and document processing.
func (s *TaxService) SetJobRunner(jobs JobSubmitter) {
	s.jobs = jobs
}

// SetFileStore sets where uploaded documents are kept.
func (s *TaxService) SetFileStore(files filestore.Store) {
	s.files = files
}

// SetAIClient sets the assistant used by Chat.
func (s *TaxService) SetAIClient(client ai.Client) {
	s.ai = client
}

// SetSearchIndex routes SearchExpenses to an external index and keeps it in
// sync with expense writes. Without one, search scans the store.
func (s *TaxService) SetSearchIndex(index search.Index) {
	s.index = index
}

// SetSchedulerSecret sets the shared secret accepted from the scheduler on
// ProcessScheduledCalendarSync.
func (s *TaxService) SetSchedulerSecret(secret string) {
	s.schedulerSecret = secret
}

// requireAccountAccess authenticates the caller and checks membership of the
// account. write additionally rejects viewers.
func (s *TaxService) requireAccountAccess(ctx context.Context, accountID string, write bool) (*auth.UserClaims, *domain.Account, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, nil, err
	}
	if accountID == "" {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("account_id is required"))
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, nil, storeError("get account", err)
	}
	if !auth.IsAccountMember(claims.UID, account) {
		return nil, nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("user is not a member of this account"))
	}
	if write && !auth.CanWriteAccount(claims.UID, account) {
		return nil, nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("viewers cannot modify account records"))
	}
	return claims, account, nil
}

// storeError maps a store failure to a Connect error.
func storeError(operation string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, auth.WrapStoreError(operation, err))
	}
	return connect.NewError(connect.CodeInternal, auth.WrapStoreError(operation, err))
}

// mapAIError converts an assistant failure to the matching Connect error.
func mapAIError(err error) *connect.Error {
	var svcErr *ai.ServiceError
	if !errors.As(err, &svcErr) {
		return connect.NewError(connect.CodeInternal, fmt.Errorf("assistant failed: %w", err))
	}

	switch svcErr.Code {
	case ai.ErrServiceUnavailable, ai.ErrServiceTimeout:
		return connect.NewError(connect.CodeUnavailable, fmt.Errorf("%s", svcErr.Message))
	case ai.ErrRateLimited:
		return connect.NewError(connect.CodeResourceExhausted, fmt.Errorf("%s", svcErr.Message))
	case ai.ErrInvalidDocument:
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s", svcErr.Message))
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("assistant failed: %s", svcErr.Message))
	}
}

// validateRange rejects windows whose end precedes their start.
func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("range end is before range start"))
	}
	return nil
}
