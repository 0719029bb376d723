package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/auth"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/store"
	"github.com/google/uuid"
)

// CreateAccount creates an account owned by the caller and bound to a regime.
func (s *TaxService) CreateAccount(ctx context.Context, req *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name is required"))
	}
	if req.Msg.RegimeID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("regime_id is required"))
	}

	regime, err := s.store.GetTaxRegime(ctx, req.Msg.RegimeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("unknown tax regime %q", req.Msg.RegimeID))
		}
		return nil, storeError("get tax regime", err)
	}
	if !regime.Active {
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("tax regime %q is not active", regime.ID))
	}

	now := s.now().UTC()
	account := &domain.Account{
		ID:       uuid.New().String(),
		Name:     name,
		OwnerID:  claims.UID,
		RegimeID: regime.ID,
		Members: []domain.AccountMember{
			{UserID: claims.UID, Role: domain.RoleOwner},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, storeError("create account", err)
	}

	return connect.NewResponse(&api.CreateAccountResponse{Account: account}), nil
}

// GetAccount returns an account the caller belongs to.
func (s *TaxService) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error) {
	_, account, err := s.requireAccountAccess(ctx, req.Msg.AccountID, false)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetAccountResponse{Account: account}), nil
}

// ListAccounts lists the caller's accounts.
func (s *TaxService) ListAccounts(ctx context.Context, req *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	accounts, nextToken, err := s.store.ListAccounts(ctx, claims.UID, auth.NormalizePageSize(req.Msg.PageSize), req.Msg.PageToken)
	if err != nil {
		return nil, storeError("list accounts", err)
	}

	return connect.NewResponse(&api.ListAccountsResponse{
		Accounts:      accounts,
		NextPageToken: nextToken,
	}), nil
}

// AddAccountMember adds a user to an account or changes their role. Only
// owners and admins may do this, and the owner role cannot be granted.
func (s *TaxService) AddAccountMember(ctx context.Context, req *connect.Request[api.AddAccountMemberRequest]) (*connect.Response[api.AddAccountMemberResponse], error) {
	claims, account, err := s.requireAccountAccess(ctx, req.Msg.AccountID, true)
	if err != nil {
		return nil, err
	}
	if !auth.IsAccountAdminOrOwner(claims.UID, account) {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("only account owners and admins can manage members"))
	}
	if req.Msg.UserID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("user_id is required"))
	}
	if req.Msg.UserID == account.OwnerID {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("cannot change the owner's role"))
	}

	role := req.Msg.Role
	if role == "" {
		role = domain.RoleMember
	}
	switch role {
	case domain.RoleAdmin, domain.RoleMember, domain.RoleViewer:
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid role %q", role))
	}

	updated := false
	for i := range account.Members {
		if account.Members[i].UserID == req.Msg.UserID {
			account.Members[i].Role = role
			updated = true
			break
		}
	}
	if !updated {
		account.Members = append(account.Members, domain.AccountMember{UserID: req.Msg.UserID, Role: role})
	}

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, storeError("update account", err)
	}
	return connect.NewResponse(&api.AddAccountMemberResponse{Account: account}), nil
}
