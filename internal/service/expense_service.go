package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/auth"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/extraction"
	"github.com/castlemilk/taxpilot/backend/internal/search"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateExpense records an expense in an account.
func (s *TaxService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	claims, _, err := s.requireAccountAccess(ctx, req.Msg.AccountID, true)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Msg.Description)
	if description == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("description is required"))
	}
	if !req.Msg.Amount.IsPositive() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount must be positive"))
	}

	category := strings.TrimSpace(req.Msg.Category)
	if category == "" {
		category = extraction.CategoryOther
	}

	now := s.now().UTC()
	date := now
	if req.Msg.Date != nil {
		date = req.Msg.Date.UTC()
	}

	expense := &domain.Expense{
		ID:          uuid.New().String(),
		AccountID:   req.Msg.AccountID,
		UserID:      claims.UID,
		Description: description,
		Category:    category,
		Amount:      req.Msg.Amount.Round(2),
		Date:        date,
		CreatedAt:   now,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, storeError("create expense", err)
	}
	s.indexExpense(ctx, expense)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expense}), nil
}

// ListExpenses lists an account's expenses in a date range. PageTotal sums
// the returned page.
func (s *TaxService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if _, _, err := s.requireAccountAccess(ctx, req.Msg.AccountID, false); err != nil {
		return nil, err
	}
	if err := validateRange(req.Msg.StartDate, req.Msg.EndDate); err != nil {
		return nil, err
	}

	expenses, nextToken, err := s.store.ListExpenses(ctx, req.Msg.AccountID, req.Msg.StartDate, req.Msg.EndDate,
		auth.NormalizePageSize(req.Msg.PageSize), req.Msg.PageToken)
	if err != nil {
		return nil, storeError("list expenses", err)
	}

	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	return connect.NewResponse(&api.ListExpensesResponse{
		Expenses:      expenses,
		PageTotal:     total.Round(2),
		NextPageToken: nextToken,
	}), nil
}

// DeleteExpense removes an expense. Members may delete their own expenses;
// owners and admins may delete any.
func (s *TaxService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expense_id is required"))
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, storeError("get expense", err)
	}

	claims, account, err := s.requireAccountAccess(ctx, expense.AccountID, true)
	if err != nil {
		return nil, err
	}
	if expense.UserID != claims.UID && !auth.IsAccountAdminOrOwner(claims.UID, account) {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("cannot delete another member's expense"))
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, storeError("delete expense", err)
	}
	if s.index != nil {
		if err := s.index.RemoveExpense(ctx, expense.ID); err != nil {
			log.Printf("[Search] failed to remove expense %s: %v", expense.ID, err)
		}
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// SearchExpenses runs a full-text search over an account's expenses.
func (s *TaxService) SearchExpenses(ctx context.Context, req *connect.Request[api.SearchExpensesRequest]) (*connect.Response[api.SearchExpensesResponse], error) {
	if _, _, err := s.requireAccountAccess(ctx, req.Msg.AccountID, false); err != nil {
		return nil, err
	}
	if err := validateRange(req.Msg.StartDate, req.Msg.EndDate); err != nil {
		return nil, err
	}
	if req.Msg.AmountMin.IsNegative() || req.Msg.AmountMax.IsNegative() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount bounds must not be negative"))
	}
	if req.Msg.AmountMax.IsPositive() && req.Msg.AmountMin.GreaterThan(req.Msg.AmountMax) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount_min must not exceed amount_max"))
	}

	params := search.Params{
		Query:     strings.TrimSpace(req.Msg.Query),
		AccountID: req.Msg.AccountID,
		Category:  req.Msg.Category,
		AmountMin: req.Msg.AmountMin,
		AmountMax: req.Msg.AmountMax,
		StartDate: req.Msg.StartDate,
		EndDate:   req.Msg.EndDate,
		Page:      int(req.Msg.Page),
		PageSize:  int(req.Msg.PageSize),
	}

	var (
		result *search.Response
		err    error
	)
	if s.index != nil {
		result, err = s.index.Search(ctx, params)
		if err != nil {
			return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("search failed: %w", err))
		}
	} else {
		result, err = s.searchStore(ctx, params)
		if err != nil {
			return nil, err
		}
	}

	return connect.NewResponse(&api.SearchExpensesResponse{
		Hits:       result.Hits,
		TotalCount: int32(result.TotalCount),
		TotalPages: int32(result.TotalPages),
		Page:       int32(result.Page),
	}), nil
}

// searchStore loads the account's expenses in the date window and filters
// them in memory.
func (s *TaxService) searchStore(ctx context.Context, params search.Params) (*search.Response, error) {
	var expenses []*domain.Expense
	pageToken := ""
	for {
		page, next, err := s.store.ListExpenses(ctx, params.AccountID, params.StartDate, params.EndDate, 500, pageToken)
		if err != nil {
			return nil, storeError("list expenses", err)
		}
		expenses = append(expenses, page...)
		if next == "" {
			break
		}
		pageToken = next
	}
	return search.FilterExpenses(expenses, params), nil
}

// indexExpense pushes expense to the search index. Index failures are
// logged; the store stays authoritative.
func (s *TaxService) indexExpense(ctx context.Context, expense *domain.Expense) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexExpense(ctx, expense); err != nil {
		log.Printf("[Search] failed to index expense %s: %v", expense.ID, err)
	}
}
