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
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/castlemilk/taxpilot/backend/internal/store"
	"github.com/google/uuid"
)

// CreateScenario creates a named scenario. Without a regime key the scenario
// uses the strategy of the account's regime.
func (s *TaxService) CreateScenario(ctx context.Context, req *connect.Request[api.CreateScenarioRequest]) (*connect.Response[api.CreateScenarioResponse], error) {
	claims, account, err := s.requireAccountAccess(ctx, req.Msg.AccountID, true)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name is required"))
	}

	regimeKey := req.Msg.RegimeKey
	if regimeKey == "" {
		regimeKey, err = s.accountRegimeKey(ctx, account)
		if err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	sc := &domain.Scenario{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		UserID:    claims.UID,
		Name:      name,
		RegimeKey: regimeKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateScenario(ctx, sc); err != nil {
		return nil, storeError("create scenario", err)
	}

	return connect.NewResponse(&api.CreateScenarioResponse{Scenario: sc}), nil
}

func (s *TaxService) accountRegimeKey(ctx context.Context, account *domain.Account) (string, error) {
	regime, err := s.store.GetTaxRegime(ctx, account.RegimeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return scenario.DefaultKey, nil
		}
		return "", storeError("get tax regime", err)
	}
	if regime.Code == "" {
		return scenario.DefaultKey, nil
	}
	return regime.Code, nil
}

// ListScenarios lists an account's scenarios.
func (s *TaxService) ListScenarios(ctx context.Context, req *connect.Request[api.ListScenariosRequest]) (*connect.Response[api.ListScenariosResponse], error) {
	if _, _, err := s.requireAccountAccess(ctx, req.Msg.AccountID, false); err != nil {
		return nil, err
	}

	scenarios, nextToken, err := s.store.ListScenarios(ctx, req.Msg.AccountID, auth.NormalizePageSize(req.Msg.PageSize), req.Msg.PageToken)
	if err != nil {
		return nil, storeError("list scenarios", err)
	}

	return connect.NewResponse(&api.ListScenariosResponse{
		Scenarios:     scenarios,
		NextPageToken: nextToken,
	}), nil
}

// loadScenario fetches a scenario and checks the caller's access to its account.
func (s *TaxService) loadScenario(ctx context.Context, scenarioID string, write bool) (*auth.UserClaims, *domain.Scenario, error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, nil, err
	}
	if scenarioID == "" {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("scenario_id is required"))
	}

	sc, err := s.store.GetScenario(ctx, scenarioID)
	if err != nil {
		return nil, nil, storeError("get scenario", err)
	}
	claims, _, err := s.requireAccountAccess(ctx, sc.AccountID, write)
	if err != nil {
		return nil, nil, err
	}
	return claims, sc, nil
}

// SaveScenarioInput stores a new input version for a scenario.
func (s *TaxService) SaveScenarioInput(ctx context.Context, req *connect.Request[api.SaveScenarioInputRequest]) (*connect.Response[api.SaveScenarioInputResponse], error) {
	_, sc, err := s.loadScenario(ctx, req.Msg.ScenarioID, true)
	if err != nil {
		return nil, err
	}

	record := &domain.ScenarioInputRecord{
		ScenarioID: sc.ID,
		Input:      req.Msg.Input,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.CreateScenarioInput(ctx, record); err != nil {
		return nil, storeError("save scenario input", err)
	}

	return connect.NewResponse(&api.SaveScenarioInputResponse{Input: record}), nil
}

// RunScenario queues a calculation of the scenario's latest input.
func (s *TaxService) RunScenario(ctx context.Context, req *connect.Request[api.RunScenarioRequest]) (*connect.Response[api.RunScenarioResponse], error) {
	claims, sc, err := s.loadScenario(ctx, req.Msg.ScenarioID, true)
	if err != nil {
		return nil, err
	}
	if s.jobs == nil {
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("job runner is not configured"))
	}

	if _, err := s.store.GetLatestScenarioInput(ctx, sc.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, connect.NewError(connect.CodeFailedPrecondition,
				fmt.Errorf("scenario %s has no saved input", sc.ID))
		}
		return nil, storeError("get scenario input", err)
	}

	job, err := s.jobs.Submit(ctx, domain.JobScenarioCalculate, sc.AccountID, claims.UID, sc.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to queue scenario run: %w", err))
	}

	return connect.NewResponse(&api.RunScenarioResponse{Job: job}), nil
}

// GetScenarioResult returns the latest calculated result.
func (s *TaxService) GetScenarioResult(ctx context.Context, req *connect.Request[api.GetScenarioResultRequest]) (*connect.Response[api.GetScenarioResultResponse], error) {
	_, sc, err := s.loadScenario(ctx, req.Msg.ScenarioID, false)
	if err != nil {
		return nil, err
	}

	result, err := s.store.GetScenarioResult(ctx, sc.ID)
	if err != nil {
		return nil, storeError("get scenario result", err)
	}

	return connect.NewResponse(&api.GetScenarioResultResponse{Result: result}), nil
}

// CalculateScenario runs a strategy synchronously and stores nothing.
func (s *TaxService) CalculateScenario(ctx context.Context, req *connect.Request[api.CalculateScenarioRequest]) (*connect.Response[api.CalculateScenarioResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	key := req.Msg.RegimeKey
	if key == "" {
		key = scenario.DefaultKey
	}
	return connect.NewResponse(&api.CalculateScenarioResponse{
		Result: s.registry.Calculate(key, req.Msg.Input),
	}), nil
}
