package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/auth"
	"github.com/castlemilk/taxpilot/backend/internal/config"
	"github.com/castlemilk/taxpilot/backend/internal/recurrence"
	"github.com/castlemilk/taxpilot/backend/internal/store"
)

// UpsertTaxRegime creates or replaces a tax regime. Operators only.
func (s *TaxService) UpsertTaxRegime(ctx context.Context, req *connect.Request[api.UpsertTaxRegimeRequest]) (*connect.Response[api.UpsertTaxRegimeResponse], error) {
	if _, err := auth.RequireOperator(ctx); err != nil {
		return nil, err
	}

	regime := req.Msg.Regime
	regime.Code = strings.TrimSpace(regime.Code)
	if regime.Code == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("regime code is required"))
	}
	if regime.ID == "" {
		regime.ID = regime.Code
	}
	if strings.TrimSpace(regime.Name) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("regime name is required"))
	}
	if !slices.Contains(s.registry.Keys(), regime.Code) {
		log.Printf("[Admin] regime %s has no registered strategy, the default applies", regime.Code)
	}

	if err := s.store.UpsertTaxRegime(ctx, &regime); err != nil {
		return nil, storeError("upsert tax regime", err)
	}
	return connect.NewResponse(&api.UpsertTaxRegimeResponse{Regime: &regime}), nil
}

// UpsertEventTemplate creates or replaces a calendar template. The rule must
// parse; a template that would only ever be skipped is rejected here.
func (s *TaxService) UpsertEventTemplate(ctx context.Context, req *connect.Request[api.UpsertEventTemplateRequest]) (*connect.Response[api.UpsertEventTemplateResponse], error) {
	if _, err := auth.RequireOperator(ctx); err != nil {
		return nil, err
	}

	tmpl := req.Msg.Template
	tmpl.Code = strings.TrimSpace(tmpl.Code)
	if tmpl.Code == "" || tmpl.RegimeID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("template code and regime_id are required"))
	}
	if _, warning := recurrence.ParseRule(tmpl.RuleJSON); warning != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, warning)
	}

	if _, err := s.store.GetTaxRegime(ctx, tmpl.RegimeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("unknown tax regime %q", tmpl.RegimeID))
		}
		return nil, storeError("get tax regime", err)
	}

	if tmpl.ID == "" {
		tmpl.ID = config.TemplateID(tmpl.RegimeID, tmpl.Code)
	}
	if err := s.store.UpsertEventTemplate(ctx, &tmpl); err != nil {
		return nil, storeError("upsert event template", err)
	}
	return connect.NewResponse(&api.UpsertEventTemplateResponse{Template: &tmpl}), nil
}
