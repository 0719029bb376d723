package service

import (
	"context"
	"encoding/json"
	"testing"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertTaxRegime(t *testing.T) {
	svc, ms := newTestService(t)

	_, err := svc.UpsertTaxRegime(testContextWithUser("owner"), connect.NewRequest(&api.UpsertTaxRegimeRequest{
		Regime: domain.TaxRegime{Code: "se", Name: "Sweden"},
	}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	ops := testContextWithOperator("ops")
	_, err = svc.UpsertTaxRegime(ops, connect.NewRequest(&api.UpsertTaxRegimeRequest{Regime: domain.TaxRegime{Name: "Nameless"}}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	resp, err := svc.UpsertTaxRegime(ops, connect.NewRequest(&api.UpsertTaxRegimeRequest{
		Regime: domain.TaxRegime{Code: " se ", Name: "Sweden", Active: true},
	}))
	require.NoError(t, err)
	assert.Equal(t, "se", resp.Msg.Regime.ID)

	stored, err := ms.GetTaxRegime(context.Background(), "se")
	require.NoError(t, err)
	assert.Equal(t, "Sweden", stored.Name)
}

func TestUpsertEventTemplate(t *testing.T) {
	svc, ms := newTestService(t)
	ops := testContextWithOperator("ops")

	valid := json.RawMessage(`{"startAt":"2024-04-30","frequency":"yearly"}`)

	tests := []struct {
		name     string
		ctx      context.Context
		template domain.EventTemplate
		code     connect.Code
	}{
		{"non operator", testContextWithUser("owner"), domain.EventTemplate{Code: "x", RegimeID: "fi", RuleJSON: valid}, connect.CodePermissionDenied},
		{"missing code", ops, domain.EventTemplate{RegimeID: "fi", RuleJSON: valid}, connect.CodeInvalidArgument},
		{"rule without anchor", ops, domain.EventTemplate{Code: "x", RegimeID: "fi", RuleJSON: json.RawMessage(`{"frequency":"yearly"}`)}, connect.CodeInvalidArgument},
		{"unknown regime", ops, domain.EventTemplate{Code: "x", RegimeID: "xx", RuleJSON: valid}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertEventTemplate(tt.ctx, connect.NewRequest(&api.UpsertEventTemplateRequest{Template: tt.template}))
			require.Error(t, err)
			assert.Equal(t, tt.code, connect.CodeOf(err))
		})
	}

	resp, err := svc.UpsertEventTemplate(ops, connect.NewRequest(&api.UpsertEventTemplateRequest{
		Template: domain.EventTemplate{Code: "annual-return", RegimeID: "fi", Description: "Annual return", RuleJSON: valid, Active: true},
	}))
	require.NoError(t, err)
	assert.Equal(t, "fi-annual-return", resp.Msg.Template.ID)

	active, err := ms.ListActiveTemplates(context.Background(), "fi")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "annual-return", active[0].Code)
}
