package ai

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// StubClient answers deterministically without a network call. It backs
// local development and tests.
type StubClient struct{}

// NewStubClient creates a stub AI client.
func NewStubClient() *StubClient {
	return &StubClient{}
}

var _ Client = (*StubClient)(nil)

// Recommend derives canned hints from the scenario figures.
func (c *StubClient) Recommend(ctx context.Context, req RecommendationRequest) ([]string, error) {
	var recs []string
	if req.Result.Breakdown.Deductions.IsZero() {
		recs = append(recs, "No deductions recorded. Check commuting, union fees and work equipment costs.")
	}
	if req.Result.Breakdown.EffectiveRate.GreaterThan(decimal.NewFromFloat(0.3)) {
		recs = append(recs, "Effective rate is above 30%. Review voluntary pension contributions.")
	}
	if len(req.Input.LifeEvents) > 0 {
		recs = append(recs, "Life events were recorded. Request a revised tax card if income changes.")
	}
	if len(recs) == 0 {
		recs = append(recs, "No changes suggested for this scenario.")
	}
	return recs, nil
}

// AnalyzeReceipt reports the file name as the merchant and no total.
func (c *StubClient) AnalyzeReceipt(ctx context.Context, doc Document) (*ReceiptAnalysis, error) {
	if len(doc.Data) == 0 {
		return nil, &ServiceError{Code: ErrInvalidDocument, Operation: "analyze-receipt", Message: "empty document"}
	}
	merchant := strings.TrimSuffix(filepath.Base(doc.Filename), filepath.Ext(doc.Filename))
	return &ReceiptAnalysis{
		Merchant: merchant,
		Raw: map[string]any{
			"merchant": merchant,
			"source":   "stub",
			"bytes":    len(doc.Data),
		},
	}, nil
}

// ParseTaxCard cannot read documents and always fails without retry.
func (c *StubClient) ParseTaxCard(ctx context.Context, doc Document) (*TaxCardAnalysis, error) {
	return nil, &ServiceError{
		Code:      ErrServiceUnavailable,
		Operation: "parse-taxcard",
		Message:   fmt.Sprintf("no analysis backend configured for %s", doc.Filename),
	}
}

// Chat echoes the message with a fixed hint.
func (c *StubClient) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	msg := strings.TrimSpace(req.Message)
	return &ChatReply{
		Reply: fmt.Sprintf("You asked: %q. Keep receipts for deductible expenses; the calendar lists your upcoming deadlines.", msg),
		Suggestions: []string{
			"Show my upcoming deadlines",
			"Run my latest scenario",
		},
	}, nil
}
