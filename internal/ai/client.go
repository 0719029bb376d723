// Package ai talks to the assistant service that analyzes documents, drafts
// scenario recommendations and answers chat messages.
package ai

import (
	"context"

	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/shopspring/decimal"
)

// Client is the AI collaborator used by background jobs and the chat handler.
type Client interface {
	Recommend(ctx context.Context, req RecommendationRequest) ([]string, error)
	AnalyzeReceipt(ctx context.Context, doc Document) (*ReceiptAnalysis, error)
	ParseTaxCard(ctx context.Context, doc Document) (*TaxCardAnalysis, error)
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
}

// Document is an uploaded file handed to the analysis endpoints.
type Document struct {
	Data        []byte
	Filename    string
	ContentType string
}

// RecommendationRequest carries the scenario data the recommendation
// endpoint reasons about.
type RecommendationRequest struct {
	ScenarioID string          `json:"scenarioId"`
	RegimeKey  string          `json:"regimeKey"`
	Input      scenario.Input  `json:"input"`
	Result     scenario.Result `json:"result"`
}

// ReceiptAnalysis is the OCR output for a receipt. Raw holds the full service
// response for storage.
type ReceiptAnalysis struct {
	Merchant string           `json:"merchant"`
	Total    *decimal.Decimal `json:"total,omitempty"`
	Date     string           `json:"date,omitempty"`
	Category string           `json:"category,omitempty"`
	Raw      map[string]any   `json:"-"`
}

// TaxCardAnalysis holds the withholding fields read from a tax card.
// Rates are percentages.
type TaxCardAnalysis struct {
	TaxYear        int             `json:"taxYear"`
	BaseRate       decimal.Decimal `json:"baseRate"`
	AdditionalRate decimal.Decimal `json:"additionalRate"`
	IncomeLimit    decimal.Decimal `json:"incomeLimit"`
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a user message plus prior turns.
type ChatRequest struct {
	AccountID string        `json:"accountId"`
	Message   string        `json:"message"`
	History   []ChatMessage `json:"history,omitempty"`
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions,omitempty"`
}
