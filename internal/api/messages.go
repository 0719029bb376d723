// Package api defines the TaxService RPC messages and the Connect handler
// that routes them. Messages travel as JSON.
package api

import (
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/ai"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/castlemilk/taxpilot/backend/internal/search"
	"github.com/shopspring/decimal"
)

// Accounts

type CreateAccountRequest struct {
	Name     string `json:"name"`
	RegimeID string `json:"regimeId"`
}

type CreateAccountResponse struct {
	Account *domain.Account `json:"account"`
}

type GetAccountRequest struct {
	AccountID string `json:"accountId"`
}

type GetAccountResponse struct {
	Account *domain.Account `json:"account"`
}

type ListAccountsRequest struct {
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type ListAccountsResponse struct {
	Accounts      []*domain.Account `json:"accounts"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

type AddAccountMemberRequest struct {
	AccountID string             `json:"accountId"`
	UserID    string             `json:"userId"`
	Role      domain.AccountRole `json:"role"`
}

type AddAccountMemberResponse struct {
	Account *domain.Account `json:"account"`
}

// Calendar

// SyncCalendarRequest expands the account regime's templates over
// [RangeStart, RangeEnd]. UserID scopes events to one member; empty means
// account-wide events.
type SyncCalendarRequest struct {
	AccountID  string     `json:"accountId"`
	UserID     string     `json:"userId,omitempty"`
	RangeStart *time.Time `json:"rangeStart,omitempty"`
	RangeEnd   *time.Time `json:"rangeEnd,omitempty"`
}

type SyncCalendarResponse struct {
	Created     int32 `json:"created"`
	Occurrences int32 `json:"occurrences"`
	Templates   int32 `json:"templates"`
	Warnings    int32 `json:"warnings"`
}

type ProcessScheduledCalendarSyncRequest struct {
	HorizonMonths int32 `json:"horizonMonths,omitempty"`
}

type ProcessScheduledCalendarSyncResponse struct {
	ProcessedCount int32 `json:"processedCount"`
	CreatedCount   int32 `json:"createdCount"`
	WarningCount   int32 `json:"warningCount"`
	ErrorCount     int32 `json:"errorCount"`
}

type ListCalendarEventsRequest struct {
	AccountID string     `json:"accountId"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	PageSize  int32      `json:"pageSize,omitempty"`
	PageToken string     `json:"pageToken,omitempty"`
}

type ListCalendarEventsResponse struct {
	Events        []*domain.CalendarEvent `json:"events"`
	NextPageToken string                  `json:"nextPageToken,omitempty"`
}

type CompleteCalendarEventRequest struct {
	EventID string `json:"eventId"`
}

type CompleteCalendarEventResponse struct {
	Event *domain.CalendarEvent `json:"event"`
}

// Scenarios

type CreateScenarioRequest struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	RegimeKey string `json:"regimeKey,omitempty"`
}

type CreateScenarioResponse struct {
	Scenario *domain.Scenario `json:"scenario"`
}

type ListScenariosRequest struct {
	AccountID string `json:"accountId"`
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type ListScenariosResponse struct {
	Scenarios     []*domain.Scenario `json:"scenarios"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
}

type SaveScenarioInputRequest struct {
	ScenarioID string         `json:"scenarioId"`
	Input      scenario.Input `json:"input"`
}

type SaveScenarioInputResponse struct {
	Input *domain.ScenarioInputRecord `json:"input"`
}

type RunScenarioRequest struct {
	ScenarioID string `json:"scenarioId"`
}

type RunScenarioResponse struct {
	Job *domain.Job `json:"job"`
}

type GetScenarioResultRequest struct {
	ScenarioID string `json:"scenarioId"`
}

type GetScenarioResultResponse struct {
	Result *domain.ScenarioResultRecord `json:"result"`
}

// CalculateScenarioRequest previews a calculation without saving anything.
type CalculateScenarioRequest struct {
	RegimeKey string         `json:"regimeKey"`
	Input     scenario.Input `json:"input"`
}

type CalculateScenarioResponse struct {
	Result scenario.Result `json:"result"`
}

// Expenses

type CreateExpenseRequest struct {
	AccountID   string          `json:"accountId"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *time.Time      `json:"date,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *domain.Expense `json:"expense"`
}

type ListExpensesRequest struct {
	AccountID string     `json:"accountId"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	PageSize  int32      `json:"pageSize,omitempty"`
	PageToken string     `json:"pageToken,omitempty"`
}

type ListExpensesResponse struct {
	Expenses      []*domain.Expense `json:"expenses"`
	PageTotal     decimal.Decimal   `json:"pageTotal"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

// SearchExpensesRequest is a full-text expense query. Zero amounts leave the
// range open.
type SearchExpensesRequest struct {
	AccountID string          `json:"accountId"`
	Query     string          `json:"query"`
	Category  string          `json:"category,omitempty"`
	AmountMin decimal.Decimal `json:"amountMin"`
	AmountMax decimal.Decimal `json:"amountMax"`
	StartDate *time.Time      `json:"startDate,omitempty"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	Page      int32           `json:"page,omitempty"`
	PageSize  int32           `json:"pageSize,omitempty"`
}

type SearchExpensesResponse struct {
	Hits       []*search.Hit `json:"hits"`
	TotalCount int32         `json:"totalCount"`
	TotalPages int32         `json:"totalPages"`
	Page       int32         `json:"page"`
}

// Documents

// UploadDocumentRequest carries a receipt or tax card. Data is base64 in JSON.
type UploadDocumentRequest struct {
	AccountID   string `json:"accountId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type UploadReceiptResponse struct {
	Receipt *domain.Receipt `json:"receipt"`
	Job     *domain.Job     `json:"job"`
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receiptId"`
}

type GetReceiptResponse struct {
	Receipt *domain.Receipt `json:"receipt"`
}

// ExportReceiptsRequest bundles the receipt files behind a year's expenses.
type ExportReceiptsRequest struct {
	AccountID string `json:"accountId"`
	Year      int    `json:"year,omitempty"`
}

type ExportReceiptsResponse struct {
	Data         []byte `json:"data"`
	Filename     string `json:"filename"`
	ContentType  string `json:"contentType"`
	ReceiptCount int32  `json:"receiptCount"`
}

type UploadTaxCardResponse struct {
	TaxCard *domain.TaxCard `json:"taxCard"`
	Job     *domain.Job     `json:"job"`
}

type ListTaxCardsRequest struct {
	AccountID string `json:"accountId"`
}

type ListTaxCardsResponse struct {
	TaxCards []*domain.TaxCard `json:"taxCards"`
}

// Jobs

type GetJobRequest struct {
	JobID string `json:"jobId"`
}

type GetJobResponse struct {
	Job *domain.Job `json:"job"`
}

// Assistant

type ChatRequest struct {
	AccountID string           `json:"accountId"`
	Message   string           `json:"message"`
	History   []ai.ChatMessage `json:"history,omitempty"`
}

type ChatResponse struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Catalog administration

type UpsertTaxRegimeRequest struct {
	Regime domain.TaxRegime `json:"regime"`
}

type UpsertTaxRegimeResponse struct {
	Regime *domain.TaxRegime `json:"regime"`
}

type UpsertEventTemplateRequest struct {
	Template domain.EventTemplate `json:"template"`
}

type UpsertEventTemplateResponse struct {
	Template *domain.EventTemplate `json:"template"`
}
