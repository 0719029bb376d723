// Package domain holds the records persisted by the store and exchanged over
// the service API.
package domain

import (
	"encoding/json"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRole is a member's role within an account.
type AccountRole string

const (
	RoleOwner  AccountRole = "owner"
	RoleAdmin  AccountRole = "admin"
	RoleMember AccountRole = "member"
	RoleViewer AccountRole = "viewer"
)

// AccountMember links a user to an account.
type AccountMember struct {
	UserID string      `json:"userId"`
	Role   AccountRole `json:"role"`
}

// Account is a tenant. Every account is bound to one tax regime.
type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	OwnerID   string          `json:"ownerId"`
	RegimeID  string          `json:"regimeId"`
	Members   []AccountMember `json:"members,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TaxRegime is a jurisdiction-specific rule set. Code selects the calculation
// strategy.
type TaxRegime struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Active  bool   `json:"active"`
}

// EventTemplate is operator-authored configuration for a recurring calendar
// event. RuleJSON is parsed by the recurrence package.
type EventTemplate struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	RegimeID    string          `json:"regimeId"`
	Description string          `json:"description"`
	RuleJSON    json.RawMessage `json:"ruleJson"`
	Active      bool            `json:"active"`
}

// EventStatus tracks a calendar event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
)

// CalendarEvent is one persisted occurrence of a template.
type CalendarEvent struct {
	ID          string      `json:"id"`
	AccountID   string      `json:"accountId"`
	UserID      string      `json:"userId,omitempty"`
	TemplateID  string      `json:"templateId"`
	Code        string      `json:"code"`
	Title       string      `json:"title"`
	StartAt     time.Time   `json:"startAt"`
	EndAt       time.Time   `json:"endAt"`
	Status      EventStatus `json:"status"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

var calendarNamespace = uuid.MustParse("6f1b8f3e-2c1d-4e0a-9d36-8b2f54c3a7e1")

// CalendarEventID derives the event ID from its upsert key so repeated syncs
// address the same record.
func CalendarEventID(accountID, userID, templateID string, startAt time.Time) string {
	key := accountID + "|" + userID + "|" + templateID + "|" + startAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(calendarNamespace, []byte(key)).String()
}

// Scenario is a named what-if calculation owned by an account.
type Scenario struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	RegimeKey string    `json:"regimeKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScenarioInputRecord is one saved version of a scenario's input. Versions
// start at 1 and increase per scenario.
type ScenarioInputRecord struct {
	ID         string         `json:"id"`
	ScenarioID string         `json:"scenarioId"`
	Version    int            `json:"version"`
	Input      scenario.Input `json:"input"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ScenarioResultRecord is the latest calculation for a scenario.
type ScenarioResultRecord struct {
	ScenarioID      string          `json:"scenarioId"`
	InputVersion    int             `json:"inputVersion"`
	RegimeKey       string          `json:"regimeKey"`
	Result          scenario.Result `json:"result"`
	Recommendations []string        `json:"recommendations,omitempty"`
	CalculatedAt    time.Time       `json:"calculatedAt"`
}

// Expense is a tracked, possibly deductible, expense.
type Expense struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	UserID      string          `json:"userId"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	ReceiptID   string          `json:"receiptId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ProcessingStatus is the lifecycle of an uploaded document.
type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// Receipt is an uploaded receipt image or PDF.
type Receipt struct {
	ID          string           `json:"id"`
	AccountID   string           `json:"accountId"`
	UserID      string           `json:"userId"`
	Filename    string           `json:"filename"`
	ContentType string           `json:"contentType"`
	StoragePath string           `json:"storagePath"`
	Status      ProcessingStatus `json:"status"`
	Merchant    string           `json:"merchant,omitempty"`
	Total       *decimal.Decimal `json:"total,omitempty"`
	OCR         map[string]any   `json:"ocrJson,omitempty"`
	ExpenseID   string           `json:"expenseId,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	ProcessedAt *time.Time       `json:"processedAt,omitempty"`
}

// TaxCard is an uploaded withholding tax card and the fields read from it.
// Rates are percentages.
type TaxCard struct {
	ID             string           `json:"id"`
	AccountID      string           `json:"accountId"`
	UserID         string           `json:"userId"`
	Filename       string           `json:"filename"`
	ContentType    string           `json:"contentType"`
	StoragePath    string           `json:"storagePath"`
	Status         ProcessingStatus `json:"status"`
	TaxYear        int              `json:"taxYear,omitempty"`
	BaseRate       decimal.Decimal  `json:"baseRate"`
	AdditionalRate decimal.Decimal  `json:"additionalRate"`
	IncomeLimit    decimal.Decimal  `json:"incomeLimit"`
	Source         string           `json:"source,omitempty"`
	Error          string           `json:"error,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	ProcessedAt    *time.Time       `json:"processedAt,omitempty"`
}

// JobType names a background job.
type JobType string

const (
	JobScenarioCalculate JobType = "scenario.calculate"
	JobReceiptOCR        JobType = "receipt.ocr"
	JobTaxCardParse      JobType = "taxcard.parse"
)

// JobStatus is the lifecycle of a background job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is a queued unit of background work. SubjectID is the scenario,
// receipt or tax card the job acts on.
type Job struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	AccountID string    `json:"accountId"`
	UserID    string    `json:"userId"`
	SubjectID string    `json:"subjectId"`
	Status    JobStatus `json:"status"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Terminal reports whether the job will not run again.
func (j *Job) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
