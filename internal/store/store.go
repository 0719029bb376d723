package store

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is wrapped by every store lookup that finds nothing.
var ErrNotFound = errors.New("not found")

// Store defines the interface for all database operations used by the service
type Store interface {
	// Account operations
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account *domain.Account) error
	ListAccounts(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*domain.Account, string, error)

	// Regime and template operations
	UpsertTaxRegime(ctx context.Context, regime *domain.TaxRegime) error
	GetTaxRegime(ctx context.Context, regimeID string) (*domain.TaxRegime, error)
	UpsertEventTemplate(ctx context.Context, template *domain.EventTemplate) error
	ListActiveTemplates(ctx context.Context, regimeID string) ([]*domain.EventTemplate, error)

	// Calendar operations. UpsertCalendarEvent is keyed by
	// (AccountID, UserID, TemplateID, StartAt) and reports whether a new
	// event was created.
	UpsertCalendarEvent(ctx context.Context, event *domain.CalendarEvent) (bool, error)
	GetCalendarEvent(ctx context.Context, eventID string) (*domain.CalendarEvent, error)
	UpdateCalendarEvent(ctx context.Context, event *domain.CalendarEvent) error
	ListCalendarEvents(ctx context.Context, accountID, userID string, from, to *time.Time, pageSize int32, pageToken string) ([]*domain.CalendarEvent, string, error)

	// Scenario operations
	CreateScenario(ctx context.Context, sc *domain.Scenario) error
	GetScenario(ctx context.Context, scenarioID string) (*domain.Scenario, error)
	ListScenarios(ctx context.Context, accountID string, pageSize int32, pageToken string) ([]*domain.Scenario, string, error)
	CreateScenarioInput(ctx context.Context, input *domain.ScenarioInputRecord) error
	GetLatestScenarioInput(ctx context.Context, scenarioID string) (*domain.ScenarioInputRecord, error)
	UpsertScenarioResult(ctx context.Context, result *domain.ScenarioResultRecord) error
	GetScenarioResult(ctx context.Context, scenarioID string) (*domain.ScenarioResultRecord, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *domain.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpenses(ctx context.Context, accountID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*domain.Expense, string, error)

	// Receipt operations
	CreateReceipt(ctx context.Context, receipt *domain.Receipt) error
	GetReceipt(ctx context.Context, receiptID string) (*domain.Receipt, error)
	UpdateReceipt(ctx context.Context, receipt *domain.Receipt) error

	// Tax card operations
	CreateTaxCard(ctx context.Context, card *domain.TaxCard) error
	GetTaxCard(ctx context.Context, cardID string) (*domain.TaxCard, error)
	UpdateTaxCard(ctx context.Context, card *domain.TaxCard) error
	ListTaxCards(ctx context.Context, accountID string) ([]*domain.TaxCard, error)
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
