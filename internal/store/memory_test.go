package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*MemoryStore)(nil)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPaginateIDs(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}

	page, next := paginateIDs(ids, 2, "")
	assert.Equal(t, []string{"a", "b"}, page)
	require.NotEmpty(t, next)

	page, next = paginateIDs(ids, 2, next)
	assert.Equal(t, []string{"c", "d"}, page)
	require.NotEmpty(t, next)

	page, next = paginateIDs(ids, 2, next)
	assert.Equal(t, []string{"e"}, page)
	assert.Empty(t, next)

	page, next = paginateIDs(ids, 2, EncodePageToken("zzz"))
	assert.Empty(t, page)
	assert.Empty(t, next)

	page, _ = paginateIDs(ids, 0, "")
	assert.Len(t, page, 5)
}

func TestMemoryStore_Accounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateAccount(ctx, &domain.Account{ID: "acct-1", OwnerID: "alice", RegimeID: "fi"}))
	require.NoError(t, s.CreateAccount(ctx, &domain.Account{
		ID:      "acct-2",
		OwnerID: "bob",
		Members: []domain.AccountMember{{UserID: "alice", Role: domain.RoleViewer}},
	}))
	require.NoError(t, s.CreateAccount(ctx, &domain.Account{ID: "acct-3", OwnerID: "carol"}))
	assert.Error(t, s.CreateAccount(ctx, &domain.Account{ID: "acct-1"}))

	accounts, _, err := s.ListAccounts(ctx, "alice", 10, "")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "acct-1", accounts[0].ID)
	assert.Equal(t, "acct-2", accounts[1].ID)

	all, _, err := s.ListAccounts(ctx, "", 10, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.GetAccount(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	acct, err := s.GetAccount(ctx, "acct-1")
	require.NoError(t, err)
	acct.Name = "Household"
	require.NoError(t, s.UpdateAccount(ctx, acct))
	got, err := s.GetAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "Household", got.Name)
}

func TestMemoryStore_ListActiveTemplates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rule := json.RawMessage(`{"startAt":"2024-01-15","frequency":"monthly"}`)
	require.NoError(t, s.UpsertEventTemplate(ctx, &domain.EventTemplate{ID: "t2", Code: "vat", RegimeID: "fi", RuleJSON: rule, Active: true}))
	require.NoError(t, s.UpsertEventTemplate(ctx, &domain.EventTemplate{ID: "t1", Code: "annual-return", RegimeID: "fi", RuleJSON: rule, Active: true}))
	require.NoError(t, s.UpsertEventTemplate(ctx, &domain.EventTemplate{ID: "t3", Code: "old", RegimeID: "fi", RuleJSON: rule, Active: false}))
	require.NoError(t, s.UpsertEventTemplate(ctx, &domain.EventTemplate{ID: "t4", Code: "se-vat", RegimeID: "se", RuleJSON: rule, Active: true}))

	templates, err := s.ListActiveTemplates(ctx, "fi")
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "annual-return", templates[0].Code)
	assert.Equal(t, "vat", templates[1].Code)
}

func TestMemoryStore_UpsertCalendarEventIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	newEvent := func() *domain.CalendarEvent {
		return &domain.CalendarEvent{
			AccountID:  "acct-1",
			UserID:     "alice",
			TemplateID: "t1",
			Title:      "VAT return",
			StartAt:    day(2024, 1, 15),
			EndAt:      day(2024, 1, 16),
		}
	}

	first := newEvent()
	created, err := s.UpsertCalendarEvent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.EventStatusUpcoming, first.Status)

	completedAt := day(2024, 1, 10)
	stored, err := s.GetCalendarEvent(ctx, first.ID)
	require.NoError(t, err)
	stored.Status = domain.EventStatusCompleted
	stored.CompletedAt = &completedAt
	require.NoError(t, s.UpdateCalendarEvent(ctx, stored))

	second := newEvent()
	second.Title = "VAT return (renamed)"
	created, err = s.UpsertCalendarEvent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	events, _, err := s.ListCalendarEvents(ctx, "acct-1", "", nil, nil, 10, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "VAT return (renamed)", events[0].Title)
	assert.Equal(t, domain.EventStatusCompleted, events[0].Status)
	require.NotNil(t, events[0].CompletedAt)
}

func TestMemoryStore_ListCalendarEvents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, ev := range []*domain.CalendarEvent{
		{AccountID: "acct-1", UserID: "alice", TemplateID: "t1", StartAt: day(2024, 3, 15)},
		{AccountID: "acct-1", UserID: "alice", TemplateID: "t1", StartAt: day(2024, 1, 15)},
		{AccountID: "acct-1", TemplateID: "t2", StartAt: day(2024, 2, 1)},
		{AccountID: "acct-1", UserID: "bob", TemplateID: "t1", StartAt: day(2024, 2, 15)},
		{AccountID: "acct-2", UserID: "alice", TemplateID: "t1", StartAt: day(2024, 1, 15)},
	} {
		_, err := s.UpsertCalendarEvent(ctx, ev)
		require.NoError(t, err)
	}

	events, _, err := s.ListCalendarEvents(ctx, "acct-1", "alice", nil, nil, 10, "")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, day(2024, 1, 15), events[0].StartAt)
	assert.Equal(t, day(2024, 2, 1), events[1].StartAt)
	assert.Equal(t, day(2024, 3, 15), events[2].StartAt)

	from, to := day(2024, 2, 1), day(2024, 2, 15)
	events, _, err = s.ListCalendarEvents(ctx, "acct-1", "", &from, &to, 10, "")
	require.NoError(t, err)
	require.Len(t, events, 2)

	page, next, err := s.ListCalendarEvents(ctx, "acct-1", "", nil, nil, 3, "")
	require.NoError(t, err)
	assert.Len(t, page, 3)
	require.NotEmpty(t, next)
	page, next, err = s.ListCalendarEvents(ctx, "acct-1", "", nil, nil, 3, next)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, day(2024, 3, 15), page[0].StartAt)
	assert.Empty(t, next)
}

func TestMemoryStore_ScenarioInputsAreVersioned(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.CreateScenarioInput(ctx, &domain.ScenarioInputRecord{ScenarioID: "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))

	sc := &domain.Scenario{AccountID: "acct-1", Name: "Base"}
	require.NoError(t, s.CreateScenario(ctx, sc))
	require.NotEmpty(t, sc.ID)

	_, err = s.GetLatestScenarioInput(ctx, sc.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	v1 := &domain.ScenarioInputRecord{ScenarioID: sc.ID, Input: scenario.Input{Income: map[string]any{"salary": 1000.0}}}
	v2 := &domain.ScenarioInputRecord{ScenarioID: sc.ID, Input: scenario.Input{Income: map[string]any{"salary": 2000.0}}}
	require.NoError(t, s.CreateScenarioInput(ctx, v1))
	require.NoError(t, s.CreateScenarioInput(ctx, v2))
	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, 2, v2.Version)

	latest, err := s.GetLatestScenarioInput(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, 2000.0, latest.Input.Income["salary"])
}

func TestMemoryStore_ScenarioResultUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetScenarioResult(ctx, "sc-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.UpsertScenarioResult(ctx, &domain.ScenarioResultRecord{ScenarioID: "sc-1", InputVersion: 1}))
	require.NoError(t, s.UpsertScenarioResult(ctx, &domain.ScenarioResultRecord{ScenarioID: "sc-1", InputVersion: 2}))

	got, err := s.GetScenarioResult(ctx, "sc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.InputVersion)
}

func TestMemoryStore_Expenses(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i, d := range []time.Time{day(2024, 3, 1), day(2024, 1, 1), day(2024, 2, 1)} {
		require.NoError(t, s.CreateExpense(ctx, &domain.Expense{
			AccountID: "acct-1",
			Amount:    decimal.NewFromInt(int64(10 * (i + 1))),
			Date:      d,
		}))
	}
	require.NoError(t, s.CreateExpense(ctx, &domain.Expense{AccountID: "acct-2", Date: day(2024, 1, 1)}))

	expenses, _, err := s.ListExpenses(ctx, "acct-1", nil, nil, 10, "")
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	assert.Equal(t, day(2024, 1, 1), expenses[0].Date)
	assert.Equal(t, day(2024, 3, 1), expenses[2].Date)

	start, end := day(2024, 2, 1), day(2024, 3, 1)
	expenses, _, err = s.ListExpenses(ctx, "acct-1", &start, &end, 10, "")
	require.NoError(t, err)
	assert.Len(t, expenses, 2)

	require.NoError(t, s.DeleteExpense(ctx, expenses[0].ID))
	assert.True(t, errors.Is(s.DeleteExpense(ctx, expenses[0].ID), ErrNotFound))
	_, err = s.GetExpense(ctx, expenses[0].ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	receipt := &domain.Receipt{AccountID: "acct-1", Status: domain.ProcessingPending}
	require.NoError(t, s.CreateReceipt(ctx, receipt))
	receipt.Status = domain.ProcessingFailed

	got, err := s.GetReceipt(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessingPending, got.Status)

	got.Status = domain.ProcessingCompleted
	require.NoError(t, s.UpdateReceipt(ctx, got))
	again, err := s.GetReceipt(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessingCompleted, again.Status)
}

func TestMemoryStore_CopiesReferenceFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	t.Run("account members", func(t *testing.T) {
		account := &domain.Account{
			ID:      "acct-1",
			OwnerID: "owner",
			Members: []domain.AccountMember{
				{UserID: "owner", Role: domain.RoleOwner},
				{UserID: "guest", Role: domain.RoleViewer},
			},
		}
		require.NoError(t, s.CreateAccount(ctx, account))
		account.Members[1].Role = domain.RoleAdmin

		got, err := s.GetAccount(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleViewer, got.Members[1].Role)

		got.Members[1].Role = domain.RoleAdmin
		again, err := s.GetAccount(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleViewer, again.Members[1].Role)

		listed, _, err := s.ListAccounts(ctx, "guest", 10, "")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		listed[0].Members[1].Role = domain.RoleAdmin
		again, err = s.GetAccount(ctx, "acct-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleViewer, again.Members[1].Role)
	})

	t.Run("receipt ocr and total", func(t *testing.T) {
		total := decimal.RequireFromString("12.50")
		receipt := &domain.Receipt{
			AccountID: "acct-1",
			Total:     &total,
			OCR:       map[string]any{"vendor": "Cafe", "lines": []any{map[string]any{"amount": "12.50"}}},
		}
		require.NoError(t, s.CreateReceipt(ctx, receipt))
		receipt.OCR["vendor"] = "changed"
		*receipt.Total = decimal.NewFromInt(99)

		got, err := s.GetReceipt(ctx, receipt.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cafe", got.OCR["vendor"])
		assert.True(t, got.Total.Equal(decimal.RequireFromString("12.50")))

		got.OCR["lines"].([]any)[0].(map[string]any)["amount"] = "0"
		*got.Total = decimal.Zero
		again, err := s.GetReceipt(ctx, receipt.ID)
		require.NoError(t, err)
		assert.Equal(t, "12.50", again.OCR["lines"].([]any)[0].(map[string]any)["amount"])
		assert.True(t, again.Total.Equal(decimal.RequireFromString("12.50")))
	})

	t.Run("scenario input maps", func(t *testing.T) {
		require.NoError(t, s.CreateScenario(ctx, &domain.Scenario{ID: "sc-1", AccountID: "acct-1"}))
		input := &domain.ScenarioInputRecord{
			ScenarioID: "sc-1",
			Input: scenario.Input{
				Income:     map[string]any{"salary": 90000.0},
				Deductions: map[string]any{"work": map[string]any{"amount": 1200.0}},
			},
		}
		require.NoError(t, s.CreateScenarioInput(ctx, input))
		input.Input.Income["salary"] = 1.0

		got, err := s.GetLatestScenarioInput(ctx, "sc-1")
		require.NoError(t, err)
		assert.Equal(t, 90000.0, got.Input.Income["salary"])

		got.Input.Deductions["work"].(map[string]any)["amount"] = 0.0
		again, err := s.GetLatestScenarioInput(ctx, "sc-1")
		require.NoError(t, err)
		assert.Equal(t, 1200.0, again.Input.Deductions["work"].(map[string]any)["amount"])
	})
}

func TestMemoryStore_TaxCards(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateTaxCard(ctx, &domain.TaxCard{ID: "c2", AccountID: "acct-1", CreatedAt: day(2024, 2, 1)}))
	require.NoError(t, s.CreateTaxCard(ctx, &domain.TaxCard{ID: "c1", AccountID: "acct-1", CreatedAt: day(2024, 1, 1)}))
	require.NoError(t, s.CreateTaxCard(ctx, &domain.TaxCard{ID: "c3", AccountID: "acct-2"}))

	cards, err := s.ListTaxCards(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "c1", cards[0].ID)

	cards[0].TaxYear = 2024
	require.NoError(t, s.UpdateTaxCard(ctx, cards[0]))
	got, err := s.GetTaxCard(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.TaxYear)

	assert.True(t, errors.Is(s.UpdateTaxCard(ctx, &domain.TaxCard{ID: "nope"}), ErrNotFound))
}
