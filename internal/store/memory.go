package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/google/uuid"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	accounts        map[string]*domain.Account
	regimes         map[string]*domain.TaxRegime
	templates       map[string]*domain.EventTemplate
	calendarEvents  map[string]*domain.CalendarEvent
	scenarios       map[string]*domain.Scenario
	scenarioInputs  map[string][]*domain.ScenarioInputRecord
	scenarioResults map[string]*domain.ScenarioResultRecord
	expenses        map[string]*domain.Expense
	receipts        map[string]*domain.Receipt
	taxCards        map[string]*domain.TaxCard

	now func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:        make(map[string]*domain.Account),
		regimes:         make(map[string]*domain.TaxRegime),
		templates:       make(map[string]*domain.EventTemplate),
		calendarEvents:  make(map[string]*domain.CalendarEvent),
		scenarios:       make(map[string]*domain.Scenario),
		scenarioInputs:  make(map[string][]*domain.ScenarioInputRecord),
		scenarioResults: make(map[string]*domain.ScenarioResultRecord),
		expenses:        make(map[string]*domain.Expense),
		receipts:        make(map[string]*domain.Receipt),
		taxCards:        make(map[string]*domain.TaxCard),
		now:             time.Now,
	}
}

// paginateIDs applies cursor-based pagination to an ordered slice of IDs.
// The cursor is the last ID of the previous page. Returns the page and the
// next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			startIdx = len(ids)
			for i, id := range ids {
				if id == cursorID {
					startIdx = i + 1
					break
				}
			}
		}
	}
	ids = ids[startIdx:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Account operations

func (m *MemoryStore) CreateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if _, ok := m.accounts[account.ID]; ok {
		return fmt.Errorf("account %s already exists", account.ID)
	}
	now := m.now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	cp := cloneAccount(account)
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MemoryStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountID]
	if !ok {
		return nil, notFound("account", accountID)
	}
	cp := cloneAccount(account)
	return &cp, nil
}

func (m *MemoryStore) UpdateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; !ok {
		return notFound("account", account.ID)
	}
	account.UpdatedAt = m.now()
	cp := cloneAccount(account)
	m.accounts[account.ID] = &cp
	return nil
}

// ListAccounts lists accounts the user belongs to. An empty userID lists every
// account, which the scheduled calendar sync relies on.
func (m *MemoryStore) ListAccounts(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*domain.Account, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, account := range m.accounts {
		if userID != "" && !hasMember(account, userID) {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}
	sort.Strings(matchingIDs)

	pageIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*domain.Account, 0, len(pageIDs))
	for _, id := range pageIDs {
		cp := cloneAccount(m.accounts[id])
		result = append(result, &cp)
	}
	return result, nextToken, nil
}

func hasMember(account *domain.Account, userID string) bool {
	if account.OwnerID == userID {
		return true
	}
	for _, member := range account.Members {
		if member.UserID == userID {
			return true
		}
	}
	return false
}

// Regime and template operations

func (m *MemoryStore) UpsertTaxRegime(ctx context.Context, regime *domain.TaxRegime) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if regime.ID == "" {
		return fmt.Errorf("regime ID is required")
	}
	cp := *regime
	m.regimes[regime.ID] = &cp
	return nil
}

func (m *MemoryStore) GetTaxRegime(ctx context.Context, regimeID string) (*domain.TaxRegime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	regime, ok := m.regimes[regimeID]
	if !ok {
		return nil, notFound("tax regime", regimeID)
	}
	cp := *regime
	return &cp, nil
}

func (m *MemoryStore) UpsertEventTemplate(ctx context.Context, template *domain.EventTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if template.ID == "" {
		template.ID = uuid.New().String()
	}
	cp := cloneTemplate(template)
	m.templates[template.ID] = &cp
	return nil
}

// ListActiveTemplates returns active templates of a regime ordered by code.
func (m *MemoryStore) ListActiveTemplates(ctx context.Context, regimeID string) ([]*domain.EventTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.EventTemplate
	for _, tmpl := range m.templates {
		if !tmpl.Active || tmpl.RegimeID != regimeID {
			continue
		}
		cp := cloneTemplate(tmpl)
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Code != result[j].Code {
			return result[i].Code < result[j].Code
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Calendar operations

// UpsertCalendarEvent stores the event under its derived key. An existing
// event keeps its status, completion time and creation time.
func (m *MemoryStore) UpsertCalendarEvent(ctx context.Context, event *domain.CalendarEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event.ID = domain.CalendarEventID(event.AccountID, event.UserID, event.TemplateID, event.StartAt)
	now := m.now()

	if existing, ok := m.calendarEvents[event.ID]; ok {
		event.Status = existing.Status
		event.CompletedAt = existing.CompletedAt
		event.CreatedAt = existing.CreatedAt
		event.UpdatedAt = now
		cp := cloneEvent(event)
		m.calendarEvents[event.ID] = &cp
		return false, nil
	}

	if event.Status == "" {
		event.Status = domain.EventStatusUpcoming
	}
	event.CreatedAt = now
	event.UpdatedAt = now
	cp := cloneEvent(event)
	m.calendarEvents[event.ID] = &cp
	return true, nil
}

func (m *MemoryStore) GetCalendarEvent(ctx context.Context, eventID string) (*domain.CalendarEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	event, ok := m.calendarEvents[eventID]
	if !ok {
		return nil, notFound("calendar event", eventID)
	}
	cp := cloneEvent(event)
	return &cp, nil
}

func (m *MemoryStore) UpdateCalendarEvent(ctx context.Context, event *domain.CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calendarEvents[event.ID]; !ok {
		return notFound("calendar event", event.ID)
	}
	event.UpdatedAt = m.now()
	cp := cloneEvent(event)
	m.calendarEvents[event.ID] = &cp
	return nil
}

// ListCalendarEvents lists an account's events ordered by start time. A
// non-empty userID keeps that user's events plus account-wide ones. from and
// to are inclusive bounds on StartAt.
func (m *MemoryStore) ListCalendarEvents(ctx context.Context, accountID, userID string, from, to *time.Time, pageSize int32, pageToken string) ([]*domain.CalendarEvent, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matching []*domain.CalendarEvent
	for _, event := range m.calendarEvents {
		if event.AccountID != accountID {
			continue
		}
		if userID != "" && event.UserID != "" && event.UserID != userID {
			continue
		}
		if from != nil && event.StartAt.Before(*from) {
			continue
		}
		if to != nil && event.StartAt.After(*to) {
			continue
		}
		matching = append(matching, event)
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].StartAt.Equal(matching[j].StartAt) {
			return matching[i].StartAt.Before(matching[j].StartAt)
		}
		return matching[i].ID < matching[j].ID
	})

	ids := make([]string, len(matching))
	for i, event := range matching {
		ids[i] = event.ID
	}
	pageIDs, nextToken := paginateIDs(ids, pageSize, pageToken)
	result := make([]*domain.CalendarEvent, 0, len(pageIDs))
	for _, id := range pageIDs {
		cp := cloneEvent(m.calendarEvents[id])
		result = append(result, &cp)
	}
	return result, nextToken, nil
}

// Scenario operations

func (m *MemoryStore) CreateScenario(ctx context.Context, sc *domain.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	now := m.now()
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = now
	}
	sc.UpdatedAt = now
	cp := *sc
	m.scenarios[sc.ID] = &cp
	return nil
}

func (m *MemoryStore) GetScenario(ctx context.Context, scenarioID string) (*domain.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sc, ok := m.scenarios[scenarioID]
	if !ok {
		return nil, notFound("scenario", scenarioID)
	}
	cp := *sc
	return &cp, nil
}

func (m *MemoryStore) ListScenarios(ctx context.Context, accountID string, pageSize int32, pageToken string) ([]*domain.Scenario, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, sc := range m.scenarios {
		if sc.AccountID == accountID {
			matchingIDs = append(matchingIDs, id)
		}
	}
	sort.Strings(matchingIDs)

	pageIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*domain.Scenario, 0, len(pageIDs))
	for _, id := range pageIDs {
		cp := *m.scenarios[id]
		result = append(result, &cp)
	}
	return result, nextToken, nil
}

// CreateScenarioInput appends a new input version to the scenario.
func (m *MemoryStore) CreateScenarioInput(ctx context.Context, input *domain.ScenarioInputRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenarios[input.ScenarioID]; !ok {
		return notFound("scenario", input.ScenarioID)
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = m.now()
	}
	input.Version = len(m.scenarioInputs[input.ScenarioID]) + 1

	cp := cloneInput(input)
	m.scenarioInputs[input.ScenarioID] = append(m.scenarioInputs[input.ScenarioID], &cp)
	return nil
}

func (m *MemoryStore) GetLatestScenarioInput(ctx context.Context, scenarioID string) (*domain.ScenarioInputRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inputs := m.scenarioInputs[scenarioID]
	if len(inputs) == 0 {
		return nil, notFound("scenario input for", scenarioID)
	}
	cp := cloneInput(inputs[len(inputs)-1])
	return &cp, nil
}

func (m *MemoryStore) UpsertScenarioResult(ctx context.Context, result *domain.ScenarioResultRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if result.ScenarioID == "" {
		return fmt.Errorf("scenario ID is required")
	}
	cp := cloneResult(result)
	m.scenarioResults[result.ScenarioID] = &cp
	return nil
}

func (m *MemoryStore) GetScenarioResult(ctx context.Context, scenarioID string) (*domain.ScenarioResultRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, ok := m.scenarioResults[scenarioID]
	if !ok {
		return nil, notFound("scenario result for", scenarioID)
	}
	cp := cloneResult(result)
	return &cp, nil
}

// Expense operations

func (m *MemoryStore) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = m.now()
	}
	cp := *expense
	m.expenses[expense.ID] = &cp
	return nil
}

func (m *MemoryStore) GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expense, ok := m.expenses[expenseID]
	if !ok {
		return nil, notFound("expense", expenseID)
	}
	cp := *expense
	return &cp, nil
}

func (m *MemoryStore) DeleteExpense(ctx context.Context, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[expenseID]; !ok {
		return notFound("expense", expenseID)
	}
	delete(m.expenses, expenseID)
	return nil
}

// ListExpenses lists an account's expenses ordered by date. startDate and
// endDate are inclusive.
func (m *MemoryStore) ListExpenses(ctx context.Context, accountID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*domain.Expense, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matching []*domain.Expense
	for _, expense := range m.expenses {
		if expense.AccountID != accountID {
			continue
		}
		if startDate != nil && expense.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && expense.Date.After(*endDate) {
			continue
		}
		matching = append(matching, expense)
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].Date.Equal(matching[j].Date) {
			return matching[i].Date.Before(matching[j].Date)
		}
		return matching[i].ID < matching[j].ID
	})

	ids := make([]string, len(matching))
	for i, expense := range matching {
		ids[i] = expense.ID
	}
	pageIDs, nextToken := paginateIDs(ids, pageSize, pageToken)
	result := make([]*domain.Expense, 0, len(pageIDs))
	for _, id := range pageIDs {
		cp := *m.expenses[id]
		result = append(result, &cp)
	}
	return result, nextToken, nil
}

// Receipt operations

func (m *MemoryStore) CreateReceipt(ctx context.Context, receipt *domain.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = m.now()
	}
	cp := cloneReceipt(receipt)
	m.receipts[receipt.ID] = &cp
	return nil
}

func (m *MemoryStore) GetReceipt(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	receipt, ok := m.receipts[receiptID]
	if !ok {
		return nil, notFound("receipt", receiptID)
	}
	cp := cloneReceipt(receipt)
	return &cp, nil
}

func (m *MemoryStore) UpdateReceipt(ctx context.Context, receipt *domain.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.receipts[receipt.ID]; !ok {
		return notFound("receipt", receipt.ID)
	}
	cp := cloneReceipt(receipt)
	m.receipts[receipt.ID] = &cp
	return nil
}

// Tax card operations

func (m *MemoryStore) CreateTaxCard(ctx context.Context, card *domain.TaxCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = m.now()
	}
	cp := cloneTaxCard(card)
	m.taxCards[card.ID] = &cp
	return nil
}

func (m *MemoryStore) GetTaxCard(ctx context.Context, cardID string) (*domain.TaxCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	card, ok := m.taxCards[cardID]
	if !ok {
		return nil, notFound("tax card", cardID)
	}
	cp := cloneTaxCard(card)
	return &cp, nil
}

func (m *MemoryStore) UpdateTaxCard(ctx context.Context, card *domain.TaxCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.taxCards[card.ID]; !ok {
		return notFound("tax card", card.ID)
	}
	cp := cloneTaxCard(card)
	m.taxCards[card.ID] = &cp
	return nil
}

// ListTaxCards lists an account's tax cards, oldest first.
func (m *MemoryStore) ListTaxCards(ctx context.Context, accountID string) ([]*domain.TaxCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.TaxCard
	for _, card := range m.taxCards {
		if card.AccountID != accountID {
			continue
		}
		cp := cloneTaxCard(card)
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// The clone helpers copy reference fields so callers never share backing
// storage with stored records.

func cloneAccount(a *domain.Account) domain.Account {
	cp := *a
	cp.Members = slices.Clone(a.Members)
	return cp
}

func cloneTemplate(t *domain.EventTemplate) domain.EventTemplate {
	cp := *t
	cp.RuleJSON = slices.Clone(t.RuleJSON)
	return cp
}

func cloneEvent(e *domain.CalendarEvent) domain.CalendarEvent {
	cp := *e
	cp.CompletedAt = clonePtr(e.CompletedAt)
	return cp
}

func cloneInput(r *domain.ScenarioInputRecord) domain.ScenarioInputRecord {
	cp := *r
	cp.Input = scenario.Input{
		Income:      cloneJSONMap(r.Input.Income),
		Deductions:  cloneJSONMap(r.Input.Deductions),
		Assumptions: cloneJSONMap(r.Input.Assumptions),
		LifeEvents:  cloneJSONMap(r.Input.LifeEvents),
	}
	return cp
}

func cloneResult(r *domain.ScenarioResultRecord) domain.ScenarioResultRecord {
	cp := *r
	cp.Recommendations = slices.Clone(r.Recommendations)
	return cp
}

func cloneReceipt(r *domain.Receipt) domain.Receipt {
	cp := *r
	cp.Total = clonePtr(r.Total)
	cp.OCR = cloneJSONMap(r.OCR)
	cp.ProcessedAt = clonePtr(r.ProcessedAt)
	return cp
}

func cloneTaxCard(c *domain.TaxCard) domain.TaxCard {
	cp := *c
	cp.ProcessedAt = clonePtr(c.ProcessedAt)
	return cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneJSONMap deep-copies decoded JSON: nested objects and arrays are copied,
// scalars are shared.
func cloneJSONMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneJSONValue(v)
	}
	return out
}

func cloneJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneJSONMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneJSONValue(item)
		}
		return out
	default:
		return v
	}
}
