package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	colAccounts        = "accounts"
	colTaxRegimes      = "taxRegimes"
	colEventTemplates  = "eventTemplates"
	colCalendarEvents  = "calendarEvents"
	colScenarios       = "scenarios"
	colScenarioInputs  = "scenarioInputs"
	colScenarioResults = "scenarioResults"
	colExpenses        = "expenses"
	colReceipts        = "receipts"
	colTaxCards        = "taxCards"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// getDoc fetches a document and maps a missing document to ErrNotFound.
func (s *FirestoreStore) getDoc(ctx context.Context, collection, id, kind string) (*firestore.DocumentSnapshot, error) {
	if id == "" {
		return nil, notFound(kind, id)
	}
	doc, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, notFound(kind, id)
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return doc, nil
}

// requireDoc fails with ErrNotFound unless the document exists.
func (s *FirestoreStore) requireDoc(ctx context.Context, collection, id, kind string) error {
	_, err := s.getDoc(ctx, collection, id, kind)
	return err
}

// applyOrderedPagination handles pagination for queries ordered by a range
// field. Firestore requires OrderBy on inequality fields first, so the cursor
// carries both the field value and the document ID.
func (s *FirestoreStore) applyOrderedPagination(ctx context.Context, query firestore.Query, collection, field string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(field, firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		query = query.StartAfter(cursorDoc.Data()[field], docID)
	}

	return query.Limit(int(normalizePageSize(pageSize)) + 1), nil
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for cursor-based pagination.
// It fetches pageSize+1 docs so the caller can detect whether a next page exists.
func (s *FirestoreStore) applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	return query.Limit(int(normalizePageSize(pageSize)) + 1), nil
}

// splitPage trims the extra document fetched by the pagination helpers and
// returns the next page token.
func splitPage(docs []*firestore.DocumentSnapshot, pageSize int32) ([]*firestore.DocumentSnapshot, string) {
	size := int(normalizePageSize(pageSize))
	if len(docs) <= size {
		return docs, ""
	}
	docs = docs[:size]
	return docs, EncodePageToken(docs[size-1].Ref.ID)
}

func normalizePageSize(pageSize int32) int32 {
	if pageSize <= 0 {
		return 100
	}
	return pageSize
}

// Account operations

// CreateAccount creates a new account in Firestore
func (s *FirestoreStore) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = s.client.Collection(colAccounts).NewDoc().ID
	}
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := s.client.Collection(colAccounts).Doc(account.ID).Create(ctx, toAccountDoc(account))
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account from Firestore
func (s *FirestoreStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	doc, err := s.getDoc(ctx, colAccounts, accountID, "account")
	if err != nil {
		return nil, err
	}
	var d accountDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	return d.toDomain(), nil
}

// UpdateAccount replaces an existing account
func (s *FirestoreStore) UpdateAccount(ctx context.Context, account *domain.Account) error {
	if err := s.requireDoc(ctx, colAccounts, account.ID, "account"); err != nil {
		return err
	}
	account.UpdatedAt = time.Now()
	_, err := s.client.Collection(colAccounts).Doc(account.ID).Set(ctx, toAccountDoc(account))
	return err
}

// ListAccounts lists accounts for a user, or every account when userID is empty
func (s *FirestoreStore) ListAccounts(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*domain.Account, string, error) {
	query := s.client.Collection(colAccounts).Query
	if userID != "" {
		query = query.Where("MemberIDs", "array-contains", userID)
	}

	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list accounts: %w", err)
	}
	docs, nextPageToken := splitPage(docs, pageSize)

	accounts := make([]*domain.Account, 0, len(docs))
	for _, doc := range docs {
		var d accountDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, "", fmt.Errorf("failed to parse account: %w", err)
		}
		accounts = append(accounts, d.toDomain())
	}
	return accounts, nextPageToken, nil
}

// Regime and template operations

func (s *FirestoreStore) UpsertTaxRegime(ctx context.Context, regime *domain.TaxRegime) error {
	if regime.ID == "" {
		return fmt.Errorf("regime ID is required")
	}
	_, err := s.client.Collection(colTaxRegimes).Doc(regime.ID).Set(ctx, regime)
	return err
}

func (s *FirestoreStore) GetTaxRegime(ctx context.Context, regimeID string) (*domain.TaxRegime, error) {
	doc, err := s.getDoc(ctx, colTaxRegimes, regimeID, "tax regime")
	if err != nil {
		return nil, err
	}
	var regime domain.TaxRegime
	if err := doc.DataTo(&regime); err != nil {
		return nil, fmt.Errorf("failed to parse tax regime: %w", err)
	}
	return &regime, nil
}

func (s *FirestoreStore) UpsertEventTemplate(ctx context.Context, template *domain.EventTemplate) error {
	if template.ID == "" {
		template.ID = s.client.Collection(colEventTemplates).NewDoc().ID
	}
	_, err := s.client.Collection(colEventTemplates).Doc(template.ID).Set(ctx, template)
	return err
}

// ListActiveTemplates returns active templates of a regime ordered by code
func (s *FirestoreStore) ListActiveTemplates(ctx context.Context, regimeID string) ([]*domain.EventTemplate, error) {
	docs, err := s.client.Collection(colEventTemplates).
		Where("RegimeID", "==", regimeID).
		Where("Active", "==", true).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make([]*domain.EventTemplate, 0, len(docs))
	for _, doc := range docs {
		var tmpl domain.EventTemplate
		if err := doc.DataTo(&tmpl); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", doc.Ref.ID, err)
		}
		templates = append(templates, &tmpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Code != templates[j].Code {
			return templates[i].Code < templates[j].Code
		}
		return templates[i].ID < templates[j].ID
	})
	return templates, nil
}

// Calendar operations

// UpsertCalendarEvent writes the event under its derived ID inside a
// transaction so concurrent syncs agree on whether it was created.
func (s *FirestoreStore) UpsertCalendarEvent(ctx context.Context, event *domain.CalendarEvent) (bool, error) {
	event.ID = domain.CalendarEventID(event.AccountID, event.UserID, event.TemplateID, event.StartAt)
	ref := s.client.Collection(colCalendarEvents).Doc(event.ID)

	var created bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		created = snap == nil || !snap.Exists()
		if created {
			if event.Status == "" {
				event.Status = domain.EventStatusUpcoming
			}
			event.CreatedAt = now
		} else {
			var existing domain.CalendarEvent
			if err := snap.DataTo(&existing); err != nil {
				return fmt.Errorf("failed to parse calendar event: %w", err)
			}
			event.Status = existing.Status
			event.CompletedAt = existing.CompletedAt
			event.CreatedAt = existing.CreatedAt
		}
		event.UpdatedAt = now
		return tx.Set(ref, event)
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert calendar event: %w", err)
	}
	return created, nil
}

func (s *FirestoreStore) GetCalendarEvent(ctx context.Context, eventID string) (*domain.CalendarEvent, error) {
	doc, err := s.getDoc(ctx, colCalendarEvents, eventID, "calendar event")
	if err != nil {
		return nil, err
	}
	var event domain.CalendarEvent
	if err := doc.DataTo(&event); err != nil {
		return nil, fmt.Errorf("failed to parse calendar event: %w", err)
	}
	return &event, nil
}

func (s *FirestoreStore) UpdateCalendarEvent(ctx context.Context, event *domain.CalendarEvent) error {
	if err := s.requireDoc(ctx, colCalendarEvents, event.ID, "calendar event"); err != nil {
		return err
	}
	event.UpdatedAt = time.Now()
	_, err := s.client.Collection(colCalendarEvents).Doc(event.ID).Set(ctx, event)
	return err
}

// ListCalendarEvents lists an account's events ordered by start time
func (s *FirestoreStore) ListCalendarEvents(ctx context.Context, accountID, userID string, from, to *time.Time, pageSize int32, pageToken string) ([]*domain.CalendarEvent, string, error) {
	query := s.client.Collection(colCalendarEvents).Where("AccountID", "==", accountID)
	if userID != "" {
		query = query.Where("UserID", "in", []string{userID, ""})
	}
	if from != nil {
		query = query.Where("StartAt", ">=", *from)
	}
	if to != nil {
		query = query.Where("StartAt", "<=", *to)
	}

	query, err := s.applyOrderedPagination(ctx, query, colCalendarEvents, "StartAt", pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list calendar events: %w", err)
	}
	docs, nextPageToken := splitPage(docs, pageSize)

	events := make([]*domain.CalendarEvent, 0, len(docs))
	for _, doc := range docs {
		var event domain.CalendarEvent
		if err := doc.DataTo(&event); err != nil {
			return nil, "", fmt.Errorf("failed to parse calendar event: %w", err)
		}
		events = append(events, &event)
	}
	return events, nextPageToken, nil
}

// Scenario operations

func (s *FirestoreStore) CreateScenario(ctx context.Context, sc *domain.Scenario) error {
	if sc.ID == "" {
		sc.ID = s.client.Collection(colScenarios).NewDoc().ID
	}
	now := time.Now()
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = now
	}
	sc.UpdatedAt = now
	_, err := s.client.Collection(colScenarios).Doc(sc.ID).Set(ctx, sc)
	return err
}

func (s *FirestoreStore) GetScenario(ctx context.Context, scenarioID string) (*domain.Scenario, error) {
	doc, err := s.getDoc(ctx, colScenarios, scenarioID, "scenario")
	if err != nil {
		return nil, err
	}
	var sc domain.Scenario
	if err := doc.DataTo(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return &sc, nil
}

func (s *FirestoreStore) ListScenarios(ctx context.Context, accountID string, pageSize int32, pageToken string) ([]*domain.Scenario, string, error) {
	query := s.client.Collection(colScenarios).Where("AccountID", "==", accountID)
	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list scenarios: %w", err)
	}
	docs, nextPageToken := splitPage(docs, pageSize)

	scenarios := make([]*domain.Scenario, 0, len(docs))
	for _, doc := range docs {
		var sc domain.Scenario
		if err := doc.DataTo(&sc); err != nil {
			return nil, "", fmt.Errorf("failed to parse scenario: %w", err)
		}
		scenarios = append(scenarios, &sc)
	}
	return scenarios, nextPageToken, nil
}

// CreateScenarioInput appends the next input version. The document ID embeds
// the version so two concurrent saves cannot claim the same one.
func (s *FirestoreStore) CreateScenarioInput(ctx context.Context, input *domain.ScenarioInputRecord) error {
	if err := s.requireDoc(ctx, colScenarios, input.ScenarioID, "scenario"); err != nil {
		return err
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		latest := s.client.Collection(colScenarioInputs).
			Where("ScenarioID", "==", input.ScenarioID).
			OrderBy("Version", firestore.Desc).
			Limit(1)
		docs, err := tx.Documents(latest).GetAll()
		if err != nil {
			return fmt.Errorf("failed to read latest input: %w", err)
		}

		version := 1
		if len(docs) > 0 {
			var prev scenarioInputDoc
			if err := docs[0].DataTo(&prev); err != nil {
				return fmt.Errorf("failed to parse scenario input: %w", err)
			}
			version = prev.Version + 1
		}

		input.Version = version
		input.ID = fmt.Sprintf("%s-v%d", input.ScenarioID, version)
		return tx.Create(s.client.Collection(colScenarioInputs).Doc(input.ID), toScenarioInputDoc(input))
	})
}

func (s *FirestoreStore) GetLatestScenarioInput(ctx context.Context, scenarioID string) (*domain.ScenarioInputRecord, error) {
	docs, err := s.client.Collection(colScenarioInputs).
		Where("ScenarioID", "==", scenarioID).
		OrderBy("Version", firestore.Desc).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario input: %w", err)
	}
	if len(docs) == 0 {
		return nil, notFound("scenario input for", scenarioID)
	}

	var d scenarioInputDoc
	if err := docs[0].DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse scenario input: %w", err)
	}
	return d.toDomain(), nil
}

func (s *FirestoreStore) UpsertScenarioResult(ctx context.Context, result *domain.ScenarioResultRecord) error {
	if result.ScenarioID == "" {
		return fmt.Errorf("scenario ID is required")
	}
	_, err := s.client.Collection(colScenarioResults).Doc(result.ScenarioID).Set(ctx, toScenarioResultDoc(result))
	return err
}

func (s *FirestoreStore) GetScenarioResult(ctx context.Context, scenarioID string) (*domain.ScenarioResultRecord, error) {
	doc, err := s.getDoc(ctx, colScenarioResults, scenarioID, "scenario result for")
	if err != nil {
		return nil, err
	}
	var d scenarioResultDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse scenario result: %w", err)
	}
	return d.toDomain()
}

// Expense operations

// CreateExpense creates a new expense in Firestore
func (s *FirestoreStore) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	if expense.ID == "" {
		expense.ID = s.client.Collection(colExpenses).NewDoc().ID
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}
	_, err := s.client.Collection(colExpenses).Doc(expense.ID).Set(ctx, toExpenseDoc(expense))
	return err
}

// GetExpense retrieves an expense from Firestore
func (s *FirestoreStore) GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	doc, err := s.getDoc(ctx, colExpenses, expenseID, "expense")
	if err != nil {
		return nil, err
	}
	var d expenseDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse expense: %w", err)
	}
	return d.toDomain()
}

// DeleteExpense deletes an expense from Firestore
func (s *FirestoreStore) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := s.requireDoc(ctx, colExpenses, expenseID, "expense"); err != nil {
		return err
	}
	_, err := s.client.Collection(colExpenses).Doc(expenseID).Delete(ctx)
	return err
}

// ListExpenses lists an account's expenses ordered by date
func (s *FirestoreStore) ListExpenses(ctx context.Context, accountID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*domain.Expense, string, error) {
	query := s.client.Collection(colExpenses).Where("AccountID", "==", accountID)
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}

	query, err := s.applyOrderedPagination(ctx, query, colExpenses, "Date", pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list expenses: %w", err)
	}
	docs, nextPageToken := splitPage(docs, pageSize)

	expenses := make([]*domain.Expense, 0, len(docs))
	for _, doc := range docs {
		var d expenseDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, "", fmt.Errorf("failed to parse expense: %w", err)
		}
		expense, err := d.toDomain()
		if err != nil {
			return nil, "", err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nextPageToken, nil
}

// Receipt operations

func (s *FirestoreStore) CreateReceipt(ctx context.Context, receipt *domain.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = s.client.Collection(colReceipts).NewDoc().ID
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now()
	}
	_, err := s.client.Collection(colReceipts).Doc(receipt.ID).Set(ctx, toReceiptDoc(receipt))
	return err
}

func (s *FirestoreStore) GetReceipt(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	doc, err := s.getDoc(ctx, colReceipts, receiptID, "receipt")
	if err != nil {
		return nil, err
	}
	var d receiptDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse receipt: %w", err)
	}
	return d.toDomain()
}

func (s *FirestoreStore) UpdateReceipt(ctx context.Context, receipt *domain.Receipt) error {
	if err := s.requireDoc(ctx, colReceipts, receipt.ID, "receipt"); err != nil {
		return err
	}
	_, err := s.client.Collection(colReceipts).Doc(receipt.ID).Set(ctx, toReceiptDoc(receipt))
	return err
}

// Tax card operations

func (s *FirestoreStore) CreateTaxCard(ctx context.Context, card *domain.TaxCard) error {
	if card.ID == "" {
		card.ID = s.client.Collection(colTaxCards).NewDoc().ID
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}
	_, err := s.client.Collection(colTaxCards).Doc(card.ID).Set(ctx, toTaxCardDoc(card))
	return err
}

func (s *FirestoreStore) GetTaxCard(ctx context.Context, cardID string) (*domain.TaxCard, error) {
	doc, err := s.getDoc(ctx, colTaxCards, cardID, "tax card")
	if err != nil {
		return nil, err
	}
	var d taxCardDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse tax card: %w", err)
	}
	return d.toDomain()
}

func (s *FirestoreStore) UpdateTaxCard(ctx context.Context, card *domain.TaxCard) error {
	if err := s.requireDoc(ctx, colTaxCards, card.ID, "tax card"); err != nil {
		return err
	}
	_, err := s.client.Collection(colTaxCards).Doc(card.ID).Set(ctx, toTaxCardDoc(card))
	return err
}

// ListTaxCards lists an account's tax cards, oldest first
func (s *FirestoreStore) ListTaxCards(ctx context.Context, accountID string) ([]*domain.TaxCard, error) {
	docs, err := s.client.Collection(colTaxCards).
		Where("AccountID", "==", accountID).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list tax cards: %w", err)
	}

	cards := make([]*domain.TaxCard, 0, len(docs))
	for _, doc := range docs {
		var d taxCardDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse tax card: %w", err)
		}
		card, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}
