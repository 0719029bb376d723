package store

import (
	"fmt"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/shopspring/decimal"
)

// Firestore cannot encode decimal.Decimal, so money is persisted as decimal
// strings. Field names stay PascalCase to match the query filters below.

type accountDoc struct {
	ID        string
	Name      string
	OwnerID   string
	RegimeID  string
	Members   []memberDoc
	MemberIDs []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type memberDoc struct {
	UserID string
	Role   string
}

func toAccountDoc(a *domain.Account) *accountDoc {
	doc := &accountDoc{
		ID:        a.ID,
		Name:      a.Name,
		OwnerID:   a.OwnerID,
		RegimeID:  a.RegimeID,
		MemberIDs: []string{a.OwnerID},
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	for _, m := range a.Members {
		doc.Members = append(doc.Members, memberDoc{UserID: m.UserID, Role: string(m.Role)})
		if m.UserID != a.OwnerID {
			doc.MemberIDs = append(doc.MemberIDs, m.UserID)
		}
	}
	return doc
}

func (d *accountDoc) toDomain() *domain.Account {
	a := &domain.Account{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		RegimeID:  d.RegimeID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, m := range d.Members {
		a.Members = append(a.Members, domain.AccountMember{UserID: m.UserID, Role: domain.AccountRole(m.Role)})
	}
	return a
}

type scenarioInputDoc struct {
	ID          string
	ScenarioID  string
	Version     int
	Income      map[string]interface{}
	Deductions  map[string]interface{}
	Assumptions map[string]interface{}
	LifeEvents  map[string]interface{}
	CreatedAt   time.Time
}

func toScenarioInputDoc(r *domain.ScenarioInputRecord) *scenarioInputDoc {
	return &scenarioInputDoc{
		ID:          r.ID,
		ScenarioID:  r.ScenarioID,
		Version:     r.Version,
		Income:      r.Input.Income,
		Deductions:  r.Input.Deductions,
		Assumptions: r.Input.Assumptions,
		LifeEvents:  r.Input.LifeEvents,
		CreatedAt:   r.CreatedAt,
	}
}

func (d *scenarioInputDoc) toDomain() *domain.ScenarioInputRecord {
	return &domain.ScenarioInputRecord{
		ID:         d.ID,
		ScenarioID: d.ScenarioID,
		Version:    d.Version,
		Input: scenario.Input{
			Income:      d.Income,
			Deductions:  d.Deductions,
			Assumptions: d.Assumptions,
			LifeEvents:  d.LifeEvents,
		},
		CreatedAt: d.CreatedAt,
	}
}

type scenarioResultDoc struct {
	ScenarioID      string
	InputVersion    int
	RegimeKey       string
	TaxableIncome   string
	EstimatedTax    string
	NetIncome       string
	Income          string
	Deductions      string
	EffectiveRate   string
	Recommendations []string
	CalculatedAt    time.Time
}

func toScenarioResultDoc(r *domain.ScenarioResultRecord) *scenarioResultDoc {
	return &scenarioResultDoc{
		ScenarioID:      r.ScenarioID,
		InputVersion:    r.InputVersion,
		RegimeKey:       r.RegimeKey,
		TaxableIncome:   r.Result.TaxableIncome.String(),
		EstimatedTax:    r.Result.EstimatedTax.String(),
		NetIncome:       r.Result.NetIncome.String(),
		Income:          r.Result.Breakdown.Income.String(),
		Deductions:      r.Result.Breakdown.Deductions.String(),
		EffectiveRate:   r.Result.Breakdown.EffectiveRate.String(),
		Recommendations: r.Recommendations,
		CalculatedAt:    r.CalculatedAt,
	}
}

func (d *scenarioResultDoc) toDomain() (*domain.ScenarioResultRecord, error) {
	var p decimalParser
	res := scenario.Result{
		TaxableIncome: p.parse("TaxableIncome", d.TaxableIncome),
		EstimatedTax:  p.parse("EstimatedTax", d.EstimatedTax),
		NetIncome:     p.parse("NetIncome", d.NetIncome),
		Breakdown: scenario.Breakdown{
			Income:        p.parse("Income", d.Income),
			Deductions:    p.parse("Deductions", d.Deductions),
			EffectiveRate: p.parse("EffectiveRate", d.EffectiveRate),
		},
	}
	if p.err != nil {
		return nil, p.err
	}
	return &domain.ScenarioResultRecord{
		ScenarioID:      d.ScenarioID,
		InputVersion:    d.InputVersion,
		RegimeKey:       d.RegimeKey,
		Result:          res,
		Recommendations: d.Recommendations,
		CalculatedAt:    d.CalculatedAt,
	}, nil
}

type expenseDoc struct {
	ID          string
	AccountID   string
	UserID      string
	Description string
	Category    string
	Amount      string
	Date        time.Time
	ReceiptID   string
	CreatedAt   time.Time
}

func toExpenseDoc(e *domain.Expense) *expenseDoc {
	return &expenseDoc{
		ID:          e.ID,
		AccountID:   e.AccountID,
		UserID:      e.UserID,
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount.String(),
		Date:        e.Date,
		ReceiptID:   e.ReceiptID,
		CreatedAt:   e.CreatedAt,
	}
}

func (d *expenseDoc) toDomain() (*domain.Expense, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("expense %s amount: %w", d.ID, err)
	}
	return &domain.Expense{
		ID:          d.ID,
		AccountID:   d.AccountID,
		UserID:      d.UserID,
		Description: d.Description,
		Category:    d.Category,
		Amount:      amount,
		Date:        d.Date,
		ReceiptID:   d.ReceiptID,
		CreatedAt:   d.CreatedAt,
	}, nil
}

type receiptDoc struct {
	ID          string
	AccountID   string
	UserID      string
	Filename    string
	ContentType string
	StoragePath string
	Status      string
	Merchant    string
	Total       string
	OCR         map[string]interface{}
	ExpenseID   string
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func toReceiptDoc(r *domain.Receipt) *receiptDoc {
	doc := &receiptDoc{
		ID:          r.ID,
		AccountID:   r.AccountID,
		UserID:      r.UserID,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		StoragePath: r.StoragePath,
		Status:      string(r.Status),
		Merchant:    r.Merchant,
		OCR:         r.OCR,
		ExpenseID:   r.ExpenseID,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		ProcessedAt: r.ProcessedAt,
	}
	if r.Total != nil {
		doc.Total = r.Total.String()
	}
	return doc
}

func (d *receiptDoc) toDomain() (*domain.Receipt, error) {
	r := &domain.Receipt{
		ID:          d.ID,
		AccountID:   d.AccountID,
		UserID:      d.UserID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		StoragePath: d.StoragePath,
		Status:      domain.ProcessingStatus(d.Status),
		Merchant:    d.Merchant,
		OCR:         d.OCR,
		ExpenseID:   d.ExpenseID,
		Error:       d.Error,
		CreatedAt:   d.CreatedAt,
		ProcessedAt: d.ProcessedAt,
	}
	if d.Total != "" {
		total, err := decimal.NewFromString(d.Total)
		if err != nil {
			return nil, fmt.Errorf("receipt %s total: %w", d.ID, err)
		}
		r.Total = &total
	}
	return r, nil
}

type taxCardDoc struct {
	ID             string
	AccountID      string
	UserID         string
	Filename       string
	ContentType    string
	StoragePath    string
	Status         string
	TaxYear        int
	BaseRate       string
	AdditionalRate string
	IncomeLimit    string
	Source         string
	Error          string
	CreatedAt      time.Time
	ProcessedAt    *time.Time
}

func toTaxCardDoc(c *domain.TaxCard) *taxCardDoc {
	return &taxCardDoc{
		ID:             c.ID,
		AccountID:      c.AccountID,
		UserID:         c.UserID,
		Filename:       c.Filename,
		ContentType:    c.ContentType,
		StoragePath:    c.StoragePath,
		Status:         string(c.Status),
		TaxYear:        c.TaxYear,
		BaseRate:       c.BaseRate.String(),
		AdditionalRate: c.AdditionalRate.String(),
		IncomeLimit:    c.IncomeLimit.String(),
		Source:         c.Source,
		Error:          c.Error,
		CreatedAt:      c.CreatedAt,
		ProcessedAt:    c.ProcessedAt,
	}
}

func (d *taxCardDoc) toDomain() (*domain.TaxCard, error) {
	var p decimalParser
	c := &domain.TaxCard{
		ID:             d.ID,
		AccountID:      d.AccountID,
		UserID:         d.UserID,
		Filename:       d.Filename,
		ContentType:    d.ContentType,
		StoragePath:    d.StoragePath,
		Status:         domain.ProcessingStatus(d.Status),
		TaxYear:        d.TaxYear,
		BaseRate:       p.parse("BaseRate", d.BaseRate),
		AdditionalRate: p.parse("AdditionalRate", d.AdditionalRate),
		IncomeLimit:    p.parse("IncomeLimit", d.IncomeLimit),
		Source:         d.Source,
		Error:          d.Error,
		CreatedAt:      d.CreatedAt,
		ProcessedAt:    d.ProcessedAt,
	}
	if p.err != nil {
		return nil, fmt.Errorf("tax card %s: %w", d.ID, p.err)
	}
	return c, nil
}

// decimalParser parses a run of decimal fields and keeps the first error.
// Empty strings read as zero.
type decimalParser struct {
	err error
}

func (p *decimalParser) parse(field, s string) decimal.Decimal {
	if s == "" || p.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.err = fmt.Errorf("field %s: %w", field, err)
		return decimal.Zero
	}
	return d
}
