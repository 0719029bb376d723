package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/ai"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/extraction"
	"github.com/castlemilk/taxpilot/backend/internal/filestore"
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/castlemilk/taxpilot/backend/internal/search"
	"github.com/castlemilk/taxpilot/backend/internal/store"
	"github.com/google/uuid"
)

// ScenarioProcessor calculates a scenario's latest input and stores the result.
type ScenarioProcessor struct {
	store    store.Store
	registry *scenario.Registry
	ai       ai.Client
	now      func() time.Time
}

func NewScenarioProcessor(s store.Store, registry *scenario.Registry, client ai.Client) *ScenarioProcessor {
	return &ScenarioProcessor{store: s, registry: registry, ai: client, now: time.Now}
}

func (p *ScenarioProcessor) Process(ctx context.Context, job *domain.Job) error {
	sc, err := p.store.GetScenario(ctx, job.SubjectID)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	input, err := p.store.GetLatestScenarioInput(ctx, sc.ID)
	if err != nil {
		return fmt.Errorf("load scenario input: %w", err)
	}

	result := &domain.ScenarioResultRecord{
		ScenarioID:   sc.ID,
		InputVersion: input.Version,
		RegimeKey:    sc.RegimeKey,
		Result:       p.registry.Calculate(sc.RegimeKey, input.Input),
		CalculatedAt: p.now().UTC(),
	}
	if err := p.store.UpsertScenarioResult(ctx, result); err != nil {
		return fmt.Errorf("save scenario result: %w", err)
	}

	if p.ai == nil {
		return nil
	}
	recs, err := p.ai.Recommend(ctx, ai.RecommendationRequest{
		ScenarioID: sc.ID,
		RegimeKey:  sc.RegimeKey,
		Input:      input.Input,
		Result:     result.Result,
	})
	if err != nil {
		log.Printf("[ScenarioJob] recommendations unavailable for %s: %v", sc.ID, err)
		return nil
	}
	result.Recommendations = recs
	if err := p.store.UpsertScenarioResult(ctx, result); err != nil {
		log.Printf("[ScenarioJob] failed to save recommendations for %s: %v", sc.ID, err)
	}
	return nil
}

// ReceiptProcessor runs OCR on an uploaded receipt and books an expense when
// a total is found.
type ReceiptProcessor struct {
	store store.Store
	files filestore.Store
	ai    ai.Client
	index search.Index
	retry ai.RetryConfig
	now   func() time.Time
}

func NewReceiptProcessor(s store.Store, files filestore.Store, client ai.Client) *ReceiptProcessor {
	return &ReceiptProcessor{store: s, files: files, ai: client, retry: ai.DefaultRetryConfig, now: time.Now}
}

// WithSearchIndex indexes expenses booked from receipts.
func (p *ReceiptProcessor) WithSearchIndex(index search.Index) *ReceiptProcessor {
	p.index = index
	return p
}

func (p *ReceiptProcessor) Process(ctx context.Context, job *domain.Job) error {
	receipt, err := p.store.GetReceipt(ctx, job.SubjectID)
	if err != nil {
		return fmt.Errorf("load receipt: %w", err)
	}

	if err := p.process(ctx, receipt); err != nil {
		receipt.Status = domain.ProcessingFailed
		receipt.Error = err.Error()
		p.markProcessed(receipt)
		if uerr := p.store.UpdateReceipt(ctx, receipt); uerr != nil {
			log.Printf("[ReceiptJob] failed to mark receipt %s failed: %v", receipt.ID, uerr)
		}
		return err
	}
	return nil
}

func (p *ReceiptProcessor) process(ctx context.Context, receipt *domain.Receipt) error {
	data, err := p.files.Get(ctx, receipt.StoragePath)
	if err != nil {
		return fmt.Errorf("read receipt file: %w", err)
	}

	doc := ai.Document{Data: data, Filename: receipt.Filename, ContentType: receipt.ContentType}
	analysis, err := ai.WithRetry(ctx, p.retry, func(ctx context.Context) (*ai.ReceiptAnalysis, error) {
		return p.ai.AnalyzeReceipt(ctx, doc)
	})
	if err != nil {
		return fmt.Errorf("analyze receipt: %w", err)
	}

	merchant := extraction.NormalizeMerchant(analysis.Merchant)
	receipt.Merchant = merchant.Name
	receipt.Total = analysis.Total
	receipt.OCR = analysis.Raw
	receipt.Status = domain.ProcessingCompleted
	receipt.Error = ""
	p.markProcessed(receipt)

	if receipt.Total != nil && receipt.Total.IsPositive() && receipt.ExpenseID == "" {
		category := merchant.Category
		if category == extraction.CategoryOther && analysis.Category != "" {
			category = strings.ToLower(analysis.Category)
		}
		description := merchant.Name
		if description == "" {
			description = receipt.Filename
		}

		expense := &domain.Expense{
			ID:          uuid.New().String(),
			AccountID:   receipt.AccountID,
			UserID:      receipt.UserID,
			Description: description,
			Category:    category,
			Amount:      receipt.Total.Round(2),
			Date:        receiptDate(analysis.Date, receipt.CreatedAt),
			ReceiptID:   receipt.ID,
			CreatedAt:   p.now().UTC(),
		}
		if err := p.store.CreateExpense(ctx, expense); err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		receipt.ExpenseID = expense.ID
		if p.index != nil {
			if err := p.index.IndexExpense(ctx, expense); err != nil {
				log.Printf("[ReceiptJob] failed to index expense %s: %v", expense.ID, err)
			}
		}
	}

	if err := p.store.UpdateReceipt(ctx, receipt); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

func (p *ReceiptProcessor) markProcessed(receipt *domain.Receipt) {
	now := p.now().UTC()
	receipt.ProcessedAt = &now
}

var receiptDateLayouts = []string{"2006-01-02", "02.01.2006", "2.1.2006", "02/01/2006"}

// receiptDate parses the OCR date, falling back to the upload time.
func receiptDate(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range receiptDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}

// TaxCardProcessor reads withholding terms from an uploaded tax card. Text
// PDFs are parsed locally; images and scanned PDFs go to the AI service.
type TaxCardProcessor struct {
	store store.Store
	files filestore.Store
	ai    ai.Client
	retry ai.RetryConfig
	now   func() time.Time
}

func NewTaxCardProcessor(s store.Store, files filestore.Store, client ai.Client) *TaxCardProcessor {
	return &TaxCardProcessor{store: s, files: files, ai: client, retry: ai.DefaultRetryConfig, now: time.Now}
}

// Tax card field sources.
const (
	SourcePDFText = "pdf-text"
	SourceAI      = "ai"
)

func (p *TaxCardProcessor) Process(ctx context.Context, job *domain.Job) error {
	card, err := p.store.GetTaxCard(ctx, job.SubjectID)
	if err != nil {
		return fmt.Errorf("load tax card: %w", err)
	}

	now := p.now().UTC()
	card.ProcessedAt = &now
	if err := p.process(ctx, card); err != nil {
		card.Status = domain.ProcessingFailed
		card.Error = err.Error()
		if uerr := p.store.UpdateTaxCard(ctx, card); uerr != nil {
			log.Printf("[TaxCardJob] failed to mark tax card %s failed: %v", card.ID, uerr)
		}
		return err
	}

	card.Status = domain.ProcessingCompleted
	card.Error = ""
	if err := p.store.UpdateTaxCard(ctx, card); err != nil {
		return fmt.Errorf("save tax card: %w", err)
	}
	return nil
}

func (p *TaxCardProcessor) process(ctx context.Context, card *domain.TaxCard) error {
	data, err := p.files.Get(ctx, card.StoragePath)
	if err != nil {
		return fmt.Errorf("read tax card file: %w", err)
	}

	if extraction.IsPDF(data) {
		analysis := extraction.AnalyzePDF(data)
		if analysis.Error == nil && !analysis.IsScanned {
			fields, err := extraction.ParseTaxCardText(analysis.ExtractedText)
			if err == nil {
				card.TaxYear = fields.TaxYear
				card.BaseRate = fields.BaseRate
				card.AdditionalRate = fields.AdditionalRate
				card.IncomeLimit = fields.IncomeLimit
				card.Source = SourcePDFText
				return nil
			}
			log.Printf("[TaxCardJob] text layer of %s has no fields, using AI: %v", card.ID, err)
		}
	}

	doc := ai.Document{Data: data, Filename: card.Filename, ContentType: card.ContentType}
	parsed, err := ai.WithRetry(ctx, p.retry, func(ctx context.Context) (*ai.TaxCardAnalysis, error) {
		return p.ai.ParseTaxCard(ctx, doc)
	})
	if err != nil {
		return fmt.Errorf("parse tax card: %w", err)
	}
	card.TaxYear = parsed.TaxYear
	card.BaseRate = parsed.BaseRate
	card.AdditionalRate = parsed.AdditionalRate
	card.IncomeLimit = parsed.IncomeLimit
	card.Source = SourceAI
	return nil
}
