// Package search indexes account expenses in Algolia for full-text lookup.
package search

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v4/algolia/search"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultIndexName is used when Config.IndexName is empty.
const DefaultIndexName = "taxpilot-expenses"

// Config holds Algolia configuration.
type Config struct {
	AppID     string
	APIKey    string // needs write access for indexing
	IndexName string
}

// Index is the expense search backend used by the service.
type Index interface {
	Search(ctx context.Context, params Params) (*Response, error)
	IndexExpense(ctx context.Context, expense *domain.Expense) error
	RemoveExpense(ctx context.Context, expenseID string) error
}

// Params defines the input for an expense search.
type Params struct {
	Query     string
	AccountID string
	Category  string
	// Amount range; zero means unbounded.
	AmountMin decimal.Decimal
	AmountMax decimal.Decimal
	StartDate *time.Time
	EndDate   *time.Time
	// Pagination (offset-based)
	Page     int
	PageSize int
}

// Hit is one matching expense.
type Hit struct {
	ExpenseID   string          `json:"expenseId"`
	AccountID   string          `json:"accountId"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *time.Time      `json:"date,omitempty"`
	ReceiptID   string          `json:"receiptId,omitempty"`
}

// Response holds one page of hits.
type Response struct {
	Hits       []*Hit
	TotalCount int
	TotalPages int
	Page       int
}

// NormalizePage clamps paging to a 25-hit default and 100-hit maximum.
func (p Params) NormalizePage() (page, pageSize int) {
	pageSize = p.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 100 {
		pageSize = 100
	}
	page = p.Page
	if page < 0 {
		page = 0
	}
	return page, pageSize
}

// AlgoliaClient wraps the Algolia search API client.
type AlgoliaClient struct {
	client    *search.APIClient
	indexName string
}

var _ Index = (*AlgoliaClient)(nil)

// NewAlgoliaClient creates a new Algolia search client.
func NewAlgoliaClient(cfg Config) (*AlgoliaClient, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("algolia AppID and APIKey are required")
	}
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndexName
	}

	client, err := search.NewClient(cfg.AppID, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("creating algolia client: %w", err)
	}

	return &AlgoliaClient{
		client:    client,
		indexName: cfg.IndexName,
	}, nil
}

// IndexName reports the target index.
func (c *AlgoliaClient) IndexName() string {
	return c.indexName
}

// Search performs a full-text search scoped to one account.
func (c *AlgoliaClient) Search(ctx context.Context, params Params) (*Response, error) {
	if params.AccountID == "" {
		return nil, fmt.Errorf("algolia search: account is required")
	}
	page, pageSize := params.NormalizePage()

	searchParams := search.SearchParamsObjectAsSearchParams(
		search.NewSearchParamsObject().
			SetQuery(params.Query).
			SetHitsPerPage(int32(pageSize)).
			SetPage(int32(page)).
			SetFilters(buildFilters(params)),
	)

	resp, err := c.client.SearchSingleIndex(c.client.NewApiSearchSingleIndexRequest(c.indexName).WithSearchParams(searchParams))
	if err != nil {
		return nil, fmt.Errorf("algolia search: %w", err)
	}

	hits := make([]*Hit, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		if hit := hitFromProps(h.AdditionalProperties); hit != nil {
			hits = append(hits, hit)
		}
	}

	out := &Response{Hits: hits, Page: page}
	if resp.NbHits != nil {
		out.TotalCount = int(*resp.NbHits)
	}
	if resp.NbPages != nil {
		out.TotalPages = int(*resp.NbPages)
	}
	return out, nil
}

// IndexExpense writes or replaces the record for expense.
func (c *AlgoliaClient) IndexExpense(ctx context.Context, expense *domain.Expense) error {
	_, err := c.client.SaveObject(c.client.NewApiSaveObjectRequest(c.indexName, expenseRecord(expense)))
	if err != nil {
		return fmt.Errorf("algolia index %s: %w", expense.ID, err)
	}
	return nil
}

// RemoveExpense deletes the record for expenseID.
func (c *AlgoliaClient) RemoveExpense(ctx context.Context, expenseID string) error {
	_, err := c.client.DeleteObject(c.client.NewApiDeleteObjectRequest(c.indexName, expenseID))
	if err != nil {
		return fmt.Errorf("algolia delete %s: %w", expenseID, err)
	}
	return nil
}

func int32Ptr(v int32) *int32 { return &v }

// ApplySettings pushes the index configuration: searchable fields, the
// account facet used for tenant isolation and the numeric range fields.
func (c *AlgoliaClient) ApplySettings(ctx context.Context) (int64, error) {
	settings := &search.IndexSettings{
		SearchableAttributes: []string{
			"Description",
			"Category",
		},
		AttributesForFaceting: []string{
			"filterOnly(AccountId)",
			"filterOnly(UserId)",
			"searchable(Category)",
		},
		NumericAttributesForFiltering: []string{
			"Amount",
			"DateUnix",
		},
		// Most recent expenses first
		CustomRanking: []string{
			"desc(DateUnix)",
		},
		AttributesToRetrieve: []string{
			"objectID",
			"AccountId",
			"Description",
			"Category",
			"Amount",
			"DateUnix",
			"ReceiptId",
		},
		AttributesToHighlight: []string{
			"Description",
			"Category",
		},
		HitsPerPage:          int32Ptr(25),
		MaxValuesPerFacet:    int32Ptr(100),
		MinWordSizefor1Typo:  int32Ptr(4),
		MinWordSizefor2Typos: int32Ptr(8),
	}

	resp, err := c.client.SetSettings(c.client.NewApiSetSettingsRequest(c.indexName, settings))
	if err != nil {
		return 0, fmt.Errorf("algolia settings: %w", err)
	}
	return resp.TaskID, nil
}

// expenseRecord is the Algolia record for an expense. Amount is indexed as a
// float because Algolia numeric filters do not accept strings.
func expenseRecord(e *domain.Expense) map[string]any {
	amount, _ := e.Amount.Float64()
	record := map[string]any{
		"objectID":    e.ID,
		"AccountId":   e.AccountID,
		"UserId":      e.UserID,
		"Description": e.Description,
		"Category":    e.Category,
		"Amount":      amount,
		"DateUnix":    e.Date.Unix(),
	}
	if e.ReceiptID != "" {
		record["ReceiptId"] = e.ReceiptID
	}
	return record
}

// buildFilters constructs the Algolia filter string. AccountId is always
// enforced.
func buildFilters(params Params) string {
	parts := []string{fmt.Sprintf("AccountId:%q", params.AccountID)}

	if params.Category != "" {
		parts = append(parts, fmt.Sprintf("Category:%q", params.Category))
	}
	if params.AmountMin.IsPositive() {
		parts = append(parts, fmt.Sprintf("Amount >= %s", params.AmountMin.String()))
	}
	if params.AmountMax.IsPositive() {
		parts = append(parts, fmt.Sprintf("Amount <= %s", params.AmountMax.String()))
	}
	if params.StartDate != nil {
		parts = append(parts, fmt.Sprintf("DateUnix >= %d", params.StartDate.Unix()))
	}
	if params.EndDate != nil {
		parts = append(parts, fmt.Sprintf("DateUnix <= %d", params.EndDate.Unix()))
	}

	return strings.Join(parts, " AND ")
}

// hitFromProps converts an Algolia hit. Hits without an objectID are dropped.
func hitFromProps(props map[string]any) *Hit {
	hit := &Hit{}

	if v, ok := props["objectID"].(string); ok {
		hit.ExpenseID = v
	}
	if v, ok := props["AccountId"].(string); ok {
		hit.AccountID = v
	}
	if v, ok := props["Description"].(string); ok {
		hit.Description = v
	}
	if v, ok := props["Category"].(string); ok {
		hit.Category = v
	}
	if v, ok := props["ReceiptId"].(string); ok {
		hit.ReceiptID = v
	}
	if v, ok := props["Amount"].(float64); ok {
		hit.Amount = decimal.NewFromFloat(v).Round(2)
	}
	if v, ok := props["DateUnix"].(float64); ok && v > 0 {
		t := time.Unix(int64(v), 0).UTC()
		hit.Date = &t
	}

	if hit.ExpenseID == "" {
		log.Printf("[Search] skipping hit with no objectID")
		return nil
	}
	return hit
}
