package search

import (
	"sort"
	"strings"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
)

// FilterExpenses runs params over an in-memory expense list. It backs search
// when no Algolia index is configured. Every query term must appear in the
// description or category; hits come back newest first.
func FilterExpenses(expenses []*domain.Expense, params Params) *Response {
	terms := strings.Fields(strings.ToLower(params.Query))

	var matched []*domain.Expense
	for _, e := range expenses {
		if e.AccountID != params.AccountID {
			continue
		}
		if params.Category != "" && e.Category != params.Category {
			continue
		}
		if params.AmountMin.IsPositive() && e.Amount.LessThan(params.AmountMin) {
			continue
		}
		if params.AmountMax.IsPositive() && e.Amount.GreaterThan(params.AmountMax) {
			continue
		}
		if params.StartDate != nil && e.Date.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && e.Date.After(*params.EndDate) {
			continue
		}
		if !matchesTerms(e, terms) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	page, pageSize := params.NormalizePage()
	out := &Response{
		Hits:       []*Hit{},
		TotalCount: len(matched),
		TotalPages: (len(matched) + pageSize - 1) / pageSize,
		Page:       page,
	}

	start := page * pageSize
	if start >= len(matched) {
		return out
	}
	end := min(start+pageSize, len(matched))
	for _, e := range matched[start:end] {
		out.Hits = append(out.Hits, hitFromExpense(e))
	}
	return out
}

func matchesTerms(e *domain.Expense, terms []string) bool {
	text := strings.ToLower(e.Description + " " + e.Category)
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

func hitFromExpense(e *domain.Expense) *Hit {
	date := e.Date
	return &Hit{
		ExpenseID:   e.ID,
		AccountID:   e.AccountID,
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount,
		Date:        &date,
		ReceiptID:   e.ReceiptID,
	}
}
