package search

import (
	"testing"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "account only",
			params: Params{AccountID: "acct-1"},
			want:   `AccountId:"acct-1"`,
		},
		{
			name: "all filters",
			params: Params{
				AccountID: "acct-1",
				Category:  "healthcare",
				AmountMin: decimal.NewFromInt(10),
				AmountMax: decimal.RequireFromString("99.5"),
				StartDate: &start,
				EndDate:   &end,
			},
			want: `AccountId:"acct-1" AND Category:"healthcare" AND Amount >= 10 AND Amount <= 99.5 AND DateUnix >= 1704067200 AND DateUnix <= 1735603200`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFilters(tt.params))
		})
	}
}

func TestNormalizePage(t *testing.T) {
	page, size := Params{}.NormalizePage()
	assert.Equal(t, 0, page)
	assert.Equal(t, 25, size)

	page, size = Params{Page: -3, PageSize: 500}.NormalizePage()
	assert.Equal(t, 0, page)
	assert.Equal(t, 100, size)
}

func TestExpenseRecordRoundTrip(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	record := expenseRecord(&domain.Expense{
		ID:          "exp-1",
		AccountID:   "acct-1",
		UserID:      "user-1",
		Description: "Train ticket",
		Category:    "transport",
		Amount:      decimal.RequireFromString("12.40"),
		Date:        date,
		ReceiptID:   "rcpt-1",
	})
	assert.Equal(t, "exp-1", record["objectID"])
	assert.Equal(t, 12.4, record["Amount"])

	// Algolia returns numbers as float64.
	record["DateUnix"] = float64(record["DateUnix"].(int64))
	hit := hitFromProps(record)
	require.NotNil(t, hit)
	assert.Equal(t, "exp-1", hit.ExpenseID)
	assert.Equal(t, "acct-1", hit.AccountID)
	assert.Equal(t, "rcpt-1", hit.ReceiptID)
	assert.True(t, hit.Amount.Equal(decimal.RequireFromString("12.40")))
	require.NotNil(t, hit.Date)
	assert.True(t, hit.Date.Equal(date))
}

func TestHitFromProps_MissingID(t *testing.T) {
	assert.Nil(t, hitFromProps(map[string]any{"Description": "orphan"}))
}

func TestNewAlgoliaClient_RequiresCredentials(t *testing.T) {
	_, err := NewAlgoliaClient(Config{AppID: "app"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AppID and APIKey are required")
}
