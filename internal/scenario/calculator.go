// Package scenario computes tax estimates for what-if scenarios.
//
// A Strategy maps scenario input to a Result. Strategies are keyed by tax
// regime and looked up through an immutable Registry built at startup.
package scenario

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultKey is the registry fallback key.
const DefaultKey = "default"

// Money values are rounded to cents; rates to basis points.
const (
	moneyPlaces = 2
	ratePlaces  = 4
)

// PlaceholderRate is the flat rate used by the default strategy.
var PlaceholderRate = decimal.NewFromFloat(0.25)

// Input is the scenario data handed to a strategy. Values in the maps are
// arbitrary JSON; only numeric values are summed.
type Input struct {
	Income      map[string]any `json:"incomeJson"`
	Deductions  map[string]any `json:"deductionsJson"`
	Assumptions map[string]any `json:"assumptionsJson,omitempty"`
	LifeEvents  map[string]any `json:"lifeEventsJson,omitempty"`
}

// Breakdown explains a Result.
type Breakdown struct {
	Income        decimal.Decimal `json:"income"`
	Deductions    decimal.Decimal `json:"deductions"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
}

// Result is the outcome of a strategy.
type Result struct {
	TaxableIncome decimal.Decimal `json:"taxableIncome"`
	EstimatedTax  decimal.Decimal `json:"estimatedTax"`
	NetIncome     decimal.Decimal `json:"netIncome"`
	Breakdown     Breakdown       `json:"breakdown"`
}

// Strategy computes a Result for one regime. Implementations must be pure.
type Strategy func(Input) Result

// DefaultStrategy applies PlaceholderRate to income net of deductions. It is
// not a tax computation; regimes with real brackets register their own.
func DefaultStrategy(in Input) Result {
	income := SumNumeric(in.Income)
	deductions := SumNumeric(in.Deductions)
	taxable := TaxableIncome(income, deductions)
	return newResult(income, deductions, taxable, taxable.Mul(PlaceholderRate))
}

// TaxableIncome is income less deductions, floored at zero.
func TaxableIncome(income, deductions decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, income.Sub(deductions))
}

// newResult rounds and assembles a Result. Net income is measured against
// gross income, not taxable income.
func newResult(income, deductions, taxable, tax decimal.Decimal) Result {
	income = income.Round(moneyPlaces)
	deductions = deductions.Round(moneyPlaces)
	tax = tax.Round(moneyPlaces)

	rate := decimal.Zero
	if income.IsPositive() {
		rate = tax.Div(income).Round(ratePlaces)
	}

	return Result{
		TaxableIncome: taxable.Round(moneyPlaces),
		EstimatedTax:  tax,
		NetIncome:     income.Sub(tax),
		Breakdown: Breakdown{
			Income:        income,
			Deductions:    deductions,
			EffectiveRate: rate,
		},
	}
}

// SumNumeric adds every numeric value in m. Strings, booleans, nulls, nested
// values and non-finite numbers contribute zero. A nil map sums to zero.
func SumNumeric(m map[string]any) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		if d, ok := numericValue(v); ok {
			total = total.Add(d)
		}
	}
	return total
}

func numericValue(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return finiteFloat(n)
	case float32:
		return finiteFloat(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case decimal.Decimal:
		return n, true
	default:
		return decimal.Zero, false
	}
}

func finiteFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
