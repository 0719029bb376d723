package scenario

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// AssumptionAdditionalDeductions is the assumptions key a bracket strategy
// reads as an extra what-if deduction.
const AssumptionAdditionalDeductions = "additionalDeductions"

// Bracket is one marginal band. UpTo is the inclusive upper bound of the band;
// a zero UpTo marks the open top band.
type Bracket struct {
	UpTo decimal.Decimal
	Rate decimal.Decimal
}

// ValidateBrackets checks that bands ascend, rates lie in [0, 1] and only the
// last band is open.
func ValidateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("at least one bracket is required")
	}
	prev := decimal.Zero
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("bracket %d: rate %s outside [0, 1]", i, b.Rate)
		}
		if b.UpTo.IsZero() {
			if i != len(brackets)-1 {
				return fmt.Errorf("bracket %d: only the last bracket may be open-ended", i)
			}
			continue
		}
		if !b.UpTo.GreaterThan(prev) {
			return fmt.Errorf("bracket %d: upper bound %s must exceed %s", i, b.UpTo, prev)
		}
		prev = b.UpTo
	}
	return nil
}

// BracketTax applies marginal brackets to taxable income.
func BracketTax(taxable decimal.Decimal, brackets []Bracket) decimal.Decimal {
	if !taxable.IsPositive() {
		return decimal.Zero
	}
	tax := decimal.Zero
	lower := decimal.Zero
	for _, b := range brackets {
		upper := taxable
		if !b.UpTo.IsZero() && b.UpTo.LessThan(upper) {
			upper = b.UpTo
		}
		if upper.GreaterThan(lower) {
			tax = tax.Add(upper.Sub(lower).Mul(b.Rate))
		}
		if b.UpTo.IsZero() || !taxable.GreaterThan(b.UpTo) {
			break
		}
		lower = b.UpTo
	}
	return tax
}

// BracketStrategy returns a progressive strategy over brackets. Brackets are
// copied and sorted so the caller may reuse its slice. Numeric
// AssumptionAdditionalDeductions in the assumptions are added to deductions.
func BracketStrategy(brackets []Bracket) Strategy {
	sorted := make([]Bracket, len(brackets))
	copy(sorted, brackets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].UpTo.IsZero() {
			return false
		}
		if sorted[j].UpTo.IsZero() {
			return true
		}
		return sorted[i].UpTo.LessThan(sorted[j].UpTo)
	})

	return func(in Input) Result {
		income := SumNumeric(in.Income)
		deductions := SumNumeric(in.Deductions)
		if extra, ok := numericValue(in.Assumptions[AssumptionAdditionalDeductions]); ok && extra.IsPositive() {
			deductions = deductions.Add(extra)
		}
		taxable := TaxableIncome(income, deductions)
		return newResult(income, deductions, taxable, BracketTax(taxable, sorted))
	}
}
