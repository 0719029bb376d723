package extraction

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoTaxCardFields is returned when text contains none of the withholding fields.
var ErrNoTaxCardFields = errors.New("no tax card fields found")

// TaxCardFields are the withholding terms printed on a tax card.
// Rates are percentages, e.g. 18.5 for 18.5 %.
type TaxCardFields struct {
	TaxYear        int
	BaseRate       decimal.Decimal
	AdditionalRate decimal.Decimal
	IncomeLimit    decimal.Decimal
	Found          int // number of fields matched
}

// Labels cover English and Finnish tax card wording.
var taxYearPattern = regexp.MustCompile(`(?i)(?:tax\s+year|verovuosi)\D{0,20}((?:19|20)\d{2})`)

var baseRatePattern = regexp.MustCompile(`(?i)(?:base\s+(?:withholding\s+)?rate|perusprosentti)\D{0,20}(\d{1,2}(?:[.,]\d{1,2})?)\s*%`)

var additionalRatePattern = regexp.MustCompile(`(?i)(?:additional\s+(?:withholding\s+)?rate|lisäprosentti)\D{0,20}(\d{1,2}(?:[.,]\d{1,2})?)\s*%`)

var incomeLimitPattern = regexp.MustCompile(`(?i)(?:income\s+(?:ceiling|limit)|tuloraja)\D{0,30}(\d[\d \x{00a0}.,]*\d)`)

// ParseTaxCardText reads withholding fields from the text layer of a tax card.
// Fields that are not found stay zero. It returns ErrNoTaxCardFields when
// nothing matched.
func ParseTaxCardText(text string) (*TaxCardFields, error) {
	fields := &TaxCardFields{}

	if m := taxYearPattern.FindStringSubmatch(text); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			fields.TaxYear = year
			fields.Found++
		}
	}
	if d, ok := matchDecimal(baseRatePattern, text, parseRate); ok {
		fields.BaseRate = d
		fields.Found++
	}
	if d, ok := matchDecimal(additionalRatePattern, text, parseRate); ok {
		fields.AdditionalRate = d
		fields.Found++
	}
	if d, ok := matchDecimal(incomeLimitPattern, text, parseAmount); ok {
		fields.IncomeLimit = d
		fields.Found++
	}

	if fields.Found == 0 {
		return nil, ErrNoTaxCardFields
	}
	return fields, nil
}

func matchDecimal(re *regexp.Regexp, text string, parse func(string) (decimal.Decimal, error)) (decimal.Decimal, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	d, err := parse(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseRate accepts a decimal comma.
func parseRate(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}

// parseAmount handles "30 000,00", "30,000.00", "30.000" and "30000".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)

	// A two-digit tail after the last separator is the fraction.
	if i := strings.LastIndexAny(s, ".,"); i >= 0 && len(s)-i-1 == 2 {
		whole := strings.NewReplacer(".", "", ",", "").Replace(s[:i])
		return decimal.NewFromString(whole + "." + s[i+1:])
	}
	return decimal.NewFromString(strings.NewReplacer(".", "", ",", "").Replace(s))
}
