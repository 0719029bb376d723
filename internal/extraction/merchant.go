package extraction

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Expense categories assigned to receipts. The tax-relevant ones map to
// common deduction types.
const (
	CategoryGroceries     = "groceries"
	CategoryTransport     = "transport"
	CategoryWorkEquipment = "work_equipment"
	CategoryHealthcare    = "healthcare"
	CategoryHousehold     = "household"
	CategoryEducation     = "education"
	CategoryTravel        = "travel"
	CategoryOther         = "other"
)

// MerchantInfo contains normalized merchant information.
type MerchantInfo struct {
	Name       string
	Category   string
	Confidence float64
}

type merchantMapping struct {
	key  string
	info MerchantInfo
}

// knownMerchants is checked in order; longer keys come before keys they contain.
var knownMerchants = []merchantMapping{
	{"k-citymarket", MerchantInfo{"K-Citymarket", CategoryGroceries, 0.95}},
	{"k-market", MerchantInfo{"K-Market", CategoryGroceries, 0.95}},
	{"prisma", MerchantInfo{"Prisma", CategoryGroceries, 0.95}},
	{"s-market", MerchantInfo{"S-Market", CategoryGroceries, 0.95}},
	{"lidl", MerchantInfo{"Lidl", CategoryGroceries, 0.95}},
	{"alepa", MerchantInfo{"Alepa", CategoryGroceries, 0.95}},

	{"vr ", MerchantInfo{"VR", CategoryTransport, 0.9}},
	{"hsl", MerchantInfo{"HSL", CategoryTransport, 0.95}},
	{"neste", MerchantInfo{"Neste", CategoryTransport, 0.95}},
	{"st1", MerchantInfo{"St1", CategoryTransport, 0.95}},
	{"uber", MerchantInfo{"Uber", CategoryTransport, 0.95}},

	{"verkkokauppa", MerchantInfo{"Verkkokauppa.com", CategoryWorkEquipment, 0.9}},
	{"gigantti", MerchantInfo{"Gigantti", CategoryWorkEquipment, 0.9}},
	{"power", MerchantInfo{"Power", CategoryWorkEquipment, 0.85}},
	{"clas ohlson", MerchantInfo{"Clas Ohlson", CategoryWorkEquipment, 0.85}},

	{"yliopiston apteekki", MerchantInfo{"Yliopiston Apteekki", CategoryHealthcare, 0.95}},
	{"terveystalo", MerchantInfo{"Terveystalo", CategoryHealthcare, 0.95}},
	{"mehiläinen", MerchantInfo{"Mehiläinen", CategoryHealthcare, 0.95}},

	{"ikea", MerchantInfo{"IKEA", CategoryHousehold, 0.95}},
	{"tokmanni", MerchantInfo{"Tokmanni", CategoryHousehold, 0.9}},

	{"finnair", MerchantInfo{"Finnair", CategoryTravel, 0.95}},
	{"airbnb", MerchantInfo{"Airbnb", CategoryTravel, 0.95}},
}

var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"apteekki", CategoryHealthcare},
	{"pharmacy", CategoryHealthcare},
	{"dental", CategoryHealthcare},
	{"hammas", CategoryHealthcare},

	{"taxi", CategoryTransport},
	{"taksi", CategoryTransport},
	{"parking", CategoryTransport},
	{"pysäköinti", CategoryTransport},
	{"fuel", CategoryTransport},

	{"hotel", CategoryTravel},
	{"hotelli", CategoryTravel},

	{"kirja", CategoryEducation},
	{"book", CategoryEducation},
	{"course", CategoryEducation},
	{"kurssi", CategoryEducation},

	{"market", CategoryGroceries},
	{"ruoka", CategoryGroceries},
}

var (
	// Patterns for cleaning merchant names
	prefixPattern = regexp.MustCompile(`(?i)^(pos |visa |mastercard |amex |paypal \*)`)
	suffixPattern = regexp.MustCompile(`(?i)\s+(oy|oyj|ab|ltd|inc|fi)\.?$`)
	longNumbers   = regexp.MustCompile(`\d{6,}`)
	specialChars  = regexp.MustCompile(`[*#]+`)
)

// NormalizeMerchant cleans a raw merchant string from OCR and assigns an
// expense category.
func NormalizeMerchant(rawMerchant string) MerchantInfo {
	cleaned := strings.ToLower(cleanMerchant(rawMerchant))
	if cleaned == "" {
		return MerchantInfo{Category: CategoryOther}
	}

	for _, m := range knownMerchants {
		if strings.Contains(cleaned+" ", m.key) {
			return m.info
		}
	}

	for _, k := range categoryKeywords {
		if strings.Contains(cleaned, k.keyword) {
			return MerchantInfo{
				Name:       formatMerchantName(rawMerchant),
				Category:   k.category,
				Confidence: 0.6,
			}
		}
	}

	return MerchantInfo{
		Name:       formatMerchantName(rawMerchant),
		Category:   CategoryOther,
		Confidence: 0.3,
	}
}

func cleanMerchant(raw string) string {
	cleaned := prefixPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	cleaned = suffixPattern.ReplaceAllString(cleaned, "")
	cleaned = longNumbers.ReplaceAllString(cleaned, "")
	cleaned = specialChars.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// formatMerchantName title-cases a raw merchant name for display.
func formatMerchantName(raw string) string {
	caser := cases.Title(language.Finnish)
	words := strings.Fields(cleanMerchant(raw))
	for i, word := range words {
		if len([]rune(word)) > 2 {
			words[i] = caser.String(strings.ToLower(word))
		} else {
			words[i] = strings.ToUpper(word)
		}
	}

	result := []rune(strings.Join(words, " "))
	if len(result) > 50 {
		result = result[:50]
	}
	return string(result)
}
