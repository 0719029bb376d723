package extraction

import "testing"

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		name          string
		rawMerchant   string
		wantName      string
		wantCategory  string
		minConfidence float64
	}{
		{
			name:          "grocery chain with store number",
			rawMerchant:   "K-MARKET KAMPPI 123456789",
			wantName:      "K-Market",
			wantCategory:  CategoryGroceries,
			minConfidence: 0.9,
		},
		{
			name:          "card prefix removed",
			rawMerchant:   "VISA *NESTE HELSINKI",
			wantName:      "Neste",
			wantCategory:  CategoryTransport,
			minConfidence: 0.9,
		},
		{
			name:          "company suffix removed",
			rawMerchant:   "Yliopiston Apteekki Oy",
			wantName:      "Yliopiston Apteekki",
			wantCategory:  CategoryHealthcare,
			minConfidence: 0.9,
		},
		{
			name:          "electronics store",
			rawMerchant:   "VERKKOKAUPPA.COM OYJ",
			wantName:      "Verkkokauppa.com",
			wantCategory:  CategoryWorkEquipment,
			minConfidence: 0.85,
		},
		{
			name:          "generic taxi keyword",
			rawMerchant:   "KAMPIN TAKSI OY",
			wantName:      "Kampin Taksi",
			wantCategory:  CategoryTransport,
			minConfidence: 0.5,
		},
		{
			name:          "unknown merchant",
			rawMerchant:   "XYZ123 AB",
			wantName:      "Xyz123",
			wantCategory:  CategoryOther,
			minConfidence: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMerchant(tt.rawMerchant)

			if got.Name != tt.wantName {
				t.Errorf("NormalizeMerchant(%q).Name = %q, want %q", tt.rawMerchant, got.Name, tt.wantName)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("NormalizeMerchant(%q).Category = %v, want %v", tt.rawMerchant, got.Category, tt.wantCategory)
			}
			if got.Confidence < tt.minConfidence {
				t.Errorf("NormalizeMerchant(%q).Confidence = %f, want >= %f", tt.rawMerchant, got.Confidence, tt.minConfidence)
			}
		})
	}
}

func TestNormalizeMerchant_Empty(t *testing.T) {
	got := NormalizeMerchant("   ")
	if got.Name != "" || got.Category != CategoryOther {
		t.Fatalf("NormalizeMerchant(blank) = %+v", got)
	}
}

func TestFormatMerchantName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"TOKMANNI", "Tokmanni"},
		{"VISA *ÄÄNEKOSKEN KIRJA", "Äänekosken Kirja"},
		{"POS HAMMASLÄÄKÄRI KOIVU OY", "Hammaslääkäri Koivu"},
		{"SOME STORE 123456789", "Some Store"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := formatMerchantName(tt.raw)
			if got != tt.want {
				t.Errorf("formatMerchantName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
