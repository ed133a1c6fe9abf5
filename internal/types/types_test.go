package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParsePriceTier(t *testing.T) {
	tests := []struct {
		in      string
		want    PriceTier
		wantErr bool
	}{
		{"cheap", PriceCheap, false},
		{"$", PriceCheap, false},
		{" Moderate ", PriceModerate, false},
		{"$$", PriceModerate, false},
		{"$$$", PriceExpensive, false},
		{"expensive", PriceExpensive, false},
		{"$$$$", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriceTier(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriceTier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePriceTier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPriceTier_UnmarshalJSON_AcceptsSymbols(t *testing.T) {
	var p Preferences
	if err := json.Unmarshal([]byte(`{"price_prefs":["$","expensive"]}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(p.PricePrefs) != 2 || p.PricePrefs[0] != PriceCheap || p.PricePrefs[1] != PriceExpensive {
		t.Errorf("PricePrefs = %v", p.PricePrefs)
	}

	if err := json.Unmarshal([]byte(`{"price_prefs":["free"]}`), &p); err == nil {
		t.Error("Unmarshal() error = nil for unknown tier")
	}
}

func TestPriceTier_Symbol(t *testing.T) {
	if PriceModerate.Symbol() != "$$" {
		t.Errorf("Symbol() = %q", PriceModerate.Symbol())
	}
	if PriceTier("odd").Symbol() != "odd" {
		t.Error("unknown tier should render as-is")
	}
}

func TestCategory(t *testing.T) {
	if !CategoryActivity.Valid() || Category("nightlife").Valid() {
		t.Error("Valid() misclassified a category")
	}
	if CategoryEntertainment.DisplayName() != "Entertainment" {
		t.Errorf("DisplayName() = %q", CategoryEntertainment.DisplayName())
	}
}

func TestFormatDistance(t *testing.T) {
	tests := map[float64]string{
		0:   "0.0 mi",
		1.2: "0.7 mi",
		10:  "6.2 mi",
	}
	for km, want := range tests {
		if got := FormatDistance(km); got != want {
			t.Errorf("FormatDistance(%v) = %q, want %q", km, got, want)
		}
	}
}

func TestWin_Time(t *testing.T) {
	w := Win{Timestamp: 1700000000123}
	if !w.Time().Equal(time.UnixMilli(1700000000123)) {
		t.Errorf("Time() = %v", w.Time())
	}
}

func TestPreferences_Clone(t *testing.T) {
	orig := Preferences{
		Categories:    []Category{CategoryFood},
		MaxDistanceKm: 5,
		PricePrefs:    []PriceTier{PriceCheap},
	}
	c := orig.Clone()
	c.Categories[0] = CategoryActivity
	c.PricePrefs[0] = PriceExpensive

	if orig.Categories[0] != CategoryFood || orig.PricePrefs[0] != PriceCheap {
		t.Error("Clone() shares backing arrays with the original")
	}
	if !c.IncludesCategory(CategoryActivity) || !c.PrefersPrice(PriceExpensive) {
		t.Error("clone lost its own values")
	}
}

func TestItem_HasTag(t *testing.T) {
	it := Item{Tags: []string{"outdoor", TagGroup}}
	if !it.HasTag(TagGroup) || it.HasTag("indoor") {
		t.Error("HasTag() misreported tags")
	}
}
