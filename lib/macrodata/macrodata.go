// Package macrodata holds the domain model shared by the Trading
// Economics scraper, the API client and the scan service: indicator
// definitions, scraped records and the absent-aware value type.
package macrodata

import (
	"math"

	"macroscan-backend/lib/textutil"
)

// Reason describes why a value is absent, so consumers (and tests) can
// tell structural absence apart from parse or validation failures.
type Reason string

const (
	// the source never contained the field (missing row, table or pattern)
	ReasonMissing Reason = "missing"
	// text was present but did not contain a number
	ReasonUnparsable Reason = "unparsable"
	// the number was outside the plausible range for its indicator
	ReasonOutOfRange Reason = "out_of_range"
	// the page or endpoint could not be fetched at all
	ReasonFetchFailed Reason = "fetch_failed"
)

type Value struct {
	Float  float64 `json:"value"`
	Valid  bool    `json:"valid"`
	Reason Reason  `json:"reason,omitempty"`
}

func Number(f float64) Value {
	return Value{Float: f, Valid: true}
}

func Absent(reason Reason) Value {
	return Value{Reason: reason}
}

// ParseText runs the value normalizer over raw scraped text. Empty
// input is structural absence, non-numeric input is a parse failure.
func ParseText(raw string) Value {
	if raw == "" {
		return Absent(ReasonMissing)
	}
	f, ok := textutil.ParseValue(raw)
	if !ok {
		return Absent(ReasonUnparsable)
	}
	return Number(f)
}

// Difference returns a-b rounded to two decimals, or absent when
// either operand is.
func Difference(a, b Value) Value {
	if !a.Valid || !b.Valid {
		return Absent(ReasonMissing)
	}
	return Number(math.Round((a.Float-b.Float)*100) / 100)
}

// Record is the per-(country, indicator) output unit. Derived fields
// (difference, surprise) are computed by the consuming layer and never
// stored here.
type Record struct {
	Current  Value `json:"current"`
	Previous Value `json:"previous"`
	Expected Value `json:"expected"`
	// first-of-month reference date in YYYY-MM-DD form, "" when unknown
	Published string `json:"published,omitempty"`
	// next scheduled release date as shown on the source page
	NextRelease string `json:"next_release,omitempty"`
	// most recent released values, oldest-presented-first, at most 6
	Trend []float64 `json:"trend,omitempty"`
}

type IndicatorSpec struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	RowLabel string `json:"row_label"`
	Slug     string `json:"slug"`
}

// DefaultIndicators is the built-in indicator catalog keyed by the
// config-facing indicator key.
func DefaultIndicators() []IndicatorSpec {
	return []IndicatorSpec{
		{Key: "unemployment", Name: "Unemployment", RowLabel: "Unemployment Rate", Slug: "unemployment-rate"},
		{Key: "inflation_mom", Name: "Inflation MoM", RowLabel: "Inflation Rate MoM", Slug: "inflation-rate-mom"},
		{Key: "inflation_yoy", Name: "Inflation YoY", RowLabel: "Inflation Rate", Slug: "inflation-cpi"},
		{Key: "interest_rate", Name: "Interest Rate", RowLabel: "Interest Rate", Slug: "interest-rate"},
		{Key: "retail_sales_mom", Name: "Retail Sales MoM", RowLabel: "Retail Sales MoM", Slug: "retail-sales-mom"},
		{Key: "retail_sales_yoy", Name: "Retail Sales YoY", RowLabel: "Retail Sales YoY", Slug: "retail-sales-yoy"},
		{Key: "services_pmi", Name: "Services PMI", RowLabel: "Services PMI", Slug: "services-pmi"},
		{Key: "manufacturing_pmi", Name: "Manufacturing PMI", RowLabel: "Manufacturing PMI", Slug: "manufacturing-pmi"},
		{Key: "ppi", Name: "PPI", RowLabel: "Producer Price Inflation MoM", Slug: "producer-price-inflation-mom"},
		{Key: "gdp_growth_qoq", Name: "GDP Growth QoQ", RowLabel: "GDP Growth Rate", Slug: "gdp-growth"},
	}
}

func SpecsByKey(specs []IndicatorSpec) map[string]IndicatorSpec {
	out := make(map[string]IndicatorSpec, len(specs))
	for _, s := range specs {
		out[s.Key] = s
	}
	return out
}
