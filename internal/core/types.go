package core

import "fmt"

// NeverUpdated is the last-updated label used before the engine has produced
// its first recommendation set.
const NeverUpdated = "Never"

// StockRecommendation is a single pick produced by the recommendation engine.
// Values are display-only and never modified after decoding.
type StockRecommendation struct {
	Ticker                  string  `json:"ticker"`
	CompanyName             string  `json:"companyName"`
	CurrentPrice            float64 `json:"currentPrice"`
	ReasonForRecommendation string  `json:"reasonForRecommendation"`
	PotentialUpside         float64 `json:"potentialUpside"` // percent
}

// RecommendationSet is the full payload of one successful fetch. It replaces
// the previously displayed set wholesale.
type RecommendationSet struct {
	Recommendations []StockRecommendation `json:"recommendations"`
	Count           int                   `json:"count,omitempty"`
	LastUpdated     string                `json:"lastUpdated"`
}

// Validate checks the invariants the dashboard relies on: tickers are
// present and unique within the set.
func (s RecommendationSet) Validate() error {
	seen := make(map[string]struct{}, len(s.Recommendations))
	for i, r := range s.Recommendations {
		if r.Ticker == "" {
			return fmt.Errorf("recommendation %d has empty ticker", i)
		}
		if _, dup := seen[r.Ticker]; dup {
			return fmt.Errorf("duplicate ticker %q", r.Ticker)
		}
		seen[r.Ticker] = struct{}{}
	}
	return nil
}

// Tickers returns the tickers in server order.
func (s RecommendationSet) Tickers() []string {
	out := make([]string, len(s.Recommendations))
	for i, r := range s.Recommendations {
		out[i] = r.Ticker
	}
	return out
}
