package dashboard

import "fmt"

// Labels shown by every renderer.
const (
	RefreshLabel  = "Refresh Recommendations"
	UpdatingLabel = "Updating..."
	LoadingText   = "Loading stock recommendations..."
	EmptyText     = "No stock recommendations available yet. Please check back later."
	ReasonLabel   = "Why Warren Buffett Would Like It:"
)

// Card is one rendered recommendation. Key is the ticker and stays stable
// across refreshes.
type Card struct {
	Key         string
	Position    int
	Ticker      string
	CompanyName string
	Price       string
	Reason      string
	Upside      string
	UpsideUp    bool
}

// View is everything a renderer needs to draw the board.
type View struct {
	ButtonLabel    string
	ButtonDisabled bool
	LastUpdated    string
	Error          string
	Loading        bool
	Empty          bool
	Cards          []Card
	Version        uint64
}

// BuildView turns a state into a view. It has no side effects.
func BuildView(s State) View {
	v := View{
		ButtonLabel:    RefreshLabel,
		ButtonDisabled: s.Loading,
		LastUpdated:    s.LastUpdated,
		Error:          s.Error,
		Loading:        s.Loading,
		Version:        s.Version,
	}
	if s.Loading {
		v.ButtonLabel = UpdatingLabel
		return v
	}

	if len(s.Stocks) == 0 {
		v.Empty = true
		return v
	}

	v.Cards = make([]Card, len(s.Stocks))
	for i, r := range s.Stocks {
		v.Cards[i] = Card{
			Key:         r.Ticker,
			Position:    i + 1,
			Ticker:      r.Ticker,
			CompanyName: r.CompanyName,
			Price:       FormatPrice(r.CurrentPrice),
			Reason:      r.ReasonForRecommendation,
			Upside:      FormatUpside(r.PotentialUpside),
			UpsideUp:    r.PotentialUpside >= 0,
		}
	}
	return v
}

// FormatPrice renders a price with two decimals.
func FormatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// FormatUpside renders a percentage with one decimal.
func FormatUpside(u float64) string {
	return fmt.Sprintf("%.1f%%", u)
}
