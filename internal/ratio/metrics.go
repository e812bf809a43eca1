package ratio

import (
	"github.com/guregu/null/v6"

	"github.com/newthinker/finsight/internal/core"
)

// Profile is the descriptive metadata shown next to a company's ratios
type Profile struct {
	Sector      string     `json:"sector"`
	Description string     `json:"description"`
	DividendYld null.Float `json:"dividend_yield"`
	PriceToBook null.Float `json:"price_to_book"`
}

// CompanyMetrics is the per-company record handed to the presentation layer
type CompanyMetrics struct {
	Name    string     `json:"name"`
	Ticker  string     `json:"ticker"`
	Ratios  Ratios     `json:"ratios"`
	Fields  Fields     `json:"fields"`
	Price   null.Float `json:"price"`
	History []core.Bar `json:"history"`
	Profile Profile    `json:"profile"`
}

// Summary truncates the business description the way the overview card
// shows it.
func (p Profile) Summary(limit int) string {
	r := []rune(p.Description)
	if limit <= 0 || len(r) <= limit {
		return p.Description
	}
	return string(r[:limit]) + "..."
}
