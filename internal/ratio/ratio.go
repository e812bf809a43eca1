// Package ratio derives standard financial ratios from resolved statement
// fields and provider metadata.
package ratio

import (
	"math"

	"github.com/guregu/null/v6"

	"github.com/newthinker/finsight/internal/statement"
)

// Fields is the set of inputs the ratios are derived from. Each field is
// optional; zero is a legitimate value distinct from absent.
type Fields struct {
	NetIncome          null.Float `json:"net_income"`
	TotalEquity        null.Float `json:"total_equity"`
	TotalAssets        null.Float `json:"total_assets"`
	TotalLiabilities   null.Float `json:"total_liabilities"`
	CurrentAssets      null.Float `json:"current_assets"`
	CurrentLiabilities null.Float `json:"current_liabilities"`
	CurrentPrice       null.Float `json:"current_price"`
	TrailingEPS        null.Float `json:"trailing_eps"`
	SharesOutstanding  null.Float `json:"shares_outstanding"`
}

// Ratios holds the derived metrics. An absent ratio means "not available".
type Ratios struct {
	ROE          null.Float `json:"roe"`
	ROA          null.Float `json:"roa"`
	DebtToEquity null.Float `json:"debt_to_equity"`
	CurrentRatio null.Float `json:"current_ratio"`
	PE           null.Float `json:"pe"`
	MarketCap    null.Float `json:"market_cap"`
}

// Candidate labels per field, in priority order.
var (
	NetIncomeLabels          = []string{"Net Income"}
	TotalEquityLabels        = []string{"Total Stockholder Equity", "Total Equity"}
	TotalAssetsLabels        = []string{"Total Assets"}
	TotalLiabilitiesLabels   = []string{"Total Liabilities", "Total Liab"}
	CurrentAssetsLabels      = []string{"Total Current Assets", "Current Assets"}
	CurrentLiabilitiesLabels = []string{"Total Current Liabilities", "Current Liabilities"}
)

// ResolveFields pulls the statement-backed fields out of the income
// statement and balance sheet. Price, EPS and share count come from
// provider metadata and are left for the caller to fill.
func ResolveFields(r statement.Resolver, income, balance *statement.Table) Fields {
	if r == nil {
		r = statement.Direct
	}
	return Fields{
		NetIncome:          r.Resolve(income, NetIncomeLabels...),
		TotalEquity:        r.Resolve(balance, TotalEquityLabels...),
		TotalAssets:        r.Resolve(balance, TotalAssetsLabels...),
		TotalLiabilities:   r.Resolve(balance, TotalLiabilitiesLabels...),
		CurrentAssets:      r.Resolve(balance, CurrentAssetsLabels...),
		CurrentLiabilities: r.Resolve(balance, CurrentLiabilitiesLabels...),
	}
}

// Compute derives all ratios. It has no side effects.
func Compute(f Fields) Ratios {
	return Ratios{
		ROE:          Div(f.NetIncome, f.TotalEquity),
		ROA:          Div(f.NetIncome, f.TotalAssets),
		DebtToEquity: Div(f.TotalLiabilities, f.TotalEquity),
		CurrentRatio: Div(f.CurrentAssets, f.CurrentLiabilities),
		PE:           Div(f.CurrentPrice, f.TrailingEPS),
		MarketCap:    Mul(f.CurrentPrice, f.SharesOutstanding),
	}
}

// Div returns a/b, absent when either operand is absent or b is zero
func Div(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid || b.Float64 == 0 {
		return null.Float{}
	}
	return finite(a.Float64 / b.Float64)
}

// Mul returns a*b, absent when either operand is absent
func Mul(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return null.Float{}
	}
	return finite(a.Float64 * b.Float64)
}

func finite(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
