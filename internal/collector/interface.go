package collector

import (
	"context"

	"github.com/guregu/null/v6"

	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/statement"
)

// Config holds collector configuration
type Config struct {
	Enabled   bool
	BaseURL   string
	RateLimit float64 // requests per second, 0 disables pacing
	Timeout   int     // seconds
	UserAgent string
}

// Statements bundles the three financial statements of a company. Any of
// them may be nil when the provider has no data.
type Statements struct {
	Income   *statement.Table
	Balance  *statement.Table
	Cashflow *statement.Table
}

// Profile is the key-value metadata a provider publishes for a symbol
type Profile struct {
	Symbol              string
	CurrentPrice        null.Float
	TrailingEPS         null.Float
	SharesOutstanding   null.Float
	Sector              string
	LongBusinessSummary string
	DividendYield       null.Float
	PriceToBook         null.Float
}

// Provider is the upstream market and fundamental data source
type Provider interface {
	Name() string

	// FetchStatements returns income statement, balance sheet and cash flow
	// statement with the most recent period first.
	FetchStatements(ctx context.Context, symbol string) (*Statements, error)

	// FetchProfile returns price, per-share data and descriptive metadata.
	FetchProfile(ctx context.Context, symbol string) (*Profile, error)

	// FetchHistory returns daily closes for the window, oldest first.
	FetchHistory(ctx context.Context, symbol string, window core.Window) ([]core.Bar, error)
}
