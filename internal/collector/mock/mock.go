// internal/collector/mock/mock.go
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	"github.com/newthinker/finsight/internal/collector"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/statement"
)

// Company is the canned data served for one symbol
type Company struct {
	Statements *collector.Statements
	Profile    *collector.Profile
	Closes     []float64
}

// Provider is an in-memory collector.Provider for tests and offline runs.
type Provider struct {
	mu        sync.RWMutex
	companies map[string]Company
	failures  map[string]error
	start     time.Time
	calls     []string
}

// New creates an empty mock provider. Price histories start on start and
// advance one calendar day per close.
func New(start time.Time) *Provider {
	return &Provider{
		companies: make(map[string]Company),
		failures:  make(map[string]error),
		start:     start,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// Add registers data for a symbol.
func (p *Provider) Add(symbol string, c Company) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.companies[symbol] = c
}

// Fail makes every fetch for symbol return err.
func (p *Provider) Fail(symbol string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[symbol] = err
}

// Calls returns the fetches made so far as "method:symbol".
func (p *Provider) Calls() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *Provider) lookup(method, symbol string) (Company, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, method+":"+symbol)

	if err, ok := p.failures[symbol]; ok {
		return Company{}, err
	}
	c, ok := p.companies[symbol]
	if !ok {
		return Company{}, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("%s", symbol))
	}
	return c, nil
}

func (p *Provider) FetchStatements(ctx context.Context, symbol string) (*collector.Statements, error) {
	c, err := p.lookup("statements", symbol)
	if err != nil {
		return nil, err
	}
	if c.Statements == nil {
		return &collector.Statements{}, nil
	}
	return c.Statements, nil
}

func (p *Provider) FetchProfile(ctx context.Context, symbol string) (*collector.Profile, error) {
	c, err := p.lookup("profile", symbol)
	if err != nil {
		return nil, err
	}
	if c.Profile == nil {
		return &collector.Profile{Symbol: symbol}, nil
	}
	return c.Profile, nil
}

func (p *Provider) FetchHistory(ctx context.Context, symbol string, window core.Window) ([]core.Bar, error) {
	c, err := p.lookup("history", symbol)
	if err != nil {
		return nil, err
	}
	bars := make([]core.Bar, len(c.Closes))
	for i, v := range c.Closes {
		bars[i] = core.Bar{Symbol: symbol, Close: v, Time: p.start.AddDate(0, 0, i)}
	}
	return bars, nil
}

// Sample returns a company with plausible statements for symbol, useful
// when the exact figures do not matter.
func Sample(symbol string, netIncome, equity float64, closes ...float64) Company {
	income := statement.NewTable("income", nil)
	income.Set("Net Income", 0, null.FloatFrom(netIncome))

	balance := statement.NewTable("balance", nil)
	balance.Set("Total Assets", 0, null.FloatFrom(equity*3))
	balance.Set("Total Liab", 0, null.FloatFrom(equity*2))
	balance.Set("Total Stockholder Equity", 0, null.FloatFrom(equity))
	balance.Set("Total Current Assets", 0, null.FloatFrom(equity/2))
	balance.Set("Total Current Liabilities", 0, null.FloatFrom(equity/4))

	return Company{
		Statements: &collector.Statements{Income: income, Balance: balance},
		Profile: &collector.Profile{
			Symbol:              symbol,
			CurrentPrice:        null.FloatFrom(closes[len(closes)-1]),
			TrailingEPS:         null.FloatFrom(5),
			SharesOutstanding:   null.FloatFrom(1e9),
			Sector:              "Technology",
			LongBusinessSummary: symbol + " designs things.",
			DividendYield:       null.FloatFrom(0.005),
			PriceToBook:         null.FloatFrom(30),
		},
		Closes: closes,
	}
}
