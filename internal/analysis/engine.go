// Package analysis runs one report pass over a selection: fetch each
// company, resolve statement fields, compute ratios, then build the
// comparative return series against the benchmark.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"go.uber.org/zap"

	"github.com/newthinker/finsight/internal/collector"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/metrics"
	"github.com/newthinker/finsight/internal/ratio"
	"github.com/newthinker/finsight/internal/returns"
	"github.com/newthinker/finsight/internal/statement"
)

// Options configures an Engine
type Options struct {
	Universe      []core.Company
	Benchmark     core.Benchmark
	MaxCompanies  int
	DefaultWindow core.Window
	Memoize       bool
}

// Engine produces reports. It holds no per-report state and is safe for
// concurrent use.
type Engine struct {
	provider collector.Provider
	resolver statement.Resolver
	memo     *statement.Memo
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Registry
	now      func() time.Time
}

// NewEngine creates an engine backed by provider. logger and reg may be nil.
func NewEngine(provider collector.Provider, opts Options, logger *zap.Logger, reg *metrics.Registry) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Benchmark.Symbol == "" {
		opts.Benchmark = core.DefaultBenchmark
	}
	if opts.MaxCompanies <= 0 || opts.MaxCompanies > MaxCompanies {
		opts.MaxCompanies = MaxCompanies
	}
	if opts.DefaultWindow == "" {
		opts.DefaultWindow = core.Window1Y
	}

	e := &Engine{
		provider: provider,
		resolver: statement.Direct,
		opts:     opts,
		logger:   logger,
		metrics:  reg,
		now:      time.Now,
	}
	if opts.Memoize {
		e.memo = statement.NewMemo()
		e.resolver = e.memo
	}
	return e
}

// Universe returns the selectable companies
func (e *Engine) Universe() []core.Company {
	out := make([]core.Company, len(e.opts.Universe))
	copy(out, e.opts.Universe)
	return out
}

// Benchmark returns the reference index
func (e *Engine) Benchmark() core.Benchmark {
	return e.opts.Benchmark
}

// MemoStats reports resolver cache hits and misses; zero when memoization
// is off.
func (e *Engine) MemoStats() (hits, misses int) {
	if e.memo == nil {
		return 0, 0
	}
	return e.memo.Stats()
}

// MaxCompanies returns the configured per-report company limit
func (e *Engine) MaxCompanies() int {
	return e.opts.MaxCompanies
}

// Check reports whether Run would reject sel before fetching anything.
func (e *Engine) Check(sel Selection) error {
	return e.check(sel.Normalize())
}

func (e *Engine) check(sel Selection) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	if len(sel.Tickers) > e.opts.MaxCompanies {
		return core.WrapError(core.ErrTooManyCompanies, fmt.Errorf("got %d, at most %d", len(sel.Tickers), e.opts.MaxCompanies))
	}
	return nil
}

// lookup maps a ticker or display name onto a universe entry. Unknown
// entries are treated as raw tickers.
func (e *Engine) lookup(s string) core.Company {
	for _, c := range e.opts.Universe {
		if strings.EqualFold(c.Symbol, s) || strings.EqualFold(c.Name, s) {
			return c
		}
	}
	return core.Company{Name: s, Symbol: s}
}

// Run executes one sequential pass. Per-company fetch failures become
// diagnostics; only an invalid selection or a cancelled context is an
// error.
func (e *Engine) Run(ctx context.Context, sel Selection) (*Report, error) {
	sel = sel.Normalize()
	if err := e.check(sel); err != nil {
		return nil, err
	}
	if sel.Window == "" {
		sel.Window = e.opts.DefaultWindow
	}

	start := e.now()
	report := &Report{
		ID:        uuid.NewString(),
		CreatedAt: start.UTC(),
		Window:    sel.Window,
		Benchmark: e.opts.Benchmark,
		Companies: []ratio.CompanyMetrics{},
	}

	log := e.logger.With(zap.String("report_id", report.ID), zap.String("window", string(sel.Window)))
	log.Info("report started", zap.Strings("tickers", sel.Tickers))

	seen := make(map[string]bool, len(sel.Tickers))
	for _, t := range sel.Tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		company := e.lookup(t)
		if seen[company.Symbol] {
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				Ticker:  company.Symbol,
				Message: fmt.Sprintf("%s selected more than once", company.Symbol),
			})
			continue
		}
		seen[company.Symbol] = true

		m, err := e.fetchCompany(ctx, company, sel.Window)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("company dropped", zap.String("ticker", company.Symbol), zap.Error(err))
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				Ticker:  company.Symbol,
				Message: fmt.Sprintf("data unavailable for %s: %v", company.Symbol, err),
			})
			e.recordFetchFailure("company")
			continue
		}
		e.recordAbsent(m.Ratios)
		report.Companies = append(report.Companies, m)
	}

	if len(report.Companies) > 0 {
		e.buildSeries(ctx, report, sel.Window, log)
	}

	elapsed := e.now().Sub(start)
	if e.metrics != nil {
		e.metrics.RecordReport(report.Status(), len(report.Companies), elapsed.Seconds())
	}
	log.Info("report finished",
		zap.String("status", report.Status()),
		zap.Int("companies", len(report.Companies)),
		zap.Int("diagnostics", len(report.Diagnostics)),
		zap.Duration("elapsed", elapsed),
	)
	return report, nil
}

func (e *Engine) fetchCompany(ctx context.Context, c core.Company, w core.Window) (ratio.CompanyMetrics, error) {
	stmts, err := e.provider.FetchStatements(ctx, c.Symbol)
	if err != nil {
		return ratio.CompanyMetrics{}, fmt.Errorf("statements: %w", err)
	}
	profile, err := e.provider.FetchProfile(ctx, c.Symbol)
	if err != nil {
		return ratio.CompanyMetrics{}, fmt.Errorf("profile: %w", err)
	}
	history, err := e.provider.FetchHistory(ctx, c.Symbol, w)
	if err != nil {
		return ratio.CompanyMetrics{}, fmt.Errorf("history: %w", err)
	}

	fields := ratio.ResolveFields(e.resolver, stmts.Income, stmts.Balance)
	fields.CurrentPrice = profile.CurrentPrice
	fields.TrailingEPS = profile.TrailingEPS
	fields.SharesOutstanding = profile.SharesOutstanding

	return ratio.CompanyMetrics{
		Name:    c.Name,
		Ticker:  c.Symbol,
		Ratios:  ratio.Compute(fields),
		Fields:  fields,
		Price:   profile.CurrentPrice,
		History: history,
		Profile: ratio.Profile{
			Sector:      profile.Sector,
			Description: profile.LongBusinessSummary,
			DividendYld: profile.DividendYield,
			PriceToBook: profile.PriceToBook,
		},
	}, nil
}

func (e *Engine) buildSeries(ctx context.Context, report *Report, w core.Window, log *zap.Logger) {
	series := make([]returns.Series, 0, len(report.Companies)+1)
	for _, c := range report.Companies {
		series = append(series, returns.Series{Name: c.Name, Bars: c.History})
	}

	bench := e.opts.Benchmark
	bars, err := e.provider.FetchHistory(ctx, bench.Symbol, w)
	if err != nil {
		log.Warn("benchmark dropped", zap.String("symbol", bench.Symbol), zap.Error(err))
		report.Diagnostics = append(report.Diagnostics, Diagnostic{
			Ticker:  bench.Symbol,
			Message: fmt.Sprintf("benchmark %s unavailable: %v", bench.Name, err),
		})
		e.recordFetchFailure("benchmark")
	} else {
		series = append(series, returns.Series{Name: bench.Name, Bars: bars})
	}

	report.Prices = returns.Align(series...)
	if report.Prices.Len() < 2 {
		report.Diagnostics = append(report.Diagnostics, Diagnostic{
			Message: fmt.Sprintf("only %d common trading days, return series need at least 2", report.Prices.Len()),
		})
	}
	report.Cumulative = returns.CumulativeIndex(report.Prices)
	report.LogReturns = returns.LogReturns(report.Prices)
	report.Stats = returns.Describe(report.LogReturns)
	report.Correlation = returns.Correlate(report.LogReturns)
}

func (e *Engine) recordFetchFailure(kind string) {
	if e.metrics != nil {
		e.metrics.RecordFetchFailure(e.provider.Name(), kind)
	}
}

func (e *Engine) recordAbsent(r ratio.Ratios) {
	if e.metrics == nil {
		return
	}
	for name, v := range map[string]null.Float{
		"roe":            r.ROE,
		"roa":            r.ROA,
		"debt_to_equity": r.DebtToEquity,
		"current_ratio":  r.CurrentRatio,
		"pe":             r.PE,
		"market_cap":     r.MarketCap,
	} {
		if !v.Valid {
			e.metrics.RecordAbsentRatio(name)
		}
	}
}
