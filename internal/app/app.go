// Package app wires the provider, report engine, commentary and storage
// into the single service the CLI and HTTP server drive.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/collector"
	"github.com/newthinker/finsight/internal/collector/yahoo"
	"github.com/newthinker/finsight/internal/commentary"
	"github.com/newthinker/finsight/internal/config"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/llm"
	"github.com/newthinker/finsight/internal/llm/factory"
	"github.com/newthinker/finsight/internal/logger"
	"github.com/newthinker/finsight/internal/metrics"
	"github.com/newthinker/finsight/internal/notifier"
	"github.com/newthinker/finsight/internal/storage/archive"
	"github.com/newthinker/finsight/internal/storage/recent"
)

// DefaultRecentReports bounds the in-memory report history
const DefaultRecentReports = 100

// App is the main application orchestrator
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	providers *collector.Registry
	provider  collector.Provider
	engine    *analysis.Engine
	narrator  *commentary.Narrator
	recent    recent.Store
	archive   *archive.Reports
	notifiers *notifier.Registry
	metrics   *metrics.Registry
	started   time.Time
}

type options struct {
	provider   collector.Provider
	llm        llm.Provider
	llmSet     bool
	storage    archive.Storage
	metrics    *metrics.Registry
	recentSize int
	notifiers  []notifier.Notifier
}

// Option customizes New
type Option func(*options)

// WithProvider replaces the configured data provider.
func WithProvider(p collector.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithLLM replaces the configured LLM provider; nil disables commentary.
func WithLLM(p llm.Provider) Option {
	return func(o *options) {
		o.llm = p
		o.llmSet = true
	}
}

// WithStorage replaces the configured archive backend.
func WithStorage(s archive.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithMetrics shares a metrics registry with the caller.
func WithMetrics(reg *metrics.Registry) Option {
	return func(o *options) { o.metrics = reg }
}

// WithNotifier registers an extra report-ready notifier alongside the
// configured ones.
func WithNotifier(n notifier.Notifier) Option {
	return func(o *options) { o.notifiers = append(o.notifiers, n) }
}

// WithRecentReports sets how many reports are kept in memory.
func WithRecentReports(n int) Option {
	return func(o *options) { o.recentSize = n }
}

// New creates a new App instance
func New(cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	o := options{recentSize: DefaultRecentReports}
	for _, opt := range opts {
		opt(&o)
	}

	reg := o.metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	providers := collector.NewRegistry()
	providers.Register(yahoo.New(collector.Config{
		Enabled:   true,
		BaseURL:   cfg.Provider.BaseURL,
		RateLimit: cfg.Provider.RateLimit,
		Timeout:   cfg.Provider.Timeout,
		UserAgent: cfg.Provider.UserAgent,
	}))

	name := cfg.Provider.Name
	if o.provider != nil {
		providers.Register(o.provider)
		name = o.provider.Name()
	}
	provider, ok := providers.Get(name)
	if !ok {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown provider %q, have %v", name, providers.Names()))
	}

	window, err := core.ParseWindow(cfg.Analysis.DefaultWindow)
	if err != nil {
		window = core.Window1Y
	}
	engine := analysis.NewEngine(provider, analysis.Options{
		Universe:      cfg.Analysis.Companies,
		Benchmark:     cfg.Analysis.Benchmark,
		MaxCompanies:  cfg.Analysis.MaxCompanies,
		DefaultWindow: window,
		Memoize:       cfg.Analysis.Memoize,
	}, logger.Component(log, "analysis"), reg)

	llmProvider := o.llm
	if !o.llmSet {
		llmProvider, err = factory.New(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("creating LLM provider: %w", err)
		}
	}

	notifiers, err := buildNotifiers(cfg.Notifiers, o.notifiers)
	if err != nil {
		return nil, fmt.Errorf("creating notifiers: %w", err)
	}

	a := &App{
		cfg:       cfg,
		logger:    log,
		providers: providers,
		provider:  provider,
		engine:    engine,
		narrator:  commentary.New(llmProvider, logger.Component(log, "commentary"), reg),
		recent:    recent.NewMemoryStore(o.recentSize),
		notifiers: notifiers,
		metrics:   reg,
		started:   time.Now(),
	}

	if cfg.Analysis.Archive || o.storage != nil {
		store := o.storage
		if store == nil {
			store, err = archive.Open(cfg.Storage.Cold)
			if err != nil {
				return nil, fmt.Errorf("opening archive: %w", err)
			}
		}
		a.archive = archive.NewReports(store, logger.Component(log, "archive"))
	}

	return a, nil
}

// Generate runs the engine for sel, narrates the result when an LLM is
// configured and keeps the report for later retrieval. Archive failures
// are logged; the report is still returned.
func (a *App) Generate(ctx context.Context, sel analysis.Selection) (*analysis.Report, error) {
	r, err := a.engine.Run(ctx, sel)
	if err != nil {
		return nil, err
	}

	a.narrator.Annotate(ctx, r)

	if err := a.recent.Save(ctx, r); err != nil {
		a.logger.Warn("failed to keep report", zap.String("id", r.ID), zap.Error(err))
	}
	if a.archive != nil {
		if _, err := a.archive.Save(ctx, r); err != nil {
			a.logger.Error("failed to archive report", zap.String("id", r.ID), zap.Error(err))
		}
	}
	a.notify(ctx, r)
	return r, nil
}

// Check validates a selection against the configured limits without
// generating anything.
func (a *App) Check(sel analysis.Selection) error {
	return a.engine.Check(sel)
}

// MaxCompanies returns the configured per-report company limit.
func (a *App) MaxCompanies() int {
	return a.engine.MaxCompanies()
}

// Report looks a report up in memory first, then in the archive.
func (a *App) Report(ctx context.Context, id string) (*analysis.Report, error) {
	r, err := a.recent.Get(ctx, id)
	if err == nil {
		return r, nil
	}
	if a.archive == nil || !errors.Is(err, core.ErrReportNotFound) {
		return nil, err
	}
	return a.archive.Load(ctx, id)
}

// Reports lists recent reports
func (a *App) Reports(ctx context.Context, filter recent.ListFilter) ([]recent.Summary, error) {
	return a.recent.List(ctx, filter)
}

// Companies returns the selectable universe
func (a *App) Companies() []core.Company {
	return a.engine.Universe()
}

// Benchmark returns the reference index
func (a *App) Benchmark() core.Benchmark {
	return a.engine.Benchmark()
}

// Metrics returns the shared metrics registry
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// GetStats returns application statistics
func (a *App) GetStats(ctx context.Context) map[string]any {
	hits, misses := a.engine.MemoStats()
	kept, _ := a.recent.Count(ctx, recent.ListFilter{})
	return map[string]any{
		"provider":    a.provider.Name(),
		"providers":   a.providers.Names(),
		"commentary":  a.narrator.Enabled(),
		"archive":     a.archive != nil,
		"notifiers":   a.notifiers.Names(),
		"reports":     kept,
		"memo_hits":   hits,
		"memo_misses": misses,
		"uptime":      time.Since(a.started).Round(time.Second).String(),
	}
}
