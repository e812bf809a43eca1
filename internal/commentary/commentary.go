// Package commentary asks an LLM for a short narrative over a finished
// report. It is strictly additive: a failed call leaves the report as it
// was.
package commentary

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/export"
	"github.com/newthinker/finsight/internal/llm"
	"github.com/newthinker/finsight/internal/metrics"
)

const systemPrompt = `You are an equity analyst writing for retail investors.
Compare the companies using only the figures provided. Mention the strongest
and weakest company on profitability, leverage and valuation, then relate
their returns to the benchmark. "N/D" means the figure is not available; do
not guess it. Answer in at most three short paragraphs of plain text.`

// Narrator turns reports into prose
type Narrator struct {
	llm     llm.Provider
	logger  *zap.Logger
	metrics *metrics.Registry

	MaxTokens   int
	Temperature float64
}

// New creates a narrator. A nil provider yields a narrator whose Annotate
// is a no-op.
func New(provider llm.Provider, logger *zap.Logger, reg *metrics.Registry) *Narrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Narrator{
		llm:         provider,
		logger:      logger,
		metrics:     reg,
		MaxTokens:   800,
		Temperature: 0.3,
	}
}

// Enabled reports whether a provider is configured
func (n *Narrator) Enabled() bool {
	return n != nil && n.llm != nil
}

// Generate returns the narrative for r.
func (n *Narrator) Generate(ctx context.Context, r *analysis.Report) (string, error) {
	if !n.Enabled() {
		return "", core.WrapError(core.ErrLLMFailed, fmt.Errorf("no provider configured"))
	}
	if len(r.Companies) == 0 {
		return "", core.WrapError(core.ErrNoData, fmt.Errorf("report %s has no companies", r.ID))
	}

	resp, err := n.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{llm.UserMessage(BuildPrompt(r))},
		MaxTokens:    n.MaxTokens,
		Temperature:  n.Temperature,
	})
	if err != nil {
		n.record("error")
		return "", err
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		n.record("empty")
		return "", core.WrapError(core.ErrLLMFailed, fmt.Errorf("%s returned no text", n.llm.Name()))
	}
	n.record("ok")
	n.logger.Debug("commentary generated",
		zap.String("report_id", r.ID),
		zap.String("provider", n.llm.Name()),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	return text, nil
}

// Annotate attaches the narrative to r. Errors are logged and swallowed.
func (n *Narrator) Annotate(ctx context.Context, r *analysis.Report) {
	if !n.Enabled() || len(r.Companies) == 0 {
		return
	}
	text, err := n.Generate(ctx, r)
	if err != nil {
		n.logger.Warn("commentary skipped", zap.String("report_id", r.ID), zap.Error(err))
		return
	}
	r.Commentary = text
}

func (n *Narrator) record(status string) {
	if n.metrics != nil {
		n.metrics.RecordCommentary(n.llm.Name(), status)
	}
}

// BuildPrompt summarizes the figures of r as markdown for the model.
func BuildPrompt(r *analysis.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Window: %s, benchmark %s\n\n", r.Window, r.Benchmark.Name)

	sb.WriteString("## Ratios\n")
	for _, c := range r.Companies {
		fmt.Fprintf(&sb, "- **%s (%s)**: ROE %s, ROA %s, Debt/Equity %s, Current Ratio %s, P/E %s, Market Cap %s",
			c.Name, c.Ticker,
			export.Percent(c.Ratios.ROE, 2),
			export.Percent(c.Ratios.ROA, 2),
			export.Format(c.Ratios.DebtToEquity, 2),
			export.Format(c.Ratios.CurrentRatio, 2),
			export.Format(c.Ratios.PE, 2),
			export.Compact(c.Ratios.MarketCap),
		)
		if c.Profile.Sector != "" {
			fmt.Fprintf(&sb, ", sector %s", c.Profile.Sector)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if n := r.Cumulative.Len(); n > 0 {
		fmt.Fprintf(&sb, "## Cumulative index (base 100) on %s\n", r.Cumulative.Dates[n-1].Format("2006-01-02"))
		for i, name := range r.Cumulative.Names {
			fmt.Fprintf(&sb, "- %s: %.2f\n", name, r.Cumulative.Values[i][n-1])
		}
		sb.WriteString("\n")
	}

	if len(r.Stats) > 0 {
		sb.WriteString("## Daily log returns\n")
		for _, s := range r.Stats {
			fmt.Fprintf(&sb, "- %s: mean %s, std %s over %d days\n",
				s.Name, export.Format(s.Mean, 4), export.Format(s.Std, 4), s.Count)
		}
		sb.WriteString("\n")
	}

	bench := r.Benchmark.Name
	if len(r.Correlation.Names) > 1 {
		sb.WriteString("## Correlation with benchmark\n")
		for _, name := range r.Correlation.Names {
			if name == bench {
				continue
			}
			fmt.Fprintf(&sb, "- %s: %s\n", name, export.Format(r.Correlation.At(name, bench), 2))
		}
		sb.WriteString("\n")
	}

	for _, d := range r.Diagnostics {
		fmt.Fprintf(&sb, "Note: %s\n", d.Message)
	}
	return sb.String()
}
