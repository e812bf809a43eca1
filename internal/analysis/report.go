package analysis

import (
	"time"

	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/ratio"
	"github.com/newthinker/finsight/internal/returns"
)

// Diagnostic explains why part of a report is missing. Ticker is empty for
// report-wide notes.
type Diagnostic struct {
	Ticker  string `json:"ticker,omitempty"`
	Message string `json:"message"`
}

// Report is the outcome of one analysis pass
type Report struct {
	ID          string                 `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	Window      core.Window            `json:"window"`
	Benchmark   core.Benchmark         `json:"benchmark"`
	Companies   []ratio.CompanyMetrics `json:"companies"`
	Diagnostics []Diagnostic           `json:"diagnostics,omitempty"`

	Prices      returns.Frame       `json:"prices"`
	Cumulative  returns.Frame       `json:"cumulative"`
	LogReturns  returns.Frame       `json:"log_returns"`
	Stats       []returns.Stats     `json:"stats"`
	Correlation returns.Correlation `json:"correlation"`

	Commentary string `json:"commentary,omitempty"`
}

// Status summarizes how complete the report is: "ok" when nothing was
// dropped, "partial" when some data is missing and "empty" when no company
// survived.
func (r *Report) Status() string {
	switch {
	case len(r.Companies) == 0:
		return "empty"
	case len(r.Diagnostics) > 0:
		return "partial"
	default:
		return "ok"
	}
}

// Company returns the record for ticker
func (r *Report) Company(ticker string) (ratio.CompanyMetrics, bool) {
	for _, c := range r.Companies {
		if c.Ticker == ticker {
			return c, true
		}
	}
	return ratio.CompanyMetrics{}, false
}

// Tickers lists the tickers that made it into the report, in selection order
func (r *Report) Tickers() []string {
	out := make([]string, len(r.Companies))
	for i, c := range r.Companies {
		out[i] = c.Ticker
	}
	return out
}
