package notifier

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/export"
)

// CompanyLine is the per-company digest carried by a notice.
type CompanyLine struct {
	Ticker string     `json:"ticker"`
	Name   string     `json:"name"`
	ROE    null.Float `json:"roe"`
	PE     null.Float `json:"pe"`
	Return null.Float `json:"return"` // cumulative return over the window
}

// Notice summarises a finished report.
type Notice struct {
	ReportID    string        `json:"report_id"`
	CreatedAt   time.Time     `json:"created_at"`
	Window      core.Window   `json:"window"`
	Status      string        `json:"status"`
	Companies   []CompanyLine `json:"companies"`
	Benchmark   CompanyLine   `json:"benchmark"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
	Commentary  string        `json:"commentary,omitempty"`
}

// FromReport builds the notice for r.
func FromReport(r *analysis.Report) Notice {
	n := Notice{
		ReportID:   r.ID,
		CreatedAt:  r.CreatedAt,
		Window:     r.Window,
		Status:     r.Status(),
		Commentary: r.Commentary,
		Benchmark: CompanyLine{
			Ticker: r.Benchmark.Symbol,
			Name:   r.Benchmark.Name,
			Return: cumulativeReturn(r, r.Benchmark.Name),
		},
	}
	for _, c := range r.Companies {
		n.Companies = append(n.Companies, CompanyLine{
			Ticker: c.Ticker,
			Name:   c.Name,
			ROE:    c.Ratios.ROE,
			PE:     c.Ratios.PE,
			Return: cumulativeReturn(r, c.Name),
		})
	}
	for _, d := range r.Diagnostics {
		if d.Ticker != "" {
			n.Diagnostics = append(n.Diagnostics, d.Ticker+": "+d.Message)
		} else {
			n.Diagnostics = append(n.Diagnostics, d.Message)
		}
	}
	return n
}

// cumulativeReturn reads the last cumulative index value as a fraction.
func cumulativeReturn(r *analysis.Report, name string) null.Float {
	col, ok := r.Cumulative.Column(name)
	if !ok || len(col) == 0 {
		return null.Float{}
	}
	return null.FloatFrom(col[len(col)-1]/100 - 1)
}

// Title is the one-line headline used as subject or heading.
func (n Notice) Title() string {
	tickers := ""
	for i, c := range n.Companies {
		if i > 0 {
			tickers += ", "
		}
		tickers += c.Ticker
	}
	if tickers == "" {
		tickers = "no companies"
	}
	return fmt.Sprintf("FinSight report %s: %s (%s)", n.Window, tickers, n.Status)
}

// Line renders one company as plain text.
func (l CompanyLine) Line() string {
	return fmt.Sprintf("%s  ROE %s  P/E %s  return %s",
		l.Ticker, export.Percent(l.ROE, 2), export.Format(l.PE, 2), export.Percent(l.Return, 2))
}
