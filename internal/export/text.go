package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/guregu/null/v6"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/ratio"
	"github.com/newthinker/finsight/internal/returns"
)

// SummaryLength caps the business description in the overview
const SummaryLength = 300

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// ratioColumns is the comparison table layout
var ratioColumns = []struct {
	header string
	value  func(c ratio.CompanyMetrics) null.Float
}{
	{"ROE", func(c ratio.CompanyMetrics) null.Float { return c.Ratios.ROE }},
	{"ROA", func(c ratio.CompanyMetrics) null.Float { return c.Ratios.ROA }},
	{"DEBT/EQUITY", func(c ratio.CompanyMetrics) null.Float { return c.Ratios.DebtToEquity }},
	{"CURRENT RATIO", func(c ratio.CompanyMetrics) null.Float { return c.Ratios.CurrentRatio }},
	{"P/E", func(c ratio.CompanyMetrics) null.Float { return c.Ratios.PE }},
	{"MARKET CAP", func(c ratio.CompanyMetrics) null.Float { return c.Ratios.MarketCap }},
	{"PRICE/BOOK", func(c ratio.CompanyMetrics) null.Float { return c.Profile.PriceToBook }},
}

// WriteRatios writes one row per company with every ratio at 2 decimals.
func WriteRatios(w io.Writer, companies []ratio.CompanyMetrics) error {
	tw := newTable(w)

	headers := []string{"COMPANY", "TICKER"}
	for _, col := range ratioColumns {
		headers = append(headers, col.header)
	}
	writeRow(tw, headers)
	writeRow(tw, underline(headers))

	for _, c := range companies {
		row := []string{c.Name, c.Ticker}
		for _, col := range ratioColumns {
			row = append(row, Format(col.value(c), 2))
		}
		writeRow(tw, row)
	}
	return tw.Flush()
}

// WriteOverview writes the headline card of one company.
func WriteOverview(w io.Writer, c ratio.CompanyMetrics) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "%s (%s)\n", c.Name, c.Ticker)
	fmt.Fprintf(tw, "ROE\t%s\n", Percent(c.Ratios.ROE, 2))
	fmt.Fprintf(tw, "Debt/Equity\t%s\n", Format(c.Ratios.DebtToEquity, 2))
	fmt.Fprintf(tw, "Current Ratio\t%s\n", Format(c.Ratios.CurrentRatio, 2))
	fmt.Fprintf(tw, "Market Cap\t%s\n", Compact(c.Ratios.MarketCap))
	fmt.Fprintf(tw, "Dividend Yield\t%s\n", Percent(c.Profile.DividendYld, 2))

	sector := c.Profile.Sector
	if sector == "" {
		sector = NotAvailable
	}
	fmt.Fprintf(tw, "Sector\t%s\n", sector)
	if err := tw.Flush(); err != nil {
		return err
	}
	if c.Profile.Description != "" {
		_, err := fmt.Fprintf(w, "%s\n", c.Profile.Summary(SummaryLength))
		return err
	}
	return nil
}

// WriteStats writes the descriptive statistics of log returns at 4 decimals.
func WriteStats(w io.Writer, stats []returns.Stats) error {
	tw := newTable(w)
	headers := []string{"INSTRUMENT", "COUNT", "MEAN", "STD", "MIN", "MAX"}
	writeRow(tw, headers)
	writeRow(tw, underline(headers))
	for _, s := range stats {
		writeRow(tw, []string{
			s.Name,
			fmt.Sprintf("%d", s.Count),
			Format(s.Mean, 4),
			Format(s.Std, 4),
			Format(s.Min, 4),
			Format(s.Max, 4),
		})
	}
	return tw.Flush()
}

// WriteCorrelation writes the correlation matrix at 2 decimals.
func WriteCorrelation(w io.Writer, c returns.Correlation) error {
	tw := newTable(w)
	writeRow(tw, append([]string{""}, c.Names...))
	for i, name := range c.Names {
		row := []string{name}
		for _, v := range c.Values[i] {
			row = append(row, Format(v, 2))
		}
		writeRow(tw, row)
	}
	return tw.Flush()
}

// WriteReport writes every section of r in presentation order.
func WriteReport(w io.Writer, r *analysis.Report) error {
	fmt.Fprintf(w, "Report %s (%s, window %s)\n\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04 MST"), r.Window)

	for _, d := range r.Diagnostics {
		if d.Ticker != "" {
			fmt.Fprintf(w, "! %s: %s\n", d.Ticker, d.Message)
		} else {
			fmt.Fprintf(w, "! %s\n", d.Message)
		}
	}
	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w)
	}

	if len(r.Companies) == 0 {
		_, err := fmt.Fprintln(w, "No company data available.")
		return err
	}

	for _, c := range r.Companies {
		if err := WriteOverview(w, c); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	sections := []struct {
		title string
		write func() error
	}{
		{"Ratio comparison", func() error { return WriteRatios(w, r.Companies) }},
		{"Log return statistics", func() error { return WriteStats(w, r.Stats) }},
		{"Log return correlation", func() error { return WriteCorrelation(w, r.Correlation) }},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "%s\n", s.title)
		if err := s.write(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if r.Commentary != "" {
		if _, err := fmt.Fprintf(w, "Commentary\n%s\n", r.Commentary); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
}

func underline(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.Repeat("-", len(h))
	}
	return out
}
