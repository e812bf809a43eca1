package export

import (
	"fmt"
	"io"

	"github.com/guregu/null/v6"
	"github.com/xuri/excelize/v2"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/returns"
)

// Workbook sheet names
const (
	SheetRatios      = "Ratios"
	SheetStatistics  = "Statistics"
	SheetCorrelation = "Correlation"
	SheetCumulative  = "Cumulative"
	SheetLogReturns  = "LogReturns"
)

// percentFormat is the built-in "0.00%" number format
const percentFormat = 10

// XLSXContentType is the media type of the workbook
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook builds a spreadsheet holding every table of r. Absent values
// are left as empty cells. The caller owns the returned file and must
// Close it.
func Workbook(r *analysis.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetRatios); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range []string{SheetStatistics, SheetCorrelation, SheetCumulative, SheetLogReturns} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	writers := []func(*excelize.File, *analysis.Report) error{
		writeRatioSheet,
		writeStatsSheet,
		writeCorrelationSheet,
		func(f *excelize.File, r *analysis.Report) error {
			return writeFrameSheet(f, SheetCumulative, r.Cumulative)
		},
		func(f *excelize.File, r *analysis.Report) error {
			return writeFrameSheet(f, SheetLogReturns, r.LogReturns)
		},
	}
	for _, write := range writers {
		if err := write(f, r); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteXLSX streams the workbook of r to w.
func WriteXLSX(w io.Writer, r *analysis.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cell(v null.Float) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, addr, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeRatioSheet(f *excelize.File, r *analysis.Report) error {
	header := []any{"Company", "Ticker", "ROE", "ROA", "Debt/Equity", "Current Ratio",
		"P/E", "Market Cap", "Price/Book", "Dividend Yield", "Price", "Sector"}
	if err := setRow(f, SheetRatios, 1, header); err != nil {
		return err
	}
	for i, c := range r.Companies {
		row := []any{
			c.Name, c.Ticker,
			cell(c.Ratios.ROE), cell(c.Ratios.ROA), cell(c.Ratios.DebtToEquity),
			cell(c.Ratios.CurrentRatio), cell(c.Ratios.PE), cell(c.Ratios.MarketCap),
			cell(c.Profile.PriceToBook), cell(c.Profile.DividendYld), cell(c.Price),
			c.Profile.Sector,
		}
		if err := setRow(f, SheetRatios, i+2, row); err != nil {
			return err
		}
	}
	if len(r.Companies) == 0 {
		return nil
	}

	// Dividend yield is stored as a fraction and displayed as a percentage.
	style, err := f.NewStyle(&excelize.Style{NumFmt: percentFormat})
	if err != nil {
		return fmt.Errorf("percent style: %w", err)
	}
	col, err := excelize.ColumnNumberToName(10)
	if err != nil {
		return err
	}
	last := fmt.Sprintf("%s%d", col, len(r.Companies)+1)
	if err := f.SetCellStyle(SheetRatios, col+"2", last, style); err != nil {
		return fmt.Errorf("%s dividend yield style: %w", SheetRatios, err)
	}
	return nil
}

func writeStatsSheet(f *excelize.File, r *analysis.Report) error {
	if err := setRow(f, SheetStatistics, 1, []any{"Instrument", "Count", "Mean", "Std", "Min", "Max"}); err != nil {
		return err
	}
	for i, s := range r.Stats {
		row := []any{s.Name, s.Count, cell(s.Mean), cell(s.Std), cell(s.Min), cell(s.Max)}
		if err := setRow(f, SheetStatistics, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCorrelationSheet(f *excelize.File, r *analysis.Report) error {
	c := r.Correlation
	header := []any{""}
	for _, n := range c.Names {
		header = append(header, n)
	}
	if err := setRow(f, SheetCorrelation, 1, header); err != nil {
		return err
	}
	for i, n := range c.Names {
		row := []any{n}
		for _, v := range c.Values[i] {
			row = append(row, cell(v))
		}
		if err := setRow(f, SheetCorrelation, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeFrameSheet(f *excelize.File, sheet string, fr returns.Frame) error {
	header := []any{"Date"}
	for _, n := range fr.Names {
		header = append(header, n)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for t, d := range fr.Dates {
		row := []any{d.Format("2006-01-02")}
		for i := range fr.Names {
			row = append(row, fr.Values[i][t])
		}
		if err := setRow(f, sheet, t+2, row); err != nil {
			return err
		}
	}
	return nil
}
