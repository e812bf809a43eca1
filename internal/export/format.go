// Package export renders reports for people: aligned text tables for the
// terminal and an XLSX workbook for spreadsheets.
package export

import (
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// NotAvailable marks an absent value in rendered output
const NotAvailable = "N/D"

// Format renders v rounded half away from zero to places decimals.
func Format(v null.Float, places int32) string {
	if !v.Valid {
		return NotAvailable
	}
	return decimal.NewFromFloat(v.Float64).StringFixed(places)
}

// Percent renders a fraction as a percentage, 0.1234 -> "12.34%".
func Percent(v null.Float, places int32) string {
	if !v.Valid {
		return NotAvailable
	}
	return decimal.NewFromFloat(v.Float64).Shift(2).StringFixed(places) + "%"
}

// Compact renders large magnitudes with a K/M/B/T suffix, the way market
// capitalization is usually quoted.
func Compact(v null.Float) string {
	if !v.Valid {
		return NotAvailable
	}
	d := decimal.NewFromFloat(v.Float64)
	abs := d.Abs()
	for _, unit := range []struct {
		exp    int32
		suffix string
	}{{12, "T"}, {9, "B"}, {6, "M"}, {3, "K"}} {
		if abs.GreaterThanOrEqual(decimal.New(1, unit.exp)) {
			return d.Shift(-unit.exp).StringFixed(2) + unit.suffix
		}
	}
	return d.StringFixed(2)
}
