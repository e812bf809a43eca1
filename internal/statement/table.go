package statement

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/guregu/null/v6"
)

// Row is one line item of a statement. Values are ordered like Table.Periods.
type Row struct {
	Label  string
	Values []null.Float
}

// Table is a financial statement snapshot: rows keyed by line-item label,
// columns keyed by reporting period with the most recent period first.
type Table struct {
	Name    string
	Periods []time.Time
	rows    []Row
	index   map[string]int
	digest  atomic.Uint64
}

// NewTable creates an empty table for the given periods (most recent first)
func NewTable(name string, periods []time.Time) *Table {
	return &Table{
		Name:    name,
		Periods: periods,
		index:   make(map[string]int),
	}
}

// Set stores a cell value, adding the row on first use. Row order is
// insertion order.
func (t *Table) Set(label string, period int, v null.Float) {
	if period < 0 {
		return
	}
	i, ok := t.index[label]
	if !ok {
		i = len(t.rows)
		t.rows = append(t.rows, Row{Label: label})
		t.index[label] = i
	}
	row := &t.rows[i]
	for len(row.Values) <= period {
		row.Values = append(row.Values, null.Float{})
	}
	row.Values[period] = v
	t.digest.Store(0)
}

// Digest fingerprints what lookups can observe: the row labels in order and
// their latest values. Tables with equal digests resolve every candidate
// list the same way. The digest is computed once and reset by Set.
func (t *Table) Digest() uint64 {
	if t == nil {
		return 0
	}
	if d := t.digest.Load(); d != 0 {
		return d
	}
	h := xxhash.New()
	var buf []byte
	for _, r := range t.rows {
		h.WriteString(r.Label)
		h.Write([]byte{0})
		if v := r.Latest(); v.Valid {
			buf = strconv.AppendFloat(buf[:0], v.Float64, 'g', -1, 64)
			h.Write(buf)
		}
		h.Write([]byte{0})
	}
	d := h.Sum64()
	if d == 0 {
		d = 1
	}
	t.digest.Store(d)
	return d
}

// Rows returns the line items in table order
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return t.rows
}

// Len returns the number of line items
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Latest returns the most recent value of a row, absent when the cell is
// missing or not a finite number.
func (r Row) Latest() null.Float {
	if len(r.Values) == 0 {
		return null.Float{}
	}
	v := r.Values[0]
	if !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
		return null.Float{}
	}
	return v
}

// Humanize turns a provider key such as "totalStockholderEquity" into the
// spaced label "Total Stockholder Equity".
func Humanize(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		prev := runes[i-1]
		upperRun := unicode.IsUpper(r) && unicode.IsUpper(prev) &&
			(i+1 >= len(runes) || unicode.IsUpper(runes[i+1]) || unicode.IsDigit(runes[i+1]))
		if (unicode.IsUpper(r) && !upperRun) || (unicode.IsDigit(r) && !unicode.IsDigit(prev)) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
