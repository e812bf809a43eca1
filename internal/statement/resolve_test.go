package statement

import (
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceSheet() *Table {
	t := NewTable("balance", []time.Time{
		time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC),
	})
	t.Set("Total Assets", 0, null.FloatFrom(500))
	t.Set("Total Assets", 1, null.FloatFrom(450))
	t.Set("Total Liabilities Net Minority Interest", 0, null.FloatFrom(300))
	t.Set("Total Stockholder Equity", 0, null.FloatFrom(100))
	t.Set("Total Stockholder Equity", 1, null.FloatFrom(90))
	t.Set("Total Current Assets", 0, null.FloatFrom(120))
	return t
}

func TestResolve_FirstCandidate(t *testing.T) {
	v := Resolve(balanceSheet(), "Total Stockholder Equity", "Total Equity")
	require.True(t, v.Valid)
	assert.Equal(t, 100.0, v.Float64)
}

func TestResolve_CaseInsensitiveSubstring(t *testing.T) {
	v := Resolve(balanceSheet(), "total liab")
	require.True(t, v.Valid)
	assert.Equal(t, 300.0, v.Float64)
}

func TestResolve_FallsBackToLaterCandidate(t *testing.T) {
	tbl := NewTable("balance", nil)
	tbl.Set("Total Equity Gross Minority Interest", 0, null.FloatFrom(42))

	v := Resolve(tbl, "Total Stockholder Equity", "Total Equity")
	require.True(t, v.Valid)
	assert.Equal(t, 42.0, v.Float64)
}

func TestResolve_NoMatchIsAbsent(t *testing.T) {
	v := Resolve(balanceSheet(), "Goodwill", "Intangibles")
	assert.False(t, v.Valid)
}

func TestResolve_NilAndEmptyTables(t *testing.T) {
	assert.False(t, Resolve(nil, "Total Assets").Valid)
	assert.False(t, Resolve(NewTable("empty", nil), "Total Assets").Valid)
}

func TestResolve_FirstRowInTableOrderWins(t *testing.T) {
	tbl := NewTable("balance", nil)
	tbl.Set("Other Current Assets", 0, null.FloatFrom(7))
	tbl.Set("Total Current Assets", 0, null.FloatFrom(120))

	// "Current Assets" matches the first row even though the second is the
	// more specific line item.
	v := Resolve(tbl, "Current Assets")
	require.True(t, v.Valid)
	assert.Equal(t, 7.0, v.Float64)
}

func TestResolve_SkipsNonNumericCells(t *testing.T) {
	tbl := NewTable("income", nil)
	tbl.Set("Net Income From Continuing Operations", 0, null.Float{})
	tbl.Set("Net Income Common Stockholders", 0, null.FloatFrom(math.NaN()))
	tbl.Set("Net Income", 0, null.FloatFrom(55))

	v := Resolve(tbl, "Net Income")
	require.True(t, v.Valid)
	assert.Equal(t, 55.0, v.Float64)
}

func TestResolve_UsesMostRecentPeriod(t *testing.T) {
	v := Resolve(balanceSheet(), "Total Assets")
	require.True(t, v.Valid)
	assert.Equal(t, 500.0, v.Float64)
}

func TestResolve_ZeroIsAValue(t *testing.T) {
	tbl := NewTable("balance", nil)
	tbl.Set("Total Current Liabilities", 0, null.FloatFrom(0))

	v := Resolve(tbl, "Total Current Liabilities")
	require.True(t, v.Valid)
	assert.Equal(t, 0.0, v.Float64)
}

func TestMemo_MatchesResolve(t *testing.T) {
	tbl := balanceSheet()
	m := NewMemo()

	cases := [][]string{
		{"Total Stockholder Equity", "Total Equity"},
		{"Total Assets"},
		{"Goodwill"},
	}
	for _, c := range cases {
		assert.Equal(t, Resolve(tbl, c...), m.Resolve(tbl, c...))
	}
}

func TestMemo_CachesPerContentAndCandidates(t *testing.T) {
	a, b := balanceSheet(), balanceSheet()
	m := NewMemo()

	m.Resolve(a, "Total Assets")
	m.Resolve(a, "Total Assets")
	m.Resolve(b, "Total Assets")
	m.Resolve(a, "Total Assets", "Assets")

	hits, misses := m.Stats()
	assert.Equal(t, 2, hits, "a rebuilt table with the same rows shares entries")
	assert.Equal(t, 2, misses)
}

func TestMemo_ChangedContentMisses(t *testing.T) {
	a, b := balanceSheet(), balanceSheet()
	b.Set("Total Assets", 0, null.FloatFrom(650))
	m := NewMemo()

	assert.Equal(t, 500.0, m.Resolve(a, "Total Assets").Float64)
	assert.Equal(t, 650.0, m.Resolve(b, "Total Assets").Float64)

	// Set after a lookup invalidates the cached digest
	a.Set("Total Assets", 0, null.FloatFrom(700))
	assert.Equal(t, 700.0, m.Resolve(a, "Total Assets").Float64)

	hits, misses := m.Stats()
	assert.Zero(t, hits)
	assert.Equal(t, 3, misses)
}

func TestTable_Digest(t *testing.T) {
	a, b := balanceSheet(), balanceSheet()
	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotZero(t, a.Digest())

	// older periods are never observed by lookups
	b.Set("Total Assets", 1, null.FloatFrom(1))
	assert.Equal(t, a.Digest(), b.Digest())

	b.Set("Goodwill", 0, null.FloatFrom(5))
	assert.NotEqual(t, a.Digest(), b.Digest())

	var empty *Table
	assert.Zero(t, empty.Digest())
}

func TestMemo_Bounded(t *testing.T) {
	m := NewMemoSize(2)
	tbl := balanceSheet()

	m.Resolve(tbl, "Total Assets")
	m.Resolve(tbl, "Total Equity")
	assert.Equal(t, 2, m.Len())

	// the third distinct key clears the cache first
	v := m.Resolve(tbl, "Current Assets")
	assert.Equal(t, Resolve(tbl, "Current Assets"), v)
	assert.Equal(t, 1, m.Len())

	_, misses := m.Stats()
	assert.Equal(t, 3, misses)
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"totalStockholderEquity", "Total Stockholder Equity"},
		{"netIncome", "Net Income"},
		{"totalLiab", "Total Liab"},
		{"totalCurrentAssets", "Total Current Assets"},
		{"netPPE", "Net PPE"},
		{"ebit", "Ebit"},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, Humanize(tc.input), "Humanize(%q)", tc.input)
	}
}

func TestTable_RowsKeepInsertionOrder(t *testing.T) {
	tbl := balanceSheet()
	rows := tbl.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, "Total Assets", rows[0].Label)
	assert.Equal(t, "Total Current Assets", rows[3].Label)
	assert.Len(t, rows[0].Values, 2)
}
