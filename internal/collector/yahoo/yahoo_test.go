package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/finsight/internal/collector"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/ratio"
	"github.com/newthinker/finsight/internal/statement"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL"},
  "timestamp":[1704205800,1704292200,1704378600],
  "indicators":{
    "quote":[{"close":[185.6,null,181.9]}],
    "adjclose":[{"adjclose":[184.9,null,181.2]}]
  }}],"error":null}}`

const statementsJSON = `{"quoteSummary":{"result":[{
  "incomeStatementHistory":{"incomeStatementHistory":[
    {"maxAge":1,"endDate":{"raw":1664496000,"fmt":"2022-09-30"},"netIncome":{"raw":99803000000,"fmt":"99.8B"}},
    {"maxAge":1,"endDate":{"raw":1696032000,"fmt":"2023-09-30"},"totalRevenue":{"raw":383285000000},"netIncome":{"raw":96995000000,"fmt":"97B"}}
  ]},
  "balanceSheetHistory":{"balanceSheetStatements":[
    {"maxAge":1,"endDate":{"raw":1696032000},"totalAssets":{"raw":352583000000},"totalLiab":{"raw":290437000000},
     "totalStockholderEquity":{"raw":62146000000},"totalCurrentAssets":{"raw":143566000000},
     "totalCurrentLiabilities":{"raw":145308000000},"goodWill":{}}
  ]},
  "cashflowStatementHistory":{"cashflowStatements":[]}
}],"error":null}}`

const profileJSON = `{"quoteSummary":{"result":[{
  "financialData":{"currentPrice":{"raw":189.5,"fmt":"189.50"}},
  "defaultKeyStatistics":{"trailingEps":{"raw":6.13},"sharesOutstanding":{"raw":15550100000},"priceToBook":{"raw":47.1}},
  "summaryDetail":{"dividendYield":{"raw":0.0051}},
  "assetProfile":{"sector":"Technology","longBusinessSummary":"Apple Inc. designs smartphones."}
}],"error":null}}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "/v8/finance/chart/MISSING"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
			w.Write([]byte(chartJSON))
		case strings.Contains(r.URL.RawQuery, "incomeStatementHistory"):
			w.Write([]byte(statementsJSON))
		case strings.Contains(r.URL.Path, "BAD"):
			w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: BAD"}}}`))
		default:
			w.Write([]byte(profileJSON))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYahoo_ImplementsProvider(t *testing.T) {
	var _ collector.Provider = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	y := New(collector.Config{})
	if y.Name() != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", y.Name())
	}
}

func TestYahoo_ToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"^GSPC", "^GSPC"},
		{"BRK.B", "BRK-B"},
		{"BF.A", "BF-A"},
		{"VOD.L", "VOD.L"},
		{"7203.T", "7203.T"},
		{"XYZ.V", "XYZ.V"},
		{"SAP.DE", "SAP.DE"},
		{"0700.HK", "0700.HK"},
		{"600519.SH", "600519.SS"},
	}

	y := New(collector.Config{})
	for _, tc := range tests {
		got := y.toYahooSymbol(tc.input)
		if got != tc.expected {
			t.Errorf("toYahooSymbol(%s) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestValidateSymbol(t *testing.T) {
	for _, s := range []string{"AAPL", "^GSPC", "BRK-B", "0700.HK"} {
		if err := validateSymbol(s); err != nil {
			t.Errorf("validateSymbol(%s) unexpected error: %v", s, err)
		}
	}
	for _, s := range []string{"", "AAPL/../x", strings.Repeat("A", 25)} {
		if err := validateSymbol(s); err == nil {
			t.Errorf("validateSymbol(%q) expected error", s)
		}
	}
}

func TestYahoo_FetchHistory(t *testing.T) {
	srv := newTestServer(t)
	y := New(collector.Config{BaseURL: srv.URL})

	bars, err := y.FetchHistory(context.Background(), "AAPL", core.Window1Y)
	require.NoError(t, err)
	require.Len(t, bars, 2, "null closes are skipped")
	assert.Equal(t, 184.9, bars[0].Close, "adjusted close preferred")
	assert.Equal(t, int64(1704378600), bars[1].Time.Unix())
}

func TestYahoo_FetchHistory_NotFound(t *testing.T) {
	srv := newTestServer(t)
	y := New(collector.Config{BaseURL: srv.URL})

	_, err := y.FetchHistory(context.Background(), "MISSING", core.Window1Y)
	assert.True(t, errors.Is(err, core.ErrSymbolNotFound))
}

func TestYahoo_FetchStatements(t *testing.T) {
	srv := newTestServer(t)
	y := New(collector.Config{BaseURL: srv.URL})

	st, err := y.FetchStatements(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, st.Income)
	require.NotNil(t, st.Balance)
	assert.Nil(t, st.Cashflow, "empty statement list yields no table")

	// periods are re-ordered most recent first
	ni := statement.Resolve(st.Income, ratio.NetIncomeLabels...)
	assert.Equal(t, 96995000000.0, ni.Float64)
	assert.Equal(t, 2023, st.Income.Periods[0].Year())

	f := ratio.ResolveFields(nil, st.Income, st.Balance)
	assert.Equal(t, 62146000000.0, f.TotalEquity.Float64)
	assert.Equal(t, 290437000000.0, f.TotalLiabilities.Float64)
	assert.Equal(t, 145308000000.0, f.CurrentLiabilities.Float64)

	assert.False(t, statement.Resolve(st.Balance, "Good Will").Valid, "empty cells are absent")
}

func TestYahoo_FetchProfile(t *testing.T) {
	srv := newTestServer(t)
	y := New(collector.Config{BaseURL: srv.URL, RateLimit: 100})

	p, err := y.FetchProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 189.5, p.CurrentPrice.Float64)
	assert.Equal(t, 6.13, p.TrailingEPS.Float64)
	assert.Equal(t, 15550100000.0, p.SharesOutstanding.Float64)
	assert.Equal(t, 0.0051, p.DividendYield.Float64)
	assert.Equal(t, 47.1, p.PriceToBook.Float64)
	assert.Equal(t, "Technology", p.Sector)
	assert.Contains(t, p.LongBusinessSummary, "Apple")
}

func TestYahoo_FetchProfile_ProviderError(t *testing.T) {
	srv := newTestServer(t)
	y := New(collector.Config{BaseURL: srv.URL})

	_, err := y.FetchProfile(context.Background(), "BAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Quote not found")
}

func TestYahoo_CancelledContext(t *testing.T) {
	srv := newTestServer(t)
	y := New(collector.Config{BaseURL: srv.URL, RateLimit: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := y.FetchHistory(ctx, "AAPL", core.Window1Y)
	assert.Error(t, err)
}
