package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/newthinker/finsight/internal/collector"
	"github.com/newthinker/finsight/internal/core"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (compatible; finsight/1.0)"
)

// validSymbol matches symbols like AAPL, BRK-B, 0700.HK and indexes like ^GSPC
var validSymbol = regexp.MustCompile(`^\^?[A-Za-z0-9\-]{1,10}(\.[A-Za-z]{1,4})?$`)

// shareClass matches US class shares written with a dot (BRK.B, BF.A).
// Other one-letter suffixes are exchanges (VOD.L, 7203.T, XYZ.V).
var shareClass = regexp.MustCompile(`^[A-Z]{1,5}\.[AB]$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

var (
	statementModules = []string{"incomeStatementHistory", "balanceSheetHistory", "cashflowStatementHistory"}
	profileModules   = []string{"financialData", "defaultKeyStatistics", "summaryDetail", "assetProfile"}
)

// Yahoo implements collector.Provider over the Yahoo Finance chart and
// quoteSummary endpoints.
type Yahoo struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// New creates a new Yahoo provider
func New(cfg collector.Config) *Yahoo {
	timeout := 10 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	y := &Yahoo{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
	if y.baseURL == "" {
		y.baseURL = defaultBaseURL
	}
	if y.userAgent == "" {
		y.userAgent = defaultUserAgent
	}
	if cfg.RateLimit > 0 {
		y.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return y
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// toYahooSymbol converts internal symbol format to Yahoo format
func (y *Yahoo) toYahooSymbol(symbol string) string {
	// Shanghai stocks: 600519.SH -> 600519.SS
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	// Share classes use a dash: BRK.B -> BRK-B
	if shareClass.MatchString(symbol) {
		return strings.Replace(symbol, ".", "-", 1)
	}
	return symbol
}

// FetchHistory fetches daily closes for the window
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, window core.Window) ([]core.Bar, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		y.baseURL, url.PathEscape(y.toYahooSymbol(symbol)), window)

	body, err := y.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}

	chart := gjson.GetBytes(body, "chart")
	if desc := chart.Get("error.description"); desc.Exists() {
		return nil, fmt.Errorf("yahoo error: %s", desc.String())
	}
	r := chart.Get("result.0")
	if !r.Exists() {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no chart data for symbol: %s", symbol))
	}

	return parseChart(symbol, r), nil
}

// parseChart prefers adjusted closes, falling back to raw closes, and skips
// null entries.
func parseChart(symbol string, r gjson.Result) []core.Bar {
	timestamps := r.Get("timestamp").Array()
	closes := r.Get("indicators.adjclose.0.adjclose").Array()
	if len(closes) == 0 {
		closes = r.Get("indicators.quote.0.close").Array()
	}

	data := make([]core.Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type != gjson.Number {
			continue
		}
		data = append(data, core.Bar{
			Symbol: symbol,
			Close:  closes[i].Float(),
			Time:   time.Unix(ts.Int(), 0).UTC(),
		})
	}
	return data
}

// FetchStatements fetches annual income, balance sheet and cash flow
// statements
func (y *Yahoo) FetchStatements(ctx context.Context, symbol string) (*collector.Statements, error) {
	r, err := y.quoteSummary(ctx, symbol, statementModules)
	if err != nil {
		return nil, fmt.Errorf("fetching statements: %w", err)
	}

	return &collector.Statements{
		Income:   parseStatements("income", r.Get("incomeStatementHistory.incomeStatementHistory")),
		Balance:  parseStatements("balance", r.Get("balanceSheetHistory.balanceSheetStatements")),
		Cashflow: parseStatements("cashflow", r.Get("cashflowStatementHistory.cashflowStatements")),
	}, nil
}

// FetchProfile fetches price, per-share figures and company description
func (y *Yahoo) FetchProfile(ctx context.Context, symbol string) (*collector.Profile, error) {
	r, err := y.quoteSummary(ctx, symbol, profileModules)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	return &collector.Profile{
		Symbol:              symbol,
		CurrentPrice:        rawValue(r.Get("financialData.currentPrice")),
		TrailingEPS:         rawValue(r.Get("defaultKeyStatistics.trailingEps")),
		SharesOutstanding:   rawValue(r.Get("defaultKeyStatistics.sharesOutstanding")),
		Sector:              r.Get("assetProfile.sector").String(),
		LongBusinessSummary: r.Get("assetProfile.longBusinessSummary").String(),
		DividendYield:       rawValue(r.Get("summaryDetail.dividendYield")),
		PriceToBook:         rawValue(r.Get("defaultKeyStatistics.priceToBook")),
	}, nil
}

func (y *Yahoo) quoteSummary(ctx context.Context, symbol string, modules []string) (gjson.Result, error) {
	if err := validateSymbol(symbol); err != nil {
		return gjson.Result{}, err
	}
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(y.toYahooSymbol(symbol)), strings.Join(modules, ","))

	body, err := y.get(ctx, u)
	if err != nil {
		return gjson.Result{}, err
	}

	qs := gjson.GetBytes(body, "quoteSummary")
	if desc := qs.Get("error.description"); desc.Exists() {
		return gjson.Result{}, fmt.Errorf("yahoo error: %s", desc.String())
	}
	r := qs.Get("result.0")
	if !r.Exists() {
		return gjson.Result{}, core.WrapError(core.ErrNoData, fmt.Errorf("no summary data for symbol: %s", symbol))
	}
	return r, nil
}

func (y *Yahoo) get(ctx context.Context, u string) ([]byte, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", y.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("%s", u))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decoding response: invalid JSON")
	}
	return body, nil
}
