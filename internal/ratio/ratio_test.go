package ratio

import (
	"math"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/finsight/internal/statement"
)

func TestCompute_ROE(t *testing.T) {
	r := Compute(Fields{
		NetIncome:   null.FloatFrom(50),
		TotalEquity: null.FloatFrom(200),
	})
	require.True(t, r.ROE.Valid)
	assert.InDelta(t, 0.25, r.ROE.Float64, 1e-12)
}

func TestCompute_MissingOperandIsAbsent(t *testing.T) {
	r := Compute(Fields{NetIncome: null.FloatFrom(50)})
	assert.False(t, r.ROE.Valid)
	assert.False(t, r.ROA.Valid)
	assert.False(t, r.MarketCap.Valid)
}

func TestCompute_ZeroDenominatorIsAbsent(t *testing.T) {
	r := Compute(Fields{
		NetIncome:          null.FloatFrom(50),
		TotalLiabilities:   null.FloatFrom(80),
		TotalEquity:        null.FloatFrom(0),
		CurrentAssets:      null.FloatFrom(10),
		CurrentLiabilities: null.FloatFrom(0),
		CurrentPrice:       null.FloatFrom(10),
		TrailingEPS:        null.FloatFrom(0),
	})
	assert.False(t, r.DebtToEquity.Valid, "debt/equity with zero equity")
	assert.False(t, r.ROE.Valid, "roe with zero equity")
	assert.False(t, r.CurrentRatio.Valid)
	assert.False(t, r.PE.Valid)
}

func TestCompute_ZeroNumeratorIsAValue(t *testing.T) {
	r := Compute(Fields{
		NetIncome:   null.FloatFrom(0),
		TotalEquity: null.FloatFrom(100),
	})
	require.True(t, r.ROE.Valid)
	assert.Equal(t, 0.0, r.ROE.Float64)
}

func TestCompute_AllRatios(t *testing.T) {
	r := Compute(Fields{
		NetIncome:          null.FloatFrom(100),
		TotalEquity:        null.FloatFrom(400),
		TotalAssets:        null.FloatFrom(1000),
		TotalLiabilities:   null.FloatFrom(600),
		CurrentAssets:      null.FloatFrom(300),
		CurrentLiabilities: null.FloatFrom(150),
		CurrentPrice:       null.FloatFrom(50),
		TrailingEPS:        null.FloatFrom(2.5),
		SharesOutstanding:  null.FloatFrom(1e6),
	})

	assert.InDelta(t, 0.25, r.ROE.Float64, 1e-12)
	assert.InDelta(t, 0.10, r.ROA.Float64, 1e-12)
	assert.InDelta(t, 1.5, r.DebtToEquity.Float64, 1e-12)
	assert.InDelta(t, 2.0, r.CurrentRatio.Float64, 1e-12)
	assert.InDelta(t, 20.0, r.PE.Float64, 1e-12)
	assert.InDelta(t, 5e7, r.MarketCap.Float64, 1e-6)
}

func TestDiv_NonFiniteIsAbsent(t *testing.T) {
	assert.False(t, Div(null.FloatFrom(math.Inf(1)), null.FloatFrom(1)).Valid)
	assert.False(t, Mul(null.FloatFrom(math.MaxFloat64), null.FloatFrom(10)).Valid)
}

func TestResolveFields(t *testing.T) {
	income := statement.NewTable("income", nil)
	income.Set("Net Income", 0, null.FloatFrom(50))

	balance := statement.NewTable("balance", nil)
	balance.Set("Total Assets", 0, null.FloatFrom(1000))
	balance.Set("Total Liab", 0, null.FloatFrom(700))
	balance.Set("Total Stockholder Equity", 0, null.FloatFrom(200))
	balance.Set("Total Current Liabilities", 0, null.FloatFrom(90))

	f := ResolveFields(nil, income, balance)

	assert.Equal(t, null.FloatFrom(50), f.NetIncome)
	assert.Equal(t, null.FloatFrom(200), f.TotalEquity)
	assert.Equal(t, null.FloatFrom(1000), f.TotalAssets)
	assert.Equal(t, null.FloatFrom(700), f.TotalLiabilities)
	assert.False(t, f.CurrentAssets.Valid)
	assert.Equal(t, null.FloatFrom(90), f.CurrentLiabilities)
	assert.False(t, f.CurrentPrice.Valid, "price comes from metadata, not statements")
}

func TestResolveFields_WithMemo(t *testing.T) {
	balance := statement.NewTable("balance", nil)
	balance.Set("Total Equity", 0, null.FloatFrom(10))

	m := statement.NewMemo()
	ResolveFields(m, nil, balance)
	ResolveFields(m, nil, balance)

	hits, _ := m.Stats()
	assert.Equal(t, 6, hits)
}

func TestProfile_Summary(t *testing.T) {
	p := Profile{Description: "abcdef"}
	assert.Equal(t, "abc...", p.Summary(3))
	assert.Equal(t, "abcdef", p.Summary(10))
	assert.Equal(t, "abcdef", p.Summary(0))
}
