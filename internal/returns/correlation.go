package returns

import (
	"math"

	"github.com/guregu/null/v6"
)

// Correlation is a square Pearson correlation matrix labelled by Names on
// both axes. Off-diagonal entries are absent when either column has no
// variance.
type Correlation struct {
	Names  []string       `json:"names"`
	Values [][]null.Float `json:"values"`
}

// At returns the entry for the named pair
func (c Correlation) At(a, b string) null.Float {
	i, j := -1, -1
	for k, n := range c.Names {
		if n == a {
			i = k
		}
		if n == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return null.Float{}
	}
	return c.Values[i][j]
}

// Correlate computes pairwise Pearson correlation over the aligned rows of
// f. The diagonal is exactly 1 and the matrix is symmetric.
func Correlate(f Frame) Correlation {
	n := len(f.Names)
	c := Correlation{
		Names:  f.Names,
		Values: make([][]null.Float, n),
	}
	for i := range c.Values {
		c.Values[i] = make([]null.Float, n)
		c.Values[i][i] = null.FloatFrom(1)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := pearson(f.Values[i], f.Values[j])
			c.Values[i][j] = v
			c.Values[j][i] = v
		}
	}
	return c
}

func pearson(x, y []float64) null.Float {
	if len(x) != len(y) || len(x) < 2 {
		return null.Float{}
	}
	mx, my := mean(x), mean(y)

	var sxy, sxx, syy float64
	for k := range x {
		dx, dy := x[k]-mx, y[k]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return null.Float{}
	}

	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) {
		return null.Float{}
	}
	return null.FloatFrom(math.Max(-1, math.Min(1, r)))
}
