package returns

import (
	"math"
	"time"
)

// IndexBase is the starting value of every cumulative index
const IndexBase = 100.0

// CumulativeIndex rebases every column to IndexBase on the first date and
// compounds period-over-period changes from there. The first period's
// change is zero.
func CumulativeIndex(f Frame) Frame {
	out := Frame{
		Dates:  f.Dates,
		Names:  f.Names,
		Values: make([][]float64, len(f.Values)),
	}
	for i, prices := range f.Values {
		idx := make([]float64, len(prices))
		for t := range prices {
			if t == 0 {
				idx[t] = IndexBase
				continue
			}
			pct := prices[t]/prices[t-1] - 1
			idx[t] = idx[t-1] * (1 + pct)
		}
		out.Values[i] = idx
	}
	return out
}

// LogReturns computes ln(p[t]/p[t-1]) for every column. The first date has
// no return and is dropped, so a single-row frame yields an empty one.
func LogReturns(f Frame) Frame {
	out := Frame{
		Names:  f.Names,
		Values: make([][]float64, len(f.Values)),
	}
	if f.Len() < 2 {
		out.Dates = []time.Time{}
		for i := range out.Values {
			out.Values[i] = []float64{}
		}
		return out
	}

	out.Dates = f.Dates[1:]
	for i, prices := range f.Values {
		r := make([]float64, len(prices)-1)
		for t := 1; t < len(prices); t++ {
			r[t-1] = math.Log(prices[t] / prices[t-1])
		}
		out.Values[i] = r
	}
	return out
}
