package returns

import (
	"math"

	"github.com/guregu/null/v6"
)

// Stats describes one column of a frame
type Stats struct {
	Name  string     `json:"name"`
	Count int        `json:"count"`
	Mean  null.Float `json:"mean"`
	Std   null.Float `json:"std"`
	Min   null.Float `json:"min"`
	Max   null.Float `json:"max"`
}

// Describe computes count, mean, sample standard deviation (n-1), min and
// max per column. Std needs at least two observations; the others need one.
func Describe(f Frame) []Stats {
	out := make([]Stats, len(f.Names))
	for i, name := range f.Names {
		out[i] = describe(name, f.Values[i])
	}
	return out
}

func describe(name string, xs []float64) Stats {
	s := Stats{Name: name, Count: len(xs)}
	if len(xs) == 0 {
		return s
	}

	m := mean(xs)
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	s.Mean = null.FloatFrom(m)
	s.Min = null.FloatFrom(lo)
	s.Max = null.FloatFrom(hi)

	if len(xs) > 1 {
		var variance float64
		for _, x := range xs {
			variance += (x - m) * (x - m)
		}
		s.Std = null.FloatFrom(math.Sqrt(variance / float64(len(xs)-1)))
	}
	return s
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
