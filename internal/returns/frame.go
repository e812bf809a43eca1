// Package returns turns closing-price series into comparable return series:
// cumulative indexes rebased to 100, log returns, their descriptive
// statistics and pairwise correlation.
package returns

import (
	"math"
	"sort"
	"time"

	"github.com/newthinker/finsight/internal/core"
)

// Series is a named sequence of closing prices
type Series struct {
	Name string
	Bars []core.Bar
}

// Frame is a date-aligned matrix of values, one column per instrument.
// Values[i][t] is instrument i on Dates[t].
type Frame struct {
	Dates  []time.Time `json:"dates"`
	Names  []string    `json:"names"`
	Values [][]float64 `json:"values"`
}

// Len returns the number of aligned rows
func (f Frame) Len() int {
	return len(f.Dates)
}

// Column returns the values of the named instrument
func (f Frame) Column(name string) ([]float64, bool) {
	for i, n := range f.Names {
		if n == name {
			return f.Values[i], true
		}
	}
	return nil, false
}

type day struct {
	y int
	m time.Month
	d int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{y, m, d}
}

// Align joins the series on calendar day, keeping only the days on which
// every series has a usable closing price. Columns keep the argument order
// and rows are sorted by date.
func Align(series ...Series) Frame {
	f := Frame{Names: make([]string, len(series))}
	if len(series) == 0 {
		return f
	}

	lookups := make([]map[day]float64, len(series))
	stamps := make(map[day]time.Time)
	for i, s := range series {
		f.Names[i] = s.Name
		m := make(map[day]float64, len(s.Bars))
		for _, b := range s.Bars {
			if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
				continue
			}
			k := dayOf(b.Time)
			m[k] = b.Close
			if i == 0 {
				stamps[k] = b.Time
			}
		}
		lookups[i] = m
	}

	var common []day
	for k := range lookups[0] {
		ok := true
		for _, m := range lookups[1:] {
			if _, found := m[k]; !found {
				ok = false
				break
			}
		}
		if ok {
			common = append(common, k)
		}
	}
	sort.Slice(common, func(a, b int) bool {
		return stamps[common[a]].Before(stamps[common[b]])
	})

	f.Dates = make([]time.Time, len(common))
	f.Values = make([][]float64, len(series))
	for i := range series {
		f.Values[i] = make([]float64, len(common))
	}
	for t, k := range common {
		f.Dates[t] = stamps[k]
		for i, m := range lookups {
			f.Values[i][t] = m[k]
		}
	}
	return f
}
