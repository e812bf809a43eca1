package core

import (
	"fmt"
	"time"
)

// Window is a historical lookback period accepted by the data provider
type Window string

const (
	Window1Y Window = "1y"
	Window2Y Window = "2y"
	Window5Y Window = "5y"
)

// Windows lists the accepted lookback windows in display order
func Windows() []Window {
	return []Window{Window1Y, Window2Y, Window5Y}
}

// ParseWindow accepts "1y", "2y", "5y" and their long forms ("1 year", "2 years", "5 years")
func ParseWindow(s string) (Window, error) {
	switch s {
	case "1y", "1 year":
		return Window1Y, nil
	case "2y", "2 years":
		return Window2Y, nil
	case "5y", "5 years":
		return Window5Y, nil
	}
	return "", WrapError(ErrInvalidWindow, fmt.Errorf("unsupported window %q", s))
}

// Start returns the first instant covered by the window ending at end
func (w Window) Start(end time.Time) time.Time {
	switch w {
	case Window2Y:
		return end.AddDate(-2, 0, 0)
	case Window5Y:
		return end.AddDate(-5, 0, 0)
	default:
		return end.AddDate(-1, 0, 0)
	}
}

// Bar is a single daily closing price
type Bar struct {
	Symbol string    `json:"symbol"`
	Close  float64   `json:"close"`
	Time   time.Time `json:"time"`
}

// Company is a selectable entry of the analysis universe
type Company struct {
	Name   string `json:"name" mapstructure:"name"`
	Symbol string `json:"symbol" mapstructure:"symbol"`
}

// Benchmark identifies the market index used for relative-performance overlays
type Benchmark struct {
	Name   string `json:"name" mapstructure:"name"`
	Symbol string `json:"symbol" mapstructure:"symbol"`
}

// DefaultBenchmark is the S&P 500 index
var DefaultBenchmark = Benchmark{Name: "S&P 500", Symbol: "^GSPC"}
