// Package api holds the JSON handlers of the HTTP surface.
package api

import (
	"context"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/storage/recent"
)

// ReportService is what the handlers need from app.App.
type ReportService interface {
	Generate(ctx context.Context, sel analysis.Selection) (*analysis.Report, error)
	Check(sel analysis.Selection) error
	Report(ctx context.Context, id string) (*analysis.Report, error)
	Reports(ctx context.Context, filter recent.ListFilter) ([]recent.Summary, error)
}

// Universe describes what can be selected
type Universe interface {
	Companies() []core.Company
	Benchmark() core.Benchmark
	MaxCompanies() int
}
