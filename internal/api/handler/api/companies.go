package api

import (
	"net/http"

	"github.com/newthinker/finsight/internal/api/response"
	"github.com/newthinker/finsight/internal/core"
)

// CompaniesResponse lists the selectable universe.
type CompaniesResponse struct {
	Companies    []core.Company `json:"companies"`
	Benchmark    core.Benchmark `json:"benchmark"`
	Windows      []core.Window  `json:"windows"`
	MaxCompanies int            `json:"max_companies"`
}

// CompaniesHandler serves the selection options.
type CompaniesHandler struct {
	universe Universe
}

// NewCompaniesHandler creates a new companies handler.
func NewCompaniesHandler(u Universe) *CompaniesHandler {
	return &CompaniesHandler{universe: u}
}

// List returns the companies, the benchmark and the supported windows.
func (h *CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, CompaniesResponse{
		Companies:    h.universe.Companies(),
		Benchmark:    h.universe.Benchmark(),
		Windows:      core.Windows(),
		MaxCompanies: h.universe.MaxCompanies(),
	})
}
