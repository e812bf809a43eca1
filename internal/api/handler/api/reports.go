package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/api/job"
	"github.com/newthinker/finsight/internal/api/response"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/export"
	"github.com/newthinker/finsight/internal/storage/recent"
)

const (
	reportTimeout = 2 * time.Minute
	maxBodyBytes  = 1 << 16
)

// ReportRequest is the request body for generating a report.
type ReportRequest struct {
	Tickers []string `json:"tickers"`
	Window  string   `json:"window"`
}

// ReportsHandler handles report API requests.
type ReportsHandler struct {
	service ReportService
	jobs    *job.Store
	logger  *zap.Logger
}

// NewReportsHandler creates a new reports handler. logger may be nil.
func NewReportsHandler(service ReportService, jobs *job.Store, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{service: service, jobs: jobs, logger: logger}
}

func decodeSelection(w http.ResponseWriter, r *http.Request) (analysis.Selection, error) {
	var req ReportRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return analysis.Selection{}, core.WrapError(core.ErrInvalidRequest, err)
	}
	return analysis.Selection{Tickers: req.Tickers, Window: core.Window(req.Window)}, nil
}

// Create generates a report. With ?async=true it returns 202 and a job to
// poll instead of waiting.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeSelection(w, r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async && h.jobs != nil {
		// Invalid selections fail here with 400 rather than as a job.
		if err := h.service.Check(sel); err != nil {
			response.Fail(w, err)
			return
		}
		j := h.jobs.Create("report")
		go h.runJob(j.ID, sel)
		response.JSON(w, http.StatusAccepted, j)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	report, err := h.service.Generate(ctx, sel)
	if err != nil {
		response.Fail(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/reports/"+report.ID)
	response.JSON(w, http.StatusCreated, report)
}

func (h *ReportsHandler) runJob(id string, sel analysis.Selection) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	h.jobs.Update(id, func(j *job.Job) { j.Status = job.StatusRunning })

	report, err := h.service.Generate(ctx, sel)
	h.jobs.Update(id, func(j *job.Job) {
		if err != nil {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
			return
		}
		j.Status = job.StatusComplete
		j.ReportID = report.ID
	})
	if err != nil {
		h.logger.Warn("report job failed", zap.String("job_id", id), zap.Error(err))
	}
}

func asCoreError(err error) *core.Error {
	var ce *core.Error
	if errors.As(err, &ce) {
		return ce
	}
	return core.WrapError(&core.Error{Code: "INTERNAL_ERROR", Message: "report generation failed"}, err)
}

// Job returns the state of an async report job.
func (h *ReportsHandler) Job(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		response.Fail(w, core.ErrJobNotFound)
		return
	}
	j, err := h.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

// Get returns a stored report.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}

// List returns recent report summaries. Supports ticker, limit and offset
// query parameters.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := recent.ListFilter{Ticker: q.Get("ticker"), Limit: 20}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Fail(w, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("%s must be a non-negative integer", name)))
			return
		}
		*dst = n
	}

	list, err := h.service.Reports(r.Context(), filter)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

// XLSX streams the report as a workbook download.
func (h *ReportsHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report); err != nil {
		h.logger.Error("xlsx export failed", zap.String("id", report.ID), zap.Error(err))
		response.Fail(w, err)
		return
	}

	w.Header().Set("Content-Type", export.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="finsight-%s.xlsx"`, report.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// Text renders the report as plain-text tables.
func (h *ReportsHandler) Text(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, report); err != nil {
		response.Fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
