// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihandler "github.com/newthinker/finsight/internal/api/handler/api"
	"github.com/newthinker/finsight/internal/api/job"
	"github.com/newthinker/finsight/internal/api/middleware"
	"github.com/newthinker/finsight/internal/api/response"
	"github.com/newthinker/finsight/internal/metrics"
)

// Server represents the HTTP server for FinSight
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	router     chi.Router
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Dependencies holds the collaborators the routes are served from.
type Dependencies struct {
	Service  apihandler.ReportService
	Universe apihandler.Universe
	Jobs     *job.Store
	Metrics  *metrics.Registry
	Stats    func(ctx context.Context) map[string]any
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Service == nil || deps.Universe == nil {
		return nil, fmt.Errorf("report service and universe are required")
	}
	if deps.Jobs == nil {
		deps.Jobs = job.NewStore(100, time.Hour)
	}

	s := &Server{
		logger: logger,
		router: chi.NewRouter(),
	}
	s.setupRoutes(cfg, deps)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // synchronous report generation
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	r := s.router
	r.Use(chimw.Recoverer)
	r.Use(metrics.LoggingMiddleware(s.logger))
	if deps.Metrics != nil {
		r.Use(metrics.HTTPMiddleware(deps.Metrics))
	}

	r.Get("/api/health", s.handleHealth)
	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	companies := apihandler.NewCompaniesHandler(deps.Universe)
	reports := apihandler.NewReportsHandler(deps.Service, deps.Jobs, s.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))

		r.Get("/companies", companies.List)
		r.Get("/reports", reports.List)
		r.Post("/reports", reports.Create)
		r.Get("/reports/{id}", reports.Get)
		r.Get("/reports/{id}/xlsx", reports.XLSX)
		r.Get("/reports/{id}/text", reports.Text)
		r.Get("/jobs/{id}", reports.Job)
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			stats := map[string]any{}
			if deps.Stats != nil {
				stats = deps.Stats(r.Context())
			}
			response.JSON(w, http.StatusOK, stats)
		})
	})
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
