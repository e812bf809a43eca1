package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	reportsTotal      *prometheus.CounterVec
	reportDuration    prometheus.Histogram
	companiesAnalyzed prometheus.Counter
	fetchFailures     *prometheus.CounterVec
	absentRatios      *prometheus.CounterVec
	commentaryTotal   *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_reports_total",
			Help: "Total number of reports generated",
		},
		[]string{"status"},
	)
	r.reportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finsight_report_duration_seconds",
			Help:    "Report generation duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)
	r.companiesAnalyzed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "finsight_companies_analyzed_total",
			Help: "Total number of companies that made it into a report",
		},
	)
	r.fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_fetch_failures_total",
			Help: "Total number of upstream fetch failures",
		},
		[]string{"provider", "kind"},
	)
	r.absentRatios = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_absent_ratios_total",
			Help: "Total number of ratios reported as not available",
		},
		[]string{"ratio"},
	)
	r.commentaryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_commentary_total",
			Help: "Total number of LLM commentary requests",
		},
		[]string{"provider", "status"},
	)

	reg.MustRegister(r.reportsTotal)
	reg.MustRegister(r.reportDuration)
	reg.MustRegister(r.companiesAnalyzed)
	reg.MustRegister(r.fetchFailures)
	reg.MustRegister(r.absentRatios)
	reg.MustRegister(r.commentaryTotal)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordReport records a finished report pass.
func (r *Registry) RecordReport(status string, companies int, duration float64) {
	r.reportsTotal.WithLabelValues(status).Inc()
	r.reportDuration.Observe(duration)
	r.companiesAnalyzed.Add(float64(companies))
}

// RecordFetchFailure records a failed upstream fetch. kind is
// "company" or "benchmark".
func (r *Registry) RecordFetchFailure(provider, kind string) {
	r.fetchFailures.WithLabelValues(provider, kind).Inc()
}

// RecordAbsentRatio records a ratio that could not be computed.
func (r *Registry) RecordAbsentRatio(name string) {
	r.absentRatios.WithLabelValues(name).Inc()
}

// RecordCommentary records an LLM commentary attempt.
func (r *Registry) RecordCommentary(provider, status string) {
	r.commentaryTotal.WithLabelValues(provider, status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
