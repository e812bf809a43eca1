package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, reg *Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				return m.GetGauge().GetValue()
			}
		}
	}
	return -1
}

func TestHTTPMiddleware_UsesRoutePattern(t *testing.T) {
	reg := NewRegistry()

	r := chi.NewRouter()
	r.Use(HTTPMiddleware(reg))
	r.Get("/api/v1/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/reports/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	got := counterValue(t, reg, "http_requests_total", map[string]string{
		"method": "GET", "path": "/api/v1/reports/{id}", "status": "2xx",
	})
	assert.Equal(t, float64(3), got, "one series for every report ID")
}

func TestHTTPMiddleware_FallsBackToURLPath(t *testing.T) {
	reg := NewRegistry()

	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/v1/reports", nil))

	got := counterValue(t, reg, "http_requests_total", map[string]string{
		"method": "POST", "path": "/api/v1/reports", "status": "2xx",
	})
	assert.Equal(t, float64(1), got)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var observed uint64
	for _, mf := range mfs {
		if mf.GetName() == "http_request_duration_seconds" {
			for _, m := range mf.GetMetric() {
				observed += m.GetHistogram().GetSampleCount()
			}
		}
	}
	assert.Equal(t, uint64(1), observed)
}

func TestHTTPMiddleware_TracksInFlight(t *testing.T) {
	reg := NewRegistry()

	var during float64
	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = gaugeValue(t, reg, "http_requests_in_flight")
		w.WriteHeader(http.StatusOK)
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/companies", nil))

	assert.Equal(t, float64(1), during)
	assert.Equal(t, float64(0), gaugeValue(t, reg, "http_requests_in_flight"))
}

func TestHTTPMiddleware_CapturesStatusCode(t *testing.T) {
	reg := NewRegistry()

	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/reports/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	got := counterValue(t, reg, "http_requests_total", map[string]string{
		"method": "GET", "path": "/api/v1/reports/missing", "status": "4xx",
	})
	assert.Equal(t, float64(1), got)
}

func TestHTTPMiddleware_DefaultsToOK(t *testing.T) {
	reg := NewRegistry()

	// handlers that never call WriteHeader still count as 200
	wrapped := HTTPMiddleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/health", nil))

	got := counterValue(t, reg, "http_requests_total", map[string]string{
		"method": "GET", "path": "/api/health", "status": "2xx",
	})
	assert.Equal(t, float64(1), got)
}
