package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterHTTPMetricsIdempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics() // second call must not panic
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/facilities/city/{city}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/api/facilities/city/Portside", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/facilities/city/{city}", "204"))
	if got < 1 {
		t.Errorf("request counter for route pattern: got %g, want at least 1", got)
	}
	if c := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/facilities/city/Portside", "204")); c != 0 {
		t.Errorf("raw path must not be a label value, counted %g", c)
	}
}

func TestMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/no/such/route", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	if got < 1 {
		t.Errorf("unmatched counter: got %g, want at least 1", got)
	}
}
