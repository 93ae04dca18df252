package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/products/{id}/similar", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	for _, id := range []string{"kb-01", "ms-01", "hp-01"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id+"/similar", http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/products/{id}/similar", "200"))
	if got < 3 {
		t.Errorf("requests_total for route pattern = %f, want >= 3", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
	if v := testutil.ToFloat64(httpRequestsInFlight); v != 0 {
		t.Errorf("in-flight = %f after requests finished, want 0", v)
	}
}

func TestMetricsMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Post("/api/v1/products/{id}/events", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	tests := []struct {
		method, target, pattern, status string
	}{
		{http.MethodGet, "/api/v1/search?q=mouse", "/api/v1/search", "503"},
		{http.MethodPost, "/api/v1/products/p1/events", "/api/v1/products/{id}/events", "202"},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.target, http.NoBody))

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.pattern, tc.status))
			if val < 1 {
				t.Errorf("requests_total{%s %s %s} = %f, want >= 1", tc.method, tc.pattern, tc.status, val)
			}
		})
	}
}

func TestMetricsMiddleware_Unmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")); v < 1 {
		t.Errorf("unmatched requests_total = %f, want >= 1", v)
	}
}

func TestMetricsMiddleware_NoRouteContext(t *testing.T) {
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "418")); v < 1 {
		t.Errorf("requests_total without router = %f, want >= 1", v)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unmatched"},
		{"/api/v1/products/{id}/similar", "/api/v1/products/{id}/similar"},
		{"/health", "/health"},
	}

	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
