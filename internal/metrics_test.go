package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMetricsEndpoint(t *testing.T) {
	metrics := NewMetrics()

	router := chi.NewRouter()
	router.Use(metrics.Middleware())
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	router.Get("/metrics", metrics.Handler().ServeHTTP)

	// Generate some traffic first
	testReq := httptest.NewRequest("GET", "/ping", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	if testW.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", testW.Code)
	}
	if testW.Body.String() != "pong" {
		t.Errorf("Expected body 'pong', got '%s'", testW.Body.String())
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 from /metrics, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "http_requests_total") {
		t.Errorf("Expected http_requests_total in metrics output, got:\n%s", body)
	}
	if !strings.Contains(body, "http_request_duration_seconds") {
		t.Errorf("Expected http_request_duration_seconds in metrics output, got:\n%s", body)
	}
}

func TestStatusRecorderDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, code: http.StatusOK}

	sr.Write([]byte("ok"))
	if sr.code != http.StatusOK {
		t.Errorf("Expected recorded status 200, got %d", sr.code)
	}

	sr2 := &statusRecorder{ResponseWriter: httptest.NewRecorder(), code: http.StatusOK}
	sr2.WriteHeader(http.StatusTeapot)
	if sr2.code != http.StatusTeapot {
		t.Errorf("Expected recorded status 418, got %d", sr2.code)
	}
}
