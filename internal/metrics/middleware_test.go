package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPMiddleware_RecordsRequest(t *testing.T) {
	reg := NewRegistry()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<div id=\"board\"></div>"))
	})

	req := httptest.NewRequest("GET", "/board", nil)
	w := httptest.NewRecorder()
	HTTPMiddleware(reg)(handler).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	mf := family(t, reg, "http_requests_total")
	if mf == nil {
		t.Fatal("expected http_requests_total to be recorded")
	}
	m := mf.GetMetric()[0]
	if labelValue(m, "path") != "/board" || labelValue(m, "status") != "2xx" {
		t.Errorf("unexpected labels %v", m.GetLabel())
	}
	if family(t, reg, "http_request_duration_seconds") == nil {
		t.Error("expected http_request_duration_seconds to be recorded")
	}
}

func TestHTTPMiddleware_TracksInFlight(t *testing.T) {
	reg := NewRegistry()

	during := float64(-1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = family(t, reg, "http_requests_in_flight").GetMetric()[0].GetGauge().GetValue()
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/state", nil)
	HTTPMiddleware(reg)(handler).ServeHTTP(httptest.NewRecorder(), req)

	if during != 1 {
		t.Errorf("expected in-flight to be 1 during request, got %v", during)
	}
	if after := family(t, reg, "http_requests_in_flight").GetMetric()[0].GetGauge().GetValue(); after != 0 {
		t.Errorf("expected in-flight to be 0 after request, got %v", after)
	}
}

func TestHTTPMiddleware_CapturesStatusCode(t *testing.T) {
	reg := NewRegistry()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	req := httptest.NewRequest("POST", "/api/refresh", nil)
	w := httptest.NewRecorder()
	HTTPMiddleware(reg)(handler).ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if got := labelValue(family(t, reg, "http_requests_total").GetMetric()[0], "status"); got != "4xx" {
		t.Errorf("expected status label 4xx, got %s", got)
	}
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected hijack to fail on a recorder")
	}
	// Flush must not panic even when the writer cannot flush.
	rw.Flush()
}
