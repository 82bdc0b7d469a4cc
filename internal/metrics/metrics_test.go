package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEntry(t *testing.T) {
	m := New()
	m.RecordEntry("exercise")
	m.RecordEntry("exercise")
	m.RecordEntry("water")

	if got := testutil.ToFloat64(m.EntriesLogged.WithLabelValues("exercise")); got != 2 {
		t.Fatalf("exercise count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.EntriesLogged.WithLabelValues("water")); got != 1 {
		t.Fatalf("water count = %v, want 1", got)
	}
}

func TestRecordSummaryOutcome(t *testing.T) {
	m := New()
	m.RecordSummary("daily", nil)
	m.RecordSummary("daily", errors.New("telegram down"))

	if got := testutil.ToFloat64(m.SummariesSent.WithLabelValues("daily", "success")); got != 1 {
		t.Fatalf("success = %v", got)
	}
	if got := testutil.ToFloat64(m.SummariesSent.WithLabelValues("daily", "error")); got != 1 {
		t.Fatalf("error = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordEntry("general")
	m.RecordSummary("weekly", nil)
	m.RecordSync(nil)
	m.ObserveRequest("/", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordSync(nil)
	m.ObserveRequest("/chat", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"refl_sync_total", "refl_http_request_duration_seconds", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition output", want)
		}
	}
}
