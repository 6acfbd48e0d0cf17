package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecordsMetrics(t *testing.T) {
	c := NewCollector(&Config{Enabled: true}, prometheus.NewRegistry())

	c.RecordHTTPRequest("/analyze-emotion", "200", 120*time.Millisecond)
	c.RecordHTTPRequest("/analyze-emotion", "400", 5*time.Millisecond)
	c.RecordSessionStarted()
	c.RecordAnalysis("success", "happy")
	c.RecordAnalysis("unavailable", "")
	c.ObserveClassifierLatency(80 * time.Millisecond)
	c.ObservePurge("success", 17, 300*time.Millisecond)

	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("/analyze-emotion", "200")); got != 1 {
		t.Errorf("requests_total{200} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.sessionsStarted); got != 1 {
		t.Errorf("sessions_started_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.analysesTotal.WithLabelValues("success", "happy")); got != 1 {
		t.Errorf("analyses_total{success,happy} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.analysesTotal.WithLabelValues("unavailable", "none")); got != 1 {
		t.Errorf("analyses_total{unavailable,none} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.purgeRuns.WithLabelValues("success")); got != 1 {
		t.Errorf("purge_runs_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.purgedRecords); got != 17 {
		t.Errorf("purged_records_total = %v, want 17", got)
	}
}

func TestCollectorDisabled(t *testing.T) {
	c := NewCollector(&Config{Enabled: false}, prometheus.NewRegistry())

	c.RecordHTTPRequest("/", "200", time.Millisecond)
	c.RecordSessionStarted()
	c.ObservePurge("success", 5, time.Millisecond)

	if got := testutil.ToFloat64(c.sessionsStarted); got != 0 {
		t.Errorf("sessions_started_total = %v, want 0 when disabled", got)
	}
	if got := testutil.ToFloat64(c.purgedRecords); got != 0 {
		t.Errorf("purged_records_total = %v, want 0 when disabled", got)
	}
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector(&Config{Enabled: true}, nil)
	c.RecordSessionStarted()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("metrics endpoint status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "emotion_api_sessions_started_total") {
		t.Error("exposition output missing emotion_api_sessions_started_total")
	}
}
