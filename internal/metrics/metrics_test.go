package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_ObserveAnalysis(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveAnalysis("success", 12, []string{"High CPU Usage Detected (>80%)", "High Disk Usage Detected (>90%)"})
	c.ObserveAnalysis("success", 3, []string{"High CPU Usage Detected (>80%)"})
	c.ObserveAnalysis("validation_error", 0, nil)

	if got := testutil.ToFloat64(c.AnalysesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success analyses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.AnalysesTotal.WithLabelValues("validation_error")); got != 1 {
		t.Errorf("validation_error analyses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.AlertsRaised.WithLabelValues("High CPU Usage Detected (>80%)")); got != 2 {
		t.Errorf("cpu alerts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.RowsProcessed); got != 15 {
		t.Errorf("rows = %v, want 15", got)
	}
}

func TestCollector_ObserveGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveGeneration("success", 2*time.Second)
	c.ObserveGeneration("transport_error", time.Millisecond)
	c.ObserveCacheLookup(true)
	c.ObserveCacheLookup(false)
	c.ObserveCacheLookup(false)

	if got := testutil.ToFloat64(c.LLMRequestsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("success calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.CacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(c.LLMRequestDuration); n != 1 {
		t.Errorf("duration collectors = %d, want 1", n)
	}
}

func TestCollector_ObserveRequest(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveRequest("POST", "/analyze", "200", 150*time.Millisecond)

	if got := testutil.ToFloat64(c.HTTPRequestsTotal.WithLabelValues("POST", "/analyze", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}
