package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the service's Prometheus collectors.
type Collector struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AnalysesTotal *prometheus.CounterVec
	AlertsRaised  *prometheus.CounterVec
	RowsProcessed prometheus.Counter

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration prometheus.Histogram
	CacheLookups       *prometheus.CounterVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),

		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Uploaded sheets analysed, by outcome",
		}, []string{"outcome"}),

		AlertsRaised: f.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_raised_total",
			Help: "Alerts returned to callers, by alert text",
		}, []string{"alert"}),

		RowsProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "metric_rows_processed_total",
			Help: "Metric rows read from uploaded sheets",
		}),

		LLMRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Generation endpoint calls, by outcome",
		}, []string{"outcome"}),

		// Local models routinely take tens of seconds.
		LLMRequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of generation endpoint calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "summary_cache_lookups_total",
			Help: "Summary cache lookups, by result",
		}, []string{"result"}),
	}
}

func (c *Collector) ObserveRequest(method, endpoint, status string, d time.Duration) {
	c.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
	c.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}

func (c *Collector) ObserveAnalysis(outcome string, rows int, alerts []string) {
	c.AnalysesTotal.WithLabelValues(outcome).Inc()
	c.RowsProcessed.Add(float64(rows))
	for _, alert := range alerts {
		c.AlertsRaised.WithLabelValues(alert).Inc()
	}
}

func (c *Collector) ObserveGeneration(outcome string, d time.Duration) {
	c.LLMRequestsTotal.WithLabelValues(outcome).Inc()
	c.LLMRequestDuration.Observe(d.Seconds())
}

func (c *Collector) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}
