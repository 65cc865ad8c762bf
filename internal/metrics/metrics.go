// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// HTTP surface
	HTTPRequests *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration *prometheus.HistogramVec // labels: method, route
	RateLimited  prometheus.Counter

	// Upstream wiki / news calls
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint, outcome
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Cache
	CacheLookups *prometheus.CounterVec // labels: name, result=hit|miss|error

	// Indicator engine
	IndicatorComputeDur prometheus.Histogram

	// Live feed
	LiveClients    prometheus.Gauge
	LiveBroadcasts prometheus.Counter
	LiveDropped    prometheus.Counter

	// Scheduled jobs
	JobRuns *prometheus.CounterVec // labels: job, outcome
}

// New creates all collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runetick_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "runetick_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runetick_http_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runetick_upstream_requests_total",
			Help: "Calls to the OSRS wiki and news endpoints",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "runetick_upstream_request_duration_seconds",
			Help:    "Latency of upstream calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runetick_cache_lookups_total",
			Help: "Cache lookups by cache name and result",
		}, []string{"name", "result"}),
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "runetick_indicator_compute_seconds",
			Help:    "Time to resample and enrich one price series",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		LiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runetick_live_clients",
			Help: "Connected websocket clients",
		}),
		LiveBroadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runetick_live_broadcasts_total",
			Help: "Price snapshots pushed to the live hub",
		}),
		LiveDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runetick_live_dropped_clients_total",
			Help: "Websocket clients dropped for not keeping up",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runetick_job_runs_total",
			Help: "Scheduled job executions by outcome",
		}, []string{"job", "outcome"}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.RateLimited,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.IndicatorComputeDur,
		m.LiveClients,
		m.LiveBroadcasts,
		m.LiveDropped,
		m.JobRuns,
	)
	return m
}

// Outcome maps an error to an "ok"/"error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
