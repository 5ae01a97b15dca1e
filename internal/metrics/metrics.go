// Package metrics provides Prometheus metrics for the gamedash server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamRequestsTotal counts catalog source requests by operation and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamedash",
			Name:      "upstream_requests_total",
			Help:      "Total number of catalog source requests",
		},
		[]string{"operation", "status"},
	)

	// UpstreamDuration measures catalog source request latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamedash",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of catalog source requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CacheLookupsTotal counts response cache lookups.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamedash",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by backend and result",
		},
		[]string{"backend", "result"},
	)

	// PassesTotal counts dashboard pass outcomes.
	PassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamedash",
			Name:      "dashboard_passes_total",
			Help:      "Dashboard aggregation passes by name and status",
		},
		[]string{"pass", "status"},
	)

	// PassDuration measures how long each pass took, fetch included.
	PassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamedash",
			Name:      "dashboard_pass_duration_seconds",
			Help:      "Duration of dashboard aggregation passes in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"pass"},
	)

	// DegenerateFallbacksTotal counts mode passes that produced no classified items.
	DegenerateFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamedash",
			Name:      "mode_degenerate_total",
			Help:      "Mode passes whose buckets were all zero, by applied policy",
		},
		[]string{"policy"},
	)

	// SSEClients tracks connected event stream clients.
	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gamedash",
			Name:      "sse_clients",
			Help:      "Number of connected dashboard event stream clients",
		},
	)
)

// RecordUpstream records a catalog source request.
func RecordUpstream(operation, status string, seconds float64) {
	UpstreamRequestsTotal.WithLabelValues(operation, status).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordCacheLookup records a cache lookup; result is hit, miss or error.
func RecordCacheLookup(backend, result string) {
	CacheLookupsTotal.WithLabelValues(backend, result).Inc()
}

// RecordPass records a finished dashboard pass.
func RecordPass(pass, status string, seconds float64) {
	PassesTotal.WithLabelValues(pass, status).Inc()
	PassDuration.WithLabelValues(pass).Observe(seconds)
}

// RecordDegenerate records a degenerate mode pass.
func RecordDegenerate(policy string) {
	DegenerateFallbacksTotal.WithLabelValues(policy).Inc()
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
