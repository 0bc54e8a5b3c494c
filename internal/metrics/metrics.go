// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeNoSuggestions = "no_suggestions"
	OutcomeNoDetails     = "no_details"
	OutcomeUpstream      = "upstream_error"
	OutcomeMalformed     = "malformed"
	OutcomeError         = "error"
)

// Catalog lookup results.
const (
	LookupOK       = "ok"
	LookupNotFound = "not_found"
	LookupFallback = "fallback"
	LookupError    = "error"
)

var (
	// HTTP metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviefinder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviefinder_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviefinder_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Pipeline metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviefinder_recommendations_total",
			Help: "Recommendation runs by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviefinder_recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	SuggestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviefinder_suggestion_duration_seconds",
			Help:    "LLM suggestion call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviefinder_catalog_lookups_total",
			Help: "Catalog lookups by operation and result",
		},
		[]string{"operation", "result"},
	)

	TitlesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviefinder_titles_dropped_total",
			Help: "Suggested titles dropped because the catalog could not resolve them",
		},
	)

	PersistenceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviefinder_persistence_failures_total",
			Help: "Recommendations that could not be stored",
		},
	)
)

// RecordAPIRequest records an HTTP request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records a completed recommendation run.
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordSuggestion records the latency of a suggestion call.
func RecordSuggestion(duration time.Duration) {
	SuggestionDuration.Observe(duration.Seconds())
}

// RecordCatalogLookup records a catalog search or provider lookup.
func RecordCatalogLookup(operation, result string) {
	CatalogLookups.WithLabelValues(operation, result).Inc()
}

// RecordTitleDropped counts a suggestion that produced no catalog match.
func RecordTitleDropped() {
	TitlesDropped.Inc()
}

// RecordPersistenceFailure counts a swallowed store failure.
func RecordPersistenceFailure() {
	PersistenceFailures.Inc()
}
