// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Engine Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"operation", "source"}, // source: "computed", "cache", "fallback"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Recommendation request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_provider_duration_seconds",
			Help:    "Signal provider execution time in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"provider"},
	)

	ProviderBooksReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_provider_books_total",
			Help: "Total number of candidate books returned by signal providers",
		},
		[]string{"provider"},
	)

	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_provider_errors_total",
			Help: "Total number of signal provider failures",
		},
		[]string{"provider"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
		[]string{"namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
		[]string{"namespace"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_invalidations_total",
			Help: "Total number of invalidation events processed",
		},
		[]string{"event"},
	)

	CacheKeysInvalidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_keys_invalidated_total",
			Help: "Total number of cache keys removed by invalidation",
		},
		[]string{"event"},
	)

	// External Catalog Metrics
	ExternalSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_search_requests_total",
			Help: "Total number of external catalog searches",
		},
		[]string{"source", "outcome"}, // outcome: "success", "error", "rate_limited", "rejected"
	)

	ExternalSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_search_duration_seconds",
			Help:    "External catalog search duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Shelf Event Metrics
	ShelfEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelf_events_total",
			Help: "Total number of shelf mutation events",
		},
		[]string{"event", "status"}, // status: "ok", "error"
	)

	CacheStoreEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendation_cache_store_entries",
			Help: "Entries held by the in-process cache store, including expired ones not yet swept",
		},
	)

	CacheStoreHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendation_cache_store_hit_ratio",
			Help: "Lifetime hit percentage of the in-process cache store",
		},
	)

	CacheExpiredSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_expired_swept_total",
			Help: "Expired cache entries removed by the periodic sweep",
		},
	)

	// Catalog Metrics
	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_books",
			Help: "Number of books in the local catalog",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAPIStatus is RecordAPIRequest with an integer status code.
func RecordAPIStatus(method, endpoint string, status int, duration time.Duration) {
	RecordAPIRequest(method, endpoint, strconv.Itoa(status), duration)
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordExternalSearch records an external catalog search and its outcome.
func RecordExternalSearch(source, outcome string, duration time.Duration) {
	ExternalSearches.WithLabelValues(source, outcome).Inc()
	ExternalSearchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordShelfEvent records a shelf mutation.
func RecordShelfEvent(event string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ShelfEvents.WithLabelValues(event, status).Inc()
}

// SetCatalogSize records the number of books in the local catalog.
func SetCatalogSize(n int64) {
	CatalogBooks.Set(float64(n))
}

// RecordCacheSweep records one expiry sweep of the in-process cache store.
func RecordCacheSweep(removed, entries int, hitRatio float64) {
	CacheExpiredSwept.Add(float64(removed))
	CacheStoreEntries.Set(float64(entries))
	CacheStoreHitRatio.Set(hitRatio)
}
