// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed by the HTTP server at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)

Recommendation Metrics:
  - recommendation_requests_total: Engine operations (counter)
    Labels: operation, source (computed, cache, fallback)
  - recommendation_duration_seconds: Engine latency (histogram)
  - recommendation_provider_duration_seconds: Provider latency (histogram)
  - recommendation_provider_books_total: Candidates per provider (counter)
  - recommendation_provider_errors_total: Provider failures (counter)

Cache Metrics:
  - recommendation_cache_hits_total / recommendation_cache_misses_total
    Labels: namespace
  - recommendation_cache_invalidations_total: Invalidation events (counter)
  - recommendation_cache_keys_invalidated_total: Keys removed (counter)
  - recommendation_cache_store_entries: In-process store size (gauge)
  - recommendation_cache_store_hit_ratio: In-process store hit percentage (gauge)
  - recommendation_cache_expired_swept_total: Entries removed by the sweep (counter)

External Catalog Metrics:
  - external_search_requests_total: Searches by outcome (counter)
  - external_search_duration_seconds: Search latency (histogram)
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Requests by result (counter)
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total (counter)

Storage Metrics:
  - duckdb_query_duration_seconds / duckdb_query_errors_total
  - catalog_books: Local catalog size (gauge)
  - shelf_events_total: Shelf mutations by event and status (counter)

# Engine Observer

Observer implements recommend.Observer so the engine, the result cache and
the invalidator report through the same collectors:

	engine := recommend.NewEngine(cfg, recommend.Dependencies{
	    Observer: metrics.NewObserver(),
	    // ...
	}, logger)

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
