// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package metrics

import (
	"time"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Observer reports recommendation engine events to Prometheus.
type Observer struct{}

// NewObserver returns an Observer backed by the package-level collectors.
func NewObserver() *Observer {
	return &Observer{}
}

var _ recommend.Observer = (*Observer)(nil)

// ObserveRequest records a completed engine operation.
func (o *Observer) ObserveRequest(operation string, duration time.Duration, cacheHit, fallback bool) {
	source := "computed"
	switch {
	case fallback:
		source = "fallback"
	case cacheHit:
		source = "cache"
	}
	RecommendationRequests.WithLabelValues(operation, source).Inc()
	RecommendationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveProvider records a single provider run.
func (o *Observer) ObserveProvider(name string, duration time.Duration, returned int, err error) {
	ProviderDuration.WithLabelValues(name).Observe(duration.Seconds())
	if err != nil {
		ProviderErrors.WithLabelValues(name).Inc()
		return
	}
	ProviderBooksReturned.WithLabelValues(name).Add(float64(returned))
}

// ObserveCache records a cache lookup in namespace ns.
func (o *Observer) ObserveCache(ns recommend.Namespace, hit bool) {
	if hit {
		CacheHits.WithLabelValues(string(ns)).Inc()
		return
	}
	CacheMisses.WithLabelValues(string(ns)).Inc()
}

// ObserveInvalidation records an invalidation event and the keys it removed.
func (o *Observer) ObserveInvalidation(event recommend.Event, removed int) {
	CacheInvalidations.WithLabelValues(string(event)).Inc()
	if removed > 0 {
		CacheKeysInvalidated.WithLabelValues(string(event)).Add(float64(removed))
	}
}
