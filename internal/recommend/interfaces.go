// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"math/rand"
	"time"
)

// Note: this package does not import other internal packages. Storage,
// cache backends and the external client plug in through the interfaces
// below.

// ShelfStore is the read-only source of a user's shelf entries.
type ShelfStore interface {
	ListShelfEntries(ctx context.Context, userID int64) ([]ShelfEntry, error)
}

// Catalog is a predicate-filterable book lookup.
type Catalog interface {
	// Filter returns books matching q, ordered by q.OrderBy and capped at q.Limit.
	Filter(ctx context.Context, q Query) ([]Book, error)

	// Get returns a single book or ErrNotFound.
	Get(ctx context.Context, id int64) (Book, error)
}

// ProfileStore exposes the free-text interests field of a user profile.
type ProfileStore interface {
	InterestText(ctx context.Context, userID int64) (string, error)
}

// ExternalSearcher queries a remote book catalog.
type ExternalSearcher interface {
	Search(ctx context.Context, term string, maxResults int) ([]ExternalVolume, error)
}

// CacheStore is a key/value store with TTL and prefix deletion.
// Implementations must be safe for concurrent use.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteMatching(ctx context.Context, prefix string) (int, error)
}

// Provider produces candidate books from one signal. Implementations must
// not return books in uc.Exclusions and must be safe for concurrent use.
type Provider interface {
	Name() string
	Recommend(ctx context.Context, uc *UserContext, limit int, rng *rand.Rand) ([]Book, error)
}

// ExternalSource produces temporary candidates from an external catalog.
type ExternalSource interface {
	Candidates(ctx context.Context, uc *UserContext, limit int) ([]Book, error)
}

// Observer receives engine events for metrics.
type Observer interface {
	ObserveRequest(operation string, duration time.Duration, cacheHit, fallback bool)
	ObserveProvider(name string, duration time.Duration, returned int, err error)
	ObserveCache(ns Namespace, hit bool)
	ObserveInvalidation(event Event, removed int)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, time.Duration, bool, bool)  {}
func (nopObserver) ObserveProvider(string, time.Duration, int, error) {}
func (nopObserver) ObserveCache(Namespace, bool)                      {}
func (nopObserver) ObserveInvalidation(Event, int)                    {}
