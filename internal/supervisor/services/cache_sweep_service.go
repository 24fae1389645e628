// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/cache"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

const defaultSweepInterval = time.Minute

// ExpiringCache drops expired entries on demand; *cache.MemoryStore implements it.
type ExpiringCache interface {
	CleanupExpired() int
	Stats() cache.Stats
}

// CacheSweepService periodically removes expired entries from the
// in-process cache store and publishes its size and hit ratio. Badger and
// Redis expire entries themselves and need no sweep.
type CacheSweepService struct {
	store    ExpiringCache
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheSweepService creates the service. A non-positive interval
// defaults to one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheSweepService(store ExpiringCache, interval time.Duration, logger zerolog.Logger) *CacheSweepService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &CacheSweepService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "cache-sweep").Logger(),
		name:     "cache-sweep",
	}
}

// Serve implements suture.Service.
func (s *CacheSweepService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *CacheSweepService) sweep() {
	removed := s.store.CleanupExpired()
	stats := s.store.Stats()
	metrics.RecordCacheSweep(removed, stats.Size, stats.HitRate())
	s.logger.Debug().
		Int("removed", removed).
		Int("entries", stats.Size).
		Int64("evictions", stats.Evictions).
		Float64("hit_rate", stats.HitRate()).
		Msg("cache sweep complete")
}

// String implements fmt.Stringer.
func (s *CacheSweepService) String() string {
	return s.name
}
