// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Store is a cache backend. It satisfies recommend.CacheStore and owns its
// underlying resources until Close.
type Store interface {
	recommend.CacheStore

	// Close releases the backend's resources.
	Close() error
}

// Backend selects the store implementation.
type Backend string

const (
	// BackendMemory is the in-process LRU store (default).
	BackendMemory Backend = "memory"

	// BackendBadger persists entries in BadgerDB.
	BackendBadger Backend = "badger"

	// BackendRedis shares entries across instances through Redis.
	BackendRedis Backend = "redis"
)

// Config holds configuration for opening a store.
type Config struct {
	// Backend specifies the store implementation
	Backend Backend

	// DefaultTTL applies to memory entries set without a TTL
	DefaultTTL time.Duration

	// Capacity is the maximum number of entries (memory only)
	Capacity int

	// BadgerPath is the database directory; empty opens in-memory
	BadgerPath string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
}

// Stats holds memory store statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// HitRate returns the hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Open creates the store selected by cfg.Backend.
//
//nolint:gocritic // hugeParam: config passed by value for immutability
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(cfg.Capacity, cfg.DefaultTTL), nil
	case BackendBadger:
		return OpenBadgerStore(cfg.BadgerPath)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache backend requires an address")
		}
		return OpenRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// Compile-time interface checks.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*BadgerStore)(nil)
	_ Store = (*RedisStore)(nil)
)
