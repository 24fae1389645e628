// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package cache provides the key-value stores behind the recommendation cache.

Every backend implements Store, which satisfies recommend.CacheStore:
opaque byte values, per-entry TTL and prefix deletion used for per-user
invalidation.

# Backends

  - memory: in-process LRU with per-entry TTL (default, single instance)
  - badger: persistent BadgerDB store using native entry TTL
  - redis: shared store for multi-instance deployments (SET EX, SCAN+DEL)

# Usage

	store, err := cache.Open(ctx, cache.Config{Backend: cache.BackendMemory, Capacity: 10000})
	if err != nil {
	    return err
	}
	defer store.Close()

	engine, err := recommend.NewEngine(cfg, recommend.Dependencies{Cache: store, ...}, logger)

# Thread Safety

All backends are safe for concurrent use. Concurrent writers to the same key
resolve as last write wins.

# Key Layout

Keys are built by the recommend package as namespace:user_id:digest, so
DeleteMatching("recommendations:42:") drops one user's sets without touching
other users.
*/
package cache
