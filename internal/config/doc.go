// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package config provides configuration management for Shelfwise.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/shelfwise/config.yaml)
 3. Environment variables mapped through an explicit table

# Sections

  - server: listen address, HTTP timeouts, rate limiting
  - logging: level, format, caller
  - database: DuckDB path, threads, memory limit
  - cache: store backend (memory, badger, redis) and its settings
  - external: external book search client (base URL, key, rate, breaker)
  - recommend: provider weights, behavior and language thresholds, limits,
    result cache policy and seed

# Environment Variables

Only mapped variables are read; anything else in the environment is
ignored. Examples:

	HTTP_PORT=8080                  -> server.port
	DUCKDB_PATH=/data/shelf.duckdb  -> database.path
	CACHE_BACKEND=redis             -> cache.backend
	REDIS_ADDR=redis:6379           -> cache.redis_addr
	EXTERNAL_API_KEY=...            -> external.api_key
	RECOMMEND_WEIGHT_HISTORY=0.4    -> recommend.weights.history

# Validation

Load validates the merged configuration and fails fast on out-of-range
values, so services never start with a half-valid setup.
*/
package config
