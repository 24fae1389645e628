// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package main is the entry point for the Shelfwise server.
//
// Shelfwise serves personalized book recommendations built from a reader's
// shelves, interests and reading history, blended from several independent
// providers and optionally topped up from the Google Books API.
//
// # Startup Order
//
//  1. Configuration: defaults, optional YAML file, then environment (Koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Database: DuckDB catalog, shelves and preferences
//  4. Cache: memory, Badger or Redis result cache
//  5. Engine: providers registered in slot order, external source if enabled
//  6. Event bus: Watermill router carrying shelf events
//  7. HTTP: Chi router with rate limiting and Prometheus metrics
//  8. Supervisor: suture tree owning the bus, catalog stats and HTTP server
//
// # Signals
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops every
// service and reports any that miss the shutdown timeout.
//
// # Configuration
//
// Set CONFIG_PATH to load a YAML file. Environment variables override it,
// for example:
//
//	HTTP_PORT=3857
//	DUCKDB_PATH=/data/shelfwise.duckdb
//	CACHE_BACKEND=badger
//	EXTERNAL_ENABLED=true
//	LOG_LEVEL=info
package main
