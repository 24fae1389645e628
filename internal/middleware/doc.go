// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - PrometheusMetrics: request count, latency and in-flight instrumentation,
    labelled by the chi route pattern so that user and book IDs do not
    explode label cardinality
  - Compression: gzip for clients that accept it

Both are plain func(http.Handler) http.Handler values and compose with chi:

	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
*/
package middleware
