// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package googlebooks provides a client for the Google Books volumes search API.

Client implements recommend.ExternalSearcher and is the production source of
external (temporary) recommendation candidates.

Resilience Mechanisms:
  - Rate Limiting: client-side token bucket (golang.org/x/time/rate); every
    search waits for a token or for the context to end
  - Circuit Breaker: sony/gobreaker opens after a configurable number of
    consecutive failures and rejects searches until its timeout elapses
  - HTTP 429: reported as ErrRateLimited without retrying; the recommendation
    engine treats external failures as "no external candidates"
  - Context: every search honors cancellation and deadlines

Only volumes with an ID and a title are returned. Volume metadata maps onto
recommend.ExternalVolume:

	id                     -> ExternalID
	volumeInfo.title       -> Title
	volumeInfo.authors     -> Authors
	volumeInfo.categories  -> Categories
	volumeInfo.language    -> Language
	volumeInfo.imageLinks  -> ImageLinks

Circuit breaker state is exported through the circuit_breaker_* metrics with
the name "google-books".
*/
package googlebooks
