// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package recommend implements the multi-signal book recommendation engine.
//
// # Architecture
//
// The engine combines independent signal providers, each turning a user's
// shelf history into candidate books along one axis:
//
//   - History: weighted authors/genres/categories with recency decay
//   - Category: preference and related-term scoring with popularity
//   - Similarity: books sharing genre/author/category with favorites
//   - Temporal: seasonal and rolling-window reading patterns
//   - Language: language preference and national-author affinity
//
// External candidates from a remote catalog are blended in first. Each
// local provider then receives a slot of size ceil(limit × weight), where
// the weight vector adapts to the user's reading behavior (eclectic, loyal,
// seasonal) and language profile.
//
// # Design Principles
//
//   - Exclusion: no returned book is already on one of the user's shelves
//   - Deterministic: randomness comes from seeded per-request sources
//   - Fail open: provider, external and cache failures degrade to smaller
//     or less-personalized results, never to an error
//   - Observable: providers, cache lookups and invalidations report to an
//     Observer (Prometheus in production)
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, recommend.Dependencies{
//	    Shelves: store,
//	    Catalog: store,
//	    Cache:   cacheStore,
//	}, logger)
//
//	engine.RegisterProvider(providers.NewHistory(store))
//	engine.RegisterProvider(providers.NewCategory(store))
//
//	resp, err := engine.Recommend(ctx, recommend.Request{UserID: 7, Limit: 20})
//
// # Cache Layer
//
// Computed sets are stored under namespaced keys
// ("recommendations:<user>:<fingerprint>"). A record is only served while
// its schema version matches, it is inside the freshness window and the
// user's shelf size has not drifted past the context tolerance. The
// Invalidator clears whole namespaces for a user when one of the six
// shelf events fires.
//
// # Thread Safety
//
// The Engine is safe for concurrent use. Providers are stateless and receive
// a private random source per request.
package recommend
