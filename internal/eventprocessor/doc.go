// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package eventprocessor distributes shelf mutation events in-process over a
Watermill GoChannel pub/sub.

# Overview

Cache invalidation happens synchronously inside the mutation that caused it
(see internal/shelf). The bus carries the same events afterwards so that
secondary consumers (activity logging, metrics, future projections) can react
without slowing the request path.

	Service.AddBook -> DB write -> Invalidator.Invalidate -> Bus.Publish
	                                                           |
	                                              GoChannel "shelf.events"
	                                                           |
	                                   Router (Recoverer, Retry) -> handlers

# Router

Each Serve call builds a fresh Watermill router from the registered handlers,
so a supervisor may restart the bus after a failure. Handlers must be
registered before Serve. Router middleware, outer to inner:

  - Recoverer: handler panics become errors
  - Retry: exponential backoff for transient handler failures

Messages that still fail after all retries are logged and acknowledged; there
is no poison queue.

# Event Format

Events are JSON-encoded ShelfEvent payloads. Each message carries the event
type and the correlation ID of the originating request in its metadata.
*/
package eventprocessor
