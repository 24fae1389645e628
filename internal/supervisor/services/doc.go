// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package services provides suture.Service wrappers for components that do
// not implement the Serve(ctx) lifecycle themselves: the HTTP server, the
// periodic catalog statistics refresh and the memory cache expiry sweep.
package services
