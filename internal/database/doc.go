// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package database provides DuckDB-backed persistence for the book catalog,
// user shelves and user profiles.
//
// # Overview
//
// DB implements the read interfaces the recommendation engine depends on:
//   - recommend.Catalog: predicate-filtered book lookup (Filter, Get)
//   - recommend.ShelfStore: a user's shelf entries
//   - recommend.ProfileStore: free-text interests of a user
//
// It also exposes the write operations used by the shelf service and the
// seeder: UpsertBook, InsertBooks, UpsertShelfEntry, DeleteShelfEntry,
// SetInterests and IncrementAccess.
//
// # Architecture
//
//   - database.go: connection lifecycle and pool configuration
//   - schema.go: table and index creation
//   - filter.go: recommend.Query to SQL translation (squirrel)
//   - books.go: catalog reads and writes
//   - shelves.go: shelf entries
//   - profiles.go: user profiles
//
// # Query Translation
//
// Conditions in Query.Any are OR-ed; ID, language and popularity filters
// are AND-ed. Matching is case-insensitive. Category and theme sets are
// stored as ", "-joined text; exact conditions compare per element. Language
// filters match every known spelling of the normalized code plus region
// suffixes, so "en" covers "en-CA". recommend.SortRandom orders by a hash of
// the id and the query seed, so random pages are reproducible and limited
// in SQL.
//
// # Thread Safety
//
// All methods are safe for concurrent use; database/sql pools connections.
package database
