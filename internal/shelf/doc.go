// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package shelf implements shelf and preference mutations.

Every mutation follows the same sequence:

 1. persist the change through Store
 2. invalidate the user's cached records for the matching events, synchronously
 3. publish a ShelfEvent on the event bus (failures are logged, not returned)

so the next recommendation request after a mutation never reads a cache
record computed for the previous shelf.

Operations and the invalidation events they fire:

	AddBook            book_added (+ reading_completed on the "read" shelf)
	MoveBook           shelf_changed (+ reading_completed when moved to "read")
	CompleteReading    shelf_changed, reading_completed
	RemoveBook         book_removed
	UpdatePreferences  preference_updated
	RecordBehavior     behavior
*/
package shelf
