// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package shelf

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/eventprocessor"
	"github.com/tomtom215/shelfwise/internal/logging"
)

// ActivityLogHandler returns a bus handler that writes one structured log
// line per shelf event.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func ActivityLogHandler(logger zerolog.Logger) eventprocessor.HandlerFunc {
	logger = logger.With().Str("component", "shelf_activity").Logger()
	return func(ctx context.Context, ev *eventprocessor.ShelfEvent) error {
		e := logger.Info().
			Str("event_id", ev.EventID).
			Str("event", string(ev.Type)).
			Int64("user_id", ev.UserID).
			Int("cache_keys_removed", ev.CacheKeysRemoved).
			Time("at", ev.Timestamp)
		if ev.BookID > 0 {
			e = e.Int64("book_id", ev.BookID)
		}
		if ev.Shelf != "" {
			e = e.Str("shelf", ev.Shelf)
		}
		if id := logging.CorrelationIDFromContext(ctx); id != "" {
			e = e.Str("correlation_id", id)
		}
		e.Msg("shelf activity")
		return nil
	}
}
