// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// CurrentSchemaVersion is the version of the ShelfEvent payload.
const CurrentSchemaVersion = 1

// TopicShelfEvents is the single topic every shelf event is published on.
const TopicShelfEvents = "shelf.events"

// ShelfEvent describes a completed shelf mutation.
type ShelfEvent struct {
	EventID       string          `json:"event_id"`
	SchemaVersion int             `json:"schema_version"`
	Type          recommend.Event `json:"type"`
	UserID        int64           `json:"user_id"`
	BookID        int64           `json:"book_id,omitempty"`
	Shelf         string          `json:"shelf,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`

	// CacheKeysRemoved is the number of cache keys the synchronous
	// invalidation removed.
	CacheKeysRemoved int `json:"cache_keys_removed"`
}

// NewShelfEvent creates an event of type t for userID with a fresh ID.
func NewShelfEvent(t recommend.Event, userID int64) *ShelfEvent {
	return &ShelfEvent{
		EventID:       uuid.New().String(),
		SchemaVersion: CurrentSchemaVersion,
		Type:          t,
		UserID:        userID,
		Timestamp:     time.Now().UTC(),
	}
}

// Validate checks the required fields.
func (e *ShelfEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if _, err := recommend.ParseEvent(string(e.Type)); err != nil {
		return &ValidationError{Field: "type", Message: err.Error()}
	}
	if e.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "must be positive"}
	}
	if e.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Message: "required"}
	}
	return nil
}

// ValidationError reports an invalid event field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event %s: %s", e.Field, e.Message)
}
