// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// Namespace partitions cache keys by record kind.
type Namespace string

// Cache namespaces.
const (
	NamespaceRecommendations Namespace = "recommendations"
	NamespaceShelf           Namespace = "shelf"
	NamespaceLanguageProfile Namespace = "language_profile"
	NamespaceBehavior        Namespace = "behavior"
)

// UserPrefix returns the key prefix covering every record of a user in ns.
func UserPrefix(ns Namespace, userID int64) string {
	return string(ns) + ":" + strconv.FormatInt(userID, 10) + ":"
}

// cacheKey builds "<namespace>:<user>:<suffix>".
func cacheKey(ns Namespace, userID int64, suffix string) string {
	return UserPrefix(ns, userID) + suffix
}

// Event is a shelf or profile mutation that invalidates cached records.
type Event string

// Invalidation events.
const (
	EventBookAdded         Event = "book_added"
	EventShelfChanged      Event = "shelf_changed"
	EventBookRemoved       Event = "book_removed"
	EventReadingCompleted  Event = "reading_completed"
	EventPreferenceUpdated Event = "preference_updated"
	EventBehavior          Event = "behavior"
)

// AllEvents lists every invalidation event.
var AllEvents = []Event{
	EventBookAdded, EventShelfChanged, EventBookRemoved,
	EventReadingCompleted, EventPreferenceUpdated, EventBehavior,
}

var eventNamespaces = map[Event][]Namespace{
	EventBookAdded:         {NamespaceRecommendations, NamespaceShelf},
	EventShelfChanged:      {NamespaceRecommendations, NamespaceShelf},
	EventBookRemoved:       {NamespaceRecommendations, NamespaceShelf},
	EventReadingCompleted:  {NamespaceRecommendations, NamespaceLanguageProfile, NamespaceBehavior},
	EventPreferenceUpdated: {NamespaceRecommendations, NamespaceBehavior},
	EventBehavior:          {NamespaceBehavior},
}

// Namespaces returns the namespaces cleared by the event.
func (e Event) Namespaces() []Namespace {
	ns := eventNamespaces[e]
	out := make([]Namespace, len(ns))
	copy(out, ns)
	return out
}

// ParseEvent converts a string to a known Event.
func ParseEvent(s string) (Event, error) {
	e := Event(s)
	if _, ok := eventNamespaces[e]; !ok {
		return "", fmt.Errorf("unknown invalidation event %q", s)
	}
	return e, nil
}

// Invalidator clears a user's cached records when shelf events fire.
// Store failures are logged and never returned.
type Invalidator struct {
	store    CacheStore
	logger   zerolog.Logger
	observer Observer
}

// NewInvalidator creates an invalidator. A nil observer is allowed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewInvalidator(store CacheStore, logger zerolog.Logger, observer Observer) *Invalidator {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Invalidator{
		store:    store,
		logger:   logger.With().Str("component", "cache_invalidator").Logger(),
		observer: observer,
	}
}

// Invalidate clears every namespace mapped to events for userID and
// returns the number of keys removed. Namespaces shared by several events
// are cleared once.
func (i *Invalidator) Invalidate(ctx context.Context, userID int64, events ...Event) int {
	if i == nil || i.store == nil {
		return 0
	}

	cleared := make(map[Namespace]struct{})
	total := 0
	for _, ev := range events {
		removed := 0
		for _, ns := range eventNamespaces[ev] {
			if _, done := cleared[ns]; done {
				continue
			}
			cleared[ns] = struct{}{}

			n, err := i.store.DeleteMatching(ctx, UserPrefix(ns, userID))
			if err != nil {
				i.logger.Warn().
					Err(err).
					Int64("user_id", userID).
					Str("namespace", string(ns)).
					Str("event", string(ev)).
					Msg("cache invalidation failed")
				continue
			}
			removed += n
		}
		i.observer.ObserveInvalidation(ev, removed)
		total += removed
	}

	i.logger.Debug().
		Int64("user_id", userID).
		Int("removed", total).
		Msg("cache invalidated")
	return total
}
