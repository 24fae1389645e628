// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package shelf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/eventprocessor"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// MaxInterestLength caps the free-text interests of a profile.
const MaxInterestLength = 2000

var (
	// ErrInvalidArgument is returned for non-positive IDs or oversized input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyOnShelf is returned by AddBook when the user already shelved the book.
	ErrAlreadyOnShelf = errors.New("book already on a shelf")

	// ErrNotOnShelf is returned when a mutation needs an existing shelf entry.
	ErrNotOnShelf = errors.New("book not on any shelf")
)

// Store persists books, shelf entries and profiles. Missing shelf entries are
// reported as database.ErrShelfEntryNotFound; *database.DB implements it.
type Store interface {
	Get(ctx context.Context, id int64) (recommend.Book, error)
	GetShelfEntry(ctx context.Context, userID, bookID int64) (recommend.ShelfEntry, error)
	UpsertShelfEntry(ctx context.Context, e recommend.ShelfEntry) error
	DeleteShelfEntry(ctx context.Context, userID, bookID int64) error
	SetInterests(ctx context.Context, userID int64, interests string) error
	IncrementAccess(ctx context.Context, bookID int64) error
}

var _ Store = (*database.DB)(nil)

// Publisher publishes completed mutations.
type Publisher interface {
	Publish(ctx context.Context, event *eventprocessor.ShelfEvent) error
}

// Service applies shelf mutations and keeps the recommendation cache
// consistent with them.
type Service struct {
	store       Store
	invalidator *recommend.Invalidator
	publisher   Publisher
	logger      zerolog.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for new shelf entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service. A nil publisher disables event publishing.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(store Store, invalidator *recommend.Invalidator, publisher Publisher, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		invalidator: invalidator,
		publisher:   publisher,
		logger:      logger.With().Str("component", "shelf_service").Logger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBook places a catalog book on one of the user's shelves.
func (s *Service) AddBook(ctx context.Context, userID, bookID int64, shelf recommend.ShelfType) (recommend.ShelfEntry, error) {
	entry, err := s.addBook(ctx, userID, bookID, shelf)
	metrics.RecordShelfEvent(string(recommend.EventBookAdded), err)
	return entry, err
}

func (s *Service) addBook(ctx context.Context, userID, bookID int64, shelf recommend.ShelfType) (recommend.ShelfEntry, error) {
	if err := checkIDs(userID, bookID); err != nil {
		return recommend.ShelfEntry{}, err
	}
	if _, err := recommend.ParseShelfType(string(shelf)); err != nil {
		return recommend.ShelfEntry{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if _, err := s.store.Get(ctx, bookID); err != nil {
		return recommend.ShelfEntry{}, fmt.Errorf("add book %d: %w", bookID, err)
	}

	if existing, err := s.store.GetShelfEntry(ctx, userID, bookID); err == nil {
		return existing, fmt.Errorf("%w: %s", ErrAlreadyOnShelf, existing.Shelf)
	} else if !isNotOnShelf(err) {
		return recommend.ShelfEntry{}, fmt.Errorf("add book %d: %w", bookID, err)
	}

	entry := recommend.ShelfEntry{UserID: userID, BookID: bookID, Shelf: shelf, AddedAt: s.now().UTC()}
	if err := s.store.UpsertShelfEntry(ctx, entry); err != nil {
		return recommend.ShelfEntry{}, fmt.Errorf("add book %d: %w", bookID, err)
	}

	events := []recommend.Event{recommend.EventBookAdded}
	if shelf == recommend.ShelfRead {
		events = append(events, recommend.EventReadingCompleted)
	}
	s.commit(ctx, &entry, events...)
	return entry, nil
}

// MoveBook moves a shelved book to another shelf. Moving to the current
// shelf is a no-op.
func (s *Service) MoveBook(ctx context.Context, userID, bookID int64, shelf recommend.ShelfType) (recommend.ShelfEntry, error) {
	entry, err := s.moveBook(ctx, userID, bookID, shelf)
	metrics.RecordShelfEvent(string(recommend.EventShelfChanged), err)
	return entry, err
}

func (s *Service) moveBook(ctx context.Context, userID, bookID int64, shelf recommend.ShelfType) (recommend.ShelfEntry, error) {
	if err := checkIDs(userID, bookID); err != nil {
		return recommend.ShelfEntry{}, err
	}
	if _, err := recommend.ParseShelfType(string(shelf)); err != nil {
		return recommend.ShelfEntry{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	current, err := s.store.GetShelfEntry(ctx, userID, bookID)
	if err != nil {
		if isNotOnShelf(err) {
			return recommend.ShelfEntry{}, ErrNotOnShelf
		}
		return recommend.ShelfEntry{}, fmt.Errorf("move book %d: %w", bookID, err)
	}
	if current.Shelf == shelf {
		return current, nil
	}

	entry := recommend.ShelfEntry{UserID: userID, BookID: bookID, Shelf: shelf, AddedAt: s.now().UTC()}
	if err := s.store.UpsertShelfEntry(ctx, entry); err != nil {
		return recommend.ShelfEntry{}, fmt.Errorf("move book %d: %w", bookID, err)
	}

	events := []recommend.Event{recommend.EventShelfChanged}
	if shelf == recommend.ShelfRead {
		events = append(events, recommend.EventReadingCompleted)
	}
	s.commit(ctx, &entry, events...)
	return entry, nil
}

// CompleteReading marks a book as read, shelving it first if needed.
func (s *Service) CompleteReading(ctx context.Context, userID, bookID int64) (recommend.ShelfEntry, error) {
	entry, err := s.completeReading(ctx, userID, bookID)
	metrics.RecordShelfEvent(string(recommend.EventReadingCompleted), err)
	return entry, err
}

func (s *Service) completeReading(ctx context.Context, userID, bookID int64) (recommend.ShelfEntry, error) {
	if err := checkIDs(userID, bookID); err != nil {
		return recommend.ShelfEntry{}, err
	}

	current, err := s.store.GetShelfEntry(ctx, userID, bookID)
	switch {
	case err == nil && current.Shelf == recommend.ShelfRead:
		return current, nil
	case err != nil && !isNotOnShelf(err):
		return recommend.ShelfEntry{}, fmt.Errorf("complete reading %d: %w", bookID, err)
	case err != nil:
		if _, err := s.store.Get(ctx, bookID); err != nil {
			return recommend.ShelfEntry{}, fmt.Errorf("complete reading %d: %w", bookID, err)
		}
	}

	entry := recommend.ShelfEntry{UserID: userID, BookID: bookID, Shelf: recommend.ShelfRead, AddedAt: s.now().UTC()}
	if err := s.store.UpsertShelfEntry(ctx, entry); err != nil {
		return recommend.ShelfEntry{}, fmt.Errorf("complete reading %d: %w", bookID, err)
	}

	s.commit(ctx, &entry, recommend.EventShelfChanged, recommend.EventReadingCompleted)
	return entry, nil
}

// RemoveBook takes a book off the user's shelves.
func (s *Service) RemoveBook(ctx context.Context, userID, bookID int64) error {
	err := s.removeBook(ctx, userID, bookID)
	metrics.RecordShelfEvent(string(recommend.EventBookRemoved), err)
	return err
}

func (s *Service) removeBook(ctx context.Context, userID, bookID int64) error {
	if err := checkIDs(userID, bookID); err != nil {
		return err
	}
	if err := s.store.DeleteShelfEntry(ctx, userID, bookID); err != nil {
		if isNotOnShelf(err) {
			return ErrNotOnShelf
		}
		return fmt.Errorf("remove book %d: %w", bookID, err)
	}

	s.commit(ctx, &recommend.ShelfEntry{UserID: userID, BookID: bookID}, recommend.EventBookRemoved)
	return nil
}

// UpdatePreferences replaces the user's free-text interests.
func (s *Service) UpdatePreferences(ctx context.Context, userID int64, interests string) error {
	err := s.updatePreferences(ctx, userID, interests)
	metrics.RecordShelfEvent(string(recommend.EventPreferenceUpdated), err)
	return err
}

func (s *Service) updatePreferences(ctx context.Context, userID int64, interests string) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id must be positive", ErrInvalidArgument)
	}
	interests = strings.TrimSpace(interests)
	if len(interests) > MaxInterestLength {
		return fmt.Errorf("%w: interests longer than %d bytes", ErrInvalidArgument, MaxInterestLength)
	}
	if err := s.store.SetInterests(ctx, userID, interests); err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}

	s.commit(ctx, &recommend.ShelfEntry{UserID: userID}, recommend.EventPreferenceUpdated)
	return nil
}

// RecordBehavior records that the user opened a book.
func (s *Service) RecordBehavior(ctx context.Context, userID, bookID int64) error {
	err := s.recordBehavior(ctx, userID, bookID)
	metrics.RecordShelfEvent(string(recommend.EventBehavior), err)
	return err
}

func (s *Service) recordBehavior(ctx context.Context, userID, bookID int64) error {
	if err := checkIDs(userID, bookID); err != nil {
		return err
	}
	if err := s.store.IncrementAccess(ctx, bookID); err != nil {
		return fmt.Errorf("record behavior %d: %w", bookID, err)
	}

	s.commit(ctx, &recommend.ShelfEntry{UserID: userID, BookID: bookID}, recommend.EventBehavior)
	return nil
}

// commit invalidates the user's cache for events, then publishes one bus
// event per invalidation event.
func (s *Service) commit(ctx context.Context, entry *recommend.ShelfEntry, events ...recommend.Event) {
	removed := s.invalidator.Invalidate(ctx, entry.UserID, events...)

	log := logging.Ctx(ctx)
	log.Debug().
		Int64("user_id", entry.UserID).
		Int64("book_id", entry.BookID).
		Str("shelf", string(entry.Shelf)).
		Int("cache_keys_removed", removed).
		Msg("shelf mutation committed")

	if s.publisher == nil {
		return
	}
	for _, ev := range events {
		event := eventprocessor.NewShelfEvent(ev, entry.UserID)
		event.BookID = entry.BookID
		event.Shelf = string(entry.Shelf)
		event.Timestamp = s.now().UTC()
		event.CacheKeysRemoved = removed
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("event", string(ev)).Int64("user_id", entry.UserID).Msg("failed to publish shelf event")
		}
	}
}

func isNotOnShelf(err error) bool {
	return errors.Is(err, database.ErrShelfEntryNotFound)
}

func checkIDs(userID, bookID int64) error {
	if userID <= 0 || bookID <= 0 {
		return fmt.Errorf("%w: user and book ids must be positive", ErrInvalidArgument)
	}
	return nil
}
