// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package shelf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/cache"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/eventprocessor"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu        sync.Mutex
	books     map[int64]recommend.Book
	entries   map[[2]int64]recommend.ShelfEntry
	interests map[int64]string
	failWrite error
}

func newFakeStore(bookIDs ...int64) *fakeStore {
	s := &fakeStore{
		books:     make(map[int64]recommend.Book),
		entries:   make(map[[2]int64]recommend.ShelfEntry),
		interests: make(map[int64]string),
	}
	for _, id := range bookIDs {
		s.books[id] = recommend.Book{ID: id, Title: fmt.Sprintf("Book %d", id)}
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, id int64) (recommend.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return recommend.Book{}, fmt.Errorf("book %d: %w", id, recommend.ErrNotFound)
	}
	return b, nil
}

func (s *fakeStore) GetShelfEntry(_ context.Context, userID, bookID int64) (recommend.ShelfEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[[2]int64{userID, bookID}]
	if !ok {
		return recommend.ShelfEntry{}, database.ErrShelfEntryNotFound
	}
	return e, nil
}

func (s *fakeStore) UpsertShelfEntry(_ context.Context, e recommend.ShelfEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return s.failWrite
	}
	s.entries[[2]int64{e.UserID, e.BookID}] = e
	return nil
}

func (s *fakeStore) DeleteShelfEntry(_ context.Context, userID, bookID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{userID, bookID}
	if _, ok := s.entries[key]; !ok {
		return database.ErrShelfEntryNotFound
	}
	delete(s.entries, key)
	return nil
}

func (s *fakeStore) SetInterests(_ context.Context, userID int64, interests string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interests[userID] = interests
	return nil
}

func (s *fakeStore) IncrementAccess(_ context.Context, bookID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[bookID]
	if !ok {
		return fmt.Errorf("book %d: %w", bookID, recommend.ErrNotFound)
	}
	b.AccessCount++
	s.books[bookID] = b
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventprocessor.ShelfEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev *eventprocessor.ShelfEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []recommend.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recommend.Event, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	svc   *Service
	store *fakeStore
	cache *cache.MemoryStore
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore(1, 2, 3)
	mem := cache.NewMemoryStore(100, time.Hour)
	t.Cleanup(func() { _ = mem.Close() })
	pub := &recordingPublisher{}
	inv := recommend.NewInvalidator(mem, zerolog.Nop(), nil)
	svc := NewService(store, inv, pub, zerolog.Nop(), WithClock(func() time.Time { return testNow }))
	return &fixture{svc: svc, store: store, cache: mem, pub: pub}
}

// seedCache writes one key per namespace for userID.
func (f *fixture) seedCache(t *testing.T, userID int64) {
	t.Helper()
	for _, ns := range []recommend.Namespace{
		recommend.NamespaceRecommendations,
		recommend.NamespaceShelf,
		recommend.NamespaceLanguageProfile,
		recommend.NamespaceBehavior,
	} {
		if err := f.cache.Set(context.Background(), recommend.UserPrefix(ns, userID)+"k", []byte("x"), time.Hour); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
}

// cached reports which namespaces still hold a key for userID.
func (f *fixture) cached(t *testing.T, userID int64) map[recommend.Namespace]bool {
	t.Helper()
	out := make(map[recommend.Namespace]bool)
	for _, ns := range []recommend.Namespace{
		recommend.NamespaceRecommendations,
		recommend.NamespaceShelf,
		recommend.NamespaceLanguageProfile,
		recommend.NamespaceBehavior,
	} {
		_, found, err := f.cache.Get(context.Background(), recommend.UserPrefix(ns, userID)+"k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		out[ns] = found
	}
	return out
}

func TestService_MutationsInvalidateCache(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		prepare    func(t *testing.T, f *fixture)
		run        func(f *fixture) error
		wantEvents []recommend.Event
		wantKept   []recommend.Namespace
	}{
		{
			name: "add to reading shelf",
			run: func(f *fixture) error {
				_, err := f.svc.AddBook(context.Background(), 7, 1, recommend.ShelfReading)
				return err
			},
			wantEvents: []recommend.Event{recommend.EventBookAdded},
			wantKept:   []recommend.Namespace{recommend.NamespaceLanguageProfile, recommend.NamespaceBehavior},
		},
		{
			name: "add to read shelf also completes reading",
			run: func(f *fixture) error {
				_, err := f.svc.AddBook(context.Background(), 7, 1, recommend.ShelfRead)
				return err
			},
			wantEvents: []recommend.Event{recommend.EventBookAdded, recommend.EventReadingCompleted},
		},
		{
			name: "move between shelves",
			prepare: func(t *testing.T, f *fixture) {
				f.store.entries[[2]int64{7, 2}] = recommend.ShelfEntry{UserID: 7, BookID: 2, Shelf: recommend.ShelfWantToRead}
			},
			run: func(f *fixture) error {
				_, err := f.svc.MoveBook(context.Background(), 7, 2, recommend.ShelfFavorite)
				return err
			},
			wantEvents: []recommend.Event{recommend.EventShelfChanged},
			wantKept:   []recommend.Namespace{recommend.NamespaceLanguageProfile, recommend.NamespaceBehavior},
		},
		{
			name: "complete reading",
			prepare: func(t *testing.T, f *fixture) {
				f.store.entries[[2]int64{7, 2}] = recommend.ShelfEntry{UserID: 7, BookID: 2, Shelf: recommend.ShelfReading}
			},
			run: func(f *fixture) error {
				_, err := f.svc.CompleteReading(context.Background(), 7, 2)
				return err
			},
			wantEvents: []recommend.Event{recommend.EventShelfChanged, recommend.EventReadingCompleted},
		},
		{
			name: "remove",
			prepare: func(t *testing.T, f *fixture) {
				f.store.entries[[2]int64{7, 3}] = recommend.ShelfEntry{UserID: 7, BookID: 3, Shelf: recommend.ShelfAbandoned}
			},
			run: func(f *fixture) error {
				return f.svc.RemoveBook(context.Background(), 7, 3)
			},
			wantEvents: []recommend.Event{recommend.EventBookRemoved},
			wantKept:   []recommend.Namespace{recommend.NamespaceLanguageProfile, recommend.NamespaceBehavior},
		},
		{
			name: "update preferences",
			run: func(f *fixture) error {
				return f.svc.UpdatePreferences(context.Background(), 7, "  fantasia e poesia ")
			},
			wantEvents: []recommend.Event{recommend.EventPreferenceUpdated},
			wantKept:   []recommend.Namespace{recommend.NamespaceShelf, recommend.NamespaceLanguageProfile},
		},
		{
			name: "record behavior",
			run: func(f *fixture) error {
				return f.svc.RecordBehavior(context.Background(), 7, 1)
			},
			wantEvents: []recommend.Event{recommend.EventBehavior},
			wantKept: []recommend.Namespace{
				recommend.NamespaceRecommendations, recommend.NamespaceShelf, recommend.NamespaceLanguageProfile,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			if tt.prepare != nil {
				tt.prepare(t, f)
			}
			f.seedCache(t, 7)
			f.seedCache(t, 8)

			if err := tt.run(f); err != nil {
				t.Fatalf("mutation error = %v", err)
			}

			kept := make(map[recommend.Namespace]bool)
			for _, ns := range tt.wantKept {
				kept[ns] = true
			}
			for ns, found := range f.cached(t, 7) {
				if found != kept[ns] {
					t.Errorf("namespace %s cached = %v, want %v", ns, found, kept[ns])
				}
			}
			for ns, found := range f.cached(t, 8) {
				if !found {
					t.Errorf("other user's namespace %s was invalidated", ns)
				}
			}

			got := f.pub.types()
			if fmt.Sprint(got) != fmt.Sprint(tt.wantEvents) {
				t.Errorf("published = %v, want %v", got, tt.wantEvents)
			}
		})
	}
}

func TestService_AddBook(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.svc.AddBook(ctx, 7, 1, recommend.ShelfFavorite)
	if err != nil {
		t.Fatalf("AddBook() error = %v", err)
	}
	if entry.Shelf != recommend.ShelfFavorite || !entry.AddedAt.Equal(testNow) {
		t.Errorf("entry = %+v", entry)
	}

	if _, err := f.svc.AddBook(ctx, 7, 1, recommend.ShelfRead); !errors.Is(err, ErrAlreadyOnShelf) {
		t.Errorf("second AddBook() error = %v, want ErrAlreadyOnShelf", err)
	}
	if _, err := f.svc.AddBook(ctx, 7, 99, recommend.ShelfRead); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("AddBook(unknown book) error = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.AddBook(ctx, 7, 2, "wishlist"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddBook(bad shelf) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := f.svc.AddBook(ctx, 0, 2, recommend.ShelfRead); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddBook(user 0) error = %v, want ErrInvalidArgument", err)
	}

	if got := len(f.pub.types()); got != 1 {
		t.Errorf("published %d events, want 1 (failures must not publish)", got)
	}
}

func TestService_MoveBook(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.MoveBook(ctx, 7, 1, recommend.ShelfRead); !errors.Is(err, ErrNotOnShelf) {
		t.Fatalf("MoveBook(unshelved) error = %v, want ErrNotOnShelf", err)
	}

	if _, err := f.svc.AddBook(ctx, 7, 1, recommend.ShelfReading); err != nil {
		t.Fatalf("AddBook() error = %v", err)
	}
	before := len(f.pub.types())

	entry, err := f.svc.MoveBook(ctx, 7, 1, recommend.ShelfReading)
	if err != nil {
		t.Fatalf("MoveBook(same shelf) error = %v", err)
	}
	if entry.Shelf != recommend.ShelfReading {
		t.Errorf("Shelf = %s, want reading", entry.Shelf)
	}
	if got := len(f.pub.types()); got != before {
		t.Errorf("no-op move published %d events", got-before)
	}

	entry, err = f.svc.MoveBook(ctx, 7, 1, recommend.ShelfRead)
	if err != nil {
		t.Fatalf("MoveBook() error = %v", err)
	}
	if entry.Shelf != recommend.ShelfRead {
		t.Errorf("Shelf = %s, want read", entry.Shelf)
	}
	stored, _ := f.store.GetShelfEntry(ctx, 7, 1)
	if stored.Shelf != recommend.ShelfRead {
		t.Errorf("stored shelf = %s, want read", stored.Shelf)
	}
}

func TestService_CompleteReading(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.svc.CompleteReading(ctx, 7, 3)
	if err != nil {
		t.Fatalf("CompleteReading(unshelved) error = %v", err)
	}
	if entry.Shelf != recommend.ShelfRead {
		t.Errorf("Shelf = %s, want read", entry.Shelf)
	}

	before := len(f.pub.types())
	if _, err := f.svc.CompleteReading(ctx, 7, 3); err != nil {
		t.Fatalf("CompleteReading(already read) error = %v", err)
	}
	if got := len(f.pub.types()); got != before {
		t.Errorf("repeat completion published %d events", got-before)
	}

	if _, err := f.svc.CompleteReading(ctx, 7, 99); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("CompleteReading(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestService_RemoveBook(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if err := f.svc.RemoveBook(context.Background(), 7, 1); !errors.Is(err, ErrNotOnShelf) {
		t.Errorf("RemoveBook(unshelved) error = %v, want ErrNotOnShelf", err)
	}
}

func TestService_UpdatePreferences(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.UpdatePreferences(ctx, 7, "  romance histórico "); err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if got := f.store.interests[7]; got != "romance histórico" {
		t.Errorf("interests = %q, want trimmed text", got)
	}

	long := strings.Repeat("a", MaxInterestLength+1)
	if err := f.svc.UpdatePreferences(ctx, 7, long); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("UpdatePreferences(long) error = %v, want ErrInvalidArgument", err)
	}
}

func TestService_RecordBehavior(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.RecordBehavior(ctx, 7, 2); err != nil {
		t.Fatalf("RecordBehavior() error = %v", err)
	}
	if got := f.store.books[2].AccessCount; got != 1 {
		t.Errorf("AccessCount = %d, want 1", got)
	}
	if err := f.svc.RecordBehavior(ctx, 7, 99); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("RecordBehavior(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestService_StoreFailureSkipsInvalidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.failWrite = errors.New("disk full")
	f.seedCache(t, 7)

	if _, err := f.svc.AddBook(context.Background(), 7, 1, recommend.ShelfRead); err == nil {
		t.Fatal("AddBook() expected error")
	}
	for ns, found := range f.cached(t, 7) {
		if !found {
			t.Errorf("namespace %s invalidated despite failed write", ns)
		}
	}
	if got := len(f.pub.types()); got != 0 {
		t.Errorf("published %d events after failed write", got)
	}
}

func TestService_PublishFailureIsNotReturned(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.pub.err = errors.New("bus closed")

	if _, err := f.svc.AddBook(context.Background(), 7, 1, recommend.ShelfReading); err != nil {
		t.Errorf("AddBook() error = %v, want nil when publishing fails", err)
	}
}

func TestService_NilPublisher(t *testing.T) {
	t.Parallel()

	store := newFakeStore(1)
	svc := NewService(store, recommend.NewInvalidator(nil, zerolog.Nop(), nil), nil, zerolog.Nop())
	if _, err := svc.AddBook(context.Background(), 7, 1, recommend.ShelfReading); err != nil {
		t.Errorf("AddBook() error = %v", err)
	}
}

func TestActivityLogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := ActivityLogHandler(zerolog.New(&buf))

	ev := eventprocessor.NewShelfEvent(recommend.EventBookAdded, 7)
	ev.BookID = 1
	ev.Shelf = "favorite"
	ctx := logging.ContextWithCorrelationID(context.Background(), "abc123")

	if err := handler(ctx, ev); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"event":"book_added"`, `"book_id":1`, `"shelf":"favorite"`, `"correlation_id":"abc123"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s missing %s", out, want)
		}
	}
}
