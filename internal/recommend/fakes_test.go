// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var errStoreDown = errors.New("store unavailable")

// memCatalog is a Catalog over a fixed book list.
type memCatalog struct {
	books []Book

	// failIDLookups makes queries restricted by IDs fail.
	failIDLookups bool
}

func (c *memCatalog) Filter(ctx context.Context, q Query) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.failIDLookups && len(q.IDs) > 0 {
		return nil, errStoreDown
	}
	var out []Book
	for i := range c.books {
		if q.Matches(&c.books[i]) {
			out = append(out, c.books[i])
		}
	}
	SortBooks(out, q.OrderBy, q.Seed)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (c *memCatalog) Get(_ context.Context, id int64) (Book, error) {
	for i := range c.books {
		if c.books[i].ID == id {
			return c.books[i], nil
		}
	}
	return Book{}, ErrNotFound
}

// memShelves is a ShelfStore keyed by user.
type memShelves struct {
	mu      sync.Mutex
	entries map[int64][]ShelfEntry
	fail    bool
	calls   atomic.Int64
}

func newMemShelves() *memShelves {
	return &memShelves{entries: make(map[int64][]ShelfEntry)}
}

func (s *memShelves) add(userID, bookID int64, shelf ShelfType, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = append(s.entries[userID], ShelfEntry{UserID: userID, BookID: bookID, Shelf: shelf, AddedAt: at})
}

// move puts an existing entry on another shelf, keeping its added time.
func (s *memShelves) move(userID, bookID int64, shelf ShelfType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries[userID] {
		if s.entries[userID][i].BookID == bookID {
			s.entries[userID][i].Shelf = shelf
		}
	}
}

func (s *memShelves) ListShelfEntries(_ context.Context, userID int64) ([]ShelfEntry, error) {
	s.calls.Add(1)
	if s.fail {
		return nil, errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ShelfEntry, len(s.entries[userID]))
	copy(out, s.entries[userID])
	return out, nil
}

// memCache is a CacheStore that ignores TTLs.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, false, errStoreDown
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errStoreDown
	}
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errStoreDown
	}
	delete(c.data, key)
	return nil
}

func (c *memCache) DeleteMatching(_ context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return 0, errStoreDown
	}
	n := 0
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
			n++
		}
	}
	return n, nil
}

func (c *memCache) keys(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

// stubProvider returns a fixed list, optionally failing, panicking or stalling.
type stubProvider struct {
	name   string
	books  []Book
	err    error
	panics bool
	delay  time.Duration
	calls  atomic.Int64
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Recommend(ctx context.Context, _ *UserContext, limit int, _ *rand.Rand) ([]Book, error) {
	p.calls.Add(1)
	if p.panics {
		panic("provider exploded")
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	if len(p.books) > limit {
		return p.books[:limit], nil
	}
	return p.books, nil
}

// stubExternal returns fixed temporary books.
type stubExternal struct {
	books []Book
	err   error
}

func (s *stubExternal) Candidates(_ context.Context, _ *UserContext, limit int) ([]Book, error) {
	if len(s.books) > limit {
		return s.books[:limit], s.err
	}
	return s.books, s.err
}

// countingObserver records observer calls.
type countingObserver struct {
	requests      atomic.Int64
	providerErrs  atomic.Int64
	cacheHits     atomic.Int64
	invalidations atomic.Int64
}

func (o *countingObserver) ObserveRequest(string, time.Duration, bool, bool) { o.requests.Add(1) }

func (o *countingObserver) ObserveProvider(_ string, _ time.Duration, _ int, err error) {
	if err != nil {
		o.providerErrs.Add(1)
	}
}

func (o *countingObserver) ObserveCache(_ Namespace, hit bool) {
	if hit {
		o.cacheHits.Add(1)
	}
}

func (o *countingObserver) ObserveInvalidation(Event, int) { o.invalidations.Add(1) }

var fixedNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// rangeBooks returns books with IDs from..to inclusive.
func rangeBooks(from, to int64, genre string) []Book {
	var out []Book
	for id := from; id <= to; id++ {
		out = append(out, Book{
			ID:        id,
			Title:     genre + " " + string(rune('A'+id%26)),
			Author:    "Author " + string(rune('A'+id%26)),
			Genre:     genre,
			Language:  "en",
			SaleCount: 100 - id,
		})
	}
	return out
}
