// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package catalog

import (
	"context"
	"sync"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// MemoryCatalog is an in-memory recommend.Catalog. Books keep insertion
// order, which is the result order of unordered queries.
// It is safe for concurrent use.
type MemoryCatalog struct {
	mu    sync.RWMutex
	books []recommend.Book
	index map[int64]int
}

// NewMemoryCatalog creates a catalog holding books.
func NewMemoryCatalog(books ...recommend.Book) *MemoryCatalog {
	c := &MemoryCatalog{index: make(map[int64]int, len(books))}
	for i := range books {
		c.Put(books[i])
	}
	return c
}

// Put inserts or replaces a book by ID after normalizing it.
//
//nolint:gocritic // hugeParam: book passed by value, stored as a copy
func (c *MemoryCatalog) Put(b recommend.Book) {
	NormalizeBook(&b)
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[b.ID]; ok {
		c.books[i] = b
		return
	}
	c.index[b.ID] = len(c.books)
	c.books = append(c.books, b)
}

// Len returns the number of books.
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

// Filter implements recommend.Catalog.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (c *MemoryCatalog) Filter(ctx context.Context, q recommend.Query) ([]recommend.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	out := make([]recommend.Book, 0)
	for i := range c.books {
		if q.Matches(&c.books[i]) {
			out = append(out, c.books[i])
		}
	}
	c.mu.RUnlock()

	recommend.SortBooks(out, q.OrderBy, q.Seed)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Get implements recommend.Catalog.
func (c *MemoryCatalog) Get(ctx context.Context, id int64) (recommend.Book, error) {
	if err := ctx.Err(); err != nil {
		return recommend.Book{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return recommend.Book{}, recommend.ErrNotFound
	}
	return c.books[i], nil
}
