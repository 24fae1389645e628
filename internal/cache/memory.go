// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memEntry is a node of the LRU list.
type memEntry struct {
	key       string
	value     []byte
	prev      *memEntry
	next      *memEntry
	expiresAt time.Time
}

// MemoryStore is a thread-safe LRU store with per-entry TTL.
//
// Key features:
//   - O(1) Get, Set and Delete
//   - O(1) LRU eviction when capacity is reached
//   - Lazy expiration on read, plus CleanupExpired for sweeps
//   - DeleteMatching walks the list, O(n) in the number of entries
type MemoryStore struct {
	mu sync.Mutex

	capacity   int
	defaultTTL time.Duration

	items map[string]*memEntry

	// head.next is the most recently used, tail.prev the least recently used.
	head *memEntry
	tail *memEntry

	hits      int64
	misses    int64
	evictions int64

	now func() time.Time
}

// NewMemoryStore creates a memory store holding at most capacity entries.
// defaultTTL applies when Set is called with a non-positive TTL.
func NewMemoryStore(capacity int, defaultTTL time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 10000
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	s := &MemoryStore{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*memEntry, capacity),
		head:       &memEntry{},
		tail:       &memEntry{},
		now:        time.Now,
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	return s
}

// Get returns a copy of the value at key. Found entries become most recently used.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[key]
	if !ok {
		s.misses++
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		s.removeEntry(entry)
		s.misses++
		return nil, false, nil
	}
	s.moveToFront(entry)
	s.hits++
	return cloneBytes(entry.value), true, nil
}

// Set stores a copy of value at key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)
	if entry, ok := s.items[key]; ok {
		entry.value = cloneBytes(value)
		entry.expiresAt = expiresAt
		s.moveToFront(entry)
		return nil
	}

	entry := &memEntry{key: key, value: cloneBytes(value), expiresAt: expiresAt}
	s.addToFront(entry)
	s.items[key] = entry

	for len(s.items) > s.capacity {
		s.evictOldest()
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.items[key]; ok {
		s.removeEntry(entry)
	}
	return nil
}

// DeleteMatching removes every key starting with prefix.
func (s *MemoryStore) DeleteMatching(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for entry := s.tail.prev; entry != s.head; {
		prev := entry.prev
		if strings.HasPrefix(entry.key, prefix) {
			s.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	return removed, nil
}

// Len returns the number of entries, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// CleanupExpired removes all expired entries and returns how many were removed.
func (s *MemoryStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for entry := s.tail.prev; entry != s.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			s.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	return removed
}

// Stats returns hit, miss and eviction counters.
func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Size:      len(s.items),
	}
}

// Close implements Store. The memory store holds no external resources.
func (s *MemoryStore) Close() error {
	return nil
}

// Internal methods (must be called with lock held)

func (s *MemoryStore) addToFront(entry *memEntry) {
	entry.prev = s.head
	entry.next = s.head.next
	s.head.next.prev = entry
	s.head.next = entry
}

func (s *MemoryStore) moveToFront(entry *memEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	s.addToFront(entry)
}

func (s *MemoryStore) removeEntry(entry *memEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(s.items, entry.key)
}

func (s *MemoryStore) evictOldest() {
	oldest := s.tail.prev
	if oldest == s.head {
		return
	}
	s.removeEntry(oldest)
	s.evictions++
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
