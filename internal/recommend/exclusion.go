// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// ExclusionSet is the set of book IDs a user already has on any shelf.
type ExclusionSet map[int64]struct{}

// ResolveExclusions returns the distinct book IDs across entries,
// regardless of shelf type.
func ResolveExclusions(entries []ShelfEntry) ExclusionSet {
	set := make(ExclusionSet, len(entries))
	for i := range entries {
		set[entries[i].BookID] = struct{}{}
	}
	return set
}

// Contains reports whether id is excluded.
func (s ExclusionSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Excludes reports whether b must not be recommended. Temporary books have
// no stable local ID and are never excluded here.
func (s ExclusionSet) Excludes(b *Book) bool {
	return !b.Temporary && s.Contains(b.ID)
}

// IDs returns the excluded IDs in ascending order.
func (s ExclusionSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Filter returns the books that are not excluded, preserving order.
func (s ExclusionSet) Filter(books []Book) []Book {
	out := books[:0:0]
	for i := range books {
		if !s.Excludes(&books[i]) {
			out = append(out, books[i])
		}
	}
	return out
}

// ExclusionResolver loads exclusion sets from a ShelfStore.
type ExclusionResolver struct {
	store ShelfStore
}

// NewExclusionResolver creates a resolver backed by store.
func NewExclusionResolver(store ShelfStore) *ExclusionResolver {
	return &ExclusionResolver{store: store}
}

// Resolve returns the exclusion set for userID.
func (r *ExclusionResolver) Resolve(ctx context.Context, userID int64) (ExclusionSet, error) {
	entries, err := r.store.ListShelfEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shelf entries: %w", err)
	}
	return ResolveExclusions(entries), nil
}
