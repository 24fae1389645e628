// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package providers implements the signal providers for the recommendation engine.
//
// Each provider implements recommend.Provider, is stateless and receives its
// catalog explicitly, so one instance can serve concurrent requests.
//
//   - History: weighted author/genre/category/theme history with recency decay
//   - Category: scored preference matching with related-term expansion
//   - Similarity: genre/author/category overlap with favorites and read books
//   - Temporal: seasonal and rolling-window genre/category trends
//   - Language: language preference, interests and national authors
//
// External implements recommend.ExternalSource on top of an ExternalSearcher.
package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// shelfWeights weight shelf entries for history and category preferences.
var shelfWeights = map[recommend.ShelfType]float64{
	recommend.ShelfFavorite:   3.0,
	recommend.ShelfRead:       1.5,
	recommend.ShelfReading:    1.0,
	recommend.ShelfWantToRead: 0.5,
	recommend.ShelfAbandoned:  0.5,
}

// popularOrder ranks globally popular books.
var popularOrder = []recommend.SortKey{
	recommend.SortSalesDesc,
	recommend.SortAccessesDesc,
	recommend.SortDisplayOrderAsc,
	recommend.SortCreatedDesc,
}

// baseProvider holds the name and catalog shared by every provider.
type baseProvider struct {
	name    string
	catalog recommend.Catalog
}

func newBaseProvider(name string, catalog recommend.Catalog) baseProvider {
	return baseProvider{name: name, catalog: catalog}
}

// Name returns the provider identifier.
func (b *baseProvider) Name() string {
	return b.name
}

// filter runs q against the catalog with the user's exclusions applied both
// in the query and on the result. When the user has preferred languages,
// books in those languages come first and the unrestricted query tops up
// the page.
func (b *baseProvider) filter(ctx context.Context, uc *recommend.UserContext, q recommend.Query) ([]recommend.Book, error) {
	q.ExcludeIDs = append(q.ExcludeIDs[:len(q.ExcludeIDs):len(q.ExcludeIDs)], uc.Exclusions.IDs()...)
	if len(uc.PreferredLanguages) == 0 || len(q.Languages) > 0 {
		books, err := b.catalog.Filter(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%s: filter catalog: %w", b.name, err)
		}
		return uc.Exclusions.Filter(books), nil
	}

	preferred := q
	preferred.Languages = uc.PreferredLanguages
	books, err := b.catalog.Filter(ctx, preferred)
	if err != nil {
		return nil, fmt.Errorf("%s: filter catalog in preferred languages: %w", b.name, err)
	}
	if q.Limit <= 0 || len(books) < q.Limit {
		rest, err := b.catalog.Filter(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%s: filter catalog: %w", b.name, err)
		}
		limit := q.Limit
		if limit <= 0 {
			limit = len(books) + len(rest)
		}
		books = appendUnique(books, rest, limit)
	}
	return uc.Exclusions.Filter(books), nil
}

// preferLanguages moves books in the user's preferred languages ahead of
// the rest. Order within each group is kept.
func preferLanguages(uc *recommend.UserContext, books []recommend.Book) []recommend.Book {
	if len(uc.PreferredLanguages) == 0 {
		return books
	}
	out := make([]recommend.Book, 0, len(books))
	var rest []recommend.Book
	for i := range books {
		if uc.PrefersLanguage(&books[i]) {
			out = append(out, books[i])
		} else {
			rest = append(rest, books[i])
		}
	}
	return append(out, rest...)
}

// recencyDecay is 1/(1 + days_since_add/30).
func recencyDecay(now, added time.Time) float64 {
	if added.IsZero() {
		return 1
	}
	days := now.Sub(added).Hours() / 24
	if days < 0 {
		days = 0
	}
	return 1 / (1 + days/30)
}

// keywords extracts distinct lower-case tokens longer than three characters.
func keywords(texts ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, text := range texts {
		tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, tok := range tokens {
			if len([]rune(tok)) <= 3 {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

// bookIDs returns the local IDs of books.
func bookIDs(books []recommend.Book) []int64 {
	ids := make([]int64, 0, len(books))
	for i := range books {
		if !books[i].Temporary {
			ids = append(ids, books[i].ID)
		}
	}
	return ids
}

// appendUnique appends books from more whose IDs are not yet in books.
func appendUnique(books, more []recommend.Book, limit int) []recommend.Book {
	seen := make(map[int64]struct{}, len(books))
	for i := range books {
		seen[books[i].ID] = struct{}{}
	}
	for i := range more {
		if len(books) >= limit {
			break
		}
		if _, ok := seen[more[i].ID]; ok {
			continue
		}
		seen[more[i].ID] = struct{}{}
		books = append(books, more[i])
	}
	return books
}

func capBooks(books []recommend.Book, limit int) []recommend.Book {
	if len(books) > limit {
		return books[:limit]
	}
	return books
}
