// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"sort"
	"strings"
)

// MaxHighlights caps the highlights list of the personalized shelf.
const MaxHighlights = 5

// SplitMixed partitions recommendations into local and external books,
// preserving order.
func SplitMixed(items []Recommendation) MixedRecommendations {
	mixed := MixedRecommendations{
		Local:    make([]Book, 0, len(items)),
		External: make([]Book, 0),
	}
	for i := range items {
		if items[i].Book.Temporary {
			mixed.External = append(mixed.External, items[i].Book)
		} else {
			mixed.Local = append(mixed.Local, items[i].Book)
		}
	}
	mixed.HasExternal = len(mixed.External) > 0
	mixed.Total = len(mixed.Local) + len(mixed.External)
	return mixed
}

// BuildPersonalizedShelf buckets local books by genre and by primary author
// (keeping only buckets with more than one book) and assembles highlights:
// external books first, then featured local books, then the most popular
// local books, capped at MaxHighlights.
func BuildPersonalizedShelf(items []Recommendation) PersonalizedShelf {
	mixed := SplitMixed(items)
	shelf := PersonalizedShelf{
		ByGenre:       groupBooks(mixed.Local, func(b *Book) string { return b.Genre }),
		ByAuthor:      groupBooks(mixed.Local, primaryAuthor),
		ExternalBooks: mixed.External,
		HasExternal:   mixed.HasExternal,
		Total:         mixed.Total,
	}

	highlights := make([]Book, 0, MaxHighlights)
	seen := make(map[string]struct{})
	push := func(b *Book) {
		if len(highlights) >= MaxHighlights {
			return
		}
		k := b.dedupKey()
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		highlights = append(highlights, *b)
	}

	for i := range mixed.External {
		push(&mixed.External[i])
	}
	for i := range mixed.Local {
		if mixed.Local[i].Featured {
			push(&mixed.Local[i])
		}
	}
	popular := make([]Book, len(mixed.Local))
	copy(popular, mixed.Local)
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].PopularityScore() > popular[j].PopularityScore()
	})
	for i := range popular {
		push(&popular[i])
	}

	shelf.Highlights = highlights
	return shelf
}

func primaryAuthor(b *Book) string {
	if names := b.Authors(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// groupBooks groups by a display key; keys that differ only by case share a
// bucket labelled with the first spelling seen.
func groupBooks(books []Book, keyFn func(*Book) string) map[string][]Book {
	labels := make(map[string]string)
	groups := make(map[string][]Book)
	for i := range books {
		label := strings.TrimSpace(keyFn(&books[i]))
		if label == "" {
			continue
		}
		norm := strings.ToLower(label)
		if first, ok := labels[norm]; ok {
			label = first
		} else {
			labels[norm] = label
		}
		groups[label] = append(groups[label], books[i])
	}
	for k, v := range groups {
		if len(v) < 2 {
			delete(groups, k)
		}
	}
	return groups
}
