// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"math/rand"
	"sort"
	"strings"
)

// Field is a book attribute a Condition can match.
type Field int

// Matchable fields.
const (
	FieldTitle Field = iota
	FieldAuthor
	FieldGenre
	FieldCategory
	FieldTheme
	FieldLanguage
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldAuthor:
		return "author"
	case FieldGenre:
		return "genre"
	case FieldCategory:
		return "category"
	case FieldTheme:
		return "theme"
	case FieldLanguage:
		return "language"
	default:
		return "unknown"
	}
}

// MatchOp selects exact or substring matching. Both are case-insensitive.
type MatchOp int

// Match operators.
const (
	MatchExact MatchOp = iota
	MatchContains
)

// Condition matches one field of a book against a value. Category and
// theme conditions match if any element of the set matches.
type Condition struct {
	Field Field
	Op    MatchOp
	Value string
}

// Equals builds a case-insensitive exact condition.
func Equals(f Field, value string) Condition {
	return Condition{Field: f, Op: MatchExact, Value: value}
}

// Contains builds a case-insensitive substring condition.
func Contains(f Field, value string) Condition {
	return Condition{Field: f, Op: MatchContains, Value: value}
}

// Matches reports whether b satisfies the condition.
func (c Condition) Matches(b *Book) bool {
	want := strings.ToLower(strings.TrimSpace(c.Value))
	if want == "" {
		return false
	}
	switch c.Field {
	case FieldTitle:
		return c.matchOne(b.Title, want)
	case FieldAuthor:
		return c.matchOne(b.Author, want)
	case FieldGenre:
		return c.matchOne(b.Genre, want)
	case FieldLanguage:
		if c.Op == MatchExact {
			return LanguageMatches(b.Language, want)
		}
		return c.matchOne(b.Language, want)
	case FieldCategory:
		return c.matchAny(b.Categories, want)
	case FieldTheme:
		return c.matchAny(b.Themes, want)
	}
	return false
}

func (c Condition) matchOne(have, want string) bool {
	have = strings.ToLower(strings.TrimSpace(have))
	if c.Op == MatchContains {
		return strings.Contains(have, want)
	}
	return have == want
}

func (c Condition) matchAny(have []string, want string) bool {
	for _, h := range have {
		if c.matchOne(h, want) {
			return true
		}
	}
	return false
}

// SortKey is an ordering criterion for catalog queries.
type SortKey int

// Sort keys, applied in order as tie-breakers.
const (
	SortSalesDesc SortKey = iota
	SortAccessesDesc
	SortDisplayOrderAsc
	SortCreatedDesc
	SortRandom
)

// Query is a catalog predicate.
//
// A book matches when it satisfies at least one condition in Any (or Any is
// empty), its ID is in IDs (when set) and not in ExcludeIDs, and its
// language is one of Languages (when set) and not one of ExcludeLanguages.
// Languages are compared by normalized code, so "en" covers "en-CA".
type Query struct {
	Any              []Condition
	IDs              []int64
	ExcludeIDs       []int64
	Languages        []string
	ExcludeLanguages []string
	OnlyPopular      bool
	OrderBy          []SortKey
	Limit            int

	// Seed drives SortRandom so random ordering is reproducible.
	Seed int64
}

// Matches reports whether b satisfies every part of the query except ordering and limit.
func (q *Query) Matches(b *Book) bool {
	if len(q.IDs) > 0 && !containsID(q.IDs, b.ID) {
		return false
	}
	if containsID(q.ExcludeIDs, b.ID) {
		return false
	}
	if len(q.Languages) > 0 && !anyLanguage(b.Language, q.Languages) {
		return false
	}
	if anyLanguage(b.Language, q.ExcludeLanguages) {
		return false
	}
	if q.OnlyPopular && !b.Featured && b.SaleCount == 0 && b.AccessCount == 0 {
		return false
	}
	if len(q.Any) == 0 {
		return true
	}
	for _, c := range q.Any {
		if c.Matches(b) {
			return true
		}
	}
	return false
}

func anyLanguage(have string, codes []string) bool {
	for _, code := range codes {
		if LanguageMatches(have, code) {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SortBooks orders books in place by keys. SortRandom shuffles with seed
// before the stable sort, so it acts as the final tie-breaker wherever it
// appears in keys.
func SortBooks(books []Book, keys []SortKey, seed int64) {
	if len(keys) == 0 {
		return
	}
	for _, k := range keys {
		if k == SortRandom {
			rng := rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for recommendation shuffling
			rng.Shuffle(len(books), func(i, j int) { books[i], books[j] = books[j], books[i] })
			break
		}
	}
	sort.SliceStable(books, func(i, j int) bool {
		a, b := &books[i], &books[j]
		for _, k := range keys {
			switch k {
			case SortSalesDesc:
				if a.SaleCount != b.SaleCount {
					return a.SaleCount > b.SaleCount
				}
			case SortAccessesDesc:
				if a.AccessCount != b.AccessCount {
					return a.AccessCount > b.AccessCount
				}
			case SortDisplayOrderAsc:
				if a.DisplayOrder != b.DisplayOrder {
					return a.DisplayOrder < b.DisplayOrder
				}
			case SortCreatedDesc:
				if !a.CreatedAt.Equal(b.CreatedAt) {
					return a.CreatedAt.After(b.CreatedAt)
				}
			case SortRandom:
				return false
			}
		}
		return false
	})
}
