// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package providers

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Similarity feature weights.
const (
	simGenreWeight    = 0.30
	simAuthorWeight   = 0.25
	simCategoryWeight = 0.20
	simThemeWeight    = 0.15
	simYearWeight     = 0.10

	// simYearSpan is the year distance at which the year component reaches zero.
	simYearSpan = 10.0

	// simPoolFactor sizes the candidate pool relative to limit.
	simPoolFactor = 3
)

// Similarity recommends books sharing genre, author or category with the
// user's favorites and read books, ordered by their best similarity to any
// of them.
type Similarity struct {
	baseProvider
}

// NewSimilarity creates a similarity provider.
func NewSimilarity(catalog recommend.Catalog) *Similarity {
	return &Similarity{baseProvider: newBaseProvider(recommend.ProviderSimilarity, catalog)}
}

// Recommend implements recommend.Provider.
func (s *Similarity) Recommend(ctx context.Context, uc *recommend.UserContext, limit int, _ *rand.Rand) ([]recommend.Book, error) {
	if limit <= 0 {
		return nil, nil
	}
	base := uc.BooksOn(recommend.ShelfFavorite, recommend.ShelfRead)
	if len(base) == 0 {
		return nil, nil
	}

	genres := recommend.NewWeightMap()
	authors := recommend.NewWeightMap()
	categories := recommend.NewWeightMap()
	for i := range base {
		genres.Add(base[i].Genre, 1)
		for _, a := range base[i].Authors() {
			authors.Add(a, 1)
		}
		for _, c := range base[i].Categories {
			categories.Add(c, 1)
		}
	}

	var conds []recommend.Condition
	for _, g := range genres.Keys() {
		conds = append(conds, recommend.Equals(recommend.FieldGenre, g))
	}
	for _, a := range authors.Keys() {
		conds = append(conds, recommend.Contains(recommend.FieldAuthor, a))
	}
	for _, c := range categories.Keys() {
		conds = append(conds, recommend.Equals(recommend.FieldCategory, c))
	}
	if len(conds) == 0 {
		return nil, nil
	}

	books, err := s.filter(ctx, uc, recommend.Query{Any: conds, OrderBy: popularOrder, Limit: limit * simPoolFactor})
	if err != nil {
		return nil, err
	}

	scores := make(map[int64]float64, len(books))
	for i := range books {
		var best float64
		for j := range base {
			if sim := BookSimilarity(&books[i], &base[j]); sim > best {
				best = sim
			}
		}
		scores[books[i].ID] = best
	}
	sort.SliceStable(books, func(i, j int) bool {
		return scores[books[i].ID] > scores[books[j].ID]
	})
	return capBooks(preferLanguages(uc, books), limit), nil
}

// BookSimilarity scores two books in [0,1]: genre equality 0.3, shared
// author 0.25, category Jaccard 0.2, theme Jaccard 0.15 and year proximity
// 0.1 (linear to zero at ten years apart).
func BookSimilarity(a, b *recommend.Book) float64 {
	var score float64
	if g := recommend.NormalizeTerm(a.Genre); g != "" && g == recommend.NormalizeTerm(b.Genre) {
		score += simGenreWeight
	}
	if jaccard(a.Authors(), b.Authors()) > 0 {
		score += simAuthorWeight
	}
	score += simCategoryWeight * jaccard(a.Categories, b.Categories)
	score += simThemeWeight * jaccard(a.Themes, b.Themes)
	if a.Year > 0 && b.Year > 0 {
		dy := math.Abs(float64(a.Year - b.Year))
		score += simYearWeight * math.Max(0, 1-dy/simYearSpan)
	}
	return score
}

// jaccard is |A∩B|/|A∪B| over normalized terms.
func jaccard(a, b []string) float64 {
	setA := termSet(a)
	setB := termSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for k := range setA {
		if _, ok := setB[k]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func termSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if n := recommend.NormalizeTerm(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
