// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package providers

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

const (
	// categoryTopTerms caps the preferred terms taken from each field.
	categoryTopTerms = 10

	// categoryJitter is the upper bound of the random score tie-breaker.
	categoryJitter = 0.1
)

// secondaryOrder ranks the widened secondary pass.
var secondaryOrder = []recommend.SortKey{
	recommend.SortAccessesDesc,
	recommend.SortSalesDesc,
	recommend.SortDisplayOrderAsc,
	recommend.SortRandom,
}

// Category recommends books matching the user's preferred genres,
// categories and themes, expanded with related terms. It always tries to
// fill limit: a widened keyword pass and then global popularity cover
// users with thin or no history.
type Category struct {
	baseProvider
}

// NewCategory creates a category provider.
func NewCategory(catalog recommend.Catalog) *Category {
	return &Category{baseProvider: newBaseProvider(recommend.ProviderCategory, catalog)}
}

// boosts holds per-field term weights, including related-term expansions.
type boosts struct {
	genres     *recommend.WeightMap
	categories *recommend.WeightMap
	themes     *recommend.WeightMap
}

func (b *boosts) empty() bool {
	return b.genres.Len() == 0 && b.categories.Len() == 0 && b.themes.Len() == 0
}

// terms returns every boosted term across fields, deduplicated.
func (b *boosts) terms() []string {
	all := recommend.NewWeightMap()
	for _, m := range []*recommend.WeightMap{b.genres, b.categories, b.themes} {
		for _, k := range m.Keys() {
			all.Add(k, 1)
		}
	}
	return all.Keys()
}

// score is the sum of matched boosts, plus popularity and jitter.
func (b *boosts) score(book *recommend.Book, jitter float64) float64 {
	s := b.genres.Get(book.Genre)
	seen := make(map[string]struct{}, len(book.Categories))
	for _, c := range book.Categories {
		norm := recommend.NormalizeTerm(c)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		s += b.categories.Get(norm)
	}
	for _, t := range b.themes.Keys() {
		for _, have := range book.Themes {
			if strings.Contains(recommend.NormalizeTerm(have), t) {
				s += b.themes.Get(t)
				break
			}
		}
	}
	return s + book.PopularityScore() + jitter
}

func categoryBoosts(uc *recommend.UserContext) boosts {
	prefs := recommend.NewPreferences()
	for i := range uc.Shelf {
		sb := &uc.Shelf[i]
		if w := shelfWeights[sb.Entry.Shelf]; w > 0 {
			prefs.AddBook(&sb.Book, w)
		}
	}
	norm := prefs.Normalized()
	return boosts{
		genres:     expand(norm.Genres),
		categories: expand(norm.Categories),
		themes:     expand(norm.Themes),
	}
}

// expand keeps the top terms of m and adds their related terms at reduced weight.
func expand(m *recommend.WeightMap) *recommend.WeightMap {
	out := recommend.NewWeightMap()
	top := m.Top(categoryTopTerms)
	for _, term := range top {
		out.Add(term, m.Get(term))
	}
	for _, term := range top {
		for _, rel := range relatedTerms(term) {
			out.Add(rel, m.Get(term)*relatedWeight)
		}
	}
	return out
}

// Recommend implements recommend.Provider.
func (c *Category) Recommend(ctx context.Context, uc *recommend.UserContext, limit int, rng *rand.Rand) ([]recommend.Book, error) {
	if limit <= 0 {
		return nil, nil
	}

	b := categoryBoosts(uc)
	var out []recommend.Book

	if !b.empty() {
		primary, err := c.primary(ctx, uc, &b, limit, rng)
		if err != nil {
			return nil, err
		}
		out = primary
	}

	if len(out) < limit && !b.empty() {
		secondary, err := c.secondary(ctx, uc, &b, out, limit-len(out), rng)
		if err != nil {
			return nil, err
		}
		out = appendUnique(out, secondary, limit)
	}

	if len(out) < limit {
		popular, err := c.filter(ctx, uc, recommend.Query{
			ExcludeIDs:  bookIDs(out),
			OnlyPopular: true,
			OrderBy:     popularOrder,
			Limit:       limit - len(out),
		})
		if err != nil {
			return nil, err
		}
		out = appendUnique(out, popular, limit)
	}
	return out, nil
}

func (c *Category) primary(ctx context.Context, uc *recommend.UserContext, b *boosts, limit int, rng *rand.Rand) ([]recommend.Book, error) {
	var conds []recommend.Condition
	for _, g := range b.genres.Keys() {
		conds = append(conds, recommend.Equals(recommend.FieldGenre, g))
	}
	for _, cat := range b.categories.Keys() {
		conds = append(conds, recommend.Equals(recommend.FieldCategory, cat))
	}
	for _, t := range b.themes.Keys() {
		conds = append(conds, recommend.Contains(recommend.FieldTheme, t))
	}

	// Every match is scored before capping, however little it sells.
	books, err := c.filter(ctx, uc, recommend.Query{Any: conds, OrderBy: popularOrder})
	if err != nil {
		return nil, err
	}

	scores := make(map[int64]float64, len(books))
	for i := range books {
		scores[books[i].ID] = b.score(&books[i], rng.Float64()*categoryJitter)
	}
	sort.SliceStable(books, func(i, j int) bool {
		x, y := &books[i], &books[j]
		if scores[x.ID] != scores[y.ID] {
			return scores[x.ID] > scores[y.ID]
		}
		if x.SaleCount != y.SaleCount {
			return x.SaleCount > y.SaleCount
		}
		if x.AccessCount != y.AccessCount {
			return x.AccessCount > y.AccessCount
		}
		return x.DisplayOrder < y.DisplayOrder
	})
	return capBooks(preferLanguages(uc, books), limit), nil
}

func (c *Category) secondary(ctx context.Context, uc *recommend.UserContext, b *boosts, have []recommend.Book, limit int, rng *rand.Rand) ([]recommend.Book, error) {
	terms := recommend.NewWeightMap()
	expanded := b.terms()
	for _, t := range expanded {
		terms.Add(t, 1)
	}
	for _, k := range keywords(expanded...) {
		terms.Add(k, 1)
	}

	fields := []recommend.Field{
		recommend.FieldTitle,
		recommend.FieldGenre,
		recommend.FieldCategory,
		recommend.FieldTheme,
	}
	var conds []recommend.Condition
	for _, t := range terms.Keys() {
		for _, f := range fields {
			conds = append(conds, recommend.Contains(f, t))
		}
	}

	return c.filter(ctx, uc, recommend.Query{
		Any:        conds,
		ExcludeIDs: bookIDs(have),
		OrderBy:    secondaryOrder,
		Limit:      limit,
		Seed:       rng.Int63(),
	})
}
