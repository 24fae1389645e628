// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package providers

import (
	"context"
	"math/rand"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// historyTermThreshold is the minimum normalized weight for a term to be queried.
const historyTermThreshold = 0.5

// History recommends books sharing authors, genres, categories or themes
// with the user's shelf, weighting recent and favorite entries higher.
type History struct {
	baseProvider
}

// NewHistory creates a history provider.
func NewHistory(catalog recommend.Catalog) *History {
	return &History{baseProvider: newBaseProvider(recommend.ProviderHistory, catalog)}
}

// Recommend implements recommend.Provider. Results are unordered.
func (h *History) Recommend(ctx context.Context, uc *recommend.UserContext, limit int, _ *rand.Rand) ([]recommend.Book, error) {
	if limit <= 0 || !uc.HasHistory() {
		return nil, nil
	}

	prefs := historyPreferences(uc)
	norm := prefs.Normalized()

	var conds []recommend.Condition
	for _, a := range norm.Authors.Above(historyTermThreshold) {
		conds = append(conds, recommend.Contains(recommend.FieldAuthor, a))
	}
	for _, g := range norm.Genres.Above(historyTermThreshold) {
		conds = append(conds, recommend.Equals(recommend.FieldGenre, g))
	}
	for _, c := range norm.Categories.Above(historyTermThreshold) {
		conds = append(conds, recommend.Equals(recommend.FieldCategory, c))
	}
	for _, t := range prefs.Themes.Keys() {
		conds = append(conds, recommend.Contains(recommend.FieldTheme, t))
	}
	if len(conds) == 0 {
		return nil, nil
	}

	books, err := h.filter(ctx, uc, recommend.Query{Any: conds, Limit: limit})
	if err != nil {
		return nil, err
	}
	return capBooks(books, limit), nil
}

// historyPreferences weights each shelved book by shelf type and recency.
func historyPreferences(uc *recommend.UserContext) recommend.Preferences {
	prefs := recommend.NewPreferences()
	for i := range uc.Shelf {
		sb := &uc.Shelf[i]
		w := shelfWeights[sb.Entry.Shelf] * recencyDecay(uc.Now, sb.Entry.AddedAt)
		if w <= 0 {
			continue
		}
		prefs.AddBook(&sb.Book, w)
	}
	return prefs
}
