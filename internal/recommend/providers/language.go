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

// interestKeywordLimit caps the interest keywords turned into conditions.
const interestKeywordLimit = 10

// languageBackfillOrder ranks the Portuguese backfill.
var languageBackfillOrder = []recommend.SortKey{
	recommend.SortSalesDesc,
	recommend.SortAccessesDesc,
	recommend.SortRandom,
}

// interestFields are searched for profile interest keywords.
var interestFields = []recommend.Field{
	recommend.FieldTitle,
	recommend.FieldGenre,
	recommend.FieldCategory,
	recommend.FieldTheme,
}

// Language recommends books in the user's preferred languages, matching
// profile interests and national authors, while excluding languages the
// user repeatedly abandons.
type Language struct {
	baseProvider
	cfg recommend.LanguageConfig
}

// NewLanguage creates a language-preference provider.
func NewLanguage(catalog recommend.Catalog, cfg recommend.LanguageConfig) *Language {
	return &Language{
		baseProvider: newBaseProvider(recommend.ProviderLanguage, catalog),
		cfg:          cfg,
	}
}

// Recommend implements recommend.Provider.
func (l *Language) Recommend(ctx context.Context, uc *recommend.UserContext, limit int, rng *rand.Rand) ([]recommend.Book, error) {
	if limit <= 0 {
		return nil, nil
	}

	profile := uc.Language
	if profile.Weights == nil {
		profile = recommend.BuildLanguageProfile(uc.Shelf)
	}
	excluded := l.excludedVariants(profile)

	var out []recommend.Book
	if conds := l.conditions(uc, profile); len(conds) > 0 {
		books, err := l.filter(ctx, uc, recommend.Query{
			Any:              conds,
			ExcludeLanguages: excluded,
			OrderBy:          popularOrder,
			Limit:            limit,
		})
		if err != nil {
			return nil, err
		}
		out = books
	}

	if len(out) < limit {
		backfill, err := l.filter(ctx, uc, recommend.Query{
			Any:              portugueseFallback(),
			ExcludeIDs:       bookIDs(out),
			ExcludeLanguages: excluded,
			OrderBy:          languageBackfillOrder,
			Limit:            limit - len(out),
			Seed:             rng.Int63(),
		})
		if err != nil {
			return nil, err
		}
		out = appendUnique(out, backfill, limit)
	}
	return out, nil
}

//nolint:gocritic // hugeParam: profile passed by value for immutability
func (l *Language) conditions(uc *recommend.UserContext, profile recommend.LanguageProfile) []recommend.Condition {
	var conds []recommend.Condition
	for _, code := range profile.PriorityLanguages(l.cfg) {
		for _, v := range recommend.LanguageVariants(code) {
			conds = append(conds, recommend.Equals(recommend.FieldLanguage, v))
		}
	}

	kws := keywords(uc.Interests)
	if len(kws) > interestKeywordLimit {
		kws = kws[:interestKeywordLimit]
	}
	for _, kw := range kws {
		for _, f := range interestFields {
			conds = append(conds, recommend.Contains(f, kw))
		}
	}

	if profile.NationalAffinity > l.cfg.NationalAffinityThreshold {
		for _, a := range recommend.NationalAuthors {
			conds = append(conds, recommend.Contains(recommend.FieldAuthor, a))
		}
	}
	return conds
}

//nolint:gocritic // hugeParam: profile passed by value for immutability
func (l *Language) excludedVariants(profile recommend.LanguageProfile) []string {
	var out []string
	for _, code := range profile.ExcludedLanguages(l.cfg) {
		out = append(out, recommend.LanguageVariants(code)...)
	}
	return out
}

// portugueseFallback matches Portuguese books or known national authors.
func portugueseFallback() []recommend.Condition {
	var conds []recommend.Condition
	for _, v := range recommend.LanguageVariants(recommend.LanguagePortuguese) {
		conds = append(conds, recommend.Equals(recommend.FieldLanguage, v))
	}
	for _, a := range recommend.NationalAuthors {
		conds = append(conds, recommend.Contains(recommend.FieldAuthor, a))
	}
	return conds
}
