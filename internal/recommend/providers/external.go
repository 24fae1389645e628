// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package providers

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// seedPriority orders the shelves seed books are drawn from.
var seedPriority = []recommend.ShelfType{
	recommend.ShelfFavorite,
	recommend.ShelfRead,
	recommend.ShelfReading,
	recommend.ShelfWantToRead,
}

// External turns a user's top shelf books into search terms and queries an
// external catalog, returning temporary books not already in the library.
type External struct {
	searcher recommend.ExternalSearcher
	cfg      recommend.ExternalConfig
	logger   zerolog.Logger
}

// NewExternal creates an external candidate source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewExternal(searcher recommend.ExternalSearcher, cfg recommend.ExternalConfig, logger zerolog.Logger) *External {
	return &External{
		searcher: searcher,
		cfg:      cfg,
		logger:   logger.With().Str("component", "external_source").Logger(),
	}
}

// Candidates implements recommend.ExternalSource. A failing term is logged
// and skipped; the search only stops on context cancellation or once limit
// candidates are collected.
func (x *External) Candidates(ctx context.Context, uc *recommend.UserContext, limit int) ([]recommend.Book, error) {
	if limit <= 0 || x.searcher == nil {
		return nil, nil
	}
	terms := SearchTerms(SeedBooks(uc, x.cfg.MaxSeeds), x.cfg.MaxTerms)
	if len(terms) == 0 {
		return nil, nil
	}

	titles := uc.LibraryTitles()
	seen := make(map[string]struct{})
	for i := range uc.Shelf {
		if id := uc.Shelf[i].Book.ExternalID; id != "" {
			seen[id] = struct{}{}
		}
	}

	var out []recommend.Book
	for _, term := range terms {
		if len(out) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		volumes, err := x.searcher.Search(ctx, term, x.cfg.PageSize)
		if err != nil {
			x.logger.Warn().Err(err).Str("term", term).Msg("external search term failed")
			continue
		}
		for i := range volumes {
			if len(out) >= limit {
				break
			}
			v := &volumes[i]
			if v.ExternalID == "" || strings.TrimSpace(v.Title) == "" {
				continue
			}
			if _, ok := seen[v.ExternalID]; ok {
				continue
			}
			if _, ok := titles[strings.ToLower(strings.TrimSpace(v.Title))]; ok {
				continue
			}
			seen[v.ExternalID] = struct{}{}
			out = append(out, v.ToBook())
		}
	}
	return out, nil
}

// SeedBooks picks up to maxSeeds shelf books, favorites first, then read,
// reading and want-to-read. Abandoned books are never seeds.
func SeedBooks(uc *recommend.UserContext, maxSeeds int) []recommend.Book {
	var seeds []recommend.Book
	for _, shelf := range seedPriority {
		for _, b := range uc.BooksOn(shelf) {
			if maxSeeds > 0 && len(seeds) >= maxSeeds {
				return seeds
			}
			seeds = append(seeds, b)
		}
	}
	return seeds
}

// SearchTerms derives up to maxTerms distinct search terms: seed authors
// first, then seed genres.
func SearchTerms(seeds []recommend.Book, maxTerms int) []string {
	terms := recommend.NewWeightMap()
	for i := range seeds {
		for _, a := range seeds[i].Authors() {
			terms.Add(a, 1)
		}
	}
	for i := range seeds {
		terms.Add(seeds[i].Genre, 1)
	}
	keys := terms.Keys()
	if maxTerms > 0 && len(keys) > maxTerms {
		keys = keys[:maxTerms]
	}
	return keys
}
