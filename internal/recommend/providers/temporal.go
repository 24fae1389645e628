// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package providers

import (
	"context"
	"math/rand"
	"time"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Season is a meteorological season.
type Season int

// Seasons.
const (
	Winter Season = iota // Dec, Jan, Feb
	Spring               // Mar, Apr, May
	Summer               // Jun, Jul, Aug
	Autumn               // Sep, Oct, Nov
)

// String returns the season name.
func (s Season) String() string {
	switch s {
	case Winter:
		return "winter"
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	default:
		return "unknown"
	}
}

// SeasonOf returns the season of t's month.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Autumn
	}
}

// Seasonal and rolling-window weights.
const (
	currentSeasonWeight  = 1.0
	previousSeasonWeight = 0.7
	nextSeasonWeight     = 0.5

	// temporalTopTerms is the number of genres and of categories queried.
	temporalTopTerms = 3
)

// rollingWindows are tried in order until one contains entries.
var rollingWindows = []struct {
	days   int
	weight float64
}{
	{30, 1.0},
	{60, 0.7},
	{90, 0.5},
}

// Temporal recommends books in genres and categories the user reads in the
// current season and has shelved recently.
type Temporal struct {
	baseProvider
}

// NewTemporal creates a temporal provider.
func NewTemporal(catalog recommend.Catalog) *Temporal {
	return &Temporal{baseProvider: newBaseProvider(recommend.ProviderTemporal, catalog)}
}

// Recommend implements recommend.Provider. Results are randomly ordered.
func (t *Temporal) Recommend(ctx context.Context, uc *recommend.UserContext, limit int, rng *rand.Rand) ([]recommend.Book, error) {
	if limit <= 0 || !uc.HasHistory() {
		return nil, nil
	}

	seasonal := seasonalPreferences(uc)
	rolling := rollingPreferences(uc)

	genres := recommend.NewWeightMap()
	categories := recommend.NewWeightMap()
	for _, p := range []recommend.Preferences{seasonal, rolling} {
		for _, g := range p.Genres.Top(temporalTopTerms) {
			genres.Add(g, 1)
		}
		for _, c := range p.Categories.Top(temporalTopTerms) {
			categories.Add(c, 1)
		}
	}

	var conds []recommend.Condition
	for _, g := range genres.Keys() {
		conds = append(conds, recommend.Equals(recommend.FieldGenre, g))
	}
	for _, c := range categories.Keys() {
		conds = append(conds, recommend.Equals(recommend.FieldCategory, c))
	}
	if len(conds) == 0 {
		return nil, nil
	}

	return t.filter(ctx, uc, recommend.Query{
		Any:     conds,
		OrderBy: []recommend.SortKey{recommend.SortRandom},
		Limit:   limit,
		Seed:    rng.Int63(),
	})
}

// seasonalPreferences weights entries added in the current season 1.0, the
// previous season 0.7 and the next season 0.5, in any year.
func seasonalPreferences(uc *recommend.UserContext) recommend.Preferences {
	current := SeasonOf(uc.Now)
	prev := (current + 3) % 4
	next := (current + 1) % 4

	prefs := recommend.NewPreferences()
	for i := range uc.Shelf {
		sb := &uc.Shelf[i]
		if sb.Entry.AddedAt.IsZero() {
			continue
		}
		var w float64
		switch SeasonOf(sb.Entry.AddedAt) {
		case current:
			w = currentSeasonWeight
		case prev:
			w = previousSeasonWeight
		case next:
			w = nextSeasonWeight
		default:
			continue
		}
		prefs.AddBook(&sb.Book, w)
	}
	return prefs
}

// rollingPreferences uses the narrowest rolling window that holds entries.
func rollingPreferences(uc *recommend.UserContext) recommend.Preferences {
	for _, win := range rollingWindows {
		cutoff := uc.Now.AddDate(0, 0, -win.days)
		prefs := recommend.NewPreferences()
		found := false
		for i := range uc.Shelf {
			sb := &uc.Shelf[i]
			if sb.Entry.AddedAt.IsZero() || sb.Entry.AddedAt.Before(cutoff) {
				continue
			}
			prefs.AddBook(&sb.Book, win.weight)
			found = true
		}
		if found {
			return prefs
		}
	}
	return recommend.NewPreferences()
}
