// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"sort"
)

// BehaviorProfile classifies a user's reading style.
type BehaviorProfile struct {
	Eclectic bool `json:"eclectic"`
	Loyal    bool `json:"loyal"`
	Seasonal bool `json:"seasonal"`

	// GenreDiversity is distinct genres / shelved books.
	GenreDiversity float64 `json:"genre_diversity"`

	// DistinctGenres is the number of distinct genres on the shelf.
	DistinctGenres int `json:"distinct_genres"`

	// AuthorConcentration is the share of books by the most frequent author.
	AuthorConcentration float64 `json:"author_concentration"`

	// GenreConcentration is the share of books in the most frequent genre.
	GenreConcentration float64 `json:"genre_concentration"`

	// MonthConcentration is the share of shelf activity in the three busiest months.
	MonthConcentration float64 `json:"month_concentration"`

	Entries int `json:"entries"`
}

// AnalyzeBehavior computes the behavior profile from shelf history.
// Shelves smaller than cfg.MinEntries are never classified.
func AnalyzeBehavior(shelf []ShelvedBook, cfg BehaviorConfig) BehaviorProfile {
	profile := BehaviorProfile{Entries: len(shelf)}
	if len(shelf) == 0 {
		return profile
	}

	genres := NewWeightMap()
	authors := NewWeightMap()
	var months [12]int
	authored := 0

	for i := range shelf {
		b := &shelf[i].Book
		genres.Add(b.Genre, 1)
		names := b.Authors()
		if len(names) > 0 {
			authored++
		}
		for _, a := range names {
			authors.Add(a, 1)
		}
		if at := shelf[i].Entry.AddedAt; !at.IsZero() {
			months[at.Month()-1]++
		}
	}

	n := float64(len(shelf))
	profile.DistinctGenres = genres.Len()
	profile.GenreDiversity = float64(genres.Len()) / n
	profile.GenreConcentration = genres.Max() / n
	if authored > 0 {
		profile.AuthorConcentration = authors.Max() / float64(authored)
	}

	counts := months[:]
	sorted := append([]int(nil), counts...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	top, total := 0, 0
	for i, c := range sorted {
		if i < 3 {
			top += c
		}
		total += c
	}
	if total > 0 {
		profile.MonthConcentration = float64(top) / float64(total)
	}

	if len(shelf) < cfg.MinEntries {
		return profile
	}

	profile.Eclectic = profile.DistinctGenres >= cfg.EclecticMinGenres &&
		profile.GenreDiversity >= cfg.EclecticGenreRatio
	profile.Loyal = profile.AuthorConcentration >= cfg.LoyalAuthorShare ||
		profile.GenreConcentration >= cfg.LoyalGenreShare
	profile.Seasonal = total >= cfg.SeasonalMinEntries &&
		profile.MonthConcentration >= cfg.SeasonalMonthShare

	return profile
}
