// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UserContext is everything the providers know about a user for one
// request. It is built once by the engine and shared read-only.
type UserContext struct {
	UserID int64

	// Entries are the raw shelf entries, newest first.
	Entries []ShelfEntry

	// Shelf joins entries with their catalog books. Entries whose book is
	// missing from the catalog are dropped here but still excluded.
	Shelf []ShelvedBook

	Exclusions ExclusionSet

	// Interests is the free-text interests field of the user profile.
	Interests string

	Language LanguageProfile
	Behavior BehaviorProfile

	// PreferredLanguages are tried before any other language by the local
	// providers. Empty means no preference.
	PreferredLanguages []string

	// Now is the reference time for recency and seasonal signals.
	Now time.Time
}

// NewUserContext joins entries with books. Language and Behavior are left
// empty; use ComputeProfiles or set them from cache.
func NewUserContext(userID int64, entries []ShelfEntry, books []Book, now time.Time) *UserContext {
	sorted := make([]ShelfEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].AddedAt.Equal(sorted[j].AddedAt) {
			return sorted[i].AddedAt.After(sorted[j].AddedAt)
		}
		return sorted[i].BookID < sorted[j].BookID
	})

	byID := make(map[int64]Book, len(books))
	for i := range books {
		byID[books[i].ID] = books[i]
	}

	shelf := make([]ShelvedBook, 0, len(sorted))
	for _, entry := range sorted {
		if b, ok := byID[entry.BookID]; ok {
			shelf = append(shelf, ShelvedBook{Entry: entry, Book: b})
		}
	}

	return &UserContext{
		UserID:     userID,
		Entries:    sorted,
		Shelf:      shelf,
		Exclusions: ResolveExclusions(sorted),
		Language:   LanguageProfile{Weights: NewWeightMap(), Abandoned: NewWeightMap()},
		Now:        now,
	}
}

// ComputeProfiles derives the language and behavior profiles from the shelf.
func (uc *UserContext) ComputeProfiles(cfg BehaviorConfig) {
	uc.Language = BuildLanguageProfile(uc.Shelf)
	uc.Behavior = AnalyzeBehavior(uc.Shelf, cfg)
}

// PrefersLanguage reports whether b is in one of the preferred languages.
func (uc *UserContext) PrefersLanguage(b *Book) bool {
	for _, code := range uc.PreferredLanguages {
		if LanguageMatches(b.Language, code) {
			return true
		}
	}
	return false
}

// HasHistory reports whether the user has any shelved book.
func (uc *UserContext) HasHistory() bool {
	return len(uc.Shelf) > 0
}

// ShelfCount is the number of shelf entries, the primary context fingerprint.
func (uc *UserContext) ShelfCount() int {
	return len(uc.Entries)
}

// BooksOn returns the shelved books on any of the given shelves, newest first.
func (uc *UserContext) BooksOn(types ...ShelfType) []Book {
	var out []Book
	for i := range uc.Shelf {
		for _, t := range types {
			if uc.Shelf[i].Entry.Shelf == t {
				out = append(out, uc.Shelf[i].Book)
				break
			}
		}
	}
	return out
}

// LibraryTitles returns the lower-cased titles of every shelved book.
func (uc *UserContext) LibraryTitles() map[string]struct{} {
	titles := make(map[string]struct{}, len(uc.Shelf))
	for i := range uc.Shelf {
		if t := strings.ToLower(strings.TrimSpace(uc.Shelf[i].Book.Title)); t != "" {
			titles[t] = struct{}{}
		}
	}
	return titles
}

// Fingerprint returns the cache context of the shelf.
func (uc *UserContext) Fingerprint() ContextFingerprint {
	return ContextFingerprint{
		UserID:     uc.UserID,
		BookIDs:    uc.Exclusions.IDs(),
		ShelfCount: uc.ShelfCount(),
	}
}

// ProfileFingerprint digests the user and every entry's book, shelf and
// added time. Profile cache keys use it, so moving a book between shelves
// yields a fresh language and behavior profile.
func (uc *UserContext) ProfileFingerprint() string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(uc.UserID, 10)))
	for _, e := range uc.Entries {
		h.Write([]byte{'|'})
		h.Write([]byte(strconv.FormatInt(e.BookID, 10)))
		h.Write([]byte{':'})
		h.Write([]byte(e.Shelf))
		h.Write([]byte{':'})
		h.Write([]byte(strconv.FormatInt(e.AddedAt.UnixNano(), 10)))
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
