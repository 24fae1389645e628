// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by a Catalog when a book does not exist.
var ErrNotFound = errors.New("book not found")

// ShelfType is the reading state a user associates with a book.
type ShelfType string

// Shelf types.
const (
	ShelfFavorite   ShelfType = "favorite"
	ShelfRead       ShelfType = "read"
	ShelfReading    ShelfType = "reading"
	ShelfWantToRead ShelfType = "want_to_read"
	ShelfAbandoned  ShelfType = "abandoned"
)

// AllShelfTypes lists every shelf type in seed priority order.
var AllShelfTypes = []ShelfType{ShelfFavorite, ShelfRead, ShelfReading, ShelfWantToRead, ShelfAbandoned}

// Valid reports whether s is a known shelf type.
func (s ShelfType) Valid() bool {
	switch s {
	case ShelfFavorite, ShelfRead, ShelfReading, ShelfWantToRead, ShelfAbandoned:
		return true
	}
	return false
}

// ParseShelfType converts a string (accepting "want-to-read") to a ShelfType.
func ParseShelfType(s string) (ShelfType, error) {
	st := ShelfType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !st.Valid() {
		return "", fmt.Errorf("unknown shelf type %q", s)
	}
	return st, nil
}

// Book is a catalog item. Temporary books come from the external catalog
// and carry an ExternalID instead of a stable local ID.
type Book struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Genre        string    `json:"genre"`
	Categories   []string  `json:"categories,omitempty"`
	Themes       []string  `json:"themes,omitempty"`
	Language     string    `json:"language"`
	Year         int       `json:"year,omitempty"`
	AccessCount  int64     `json:"access_count"`
	SaleCount    int64     `json:"sale_count"`
	Featured     bool      `json:"featured"`
	Temporary    bool      `json:"temporary"`
	ExternalID   string    `json:"external_id,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CoverURL     string    `json:"cover_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Authors splits the free-text author field into individual names.
func (b *Book) Authors() []string {
	return SplitNames(b.Author)
}

// PopularityScore is access_count×0.001 + sale_count×0.01, ×1.5 when featured.
func (b *Book) PopularityScore() float64 {
	score := float64(b.AccessCount)*0.001 + float64(b.SaleCount)*0.01
	if b.Featured {
		score *= 1.5
	}
	return score
}

// dedupKey identifies a book across local and external sources.
func (b *Book) dedupKey() string {
	if b.Temporary {
		return "ext:" + b.ExternalID
	}
	return fmt.Sprintf("id:%d", b.ID)
}

// SplitNames splits a comma, semicolon or ampersand separated list of names.
func SplitNames(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '&'
	})
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if name := strings.TrimSpace(f); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ShelfEntry associates a book with a reading state for one user.
type ShelfEntry struct {
	UserID  int64     `json:"user_id"`
	BookID  int64     `json:"book_id"`
	Shelf   ShelfType `json:"shelf"`
	AddedAt time.Time `json:"added_at"`
}

// ShelvedBook joins a shelf entry with the catalog book it refers to.
type ShelvedBook struct {
	Entry ShelfEntry
	Book  Book
}

// Source tags where a recommendation came from.
type Source string

// Recommendation sources.
const (
	SourceExternal   Source = "external"
	SourceHistory    Source = "history"
	SourceCategory   Source = "category"
	SourceSimilarity Source = "similarity"
	SourceTemporal   Source = "temporal"
	SourceLanguage   Source = "language"
	SourceFallback   Source = "fallback"
)

// Recommendation is a book plus the provider that produced it.
type Recommendation struct {
	Book   Book   `json:"book"`
	Source Source `json:"source"`
}

// Request contains the parameters for a recommendation request.
type Request struct {
	UserID    int64  `json:"user_id"`
	Limit     int    `json:"limit"`
	RequestID string `json:"request_id,omitempty"`
}

// Response is the flat recommendation list.
type Response struct {
	Items    []Recommendation `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// Books returns the books of the response in order.
func (r *Response) Books() []Book {
	books := make([]Book, len(r.Items))
	for i := range r.Items {
		books[i] = r.Items[i].Book
	}
	return books
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID     string          `json:"request_id"`
	UserID        int64           `json:"user_id"`
	ProvidersUsed []string        `json:"providers_used,omitempty"`
	Weights       Weights         `json:"weights"`
	Behavior      BehaviorProfile `json:"behavior"`
	ExternalCount int             `json:"external_count"`
	CacheHit      bool            `json:"cache_hit"`
	Fallback      bool            `json:"fallback"`
	LatencyMS     int64           `json:"latency_ms"`
	Timestamp     time.Time       `json:"timestamp"`
}

// MixedRecommendations splits recommendations into local and external books.
type MixedRecommendations struct {
	Local       []Book `json:"local"`
	External    []Book `json:"external"`
	HasExternal bool   `json:"has_external"`
	Total       int    `json:"total"`
}

// PersonalizedShelf is the curated shelf view.
type PersonalizedShelf struct {
	Highlights    []Book            `json:"highlights"`
	ByGenre       map[string][]Book `json:"by_genre"`
	ByAuthor      map[string][]Book `json:"by_author"`
	ExternalBooks []Book            `json:"external_books"`
	HasExternal   bool              `json:"has_external"`
	Total         int               `json:"total"`
}

// ExternalVolume is a search hit from the external catalog service.
type ExternalVolume struct {
	ExternalID string            `json:"external_id"`
	Title      string            `json:"title"`
	Authors    []string          `json:"authors"`
	Categories []string          `json:"categories"`
	Language   string            `json:"language,omitempty"`
	ImageLinks map[string]string `json:"image_links,omitempty"`
}

// ToBook converts the volume to a temporary Book.
func (v *ExternalVolume) ToBook() Book {
	b := Book{
		Title:      v.Title,
		Author:     strings.Join(v.Authors, ", "),
		Categories: v.Categories,
		Language:   v.Language,
		Temporary:  true,
		ExternalID: v.ExternalID,
	}
	if len(v.Categories) > 0 {
		b.Genre = v.Categories[0]
	}
	for _, k := range []string{"thumbnail", "smallThumbnail"} {
		if url := v.ImageLinks[k]; url != "" {
			b.CoverURL = url
			break
		}
	}
	return b
}

// Metrics contains engine counters.
type Metrics struct {
	Requests    int64 `json:"requests"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	Fallbacks   int64 `json:"fallbacks"`
	Errors      int64 `json:"errors"`
}
