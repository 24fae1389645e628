// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// errEmptyFixture is returned when a fixture contains no books.
var errEmptyFixture = errors.New("fixture contains no books")

// fixtureBook is one catalog entry as written in a fixture file.
type fixtureBook struct {
	Title        string   `koanf:"title" json:"title" validate:"required,max=500"`
	Author       string   `koanf:"author" json:"author" validate:"required,max=500"`
	Genre        string   `koanf:"genre" json:"genre" validate:"max=200"`
	Categories   []string `koanf:"categories" json:"categories" validate:"dive,max=200"`
	Themes       []string `koanf:"themes" json:"themes" validate:"dive,max=200"`
	Language     string   `koanf:"language" json:"language" validate:"required,min=2,max=8"`
	Year         int      `koanf:"year" json:"year" validate:"gte=0,lte=3000"`
	AccessCount  int64    `koanf:"access_count" json:"access_count" validate:"gte=0"`
	SaleCount    int64    `koanf:"sale_count" json:"sale_count" validate:"gte=0"`
	Featured     bool     `koanf:"featured" json:"featured"`
	DisplayOrder int      `koanf:"display_order" json:"display_order"`
	CoverURL     string   `koanf:"cover_url" json:"cover_url" validate:"omitempty,url"`
}

// loadFixture reads and validates the books in a fixture file. YAML is a
// superset of JSON, so both formats go through the YAML parser.
func loadFixture(path string) ([]recommend.Book, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}

	var entries []fixtureBook
	if err := k.Unmarshal("books", &entries); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, errEmptyFixture
	}

	books := make([]recommend.Book, 0, len(entries))
	for i := range entries {
		if verr := validation.ValidateStruct(&entries[i]); verr != nil {
			return nil, fmt.Errorf("book %d (%q): %w", i, entries[i].Title, verr)
		}
		books = append(books, entries[i].toBook())
	}
	return books, nil
}

func (f *fixtureBook) toBook() recommend.Book {
	return recommend.Book{
		Title:        strings.TrimSpace(f.Title),
		Author:       strings.TrimSpace(f.Author),
		Genre:        strings.TrimSpace(f.Genre),
		Categories:   f.Categories,
		Themes:       f.Themes,
		Language:     strings.ToLower(strings.TrimSpace(f.Language)),
		Year:         f.Year,
		AccessCount:  f.AccessCount,
		SaleCount:    f.SaleCount,
		Featured:     f.Featured,
		DisplayOrder: f.DisplayOrder,
		CoverURL:     f.CoverURL,
	}
}
