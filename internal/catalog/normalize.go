// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package catalog provides the book catalog boundary: normalization of raw
// catalog fields and an in-memory implementation of recommend.Catalog.
package catalog

import (
	"strings"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// NormalizeCategories turns a raw category value into a deduplicated list.
// It accepts plain values ("Fiction"), comma lists ("Fiction, Drama") and
// stringified list literals ("['Fiction', 'Drama']" or `["Fiction"]`).
func NormalizeCategories(raw string) []string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}
	return splitList(s, func(r rune) bool { return r == ',' || r == ';' })
}

// SplitThemes splits a comma-separated theme list.
func SplitThemes(raw string) []string {
	return splitList(raw, func(r rune) bool { return r == ',' })
}

// JoinList is the inverse of the list split used for storage.
func JoinList(values []string) string {
	return strings.Join(values, ", ")
}

func splitList(s string, sep func(rune) bool) []string {
	fields := strings.FieldsFunc(s, sep)
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		v := strings.Trim(strings.TrimSpace(f), `'"`)
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeBook cleans list fields that may still carry raw encodings.
func NormalizeBook(b *recommend.Book) {
	var cats []string
	for _, c := range b.Categories {
		cats = append(cats, NormalizeCategories(c)...)
	}
	b.Categories = dedupe(cats)

	var themes []string
	for _, t := range b.Themes {
		themes = append(themes, SplitThemes(t)...)
	}
	b.Themes = dedupe(themes)

	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Genre = strings.TrimSpace(b.Genre)
	b.Language = strings.TrimSpace(b.Language)
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
