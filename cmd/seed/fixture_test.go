// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/shelfwise/internal/config"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		wantCount int
		wantFirst string
		wantLang  string
	}{
		{name: "yaml", path: "testdata/books.yaml", wantCount: 6, wantFirst: "Dom Casmurro", wantLang: "pt"},
		{name: "json", path: "testdata/books.json", wantCount: 2, wantFirst: "Vidas Secas", wantLang: "pt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			books, err := loadFixture(tt.path)
			if err != nil {
				t.Fatalf("loadFixture() error = %v", err)
			}
			if len(books) != tt.wantCount {
				t.Fatalf("len(books) = %d, want %d", len(books), tt.wantCount)
			}
			if books[0].Title != tt.wantFirst {
				t.Errorf("first title = %q, want %q", books[0].Title, tt.wantFirst)
			}
			if books[0].Language != tt.wantLang {
				t.Errorf("first language = %q, want %q", books[0].Language, tt.wantLang)
			}
		})
	}
}

func TestLoadFixtureFields(t *testing.T) {
	t.Parallel()

	books, err := loadFixture("testdata/books.yaml")
	if err != nil {
		t.Fatalf("loadFixture() error = %v", err)
	}
	b := books[0]
	if b.Author != "Machado de Assis" || b.Year != 1899 || !b.Featured {
		t.Errorf("book = %+v", b)
	}
	if len(b.Categories) != 2 || b.Categories[1] != "Literatura Brasileira" {
		t.Errorf("Categories = %v", b.Categories)
	}
	if b.AccessCount != 1200 || b.SaleCount != 85 {
		t.Errorf("counts = %d/%d, want 1200/85", b.AccessCount, b.SaleCount)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "no books", content: "books: []\n", wantErr: errEmptyFixture},
		{name: "missing key", content: "other: 1\n", wantErr: errEmptyFixture},
		{name: "missing title", content: "books:\n  - author: A\n    language: pt\n"},
		{name: "missing language", content: "books:\n  - title: T\n    author: A\n"},
		{name: "negative count", content: "books:\n  - title: T\n    author: A\n    language: pt\n    sale_count: -1\n"},
		{name: "bad cover url", content: "books:\n  - title: T\n    author: A\n    language: pt\n    cover_url: not a url\n"},
		{name: "malformed yaml", content: "books: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadFixture(writeFixture(t, tt.content))
			if err == nil {
				t.Fatal("loadFixture() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("loadFixture() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := loadFixture(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("loadFixture() error = nil, want error")
	}
}

func TestRunSeedsDatabase(t *testing.T) {
	t.Parallel()

	dbCfg := &config.DatabaseConfig{
		Path:      filepath.Join(t.TempDir(), "seed.duckdb"),
		MaxMemory: "256MB",
		Threads:   1,
	}
	if err := run(context.Background(), dbCfg, "testdata/books.yaml"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if err := run(context.Background(), dbCfg, "testdata/missing.yaml"); err == nil {
		t.Fatal("run() with missing fixture error = nil, want error")
	}
}
