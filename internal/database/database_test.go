// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// testDBSemaphore limits concurrent DuckDB instances. DuckDB CGO calls can
// exhaust memory when many in-memory databases are open at once.
var testDBSemaphore = make(chan struct{}, 2)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var testEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// seedBooks inserts a small catalog with explicit IDs 1..n.
func seedBooks(t *testing.T, db *DB) []recommend.Book {
	t.Helper()

	books := []recommend.Book{
		{ID: 1, Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", Categories: []string{"Fiction", "Adventure"}, Themes: []string{"quest", "dragons"}, Language: "en", Year: 1937, SaleCount: 50, AccessCount: 300, DisplayOrder: 2},
		{ID: 2, Title: "Dom Casmurro", Author: "Machado de Assis", Genre: "Romance", Categories: []string{"['Literatura Brasileira', 'Clássicos']"}, Language: "pt-BR", Year: 1899, SaleCount: 80, AccessCount: 100, DisplayOrder: 1},
		{ID: 3, Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Categories: []string{"Fiction"}, Themes: []string{"desert, politics"}, Language: "en", Year: 1965, SaleCount: 80, AccessCount: 500},
		{ID: 4, Title: "Unsold Draft", Author: "Nobody", Genre: "Fantasy", Language: "es"},
		{ID: 5, Title: "Featured Poems", Author: "Cecília Meireles", Genre: "Poesia", Language: "pt", Featured: true},
	}
	for i := range books {
		books[i].CreatedAt = testEpoch.Add(time.Duration(i) * time.Hour)
	}

	if _, err := db.InsertBooks(context.Background(), books); err != nil {
		t.Fatalf("InsertBooks() error = %v", err)
	}
	return books
}

func bookIDList(books []recommend.Book) []int64 {
	ids := make([]int64, len(books))
	for i := range books {
		ids[i] = books[i].ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew_InMemory(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	n, err := db.CountBooks(context.Background())
	if err != nil {
		t.Fatalf("CountBooks() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountBooks() = %d, want 0", n)
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	seedBooks(t, db)
	ctx := context.Background()

	b, err := db.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get(2) error = %v", err)
	}
	if b.Title != "Dom Casmurro" || b.Language != "pt-BR" || b.Year != 1899 {
		t.Errorf("Get(2) = %+v", b)
	}
	if len(b.Categories) != 2 || b.Categories[0] != "Literatura Brasileira" || b.Categories[1] != "Clássicos" {
		t.Errorf("categories not normalized: %q", b.Categories)
	}
	if !b.CreatedAt.Equal(testEpoch.Add(time.Hour)) {
		t.Errorf("CreatedAt = %v, want %v", b.CreatedAt, testEpoch.Add(time.Hour))
	}

	b, err = db.Get(ctx, 3)
	if err != nil {
		t.Fatalf("Get(3) error = %v", err)
	}
	if len(b.Themes) != 2 || b.Themes[0] != "desert" || b.Themes[1] != "politics" {
		t.Errorf("themes not split: %q", b.Themes)
	}

	_, err = db.Get(ctx, 999)
	if !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("Get(999) error = %v, want ErrNotFound", err)
	}
}

func TestUpsertBook(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.UpsertBook(ctx, recommend.Book{Title: "  Fresh Title  ", Genre: "Mystery"})
	if err != nil {
		t.Fatalf("UpsertBook() error = %v", err)
	}
	if id == 0 {
		t.Fatal("UpsertBook() returned zero ID")
	}

	again, err := db.UpsertBook(ctx, recommend.Book{ID: id, Title: "Renamed", Genre: "Thriller", SaleCount: 7})
	if err != nil {
		t.Fatalf("UpsertBook(replace) error = %v", err)
	}
	if again != id {
		t.Errorf("replace returned ID %d, want %d", again, id)
	}

	b, err := db.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if b.Title != "Renamed" || b.Genre != "Thriller" || b.SaleCount != 7 {
		t.Errorf("book not replaced: %+v", b)
	}

	if _, err := db.UpsertBook(ctx, recommend.Book{Title: "   "}); err == nil {
		t.Error("UpsertBook() with blank title should fail")
	}
}

func TestIncrementAccess(t *testing.T) {
	db := setupTestDB(t)
	seedBooks(t, db)
	ctx := context.Background()

	if err := db.IncrementAccess(ctx, 4); err != nil {
		t.Fatalf("IncrementAccess() error = %v", err)
	}
	b, _ := db.Get(ctx, 4)
	if b.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", b.AccessCount)
	}

	if err := db.IncrementAccess(ctx, 999); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("IncrementAccess(999) error = %v, want ErrNotFound", err)
	}
}
