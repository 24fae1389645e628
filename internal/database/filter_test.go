// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"strings"
	"testing"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

func TestBuildFilterQuery_SQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		query        recommend.Query
		wantContains []string
		wantArgs     int
	}{
		{
			name:         "no predicate",
			query:        recommend.Query{},
			wantContains: []string{"FROM books", "ORDER BY id ASC"},
		},
		{
			name: "conditions are or-ed",
			query: recommend.Query{Any: []recommend.Condition{
				recommend.Equals(recommend.FieldGenre, "Fantasy"),
				recommend.Contains(recommend.FieldAuthor, "Tolkien"),
			}},
			wantContains: []string{"(lower(trim(genre)) = ? OR contains(lower(trim(author)), ?))"},
			wantArgs:     2,
		},
		{
			name:         "exact category matches a list element",
			query:        recommend.Query{Any: []recommend.Condition{recommend.Equals(recommend.FieldCategory, "Fiction")}},
			wantContains: []string{"list_contains(string_split(lower(categories), ', '), ?)"},
			wantArgs:     1,
		},
		{
			name:         "blank conditions never match",
			query:        recommend.Query{Any: []recommend.Condition{recommend.Equals(recommend.FieldGenre, "  ")}},
			wantContains: []string{"1=0"},
		},
		{
			name: "exclusions and limit",
			query: recommend.Query{
				ExcludeIDs:       []int64{1, 2},
				ExcludeLanguages: []string{"EN"},
				OrderBy:          []recommend.SortKey{recommend.SortSalesDesc, recommend.SortAccessesDesc},
				Limit:            5,
			},
			wantContains: []string{
				"id NOT IN (?,?)",
				"NOT (",
				"lower(trim(language)) IN (?,?,?,?,?,?,?,?,?)",
				"starts_with(lower(trim(language)), ?)",
				"ORDER BY sale_count DESC, access_count DESC, id ASC",
				"LIMIT 5",
			},
			// 2 ids, 9 English spellings, 2 region prefixes for each of the 5 bare spellings.
			wantArgs: 21,
		},
		{
			name:         "unknown language matches its region variants",
			query:        recommend.Query{Languages: []string{"DE"}},
			wantContains: []string{"lower(trim(language)) IN (?)", "starts_with(lower(trim(language)), ?)"},
			wantArgs:     3,
		},
		{
			name:         "blank language restriction never matches",
			query:        recommend.Query{Languages: []string{" "}},
			wantContains: []string{"1=0"},
		},
		{
			name:         "random order is seeded and limited in SQL",
			query:        recommend.Query{OrderBy: []recommend.SortKey{recommend.SortRandom}, Limit: 3, Seed: 7},
			wantContains: []string{"ORDER BY hash(id, CAST(? AS BIGINT)), id ASC", "LIMIT 3"},
			wantArgs:     1,
		},
		{
			name: "random order breaks ties after other keys",
			query: recommend.Query{
				OrderBy: []recommend.SortKey{recommend.SortSalesDesc, recommend.SortRandom},
				Limit:   2,
			},
			wantContains: []string{"ORDER BY sale_count DESC, hash(id, CAST(? AS BIGINT)), id ASC", "LIMIT 2"},
			wantArgs:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sql, args, err := buildFilterQuery(&tt.query).ToSql()
			if err != nil {
				t.Fatalf("ToSql() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(sql, want) {
					t.Errorf("SQL %q missing %q", sql, want)
				}
			}
			if len(args) != tt.wantArgs {
				t.Errorf("got %d args %v, want %d", len(args), args, tt.wantArgs)
			}
		})
	}
}

// TestFilter_MatchesMemoryCatalog checks the SQL translation against the
// in-memory catalog, which evaluates the same predicates in Go.
func TestFilter_MatchesMemoryCatalog(t *testing.T) {
	db := setupTestDB(t)
	books := seedBooks(t, db)
	mem := catalog.NewMemoryCatalog(books...)
	ctx := context.Background()

	queries := map[string]recommend.Query{
		"all by id": {},
		"genre exact": {
			Any: []recommend.Condition{recommend.Equals(recommend.FieldGenre, "fantasy")},
		},
		"author contains": {
			Any: []recommend.Condition{recommend.Contains(recommend.FieldAuthor, "assis")},
		},
		"category exact is case-insensitive": {
			Any: []recommend.Condition{recommend.Equals(recommend.FieldCategory, "FICTION")},
		},
		"theme contains": {
			Any: []recommend.Condition{recommend.Contains(recommend.FieldTheme, "polit")},
		},
		"title or language": {
			Any: []recommend.Condition{
				recommend.Contains(recommend.FieldTitle, "dune"),
				recommend.Equals(recommend.FieldLanguage, "pt"),
			},
		},
		"ids with exclusions": {
			IDs:        []int64{1, 2, 3},
			ExcludeIDs: []int64{2},
		},
		"exclude languages": {
			ExcludeLanguages: []string{"en", "pt-br"},
		},
		"popular ordered": {
			OnlyPopular: true,
			OrderBy:     []recommend.SortKey{recommend.SortSalesDesc, recommend.SortAccessesDesc, recommend.SortDisplayOrderAsc, recommend.SortCreatedDesc},
		},
		"limited by creation": {
			OrderBy: []recommend.SortKey{recommend.SortCreatedDesc},
			Limit:   2,
		},
	}

	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			got, err := db.Filter(ctx, q)
			if err != nil {
				t.Fatalf("DB.Filter() error = %v", err)
			}
			want, err := mem.Filter(ctx, q)
			if err != nil {
				t.Fatalf("MemoryCatalog.Filter() error = %v", err)
			}
			if !equalIDs(bookIDList(got), bookIDList(want)) {
				t.Errorf("DB.Filter() = %v, MemoryCatalog.Filter() = %v", bookIDList(got), bookIDList(want))
			}
		})
	}
}

func TestFilter_PopularOrder(t *testing.T) {
	db := setupTestDB(t)
	seedBooks(t, db)

	got, err := db.Filter(context.Background(), recommend.Query{
		OnlyPopular: true,
		OrderBy:     []recommend.SortKey{recommend.SortSalesDesc, recommend.SortAccessesDesc},
	})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	// 3 and 2 tie on sales; 3 has more accesses. 4 is unpopular.
	want := []int64{3, 2, 1, 5}
	if !equalIDs(bookIDList(got), want) {
		t.Errorf("Filter() = %v, want %v", bookIDList(got), want)
	}
}

func TestFilter_SeededRandom(t *testing.T) {
	db := setupTestDB(t)
	books := seedBooks(t, db)
	ctx := context.Background()

	q := recommend.Query{OrderBy: []recommend.SortKey{recommend.SortRandom}, Limit: 3, Seed: 42}
	first, err := db.Filter(ctx, q)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	second, err := db.Filter(ctx, q)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("Filter() returned %d books, want 3", len(first))
	}
	if !equalIDs(bookIDList(first), bookIDList(second)) {
		t.Errorf("same seed gave %v then %v", bookIDList(first), bookIDList(second))
	}

	all, err := db.Filter(ctx, recommend.Query{OrderBy: []recommend.SortKey{recommend.SortRandom}, Seed: 42})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(all) != len(books) {
		t.Fatalf("unlimited random Filter() returned %d books, want %d", len(all), len(books))
	}
	if !equalIDs(bookIDList(all[:3]), bookIDList(first)) {
		t.Errorf("limited page %v is not the prefix of the full order %v", bookIDList(first), bookIDList(all))
	}
}

// TestFilter_LanguageRegionVariants checks that language filters match
// region-suffixed codes the same way in SQL and in memory.
func TestFilter_LanguageRegionVariants(t *testing.T) {
	db := setupTestDB(t)
	books := seedBooks(t, db)
	ctx := context.Background()

	extra := []recommend.Book{
		{ID: 10, Title: "Anne of Green Gables", Author: "L. M. Montgomery", Genre: "Classic", Language: "en-CA", CreatedAt: testEpoch},
		{ID: 11, Title: "Der Prozess", Author: "Franz Kafka", Genre: "Classic", Language: "de-DE", CreatedAt: testEpoch},
		{ID: 12, Title: "Faust", Author: "Goethe", Genre: "Classic", Language: "de", CreatedAt: testEpoch},
		{ID: 13, Title: "Dexter", Author: "Nobody", Genre: "Classic", Language: "dex", CreatedAt: testEpoch},
	}
	if _, err := db.InsertBooks(ctx, extra); err != nil {
		t.Fatalf("InsertBooks() error = %v", err)
	}
	mem := catalog.NewMemoryCatalog(append(books, extra...)...)

	tests := []struct {
		name  string
		query recommend.Query
		want  []int64
	}{
		{
			name:  "excluding en drops en-CA",
			query: recommend.Query{IDs: []int64{1, 3, 10, 11}, ExcludeLanguages: []string{"en"}},
			want:  []int64{11},
		},
		{
			name:  "excluding de drops de-DE but not dex",
			query: recommend.Query{IDs: []int64{11, 12, 13}, ExcludeLanguages: []string{"de"}},
			want:  []int64{13},
		},
		{
			name:  "restricting to de keeps regional German",
			query: recommend.Query{Languages: []string{"de"}},
			want:  []int64{11, 12},
		},
		{
			name:  "exact language condition matches region variants",
			query: recommend.Query{Any: []recommend.Condition{recommend.Equals(recommend.FieldLanguage, "english")}},
			want:  []int64{1, 3, 10},
		},
		{
			name:  "portuguese spellings collapse",
			query: recommend.Query{Languages: []string{"Português"}},
			want:  []int64{2, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Filter(ctx, tt.query)
			if err != nil {
				t.Fatalf("DB.Filter() error = %v", err)
			}
			if !equalIDs(bookIDList(got), tt.want) {
				t.Errorf("DB.Filter() = %v, want %v", bookIDList(got), tt.want)
			}
			fromMemory, err := mem.Filter(ctx, tt.query)
			if err != nil {
				t.Fatalf("MemoryCatalog.Filter() error = %v", err)
			}
			if !equalIDs(bookIDList(fromMemory), tt.want) {
				t.Errorf("MemoryCatalog.Filter() = %v, want %v", bookIDList(fromMemory), tt.want)
			}
		})
	}
}
