// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (recommend.Book, error) {
	var (
		b          recommend.Book
		categories string
		themes     string
	)
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Genre, &categories, &themes, &b.Language, &b.Year,
		&b.AccessCount, &b.SaleCount, &b.Featured, &b.DisplayOrder, &b.CoverURL, &b.CreatedAt,
	)
	if err != nil {
		return recommend.Book{}, err
	}
	b.Categories = catalog.NormalizeCategories(categories)
	b.Themes = catalog.SplitThemes(themes)
	return b, nil
}

// Filter implements recommend.Catalog.
func (db *DB) Filter(ctx context.Context, q recommend.Query) ([]recommend.Book, error) {
	query, args, err := buildFilterQuery(&q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filter query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := make([]recommend.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// Get implements recommend.Catalog.
func (db *DB) Get(ctx context.Context, id int64) (recommend.Book, error) {
	query, args, err := builder.Select(bookColumns...).From("books").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return recommend.Book{}, fmt.Errorf("build get query: %w", err)
	}

	b, err := scanBook(db.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.Book{}, fmt.Errorf("book %d: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return recommend.Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

// UpsertBook inserts b, or replaces the book with the same ID. A zero ID
// allocates the next free one. The stored ID is returned.
//
//nolint:gocritic // hugeParam: book passed by value for immutability
func (db *DB) UpsertBook(ctx context.Context, b recommend.Book) (int64, error) {
	return upsertBook(ctx, db.conn, db, &b)
}

// InsertBooks upserts books in a single transaction and returns their IDs.
func (db *DB) InsertBooks(ctx context.Context, books []recommend.Book) ([]int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(books))
	for i := range books {
		b := books[i]
		id, err := upsertBook(ctx, tx, db, &b)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit books: %w", err)
	}
	return ids, nil
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func upsertBook(ctx context.Context, q queryRower, db *DB, b *recommend.Book) (int64, error) {
	catalog.NormalizeBook(b)
	if b.Title == "" {
		return 0, fmt.Errorf("book title is required")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = db.now().UTC()
	}

	// New IDs continue from the current maximum; fixtures may carry explicit IDs.
	if b.ID == 0 {
		if err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM books").Scan(&b.ID); err != nil {
			return 0, fmt.Errorf("allocate book id: %w", err)
		}
	}

	columns := bookColumns
	values := []any{
		b.ID, b.Title, b.Author, b.Genre,
		catalog.JoinList(b.Categories), catalog.JoinList(b.Themes),
		b.Language, b.Year, b.AccessCount, b.SaleCount, b.Featured,
		b.DisplayOrder, b.CoverURL, b.CreatedAt,
	}

	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != "id" && c != "created_at" {
			sets = append(sets, c+" = EXCLUDED."+c)
		}
	}

	query, args, err := builder.Insert("books").
		Columns(columns...).
		Values(values...).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ") + " RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert: %w", err)
	}

	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert book %q: %w", b.Title, err)
	}
	return id, nil
}

// IncrementAccess bumps a book's access counter.
func (db *DB) IncrementAccess(ctx context.Context, bookID int64) error {
	query, args, err := builder.Update("books").
		Set("access_count", sq.Expr("access_count + 1")).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build access update: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment access for book %d: %w", bookID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("book %d: %w", bookID, recommend.ErrNotFound)
	}
	return nil
}

// CountBooks returns the catalog size.
func (db *DB) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}
