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

	sq "github.com/Masterminds/squirrel"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// ErrShelfEntryNotFound is returned when a user has no entry for a book.
var ErrShelfEntryNotFound = errors.New("shelf entry not found")

var shelfColumns = []string{"user_id", "book_id", "shelf", "added_at"}

func scanShelfEntry(row rowScanner) (recommend.ShelfEntry, error) {
	var (
		e     recommend.ShelfEntry
		shelf string
	)
	if err := row.Scan(&e.UserID, &e.BookID, &shelf, &e.AddedAt); err != nil {
		return recommend.ShelfEntry{}, err
	}
	e.Shelf = recommend.ShelfType(shelf)
	return e, nil
}

// ListShelfEntries implements recommend.ShelfStore. Entries are ordered
// newest first.
func (db *DB) ListShelfEntries(ctx context.Context, userID int64) ([]recommend.ShelfEntry, error) {
	query, args, err := builder.Select(shelfColumns...).
		From("shelf_entries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("added_at DESC", "book_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build shelf query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shelf entries for user %d: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]recommend.ShelfEntry, 0)
	for rows.Next() {
		e, err := scanShelfEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shelf entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shelf entries: %w", err)
	}
	return entries, nil
}

// GetShelfEntry returns the entry of userID for bookID or ErrShelfEntryNotFound.
func (db *DB) GetShelfEntry(ctx context.Context, userID, bookID int64) (recommend.ShelfEntry, error) {
	query, args, err := builder.Select(shelfColumns...).
		From("shelf_entries").
		Where(sq.Eq{"user_id": userID, "book_id": bookID}).
		ToSql()
	if err != nil {
		return recommend.ShelfEntry{}, fmt.Errorf("build shelf entry query: %w", err)
	}

	e, err := scanShelfEntry(db.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.ShelfEntry{}, ErrShelfEntryNotFound
	}
	if err != nil {
		return recommend.ShelfEntry{}, fmt.Errorf("get shelf entry: %w", err)
	}
	return e, nil
}

// UpsertShelfEntry places a book on a shelf, replacing any previous shelf
// for the same (user, book) pair.
//
//nolint:gocritic // hugeParam: entry passed by value for immutability
func (db *DB) UpsertShelfEntry(ctx context.Context, e recommend.ShelfEntry) error {
	if !e.Shelf.Valid() {
		return fmt.Errorf("invalid shelf type %q", e.Shelf)
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = db.now().UTC()
	}

	query, args, err := builder.Insert("shelf_entries").
		Columns(shelfColumns...).
		Values(e.UserID, e.BookID, string(e.Shelf), e.AddedAt).
		Suffix("ON CONFLICT (user_id, book_id) DO UPDATE SET shelf = EXCLUDED.shelf, added_at = EXCLUDED.added_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build shelf upsert: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert shelf entry user=%d book=%d: %w", e.UserID, e.BookID, err)
	}
	return nil
}

// DeleteShelfEntry removes a book from a user's shelves.
func (db *DB) DeleteShelfEntry(ctx context.Context, userID, bookID int64) error {
	query, args, err := builder.Delete("shelf_entries").
		Where(sq.Eq{"user_id": userID, "book_id": bookID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build shelf delete: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete shelf entry user=%d book=%d: %w", userID, bookID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrShelfEntryNotFound
	}
	return nil
}
