// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"fmt"
)

func (db *DB) createTables(ctx context.Context) error {
	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the table creation SQL statements.
// There are no secondary indexes: DuckDB rejects ON CONFLICT updates of
// indexed columns, and primary keys cover every point lookup.
func tableCreationQueries() []string {
	return []string{
		// Catalog. categories and themes hold ", "-joined normalized lists.
		`CREATE TABLE IF NOT EXISTS books (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			categories TEXT NOT NULL DEFAULT '',
			themes TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			year INTEGER NOT NULL DEFAULT 0,
			access_count BIGINT NOT NULL DEFAULT 0,
			sale_count BIGINT NOT NULL DEFAULT 0,
			featured BOOLEAN NOT NULL DEFAULT false,
			display_order INTEGER NOT NULL DEFAULT 0,
			cover_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		// One shelf per (user, book); moving a book replaces its shelf.
		`CREATE TABLE IF NOT EXISTS shelf_entries (
			user_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			shelf TEXT NOT NULL,
			added_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, book_id)
		)`,

		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id BIGINT PRIMARY KEY,
			interests TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL
		)`,
	}
}
