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
)

// InterestText implements recommend.ProfileStore. Users without a profile
// have no interests.
func (db *DB) InterestText(ctx context.Context, userID int64) (string, error) {
	query, args, err := builder.Select("interests").
		From("user_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build profile query: %w", err)
	}

	var interests string
	err = db.conn.QueryRowContext(ctx, query, args...).Scan(&interests)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get interests for user %d: %w", userID, err)
	}
	return interests, nil
}

// SetInterests replaces the free-text interests of a user.
func (db *DB) SetInterests(ctx context.Context, userID int64, interests string) error {
	query, args, err := builder.Insert("user_profiles").
		Columns("user_id", "interests", "updated_at").
		Values(userID, interests, db.now().UTC()).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET interests = EXCLUDED.interests, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build profile upsert: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set interests for user %d: %w", userID, err)
	}
	return nil
}
