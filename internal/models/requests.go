// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

// AddBookRequest places a book on a shelf.
type AddBookRequest struct {
	BookID int64  `json:"book_id" validate:"required,gt=0"`
	Shelf  string `json:"shelf" validate:"required,shelf"`
}

// MoveBookRequest moves a shelved book to another shelf.
type MoveBookRequest struct {
	Shelf string `json:"shelf" validate:"required,shelf"`
}

// PreferencesRequest replaces a user's free-text interests. An empty string
// clears them.
type PreferencesRequest struct {
	Interests string `json:"interests" validate:"max=2000"`
}

// RecommendationQuery holds the query parameters of the recommendation
// endpoints. Zero means the engine default; the engine clamps large values.
type RecommendationQuery struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
	Limit  int   `json:"limit" validate:"gte=0"`
}

// ShelfEntryResponse is the payload of shelf mutations that return an entry.
type ShelfEntryResponse struct {
	UserID  int64  `json:"user_id"`
	BookID  int64  `json:"book_id"`
	Shelf   string `json:"shelf"`
	AddedAt string `json:"added_at,omitempty"`
}
