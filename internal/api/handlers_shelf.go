// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

func toEntryResponse(e *recommend.ShelfEntry) models.ShelfEntryResponse {
	resp := models.ShelfEntryResponse{
		UserID: e.UserID,
		BookID: e.BookID,
		Shelf:  string(e.Shelf),
	}
	if !e.AddedAt.IsZero() {
		resp.AddedAt = e.AddedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// userAndBook parses the {id} and {bookID} path parameters.
func userAndBook(w http.ResponseWriter, r *http.Request) (userID, bookID int64, ok bool) {
	userID, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidID, "User ID must be a positive integer", nil)
		return 0, 0, false
	}
	bookID, err = idParam(r, "bookID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidID, "Book ID must be a positive integer", nil)
		return 0, 0, false
	}
	return userID, bookID, true
}

// decodeAndValidate decodes the body into dst and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSONBody(r, dst); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidBody, "Request body must be a valid JSON object", nil)
		return false
	}
	if apiErr := validateRequest(dst); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return false
	}
	return true
}

// AddBook places a book on one of the user's shelves.
func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidID, "User ID must be a positive integer", nil)
		return
	}

	var req models.AddBookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.shelves.AddBook(r.Context(), userID, req.BookID, recommend.ShelfType(req.Shelf))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, toEntryResponse(&entry), start)
}

// MoveBook moves a shelved book to another shelf.
func (h *Handler) MoveBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, bookID, ok := userAndBook(w, r)
	if !ok {
		return
	}

	var req models.MoveBookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.shelves.MoveBook(r.Context(), userID, bookID, recommend.ShelfType(req.Shelf))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, toEntryResponse(&entry), start)
}

// CompleteReading marks a book as read.
func (h *Handler) CompleteReading(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, bookID, ok := userAndBook(w, r)
	if !ok {
		return
	}

	entry, err := h.shelves.CompleteReading(r.Context(), userID, bookID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, toEntryResponse(&entry), start)
}

// RemoveBook takes a book off the user's shelves.
func (h *Handler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := userAndBook(w, r)
	if !ok {
		return
	}

	if err := h.shelves.RemoveBook(r.Context(), userID, bookID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePreferences replaces the user's free-text interests.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidID, "User ID must be a positive integer", nil)
		return
	}

	var req models.PreferencesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.shelves.UpdatePreferences(r.Context(), userID, req.Interests); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordView records that the user opened a book.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := userAndBook(w, r)
	if !ok {
		return
	}

	if err := h.shelves.RecordBehavior(r.Context(), userID, bookID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
