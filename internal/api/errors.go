// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/shelf"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// API error codes.
const (
	CodeValidation     = validation.CodeValidationError
	CodeInvalidID      = "INVALID_ID"
	CodeInvalidBody    = "INVALID_BODY"
	CodeBookNotFound   = "BOOK_NOT_FOUND"
	CodeNotOnShelf     = "NOT_ON_SHELF"
	CodeAlreadyShelved = "ALREADY_ON_SHELF"
	CodeRateLimited    = "RATE_LIMITED"
	CodeTimeout        = "TIMEOUT"
	CodeInternal       = "INTERNAL_ERROR"
)

// respondServiceError maps errors from the engine and the shelf service to
// HTTP responses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shelf.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, recommend.ErrNotFound):
		respondError(w, http.StatusNotFound, CodeBookNotFound, "Book not found", nil)
	case errors.Is(err, shelf.ErrNotOnShelf):
		respondError(w, http.StatusNotFound, CodeNotOnShelf, "Book is not on any shelf", nil)
	case errors.Is(err, shelf.ErrAlreadyOnShelf):
		respondError(w, http.StatusConflict, CodeAlreadyShelved, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, CodeTimeout, "Request timed out", err)
	default:
		respondError(w, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}
