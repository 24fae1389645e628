// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// parseRecommendationQuery reads the user ID and the limit (or size)
// parameter. A zero limit selects the engine default.
func parseRecommendationQuery(w http.ResponseWriter, r *http.Request, limitParam string) (models.RecommendationQuery, bool) {
	userID, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidID, "User ID must be a positive integer", nil)
		return models.RecommendationQuery{}, false
	}

	q := models.RecommendationQuery{
		UserID: userID,
		Limit:  getIntParam(r, limitParam, 0),
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return models.RecommendationQuery{}, false
	}
	return q, true
}

// GetRecommendations returns the flat, ranked recommendation list.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, ok := parseRecommendationQuery(w, r, "limit")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:    q.UserID,
		Limit:     q.Limit,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      resp.Metadata.CacheHit,
		},
	})
}

// GetMixedRecommendations returns recommendations split into local and
// external books.
func (h *Handler) GetMixedRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, ok := parseRecommendationQuery(w, r, "limit")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	mixed, err := h.engine.RecommendMixed(ctx, q.UserID, q.Limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, mixed, start)
}

// GetPersonalizedShelf returns the curated shelf view.
func (h *Handler) GetPersonalizedShelf(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, ok := parseRecommendationQuery(w, r, "size")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	view, err := h.engine.PersonalizedShelf(ctx, q.UserID, q.Limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, view, start)
}
