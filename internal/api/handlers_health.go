// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/models"
)

const healthPingTimeout = 2 * time.Second

// Health reports service health. The status is "degraded" when the database
// does not answer a ping; an open external breaker is reported but does not
// degrade the service since recommendations fall back to local providers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := false
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		dbConnected = h.db.Ping(ctx) == nil
		cancel()
	}

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:            status,
		Version:           h.version,
		DatabaseConnected: dbConnected,
		CacheBackend:      h.cacheBackend,
		ExternalEnabled:   h.externalOn,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.externalOn && h.breakerState != nil {
		health.ExternalBreaker = h.breakerState()
	}

	code := http.StatusOK
	if !dbConnected {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}
