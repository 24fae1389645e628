// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/metrics"
)

const defaultStatsInterval = 5 * time.Minute

// BookCounter counts the books in the local catalog; *database.DB implements it.
type BookCounter interface {
	CountBooks(ctx context.Context) (int, error)
}

// CatalogStatsService periodically publishes the catalog size gauge.
type CatalogStatsService struct {
	counter  BookCounter
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCatalogStatsService creates the service. A non-positive interval
// defaults to five minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCatalogStatsService(counter BookCounter, interval time.Duration, logger zerolog.Logger) *CatalogStatsService {
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return &CatalogStatsService{
		counter:  counter,
		interval: interval,
		logger:   logger.With().Str("service", "catalog-stats").Logger(),
		name:     "catalog-stats",
	}
}

// Serve implements suture.Service. Count failures are logged and retried on
// the next tick; they never stop the service.
func (s *CatalogStatsService) Serve(ctx context.Context) error {
	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *CatalogStatsService) refresh(ctx context.Context) {
	n, err := s.counter.CountBooks(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("failed to count catalog books")
		}
		return
	}
	metrics.SetCatalogSize(int64(n))
	s.logger.Debug().Int("books", n).Msg("catalog size refreshed")
}

// String implements fmt.Stringer.
func (s *CatalogStatsService) String() string {
	return s.name
}
