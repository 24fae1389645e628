// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/shelf"
)

// defaultRequestTimeout bounds a single recommendation request.
const defaultRequestTimeout = 10 * time.Second

// Recommender serves recommendations; *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	RecommendMixed(ctx context.Context, userID int64, limit int) (*recommend.MixedRecommendations, error)
	PersonalizedShelf(ctx context.Context, userID int64, size int) (*recommend.PersonalizedShelf, error)
}

// ShelfService applies shelf mutations; *shelf.Service implements it.
type ShelfService interface {
	AddBook(ctx context.Context, userID, bookID int64, s recommend.ShelfType) (recommend.ShelfEntry, error)
	MoveBook(ctx context.Context, userID, bookID int64, s recommend.ShelfType) (recommend.ShelfEntry, error)
	CompleteReading(ctx context.Context, userID, bookID int64) (recommend.ShelfEntry, error)
	RemoveBook(ctx context.Context, userID, bookID int64) error
	UpdatePreferences(ctx context.Context, userID int64, interests string) error
	RecordBehavior(ctx context.Context, userID, bookID int64) error
}

var (
	_ Recommender  = (*recommend.Engine)(nil)
	_ ShelfService = (*shelf.Service)(nil)
)

// Pinger reports database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	engine         Recommender
	shelves        ShelfService
	db             Pinger
	breakerState   func() string
	cacheBackend   string
	externalOn     bool
	version        string
	requestTimeout time.Duration
	startTime      time.Time
	logger         zerolog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithPinger sets the database used by the health check.
func WithPinger(p Pinger) HandlerOption {
	return func(h *Handler) { h.db = p }
}

// WithExternal reports the external catalog in the health check. state
// returns the circuit breaker state.
func WithExternal(enabled bool, state func() string) HandlerOption {
	return func(h *Handler) {
		h.externalOn = enabled
		h.breakerState = state
	}
}

// WithCacheBackend names the cache backend in the health check.
func WithCacheBackend(name string) HandlerOption {
	return func(h *Handler) { h.cacheBackend = name }
}

// WithVersion sets the version reported by the health check.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// WithRequestTimeout bounds recommendation requests.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// NewHandler creates the API handlers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine Recommender, shelves ShelfService, logger zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:         engine,
		shelves:        shelves,
		version:        "dev",
		requestTimeout: defaultRequestTimeout,
		startTime:      time.Now(),
		logger:         logger.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
