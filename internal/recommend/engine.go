// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Operation names reported to the Observer.
const (
	OperationRecommend         = "recommend"
	OperationMixed             = "mixed"
	OperationPersonalizedShelf = "personalized_shelf"
)

// popularOrder ranks globally popular books.
var popularOrder = []SortKey{SortSalesDesc, SortAccessesDesc, SortDisplayOrderAsc, SortCreatedDesc}

// Dependencies are the collaborators of the Engine. Shelves and Catalog are
// required; everything else is optional.
type Dependencies struct {
	Shelves  ShelfStore
	Catalog  Catalog
	Profiles ProfileStore
	Cache    CacheStore
	External ExternalSource
	Observer Observer

	// Now overrides the clock used for recency and cache freshness.
	Now func() time.Time
}

// Engine composes providers, external search and caching behind the three
// public operations. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	shelves  ShelfStore
	catalog  Catalog
	profiles ProfileStore
	external ExternalSource
	cache    *ResultCache
	observer Observer
	now      func() time.Time

	providers []Provider
	provMu    sync.RWMutex

	requestCount  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	fallbackCount atomic.Int64
	errorCount    atomic.Int64
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Shelves == nil {
		return nil, errors.New("shelf store is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}

	cfg = cfg.Clone()
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	observer := deps.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	logger = logger.With().Str("component", "recommend").Logger()
	cache := NewResultCache(deps.Cache, cfg.Cache, logger, observer)
	cache.now = now

	return &Engine{
		config:   cfg,
		logger:   logger,
		shelves:  deps.Shelves,
		catalog:  deps.Catalog,
		profiles: deps.Profiles,
		external: deps.External,
		cache:    cache,
		observer: observer,
		now:      now,
	}, nil
}

// RegisterProvider appends a provider. Registration order is the fixed
// order in which provider results are consumed.
func (e *Engine) RegisterProvider(p Provider) {
	e.provMu.Lock()
	defer e.provMu.Unlock()

	e.providers = append(e.providers, p)
	e.logger.Info().
		Str("provider", p.Name()).
		Msg("registered provider")
}

// SetExternalSource sets the external candidate source.
func (e *Engine) SetExternalSource(s ExternalSource) {
	e.provMu.Lock()
	defer e.provMu.Unlock()
	e.external = s
}

func (e *Engine) getProviders() ([]Provider, ExternalSource) {
	e.provMu.RLock()
	defer e.provMu.RUnlock()
	providers := make([]Provider, len(e.providers))
	copy(providers, e.providers)
	return providers, e.external
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// GetMetrics returns engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		Requests:    e.requestCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
		Fallbacks:   e.fallbackCount.Load(),
		Errors:      e.errorCount.Load(),
	}
}

// Recommend returns a ranked, exclusion-filtered list of books for a user.
// Failures inside the pipeline are converted into a popular fallback list;
// an error is only returned when that fallback cannot be served either.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	return e.recommendOp(ctx, req, OperationRecommend)
}

// RecommendMixed returns recommendations split into local and external books.
func (e *Engine) RecommendMixed(ctx context.Context, userID int64, limit int) (*MixedRecommendations, error) {
	resp, err := e.recommendOp(ctx, Request{UserID: userID, Limit: limit}, OperationMixed)
	if err != nil {
		return nil, err
	}
	mixed := SplitMixed(resp.Items)
	return &mixed, nil
}

// PersonalizedShelf returns the curated shelf view for a user.
func (e *Engine) PersonalizedShelf(ctx context.Context, userID int64, size int) (*PersonalizedShelf, error) {
	resp, err := e.recommendOp(ctx, Request{UserID: userID, Limit: size}, OperationPersonalizedShelf)
	if err != nil {
		return nil, err
	}
	shelf := BuildPersonalizedShelf(resp.Items)
	return &shelf, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommendOp(ctx context.Context, req Request, op string) (resp *Response, err error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req, op)

	defer func() {
		if r := recover(); r != nil {
			e.errorCount.Add(1)
			logger.Error().Interface("panic", r).Msg("recommendation pipeline panicked, serving fallback")
			resp, err = e.fallbackResponse(ctx, req, start, logger)
		}
		if resp != nil {
			e.observer.ObserveRequest(op, time.Since(start), resp.Metadata.CacheHit, resp.Metadata.Fallback)
		}
	}()

	resp, err = e.recommend(ctx, req, start, logger)
	if err != nil {
		e.errorCount.Add(1)
		logger.Warn().Err(err).Msg("personalization failed, serving fallback")
		return e.fallbackResponse(ctx, req, start, logger)
	}
	return resp, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.Limit <= 0 {
		req.Limit = e.config.Limits.DefaultLimit
	}
	if req.Limit > e.config.Limits.MaxLimit {
		req.Limit = e.config.Limits.MaxLimit
	}
	return req
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request, op string) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Str("operation", op).
		Logger()
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommend(ctx context.Context, req Request, start time.Time, logger zerolog.Logger) (*Response, error) {
	uc, err := e.loadUserContext(ctx, req.UserID, logger)
	if err != nil {
		return nil, err
	}

	weights := AdaptiveWeights(e.config, uc.Behavior, uc.Language)

	key := e.cache.RecommendationKey(uc, req.Limit)
	if rec, ok := e.cache.LoadRecommendations(ctx, key, uc.ShelfCount()); ok {
		e.cacheHits.Add(1)
		items := e.verifyExclusions(rec.Items, uc.Exclusions, req.Limit, logger)
		logger.Debug().Int("returned", len(items)).Msg("cache hit")
		return e.buildResponse(req, uc, items, rec.ProvidersUsed, rec.Weights, start, true, false), nil
	}
	if e.cache.enabled() {
		e.cacheMisses.Add(1)
	}

	items, used := e.compute(ctx, uc, req.Limit, weights, logger)

	fallback := false
	if len(items) == 0 {
		items, err = e.randomFallback(ctx, uc, req.Limit)
		if err != nil {
			return nil, fmt.Errorf("random fallback: %w", err)
		}
		fallback = true
		e.fallbackCount.Add(1)
	}

	items = e.verifyExclusions(items, uc.Exclusions, req.Limit, logger)
	e.cache.SaveRecommendations(ctx, key, uc.ShelfCount(), items, used, weights)

	resp := e.buildResponse(req, uc, items, used, weights, start, false, fallback)
	logger.Debug().
		Int("returned", len(items)).
		Int("external", resp.Metadata.ExternalCount).
		Strs("providers", used).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")
	return resp, nil
}

// loadUserContext loads the shelf (through the shelf cache), its books, the
// profile interests and the derived language and behavior profiles.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) loadUserContext(ctx context.Context, userID int64, logger zerolog.Logger) (*UserContext, error) {
	entries, ok := e.cache.LoadShelf(ctx, userID)
	if !ok {
		var err error
		entries, err = e.shelves.ListShelfEntries(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list shelf entries: %w", err)
		}
		e.cache.SaveShelf(ctx, userID, entries)
	}

	var books []Book
	if len(entries) > 0 {
		ids := ResolveExclusions(entries).IDs()
		var err error
		books, err = e.catalog.Filter(ctx, Query{IDs: ids, Limit: len(ids)})
		if err != nil {
			return nil, fmt.Errorf("load shelf books: %w", err)
		}
	}

	uc := NewUserContext(userID, entries, books, e.now())

	if e.profiles != nil {
		interests, err := e.profiles.InterestText(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load profile interests")
		}
		uc.Interests = interests
	}

	if lang, ok := e.cache.LoadLanguageProfile(ctx, uc); ok {
		uc.Language = lang
	} else {
		uc.Language = BuildLanguageProfile(uc.Shelf)
		e.cache.SaveLanguageProfile(ctx, uc, uc.Language)
	}
	uc.PreferredLanguages = uc.Language.PreferredLanguages(e.config.Language)

	if behavior, ok := e.cache.LoadBehavior(ctx, uc); ok {
		uc.Behavior = behavior
	} else {
		uc.Behavior = AnalyzeBehavior(uc.Shelf, e.config.Behavior)
		e.cache.SaveBehavior(ctx, uc, uc.Behavior)
	}

	return uc, nil
}

// compute blends external candidates and slot-bounded provider results.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) compute(ctx context.Context, uc *UserContext, limit int, weights Weights, logger zerolog.Logger) ([]Recommendation, []string) {
	providers, external := e.getProviders()
	collector := newCollector(uc.Exclusions, limit)
	var used []string

	if external != nil && e.config.External.Enabled {
		for _, b := range e.fetchExternal(ctx, external, uc, limit, logger) {
			collector.add(b, SourceExternal)
		}
		if collector.size() > 0 {
			used = append(used, string(SourceExternal))
		}
	}
	if collector.full() || len(providers) == 0 {
		return collector.items, used
	}

	slots := make([]int, len(providers))
	for i, p := range providers {
		slots[i] = SlotSize(limit, weights.For(p.Name()))
	}
	outcomes := e.runProviders(ctx, uc, providers, slots)

	for i, p := range providers {
		if collector.full() {
			break
		}
		out := outcomes[i]
		if out.err != nil {
			logger.Warn().
				Str("provider", p.Name()).
				Err(out.err).
				Msg("provider failed")
			continue
		}
		taken := 0
		for _, b := range out.books {
			if taken >= slots[i] || collector.full() {
				break
			}
			if collector.add(b, Source(p.Name())) {
				taken++
			}
		}
		if taken > 0 {
			used = append(used, p.Name())
		}
	}

	return collector.items, used
}

// SlotSize is the number of results a provider may contribute:
// ceil(limit × weight), at least 1.
func SlotSize(limit int, weight float64) int {
	// The epsilon keeps exact products like 20×0.15 from rounding up.
	n := int(math.Ceil(float64(limit)*weight - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}

type providerOutcome struct {
	books []Book
	err   error
}

// runProviders runs every provider concurrently and joins them. Each
// provider is bounded by its own deadline and contained on panic.
func (e *Engine) runProviders(ctx context.Context, uc *UserContext, providers []Provider, slots []int) []providerOutcome {
	outcomes := make([]providerOutcome, len(providers))
	var g errgroup.Group

	for i, p := range providers {
		n := slots[i] * e.config.Limits.Oversample
		rng := e.providerRNG(uc.UserID, i)
		g.Go(func() error {
			outcomes[i] = e.runProvider(ctx, uc, p, n, rng)
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

func (e *Engine) runProvider(ctx context.Context, uc *UserContext, p Provider, n int, rng *rand.Rand) providerOutcome {
	start := time.Now()
	pctx, cancel := context.WithTimeout(ctx, e.config.Limits.ProviderTimeout)
	defer cancel()

	done := make(chan providerOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- providerOutcome{err: fmt.Errorf("provider %s panicked: %v", p.Name(), r)}
			}
		}()
		books, err := p.Recommend(pctx, uc, n, rng)
		done <- providerOutcome{books: books, err: err}
	}()

	var out providerOutcome
	select {
	case out = <-done:
	case <-pctx.Done():
		out = providerOutcome{err: fmt.Errorf("provider %s: %w", p.Name(), pctx.Err())}
	}

	e.observer.ObserveProvider(p.Name(), time.Since(start), len(out.books), out.err)
	return out
}

// providerRNG returns a private random source for one provider call so that
// results are reproducible per user regardless of goroutine scheduling.
func (e *Engine) providerRNG(userID int64, idx int) *rand.Rand {
	seed := e.config.Seed + userID*7919 + int64(idx)*104729
	return rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for recommendation shuffling
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) fetchExternal(ctx context.Context, src ExternalSource, uc *UserContext, limit int, logger zerolog.Logger) (books []Book) {
	start := time.Now()
	ectx, cancel := context.WithTimeout(ctx, e.config.Limits.ExternalTimeout)
	defer cancel()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("external source panicked: %v", r)
			books = nil
		}
		if err != nil {
			logger.Warn().Err(err).Int("partial", len(books)).Msg("external search failed")
		}
		e.observer.ObserveProvider(string(SourceExternal), time.Since(start), len(books), err)
	}()

	books, err = src.Candidates(ectx, uc, limit)
	return books
}

// randomFallback returns a randomly ordered, exclusion-filtered catalog slice.
func (e *Engine) randomFallback(ctx context.Context, uc *UserContext, limit int) ([]Recommendation, error) {
	books, err := e.catalog.Filter(ctx, Query{
		ExcludeIDs: uc.Exclusions.IDs(),
		OrderBy:    []SortKey{SortRandom},
		Limit:      limit,
		Seed:       e.config.Seed + uc.UserID,
	})
	if err != nil {
		return nil, err
	}
	return tagBooks(uc.Exclusions.Filter(books), SourceFallback), nil
}

// fallbackResponse serves globally popular, exclusion-filtered books when
// the personalized pipeline failed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) fallbackResponse(ctx context.Context, req Request, start time.Time, logger zerolog.Logger) (*Response, error) {
	e.fallbackCount.Add(1)

	exclusions, err := NewExclusionResolver(e.shelves).Resolve(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("fallback exclusions: %w", err)
	}
	books, err := e.catalog.Filter(ctx, Query{
		ExcludeIDs: exclusions.IDs(),
		OrderBy:    popularOrder,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("popular fallback: %w", err)
	}

	items := e.verifyExclusions(tagBooks(books, SourceFallback), exclusions, req.Limit, logger)
	return &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			UserID:    req.UserID,
			Weights:   e.config.Weights.Normalize(),
			Fallback:  true,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: e.now(),
		},
	}, nil
}

// verifyExclusions drops any excluded or duplicate item and caps the list.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) verifyExclusions(items []Recommendation, exclusions ExclusionSet, limit int, logger zerolog.Logger) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		b := &items[i].Book
		if exclusions.Excludes(b) {
			logger.Warn().Int64("book_id", b.ID).Str("source", string(items[i].Source)).Msg("dropping shelved book from results")
			continue
		}
		k := b.dedupKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, items[i])
		if len(out) >= limit {
			break
		}
	}
	return out
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, uc *UserContext, items []Recommendation, used []string, weights Weights, start time.Time, cacheHit, fallback bool) *Response {
	external := 0
	for i := range items {
		if items[i].Book.Temporary {
			external++
		}
	}
	return &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:     req.RequestID,
			UserID:        req.UserID,
			ProvidersUsed: used,
			Weights:       weights,
			Behavior:      uc.Behavior,
			ExternalCount: external,
			CacheHit:      cacheHit,
			Fallback:      fallback,
			LatencyMS:     time.Since(start).Milliseconds(),
			Timestamp:     e.now(),
		},
	}
}

// collector accumulates deduplicated, non-excluded recommendations up to a limit.
type collector struct {
	exclusions ExclusionSet
	limit      int
	seen       map[string]struct{}
	items      []Recommendation
}

func newCollector(exclusions ExclusionSet, limit int) *collector {
	return &collector{
		exclusions: exclusions,
		limit:      limit,
		seen:       make(map[string]struct{}),
		items:      make([]Recommendation, 0, limit),
	}
}

//nolint:gocritic // hugeParam: Book copied into the result list
func (c *collector) add(b Book, src Source) bool {
	if c.full() || c.exclusions.Excludes(&b) {
		return false
	}
	k := b.dedupKey()
	if _, ok := c.seen[k]; ok {
		return false
	}
	c.seen[k] = struct{}{}
	c.items = append(c.items, Recommendation{Book: b, Source: src})
	return true
}

func (c *collector) size() int  { return len(c.items) }
func (c *collector) full() bool { return len(c.items) >= c.limit }

func tagBooks(books []Book, src Source) []Recommendation {
	items := make([]Recommendation, len(books))
	for i := range books {
		items[i] = Recommendation{Book: books[i], Source: src}
	}
	return items
}
