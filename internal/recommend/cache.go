// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ContextFingerprint is the user context a cached set was computed for.
type ContextFingerprint struct {
	UserID     int64   `json:"user_id"`
	BookIDs    []int64 `json:"book_ids"`
	ShelfCount int     `json:"shelf_count"`
	Limit      int     `json:"limit,omitempty"`
	Language   string  `json:"language,omitempty"`
}

// Hash returns a compact stable digest of the fingerprint.
//
//nolint:gocritic // hugeParam: fingerprint passed by value for immutability
func (f ContextFingerprint) Hash() string {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Sprintf("%d:%d:%d", f.UserID, f.ShelfCount, f.Limit)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:16])
}

// RecommendationRecord is the cached payload of a computed set.
type RecommendationRecord struct {
	SchemaVersion int              `json:"schema_version"`
	ComputedAt    time.Time        `json:"computed_at"`
	ShelfCount    int              `json:"shelf_count"`
	Fingerprint   string           `json:"fingerprint"`
	Items         []Recommendation `json:"items"`
	ProvidersUsed []string         `json:"providers_used,omitempty"`
	Weights       Weights          `json:"weights"`
}

// profileRecord wraps shelf, language and behavior payloads.
type profileRecord struct {
	SchemaVersion int             `json:"schema_version"`
	ComputedAt    time.Time       `json:"computed_at"`
	Data          json.RawMessage `json:"data"`
}

// ResultCache stores computed recommendation sets and derived profiles.
// A nil store or a disabled config turns every operation into a miss or
// no-op; store errors are logged and degrade the same way.
type ResultCache struct {
	store    CacheStore
	cfg      CacheConfig
	logger   zerolog.Logger
	observer Observer
	now      func() time.Time
}

// NewResultCache creates a result cache over store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResultCache(store CacheStore, cfg CacheConfig, logger zerolog.Logger, observer Observer) *ResultCache {
	if observer == nil {
		observer = nopObserver{}
	}
	return &ResultCache{
		store:    store,
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommend_cache").Logger(),
		observer: observer,
		now:      time.Now,
	}
}

func (c *ResultCache) enabled() bool {
	return c != nil && c.store != nil && c.cfg.Enabled
}

// RecommendationKey derives the key for uc's recommendation set at limit.
func (c *ResultCache) RecommendationKey(uc *UserContext, limit int) string {
	fp := uc.Fingerprint()
	fp.Limit = limit
	if c != nil && c.cfg.LanguageAware {
		fp.Language = uc.Language.Fingerprint()
	}
	return cacheKey(NamespaceRecommendations, uc.UserID, fp.Hash())
}

// LoadRecommendations returns the cached record at key if it is still valid
// for a shelf of shelfCount entries.
func (c *ResultCache) LoadRecommendations(ctx context.Context, key string, shelfCount int) (*RecommendationRecord, bool) {
	if !c.enabled() {
		return nil, false
	}

	var rec RecommendationRecord
	if !c.get(ctx, NamespaceRecommendations, key, &rec) {
		return nil, false
	}

	reason := c.invalidReason(rec.SchemaVersion, rec.ComputedAt)
	if reason == "" {
		if delta := shelfCount - rec.ShelfCount; delta > c.cfg.ContextTolerance || -delta > c.cfg.ContextTolerance {
			reason = "context drift"
		}
	}
	if reason != "" {
		c.logger.Debug().Str("key", key).Str("reason", reason).Msg("discarding cached recommendations")
		c.observer.ObserveCache(NamespaceRecommendations, false)
		c.delete(ctx, key)
		return nil, false
	}

	c.observer.ObserveCache(NamespaceRecommendations, true)
	return &rec, true
}

// SaveRecommendations stores a computed set at key.
func (c *ResultCache) SaveRecommendations(ctx context.Context, key string, shelfCount int, items []Recommendation, providers []string, weights Weights) {
	if !c.enabled() {
		return
	}
	rec := RecommendationRecord{
		SchemaVersion: c.cfg.SchemaVersion,
		ComputedAt:    c.now(),
		ShelfCount:    shelfCount,
		Fingerprint:   key,
		Items:         items,
		ProvidersUsed: providers,
		Weights:       weights,
	}
	c.set(ctx, key, rec, c.cfg.TTL)
}

// LoadShelf returns the cached shelf entries of a user.
func (c *ResultCache) LoadShelf(ctx context.Context, userID int64) ([]ShelfEntry, bool) {
	var entries []ShelfEntry
	ok := c.loadProfile(ctx, NamespaceShelf, cacheKey(NamespaceShelf, userID, "entries"), &entries)
	return entries, ok
}

// SaveShelf caches the shelf entries of a user.
func (c *ResultCache) SaveShelf(ctx context.Context, userID int64, entries []ShelfEntry) {
	c.saveProfile(ctx, cacheKey(NamespaceShelf, userID, "entries"), entries)
}

// LoadLanguageProfile returns the cached language profile for uc's shelf.
func (c *ResultCache) LoadLanguageProfile(ctx context.Context, uc *UserContext) (LanguageProfile, bool) {
	var p LanguageProfile
	ok := c.loadProfile(ctx, NamespaceLanguageProfile, cacheKey(NamespaceLanguageProfile, uc.UserID, uc.ProfileFingerprint()), &p)
	if ok && (p.Weights == nil || p.Abandoned == nil) {
		return LanguageProfile{}, false
	}
	return p, ok
}

// SaveLanguageProfile caches the language profile for uc's shelf.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (c *ResultCache) SaveLanguageProfile(ctx context.Context, uc *UserContext, p LanguageProfile) {
	c.saveProfile(ctx, cacheKey(NamespaceLanguageProfile, uc.UserID, uc.ProfileFingerprint()), p)
}

// LoadBehavior returns the cached behavior profile for uc's shelf.
func (c *ResultCache) LoadBehavior(ctx context.Context, uc *UserContext) (BehaviorProfile, bool) {
	var p BehaviorProfile
	ok := c.loadProfile(ctx, NamespaceBehavior, cacheKey(NamespaceBehavior, uc.UserID, uc.ProfileFingerprint()), &p)
	return p, ok
}

// SaveBehavior caches the behavior profile for uc's shelf.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (c *ResultCache) SaveBehavior(ctx context.Context, uc *UserContext, p BehaviorProfile) {
	c.saveProfile(ctx, cacheKey(NamespaceBehavior, uc.UserID, uc.ProfileFingerprint()), p)
}

func (c *ResultCache) loadProfile(ctx context.Context, ns Namespace, key string, v any) bool {
	if !c.enabled() {
		return false
	}
	var rec profileRecord
	if !c.get(ctx, ns, key, &rec) {
		return false
	}
	if reason := c.invalidReason(rec.SchemaVersion, rec.ComputedAt); reason != "" {
		c.observer.ObserveCache(ns, false)
		c.delete(ctx, key)
		return false
	}
	if err := json.Unmarshal(rec.Data, v); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("corrupt cached profile")
		c.observer.ObserveCache(ns, false)
		return false
	}
	c.observer.ObserveCache(ns, true)
	return true
}

func (c *ResultCache) saveProfile(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode profile")
		return
	}
	ttl := c.cfg.ProfileTTL
	if ttl <= 0 {
		ttl = c.cfg.TTL
	}
	c.set(ctx, key, profileRecord{
		SchemaVersion: c.cfg.SchemaVersion,
		ComputedAt:    c.now(),
		Data:          data,
	}, ttl)
}

func (c *ResultCache) invalidReason(version int, computedAt time.Time) string {
	if version != c.cfg.SchemaVersion {
		return "schema version"
	}
	if c.now().Sub(computedAt) > c.cfg.FreshnessWindow {
		return "stale"
	}
	return ""
}

// get decodes the record at key into v. Missing keys, store errors and
// undecodable payloads all count as a miss.
func (c *ResultCache) get(ctx context.Context, ns Namespace, key string, v any) bool {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		c.observer.ObserveCache(ns, false)
		return false
	}
	if !found {
		c.observer.ObserveCache(ns, false)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("corrupt cache record, treating as miss")
		c.observer.ObserveCache(ns, false)
		c.delete(ctx, key)
		return false
	}
	return true
}

func (c *ResultCache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache record")
		return
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *ResultCache) delete(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache delete failed")
	}
}
