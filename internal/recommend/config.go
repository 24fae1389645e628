// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights is the base provider weight vector before adaptation.
	// Weights are normalized at runtime, so they don't need to sum to 1.0.
	Weights Weights `json:"weights"`

	// Adjustments are the multipliers applied for behavior and language signals.
	Adjustments WeightAdjustments `json:"adjustments"`

	// Behavior contains the reading-style classification thresholds.
	Behavior BehaviorConfig `json:"behavior"`

	// Language contains language-preference thresholds.
	Language LanguageConfig `json:"language"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache"`

	// External contains external-search parameters.
	External ExternalConfig `json:"external"`

	// Seed is the random seed for deterministic behavior.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// WeightAdjustments are multiplicative boosts applied by AdaptiveWeights.
type WeightAdjustments struct {
	// EclecticCategoryBoost multiplies the category weight for eclectic readers.
	// Default: 1.5.
	EclecticCategoryBoost float64 `json:"eclectic_category_boost"`

	// LoyalHistoryBoost multiplies the history weight for loyal readers.
	// Default: 1.4.
	LoyalHistoryBoost float64 `json:"loyal_history_boost"`

	// LoyalSimilarityBoost multiplies the similarity weight for loyal readers.
	// Default: 1.3.
	LoyalSimilarityBoost float64 `json:"loyal_similarity_boost"`

	// SeasonalTemporalBoost multiplies the temporal weight for seasonal readers.
	// Default: 1.5.
	SeasonalTemporalBoost float64 `json:"seasonal_temporal_boost"`

	// LanguageBoost multiplies the language weight for strong language profiles.
	// Default: 1.5.
	LanguageBoost float64 `json:"language_boost"`
}

// BehaviorConfig holds the heuristic thresholds used by AnalyzeBehavior.
type BehaviorConfig struct {
	// MinEntries is the minimum shelf size before any classification.
	// Default: 3.
	MinEntries int `json:"min_entries"`

	// EclecticMinGenres is the minimum number of distinct genres for an eclectic reader.
	// Default: 5.
	EclecticMinGenres int `json:"eclectic_min_genres"`

	// EclecticGenreRatio is the minimum distinct-genres / books ratio.
	// Default: 0.5.
	EclecticGenreRatio float64 `json:"eclectic_genre_ratio"`

	// LoyalAuthorShare is the top-author share that marks a loyal reader.
	// Default: 0.3.
	LoyalAuthorShare float64 `json:"loyal_author_share"`

	// LoyalGenreShare is the top-genre share that marks a loyal reader.
	// Default: 0.4.
	LoyalGenreShare float64 `json:"loyal_genre_share"`

	// SeasonalMonthShare is the share of activity in the three busiest months.
	// Default: 0.6.
	SeasonalMonthShare float64 `json:"seasonal_month_share"`

	// SeasonalMinEntries is the minimum dated entries to detect seasonality.
	// Default: 6.
	SeasonalMinEntries int `json:"seasonal_min_entries"`
}

// LanguageConfig holds language-preference thresholds.
type LanguageConfig struct {
	// PortugueseThreshold is the ratio above which "pt" is prioritized.
	// Default: 0.6.
	PortugueseThreshold float64 `json:"portuguese_threshold"`

	// AbandonThreshold is the abandoned weight above which a language is excluded.
	// Default: 2.0.
	AbandonThreshold float64 `json:"abandon_threshold"`

	// NationalAffinityThreshold is the affinity above which national authors are queried.
	// Default: 2.0.
	NationalAffinityThreshold float64 `json:"national_affinity_threshold"`

	// TopLanguages is the number of top languages added to the priority list.
	// Default: 3.
	TopLanguages int `json:"top_languages"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is the default number of recommendations to return.
	// Default: 20.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit is the maximum allowed limit.
	// Default: 100.
	MaxLimit int `json:"max_limit"`

	// ProviderTimeout bounds a single provider call.
	// Default: 2s.
	ProviderTimeout time.Duration `json:"provider_timeout"`

	// ExternalTimeout bounds the whole external search step.
	// Default: 3s.
	ExternalTimeout time.Duration `json:"external_timeout"`

	// Oversample is how many candidates each provider is asked for per slot,
	// leaving room for cross-provider duplicates.
	// Default: 2.
	Oversample int `json:"oversample"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the store-level expiry of recommendation records.
	// Default: 1h.
	TTL time.Duration `json:"ttl"`

	// FreshnessWindow is the maximum age of a record that may be served.
	// Default: 30m.
	FreshnessWindow time.Duration `json:"freshness_window"`

	// ProfileTTL is the expiry of shelf, language and behavior records.
	// Default: 10m.
	ProfileTTL time.Duration `json:"profile_ttl"`

	// SchemaVersion is stamped on records; mismatching records are discarded.
	// Default: 1.
	SchemaVersion int `json:"schema_version"`

	// ContextTolerance is how far the shelf size may drift from the size
	// recorded with a cached set before the set is recomputed.
	// Default: 1.
	ContextTolerance int `json:"context_tolerance"`

	// LanguageAware folds the language-profile fingerprint into keys.
	// Default: false.
	LanguageAware bool `json:"language_aware"`
}

// ExternalConfig contains external-search parameters.
type ExternalConfig struct {
	// Enabled controls whether external candidates are fetched.
	// Default: true.
	Enabled bool `json:"enabled"`

	// MaxSeeds caps the shelf books used to derive search terms.
	// Default: 50.
	MaxSeeds int `json:"max_seeds"`

	// MaxTerms caps the number of search terms.
	// Default: 10.
	MaxTerms int `json:"max_terms"`

	// PageSize is the number of results requested per term.
	// Default: 5.
	PageSize int `json:"page_size"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			History:    0.25,
			Category:   0.25,
			Similarity: 0.20,
			Temporal:   0.15,
			Language:   0.15,
		},
		Adjustments: WeightAdjustments{
			EclecticCategoryBoost: 1.5,
			LoyalHistoryBoost:     1.4,
			LoyalSimilarityBoost:  1.3,
			SeasonalTemporalBoost: 1.5,
			LanguageBoost:         1.5,
		},
		Behavior: BehaviorConfig{
			MinEntries:         3,
			EclecticMinGenres:  5,
			EclecticGenreRatio: 0.5,
			LoyalAuthorShare:   0.3,
			LoyalGenreShare:    0.4,
			SeasonalMonthShare: 0.6,
			SeasonalMinEntries: 6,
		},
		Language: LanguageConfig{
			PortugueseThreshold:       0.6,
			AbandonThreshold:          2.0,
			NationalAffinityThreshold: 2.0,
			TopLanguages:              3,
		},
		Limits: LimitsConfig{
			DefaultLimit:    20,
			MaxLimit:        100,
			ProviderTimeout: 2 * time.Second,
			ExternalTimeout: 3 * time.Second,
			Oversample:      2,
		},
		Cache: CacheConfig{
			Enabled:          true,
			TTL:              time.Hour,
			FreshnessWindow:  30 * time.Minute,
			ProfileTTL:       10 * time.Minute,
			SchemaVersion:    1,
			ContextTolerance: 1,
		},
		External: ExternalConfig{
			Enabled:  true,
			MaxSeeds: 50,
			MaxTerms: 10,
			PageSize: 5,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // flat list of independent range checks
func (c *Config) Validate() error {
	w := c.Weights
	if w.History < 0 || w.Category < 0 || w.Similarity < 0 || w.Temporal < 0 || w.Language < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}

	a := c.Adjustments
	for name, v := range map[string]float64{
		"eclectic_category_boost": a.EclecticCategoryBoost,
		"loyal_history_boost":     a.LoyalHistoryBoost,
		"loyal_similarity_boost":  a.LoyalSimilarityBoost,
		"seasonal_temporal_boost": a.SeasonalTemporalBoost,
		"language_boost":          a.LanguageBoost,
	} {
		if v <= 0 {
			return fmt.Errorf("adjustments.%s must be positive, got %f", name, v)
		}
	}

	if c.Behavior.MinEntries < 0 {
		return fmt.Errorf("behavior.min_entries must be non-negative, got %d", c.Behavior.MinEntries)
	}
	for name, v := range map[string]float64{
		"eclectic_genre_ratio": c.Behavior.EclecticGenreRatio,
		"loyal_author_share":   c.Behavior.LoyalAuthorShare,
		"loyal_genre_share":    c.Behavior.LoyalGenreShare,
		"seasonal_month_share": c.Behavior.SeasonalMonthShare,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("behavior.%s must be in [0, 1], got %f", name, v)
		}
	}

	if c.Language.PortugueseThreshold < 0 || c.Language.PortugueseThreshold > 1 {
		return fmt.Errorf("language.portuguese_threshold must be in [0, 1], got %f", c.Language.PortugueseThreshold)
	}
	if c.Language.AbandonThreshold < 0 {
		return fmt.Errorf("language.abandon_threshold must be non-negative, got %f", c.Language.AbandonThreshold)
	}
	if c.Language.TopLanguages < 1 {
		return fmt.Errorf("language.top_languages must be positive, got %d", c.Language.TopLanguages)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.ProviderTimeout <= 0 {
		return fmt.Errorf("limits.provider_timeout must be positive, got %v", c.Limits.ProviderTimeout)
	}
	if c.Limits.ExternalTimeout <= 0 {
		return fmt.Errorf("limits.external_timeout must be positive, got %v", c.Limits.ExternalTimeout)
	}
	if c.Limits.Oversample < 1 {
		return fmt.Errorf("limits.oversample must be positive, got %d", c.Limits.Oversample)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.FreshnessWindow <= 0 {
			return fmt.Errorf("cache.freshness_window must be positive, got %v", c.Cache.FreshnessWindow)
		}
		if c.Cache.ContextTolerance < 0 {
			return fmt.Errorf("cache.context_tolerance must be non-negative, got %d", c.Cache.ContextTolerance)
		}
	}

	if c.External.Enabled {
		if c.External.MaxSeeds < 1 || c.External.MaxTerms < 1 || c.External.PageSize < 1 {
			return fmt.Errorf("external.max_seeds, max_terms and page_size must be positive, got %d/%d/%d",
				c.External.MaxSeeds, c.External.MaxTerms, c.External.PageSize)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
