// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import "time"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	External  ExternalConfig  `koanf:"external"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging" or "production"

	// Per-client request rate limiting (httprate)
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
}

// CacheConfig holds the recommendation cache store settings
type CacheConfig struct {
	// Backend is memory, badger or redis.
	// Default: memory
	Backend string `koanf:"backend"`

	// DefaultTTL applies to memory entries stored without a TTL.
	DefaultTTL time.Duration `koanf:"default_ttl"`

	// Capacity bounds the memory backend.
	Capacity int `koanf:"capacity"`

	// SweepInterval is how often expired memory entries are removed.
	// Default: 1m
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// BadgerPath is the BadgerDB directory; empty runs in-memory.
	BadgerPath string `koanf:"badger_path"`

	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`
}

// ExternalConfig holds the external book search client settings
type ExternalConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// Client-side token bucket
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// Circuit breaker: consecutive failures to open, and open duration
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`

	PageSize int `koanf:"page_size"`
	MaxTerms int `koanf:"max_terms"`
	MaxSeeds int `koanf:"max_seeds"`
}

// RecommendConfig holds recommendation engine settings
type RecommendConfig struct {
	Weights     RecommendWeights     `koanf:"weights"`
	Adjustments RecommendAdjustments `koanf:"adjustments"`
	Behavior    RecommendBehavior    `koanf:"behavior"`
	Language    RecommendLanguage    `koanf:"language"`

	DefaultLimit    int           `koanf:"default_limit"`
	MaxLimit        int           `koanf:"max_limit"`
	ProviderTimeout time.Duration `koanf:"provider_timeout"`
	ExternalTimeout time.Duration `koanf:"external_timeout"`
	Oversample      int           `koanf:"oversample"`

	CacheEnabled     bool          `koanf:"cache_enabled"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
	FreshnessWindow  time.Duration `koanf:"freshness_window"`
	ProfileTTL       time.Duration `koanf:"profile_ttl"`
	SchemaVersion    int           `koanf:"schema_version"`
	ContextTolerance int           `koanf:"context_tolerance"`
	LanguageAware    bool          `koanf:"language_aware"`

	// Seed drives provider randomization (0 = fixed default)
	Seed int64 `koanf:"seed"`
}

// RecommendWeights is the base provider weight vector
type RecommendWeights struct {
	History    float64 `koanf:"history"`
	Category   float64 `koanf:"category"`
	Similarity float64 `koanf:"similarity"`
	Temporal   float64 `koanf:"temporal"`
	Language   float64 `koanf:"language"`
}

// RecommendAdjustments are the behavior and language weight multipliers
type RecommendAdjustments struct {
	EclecticCategoryBoost float64 `koanf:"eclectic_category_boost"`
	LoyalHistoryBoost     float64 `koanf:"loyal_history_boost"`
	LoyalSimilarityBoost  float64 `koanf:"loyal_similarity_boost"`
	SeasonalTemporalBoost float64 `koanf:"seasonal_temporal_boost"`
	LanguageBoost         float64 `koanf:"language_boost"`
}

// RecommendBehavior holds reading-style classification thresholds
type RecommendBehavior struct {
	MinEntries         int     `koanf:"min_entries"`
	EclecticMinGenres  int     `koanf:"eclectic_min_genres"`
	EclecticGenreRatio float64 `koanf:"eclectic_genre_ratio"`
	LoyalAuthorShare   float64 `koanf:"loyal_author_share"`
	LoyalGenreShare    float64 `koanf:"loyal_genre_share"`
	SeasonalMonthShare float64 `koanf:"seasonal_month_share"`
	SeasonalMinEntries int     `koanf:"seasonal_min_entries"`
}

// RecommendLanguage holds language-preference thresholds
type RecommendLanguage struct {
	PortugueseThreshold       float64 `koanf:"portuguese_threshold"`
	AbandonThreshold          float64 `koanf:"abandon_threshold"`
	NationalAffinityThreshold float64 `koanf:"national_affinity_threshold"`
	TopLanguages              int     `koanf:"top_languages"`
}

// Addr returns the host:port listen address.
func (s *ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
