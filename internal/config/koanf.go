// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shelfwise/config.yaml",
	"/etc/shelfwise/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			Host:              "0.0.0.0",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			Environment:       "development",
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:                   "/data/shelfwise.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
		},
		Cache: CacheConfig{
			Backend:        "memory",
			DefaultTTL:     time.Hour,
			Capacity:       10000,
			SweepInterval:  time.Minute,
			BadgerPath:     "/data/cache",
			RedisAddr:      "",
			RedisDB:        0,
			RedisKeyPrefix: "shelfwise:",
		},
		External: ExternalConfig{
			Enabled:           false, // Opt-in: requires network access to the search service
			BaseURL:           "https://www.googleapis.com/books/v1",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
			BreakerFailures:   5,
			BreakerTimeout:    30 * time.Second,
			PageSize:          5,
			MaxTerms:          10,
			MaxSeeds:          50,
		},
		Recommend: RecommendConfig{
			Weights: RecommendWeights{
				History:    0.25,
				Category:   0.25,
				Similarity: 0.20,
				Temporal:   0.15,
				Language:   0.15,
			},
			Adjustments: RecommendAdjustments{
				EclecticCategoryBoost: 1.5,
				LoyalHistoryBoost:     1.4,
				LoyalSimilarityBoost:  1.3,
				SeasonalTemporalBoost: 1.5,
				LanguageBoost:         1.5,
			},
			Behavior: RecommendBehavior{
				MinEntries:         3,
				EclecticMinGenres:  5,
				EclecticGenreRatio: 0.5,
				LoyalAuthorShare:   0.3,
				LoyalGenreShare:    0.4,
				SeasonalMonthShare: 0.6,
				SeasonalMinEntries: 6,
			},
			Language: RecommendLanguage{
				PortugueseThreshold:       0.6,
				AbandonThreshold:          2.0,
				NationalAffinityThreshold: 2.0,
				TopLanguages:              3,
			},
			DefaultLimit:     20,
			MaxLimit:         100,
			ProviderTimeout:  2 * time.Second,
			ExternalTimeout:  3 * time.Second,
			Oversample:       2,
			CacheEnabled:     true,
			CacheTTL:         time.Hour,
			FreshnessWindow:  30 * time.Minute,
			ProfileTTL:       10 * time.Minute,
			SchemaVersion:    1,
			ContextTolerance: 1,
			LanguageAware:    false,
			Seed:             42,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile loads configuration from an explicit YAML file plus environment.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Cache store mappings
	"cache_backend":     "cache.backend",
	"cache_default_ttl": "cache.default_ttl",
	"cache_capacity":    "cache.capacity",
	"cache_sweep":       "cache.sweep_interval",
	"cache_badger_path": "cache.badger_path",
	"redis_addr":        "cache.redis_addr",
	"redis_password":    "cache.redis_password",
	"redis_db":          "cache.redis_db",
	"redis_key_prefix":  "cache.redis_key_prefix",

	// External search mappings
	"external_enabled":             "external.enabled",
	"external_base_url":            "external.base_url",
	"external_api_key":             "external.api_key",
	"external_timeout":             "external.timeout",
	"external_requests_per_second": "external.requests_per_second",
	"external_burst":               "external.burst",
	"external_breaker_failures":    "external.breaker_failures",
	"external_breaker_timeout":     "external.breaker_timeout",
	"external_page_size":           "external.page_size",
	"external_max_terms":           "external.max_terms",
	"external_max_seeds":           "external.max_seeds",

	// Recommendation engine mappings
	"recommend_weight_history":      "recommend.weights.history",
	"recommend_weight_category":     "recommend.weights.category",
	"recommend_weight_similarity":   "recommend.weights.similarity",
	"recommend_weight_temporal":     "recommend.weights.temporal",
	"recommend_weight_language":     "recommend.weights.language",
	"recommend_default_limit":       "recommend.default_limit",
	"recommend_max_limit":           "recommend.max_limit",
	"recommend_provider_timeout":    "recommend.provider_timeout",
	"recommend_external_timeout":    "recommend.external_timeout",
	"recommend_oversample":          "recommend.oversample",
	"recommend_cache_enabled":       "recommend.cache_enabled",
	"recommend_cache_ttl":           "recommend.cache_ttl",
	"recommend_freshness_window":    "recommend.freshness_window",
	"recommend_profile_ttl":         "recommend.profile_ttl",
	"recommend_schema_version":      "recommend.schema_version",
	"recommend_context_tolerance":   "recommend.context_tolerance",
	"recommend_language_aware":      "recommend.language_aware",
	"recommend_seed":                "recommend.seed",
	"recommend_portuguese_ratio":    "recommend.language.portuguese_threshold",
	"recommend_abandon_threshold":   "recommend.language.abandon_threshold",
	"recommend_behavior_min_shelf":  "recommend.behavior.min_entries",
	"recommend_national_affinity":   "recommend.language.national_affinity_threshold",
	"recommend_eclectic_min_genres": "recommend.behavior.eclectic_min_genres",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - REDIS_ADDR -> cache.redis_addr
//   - RECOMMEND_WEIGHT_HISTORY -> recommend.weights.history
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
