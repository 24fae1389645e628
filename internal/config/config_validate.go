// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateExternal(); err != nil {
		return err
	}

	return c.validateRecommend()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be development, staging or production, got %q", c.Server.Environment)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("server.rate_limit_reqs must be positive, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("server.rate_limit_window must be positive, got %v", c.Server.RateLimitWindow)
		}
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "memory":
		if c.Cache.Capacity < 1 {
			return fmt.Errorf("cache.capacity must be positive for the memory backend, got %d", c.Cache.Capacity)
		}
	case "badger":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("cache.backend must be memory, badger or redis, got %q", c.Cache.Backend)
	}
	return nil
}

// validateExternal validates external search configuration (only if enabled)
func (c *Config) validateExternal() error {
	if !c.External.Enabled {
		return nil
	}
	u, err := url.Parse(c.External.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("external.base_url must be an absolute URL, got %q", c.External.BaseURL)
	}
	if c.External.Timeout <= 0 {
		return fmt.Errorf("external.timeout must be positive, got %v", c.External.Timeout)
	}
	if c.External.RequestsPerSecond <= 0 || c.External.Burst < 1 {
		return fmt.Errorf("external rate limit must be positive, got %.2f req/s burst %d",
			c.External.RequestsPerSecond, c.External.Burst)
	}
	if c.External.PageSize < 1 || c.External.MaxTerms < 1 || c.External.MaxSeeds < 1 {
		return fmt.Errorf("external.page_size, max_terms and max_seeds must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	w := r.Weights
	if w.History < 0 || w.Category < 0 || w.Similarity < 0 || w.Temporal < 0 || w.Language < 0 {
		return fmt.Errorf("recommend.weights must be non-negative")
	}
	if w.History+w.Category+w.Similarity+w.Temporal+w.Language == 0 {
		return fmt.Errorf("recommend.weights must not all be zero")
	}
	if r.DefaultLimit < 1 || r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("recommend limits invalid: default %d, max %d", r.DefaultLimit, r.MaxLimit)
	}
	if r.ProviderTimeout <= 0 {
		return fmt.Errorf("recommend.provider_timeout must be positive, got %v", r.ProviderTimeout)
	}
	if r.ContextTolerance < 0 {
		return fmt.Errorf("recommend.context_tolerance must be non-negative, got %d", r.ContextTolerance)
	}
	if r.Language.PortugueseThreshold < 0 || r.Language.PortugueseThreshold > 1 {
		return fmt.Errorf("recommend.language.portuguese_threshold must be in [0, 1], got %f", r.Language.PortugueseThreshold)
	}
	return nil
}
