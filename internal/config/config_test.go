// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "unknown environment", mutate: func(c *Config) { c.Server.Environment = "qa" }, wantErr: true},
		{name: "rate limit zero", mutate: func(c *Config) { c.Server.RateLimitReqs = 0 }, wantErr: true},
		{name: "rate limit zero but disabled", mutate: func(c *Config) {
			c.Server.RateLimitReqs = 0
			c.Server.RateLimitDisabled = true
		}},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "empty database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "unknown cache backend", mutate: func(c *Config) { c.Cache.Backend = "memcached" }, wantErr: true},
		{name: "redis without address", mutate: func(c *Config) { c.Cache.Backend = "redis" }, wantErr: true},
		{name: "redis with address", mutate: func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.RedisAddr = "localhost:6379"
		}},
		{name: "external enabled with relative url", mutate: func(c *Config) {
			c.External.Enabled = true
			c.External.BaseURL = "/books"
		}, wantErr: true},
		{name: "external enabled zero rate", mutate: func(c *Config) {
			c.External.Enabled = true
			c.External.RequestsPerSecond = 0
		}, wantErr: true},
		{name: "external disabled ignores bad url", mutate: func(c *Config) { c.External.BaseURL = "" }},
		{name: "negative weight", mutate: func(c *Config) { c.Recommend.Weights.Language = -0.1 }, wantErr: true},
		{name: "all weights zero", mutate: func(c *Config) { c.Recommend.Weights = RecommendWeights{} }, wantErr: true},
		{name: "max below default", mutate: func(c *Config) { c.Recommend.MaxLimit = 10 }, wantErr: true},
		{name: "zero provider timeout", mutate: func(c *Config) { c.Recommend.ProviderTimeout = 0 }, wantErr: true},
		{name: "negative tolerance", mutate: func(c *Config) { c.Recommend.ContextTolerance = -1 }, wantErr: true},
		{name: "portuguese ratio above one", mutate: func(c *Config) { c.Recommend.Language.PortugueseThreshold = 1.2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 8080, ReadTimeout: time.Second}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8080", got)
	}
	if s.IsProduction() {
		t.Error("IsProduction() should be false for empty environment")
	}
	s.Environment = "production"
	if !s.IsProduction() {
		t.Error("IsProduction() should be true")
	}
}
