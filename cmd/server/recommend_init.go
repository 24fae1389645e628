// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/cache"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/googlebooks"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/providers"
)

// RecommendComponents holds the recommendation engine and its collaborators.
type RecommendComponents struct {
	Engine   *recommend.Engine
	External *googlebooks.Client
	Observer *metrics.Observer
}

// initRecommend builds the engine over the database and cache store and
// registers the providers in slot order.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, db *database.DB, store cache.Store, logger zerolog.Logger) (*RecommendComponents, error) {
	engineCfg := buildEngineConfig(cfg)
	observer := metrics.NewObserver()

	deps := recommend.Dependencies{
		Shelves:  db,
		Catalog:  db,
		Profiles: db,
		Cache:    store,
		Observer: observer,
	}

	var client *googlebooks.Client
	if cfg.External.Enabled {
		client = googlebooks.New(&cfg.External, logger)
		deps.External = providers.NewExternal(client, engineCfg.External, logger)
		logger.Info().
			Str("base_url", cfg.External.BaseURL).
			Float64("requests_per_second", cfg.External.RequestsPerSecond).
			Msg("external book search enabled")
	}

	engine, err := recommend.NewEngine(engineCfg, deps, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	registerProviders(engine, db, engineCfg, logger)

	return &RecommendComponents{
		Engine:   engine,
		External: client,
		Observer: observer,
	}, nil
}

// registerProviders registers the local providers. Registration order is the
// order in which providers receive slots.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func registerProviders(engine *recommend.Engine, catalog recommend.Catalog, cfg *recommend.Config, logger zerolog.Logger) {
	engine.RegisterProvider(providers.NewHistory(catalog))
	engine.RegisterProvider(providers.NewCategory(catalog))
	engine.RegisterProvider(providers.NewSimilarity(catalog))
	engine.RegisterProvider(providers.NewTemporal(catalog))
	engine.RegisterProvider(providers.NewLanguage(catalog, cfg.Language))
	logger.Debug().Strs("providers", recommend.ProviderOrder).Msg("registered recommendation providers")
}

// buildEngineConfig maps the application configuration onto the engine
// configuration. Zero values keep the engine defaults.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()
	rc := &cfg.Recommend

	ec.Weights = recommend.Weights{
		History:    rc.Weights.History,
		Category:   rc.Weights.Category,
		Similarity: rc.Weights.Similarity,
		Temporal:   rc.Weights.Temporal,
		Language:   rc.Weights.Language,
	}
	if ec.Weights.Sum() == 0 {
		ec.Weights = recommend.DefaultConfig().Weights
	}

	setFloat(&ec.Adjustments.EclecticCategoryBoost, rc.Adjustments.EclecticCategoryBoost)
	setFloat(&ec.Adjustments.LoyalHistoryBoost, rc.Adjustments.LoyalHistoryBoost)
	setFloat(&ec.Adjustments.LoyalSimilarityBoost, rc.Adjustments.LoyalSimilarityBoost)
	setFloat(&ec.Adjustments.SeasonalTemporalBoost, rc.Adjustments.SeasonalTemporalBoost)
	setFloat(&ec.Adjustments.LanguageBoost, rc.Adjustments.LanguageBoost)

	setInt(&ec.Behavior.MinEntries, rc.Behavior.MinEntries)
	setInt(&ec.Behavior.EclecticMinGenres, rc.Behavior.EclecticMinGenres)
	setFloat(&ec.Behavior.EclecticGenreRatio, rc.Behavior.EclecticGenreRatio)
	setFloat(&ec.Behavior.LoyalAuthorShare, rc.Behavior.LoyalAuthorShare)
	setFloat(&ec.Behavior.LoyalGenreShare, rc.Behavior.LoyalGenreShare)
	setFloat(&ec.Behavior.SeasonalMonthShare, rc.Behavior.SeasonalMonthShare)
	setInt(&ec.Behavior.SeasonalMinEntries, rc.Behavior.SeasonalMinEntries)

	setFloat(&ec.Language.PortugueseThreshold, rc.Language.PortugueseThreshold)
	setFloat(&ec.Language.AbandonThreshold, rc.Language.AbandonThreshold)
	setFloat(&ec.Language.NationalAffinityThreshold, rc.Language.NationalAffinityThreshold)
	setInt(&ec.Language.TopLanguages, rc.Language.TopLanguages)

	setInt(&ec.Limits.DefaultLimit, rc.DefaultLimit)
	setInt(&ec.Limits.MaxLimit, rc.MaxLimit)
	setInt(&ec.Limits.Oversample, rc.Oversample)
	if rc.ProviderTimeout > 0 {
		ec.Limits.ProviderTimeout = rc.ProviderTimeout
	}
	if rc.ExternalTimeout > 0 {
		ec.Limits.ExternalTimeout = rc.ExternalTimeout
	}

	ec.Cache.Enabled = rc.CacheEnabled
	ec.Cache.LanguageAware = rc.LanguageAware
	if rc.CacheTTL > 0 {
		ec.Cache.TTL = rc.CacheTTL
	}
	if rc.FreshnessWindow > 0 {
		ec.Cache.FreshnessWindow = rc.FreshnessWindow
	}
	if rc.ProfileTTL > 0 {
		ec.Cache.ProfileTTL = rc.ProfileTTL
	}
	setInt(&ec.Cache.SchemaVersion, rc.SchemaVersion)
	if rc.ContextTolerance >= 0 {
		ec.Cache.ContextTolerance = rc.ContextTolerance
	}

	ec.External.Enabled = cfg.External.Enabled
	setInt(&ec.External.MaxSeeds, cfg.External.MaxSeeds)
	setInt(&ec.External.MaxTerms, cfg.External.MaxTerms)
	setInt(&ec.External.PageSize, cfg.External.PageSize)

	ec.Seed = rc.Seed
	return ec
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

// cacheConfig maps the cache section onto cache.Config.
func cacheConfig(cfg *config.CacheConfig) cache.Config {
	return cache.Config{
		Backend:        cache.Backend(cfg.Backend),
		DefaultTTL:     cfg.DefaultTTL,
		Capacity:       cfg.Capacity,
		BadgerPath:     cfg.BadgerPath,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		RedisKeyPrefix: cfg.RedisKeyPrefix,
	}
}
