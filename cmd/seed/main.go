// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
)

func main() {
	fixturePath := flag.String("file", "testdata/books.yaml", "path to the YAML or JSON book fixture")
	timeout := flag.Duration("timeout", time.Minute, "maximum time for the import")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, &cfg.Database, *fixturePath); err != nil {
		cancel()
		logging.Fatal().Err(err).Str("file", *fixturePath).Msg("Seeding failed")
	}
}

func run(ctx context.Context, dbCfg *config.DatabaseConfig, fixturePath string) error {
	books, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}

	db, err := database.New(dbCfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ids, err := db.InsertBooks(ctx, books)
	if err != nil {
		return fmt.Errorf("insert books: %w", err)
	}

	total, err := db.CountBooks(ctx)
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}

	logging.Info().
		Int("inserted", len(ids)).
		Int("catalog_size", total).
		Str("path", dbCfg.Path).
		Msg("Catalog seeded")
	return nil
}
