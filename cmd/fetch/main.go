package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/saudedados/leitos-backend/internal/adapters/cache"
	"github.com/saudedados/leitos-backend/internal/adapters/export"
	"github.com/saudedados/leitos-backend/internal/adapters/feed"
	"github.com/saudedados/leitos-backend/internal/application/services"
	"github.com/saudedados/leitos-backend/internal/infrastructure/clients/cnes"
	"github.com/saudedados/leitos-backend/internal/infrastructure/observability"
	"github.com/saudedados/leitos-backend/pkg/config"
)

// fetch populates the registry document cache for every facility code in the
// occupancy feed, without running the reconciliation pipeline.
func main() {
	var feedPath string
	var env string

	flag.StringVar(&feedPath, "feed", "", "Path to the occupancy feed CSV")
	flag.StringVar(&env, "env", "development", "Environment (development/production)")
	flag.Parse()

	godotenv.Load()
	observability.InitLogger("registry-fetch", env)

	if feedPath == "" {
		log.Fatal().Msg("-feed is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, cleanup, err := cache.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open registry cache")
	}
	defer cleanup()

	table, err := feed.LoadCSV(feedPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load occupancy feed")
	}

	client := cnes.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout)
	fetcher := services.NewRegistryFetchService(client, store)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, err := fetcher.EnsureAll(ctx, services.DistinctCodes(table.Rows))
	if err != nil {
		log.Fatal().Err(err).Msg("registry batch aborted")
	}

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create export directory")
	}
	errorPath := filepath.Join(cfg.Export.Dir, "hospitais_errors.json")
	if err := export.WriteErrorList(errorPath, summary.Failed); err != nil {
		log.Fatal().Err(err).Msg("failed to write error list")
	}

	log.Info().Str("run_id", summary.RunID).Int("fetched", summary.Fetched).
		Int("skipped", summary.Skipped).Int("failed", len(summary.Failed)).
		Msg("registry fetch complete")
}
