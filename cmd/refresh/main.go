package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/saudedados/leitos-backend/internal/adapters/cache"
	"github.com/saudedados/leitos-backend/internal/adapters/database"
	"github.com/saudedados/leitos-backend/internal/adapters/export"
	"github.com/saudedados/leitos-backend/internal/adapters/feed"
	"github.com/saudedados/leitos-backend/internal/application/services"
	"github.com/saudedados/leitos-backend/internal/infrastructure/clients/cnes"
	"github.com/saudedados/leitos-backend/internal/infrastructure/clients/postgres"
	"github.com/saudedados/leitos-backend/internal/infrastructure/observability"
	"github.com/saudedados/leitos-backend/pkg/config"
)

// refresh runs one full reporting cycle: load the occupancy feed, populate
// the registry cache, reconcile, and export the enriched table.
func main() {
	var feedPath string
	var env string
	var skipFetch bool

	flag.StringVar(&feedPath, "feed", "", "Path to the occupancy feed CSV")
	flag.StringVar(&env, "env", "development", "Environment (development/production)")
	flag.BoolVar(&skipFetch, "skip-fetch", false, "Reconcile against the existing cache without fetching")
	flag.Parse()

	godotenv.Load()
	observability.InitLogger("capacity-refresh", env)

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
	log.Info().Int("rows", len(table.Rows)).Msg("occupancy feed loaded")

	client := cnes.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout)
	fetcher := services.NewRegistryFetchService(client, store)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create export directory")
	}

	runID := uuid.NewString()
	runTS := time.Now().UTC()
	if !skipFetch {
		summary, err := fetcher.EnsureAll(ctx, services.DistinctCodes(table.Rows))
		if err != nil {
			log.Fatal().Err(err).Msg("registry batch aborted")
		}
		runID = summary.RunID
		runTS = summary.RunTimestamp

		errorPath := filepath.Join(cfg.Export.Dir, "hospitais_errors.json")
		if err := export.WriteErrorList(errorPath, summary.Failed); err != nil {
			log.Fatal().Err(err).Msg("failed to write error list")
		}
	}

	registry, err := fetcher.LoadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load registry cache")
	}
	log.Info().Int("documents", len(registry)).Msg("registry cache loaded")

	pipeline := services.NewReconciliationService(services.NewBedClassifier())
	enriched, err := pipeline.Run(ctx, table.Columns, table.Rows, registry,
		cfg.Pipeline.StalenessWindows, runTS)
	if err != nil {
		log.Fatal().Err(err).Msg("reconciliation failed")
	}

	xlsxPath := filepath.Join(cfg.Export.Dir, "hospitais_enriched.xlsx")
	if err := export.WriteXLSX(xlsxPath, enriched, cfg.Pipeline.StalenessWindows); err != nil {
		log.Fatal().Err(err).Msg("failed to export spreadsheet")
	}

	if cfg.Database.Enabled {
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pgClient.Close()

		sink, err := database.NewEnrichedReportAdapter(pgClient)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare enriched report sink")
		}
		if err := sink.SaveBatch(ctx, runID, enriched); err != nil {
			log.Fatal().Err(err).Msg("failed to persist enriched reports")
		}
	}

	log.Info().Str("run_id", runID).Int("rows", len(enriched)).
		Str("export", xlsxPath).Msg("refresh complete")
}
