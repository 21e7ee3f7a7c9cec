package main

import (
	"context"
	"os"

	"github.com/codingsince1985/geo-golang/openstreetmap"

	"realestate-pipeline/config"
	"realestate-pipeline/scraper"
	"realestate-pipeline/scraper/realtor"
	"realestate-pipeline/scraper/redfin"
	"realestate-pipeline/scraper/zillow"
	"realestate-pipeline/services"
	"realestate-pipeline/storage"
	"realestate-pipeline/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Real Estate Ingestion Pipeline starting ===")
	logger.Info("Config — pages/source: %d | dedupe threshold: %d | retries: %d | rate: %v–%v",
		cfg.PagesPerSource, cfg.DedupeThreshold, cfg.RetryMaxAttempts,
		cfg.RateLimitMin, cfg.RateLimitMax)

	var store storage.Store
	if cfg.Offline {
		logger.Info("Offline mode — using in-memory store")
		store = storage.NewMemoryStore()
	} else {
		pg, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
			os.Exit(1)
		}
		store = pg
	}
	defer store.Close()

	limiter := utils.NewRateLimiter(cfg.RateLimitMin, cfg.RateLimitMax, logger)
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.RetryMaxAttempts,
		Delay:       cfg.RetryDelay,
		Logger:      logger,
	}
	client := scraper.NewClient(limiter, retry, logger)

	sources := []scraper.Source{
		zillow.New(client, logger),
		redfin.New(logger),
		realtor.New(logger),
	}

	cleaner := services.NewCleaner(logger)
	matcher := services.NewDuplicateMatcher(store, cfg.DedupeThreshold, logger)
	geocoder := services.NewGeocodeCache(openstreetmap.Geocoder(), cfg.GeocodeDelay, logger)

	pipeline := services.NewPipeline(store, cleaner, matcher, geocoder, logger)

	ctx := context.Background()
	report := pipeline.RunOnce(ctx, sources, cfg.PagesPerSource)

	reportSvc := services.NewReportService(store, logger)
	reportSvc.Print(ctx, report)

	if stored := report.TotalStored(); stored == 0 {
		logger.Error("No listings were stored this run.")
		os.Exit(1)
	}
}
