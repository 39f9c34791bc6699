package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"practo-scraper/browser"
	"practo-scraper/config"
	"practo-scraper/scraper/practo"
	"practo-scraper/services"
	"practo-scraper/storage"
	"practo-scraper/utils"
)

func main() {
	// ================== Bootstrap ====================
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info().Msg("Practo Pediatrician Scraping System")
	logger.Info().
		Int("max_pages_per_city", cfg.MaxPagesPerCity).
		Float64("delay_min_s", cfg.RequestDelayMin).
		Float64("delay_max_s", cfg.RequestDelayMax).
		Int("retries", cfg.MaxRetries).
		Int("batch_size", cfg.BatchSaveSize).
		Msg("configuration loaded")

	cities, err := config.LoadCities(cfg.CitiesFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot load cities")
	}
	if len(cities) == 0 {
		logger.Warn().Str("file", cfg.CitiesFile).Msg("no cities to scrape")
		return
	}
	logger.Info().Int("count", len(cities)).Str("file", cfg.CitiesFile).Msg("cities loaded")

	// =================== Storage ====================
	csvWriter := storage.NewCSVWriter(cfg.OutputFile, logger)
	writers := []storage.RecordWriter{csvWriter}

	dedup := utils.NewDedupTracker()
	if keys, err := csvWriter.SeenKeys(); err != nil {
		logger.Warn().Err(err).Msg("could not seed dedup keys from existing output")
	} else if len(keys) > 0 {
		dedup.Seed(keys)
		logger.Info().Int("keys", len(keys)).Msg("dedup store seeded from existing output")
	}

	if cfg.DatabaseURL != "" {
		pgWriter, err := storage.NewPostgresWriter(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error().Err(err).Msg("PostgreSQL unavailable, continuing with CSV only")
		} else {
			defer pgWriter.Close()
			if err := pgWriter.CreateTable(); err != nil {
				logger.Error().Err(err).Msg("PostgreSQL table setup failed, continuing with CSV only")
			} else {
				writers = append(writers, pgWriter)
			}
		}
	}

	// =================== Browser ====================
	page, err := browser.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot initialize browser")
	}
	defer page.Close()

	// =============== Scraping ===================================
	// An interrupt stops new city/page work; buffered records still flush.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validator := services.NewValidator(cfg.FeeMin, cfg.FeeMax, cfg.TimestampFormat)
	extractor := practo.NewExtractor(validator, cfg.ExtractPhone, logger)
	scraper := practo.NewScraper(cfg, logger, page, extractor, dedup, writers...)

	if err := scraper.Run(ctx, cities); err != nil {
		logger.Error().Err(err).Msg("scraping failed")
		page.Close()
		os.Exit(1)
	}

	logger.Info().Str("output", cfg.OutputFile).Msg("done")
}
