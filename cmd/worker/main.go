package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/bigquery"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/checks"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/config"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/extraction"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/gcs"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/jobs/inmemory"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/logger"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/reviewsync"
)

func main() {
	// Initialize logger
	log := logger.New()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.VisionDisabled {
		log.Fatal().Msg("VISION_DISABLED is set - the extraction worker needs Vision OCR")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize check repository
	repo, err := bigquery.NewRepository(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create check repository")
	}
	defer repo.Close()

	// Initialize Vision OCR
	provider, err := ocr.NewVisionProvider(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Vision provider")
	}

	// Flagged checks go to the Notion review database when configured
	var notifier extraction.ReviewNotifier
	if cfg.ReviewSyncEnabled() {
		notifier = reviewsync.NewSyncer(
			reviewsync.NewNotionClient(cfg.NotionToken),
			cfg.NotionDatabaseID,
			logger.WithComponent(log, "reviewsync"),
		)
		log.Info().Msg("Flagged checks will sync to the Notion review database")
	}

	// Assemble the extraction pipeline
	pipeline := extraction.NewCheckExtractionPipeline(
		gcs.NewGCSStorageService(),
		provider,
		checks.NewExtractor(checks.DefaultOptions(), logger.WithComponent(log, "checks")),
		repo,
		cfg.ReviewThreshold,
		notifier,
	)

	// Initialize job store and queue
	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.WorkerCount, jobStore)

	log.Info().
		Int("workers", cfg.WorkerCount).
		Float64("review_threshold", cfg.ReviewThreshold).
		Msg("Starting worker service")

	// Start consuming jobs
	handler := extraction.NewJobHandler(pipeline, logger.WithComponent(log, "extraction"))
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Cancel context to stop workers
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	// Close the queue
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
