package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/api/handlers"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/api/middleware"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/bigquery"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/checks"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/config"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/extraction"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/gcs"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/jobs/inmemory"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/logger"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/reviewsync"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/semantic"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/statement"
)

// maxUploadBytes bounds statement CSV uploads. Bank exports run well under this.
const maxUploadBytes = 32 << 20

func main() {
	// Initialize logger
	log := logger.New()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Initialize check repository
	repo, err := bigquery.NewRepository(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create check repository")
	}
	defer repo.Close()

	// Semantic column classification falls back to the local scorer when the
	// Gemini client is disabled or cannot be built.
	var classifier statement.Classifier
	if cfg.SemanticDisabled {
		log.Info().Msg("Semantic column classification disabled, scoring locally")
	} else {
		gemini, err := semantic.NewGeminiClassifier(ctx, cfg.GeminiModel, logger.WithComponent(log, "semantic"))
		if err != nil {
			log.Warn().Err(err).Msg("Semantic classifier unavailable, scoring locally")
		} else {
			classifier = gemini
		}
	}
	assembler := statement.NewAssembler(classifier, logger.WithComponent(log, "statement"))

	// Shared by statement archival and the extraction pipeline.
	objectStore := gcs.NewGCSStorageService()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.WorkerCount, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Start extraction workers in background so enqueued images are processed
	// in-process. A standalone worker binary exists for split deployments.
	if cfg.VisionDisabled {
		log.Warn().Msg("Vision OCR disabled - extraction jobs will stay pending")
	} else {
		provider, err := ocr.NewVisionProvider(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Vision provider")
		}

		var notifier extraction.ReviewNotifier
		if cfg.ReviewSyncEnabled() {
			notifier = reviewsync.NewSyncer(
				reviewsync.NewNotionClient(cfg.NotionToken),
				cfg.NotionDatabaseID,
				logger.WithComponent(log, "reviewsync"),
			)
			log.Info().Msg("Flagged checks will sync to the Notion review database")
		}

		pipeline := extraction.NewCheckExtractionPipeline(
			objectStore,
			provider,
			checks.NewExtractor(checks.DefaultOptions(), logger.WithComponent(log, "checks")),
			repo,
			cfg.ReviewThreshold,
			notifier,
		)

		go func() {
			log.Info().Int("workers", cfg.WorkerCount).Msg("Starting extraction workers")
			if err := jobQueue.Start(workerCtx, extraction.NewJobHandler(pipeline, logger.WithComponent(log, "extraction"))); err != nil {
				log.Error().Err(err).Msg("Extraction workers stopped with error")
			}
		}()
	}

	// Initialize handlers
	statementsHandler := handlers.NewStatementsHandler(assembler, repo, objectStore, cfg.Bucket, log)
	checksHandler := handlers.NewChecksHandler(repo, jobQueue, log)
	batchesHandler := handlers.NewBatchesHandler(repo, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Statements endpoints
	mux.HandleFunc("/api/statements/seed", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.SeedStatement(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Checks endpoints
	mux.HandleFunc("/api/checks/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			checksHandler.EnqueueExtraction(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/checks/flagged", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			checksHandler.ListFlagged(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Batches endpoints
	mux.HandleFunc("/api/batches/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/api/batches/")
		batchID, op, _ := strings.Cut(rest, "/")
		if batchID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Batch ID is required")
			return
		}

		switch op {
		case "records":
			batchesHandler.ListRecords(w, r, batchID)
		case "export":
			batchesHandler.ExportCSV(w, r, batchID)
		default:
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.MaxBody(maxUploadBytes)(
						middleware.Auth(mux),
					),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	// Close job queue
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
