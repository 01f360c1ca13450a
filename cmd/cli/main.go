package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/bigquery"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/checks"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/config"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/export"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/extraction"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/gcs"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/logger"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/reviewsync"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/semantic"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/statement"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		runSeed(log)
	case "extract":
		runExtract(log)
	case "export":
		runExport(log)
	case "upload":
		runUpload(log)
	case "review-sync":
		runReviewSync(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Check Reconciliation CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  seed         Parse a statement CSV and seed its checks")
	fmt.Println("  extract      Extract payee and check number from a check image")
	fmt.Println("  export       Export a seeded batch as reconciliation CSV")
	fmt.Println("  upload       Upload a check image or statement to GCS")
	fmt.Println("  review-sync  Push flagged checks to the Notion review database")
	fmt.Println("  help         Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// newClassifier builds the semantic classifier unless configuration disables
// it. A nil return means the local scorer handles every section.
func newClassifier(ctx context.Context, cfg config.Config, log zerolog.Logger) statement.Classifier {
	if cfg.SemanticDisabled {
		return nil
	}
	gemini, err := semantic.NewGeminiClassifier(ctx, cfg.GeminiModel, logger.WithComponent(log, "semantic"))
	if err != nil {
		log.Warn().Err(err).Msg("Semantic classifier unavailable, scoring locally")
		return nil
	}
	return gemini
}

func runSeed(log zerolog.Logger) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to the statement CSV")
	outPath := fs.String("out", "", "Write the parsed checks as CSV to this path")
	dryRun := fs.Bool("dry-run", false, "Parse and print checks without writing to BigQuery")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	cfg := config.Load()
	if !*dryRun {
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open statement file")
	}
	defer f.Close()

	grid, err := statement.ReadGrid(f)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode statement CSV")
	}

	assembler := statement.NewAssembler(newClassifier(ctx, cfg, log), logger.WithComponent(log, "statement"))
	batch := assembler.Assemble(ctx, grid)

	fmt.Printf("\n=== Batch %s (%d checks) ===\n", batch.BatchID, len(batch.Records))
	for _, rec := range batch.Records {
		date, amount := "-", "-"
		if rec.Date != nil {
			date = rec.Date.String()
		}
		if rec.Amount != nil {
			amount = fmt.Sprintf("%.2f", *rec.Amount)
		}
		fmt.Printf("  %-10s %-12s %s\n", rec.Identifier, date, amount)
	}
	fmt.Println()

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		if err := export.Write(f, batch.Records); err != nil {
			log.Fatal().Err(err).Msg("Failed to write parsed CSV")
		}
		f.Close()
		fmt.Printf("Wrote parsed checks to %s.\n", *outPath)
	}

	if *dryRun {
		fmt.Println("Dry run, nothing written to BigQuery.")
		return
	}

	repo, err := bigquery.NewRepository(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create check repository")
	}
	defer repo.Close()

	if err := repo.InsertChecks(ctx, bigquery.RowsFromBatch(batch)); err != nil {
		log.Fatal().Err(err).Msg("Failed to store seeded checks")
	}

	fmt.Printf("Seeded %d checks into batch %s.\n", len(batch.Records), batch.BatchID)
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "GCS URI of the check image (e.g. gs://bucket/check.png)")
	filePath := fs.String("file", "", "Path to a local check image (prints the result, skips BigQuery)")
	batchID := fs.String("batch", "", "Statement batch to reconcile against")
	fs.Parse(os.Args[2:])

	if (*gcsURI == "") == (*filePath == "") {
		log.Fatal().Msg("Error: exactly one of --gcs-uri or --file is required")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	provider, err := ocr.NewVisionProvider(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Vision provider")
	}
	extractor := checks.NewExtractor(checks.DefaultOptions(), logger.WithComponent(log, "checks"))

	// Local images run recognition and extraction only, for checking how a
	// given check photographs before anything is persisted.
	if *filePath != "" {
		image, err := os.ReadFile(*filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read image file")
		}

		doc, err := provider.Recognize(ctx, image)
		if err != nil {
			log.Fatal().Err(err).Msg("Text recognition failed")
		}

		result := extractor.Extract(doc)
		printExtraction(result, result.Confidence < cfg.ReviewThreshold)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	repo, err := bigquery.NewRepository(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create check repository")
	}
	defer repo.Close()

	var notifier extraction.ReviewNotifier
	if cfg.ReviewSyncEnabled() {
		notifier = reviewsync.NewSyncer(
			reviewsync.NewNotionClient(cfg.NotionToken),
			cfg.NotionDatabaseID,
			logger.WithComponent(log, "reviewsync"),
		)
	}

	pipeline := extraction.NewCheckExtractionPipeline(
		gcs.NewGCSStorageService(),
		provider,
		extractor,
		repo,
		cfg.ReviewThreshold,
		notifier,
	)

	state := &extraction.PipelineState{ImageURI: *gcsURI, BatchID: *batchID}
	if err := pipeline.Execute(ctx, state); err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	printExtraction(state.Result, state.Flagged)
}

func printExtraction(result domain.ExtractionResult, flagged bool) {
	fmt.Println("\n=== Extraction Result ===")
	fmt.Printf("Check Number: %s\n", result.CheckNumber)
	fmt.Printf("Payee:        %s\n", result.PayeeName)
	fmt.Printf("Confidence:   %.2f\n", result.Confidence)
	if flagged {
		fmt.Println("Flagged for manual review.")
	}
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	batchID := fs.String("batch", "", "Statement batch to export")
	outPath := fs.String("out", "", "Output file (defaults to stdout)")
	fs.Parse(os.Args[2:])

	if *batchID == "" {
		log.Fatal().Msg("Error: --batch is required")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := bigquery.NewRepository(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create check repository")
	}
	defer repo.Close()

	rows, err := repo.ChecksByBatch(ctx, *batchID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query batch")
	}
	if len(rows) == 0 {
		log.Fatal().Str("batch_id", *batchID).Msg("Batch not found")
	}

	records := make([]domain.CheckRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, bigquery.RecordFromRow(row))
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, records); err != nil {
		log.Fatal().Err(err).Msg("Failed to write export CSV")
	}

	if *outPath != "" {
		fmt.Printf("Exported %d checks to %s.\n", len(records), *outPath)
	}
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name (or set GCS_BUCKET env)")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	storage := gcs.NewGCSStorageService()
	if err := storage.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func runReviewSync(log zerolog.Logger) {
	fs := flag.NewFlagSet("review-sync", flag.ExitOnError)
	batchID := fs.String("batch", "", "Limit the sync to one statement batch")
	dryRun := fs.Bool("dry-run", false, "Preview changes without writing to Notion")
	fs.Parse(os.Args[2:])

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if !cfg.ReviewSyncEnabled() {
		log.Fatal().Msg("Error: NOTION_TOKEN and NOTION_DATABASE_ID are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := bigquery.NewRepository(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create check repository")
	}
	defer repo.Close()

	rows, err := repo.ListFlaggedChecks(ctx, *batchID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list flagged checks")
	}

	syncer := reviewsync.NewSyncer(
		reviewsync.NewNotionClient(cfg.NotionToken),
		cfg.NotionDatabaseID,
		logger.WithComponent(log, "reviewsync"),
	)
	if err := syncer.SyncFlagged(ctx, rows, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println("Sync completed successfully.")
}
