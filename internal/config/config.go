package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Google Cloud
	ProjectID string
	Dataset   string
	Bucket    string

	// Gemini column classification
	GeminiModel      string
	SemanticDisabled bool

	// Vision OCR
	VisionDisabled bool

	// Review flagging
	ReviewThreshold float64

	// Worker pool
	WorkerCount int
	QueueSize   int

	// Notion review sync
	NotionToken      string
	NotionDatabaseID string
}

func Load() Config {
	// Local development reads a .env file when one exists. Deployed
	// environments set real variables and have nothing to load.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8080"),

		ProjectID: os.Getenv("GCP_PROJECT"),
		Dataset:   envOr("BQ_DATASET", "checks"),
		Bucket:    os.Getenv("GCS_BUCKET"),

		GeminiModel:      envOr("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		SemanticDisabled: envBool("SEMANTIC_DISABLED", false),

		VisionDisabled: envBool("VISION_DISABLED", false),

		ReviewThreshold: envFloat("REVIEW_THRESHOLD", 0.5),

		WorkerCount: envInt("WORKER_COUNT", 5),
		QueueSize:   envInt("QUEUE_SIZE", 100),

		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 5
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.ReviewThreshold < 0 || cfg.ReviewThreshold > 1 {
		cfg.ReviewThreshold = 0.5
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("GCP_PROJECT is required")
	}
	if c.Dataset == "" {
		return fmt.Errorf("BQ_DATASET is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("GCS_BUCKET is required")
	}
	return nil
}

// ReviewSyncEnabled reports whether flagged checks should be pushed to Notion.
func (c Config) ReviewSyncEnabled() bool {
	return c.NotionToken != "" && c.NotionDatabaseID != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
