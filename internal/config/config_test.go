package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "GCP_PROJECT", "BQ_DATASET", "GCS_BUCKET",
		"GEMINI_MODEL", "SEMANTIC_DISABLED", "VISION_DISABLED",
		"REVIEW_THRESHOLD", "WORKER_COUNT", "QUEUE_SIZE",
		"NOTION_TOKEN", "NOTION_DATABASE_ID",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Dataset != "checks" {
		t.Errorf("Dataset = %q, want checks", cfg.Dataset)
	}
	if cfg.GeminiModel != "gemini-2.0-flash-exp" {
		t.Errorf("GeminiModel = %q, want gemini-2.0-flash-exp", cfg.GeminiModel)
	}
	if cfg.SemanticDisabled || cfg.VisionDisabled {
		t.Error("semantic and vision should be enabled by default")
	}
	if cfg.ReviewThreshold != 0.5 {
		t.Errorf("ReviewThreshold = %v, want 0.5", cfg.ReviewThreshold)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("WorkerCount = %d, want 5", cfg.WorkerCount)
	}
	if cfg.QueueSize != 100 {
		t.Errorf("QueueSize = %d, want 100", cfg.QueueSize)
	}
	if cfg.ReviewSyncEnabled() {
		t.Error("ReviewSyncEnabled() = true without Notion credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("GCP_PROJECT", "demo-project")
	t.Setenv("BQ_DATASET", "reconciliation")
	t.Setenv("GCS_BUCKET", "check-images")
	t.Setenv("SEMANTIC_DISABLED", "true")
	t.Setenv("REVIEW_THRESHOLD", "0.75")
	t.Setenv("WORKER_COUNT", "12")
	t.Setenv("NOTION_TOKEN", "secret")
	t.Setenv("NOTION_DATABASE_ID", "db-123")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.ProjectID != "demo-project" {
		t.Errorf("ProjectID = %q, want demo-project", cfg.ProjectID)
	}
	if cfg.Dataset != "reconciliation" {
		t.Errorf("Dataset = %q, want reconciliation", cfg.Dataset)
	}
	if !cfg.SemanticDisabled {
		t.Error("SemanticDisabled = false, want true")
	}
	if cfg.ReviewThreshold != 0.75 {
		t.Errorf("ReviewThreshold = %v, want 0.75", cfg.ReviewThreshold)
	}
	if cfg.WorkerCount != 12 {
		t.Errorf("WorkerCount = %d, want 12", cfg.WorkerCount)
	}
	if !cfg.ReviewSyncEnabled() {
		t.Error("ReviewSyncEnabled() = false with Notion credentials set")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("QUEUE_SIZE", "not-a-number")
	t.Setenv("REVIEW_THRESHOLD", "1.5")

	cfg := Load()

	if cfg.WorkerCount != 5 {
		t.Errorf("WorkerCount = %d, want fallback 5", cfg.WorkerCount)
	}
	if cfg.QueueSize != 100 {
		t.Errorf("QueueSize = %d, want fallback 100", cfg.QueueSize)
	}
	if cfg.ReviewThreshold != 0.5 {
		t.Errorf("ReviewThreshold = %v, want fallback 0.5", cfg.ReviewThreshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{ProjectID: "p", Dataset: "d", Bucket: "b"}, false},
		{"missing project", Config{Dataset: "d", Bucket: "b"}, true},
		{"missing dataset", Config{ProjectID: "p", Bucket: "b"}, true},
		{"missing bucket", Config{ProjectID: "p", Dataset: "d"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
