package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/api/middleware"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/bigquery"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/export"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/jobs"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/statement"
)

// StatementArchive stores raw statement uploads so a batch can be reprocessed
// from its source file.
type StatementArchive interface {
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte) error
}

// StatementsHandler handles statement-related endpoints.
type StatementsHandler struct {
	assembler *statement.Assembler
	repo      bigquery.CheckRepository
	archive   StatementArchive
	bucket    string
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. A nil archive or
// empty bucket disables raw-upload archival.
func NewStatementsHandler(assembler *statement.Assembler, repo bigquery.CheckRepository, archive StatementArchive, bucket string, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		assembler: assembler,
		repo:      repo,
		archive:   archive,
		bucket:    bucket,
		log:       log,
	}
}

// SeedStatement handles POST /api/statements/seed
func (h *StatementsHandler) SeedStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A statement file is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		middleware.WriteError(w, http.StatusBadRequest, "Only .csv statements are supported")
		return
	}

	contents, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read statement upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	if len(contents) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	grid, err := statement.ReadGrid(bytes.NewReader(contents))
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to decode statement CSV")
		middleware.WriteError(w, http.StatusBadRequest, "Invalid CSV file")
		return
	}

	batch := h.assembler.Assemble(ctx, grid)

	if err := h.repo.InsertChecks(ctx, bigquery.RowsFromBatch(batch)); err != nil {
		h.log.Error().Err(err).Str("batch_id", batch.BatchID).Msg("Failed to store seeded checks")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store seeded checks")
		return
	}

	// Archive the raw upload under the batch ID. Failure here loses the
	// source file, not the seeded records, so the request still succeeds.
	if h.archive != nil && h.bucket != "" {
		object := "statements/" + batch.BatchID + ".csv"
		if err := h.archive.UploadBytes(ctx, h.bucket, object, contents); err != nil {
			h.log.Warn().Err(err).Str("bucket", h.bucket).Str("object", object).Msg("Failed to archive statement upload")
		}
	}

	h.log.Info().
		Str("batch_id", batch.BatchID).
		Str("filename", header.Filename).
		Int("checks", len(batch.Records)).
		Msg("Statement seeded")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statement_id": batch.BatchID,
		"checks":       batch.Records,
		"count":        len(batch.Records),
	})
}

// ChecksHandler handles check-related endpoints.
type ChecksHandler struct {
	repo      bigquery.CheckRepository
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewChecksHandler creates a new checks handler.
func NewChecksHandler(repo bigquery.CheckRepository, publisher jobs.Publisher, log zerolog.Logger) *ChecksHandler {
	return &ChecksHandler{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// EnqueueExtraction handles POST /api/checks/extract
func (h *ChecksHandler) EnqueueExtraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GCSURI  string `json:"gcs_uri"`
		BatchID string `json:"batch_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri is required")
		return
	}

	ctx := r.Context()

	job := &jobs.ExtractCheckJob{
		BatchID:  req.BatchID,
		ImageURI: req.GCSURI,
	}

	if err := h.publisher.PublishExtractCheck(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", req.GCSURI).Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": req.GCSURI,
		"status":  string(job.Status),
	})
}

// ListFlagged handles GET /api/checks/flagged
func (h *ChecksHandler) ListFlagged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks, err := h.repo.ListFlaggedChecks(ctx, r.URL.Query().Get("batch_id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list flagged checks")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list flagged checks")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"checks": checks,
		"count":  len(checks),
	})
}

// BatchesHandler handles batch-related endpoints.
type BatchesHandler struct {
	repo bigquery.CheckRepository
	log  zerolog.Logger
}

// NewBatchesHandler creates a new batches handler.
func NewBatchesHandler(repo bigquery.CheckRepository, log zerolog.Logger) *BatchesHandler {
	return &BatchesHandler{
		repo: repo,
		log:  log,
	}
}

// ListRecords handles GET /api/batches/{id}/records
func (h *BatchesHandler) ListRecords(w http.ResponseWriter, r *http.Request, batchID string) {
	ctx := r.Context()

	rows, err := h.repo.ChecksByBatch(ctx, batchID)
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", batchID).Msg("Failed to query batch records")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query batch records")
		return
	}

	records := make([]domain.CheckRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, bigquery.RecordFromRow(row))
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statement_id": batchID,
		"checks":       records,
		"count":        len(records),
	})
}

// ExportCSV handles GET /api/batches/{id}/export
func (h *BatchesHandler) ExportCSV(w http.ResponseWriter, r *http.Request, batchID string) {
	ctx := r.Context()

	rows, err := h.repo.ChecksByBatch(ctx, batchID)
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", batchID).Msg("Failed to export batch")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export batch")
		return
	}
	if len(rows) == 0 {
		middleware.WriteError(w, http.StatusNotFound, "Batch not found")
		return
	}

	records := make([]domain.CheckRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, bigquery.RecordFromRow(row))
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "statement-"+batchID+".csv"))
	w.WriteHeader(http.StatusOK)

	if err := export.Write(w, records); err != nil {
		h.log.Error().Err(err).Str("batch_id", batchID).Msg("Failed to stream export CSV")
	}
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		BatchID: query.Get("batch_id"),
		Status:  jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
