package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bq "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/api/handlers"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/bigquery"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/jobs"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/statement"
)

// MockCheckRepository is a mock implementation of bigquery.CheckRepository for testing.
type MockCheckRepository struct {
	InsertChecksFunc          func(ctx context.Context, rows []*bigquery.CheckRow) error
	FindCheckByNumberFunc     func(ctx context.Context, checkNumber string) (*bigquery.CheckRow, error)
	UpsertCheckExtractionFunc func(ctx context.Context, upd bigquery.ExtractionUpdate) (string, error)
	ChecksByBatchFunc         func(ctx context.Context, batchID string) ([]*bigquery.CheckRow, error)
	ListFlaggedChecksFunc     func(ctx context.Context, batchID string) ([]*bigquery.CheckRow, error)
}

func (m *MockCheckRepository) InsertChecks(ctx context.Context, rows []*bigquery.CheckRow) error {
	if m.InsertChecksFunc != nil {
		return m.InsertChecksFunc(ctx, rows)
	}
	return nil
}

func (m *MockCheckRepository) FindCheckByNumber(ctx context.Context, checkNumber string) (*bigquery.CheckRow, error) {
	if m.FindCheckByNumberFunc != nil {
		return m.FindCheckByNumberFunc(ctx, checkNumber)
	}
	return nil, nil
}

func (m *MockCheckRepository) UpsertCheckExtraction(ctx context.Context, upd bigquery.ExtractionUpdate) (string, error) {
	if m.UpsertCheckExtractionFunc != nil {
		return m.UpsertCheckExtractionFunc(ctx, upd)
	}
	return "check-1", nil
}

func (m *MockCheckRepository) ChecksByBatch(ctx context.Context, batchID string) ([]*bigquery.CheckRow, error) {
	if m.ChecksByBatchFunc != nil {
		return m.ChecksByBatchFunc(ctx, batchID)
	}
	return nil, nil
}

func (m *MockCheckRepository) ListFlaggedChecks(ctx context.Context, batchID string) ([]*bigquery.CheckRow, error) {
	if m.ListFlaggedChecksFunc != nil {
		return m.ListFlaggedChecksFunc(ctx, batchID)
	}
	return nil, nil
}

// MockPublisher is a mock implementation of jobs.Publisher for testing.
type MockPublisher struct {
	PublishExtractCheckFunc func(ctx context.Context, job *jobs.ExtractCheckJob) error
}

func (m *MockPublisher) PublishExtractCheck(ctx context.Context, job *jobs.ExtractCheckJob) error {
	if m.PublishExtractCheckFunc != nil {
		return m.PublishExtractCheckFunc(ctx, job)
	}
	job.JobID = "job-1"
	job.Status = jobs.JobStatusPending
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// MockJobStore is a mock implementation of jobs.JobStore for testing.
type MockJobStore struct {
	GetJobFunc   func(ctx context.Context, jobID string) (*jobs.ExtractCheckJob, error)
	ListJobsFunc func(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractCheckJob, error)
}

func (m *MockJobStore) SaveJob(ctx context.Context, job *jobs.ExtractCheckJob) error { return nil }

func (m *MockJobStore) GetJob(ctx context.Context, jobID string) (*jobs.ExtractCheckJob, error) {
	if m.GetJobFunc != nil {
		return m.GetJobFunc(ctx, jobID)
	}
	return nil, fmt.Errorf("job not found: %s", jobID)
}

func (m *MockJobStore) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractCheckJob, error) {
	if m.ListJobsFunc != nil {
		return m.ListJobsFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockJobStore) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	return nil
}

// MockArchive is a mock implementation of handlers.StatementArchive for testing.
type MockArchive struct {
	UploadBytesFunc func(ctx context.Context, bucketName, objectName string, data []byte) error
	Bucket          string
	Object          string
	Data            []byte
}

func (m *MockArchive) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte) error {
	if m.UploadBytesFunc != nil {
		return m.UploadBytesFunc(ctx, bucketName, objectName, data)
	}
	m.Bucket, m.Object, m.Data = bucketName, objectName, data
	return nil
}

func statementUpload(t *testing.T, filename, contents string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := io.WriteString(fw, contents); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/statements/seed", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const sampleStatement = "Check Number,Date,Amount\n" +
	"1024,01/15/2024,1500.00\n" +
	"1025,01/16/2024,250.50\n"

func TestSeedStatement(t *testing.T) {
	var inserted []*bigquery.CheckRow
	repo := &MockCheckRepository{
		InsertChecksFunc: func(ctx context.Context, rows []*bigquery.CheckRow) error {
			inserted = rows
			return nil
		},
	}
	archive := &MockArchive{}
	h := handlers.NewStatementsHandler(statement.NewAssembler(nil, zerolog.Nop()), repo, archive, "statement-archive", zerolog.Nop())

	w := httptest.NewRecorder()
	h.SeedStatement(w, statementUpload(t, "march.csv", sampleStatement))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var batch domain.Batch
	if err := json.NewDecoder(w.Body).Decode(&batch); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if batch.BatchID == "" {
		t.Error("statement_id is empty")
	}
	if len(batch.Records) != 2 {
		t.Fatalf("checks = %d, want 2", len(batch.Records))
	}
	first := batch.Records[0]
	if first.Identifier != "1024" {
		t.Errorf("checks[0].check_number = %q, want 1024", first.Identifier)
	}
	if first.Date == nil || *first.Date != (civil.Date{Year: 2024, Month: 1, Day: 15}) {
		t.Errorf("checks[0].date = %v, want 2024-01-15", first.Date)
	}
	if first.Amount == nil || *first.Amount != 1500 {
		t.Errorf("checks[0].amount = %v, want 1500", first.Amount)
	}

	if len(inserted) != 2 {
		t.Fatalf("inserted %d rows, want 2", len(inserted))
	}
	if inserted[0].Source != bigquery.SourceStatement {
		t.Errorf("inserted[0].Source = %q, want %q", inserted[0].Source, bigquery.SourceStatement)
	}
	if inserted[0].BatchID != batch.BatchID {
		t.Errorf("inserted[0].BatchID = %q, want %q", inserted[0].BatchID, batch.BatchID)
	}

	if archive.Bucket != "statement-archive" {
		t.Errorf("archive bucket = %q, want statement-archive", archive.Bucket)
	}
	if want := "statements/" + batch.BatchID + ".csv"; archive.Object != want {
		t.Errorf("archive object = %q, want %q", archive.Object, want)
	}
	if string(archive.Data) != sampleStatement {
		t.Error("archived bytes differ from upload")
	}
}

func TestSeedStatementArchiveFailureIsNonFatal(t *testing.T) {
	archive := &MockArchive{
		UploadBytesFunc: func(ctx context.Context, bucketName, objectName string, data []byte) error {
			return fmt.Errorf("bucket unavailable")
		},
	}
	h := handlers.NewStatementsHandler(statement.NewAssembler(nil, zerolog.Nop()), &MockCheckRepository{}, archive, "statement-archive", zerolog.Nop())

	w := httptest.NewRecorder()
	h.SeedStatement(w, statementUpload(t, "march.csv", sampleStatement))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestSeedStatementRejectsNonCSV(t *testing.T) {
	h := handlers.NewStatementsHandler(statement.NewAssembler(nil, zerolog.Nop()), &MockCheckRepository{}, nil, "", zerolog.Nop())

	w := httptest.NewRecorder()
	h.SeedStatement(w, statementUpload(t, "march.pdf", sampleStatement))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSeedStatementRejectsEmptyFile(t *testing.T) {
	h := handlers.NewStatementsHandler(statement.NewAssembler(nil, zerolog.Nop()), &MockCheckRepository{}, nil, "", zerolog.Nop())

	w := httptest.NewRecorder()
	h.SeedStatement(w, statementUpload(t, "march.csv", ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSeedStatementRequiresFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no file attached")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/statements/seed", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	h := handlers.NewStatementsHandler(statement.NewAssembler(nil, zerolog.Nop()), &MockCheckRepository{}, nil, "", zerolog.Nop())

	w := httptest.NewRecorder()
	h.SeedStatement(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEnqueueExtraction(t *testing.T) {
	var published *jobs.ExtractCheckJob
	publisher := &MockPublisher{
		PublishExtractCheckFunc: func(ctx context.Context, job *jobs.ExtractCheckJob) error {
			job.JobID = "job-42"
			job.Status = jobs.JobStatusPending
			published = job
			return nil
		},
	}
	h := handlers.NewChecksHandler(&MockCheckRepository{}, publisher, zerolog.Nop())

	body := strings.NewReader(`{"gcs_uri": "gs://check-images/1024.png", "batch_id": "batch-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/checks/extract", body)
	w := httptest.NewRecorder()
	h.EnqueueExtraction(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["job_id"] != "job-42" {
		t.Errorf("job_id = %q, want job-42", resp["job_id"])
	}
	if resp["status"] != string(jobs.JobStatusPending) {
		t.Errorf("status = %q, want pending", resp["status"])
	}

	if published == nil {
		t.Fatal("no job published")
	}
	if published.ImageURI != "gs://check-images/1024.png" {
		t.Errorf("published ImageURI = %q", published.ImageURI)
	}
	if published.BatchID != "batch-1" {
		t.Errorf("published BatchID = %q, want batch-1", published.BatchID)
	}
}

func TestEnqueueExtractionValidation(t *testing.T) {
	h := handlers.NewChecksHandler(&MockCheckRepository{}, &MockPublisher{}, zerolog.Nop())

	tests := []struct {
		name string
		body string
	}{
		{name: "missing gcs_uri", body: `{"batch_id": "batch-1"}`},
		{name: "malformed json", body: `{"gcs_uri":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/checks/extract", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.EnqueueExtraction(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestListFlagged(t *testing.T) {
	var gotBatchID string
	repo := &MockCheckRepository{
		ListFlaggedChecksFunc: func(ctx context.Context, batchID string) ([]*bigquery.CheckRow, error) {
			gotBatchID = batchID
			return []*bigquery.CheckRow{
				{CheckID: "check-1", CheckNumber: "1024", FlaggedForReview: true},
			}, nil
		},
	}
	h := handlers.NewChecksHandler(repo, &MockPublisher{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/checks/flagged?batch_id=batch-1", nil)
	w := httptest.NewRecorder()
	h.ListFlagged(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotBatchID != "batch-1" {
		t.Errorf("batch filter = %q, want batch-1", gotBatchID)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func batchRows() []*bigquery.CheckRow {
	return []*bigquery.CheckRow{
		{
			CheckID:     "check-1",
			BatchID:     "batch-1",
			CheckNumber: "1024",
			CheckDate:   bq.NullDate{Date: civil.Date{Year: 2024, Month: 1, Day: 15}, Valid: true},
			Amount:      bq.NullFloat64{Float64: 1500, Valid: true},
			Source:      bigquery.SourceStatement,
		},
		{
			CheckID:     "check-2",
			BatchID:     "batch-1",
			CheckNumber: "1025",
			Source:      bigquery.SourceStatement,
		},
	}
}

func TestListRecords(t *testing.T) {
	repo := &MockCheckRepository{
		ChecksByBatchFunc: func(ctx context.Context, batchID string) ([]*bigquery.CheckRow, error) {
			return batchRows(), nil
		},
	}
	h := handlers.NewBatchesHandler(repo, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/batches/batch-1/records", nil)
	w := httptest.NewRecorder()
	h.ListRecords(w, req, "batch-1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		StatementID string               `json:"statement_id"`
		Checks      []domain.CheckRecord `json:"checks"`
		Count       int                  `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StatementID != "batch-1" {
		t.Errorf("statement_id = %q, want batch-1", resp.StatementID)
	}
	if resp.Count != 2 || len(resp.Checks) != 2 {
		t.Fatalf("count = %d, checks = %d, want 2", resp.Count, len(resp.Checks))
	}
	if resp.Checks[0].Identifier != "1024" {
		t.Errorf("checks[0].check_number = %q, want 1024", resp.Checks[0].Identifier)
	}
}

func TestExportCSV(t *testing.T) {
	repo := &MockCheckRepository{
		ChecksByBatchFunc: func(ctx context.Context, batchID string) ([]*bigquery.CheckRow, error) {
			return batchRows(), nil
		},
	}
	h := handlers.NewBatchesHandler(repo, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/batches/batch-1/export", nil)
	w := httptest.NewRecorder()
	h.ExportCSV(w, req, "batch-1")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "statement-batch-1.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	want := "Check Number,Date,Amount\n" +
		"1024,2024-01-15,1500\n" +
		"1025,,\n"
	if w.Body.String() != want {
		t.Errorf("body = %q, want %q", w.Body.String(), want)
	}
}

func TestExportCSVUnknownBatch(t *testing.T) {
	h := handlers.NewBatchesHandler(&MockCheckRepository{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/batches/nope/export", nil)
	w := httptest.NewRecorder()
	h.ExportCSV(w, req, "nope")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetJob(t *testing.T) {
	store := &MockJobStore{
		GetJobFunc: func(ctx context.Context, jobID string) (*jobs.ExtractCheckJob, error) {
			if jobID != "job-1" {
				return nil, fmt.Errorf("job not found: %s", jobID)
			}
			return &jobs.ExtractCheckJob{JobID: "job-1", Status: jobs.JobStatusCompleted}, nil
		},
	}
	h := handlers.NewJobsHandler(store, zerolog.Nop())

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-1", nil)
		w := httptest.NewRecorder()
		h.GetJob(w, req, "job-1")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var job jobs.ExtractCheckJob
		if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if job.Status != jobs.JobStatusCompleted {
			t.Errorf("status = %q, want completed", job.Status)
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-2", nil)
		w := httptest.NewRecorder()
		h.GetJob(w, req, "job-2")

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestListJobsFilter(t *testing.T) {
	var gotFilter jobs.JobFilter
	store := &MockJobStore{
		ListJobsFunc: func(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractCheckJob, error) {
			gotFilter = filter
			return []*jobs.ExtractCheckJob{{JobID: "job-1"}}, nil
		},
	}
	h := handlers.NewJobsHandler(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?status=completed&batch_id=batch-1&limit=5&offset=10", nil)
	w := httptest.NewRecorder()
	h.ListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	want := jobs.JobFilter{BatchID: "batch-1", Status: jobs.JobStatusCompleted, Limit: 5, Offset: 10}
	if gotFilter != want {
		t.Errorf("filter = %+v, want %+v", gotFilter, want)
	}
}
