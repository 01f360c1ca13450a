package inmemory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/jobs"
)

// waitForStatus polls the store until the job reaches the wanted status.
func waitForStatus(t *testing.T, store jobs.JobStore, jobID string, want jobs.JobStatus) *jobs.ExtractCheckJob {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %q", jobID, want)
	return nil
}

func TestQueueProcessesJob(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, 2, store)
	defer q.Close()

	done := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		done <- job.GetID()
		return nil
	}
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.ExtractCheckJob{ImageURI: "gs://checks/img-1.png"}
	if err := q.PublishExtractCheck(ctx, job); err != nil {
		t.Fatalf("PublishExtractCheck() error = %v", err)
	}
	if job.JobID == "" {
		t.Fatal("PublishExtractCheck() did not assign a job ID")
	}
	if job.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", job.MaxRetries)
	}

	select {
	case id := <-done:
		if id != job.JobID {
			t.Errorf("handler saw job %q, want %q", id, job.JobID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Error("completed job is missing timestamps")
	}
	if got.Error != "" {
		t.Errorf("Error = %q, want empty", got.Error)
	}
}

func TestQueueMarksRetrying(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, 1, store)
	defer q.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		return fmt.Errorf("image not readable")
	}
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.ExtractCheckJob{ImageURI: "gs://checks/bad.png"}
	if err := q.PublishExtractCheck(ctx, job); err != nil {
		t.Fatalf("PublishExtractCheck() error = %v", err)
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusRetrying)
	if got.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", got.RetryCount)
	}
	if got.Error != "image not readable" {
		t.Errorf("Error = %q, want image not readable", got.Error)
	}
}

func TestQueueExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	q := NewQueue(10, 1, store)
	defer q.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		return fmt.Errorf("always fails")
	}
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Pre-set RetryCount at the cap so the first failure is terminal.
	job := &jobs.ExtractCheckJob{ImageURI: "gs://checks/bad.png", MaxRetries: 2, RetryCount: 2}
	if err := q.PublishExtractCheck(ctx, job); err != nil {
		t.Fatalf("PublishExtractCheck() error = %v", err)
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if got.Error != "always fails" {
		t.Errorf("Error = %q, want always fails", got.Error)
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue(1, 1, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	err := q.PublishExtractCheck(context.Background(), &jobs.ExtractCheckJob{ImageURI: "gs://checks/late.png"})
	if err == nil {
		t.Fatal("PublishExtractCheck() error = nil on closed queue")
	}

	// Close is idempotent.
	if err := q.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
