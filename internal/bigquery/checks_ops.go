package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const checksTable = "checks"

// Repository is the concrete implementation of CheckRepository that interacts
// with BigQuery. It holds a shared BigQuery client to avoid creating a new
// connection for each operation.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

var _ CheckRepository = (*Repository)(nil)

// NewRepository creates a new Repository with a shared BigQuery client.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection. This should be called when
// the repository is no longer needed to release resources.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertChecks inserts a batch of CheckRow into the checks table.
func (r *Repository) InsertChecks(ctx context.Context, rows []*CheckRow) error {
	if len(rows) == 0 {
		return nil
	}

	table := r.client.DatasetInProject(r.projectID, r.datasetID).Table(checksTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertChecks: inserting rows: %w", err)
	}

	return nil
}

const checkColumns = `
	check_id,
	batch_id,
	check_number,
	check_date,
	amount,
	payee_name,
	confidence,
	flagged_for_review,
	source,
	image_uri,
	created_ts,
	updated_ts`

// FindCheckByNumber retrieves the most recent check with the given number.
// Returns nil if no matching check is found.
func (r *Repository) FindCheckByNumber(ctx context.Context, checkNumber string) (*CheckRow, error) {
	if checkNumber == "" {
		return nil, fmt.Errorf("FindCheckByNumber: check_number cannot be empty")
	}

	query := fmt.Sprintf(`
		SELECT `+checkColumns+`
		FROM `+"`%s.%s.%s`"+`
		WHERE check_number = @check_number
		ORDER BY created_ts DESC
		LIMIT 1
	`, r.projectID, r.datasetID, checksTable)

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "check_number", Value: checkNumber},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindCheckByNumber: reading query: %w", err)
	}

	var row CheckRow
	err = it.Next(&row)
	if err == iterator.Done {
		// No matching check found
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindCheckByNumber: iterating: %w", err)
	}

	return &row, nil
}

// UpsertCheckExtraction attaches extraction results to the matching statement
// check, or creates a new OCR-origin row when none matches. Results without a
// check number always create a new row.
func (r *Repository) UpsertCheckExtraction(ctx context.Context, upd ExtractionUpdate) (string, error) {
	if upd.CheckNumber != "" {
		existing, err := r.FindCheckByNumber(ctx, upd.CheckNumber)
		if err != nil {
			return "", fmt.Errorf("UpsertCheckExtraction: finding existing check: %w", err)
		}
		if existing != nil {
			if err := r.updateExtraction(ctx, existing.CheckID, upd); err != nil {
				return "", err
			}
			return existing.CheckID, nil
		}
	}

	return r.insertExtraction(ctx, upd)
}

func (r *Repository) updateExtraction(ctx context.Context, checkID string, upd ExtractionUpdate) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE `+"`%s.%s.%s`"+`
		SET payee_name = @payee_name,
		    confidence = @confidence,
		    flagged_for_review = @flagged_for_review,
		    image_uri = @image_uri,
		    updated_ts = @updated_ts
		WHERE check_id = @check_id
	`, r.projectID, r.datasetID, checksTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "payee_name", Value: upd.PayeeName},
		{Name: "confidence", Value: upd.Confidence},
		{Name: "flagged_for_review", Value: upd.Flagged},
		{Name: "image_uri", Value: upd.ImageURI},
		{Name: "updated_ts", Value: time.Now()},
		{Name: "check_id", Value: checkID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("UpsertCheckExtraction: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("UpsertCheckExtraction: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("UpsertCheckExtraction: job error: %w", err)
	}

	return nil
}

func (r *Repository) insertExtraction(ctx context.Context, upd ExtractionUpdate) (string, error) {
	checkID := uuid.NewString()

	q := r.client.Query(fmt.Sprintf(`
		INSERT `+"`%s.%s.%s`"+` (
			check_id, batch_id, check_number,
			payee_name, confidence, flagged_for_review,
			source, image_uri, created_ts
		)
		VALUES (
			@check_id, @batch_id, @check_number,
			@payee_name, @confidence, @flagged_for_review,
			@source, @image_uri, @created_ts
		)
	`, r.projectID, r.datasetID, checksTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "check_id", Value: checkID},
		{Name: "batch_id", Value: upd.BatchID},
		{Name: "check_number", Value: upd.CheckNumber},
		{Name: "payee_name", Value: upd.PayeeName},
		{Name: "confidence", Value: upd.Confidence},
		{Name: "flagged_for_review", Value: upd.Flagged},
		{Name: "source", Value: SourceOCR},
		{Name: "image_uri", Value: upd.ImageURI},
		{Name: "created_ts", Value: time.Now()},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("UpsertCheckExtraction: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("UpsertCheckExtraction: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("UpsertCheckExtraction: job error: %w", err)
	}

	return checkID, nil
}

// ChecksByBatch retrieves all checks belonging to a statement batch,
// ordered by check number.
func (r *Repository) ChecksByBatch(ctx context.Context, batchID string) ([]*CheckRow, error) {
	if batchID == "" {
		return nil, fmt.Errorf("ChecksByBatch: batch_id cannot be empty")
	}

	query := fmt.Sprintf(`
		SELECT `+checkColumns+`
		FROM `+"`%s.%s.%s`"+`
		WHERE batch_id = @batch_id
		ORDER BY check_number
	`, r.projectID, r.datasetID, checksTable)

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "batch_id", Value: batchID},
	}

	return r.readChecks(ctx, q, "ChecksByBatch")
}

// ListFlaggedChecks retrieves checks flagged for manual review.
// An empty batchID returns flagged checks across all batches.
func (r *Repository) ListFlaggedChecks(ctx context.Context, batchID string) ([]*CheckRow, error) {
	query := fmt.Sprintf(`
		SELECT `+checkColumns+`
		FROM `+"`%s.%s.%s`"+`
		WHERE flagged_for_review = TRUE
	`, r.projectID, r.datasetID, checksTable)

	var params []bigquery.QueryParameter
	if batchID != "" {
		query += "\t\t  AND batch_id = @batch_id\n"
		params = append(params, bigquery.QueryParameter{Name: "batch_id", Value: batchID})
	}
	query += "\t\tORDER BY check_number\n"

	q := r.client.Query(query)
	q.Parameters = params

	return r.readChecks(ctx, q, "ListFlaggedChecks")
}

func (r *Repository) readChecks(ctx context.Context, q *bigquery.Query, op string) ([]*CheckRow, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: reading query: %w", op, err)
	}

	var rows []*CheckRow
	for {
		var row CheckRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iterating: %w", op, err)
		}
		rows = append(rows, &row)
	}

	return rows, nil
}
