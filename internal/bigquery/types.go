package bigquery

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
)

// Check row provenance.
const (
	// SourceStatement marks rows seeded from a parsed bank statement.
	SourceStatement = "STATEMENT"

	// SourceOCR marks rows created from a check image when no statement row matched.
	SourceOCR = "OCR"
)

// CheckRepository provides an interface for check-related database operations.
type CheckRepository interface {
	// InsertChecks inserts a batch of CheckRow into the database.
	InsertChecks(ctx context.Context, rows []*CheckRow) error

	// FindCheckByNumber retrieves the most recent check with the given number.
	// Returns nil if no matching check is found.
	FindCheckByNumber(ctx context.Context, checkNumber string) (*CheckRow, error)

	// UpsertCheckExtraction attaches OCR extraction results to the matching
	// statement check, or creates a new OCR-origin row when none matches.
	// Returns the check_id of the updated or created row.
	UpsertCheckExtraction(ctx context.Context, upd ExtractionUpdate) (string, error)

	// ChecksByBatch retrieves all checks belonging to a statement batch.
	ChecksByBatch(ctx context.Context, batchID string) ([]*CheckRow, error)

	// ListFlaggedChecks retrieves checks flagged for manual review.
	// An empty batchID returns flagged checks across all batches.
	ListFlaggedChecks(ctx context.Context, batchID string) ([]*CheckRow, error)
}

// CheckRow represents a check record in BigQuery.
type CheckRow struct {
	CheckID string `bigquery:"check_id"` // REQUIRED
	BatchID string `bigquery:"batch_id"` // NULLABLE

	CheckNumber string               `bigquery:"check_number"` // REQUIRED, "" when unknown
	CheckDate   bigquery.NullDate    `bigquery:"check_date"`   // NULLABLE
	Amount      bigquery.NullFloat64 `bigquery:"amount"`       // NULLABLE

	PayeeName  bigquery.NullString  `bigquery:"payee_name"` // NULLABLE
	Confidence bigquery.NullFloat64 `bigquery:"confidence"` // NULLABLE

	FlaggedForReview bool `bigquery:"flagged_for_review"`

	Source   string              `bigquery:"source"`    // STATEMENT or OCR
	ImageURI bigquery.NullString `bigquery:"image_uri"` // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"`
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"`
}

// ExtractionUpdate carries OCR extraction results to be persisted.
// An empty CheckNumber means the number could not be read from the image;
// such results always create a new row instead of matching an existing one.
type ExtractionUpdate struct {
	BatchID     string
	CheckNumber string
	PayeeName   string
	Confidence  float64
	Flagged     bool
	ImageURI    string
}

// RowsFromBatch converts an assembled statement batch into insertable rows.
func RowsFromBatch(batch domain.Batch) []*CheckRow {
	now := time.Now()
	rows := make([]*CheckRow, 0, len(batch.Records))

	for _, rec := range batch.Records {
		row := &CheckRow{
			CheckID:     uuid.NewString(),
			BatchID:     batch.BatchID,
			CheckNumber: rec.Identifier,
			Source:      SourceStatement,
			CreatedTS:   now,
		}
		if rec.Date != nil {
			row.CheckDate = bigquery.NullDate{Date: *rec.Date, Valid: true}
		}
		if rec.Amount != nil {
			row.Amount = bigquery.NullFloat64{Float64: *rec.Amount, Valid: true}
		}
		rows = append(rows, row)
	}

	return rows
}

// RecordFromRow converts a stored row back into the API record shape.
func RecordFromRow(row *CheckRow) domain.CheckRecord {
	rec := domain.CheckRecord{
		Identifier: row.CheckNumber,
		Flagged:    row.FlaggedForReview,
	}
	if row.CheckDate.Valid {
		d := row.CheckDate.Date
		rec.Date = &d
	}
	if row.Amount.Valid {
		a := row.Amount.Float64
		rec.Amount = &a
	}
	if row.PayeeName.Valid {
		p := row.PayeeName.StringVal
		rec.Payee = &p
	}
	if row.Confidence.Valid {
		c := row.Confidence.Float64
		rec.Confidence = &c
	}
	return rec
}
