package domain

import (
	"cloud.google.com/go/civil"
)

// NotFound is the sentinel used whenever an extraction strategy chain runs out
// of candidates. It flows through scoring, storage and the API as a value, not
// as an error.
const NotFound = "Not found"

// CheckRecord is one check transaction assembled from a statement upload and,
// later, enriched by image extraction. Identifier is always present; the other
// fields stay nil until the stage that produces them has run.
type CheckRecord struct {
	Identifier string      `json:"check_number"`       // check number as printed on the statement
	Date       *civil.Date `json:"date"`               // posting date, nil when the cell did not parse
	Amount     *float64    `json:"amount"`             // dollar amount, nil when the cell did not parse
	Payee      *string     `json:"payee,omitempty"`    // recovered payee name
	Confidence *float64    `json:"confidence,omitempty"`
	Flagged    bool        `json:"flagged_for_review"` // confidence fell below the review threshold
}

// Batch is the externally visible result of assembling one statement: a fresh
// batch ID plus the deduplicated, identifier-sorted records.
type Batch struct {
	BatchID string        `json:"statement_id"`
	Records []CheckRecord `json:"checks"`
}

// ExtractionResult carries the fields recovered from one check image.
// CheckNumber and PayeeName hold NotFound when no strategy produced a usable
// value; Confidence is always within [0, 0.98].
type ExtractionResult struct {
	CheckNumber string  `json:"check_number"`
	PayeeName   string  `json:"payee_name"`
	Confidence  float64 `json:"confidence"`
}

// Found reports whether the value is a real extraction rather than the sentinel.
func Found(v string) bool {
	return v != "" && v != NotFound
}
