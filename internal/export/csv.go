// Package export renders seeded check batches as reconciliation CSV for
// downstream accounting tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
)

// Header is the fixed reconciliation column set. Downstream imports match on
// these exact names regardless of what the source statement called its columns.
var Header = []string{"Check Number", "Date", "Amount"}

// Write renders records as reconciliation CSV. Missing dates and amounts
// become empty cells.
func Write(w io.Writer, records []domain.CheckRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, rec := range records {
		row := []string{rec.Identifier, dateCell(rec), amountCell(rec)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write record %q: %w", rec.Identifier, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func dateCell(rec domain.CheckRecord) string {
	if rec.Date == nil {
		return ""
	}
	return rec.Date.String()
}

func amountCell(rec domain.CheckRecord) string {
	if rec.Amount == nil {
		return ""
	}
	return strconv.FormatFloat(*rec.Amount, 'f', -1, 64)
}
