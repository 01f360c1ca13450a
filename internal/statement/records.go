package statement

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
)

// ExtractRecords materializes check records from one section under a column
// mapping. Without an identifier column there is nothing to key records on,
// so the result is empty. Bad rows are logged and skipped, never fatal.
func ExtractRecords(log zerolog.Logger, sec Section, mapping FieldMapping) []domain.CheckRecord {
	if mapping.Identifier == nil {
		return nil
	}
	var records []domain.CheckRecord
	for i, row := range sec.Rows {
		rec, ok := extractRow(log, i, row, mapping)
		if ok {
			records = append(records, rec)
		}
	}
	return records
}

// extractRow builds one record from one data row. A placeholder identifier or
// a row-level panic drops the row; date and amount cells that fail to parse
// degrade to nil instead.
func extractRow(log zerolog.Logger, idx int, row []string, mapping FieldMapping) (rec domain.CheckRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Int("row", idx).Interface("reason", r).Msg("skipping statement row")
			rec, ok = domain.CheckRecord{}, false
		}
	}()

	identifier := strings.TrimSpace(cellAt(row, *mapping.Identifier))
	if placeholderIdentifier(identifier) {
		return domain.CheckRecord{}, false
	}

	rec = domain.CheckRecord{Identifier: identifier}
	if mapping.Date != nil {
		raw := strings.TrimSpace(cellAt(row, *mapping.Date))
		if !placeholderCell(raw) {
			if d, parsed := ParseDate(raw); parsed {
				rec.Date = &d
			}
		}
	}
	if mapping.Amount != nil {
		if v, parsed := parseAmount(cellAt(row, *mapping.Amount)); parsed {
			rec.Amount = &v
		}
	}
	return rec, true
}

// placeholderCell reports cells that spreadsheet and dataframe exports emit
// for missing values.
func placeholderCell(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return true
	}
	return false
}

// placeholderIdentifier additionally rejects stray boolean artifacts, which
// appear when a source column was type-coerced on export.
func placeholderIdentifier(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "none", "true", "false":
		return true
	}
	return false
}
