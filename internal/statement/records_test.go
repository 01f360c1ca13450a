package statement

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestExtractRecords(t *testing.T) {
	id, date, amt := 0, 1, 2
	sec := Section{
		Header: []string{"Check", "Date", "Amount"},
		Rows: [][]string{
			{"1001", "01/15/2024", "250.00"},
			{" 1002 ", "", ""},
			{"nan", "01/16/2024", "100.00"},
			{"", "01/17/2024", "10.00"},
			{"1003", "pending", "n/a"},
			{"1004"},
		},
	}

	recs := ExtractRecords(zerolog.Nop(), sec, FieldMapping{Identifier: &id, Date: &date, Amount: &amt})

	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}

	if recs[0].Identifier != "1001" {
		t.Errorf("recs[0].Identifier = %q, want 1001", recs[0].Identifier)
	}
	if recs[0].Date == nil || recs[0].Date.String() != "2024-01-15" {
		t.Errorf("recs[0].Date = %v, want 2024-01-15", recs[0].Date)
	}
	if recs[0].Amount == nil || *recs[0].Amount != 250 {
		t.Errorf("recs[0].Amount = %v, want 250", recs[0].Amount)
	}

	// Identifier is trimmed; empty cells degrade to nil fields.
	if recs[1].Identifier != "1002" || recs[1].Date != nil || recs[1].Amount != nil {
		t.Errorf("recs[1] = %+v, want bare 1002", recs[1])
	}

	// Unparseable cells also degrade to nil without dropping the row.
	if recs[2].Identifier != "1003" || recs[2].Date != nil || recs[2].Amount != nil {
		t.Errorf("recs[2] = %+v, want bare 1003", recs[2])
	}

	// A row shorter than the mapping still yields its identifier.
	if recs[3].Identifier != "1004" || recs[3].Date != nil || recs[3].Amount != nil {
		t.Errorf("recs[3] = %+v, want bare 1004", recs[3])
	}
}

func TestExtractRecords_PlaceholderIdentifiers(t *testing.T) {
	id := 0
	sec := Section{
		Header: []string{"Check"},
		Rows: [][]string{
			{"nan"}, {"None"}, {""}, {"  "}, {"true"}, {"FALSE"}, {"1001"},
		},
	}

	recs := ExtractRecords(zerolog.Nop(), sec, FieldMapping{Identifier: &id})

	if len(recs) != 1 || recs[0].Identifier != "1001" {
		t.Errorf("recs = %+v, want only 1001", recs)
	}
}

func TestExtractRecords_NoIdentifierColumn(t *testing.T) {
	date := 1
	sec := Section{
		Header: []string{"Check", "Date"},
		Rows:   [][]string{{"1001", "01/15/2024"}},
	}

	recs := ExtractRecords(zerolog.Nop(), sec, FieldMapping{Date: &date})

	if len(recs) != 0 {
		t.Errorf("got %d records without an identifier column, want 0", len(recs))
	}
}

func TestExtractRecords_DateOnlyMapping(t *testing.T) {
	id, date := 0, 1
	sec := Section{
		Header: []string{"Check", "Date"},
		Rows:   [][]string{{"1001", "Jan 15, 2024"}},
	}

	recs := ExtractRecords(zerolog.Nop(), sec, FieldMapping{Identifier: &id, Date: &date})

	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Date == nil || recs[0].Date.String() != "2024-01-15" {
		t.Errorf("Date = %v, want 2024-01-15", recs[0].Date)
	}
	if recs[0].Amount != nil {
		t.Errorf("Amount = %v, want nil with no amount column", recs[0].Amount)
	}
}
