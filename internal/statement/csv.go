package statement

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadGrid decodes statement CSV bytes into a raw cell grid. Bank exports
// ship ragged rows and repeated header blocks, so any record length is
// accepted and nothing is interpreted here.
func ReadGrid(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	grid, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ReadGrid: decode csv: %w", err)
	}
	return grid, nil
}
