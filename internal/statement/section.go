package statement

import "strings"

// Section is one contiguous table carved out of a statement grid: a header
// row plus at least one data row, in source order.
type Section struct {
	Header []string
	Rows   [][]string
}

// SplitSections carves a raw statement grid into sections at blank separator
// rows. The first row of each run becomes the header; runs with no data rows
// are discarded.
func SplitSections(grid [][]string) []Section {
	var sections []Section
	var buf [][]string

	flush := func() {
		if len(buf) > 1 {
			sections = append(sections, Section{Header: buf[0], Rows: buf[1:]})
		}
		buf = nil
	}

	for _, row := range grid {
		if isBlankRow(row) {
			flush()
			continue
		}
		buf = append(buf, row)
	}
	flush()
	return sections
}

// isBlankRow reports whether every cell trims to empty. Zero-length rows count
// as blank.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
