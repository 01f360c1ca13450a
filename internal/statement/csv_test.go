package statement

import (
	"strings"
	"testing"
)

func TestReadGrid(t *testing.T) {
	input := "Check,Date,Amount\n1001,01/15/2024,250.00\n1002,,\n,,\n"

	grid, err := ReadGrid(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadGrid() error = %v", err)
	}

	if len(grid) != 4 {
		t.Fatalf("got %d rows, want 4", len(grid))
	}
	if grid[1][0] != "1001" || grid[1][2] != "250.00" {
		t.Errorf("row 1 = %#v", grid[1])
	}
	if !isBlankRow(grid[3]) {
		t.Errorf("row 3 = %#v, want a blank separator", grid[3])
	}
}

func TestReadGrid_RaggedAndQuoted(t *testing.T) {
	input := "Check,Payee\n1001,\"Smith, John\"\n1002\n"

	grid, err := ReadGrid(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadGrid() error = %v", err)
	}

	if len(grid) != 3 {
		t.Fatalf("got %d rows, want 3", len(grid))
	}
	if grid[1][1] != "Smith, John" {
		t.Errorf("quoted cell = %q, want \"Smith, John\"", grid[1][1])
	}
	if len(grid[2]) != 1 {
		t.Errorf("short row kept %d cells, want 1", len(grid[2]))
	}
}

func TestReadGrid_Empty(t *testing.T) {
	grid, err := ReadGrid(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadGrid() error = %v", err)
	}
	if len(grid) != 0 {
		t.Errorf("got %d rows from empty input, want 0", len(grid))
	}
}
