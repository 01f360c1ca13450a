package ocr

import (
	"strings"
)

// Vertex is one corner of a token's bounding polygon in image pixel space.
// Providers omit zero coordinates, so absent values read as 0.
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Token is one recognized word with its bounding polygon.
type Token struct {
	Text     string   `json:"text"`
	Vertices []Vertex `json:"vertices"`
}

// HasBox reports whether the token carries a usable four-corner polygon.
// Geometry heuristics must skip tokens without one.
func (t Token) HasBox() bool {
	return len(t.Vertices) >= 4
}

// MinX is the leftmost polygon edge.
func (t Token) MinX() int {
	min := 0
	for i, v := range t.Vertices {
		if i == 0 || v.X < min {
			min = v.X
		}
	}
	return min
}

// MaxX is the rightmost polygon edge.
func (t Token) MaxX() int {
	max := 0
	for i, v := range t.Vertices {
		if i == 0 || v.X > max {
			max = v.X
		}
	}
	return max
}

// MinY is the top polygon edge.
func (t Token) MinY() int {
	min := 0
	for i, v := range t.Vertices {
		if i == 0 || v.Y < min {
			min = v.Y
		}
	}
	return min
}

// MaxY is the bottom polygon edge.
func (t Token) MaxY() int {
	max := 0
	for i, v := range t.Vertices {
		if i == 0 || v.Y > max {
			max = v.Y
		}
	}
	return max
}

// CenterY is the vertical midpoint of the box.
func (t Token) CenterY() float64 {
	return float64(t.MinY()+t.MaxY()) / 2
}

// Height is the box height in pixels.
func (t Token) Height() int {
	return t.MaxY() - t.MinY()
}

// Document is the OCR view of one check image: the full recognized text plus
// per-word tokens. Providers put the whole-text annotation first, so word
// heuristics go through WordTokens.
type Document struct {
	FullText string  `json:"full_text"`
	Tokens   []Token `json:"tokens"`
}

// WordTokens returns the per-word tokens with the leading whole-text
// annotation dropped.
func (d Document) WordTokens() []Token {
	if len(d.Tokens) == 0 {
		return nil
	}
	return d.Tokens[1:]
}

// Lines splits the full text into trimmed, non-empty lines in reading order.
func (d Document) Lines() []string {
	var lines []string
	for _, line := range strings.Split(d.FullText, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
