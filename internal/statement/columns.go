package statement

import (
	"context"
	"strconv"
	"strings"
	"unicode"
)

// SampleRows is how many leading data rows feed each column profile.
const SampleRows = 3

// ColumnProfile summarizes one column of a section for classification: the
// header cell plus the first few data samples, built once and never mutated.
type ColumnProfile struct {
	Index   int
	Name    string
	Samples []string
}

// FieldMapping names which column index serves each record field. A nil index
// means no column qualified for that role, which is a valid outcome.
type FieldMapping struct {
	Identifier *int
	Date       *int
	Amount     *int
}

// Classifier maps section columns to record fields. Implementations may call
// remote services; the assembler treats any error as a miss and scores
// locally instead.
type Classifier interface {
	Classify(ctx context.Context, profiles []ColumnProfile) (FieldMapping, error)
}

// Profiles builds the column profiles for a section. Ragged rows contribute
// empty samples for the columns they are missing.
func (s Section) Profiles() []ColumnProfile {
	profiles := make([]ColumnProfile, len(s.Header))
	for i, name := range s.Header {
		samples := make([]string, 0, SampleRows)
		for r := 0; r < len(s.Rows) && r < SampleRows; r++ {
			samples = append(samples, cellAt(s.Rows[r], i))
		}
		profiles[i] = ColumnProfile{Index: i, Name: name, Samples: samples}
	}
	return profiles
}

// Weights carries the scoring constants of the fallback column classifier.
// A score must strictly exceed its role minimum before the column maps.
type Weights struct {
	IdentifierName   float64 // header mentions a check-number word
	IdentifierSample float64 // any sample cell looks like an identifier
	IdentifierMin    float64
	DateName         float64
	DateSample       float64
	DateMin          float64
	AmountName       float64
	AmountValid      float64 // per parsed sample
	AmountPositive   float64 // scaled by the positive share
	AmountZero       float64 // scaled by the zero share, negative
	AmountTypical    float64 // average above one dollar
	AmountLarge      float64 // average above fifty dollars
	AmountMin        float64
}

// DefaultWeights returns the tuning the service ships with.
func DefaultWeights() Weights {
	return Weights{
		IdentifierName:   50,
		IdentifierSample: 30,
		IdentifierMin:    30,
		DateName:         50,
		DateSample:       40,
		DateMin:          40,
		AmountName:       30,
		AmountValid:      10,
		AmountPositive:   40,
		AmountZero:       -20,
		AmountTypical:    15,
		AmountLarge:      10,
		AmountMin:        20,
	}
}

// Scorer is the keyword/sample fallback column classifier. It needs no remote
// services and never fails; at worst every role maps to nil.
type Scorer struct {
	Weights         Weights
	IdentifierWords []string
	DateWords       []string
	AmountWords     []string
}

// NewScorer returns a Scorer with the stock weights and header keywords.
func NewScorer() Scorer {
	return Scorer{
		Weights:         DefaultWeights(),
		IdentifierWords: []string{"check", "chk", "slip", "trans", "reference", "ref"},
		DateWords:       []string{"date", "post", "trans"},
		AmountWords:     []string{"amount", "debit", "payment", "withdrawal"},
	}
}

// Classify scores every column for every role independently. A column may win
// more than one role.
func (s Scorer) Classify(profiles []ColumnProfile) FieldMapping {
	return FieldMapping{
		Identifier: s.pickColumn(profiles, s.scoreIdentifier, s.Weights.IdentifierMin),
		Date:       s.pickColumn(profiles, s.scoreDate, s.Weights.DateMin),
		Amount:     s.pickColumn(profiles, s.scoreAmount, s.Weights.AmountMin),
	}
}

// pickColumn returns the index of the best-scoring column for one role, or
// nil when none strictly exceeds min. Ties keep the earliest column.
func (s Scorer) pickColumn(profiles []ColumnProfile, score func(ColumnProfile) float64, min float64) *int {
	best := -1
	bestScore := min
	for _, p := range profiles {
		if sc := score(p); sc > bestScore {
			best = p.Index
			bestScore = sc
		}
	}
	if best < 0 {
		return nil
	}
	idx := best
	return &idx
}

func (s Scorer) scoreIdentifier(p ColumnProfile) float64 {
	var score float64
	if nameContainsAny(p.Name, s.IdentifierWords) {
		score += s.Weights.IdentifierName
	}
	for _, sample := range p.Samples {
		if looksLikeIdentifier(sample) {
			score += s.Weights.IdentifierSample
			break
		}
	}
	return score
}

func (s Scorer) scoreDate(p ColumnProfile) float64 {
	var score float64
	if nameContainsAny(p.Name, s.DateWords) {
		score += s.Weights.DateName
	}
	for _, sample := range p.Samples {
		if looksLikeDate(sample) {
			score += s.Weights.DateSample
			break
		}
	}
	return score
}

func (s Scorer) scoreAmount(p ColumnProfile) float64 {
	var score float64
	if nameContainsAny(p.Name, s.AmountWords) {
		score += s.Weights.AmountName
	}

	var valid, positive, zero int
	var sum float64
	for _, sample := range p.Samples {
		v, ok := parseAmount(sample)
		if !ok {
			continue
		}
		valid++
		switch {
		case v > 0:
			positive++
			sum += v
		case v == 0:
			zero++
		}
	}
	if valid == 0 {
		return score
	}

	score += s.Weights.AmountValid * float64(valid)
	score += s.Weights.AmountPositive * float64(positive) / float64(valid)
	score += s.Weights.AmountZero * float64(zero) / float64(valid)
	if positive > 0 {
		avg := sum / float64(positive)
		if avg > 1 {
			score += s.Weights.AmountTypical
		}
		if avg > 50 {
			score += s.Weights.AmountLarge
		}
	}
	return score
}

func nameContainsAny(name string, words []string) bool {
	lower := strings.ToLower(name)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// looksLikeIdentifier accepts any cell of two or more characters holding at
// least one letter or digit, minus dataframe export artifacts.
func looksLikeIdentifier(v string) bool {
	s := strings.TrimSpace(v)
	if len(s) < 2 {
		return false
	}
	switch strings.ToLower(s) {
	case "nan", "none", "true", "false":
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// parseAmount normalizes a money cell (commas and currency markers stripped)
// and parses it as a float. Placeholder and unparseable cells report !ok.
func parseAmount(raw string) (float64, bool) {
	clean := strings.TrimSpace(raw)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return 0, false
	}
	switch strings.ToLower(clean) {
	case "nan", "none":
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cellAt tolerates ragged rows; indexes past the end read as empty cells.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
