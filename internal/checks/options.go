package checks

// Options tunes the extraction heuristics. The constants were fitted against
// scanned business checks and do not generalize to every layout, so they are
// configuration rather than invariants. Use DefaultOptions as the base.
type Options struct {
	// CompanyKeywords mark printed header lines; the positional payee scan
	// starts after the last line containing one.
	CompanyKeywords []string
	// AmountKeywords mark the monetary and boilerplate region; the positional
	// payee scan stops at the first line containing one.
	AmountKeywords []string
	// LocationNoise rejects address lines during the positional payee scan.
	LocationNoise []string
	// StopWords are boilerplate tokens the spatial strategy never joins into
	// a payee candidate.
	StopWords []string
	// VerticalTolerance is the same-row window of the spatial strategy, as a
	// ratio of the anchor box height.
	VerticalTolerance float64
	// MaxPayeeTokens caps how many left-of-anchor tokens, nearest first, join
	// the spatial candidate.
	MaxPayeeTokens int
	// HeadLines is how deep the standalone check-number scan looks.
	HeadLines int
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		CompanyKeywords: []string{"PAY", "TO THE", "CHASE", "JPMORGAN"},
		AmountKeywords: []string{
			"THOUSAND", "HUNDRED", "DOLLARS", "$", "FOR", "DATE",
			"PAY TO THE ORDER OF", "MEMO", "AMOUNT",
		},
		LocationNoise:     []string{"USA", "CITY", "STATE", "ZIP"},
		StopWords:         []string{"PAY", "TO", "THE", "ORDER", "OF", "RD", "FOR", "DOLLARS", "DATE"},
		VerticalTolerance: 0.8,
		MaxPayeeTokens:    4,
		HeadLines:         10,
	}
}
