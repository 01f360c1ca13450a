package checks

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
)

// MaxConfidence is the score ceiling. The scorer never signals full
// certainty, preserving room for human override.
const MaxConfidence = 0.98

// entitySuffixes mark names that end like registered businesses.
var entitySuffixes = []string{
	"INC", "LLC", "L.L.C", "CORP", "CORPORATION", "CO", "CO.", "LTD", "COMPANY",
}

var (
	digitRe       = regexp.MustCompile(`\d`)
	upperLetterRe = regexp.MustCompile(`[A-Z]`)
	lowerLetterRe = regexp.MustCompile(`[a-z]`)
)

// Confidence folds the two extraction outcomes into one bounded score:
// 0.2 base, up to 0.6 for payee quality, a flat 0.18 for a located check
// number, clamped to [0, MaxConfidence]. Both sentinels score exactly 0.2.
func Confidence(payee, number string) float64 {
	score := 0.2
	if domain.Found(payee) {
		score += 0.6 * PayeeQuality(payee)
	}
	if domain.Found(number) {
		score += 0.18
	}
	if score > MaxConfidence {
		score = MaxConfidence
	}
	if score < 0 {
		score = 0
	}
	return score
}

// PayeeQuality scores how much a cleaned candidate reads like a real payee
// name, in [0, 1]. Entity suffixes and multi-word names raise it; digits,
// address endings, amount words and all-caps OCR noise lower it.
func PayeeQuality(name string) float64 {
	words := strings.Fields(name)
	if len(words) == 0 {
		return 0
	}

	var score float64
	upper := strings.ToUpper(name)

	for _, suffix := range entitySuffixes {
		if strings.HasSuffix(upper, suffix) {
			score += 0.45
			break
		}
	}
	if len(words) >= 2 {
		score += 0.2
	}
	if n := utf8.RuneCountInString(name); n >= 5 && n <= 40 {
		score += 0.15
	}
	if digitRe.MatchString(name) {
		score -= 0.35
	}
	if cityStateRe.MatchString(upper) {
		score -= 0.5
	}
	if numberWordShare(words) >= 0.5 {
		score -= 0.5
	}
	if name == upper && upperLetterRe.MatchString(name) && !lowerLetterRe.MatchString(name) {
		score -= 0.05
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// numberWordShare is the fraction of words drawn from the spelled-out amount
// vocabulary.
func numberWordShare(words []string) float64 {
	count := 0
	for _, w := range words {
		if _, ok := numberWords[strings.Trim(strings.ToUpper(w), ".,")]; ok {
			count++
		}
	}
	return float64(count) / float64(len(words))
}
