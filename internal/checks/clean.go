package checks

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
)

var (
	leadingMarkerRe  = regexp.MustCompile(`(?i)^\s*(?:RD\s+)?(?:OF\s+)?`)
	leadingDollarRe  = regexp.MustCompile(`^\$\s*`)
	trailingAmountRe = regexp.MustCompile(`\s*\$.*$`)
	trailingDigitsRe = regexp.MustCompile(`\s+\d+[,.]?\d*\s*$`)
	dateShapedRe     = regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{2,4}$`)
	cityStateRe      = regexp.MustCompile(`,\s*[A-Z]{2}(?:\s*\d{5})?$`)
	digitsAndPunctRe = regexp.MustCompile(`^[\d\s.,]+$`)
	letterRe         = regexp.MustCompile(`[A-Za-z]`)
)

// numberWords is the spelled-out amount vocabulary of a check's handwriting
// line. A candidate drawn entirely from it is an amount, not a payee.
var numberWords = map[string]struct{}{
	"ZERO": {}, "ONE": {}, "TWO": {}, "THREE": {}, "FOUR": {}, "FIVE": {},
	"SIX": {}, "SEVEN": {}, "EIGHT": {}, "NINE": {}, "TEN": {}, "ELEVEN": {},
	"TWELVE": {}, "THIRTEEN": {}, "FOURTEEN": {}, "FIFTEEN": {}, "SIXTEEN": {},
	"SEVENTEEN": {}, "EIGHTEEN": {}, "NINETEEN": {}, "TWENTY": {}, "THIRTY": {},
	"FORTY": {}, "FIFTY": {}, "SIXTY": {}, "SEVENTY": {}, "EIGHTY": {},
	"NINETY": {}, "HUNDRED": {}, "THOUSAND": {}, "MILLION": {}, "BILLION": {},
	"DOLLARS": {},
}

// CleanPayee normalizes a raw payee candidate: boilerplate prefixes, stray
// punctuation, currency fragments and trailing digit runs are removed. The
// pass repeats until the string stops changing, so cleaning is idempotent.
func CleanPayee(name string) string {
	for {
		next := cleanPass(name)
		if next == name {
			return next
		}
		name = next
	}
}

func cleanPass(name string) string {
	name = leadingMarkerRe.ReplaceAllString(name, "")
	name = strings.Trim(name, ".,;: \t\n")
	name = leadingDollarRe.ReplaceAllString(name, "")
	name = trailingAmountRe.ReplaceAllString(name, "")
	name = trailingDigitsRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// ValidPayee reports whether a cleaned candidate is usable as a payee name.
// It rejects amounts, dates, bare numbers and address fragments.
func ValidPayee(name string) bool {
	if name == "" || name == domain.NotFound {
		return false
	}
	if utf8.RuneCountInString(name) < 2 {
		return false
	}
	if digitsAndPunctRe.MatchString(name) {
		return false
	}
	if dateShapedRe.MatchString(name) {
		return false
	}
	if allNumberWords(name) {
		return false
	}
	if cityStateRe.MatchString(strings.ToUpper(strings.TrimSpace(name))) {
		return false
	}
	return letterRe.MatchString(name)
}

// allNumberWords reports whether every word belongs to the spelled-out amount
// vocabulary.
func allNumberWords(name string) bool {
	words := strings.Fields(strings.ToUpper(name))
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if _, ok := numberWords[strings.Trim(w, ".,")]; !ok {
			return false
		}
	}
	return true
}
