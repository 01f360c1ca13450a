package checks

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
)

var (
	ofLineRe       = regexp.MustCompile(`(?i)\bOF\b`)
	ofBoundaryRe   = regexp.MustCompile(`(?i)\b(?:RD\s+)?OF\b`)
	ofMarkerRe     = regexp.MustCompile(`(?i)^(?:RD\s+)?OF\s*$`)
	pureDigitsRe   = regexp.MustCompile(`^\d+$`)
	numericTokenRe = regexp.MustCompile(`^\d+[.,]?\d*$`)
	dollarTokenRe  = regexp.MustCompile(`^\$`)
)

// ExtractPayee runs the payee strategies in priority order and returns the
// first candidate that survives cleaning and validation, or NotFound. OCR
// renders "ORDER OF" as "ORDER RD OF" often enough that every textual
// strategy accepts the mangled marker too.
func (e *Extractor) ExtractPayee(doc ocr.Document) string {
	lines := doc.Lines()

	if name, ok := e.payeeAfterMarker(lines); ok {
		e.logPayee("after_marker", name)
		return name
	}
	if name, ok := e.payeeBeforeMarker(lines); ok {
		e.logPayee("before_marker", name)
		return name
	}
	if name, ok := e.payeeMidDocument(lines); ok {
		e.logPayee("mid_document", name)
		return name
	}
	if name, ok := e.payeeSpatial(doc.WordTokens()); ok {
		e.logPayee("spatial", name)
		return name
	}
	return domain.NotFound
}

func (e *Extractor) logPayee(strategy, name string) {
	e.log.Debug().Str("strategy", strategy).Str("payee", name).Msg("payee extracted")
}

// payeeAfterMarker takes the text following an ORDER-OF boundary on the same
// line, which is where machine-printed checks put the payee.
func (e *Extractor) payeeAfterMarker(lines []string) (string, bool) {
	for _, line := range lines {
		if !ofLineRe.MatchString(line) {
			continue
		}
		parts := ofBoundaryRe.Split(line, -1)
		if len(parts) < 2 {
			continue
		}
		if name := CleanPayee(parts[len(parts)-1]); ValidPayee(name) {
			return name, true
		}
	}
	return "", false
}

// payeeBeforeMarker handles layouts where OCR emits the marker on its own
// line below the payee.
func (e *Extractor) payeeBeforeMarker(lines []string) (string, bool) {
	for i, line := range lines {
		if i == 0 || !ofMarkerRe.MatchString(line) {
			continue
		}
		if name := CleanPayee(lines[i-1]); ValidPayee(name) {
			return name, true
		}
	}
	return "", false
}

// payeeMidDocument scans the region between the printed header block and the
// amount block, skipping markers, numbers, dates and address lines.
func (e *Extractor) payeeMidDocument(lines []string) (string, bool) {
	companyEnd := 0
	for i, line := range lines {
		if containsAnyFold(line, e.opts.CompanyKeywords) {
			companyEnd = i + 1
		}
	}
	amountStart := len(lines)
	for i, line := range lines {
		if containsAnyFold(line, e.opts.AmountKeywords) {
			amountStart = i
			break
		}
	}

	for i := companyEnd; i < amountStart; i++ {
		line := lines[i]
		if ofMarkerRe.MatchString(line) || pureDigitsRe.MatchString(line) || dateShapedRe.MatchString(line) {
			continue
		}
		if cityStateRe.MatchString(line) {
			continue
		}
		if containsAnyFold(line, e.opts.LocationNoise) {
			continue
		}
		if name := CleanPayee(line); ValidPayee(name) {
			return name, true
		}
	}
	return "", false
}

// payeeSpatial reconstructs the payee from tokens sharing the visual row of
// the first OF token, entirely to its left. Tokens without a box never
// participate.
func (e *Extractor) payeeSpatial(tokens []ocr.Token) (string, bool) {
	var anchor *ocr.Token
	for i := range tokens {
		if tokens[i].HasBox() && strings.ToUpper(strings.TrimSpace(tokens[i].Text)) == "OF" {
			anchor = &tokens[i]
			break
		}
	}
	if anchor == nil {
		return "", false
	}

	tolerance := float64(anchor.Height()) * e.opts.VerticalTolerance
	var candidates []ocr.Token
	for _, t := range tokens {
		if !t.HasBox() {
			continue
		}
		if !sameRow(t, *anchor, tolerance) || !leftOf(t, *anchor) {
			continue
		}
		if equalsAnyFold(t.Text, e.opts.StopWords) {
			continue
		}
		if numericTokenRe.MatchString(t.Text) || dollarTokenRe.MatchString(t.Text) {
			continue
		}
		if utf8.RuneCountInString(t.Text) <= 1 {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MinX() < candidates[j].MinX()
	})
	if e.opts.MaxPayeeTokens > 0 && len(candidates) > e.opts.MaxPayeeTokens {
		candidates = candidates[len(candidates)-e.opts.MaxPayeeTokens:]
	}

	words := make([]string, len(candidates))
	for i, t := range candidates {
		words[i] = t.Text
	}
	if name := CleanPayee(strings.Join(words, " ")); ValidPayee(name) {
		return name, true
	}
	return "", false
}

// sameRow reports whether two boxes share a visual row: their vertical
// centers sit strictly closer than tolerance pixels.
func sameRow(a, b ocr.Token, tolerance float64) bool {
	return math.Abs(a.CenterY()-b.CenterY()) < tolerance
}

// leftOf reports whether box a ends strictly before box b begins.
func leftOf(a, b ocr.Token) bool {
	return a.MaxX() < b.MinX()
}
