package checks

import (
	"regexp"
	"sort"
	"strings"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
)

// micrOnUs is the MICR on-us symbol (U+2448) bracketing the check number on
// the bottom encoding line.
const micrOnUs = "⑈"

var (
	checkNumberRe = regexp.MustCompile(`^\d{4,5}$`)
	beforeDateRe  = regexp.MustCompile(`(?i)(\d{4,5})\s*DATE`)
	micrRe        = regexp.MustCompile(micrOnUs + `0*(\d{4,5})` + micrOnUs)
)

// ExtractNumber runs the check-number strategies in priority order and
// returns the first hit, or NotFound.
func (e *Extractor) ExtractNumber(doc ocr.Document) string {
	lines := doc.Lines()

	if n, ok := e.numberFromHead(lines); ok {
		e.logNumber("head_line", n)
		return n
	}
	if n, ok := e.numberFromTokens(doc.WordTokens()); ok {
		e.logNumber("spatial", n)
		return n
	}
	if n, ok := e.numberBeforeDate(lines); ok {
		e.logNumber("before_date", n)
		return n
	}
	if n, ok := e.numberFromMICR(lines); ok {
		e.logNumber("micr", n)
		return n
	}
	return domain.NotFound
}

func (e *Extractor) logNumber(strategy, number string) {
	e.log.Debug().Str("strategy", strategy).Str("check_number", number).Msg("check number extracted")
}

// numberFromHead looks for a standalone 4-5 digit line near the top of the
// document, where the printed check number sits.
func (e *Extractor) numberFromHead(lines []string) (string, bool) {
	if e.opts.HeadLines > 0 && len(lines) > e.opts.HeadLines {
		lines = lines[:e.opts.HeadLines]
	}
	for _, line := range lines {
		if checkNumberRe.MatchString(line) {
			return line, true
		}
	}
	return "", false
}

// numberFromTokens picks the topmost 4-5 digit token, rightmost breaking
// ties, since the check number prints in the upper right corner.
func (e *Extractor) numberFromTokens(tokens []ocr.Token) (string, bool) {
	var hits []ocr.Token
	for _, t := range tokens {
		if t.HasBox() && checkNumberRe.MatchString(t.Text) {
			hits = append(hits, t)
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].MinY() != hits[j].MinY() {
			return hits[i].MinY() < hits[j].MinY()
		}
		return hits[i].MaxX() > hits[j].MaxX()
	})
	return hits[0].Text, true
}

// numberBeforeDate captures digits printed immediately before the DATE label.
func (e *Extractor) numberBeforeDate(lines []string) (string, bool) {
	for _, line := range lines {
		if !strings.Contains(strings.ToUpper(line), "DATE") {
			continue
		}
		if m := beforeDateRe.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// numberFromMICR reads the delimited on-us field from the last line, where
// the MICR strip lands, dropping leading zeros.
func (e *Extractor) numberFromMICR(lines []string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	if m := micrRe.FindStringSubmatch(lines[len(lines)-1]); m != nil {
		return m[1], true
	}
	return "", false
}
