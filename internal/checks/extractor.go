package checks

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
)

// Extractor recovers payee and check-number fields from OCR documents. One
// instance carries only configuration and a logger and is safe for concurrent
// use across worker goroutines.
type Extractor struct {
	opts Options
	log  zerolog.Logger
}

// NewExtractor builds an Extractor with the given tuning.
func NewExtractor(opts Options, log zerolog.Logger) *Extractor {
	return &Extractor{opts: opts, log: log}
}

// Extract runs both field extractors over one document and scores the result.
// Missing fields surface as the NotFound sentinel, never as errors.
func (e *Extractor) Extract(doc ocr.Document) domain.ExtractionResult {
	payee := e.ExtractPayee(doc)
	number := e.ExtractNumber(doc)
	result := domain.ExtractionResult{
		CheckNumber: number,
		PayeeName:   payee,
		Confidence:  Confidence(payee, number),
	}
	e.log.Debug().
		Str("payee", result.PayeeName).
		Str("check_number", result.CheckNumber).
		Float64("confidence", result.Confidence).
		Msg("check image extracted")
	return result
}

// containsAnyFold reports whether the line contains any keyword,
// case-insensitively.
func containsAnyFold(line string, keywords []string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range keywords {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// equalsAnyFold reports whether the trimmed value equals any keyword,
// case-insensitively.
func equalsAnyFold(value string, keywords []string) bool {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, kw := range keywords {
		if upper == strings.ToUpper(kw) {
			return true
		}
	}
	return false
}
