package checks

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
)

func newExtractor() *Extractor {
	return NewExtractor(DefaultOptions(), zerolog.Nop())
}

func box(x1, y1, x2, y2 int) []ocr.Vertex {
	return []ocr.Vertex{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
}

func TestExtract(t *testing.T) {
	doc := ocr.Document{
		FullText: "1024\nPAY TO THE ORDER OF ACME SUPPLY CO.\nONE THOUSAND DOLLARS\n",
	}

	res := newExtractor().Extract(doc)

	if res.CheckNumber != "1024" {
		t.Errorf("CheckNumber = %q, want 1024", res.CheckNumber)
	}
	if res.PayeeName != "ACME SUPPLY CO" {
		t.Errorf("PayeeName = %q, want ACME SUPPLY CO", res.PayeeName)
	}
	want := 0.2 + 0.6*0.75 + 0.18
	if diff := res.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Confidence = %v, want %v", res.Confidence, want)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	res := newExtractor().Extract(ocr.Document{})

	if res.PayeeName != domain.NotFound || res.CheckNumber != domain.NotFound {
		t.Errorf("result = %+v, want both sentinels", res)
	}
	if res.Confidence != 0.2 {
		t.Errorf("Confidence = %v, want exactly 0.2 for a double miss", res.Confidence)
	}
}
