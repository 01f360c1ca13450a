package extraction

import (
	"context"
	"fmt"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/bigquery"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/checks"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
)

// ImageStorage is a minimal interface for fetching check images.
// This interface enables mocking and testing without cloud credentials.
type ImageStorage interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

// ResultStore is a minimal interface for persisting extraction results.
type ResultStore interface {
	UpsertCheckExtraction(ctx context.Context, upd bigquery.ExtractionUpdate) (string, error)
}

// ReviewNotifier pushes checks that need manual review to an external tracker.
type ReviewNotifier interface {
	NotifyFlagged(ctx context.Context, checkID string, result domain.ExtractionResult, imageURI string) error
}

// Step 1: FetchImageStep fetches the check image bytes from GCS.
type FetchImageStep struct {
	Storage ImageStorage
}

func (s *FetchImageStep) Execute(ctx context.Context, state *PipelineState) error {
	imageBytes, err := s.Storage.FetchFromGCS(ctx, state.ImageURI)
	if err != nil {
		return err
	}
	state.ImageBytes = imageBytes
	return nil
}

// Step 2: RecognizeStep runs OCR over the image bytes.
type RecognizeStep struct {
	Provider ocr.Provider
}

func (s *RecognizeStep) Execute(ctx context.Context, state *PipelineState) error {
	doc, err := s.Provider.Recognize(ctx, state.ImageBytes)
	if err != nil {
		return err
	}
	state.Document = doc
	return nil
}

// Step 3: ExtractFieldsStep extracts the check number and payee name.
type ExtractFieldsStep struct {
	Extractor *checks.Extractor
}

func (s *ExtractFieldsStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Result = s.Extractor.Extract(state.Document)
	return nil
}

// Step 4: ScoreStep flags low-confidence extractions for manual review.
type ScoreStep struct {
	ReviewThreshold float64
}

func (s *ScoreStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Flagged = state.Result.Confidence < s.ReviewThreshold
	return nil
}

// Step 5: StoreResultStep persists the extraction, attaching it to the
// matching statement check when one exists. The not-found sentinel is
// translated to an empty value at this boundary so it never reaches storage.
type StoreResultStep struct {
	Repo ResultStore
}

func (s *StoreResultStep) Execute(ctx context.Context, state *PipelineState) error {
	number := state.Result.CheckNumber
	if !domain.Found(number) {
		number = ""
	}
	payee := state.Result.PayeeName
	if !domain.Found(payee) {
		payee = ""
	}

	checkID, err := s.Repo.UpsertCheckExtraction(ctx, bigquery.ExtractionUpdate{
		BatchID:     state.BatchID,
		CheckNumber: number,
		PayeeName:   payee,
		Confidence:  state.Result.Confidence,
		Flagged:     state.Flagged,
		ImageURI:    state.ImageURI,
	})
	if err != nil {
		return err
	}
	state.CheckID = checkID
	return nil
}

// Step 6: SyncReviewStep pushes flagged checks to the review tracker.
type SyncReviewStep struct {
	Notifier ReviewNotifier
}

func (s *SyncReviewStep) Execute(ctx context.Context, state *PipelineState) error {
	if !state.Flagged {
		return nil
	}
	if err := s.Notifier.NotifyFlagged(ctx, state.CheckID, state.Result, state.ImageURI); err != nil {
		return fmt.Errorf("notify review tracker: %w", err)
	}
	return nil
}
