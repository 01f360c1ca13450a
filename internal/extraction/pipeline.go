package extraction

import (
	"context"
	"fmt"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/checks"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/ocr"
)

// PipelineStep represents a single step in the check extraction pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	ImageURI   string
	BatchID    string
	ImageBytes []byte
	Document   ocr.Document
	Result     domain.ExtractionResult
	Flagged    bool
	CheckID    string
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewCheckExtractionPipeline creates the standard pipeline for processing a
// check image: fetch the image, run OCR, extract fields, score against the
// review threshold, and persist the result. A non-nil notifier appends a
// final step that pushes flagged checks to the review tracker.
func NewCheckExtractionPipeline(
	storage ImageStorage,
	provider ocr.Provider,
	extractor *checks.Extractor,
	repo ResultStore,
	reviewThreshold float64,
	notifier ReviewNotifier,
) *Pipeline {
	steps := []PipelineStep{
		&FetchImageStep{Storage: storage},
		&RecognizeStep{Provider: provider},
		&ExtractFieldsStep{Extractor: extractor},
		&ScoreStep{ReviewThreshold: reviewThreshold},
		&StoreResultStep{Repo: repo},
	}
	if notifier != nil {
		steps = append(steps, &SyncReviewStep{Notifier: notifier})
	}
	return NewPipeline(steps...)
}
