package extraction

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/jobs"
)

// NewJobHandler adapts the extraction pipeline to the job queue. The handler
// runs the pipeline for each check image and copies the extraction results
// back onto the job so they are visible through the jobs API.
func NewJobHandler(p *Pipeline, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		checkJob, ok := job.(*jobs.ExtractCheckJob)
		if !ok {
			return fmt.Errorf("NewJobHandler: unexpected job type %T", job)
		}

		state := &PipelineState{
			ImageURI: checkJob.ImageURI,
			BatchID:  checkJob.BatchID,
		}

		if err := p.Execute(ctx, state); err != nil {
			log.Error().
				Err(err).
				Str("job_id", checkJob.JobID).
				Str("image_uri", checkJob.ImageURI).
				Msg("check extraction failed")
			return err
		}

		checkJob.CheckNumber = state.Result.CheckNumber
		checkJob.PayeeName = state.Result.PayeeName
		checkJob.Confidence = state.Result.Confidence

		log.Info().
			Str("job_id", checkJob.JobID).
			Str("check_id", state.CheckID).
			Str("check_number", state.Result.CheckNumber).
			Str("payee", state.Result.PayeeName).
			Float64("confidence", state.Result.Confidence).
			Bool("flagged", state.Flagged).
			Msg("check extraction completed")

		return nil
	}
}
