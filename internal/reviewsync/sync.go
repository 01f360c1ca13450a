package reviewsync

import (
	"context"
	"fmt"
	"sync"

	bq "cloud.google.com/go/bigquery"
	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/bigquery"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/extraction"
)

// PageSize is the Notion query page size used when walking the review database.
const PageSize = 100

// Syncer mirrors flagged checks into a Notion review database. The Check ID
// property on each page keys the sync, so repeated runs and re-extractions of
// the same check never produce duplicate pages.
type Syncer struct {
	notion NotionService
	dbID   string
	log    zerolog.Logger

	mu    sync.Mutex
	pages map[string]string // check_id -> Notion page ID
}

var _ extraction.ReviewNotifier = (*Syncer)(nil)

// NewSyncer creates a Syncer against one review database.
func NewSyncer(notion NotionService, databaseID string, log zerolog.Logger) *Syncer {
	return &Syncer{
		notion: notion,
		dbID:   databaseID,
		log:    log,
	}
}

// NotifyFlagged pushes one flagged extraction into the review database,
// updating the existing page when the check was flagged before.
func (s *Syncer) NotifyFlagged(ctx context.Context, checkID string, result domain.ExtractionResult, imageURI string) error {
	row := &bigquery.CheckRow{
		CheckID:          checkID,
		FlaggedForReview: true,
		Source:           bigquery.SourceOCR,
		Confidence:       bq.NullFloat64{Float64: result.Confidence, Valid: true},
	}
	if domain.Found(result.CheckNumber) {
		row.CheckNumber = result.CheckNumber
	}
	if domain.Found(result.PayeeName) {
		row.PayeeName = bq.NullString{StringVal: result.PayeeName, Valid: true}
	}
	if imageURI != "" {
		row.ImageURI = bq.NullString{StringVal: imageURI, Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensurePagesLocked(ctx); err != nil {
		return err
	}

	props := CheckToNotionProperties(row)

	if pageID, ok := s.pages[checkID]; ok {
		if _, err := s.notion.UpdatePage(ctx, pageID, props); err != nil {
			return fmt.Errorf("NotifyFlagged: %w", err)
		}
		s.log.Info().
			Str("check_id", checkID).
			Str("page_id", pageID).
			Msg("Updated review page")
		return nil
	}

	page, err := s.notion.CreatePage(ctx, s.dbID, props)
	if err != nil {
		return fmt.Errorf("NotifyFlagged: %w", err)
	}
	s.pages[checkID] = string(page.ID)

	s.log.Info().
		Str("check_id", checkID).
		Str("page_id", string(page.ID)).
		Msg("Created review page")
	return nil
}

// SyncFlagged pushes a set of flagged checks into the review database.
// Checks that already have a review page are skipped, and a single page
// create failure does not stop the rest of the batch.
func (s *Syncer) SyncFlagged(ctx context.Context, rows []*bigquery.CheckRow, dryRun bool) error {
	s.log.Info().
		Bool("dry_run", dryRun).
		Int("flagged_count", len(rows)).
		Msg("Starting flagged check sync to Notion")

	s.mu.Lock()
	defer s.mu.Unlock()

	// Bulk syncs always reload the index so out-of-band edits are seen.
	s.pages = nil
	if err := s.ensurePagesLocked(ctx); err != nil {
		return err
	}

	s.log.Info().Int("notion_page_count", len(s.pages)).Msg("Retrieved existing review pages")

	var created, skipped int
	for _, row := range rows {
		if _, ok := s.pages[row.CheckID]; ok {
			skipped++
			continue
		}

		if dryRun {
			s.log.Info().
				Str("check_id", row.CheckID).
				Str("check_number", row.CheckNumber).
				Msg("[DRY RUN] Would create review page")
			created++
			continue
		}

		page, err := s.notion.CreatePage(ctx, s.dbID, CheckToNotionProperties(row))
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("check_id", row.CheckID).
				Msg("Failed to create review page")
			continue
		}
		s.pages[row.CheckID] = string(page.ID)

		s.log.Info().
			Str("check_id", row.CheckID).
			Str("page_id", string(page.ID)).
			Msg("Created review page")
		created++
	}

	s.log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(rows)).
		Msg("Flagged check sync completed")

	return nil
}

// ensurePagesLocked lazily loads the check_id -> page ID index. Callers hold mu.
func (s *Syncer) ensurePagesLocked(ctx context.Context) error {
	if s.pages != nil {
		return nil
	}

	notionPages, err := queryAllNotionPages(ctx, s.notion, s.dbID)
	if err != nil {
		return fmt.Errorf("load review pages: %w", err)
	}

	s.pages = make(map[string]string, len(notionPages))
	for _, page := range notionPages {
		if checkID := extractCheckID(page); checkID != "" {
			s.pages[checkID] = string(page.ID)
		}
	}
	return nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notion NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: PageSize,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notion.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
