package statement

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/domain"
)

// Assembler drives the statement path end to end: section split, column
// classification with an optional semantic assist, record extraction, dedup
// and ordering.
type Assembler struct {
	classifier Classifier
	scorer     Scorer
	log        zerolog.Logger
}

// NewAssembler builds an Assembler with the stock scorer. classifier may be
// nil, in which case every section is scored locally.
func NewAssembler(classifier Classifier, log zerolog.Logger) *Assembler {
	return &Assembler{
		classifier: classifier,
		scorer:     NewScorer(),
		log:        log,
	}
}

// NewAssemblerWithScorer is NewAssembler with a tuned fallback scorer.
func NewAssemblerWithScorer(classifier Classifier, scorer Scorer, log zerolog.Logger) *Assembler {
	return &Assembler{
		classifier: classifier,
		scorer:     scorer,
		log:        log,
	}
}

// Assemble turns one statement grid into a batch with a fresh batch ID.
// Records are deduplicated by identifier with the first occurrence in
// document order winning, then sorted by identifier. The duplicate-tracking
// set lives and dies with this call.
func (a *Assembler) Assemble(ctx context.Context, grid [][]string) domain.Batch {
	batch := domain.Batch{
		BatchID: uuid.New().String(),
		Records: []domain.CheckRecord{},
	}
	seen := make(map[string]struct{})

	for i, sec := range SplitSections(grid) {
		mapping := a.classify(ctx, sec.Profiles())
		records := ExtractRecords(a.log, sec, mapping)
		a.log.Debug().
			Int("section", i).
			Int("columns", len(sec.Header)).
			Int("records", len(records)).
			Msg("statement section extracted")

		for _, rec := range records {
			if _, dup := seen[rec.Identifier]; dup {
				continue
			}
			seen[rec.Identifier] = struct{}{}
			batch.Records = append(batch.Records, rec)
		}
	}

	sort.Slice(batch.Records, func(i, j int) bool {
		return batch.Records[i].Identifier < batch.Records[j].Identifier
	})
	return batch
}

// classify asks the semantic classifier first and falls back to the local
// scorer on any error. The semantic call gets a single attempt.
func (a *Assembler) classify(ctx context.Context, profiles []ColumnProfile) FieldMapping {
	if a.classifier != nil {
		mapping, err := a.classifier.Classify(ctx, profiles)
		if err == nil {
			return mapping
		}
		a.log.Warn().Err(err).Msg("semantic column mapping failed, scoring locally")
	}
	return a.scorer.Classify(profiles)
}
