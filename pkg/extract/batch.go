package extract

import (
	"context"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
)

// BatchSummary reports what a batch extraction produced. Failed passages are
// counted, not fatal.
type BatchSummary struct {
	Passages      int
	Entities      int
	Relationships int
	Errors        int
}

// BatchResult pairs a passage with its extraction.
type BatchResult struct {
	Passage    common.Passage
	Extraction Extraction
}

// ExtractBatch extracts from passages one at a time. The generation backend
// is assumed single-slot, so there is no fan-out; one request completes before
// the next is dispatched. A passage that fails or degrades is counted in the
// summary and processing continues with the next passage.
func (e *Extractor) ExtractBatch(ctx context.Context, passages []common.Passage) ([]BatchResult, BatchSummary, error) {
	results := make([]BatchResult, 0, len(passages))
	summary := BatchSummary{Passages: len(passages)}

	for _, passage := range passages {
		if ctx.Err() != nil {
			return results, summary, ctx.Err()
		}

		extraction, err := e.Extract(ctx, passage)
		if err != nil {
			logger.Error("[Extract] Passage extraction failed", "passage_id", passage.ID, "err", err)
			summary.Errors++
			continue
		}
		if extraction.Diagnostic != "" {
			logger.Warn("[Extract] Passage extraction degraded", "passage_id", passage.ID, "diagnostic", extraction.Diagnostic)
			summary.Errors++
		}

		summary.Entities += len(extraction.Entities)
		summary.Relationships += len(extraction.Relationships)
		results = append(results, BatchResult{Passage: passage, Extraction: extraction})
	}

	return results, summary, nil
}
