package linker

import (
	"context"
	"fmt"

	"github.com/abhishekg1-gl/langgraph/pkg/extract"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
	"github.com/abhishekg1-gl/langgraph/pkg/store"
)

// Linker persists validated extractions into the knowledge graph with
// provenance. All writes go through the injected GraphStore, whose per-key
// upserts are atomic; the linker adds no locking of its own.
type Linker struct {
	graph store.GraphStore
}

// NewLinker creates a Linker over the given graph store.
func NewLinker(graph store.GraphStore) *Linker {
	return &Linker{graph: graph}
}

// LinkCounts reports what one Link call actually stored, measured after
// validation and identity-key merging.
type LinkCounts struct {
	Entities      int
	Relationships int
}

// Link persists one passage's extraction. Entities are upserted first, then
// relationships; relationship endpoints are upserted again by the store, so
// an edge can never dangle even when its endpoint was dropped from the
// entity list during validation.
//
// Link is idempotent: running the same extraction twice leaves one node per
// (type, name) key and one edge per (from, type, to) key, with the union of
// all provenance references.
func (l *Linker) Link(ctx context.Context, extraction extract.Extraction) (LinkCounts, error) {
	counts := LinkCounts{}

	for _, entity := range extraction.Entities {
		if err := l.graph.UpsertEntity(ctx, entity); err != nil {
			return counts, fmt.Errorf("failed to link entity %s: %w", entity.Name, err)
		}
		counts.Entities++
	}

	for _, rel := range extraction.Relationships {
		if err := l.graph.UpsertRelationship(ctx, rel); err != nil {
			return counts, fmt.Errorf("failed to link relationship %s-%s->%s: %w", rel.From, rel.Type, rel.To, err)
		}
		counts.Relationships++
	}

	return counts, nil
}

// LinkBatch persists a batch of extractions, one passage at a time. One
// passage's storage failure is logged and skipped; the remaining passages
// are still linked.
func (l *Linker) LinkBatch(ctx context.Context, results []extract.BatchResult) (LinkCounts, error) {
	total := LinkCounts{}
	for _, result := range results {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		counts, err := l.Link(ctx, result.Extraction)
		total.Entities += counts.Entities
		total.Relationships += counts.Relationships
		if err != nil {
			logger.Error("[Linker] Failed to link passage", "passage_id", result.Passage.ID, "err", err)
		}
	}
	return total, nil
}
