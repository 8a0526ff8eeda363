package store

import (
	"context"
	"errors"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
)

// ErrStoreUnavailable marks a connectivity failure: the store could not be
// reached at all, as opposed to a lookup that legitimately found nothing.
var ErrStoreUnavailable = errors.New("store unavailable")

// SearchResult is one passage returned by nearest-neighbor search, with its
// similarity score.
type SearchResult struct {
	Passage common.Passage
	Score   float64
}

// Neighbor is one entity discovered by a bounded-depth traversal. Path holds
// the entity names from the starting entity to this neighbor, inclusive, so
// callers can reconstruct every traversed edge.
type Neighbor struct {
	Entity common.Entity
	Path   []string
	Hops   int
}

// ChunkStore is a semantic index over passages: nearest-neighbor search by
// vector and exact lookup by identifier.
type ChunkStore interface {
	// SavePassages stores passages with their embeddings. Passage IDs are
	// unique; saving an existing ID is an error since passages are immutable.
	SavePassages(ctx context.Context, passages []common.Passage) error

	// SearchSimilar returns up to limit passages ranked by similarity to the
	// query embedding. An empty result is a legitimate outcome, not an error.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error)

	// GetPassages resolves passages by identifier. Unknown identifiers are
	// skipped, not errors.
	GetPassages(ctx context.Context, ids []string) ([]common.Passage, error)

	// DeleteDocument removes every passage belonging to the document.
	DeleteDocument(ctx context.Context, docID string) error
}

// GraphStore is a labeled property graph over extracted entities and
// relationships with per-node and per-edge provenance.
//
// Upserts are atomic per entity/relationship: concurrent linking of the same
// key from two passages must not lose either provenance reference.
type GraphStore interface {
	// UpsertEntity merges the entity by its (type, normalized name) identity
	// key, accumulating the provenance references it carries.
	UpsertEntity(ctx context.Context, entity common.Entity) error

	// UpsertRelationship merges the edge by its (from, type, to) identity
	// key, accumulating provenance. Endpoint entities must already exist.
	UpsertRelationship(ctx context.Context, rel common.Relationship) error

	// Neighborhood traverses the graph from the named entity up to maxHops
	// edges in either direction. Returned entities carry their provenance.
	// Implementations may cap total results server-side.
	Neighborhood(ctx context.Context, name string, maxHops int) ([]Neighbor, error)

	// EntitiesForPassages returns the entities linked by provenance to any of
	// the given passages.
	EntitiesForPassages(ctx context.Context, passageIDs []string) ([]common.Entity, error)

	// EntityNames returns the display names of all known entities. Used only
	// by the substring-matching resolution fallback.
	EntityNames(ctx context.Context) ([]string, error)

	// DeleteDocument removes the document's provenance references and any
	// entity or relationship left without provenance.
	DeleteDocument(ctx context.Context, docID string) error
}
