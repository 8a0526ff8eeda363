package common

import "time"

// Passage is one indexed segment of source text. Passages are created once
// during ingestion and never mutated; they are removed only when their whole
// document is removed.
//
// Every entity and relationship in the graph traces back to one or more
// passages, which makes the passage the unit of provenance for the entire
// system.
type Passage struct {
	ID          string    `json:"id"`
	DocID       string    `json:"doc_id"`
	SourceTitle string    `json:"source_title"`
	Page        int       `json:"page,omitempty"`
	Ordinal     int       `json:"ordinal"`
	Text        string    `json:"text"`
	Embedding   []float32 `json:"-"`
}

// Provenance links an entity or relationship back to the passage it was
// extracted from. Provenance records are append-only: once attached they are
// never removed within an ingestion run.
type Provenance struct {
	DocID       string    `json:"doc_id"`
	PassageID   string    `json:"passage_id"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// Entity is a named, typed node in the knowledge graph. Its identity is the
// (Type, normalized Name) pair; repeated extractions of the same entity merge
// into one node and accumulate provenance.
type Entity struct {
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	Provenance []Provenance `json:"provenance,omitempty"`
}

// Key returns the identity key of the entity.
func (e Entity) Key() EntityKey {
	return EntityKey{Type: e.Type, Name: NormalizeName(e.Name)}
}

// EntityKey is the identity of an entity: type plus normalized name.
type EntityKey struct {
	Type string
	Name string
}

// Relationship is a directed, typed edge between two entities. Its identity
// is the (From, Type, To) triple; repeated extractions merge into one edge
// and accumulate provenance.
type Relationship struct {
	From       string       `json:"from"`
	FromType   string       `json:"from_type"`
	Type       string       `json:"type"`
	To         string       `json:"to"`
	ToType     string       `json:"to_type"`
	Provenance []Provenance `json:"provenance,omitempty"`
}

// Key returns the identity key of the relationship. Endpoint types are part
// of the identity: edges between same-named entities of different types are
// distinct edges.
func (r Relationship) Key() RelationshipKey {
	return RelationshipKey{
		From:     NormalizeName(r.From),
		FromType: r.FromType,
		Type:     r.Type,
		To:       NormalizeName(r.To),
		ToType:   r.ToType,
	}
}

// RelationshipKey is the identity of a relationship edge: its typed endpoint
// identities plus the edge label.
type RelationshipKey struct {
	From     string
	FromType string
	Type     string
	To       string
	ToType   string
}

// ChunkOrigin records which retrieval stage produced an evidence chunk.
type ChunkOrigin string

const (
	OriginSemantic ChunkOrigin = "semantic"
	OriginGraph    ChunkOrigin = "graph"
)

// EvidenceChunk is one passage in a per-query evidence set, tagged with the
// stage that produced it and the similarity score when one exists. Graph-origin
// chunks carry no score of their own.
type EvidenceChunk struct {
	Passage Passage     `json:"passage"`
	Origin  ChunkOrigin `json:"origin"`
	Score   float64     `json:"score,omitempty"`
}

// GraphPath is one traversed edge surfaced to the user as an explanation of
// how two entities are connected. Paths are transient per-query records and
// are never persisted.
type GraphPath struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Depth int    `json:"depth"`
}

// Citation is a user-facing (document, page) reference derived from the
// evidence set. Citations are deduplicated by (DocID, Page).
type Citation struct {
	SourceTitle string `json:"source_title"`
	Page        int    `json:"page_number"`
	DocID       string `json:"doc_id"`
	ChunkID     string `json:"chunk_id"`
}

// QueryStats summarizes how the evidence set for one query was assembled.
type QueryStats struct {
	VectorChunks   int `json:"vectorChunks"`
	GraphChunks    int `json:"graphChunks"`
	TotalChunks    int `json:"totalChunks"`
	GraphPathCount int `json:"graphPathCount"`
}

// QueryResult is the structured answer to one query. Citations and GraphPaths
// are always present, defaulting to empty slices rather than being omitted.
type QueryResult struct {
	Query      string      `json:"query"`
	Answer     string      `json:"answer"`
	Citations  []Citation  `json:"citations"`
	GraphPaths []GraphPath `json:"graphPaths"`
	Stats      QueryStats  `json:"stats"`
}
