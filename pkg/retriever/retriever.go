package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhishekg1-gl/langgraph/pkg/ai"
	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
	"github.com/abhishekg1-gl/langgraph/pkg/store"
)

// minFallbackNameLen is the shortest entity name the substring-matching
// resolution fallback will consider. Shorter names match too much unrelated
// text to be usable as anchors.
const minFallbackNameLen = 4

// defaultNeighborCap bounds how many neighbors one traversal call may
// contribute, regardless of the true degree of the starting entity.
const defaultNeighborCap = 30

// Retriever assembles a per-query evidence set from semantic search plus
// bounded graph expansion. All store and AI handles are injected; the
// retriever holds no per-query state, so one instance serves concurrent
// queries.
type Retriever struct {
	chunks      store.ChunkStore
	graph       store.GraphStore
	aiClient    ai.Client
	neighborCap int
}

// NewRetrieverParams configures a new Retriever.
type NewRetrieverParams struct {
	Chunks      store.ChunkStore
	Graph       store.GraphStore
	AIClient    ai.Client
	NeighborCap int
}

// NewRetriever creates a Retriever over the given stores.
func NewRetriever(params NewRetrieverParams) *Retriever {
	cap := params.NeighborCap
	if cap <= 0 {
		cap = defaultNeighborCap
	}
	return &Retriever{
		chunks:      params.Chunks,
		graph:       params.Graph,
		aiClient:    params.AIClient,
		neighborCap: cap,
	}
}

// Params are the per-query retrieval knobs. GraphDepth of zero disables graph
// expansion entirely.
type Params struct {
	TopK       int
	GraphDepth int
}

// Result is one query's assembled evidence: the deduplicated evidence set in
// semantic-first order, the traversed relationship paths in discovery order,
// and assembly statistics.
type Result struct {
	Evidence []common.EvidenceChunk
	Paths    []common.GraphPath
	Stats    common.QueryStats
}

// Retrieve runs the hybrid retrieval pipeline for one query.
//
// An empty semantic result terminates early with an empty evidence set; that
// is a legitimate no-matches outcome, not an error. Once the semantic set
// exists, graph-side failures only shrink the result: a store error during
// resolution or expansion is logged and skipped, never failing the query.
func (r *Retriever) Retrieve(ctx context.Context, query string, params Params) (Result, error) {
	result := Result{
		Evidence: []common.EvidenceChunk{},
		Paths:    []common.GraphPath{},
	}

	embedding, err := r.aiClient.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		return result, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := r.chunks.SearchSimilar(ctx, embedding, params.TopK)
	if err != nil {
		return result, fmt.Errorf("vector search failed: %w", err)
	}
	if len(matches) == 0 {
		return result, nil
	}

	inEvidence := make(map[string]bool, len(matches))
	for _, m := range matches {
		result.Evidence = append(result.Evidence, common.EvidenceChunk{
			Passage: m.Passage,
			Origin:  common.OriginSemantic,
			Score:   m.Score,
		})
		inEvidence[m.Passage.ID] = true
	}
	result.Stats.VectorChunks = len(matches)

	if params.GraphDepth > 0 {
		names := r.resolveEntityNames(ctx, matches)
		discovered, paths := r.expand(ctx, names, params.GraphDepth)
		result.Paths = paths
		r.appendGraphPassages(ctx, discovered, inEvidence, &result)
	}

	result.Stats.TotalChunks = len(result.Evidence)
	result.Stats.GraphPathCount = len(result.Paths)
	return result, nil
}

// resolveEntityNames finds the entities mentioned in the semantic result set.
// The stored provenance links are the preferred source; the substring scan
// over all known entity names is a last resort used only when no links exist,
// since it costs O(passages x known entities).
func (r *Retriever) resolveEntityNames(ctx context.Context, matches []store.SearchResult) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Passage.ID)
	}

	linked, err := r.graph.EntitiesForPassages(ctx, ids)
	if err != nil {
		logger.Error("[Retriever] Failed to resolve linked entities, continuing vector-only", "err", err)
		return nil
	}
	if len(linked) > 0 {
		names := make([]string, 0, len(linked))
		seen := make(map[string]bool, len(linked))
		for _, e := range linked {
			norm := common.NormalizeName(e.Name)
			if !seen[norm] {
				seen[norm] = true
				names = append(names, e.Name)
			}
		}
		return names
	}

	known, err := r.graph.EntityNames(ctx)
	if err != nil {
		logger.Error("[Retriever] Failed to list entity names for fallback, continuing vector-only", "err", err)
		return nil
	}

	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, m := range matches {
		text := strings.ToLower(m.Passage.Text)
		for _, name := range known {
			norm := common.NormalizeName(name)
			if len([]rune(norm)) < minFallbackNameLen || seen[norm] {
				continue
			}
			if strings.Contains(text, norm) {
				seen[norm] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// expand traverses the graph from every resolved entity, deduplicating
// discovered entities by (type, name) across starting points and capping
// each traversal's contribution to guard against popular-node explosion.
func (r *Retriever) expand(ctx context.Context, names []string, depth int) ([]common.Entity, []common.GraphPath) {
	discovered := make([]common.Entity, 0)
	paths := make([]common.GraphPath, 0)

	startNames := make(map[string]bool, len(names))
	for _, name := range names {
		startNames[common.NormalizeName(name)] = true
	}
	seenEntities := make(map[common.EntityKey]bool)
	seenEdges := make(map[string]bool)

	for _, name := range names {
		neighbors, err := r.graph.Neighborhood(ctx, name, depth)
		if err != nil {
			logger.Error("[Retriever] Graph expansion failed for entity, skipping", "entity", name, "err", err)
			continue
		}
		if len(neighbors) > r.neighborCap {
			neighbors = neighbors[:r.neighborCap]
		}

		for _, n := range neighbors {
			for i := 1; i < len(n.Path); i++ {
				edgeKey := common.NormalizeName(n.Path[i-1]) + "->" + common.NormalizeName(n.Path[i])
				if seenEdges[edgeKey] {
					continue
				}
				seenEdges[edgeKey] = true
				paths = append(paths, common.GraphPath{
					From:  n.Path[i-1],
					To:    n.Path[i],
					Depth: i,
				})
			}

			key := n.Entity.Key()
			if seenEntities[key] || startNames[key.Name] {
				continue
			}
			seenEntities[key] = true
			discovered = append(discovered, n.Entity)
		}
	}

	return discovered, paths
}

// appendGraphPassages resolves the passages referenced by discovered
// entities' provenance and appends the ones not already in the evidence set,
// preserving discovery order.
func (r *Retriever) appendGraphPassages(ctx context.Context, discovered []common.Entity, inEvidence map[string]bool, result *Result) {
	wanted := make([]string, 0)
	requested := make(map[string]bool)
	for _, entity := range discovered {
		for _, ref := range entity.Provenance {
			if ref.PassageID == "" || inEvidence[ref.PassageID] || requested[ref.PassageID] {
				continue
			}
			requested[ref.PassageID] = true
			wanted = append(wanted, ref.PassageID)
		}
	}
	if len(wanted) == 0 {
		return
	}

	passages, err := r.chunks.GetPassages(ctx, wanted)
	if err != nil {
		logger.Error("[Retriever] Failed to resolve graph-discovered passages, skipping", "err", err)
		return
	}

	byID := make(map[string]common.Passage, len(passages))
	for _, p := range passages {
		byID[p.ID] = p
	}
	for _, id := range wanted {
		p, ok := byID[id]
		if !ok {
			continue
		}
		result.Evidence = append(result.Evidence, common.EvidenceChunk{
			Passage: p,
			Origin:  common.OriginGraph,
		})
		inEvidence[id] = true
		result.Stats.GraphChunks++
	}
}
