package retriever

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhishekg1-gl/langgraph/pkg/ai"
	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/store"
	"github.com/abhishekg1-gl/langgraph/pkg/store/memory"
)

type stubAI struct {
	embedding []float32
	err       error
}

func (s *stubAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (s *stubAI) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return nil
}

func (s *stubAI) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.embedding, nil
}

func (s *stubAI) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		embedding, err := s.GenerateEmbedding(ctx, inputs[i])
		if err != nil {
			return nil, err
		}
		out[i] = embedding
	}
	return out, nil
}

func ref(docID, passageID string) common.Provenance {
	return common.Provenance{DocID: docID, PassageID: passageID, ExtractedAt: time.Now().UTC()}
}

// seedCorpus loads the Sam Altman / OpenAI / Microsoft fixture: two passages
// mentioning Sam Altman rank closest to the query, with OpenAI and Microsoft
// reachable only through the graph.
func seedCorpus(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	ctx := context.Background()

	passages := []common.Passage{
		{ID: "p1", DocID: "d1", SourceTitle: "Profile", Page: 1, Ordinal: 0, Text: "Sam Altman runs the company.", Embedding: []float32{1, 0}},
		{ID: "p2", DocID: "d1", SourceTitle: "Profile", Page: 2, Ordinal: 1, Text: "Sam Altman spoke at the event.", Embedding: []float32{0.9, 0.1}},
		{ID: "p3", DocID: "d2", SourceTitle: "Companies", Page: 5, Ordinal: 0, Text: "OpenAI builds AI systems.", Embedding: []float32{0, 1}},
		{ID: "p4", DocID: "d3", SourceTitle: "Partners", Page: 7, Ordinal: 0, Text: "Microsoft invests broadly.", Embedding: []float32{-1, 0}},
	}
	if err := s.SavePassages(ctx, passages); err != nil {
		t.Fatalf("failed to seed passages: %v", err)
	}

	entities := []common.Entity{
		{Name: "Sam Altman", Type: common.TypePerson, Provenance: []common.Provenance{ref("d1", "p1"), ref("d1", "p2")}},
		{Name: "OpenAI", Type: common.TypeCompany, Provenance: []common.Provenance{ref("d2", "p3")}},
		{Name: "Microsoft", Type: common.TypeCompany, Provenance: []common.Provenance{ref("d3", "p4")}},
	}
	for _, e := range entities {
		if err := s.UpsertEntity(ctx, e); err != nil {
			t.Fatalf("failed to seed entity: %v", err)
		}
	}

	rels := []common.Relationship{
		{From: "Sam Altman", FromType: common.TypePerson, Type: "CEO_OF", To: "OpenAI", ToType: common.TypeCompany, Provenance: []common.Provenance{ref("d1", "p1")}},
		{From: "OpenAI", FromType: common.TypeCompany, Type: "PARTNERED_WITH", To: "Microsoft", ToType: common.TypeCompany, Provenance: []common.Provenance{ref("d2", "p3")}},
	}
	for _, r := range rels {
		if err := s.UpsertRelationship(ctx, r); err != nil {
			t.Fatalf("failed to seed relationship: %v", err)
		}
	}
	return s
}

func TestRetrieveHybridTwoHopScenario(t *testing.T) {
	s := seedCorpus(t)
	r := NewRetriever(NewRetrieverParams{
		Chunks:   s,
		Graph:    s,
		AIClient: &stubAI{embedding: []float32{1, 0}},
	})

	result, err := r.Retrieve(context.Background(), "How is Sam Altman related to Microsoft?", Params{TopK: 2, GraphDepth: 2})
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	if result.Stats.VectorChunks != 2 {
		t.Errorf("expected 2 semantic chunks, got %d", result.Stats.VectorChunks)
	}
	if len(result.Evidence) <= 2 {
		t.Fatalf("expected graph-expanded evidence beyond the 2 semantic chunks, got %d", len(result.Evidence))
	}

	// Semantic chunks first, graph chunks appended after.
	if result.Evidence[0].Passage.ID != "p1" || result.Evidence[1].Passage.ID != "p2" {
		t.Errorf("semantic ordering broken: %s, %s", result.Evidence[0].Passage.ID, result.Evidence[1].Passage.ID)
	}
	for _, chunk := range result.Evidence[2:] {
		if chunk.Origin != common.OriginGraph {
			t.Errorf("appended chunk %s has origin %s", chunk.Passage.ID, chunk.Origin)
		}
	}

	wantEdges := map[string]bool{
		"Sam Altman->OpenAI": false,
		"OpenAI->Microsoft":  false,
	}
	for _, p := range result.Paths {
		key := fmt.Sprintf("%s->%s", p.From, p.To)
		if _, ok := wantEdges[key]; ok {
			wantEdges[key] = true
		}
	}
	for edge, found := range wantEdges {
		if !found {
			t.Errorf("expected path %s in %+v", edge, result.Paths)
		}
	}
}

func TestRetrieveDepthZeroIsVectorOnly(t *testing.T) {
	s := seedCorpus(t)
	r := NewRetriever(NewRetrieverParams{
		Chunks:   s,
		Graph:    s,
		AIClient: &stubAI{embedding: []float32{1, 0}},
	})

	result, err := r.Retrieve(context.Background(), "Sam Altman", Params{TopK: 2, GraphDepth: 0})
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	if len(result.Evidence) != 2 {
		t.Fatalf("vector-only mode must return exactly the semantic set, got %d chunks", len(result.Evidence))
	}
	for _, chunk := range result.Evidence {
		if chunk.Origin != common.OriginSemantic {
			t.Errorf("unexpected origin %s in vector-only mode", chunk.Origin)
		}
	}
	if len(result.Paths) != 0 {
		t.Errorf("vector-only mode must produce no paths, got %d", len(result.Paths))
	}
}

func TestRetrieveNoDuplicatePassages(t *testing.T) {
	s := seedCorpus(t)
	r := NewRetriever(NewRetrieverParams{
		Chunks:   s,
		Graph:    s,
		AIClient: &stubAI{embedding: []float32{1, 0}},
	})

	result, err := r.Retrieve(context.Background(), "Sam Altman", Params{TopK: 4, GraphDepth: 2})
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, chunk := range result.Evidence {
		if seen[chunk.Passage.ID] {
			t.Errorf("duplicate passage %s in evidence set", chunk.Passage.ID)
		}
		seen[chunk.Passage.ID] = true
	}
}

func TestRetrieveEmptySemanticResultTerminatesEarly(t *testing.T) {
	s := memory.NewStore()
	r := NewRetriever(NewRetrieverParams{
		Chunks:   s,
		Graph:    s,
		AIClient: &stubAI{embedding: []float32{1, 0}},
	})

	result, err := r.Retrieve(context.Background(), "anything", Params{TopK: 5, GraphDepth: 2})
	if err != nil {
		t.Fatalf("empty corpus must not error: %v", err)
	}
	if len(result.Evidence) != 0 || len(result.Paths) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestRetrieveEmbeddingFailureSurfaces(t *testing.T) {
	s := seedCorpus(t)
	r := NewRetriever(NewRetrieverParams{
		Chunks:   s,
		Graph:    s,
		AIClient: &stubAI{err: errors.New("backend unreachable")},
	})

	_, err := r.Retrieve(context.Background(), "query", Params{TopK: 2, GraphDepth: 2})
	if err == nil {
		t.Fatal("expected pre-retrieval connectivity error to surface")
	}
}

func TestRetrieveNeighborCap(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	hubPassage := common.Passage{ID: "hub-p", DocID: "d1", Text: "The hub connects everything.", Embedding: []float32{1, 0}}
	if err := s.SavePassages(ctx, []common.Passage{hubPassage}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	hub := common.Entity{Name: "Hub Corp", Type: common.TypeCompany, Provenance: []common.Provenance{ref("d1", "hub-p")}}
	if err := s.UpsertEntity(ctx, hub); err != nil {
		t.Fatalf("failed to seed hub: %v", err)
	}
	for i := 0; i < 20; i++ {
		rel := common.Relationship{
			From: "Hub Corp", FromType: common.TypeCompany,
			Type: "OWNS",
			To:   fmt.Sprintf("Subsidiary %02d", i), ToType: common.TypeCompany,
			Provenance: []common.Provenance{ref("d1", "hub-p")},
		}
		if err := s.UpsertRelationship(ctx, rel); err != nil {
			t.Fatalf("failed to seed edge: %v", err)
		}
	}

	r := NewRetriever(NewRetrieverParams{
		Chunks:      s,
		Graph:       s,
		AIClient:    &stubAI{embedding: []float32{1, 0}},
		NeighborCap: 5,
	})

	result, err := r.Retrieve(ctx, "hub", Params{TopK: 1, GraphDepth: 1})
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	graphChunks := 0
	for _, chunk := range result.Evidence {
		if chunk.Origin == common.OriginGraph {
			graphChunks++
		}
	}
	if graphChunks > 5 {
		t.Errorf("neighbor cap violated: %d graph chunks from a degree-20 hub", graphChunks)
	}
	if len(result.Paths) > 5 {
		t.Errorf("expected capped path list, got %d", len(result.Paths))
	}
}

type failingGraph struct {
	store.GraphStore
}

func (f *failingGraph) Neighborhood(ctx context.Context, name string, maxHops int) ([]store.Neighbor, error) {
	return nil, errors.New("storage error")
}

func TestRetrieveExpansionErrorDegradesToVectorOnly(t *testing.T) {
	s := seedCorpus(t)
	r := NewRetriever(NewRetrieverParams{
		Chunks:   s,
		Graph:    &failingGraph{GraphStore: s},
		AIClient: &stubAI{embedding: []float32{1, 0}},
	})

	result, err := r.Retrieve(context.Background(), "Sam Altman", Params{TopK: 2, GraphDepth: 2})
	if err != nil {
		t.Fatalf("expansion errors must not fail the query: %v", err)
	}
	if len(result.Evidence) != 2 {
		t.Errorf("expected the semantic set to survive, got %d chunks", len(result.Evidence))
	}
}

func TestResolveEntityNamesFallbackSubstring(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	// Entities exist but none are linked to the matched passage, so the
	// substring fallback has to find them in the passage text.
	passage := common.Passage{ID: "px", DocID: "dx", Text: "A report about OpenAI and AI in general.", Embedding: []float32{1, 0}}
	if err := s.SavePassages(ctx, []common.Passage{passage}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	if err := s.UpsertEntity(ctx, common.Entity{Name: "OpenAI", Type: common.TypeCompany, Provenance: []common.Provenance{ref("other", "other-p")}}); err != nil {
		t.Fatalf("failed to seed entity: %v", err)
	}
	if err := s.UpsertEntity(ctx, common.Entity{Name: "AI", Type: common.TypeField, Provenance: []common.Provenance{ref("other", "other-p")}}); err != nil {
		t.Fatalf("failed to seed entity: %v", err)
	}

	r := NewRetriever(NewRetrieverParams{Chunks: s, Graph: s, AIClient: &stubAI{embedding: []float32{1, 0}}})

	matches, err := s.SearchSimilar(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	names := r.resolveEntityNames(ctx, matches)

	if len(names) != 1 || names[0] != "OpenAI" {
		t.Errorf("expected fallback to match only OpenAI (AI is below the length floor), got %v", names)
	}
}

func TestRankChunksGraphBonusAndImmutability(t *testing.T) {
	chunks := []common.EvidenceChunk{
		{Passage: common.Passage{ID: "a"}, Origin: common.OriginSemantic, Score: 0.9},
		{Passage: common.Passage{ID: "b"}, Origin: common.OriginSemantic, Score: 0.5},
		{Passage: common.Passage{ID: "c"}, Origin: common.OriginGraph},
		{Passage: common.Passage{ID: "d"}, Origin: common.OriginSemantic, Score: 0.1},
	}

	ranked := RankChunks(chunks)

	if len(ranked) != len(chunks) {
		t.Fatalf("ranking changed membership: %d vs %d", len(ranked), len(chunks))
	}
	if ranked[0].Passage.ID != "a" {
		t.Errorf("expected highest semantic score first, got %s", ranked[0].Passage.ID)
	}
	// Graph bonus lifts c (0.15) above d (0.1).
	posC, posD := -1, -1
	for i, chunk := range ranked {
		switch chunk.Passage.ID {
		case "c":
			posC = i
		case "d":
			posD = i
		}
	}
	if posC > posD {
		t.Errorf("graph bonus not applied: c at %d, d at %d", posC, posD)
	}
	if chunks[2].Passage.ID != "c" {
		t.Error("input slice was mutated")
	}
}
