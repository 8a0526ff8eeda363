package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/store"
)

// Store implements store.ChunkStore and store.GraphStore on in-process maps.
// It backs the embedded single-process mode and serves as the test double for
// every component that takes injected store handles.
//
// Vector search is brute-force cosine similarity, fine for the corpus sizes
// an embedded deployment sees.
type Store struct {
	mu sync.Mutex

	passages     map[string]common.Passage
	passageOrder []string

	entities  map[common.EntityKey]*entityNode
	entityIDs []common.EntityKey

	edges map[common.RelationshipKey]*edgeRecord
}

type entityNode struct {
	entity common.Entity
	refs   map[string]common.Provenance // keyed by passage ID
}

type edgeRecord struct {
	rel  common.Relationship
	refs map[string]common.Provenance
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		passages: make(map[string]common.Passage),
		entities: make(map[common.EntityKey]*entityNode),
		edges:    make(map[common.RelationshipKey]*edgeRecord),
	}
}

// SavePassages stores passages with their embeddings. Saving an existing ID
// is an error since passages are immutable.
func (s *Store) SavePassages(ctx context.Context, passages []common.Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range passages {
		if _, exists := s.passages[p.ID]; exists {
			return fmt.Errorf("passage %s already exists", p.ID)
		}
	}
	for _, p := range passages {
		s.passages[p.ID] = p
		s.passageOrder = append(s.passageOrder, p.ID)
	}
	return nil
}

// SearchSimilar returns up to limit passages ranked by cosine similarity.
func (s *Store) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]store.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]store.SearchResult, 0, len(s.passages))
	for _, id := range s.passageOrder {
		p := s.passages[id]
		if len(p.Embedding) == 0 {
			continue
		}
		results = append(results, store.SearchResult{
			Passage: p,
			Score:   cosine(embedding, p.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetPassages resolves passages by identifier, skipping unknown IDs.
func (s *Store) GetPassages(ctx context.Context, ids []string) ([]common.Passage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]common.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.passages[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeleteDocument removes the document's passages, its provenance references,
// and any graph element left without provenance.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.passageOrder[:0]
	for _, id := range s.passageOrder {
		if s.passages[id].DocID == docID {
			delete(s.passages, id)
			continue
		}
		kept = append(kept, id)
	}
	s.passageOrder = kept

	for key, edge := range s.edges {
		for pid, ref := range edge.refs {
			if ref.DocID == docID {
				delete(edge.refs, pid)
			}
		}
		if len(edge.refs) == 0 {
			delete(s.edges, key)
		}
	}

	for key, node := range s.entities {
		for pid, ref := range node.refs {
			if ref.DocID == docID {
				delete(node.refs, pid)
			}
		}
		if len(node.refs) == 0 && !s.hasEdgesLocked(key) {
			delete(s.entities, key)
			for i, k := range s.entityIDs {
				if k == key {
					s.entityIDs = append(s.entityIDs[:i], s.entityIDs[i+1:]...)
					break
				}
			}
		}
	}
	return nil
}

func (s *Store) hasEdgesLocked(key common.EntityKey) bool {
	name := key.Name
	for ek := range s.edges {
		if ek.From == name || ek.To == name {
			return true
		}
	}
	return false
}

// UpsertEntity merges the entity by (type, normalized name), accumulating
// provenance as a set keyed by passage ID.
func (s *Store) UpsertEntity(ctx context.Context, entity common.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertEntityLocked(entity)
	return nil
}

func (s *Store) upsertEntityLocked(entity common.Entity) *entityNode {
	key := entity.Key()
	node, ok := s.entities[key]
	if !ok {
		node = &entityNode{
			entity: common.Entity{Name: entity.Name, Type: entity.Type},
			refs:   make(map[string]common.Provenance),
		}
		s.entities[key] = node
		s.entityIDs = append(s.entityIDs, key)
	}
	for _, ref := range entity.Provenance {
		if _, exists := node.refs[ref.PassageID]; !exists {
			node.refs[ref.PassageID] = ref
		}
	}
	return node
}

// UpsertRelationship merges the edge by (from, type, to), upserting both
// endpoints first so no edge can dangle.
func (s *Store) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertEntityLocked(common.Entity{Name: rel.From, Type: rel.FromType})
	s.upsertEntityLocked(common.Entity{Name: rel.To, Type: rel.ToType})

	key := rel.Key()
	edge, ok := s.edges[key]
	if !ok {
		edge = &edgeRecord{
			rel: common.Relationship{
				From: rel.From, FromType: rel.FromType,
				Type: rel.Type,
				To:   rel.To, ToType: rel.ToType,
			},
			refs: make(map[string]common.Provenance),
		}
		s.edges[key] = edge
	}
	for _, ref := range rel.Provenance {
		if _, exists := edge.refs[ref.PassageID]; !exists {
			edge.refs[ref.PassageID] = ref
		}
	}
	return nil
}

// Neighborhood walks the graph breadth-first from the named entity up to
// maxHops edges in either direction.
func (s *Store) Neighborhood(ctx context.Context, name string, maxHops int) ([]store.Neighbor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxHops <= 0 {
		return nil, nil
	}

	start := common.NormalizeName(name)
	if !s.knownNameLocked(start) {
		return nil, nil
	}

	type frontier struct {
		norm string
		path []string
	}

	visited := map[string]bool{start: true}
	queue := []frontier{{norm: start, path: []string{s.displayNameLocked(start)}}}
	neighbors := make([]store.Neighbor, 0)

	for hop := 1; hop <= maxHops && len(queue) > 0; hop++ {
		next := make([]frontier, 0)
		for _, f := range queue {
			for _, adj := range s.adjacentLocked(f.norm) {
				if visited[adj] {
					continue
				}
				visited[adj] = true

				entity := s.entityByNormLocked(adj)
				path := append(append([]string{}, f.path...), entity.Name)
				neighbors = append(neighbors, store.Neighbor{
					Entity: entity,
					Path:   path,
					Hops:   hop,
				})
				next = append(next, frontier{norm: adj, path: path})
			}
		}
		queue = next
	}

	return neighbors, nil
}

func (s *Store) knownNameLocked(norm string) bool {
	for key := range s.entities {
		if key.Name == norm {
			return true
		}
	}
	return false
}

func (s *Store) displayNameLocked(norm string) string {
	for key, node := range s.entities {
		if key.Name == norm {
			return node.entity.Name
		}
	}
	return norm
}

func (s *Store) entityByNormLocked(norm string) common.Entity {
	for key, node := range s.entities {
		if key.Name == norm {
			e := node.entity
			e.Provenance = node.provenanceLocked()
			return e
		}
	}
	return common.Entity{Name: norm}
}

func (n *entityNode) provenanceLocked() []common.Provenance {
	refs := make([]common.Provenance, 0, len(n.refs))
	for _, ref := range n.refs {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].PassageID < refs[j].PassageID })
	return refs
}

func (s *Store) adjacentLocked(norm string) []string {
	adj := make([]string, 0)
	seen := make(map[string]bool)
	keys := make([]common.RelationshipKey, 0, len(s.edges))
	for key := range s.edges {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		if keys[i].To != keys[j].To {
			return keys[i].To < keys[j].To
		}
		return keys[i].Type < keys[j].Type
	})
	for _, key := range keys {
		var other string
		switch norm {
		case key.From:
			other = key.To
		case key.To:
			other = key.From
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			adj = append(adj, other)
		}
	}
	return adj
}

// EntitiesForPassages returns entities linked by provenance to any of the
// given passages.
func (s *Store) EntitiesForPassages(ctx context.Context, passageIDs []string) ([]common.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool, len(passageIDs))
	for _, id := range passageIDs {
		wanted[id] = true
	}

	out := make([]common.Entity, 0)
	for _, key := range s.entityIDs {
		node := s.entities[key]
		linked := false
		for pid := range node.refs {
			if wanted[pid] {
				linked = true
				break
			}
		}
		if linked {
			e := node.entity
			e.Provenance = node.provenanceLocked()
			out = append(out, e)
		}
	}
	return out, nil
}

// EntityNames returns the display names of all known entities in insertion
// order.
func (s *Store) EntityNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entityIDs))
	for _, key := range s.entityIDs {
		names = append(names, s.entities[key].entity.Name)
	}
	return names, nil
}

// EntityCount reports the number of entity nodes. Test helper.
func (s *Store) EntityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities)
}

// EntityProvenance returns the provenance set of the entity with the given
// identity, or nil when unknown. Test helper.
func (s *Store) EntityProvenance(key common.EntityKey) []common.Provenance {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.entities[key]
	if !ok {
		return nil
	}
	return node.provenanceLocked()
}

// RelationshipProvenance returns the provenance set of the edge with the
// given identity, or nil when unknown. Test helper.
func (s *Store) RelationshipProvenance(key common.RelationshipKey) []common.Provenance {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[key]
	if !ok {
		return nil
	}
	refs := make([]common.Provenance, 0, len(edge.refs))
	for _, ref := range edge.refs {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].PassageID < refs[j].PassageID })
	return refs
}

// RelationshipCount reports the number of edges. Test helper.
func (s *Store) RelationshipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
