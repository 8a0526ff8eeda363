package pgx

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/store"
)

// serverNeighborCap bounds a single traversal result set at the storage
// layer. The query layer applies its own, smaller cap on top of this.
const serverNeighborCap = 200

// UpsertEntity merges the entity by (type, normalized name) and attaches its
// provenance references. The ON CONFLICT clauses make both the node merge and
// the provenance union atomic, so concurrent linkers cannot lose references.
func (s *Store) UpsertEntity(ctx context.Context, entity common.Entity) error {
	id, err := s.upsertEntityNode(ctx, entity)
	if err != nil {
		return err
	}
	return s.attachProvenance(ctx, "entity_provenance", "entity_id", id, entity.Provenance)
}

// UpsertRelationship merges the edge by (from, type, to) and attaches its
// provenance. Both endpoints are upserted first, so the edge can never
// dangle.
func (s *Store) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	fromID, err := s.upsertEntityNode(ctx, common.Entity{Name: rel.From, Type: rel.FromType})
	if err != nil {
		return err
	}
	toID, err := s.upsertEntityNode(ctx, common.Entity{Name: rel.To, Type: rel.ToType})
	if err != nil {
		return err
	}

	var relID int64
	err = s.conn.QueryRow(ctx, `
		INSERT INTO relationships (from_id, type, to_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (from_id, type, to_id) DO UPDATE SET type = relationships.type
		RETURNING id`,
		fromID, rel.Type, toID,
	).Scan(&relID)
	if err != nil {
		return fmt.Errorf("failed to upsert relationship %s-%s->%s: %w", rel.From, rel.Type, rel.To, err)
	}

	return s.attachProvenance(ctx, "relationship_provenance", "relationship_id", relID, rel.Provenance)
}

// upsertEntityNode inserts or finds the entity node and returns its row ID.
// The no-op DO UPDATE makes RETURNING work on conflict without touching the
// stored identity.
func (s *Store) upsertEntityNode(ctx context.Context, entity common.Entity) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx, `
		INSERT INTO entities (name, norm_name, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (type, norm_name) DO UPDATE SET type = entities.type
		RETURNING id`,
		entity.Name, common.NormalizeName(entity.Name), entity.Type,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert entity %s: %w", entity.Name, err)
	}
	return id, nil
}

func (s *Store) attachProvenance(ctx context.Context, table string, column string, id int64, refs []common.Provenance) error {
	for _, ref := range refs {
		query := fmt.Sprintf(`
			INSERT INTO %s (%s, doc_id, passage_id, extracted_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING`, table, column)
		if _, err := s.conn.Exec(ctx, query, id, ref.DocID, ref.PassageID, ref.ExtractedAt); err != nil {
			return fmt.Errorf("failed to attach provenance: %w", err)
		}
	}
	return nil
}

// Neighborhood walks the graph from the named entity up to maxHops edges in
// either direction using a recursive CTE. Cycles are excluded by tracking
// visited node IDs along each walk; each reachable entity is reported once at
// its shortest observed hop count.
func (s *Store) Neighborhood(ctx context.Context, name string, maxHops int) ([]store.Neighbor, error) {
	if maxHops <= 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		WITH RECURSIVE walk(entity_id, path_ids, path_names, hops) AS (
			SELECT e.id, ARRAY[e.id], ARRAY[e.name], 0
			FROM entities e
			WHERE e.norm_name = $1
		UNION ALL
			SELECT n.id, w.path_ids || n.id, w.path_names || n.name, w.hops + 1
			FROM walk w
			JOIN relationships r ON r.from_id = w.entity_id OR r.to_id = w.entity_id
			JOIN entities n ON n.id = CASE
				WHEN r.from_id = w.entity_id THEN r.to_id
				ELSE r.from_id
			END
			WHERE w.hops < $2 AND NOT n.id = ANY(w.path_ids)
		)
		SELECT sub.entity_id, sub.name, sub.type, sub.path_names, sub.hops
		FROM (
			SELECT DISTINCT ON (w.entity_id)
				w.entity_id, e.name, e.type, w.path_names, w.hops
			FROM walk w
			JOIN entities e ON e.id = w.entity_id
			WHERE w.hops > 0
			ORDER BY w.entity_id, w.hops
		) sub
		ORDER BY sub.hops, sub.name
		LIMIT $3`,
		common.NormalizeName(name), maxHops, serverNeighborCap,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	neighbors := make([]store.Neighbor, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var (
			id int64
			n  store.Neighbor
		)
		if err := rows.Scan(&id, &n.Entity.Name, &n.Entity.Type, &n.Path, &n.Hops); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor: %w", err)
		}
		neighbors = append(neighbors, n)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	provenance, err := s.entityProvenance(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		neighbors[i].Entity.Provenance = provenance[id]
	}

	return neighbors, nil
}

func (s *Store) entityProvenance(ctx context.Context, ids []int64) (map[int64][]common.Provenance, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT entity_id, doc_id, passage_id, extracted_at
		FROM entity_provenance
		WHERE entity_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load entity provenance: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]common.Provenance)
	for rows.Next() {
		var (
			id  int64
			ref common.Provenance
		)
		if err := rows.Scan(&id, &ref.DocID, &ref.PassageID, &ref.ExtractedAt); err != nil {
			return nil, fmt.Errorf("failed to scan provenance: %w", err)
		}
		out[id] = append(out[id], ref)
	}
	return out, rows.Err()
}

// EntitiesForPassages returns entities linked by provenance to any of the
// given passages.
func (s *Store) EntitiesForPassages(ctx context.Context, passageIDs []string) ([]common.Entity, error) {
	if len(passageIDs) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT e.id, e.name, e.type, ep.doc_id, ep.passage_id, ep.extracted_at
		FROM entities e
		JOIN entity_provenance ep ON ep.entity_id = e.id
		WHERE ep.passage_id = ANY($1)
		ORDER BY e.id`,
		passageIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	byID := make(map[int64]*common.Entity)
	order := make([]int64, 0)
	for rows.Next() {
		var (
			id  int64
			e   common.Entity
			ref common.Provenance
		)
		if err := rows.Scan(&id, &e.Name, &e.Type, &ref.DocID, &ref.PassageID, &ref.ExtractedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		if existing, ok := byID[id]; ok {
			existing.Provenance = append(existing.Provenance, ref)
			continue
		}
		e.Provenance = []common.Provenance{ref}
		byID[id] = &e
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entities := make([]common.Entity, 0, len(order))
	for _, id := range order {
		entities = append(entities, *byID[id])
	}
	return entities, nil
}

// EntityNames returns the display names of all known entities.
func (s *Store) EntityNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT name FROM entities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan entity name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// deleteGraphProvenance drops the document's provenance references and prunes
// entities and relationships left without any provenance, preserving the
// invariant that every graph element carries at least one reference.
func deleteGraphProvenance(ctx context.Context, tx pgxv5.Tx, docID string) error {
	statements := []string{
		`DELETE FROM entity_provenance WHERE doc_id = $1`,
		`DELETE FROM relationship_provenance WHERE doc_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, docID); err != nil {
			return fmt.Errorf("failed to delete provenance for document %s: %w", docID, err)
		}
	}

	pruneStatements := []string{
		`DELETE FROM relationships r
		 WHERE NOT EXISTS (
			SELECT 1 FROM relationship_provenance rp WHERE rp.relationship_id = r.id
		 )`,
		`DELETE FROM entities e
		 WHERE NOT EXISTS (
			SELECT 1 FROM entity_provenance ep WHERE ep.entity_id = e.id
		 )
		 AND NOT EXISTS (
			SELECT 1 FROM relationships r WHERE r.from_id = e.id OR r.to_id = e.id
		 )`,
	}
	for _, stmt := range pruneStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prune orphaned graph data: %w", err)
		}
	}
	return nil
}
