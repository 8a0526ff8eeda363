package pgx

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/store"
)

// SavePassages inserts passages with their embeddings in one transaction.
// Passages are immutable, so a conflicting ID is a hard error.
func (s *Store) SavePassages(ctx context.Context, passages []common.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	for _, p := range passages {
		_, err := tx.Exec(ctx, `
			INSERT INTO passages (id, doc_id, source_title, page, ordinal, text, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, p.DocID, p.SourceTitle, p.Page, p.Ordinal, p.Text,
			pgvector.NewVector(p.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to save passage %s: %w", p.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// SearchSimilar performs cosine nearest-neighbor search over passage
// embeddings and returns up to limit passages with similarity scores.
func (s *Store) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]store.SearchResult, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, doc_id, source_title, page, ordinal, text,
		       1 - (embedding <=> $1) AS score
		FROM passages
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	results := make([]store.SearchResult, 0, limit)
	for rows.Next() {
		var r store.SearchResult
		err := rows.Scan(
			&r.Passage.ID, &r.Passage.DocID, &r.Passage.SourceTitle,
			&r.Passage.Page, &r.Passage.Ordinal, &r.Passage.Text, &r.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetPassages resolves passages by identifier; unknown identifiers are
// silently skipped.
func (s *Store) GetPassages(ctx context.Context, ids []string) ([]common.Passage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, doc_id, source_title, page, ordinal, text
		FROM passages
		WHERE id = ANY($1)
		ORDER BY ordinal`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	passages := make([]common.Passage, 0, len(ids))
	for rows.Next() {
		var p common.Passage
		err := rows.Scan(&p.ID, &p.DocID, &p.SourceTitle, &p.Page, &p.Ordinal, &p.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}

// DeleteDocument removes every passage belonging to the document.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM passages WHERE doc_id = $1`, docID); err != nil {
		return fmt.Errorf("failed to delete passages for document %s: %w", docID, err)
	}
	if err := deleteGraphProvenance(ctx, tx, docID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
