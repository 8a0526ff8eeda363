package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxIConn is the subset of pgx connection behavior the store needs. Both
// *pgxpool.Pool and *pgx.Conn satisfy it, which keeps the connection an
// explicitly owned, injectable handle.
type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// Store implements store.ChunkStore and store.GraphStore on PostgreSQL with
// pgvector. All upserts rely on ON CONFLICT clauses, so per-key atomicity
// comes from the database rather than process-level locking.
type Store struct {
	conn pgxIConn
}

// NewStore wraps an existing connection or pool. The caller owns the
// connection lifecycle.
func NewStore(conn pgxIConn) *Store {
	return &Store{conn: conn}
}
