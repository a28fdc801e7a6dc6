package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/persistence"
)

// dbtx is the query surface shared by the pool and an open transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier routes statements through the transaction bound to ctx when there
// is one, otherwise straight to the pool.
func querier(ctx context.Context, pool *pgxpool.Pool) dbtx {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}
