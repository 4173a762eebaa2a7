package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sequencer hands out monotonically increasing values per named counter.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Counter is a Sequencer backed by the id_counters table. The upsert takes a
// row lock, so concurrent callers never observe the same value.
type Counter struct {
	pool *pgxpool.Pool
}

func NewCounter(pool *pgxpool.Pool) *Counter {
	return &Counter{pool: pool}
}

const nextCounterSQL = `
	INSERT INTO id_counters (name, value) VALUES ($1, 1)
	ON CONFLICT (name) DO UPDATE SET value = id_counters.value + 1
	RETURNING value`

// Next increments the named counter, inside the context's transaction when
// one is present.
func (c *Counter) Next(ctx context.Context, name string) (int64, error) {
	var row pgx.Row
	if tx := TxFromContext(ctx); tx != nil {
		row = tx.QueryRow(ctx, nextCounterSQL, name)
	} else {
		row = c.pool.QueryRow(ctx, nextCounterSQL, name)
	}

	var v int64
	if err := row.Scan(&v); err != nil {
		return 0, fmt.Errorf("next %s counter: %w", name, err)
	}
	return v, nil
}
