package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Snapshot is used for multi-statement reads that must observe one committed state.
var Snapshot = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// ReadWrite is the default isolation for association replacement.
var ReadWrite = pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

// Serializable guards count-then-write sequences.
var Serializable = pgx.TxOptions{IsoLevel: pgx.Serializable}

// WithTxOptions executes fn within a transaction started with opts.
func WithTxOptions(ctx context.Context, db Beginner, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return MapError("platform/db: begin tx", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return MapError("platform/db: commit tx", err)
	}

	return nil
}
