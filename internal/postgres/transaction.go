package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/walaka/walaka/internal/types"
)

// Tx wraps sqlx.Tx. Nested BeginTx calls on the same context open savepoints.
type Tx struct {
	*sqlx.Tx
	depth int
	ID    string
}

// GetTx retrieves a transaction from the context if it exists
func GetTx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(types.CtxDBTransaction).(*Tx)
	return tx, ok
}

func savepoint(depth int) string {
	return fmt.Sprintf("sp_%d", depth)
}

// BeginTx starts a transaction, or a savepoint when ctx already carries one
func (db *DB) BeginTx(ctx context.Context) (context.Context, *Tx, error) {
	if tx, ok := GetTx(ctx); ok {
		tx.depth++
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint(tx.depth)); err != nil {
			tx.depth--
			return ctx, nil, fmt.Errorf("failed to create savepoint: %w", err)
		}
		db.logger.Debugw("created savepoint", "tx_id", tx.ID, "depth", tx.depth)
		return ctx, tx, nil
	}

	inner, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Tx{Tx: inner, ID: types.GenerateUUIDWithPrefix("tx")}
	db.logger.Debugw("started transaction", "tx_id", tx.ID)
	return context.WithValue(ctx, types.CtxDBTransaction, tx), tx, nil
}

// CommitTx commits the innermost level of the transaction in ctx
func (db *DB) CommitTx(ctx context.Context) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return fmt.Errorf("no transaction in context")
	}

	if tx.depth > 0 {
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint(tx.depth)); err != nil {
			return fmt.Errorf("failed to release savepoint: %w", err)
		}
		tx.depth--
		return nil
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	db.logger.Debugw("committed transaction", "tx_id", tx.ID)
	return nil
}

// RollbackTx rolls back the innermost level of the transaction in ctx
func (db *DB) RollbackTx(ctx context.Context) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return fmt.Errorf("no transaction in context")
	}

	if tx.depth > 0 {
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint(tx.depth)); err != nil {
			return fmt.Errorf("failed to rollback to savepoint: %w", err)
		}
		tx.depth--
		return nil
	}

	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	db.logger.Debugw("rolled back transaction", "tx_id", tx.ID)
	return nil
}

// WithTx runs fn inside a transaction, committing on success
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic in transaction", "tx_id", tx.ID, "panic", r)
			_ = db.RollbackTx(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := db.RollbackTx(ctx); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	return db.CommitTx(ctx)
}
