package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// TxRunner runs a function inside a database transaction. Services depend on
// this interface so unit tests can substitute a runner that skips the real
// transaction machinery.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// SQLTxRunner is the production TxRunner backed by *sql.DB.
type SQLTxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner for the given database.
func NewTxRunner(database *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{db: database}
}

// RunInTx begins a transaction, runs fn and commits. Any error from fn (or a
// panic) rolls the whole transaction back.
func (r *SQLTxRunner) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("Warning: rollback after panic failed: %v", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Warning: failed to rollback transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var _ TxRunner = (*SQLTxRunner)(nil)
