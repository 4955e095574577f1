package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

// identityLockKey is the advisory lock that serializes identity mutation
// across processes sharing one database.
const identityLockKey int64 = 0x726f73746572

type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, store roster.Store) error) error {
	return runInTx(ctx, m.db, func(tx *sqlx.Tx) error {
		return fn(ctx, roster.Store{
			Players: NewPlayerRepository(tx),
			Rosters: NewRosterRepository(tx),
		})
	})
}

// runInTx runs fn holding the identity lock and commits when fn succeeds.
func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", identityLockKey); err != nil {
		return fmt.Errorf("acquire identity lock: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
