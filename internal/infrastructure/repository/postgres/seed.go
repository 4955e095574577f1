package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-roster/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/fantasy-roster/internal/platform/querybuilder"
)

// BootstrapSeed loads the development identity pool in one statement. It is
// a no-op once any player exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	return runInTx(ctx, db, func(tx *sqlx.Tx) error {
		var populated bool
		if err := tx.GetContext(ctx, &populated, `SELECT EXISTS (SELECT 1 FROM players)`); err != nil {
			return fmt.Errorf("check players table: %w", err)
		}
		if populated {
			return nil
		}

		seed := memory.SeedPlayers()
		rows := make([]playerTableModel, 0, len(seed))
		for _, p := range seed {
			rows = append(rows, playerModelFromDomain(p))
		}
		query, args, err := qb.InsertModels("players", rows)
		if err != nil {
			return fmt.Errorf("build seed insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %d seed players: %w", len(rows), err)
		}
		return nil
	})
}
