package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	qb "github.com/riskibarqy/fantasy-roster/internal/platform/querybuilder"
)

// PlayerRepository runs against a pool or a transaction.
type PlayerRepository struct {
	db sqlx.ExtContext
}

func NewPlayerRepository(db sqlx.ExtContext) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) FindByExternalID(ctx context.Context, ns player.Namespace, value string) (player.Player, bool, error) {
	column, ok := namespaceColumn(ns)
	if !ok {
		return player.Player{}, false, fmt.Errorf("unknown id namespace: %s", ns)
	}

	var arg any = value
	if ns != player.NamespaceFantrax {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return player.Player{}, false, nil
		}
		arg = n
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq(column, arg)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by %s id query: %w", ns, err)
	}

	var row playerTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by %s id: %w", ns, err)
	}
	return row.toDomain(), true, nil
}

func (r *PlayerRepository) ListByFilter(ctx context.Context, filter player.Filter) ([]player.Player, error) {
	conditions := make([]qb.Condition, 0, 2)
	if filter.Team != nil {
		conditions = append(conditions, qb.Eq("mlb_team", *filter.Team))
	}
	if filter.Position != nil {
		conditions = append(conditions, qb.ContainsFold("position", *filter.Position))
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(conditions...).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by filter query: %w", err)
	}

	var rows []playerTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by filter: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.In("id", stringSliceToAny(playerIDs))).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by ids: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate player: %w", err)
	}

	query, args, err := qb.InsertModel("players", playerModelFromDomain(p))
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if conflict := identityConflict(err, p); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// Update writes descriptive fields and fills external id slots that are
// still null. Ids already stored are kept.
func (r *PlayerRepository) Update(ctx context.Context, p player.Player) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate player: %w", err)
	}

	m := playerModelFromDomain(p)
	query, args, err := qb.Update("players").
		SetExpr("razzball_id", "COALESCE(razzball_id, ?)", m.RazzballID).
		SetExpr("fantrax_id", "COALESCE(fantrax_id, ?)", m.FantraxID).
		SetExpr("nfbc_id", "COALESCE(nfbc_id, ?)", m.NFBCID).
		Set("name", m.Name).
		Set("mlb_team", m.MLBTeam).
		Set("position", m.Position).
		Set("updated_at", m.UpdatedAt).
		Where(qb.Eq("id", p.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if conflict := identityConflict(err, p); conflict != nil {
			return conflict
		}
		return fmt.Errorf("update player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated player rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update player %s: not found", p.ID)
	}
	return nil
}
