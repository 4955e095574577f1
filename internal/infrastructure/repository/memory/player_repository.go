package memory

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
)

type PlayerRepository struct {
	db   *Database
	inTx bool
}

func NewPlayerRepository(db *Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) FindByExternalID(_ context.Context, ns player.Namespace, value string) (player.Player, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.players {
		if got, ok := p.ExternalIDs.Value(ns); ok && got == value {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) ListByFilter(_ context.Context, filter player.Filter) ([]player.Player, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]player.Player, 0, len(r.db.players))
	for _, p := range r.db.players {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []string) ([]player.Player, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		idx, ok := r.db.byID[id]
		if !ok {
			continue
		}
		out = append(out, r.db.players[idx])
	}
	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate player: %w", err)
	}

	defer r.db.lockWrite(r.inTx)()

	if _, exists := r.db.byID[p.ID]; exists {
		return fmt.Errorf("player %s already exists", p.ID)
	}
	if err := r.checkUniqueLocked(p); err != nil {
		return err
	}
	r.db.byID[p.ID] = len(r.db.players)
	r.db.players = append(r.db.players, p)
	return nil
}

func (r *PlayerRepository) Update(_ context.Context, p player.Player) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate player: %w", err)
	}

	defer r.db.lockWrite(r.inTx)()

	idx, ok := r.db.byID[p.ID]
	if !ok {
		return fmt.Errorf("update player %s: not found", p.ID)
	}
	current := r.db.players[idx]
	for _, ns := range player.Namespaces {
		before, had := current.ExternalIDs.Value(ns)
		after, has := p.ExternalIDs.Value(ns)
		if had && (!has || after != before) {
			return crerr.Wrapf(player.ErrIdentityConflict, "%s id of player %s is immutable once set", ns, p.ID)
		}
	}
	if err := r.checkUniqueLocked(p); err != nil {
		return err
	}
	r.db.players[idx] = p
	return nil
}

func (r *PlayerRepository) checkUniqueLocked(p player.Player) error {
	for _, ns := range player.Namespaces {
		value, ok := p.ExternalIDs.Value(ns)
		if !ok {
			continue
		}
		for _, other := range r.db.players {
			if other.ID == p.ID {
				continue
			}
			if got, has := other.ExternalIDs.Value(ns); has && got == value {
				return player.NewIdentityConflict(ns, value, other.ID)
			}
		}
	}
	return nil
}
