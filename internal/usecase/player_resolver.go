package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	"github.com/riskibarqy/fantasy-roster/internal/platform/fuzzy"
	"github.com/riskibarqy/fantasy-roster/internal/platform/id"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
)

// DefaultMatchThreshold is the minimum fuzzy score (0-100) for a name match.
const DefaultMatchThreshold = 85

type ResolveMethod string

const (
	ResolveMethodFantraxID ResolveMethod = "fantrax_id"
	ResolveMethodNFBCID    ResolveMethod = "nfbc_id"
	ResolveMethodFuzzyName ResolveMethod = "fuzzy_name"
	ResolveMethodCreated   ResolveMethod = "created"
)

type Resolution struct {
	Player     player.Player
	Method     ResolveMethod
	Created    bool
	Score      int
	Backfilled []player.Namespace
}

// PlayerResolver maps roster rows onto canonical player identities. It holds
// no state across calls; the repository passed to Resolve decides the
// transaction it runs in.
type PlayerResolver struct {
	threshold int
	ids       id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewPlayerResolver(ids id.Generator, threshold int, logger *logging.Logger) *PlayerResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultMatchThreshold
	}
	return &PlayerResolver{
		threshold: threshold,
		ids:       ids,
		logger:    logger.Named("resolver"),
		now:       time.Now,
	}
}

// Resolve returns the identity for row: by Fantrax id, then NFBC id, then
// fuzzy name, else a newly created player. Matched identities gain any ids
// the row carries that they were missing.
func (r *PlayerResolver) Resolve(ctx context.Context, players player.Repository, row roster.Row) (Resolution, error) {
	if strings.TrimSpace(row.Name) == "" {
		return Resolution{}, fmt.Errorf("%w: roster row line %d has no player name", ErrInvalidInput, row.Line)
	}

	rowIDs := rowExternalIDs(row)

	for _, ns := range []player.Namespace{player.NamespaceFantrax, player.NamespaceNFBC} {
		value, ok := rowIDs.Value(ns)
		if !ok {
			continue
		}
		found, exists, err := players.FindByExternalID(ctx, ns, value)
		if err != nil {
			return Resolution{}, fmt.Errorf("find player by %s id: %w", ns, err)
		}
		if !exists {
			continue
		}
		method := ResolveMethodFantraxID
		if ns == player.NamespaceNFBC {
			method = ResolveMethodNFBCID
		}
		return r.backfill(ctx, players, found, rowIDs, method, 100)
	}

	candidate, score, ok, err := r.bestNameMatch(ctx, players, row, rowIDs)
	if err != nil {
		return Resolution{}, err
	}
	if ok {
		return r.backfill(ctx, players, candidate, rowIDs, ResolveMethodFuzzyName, score)
	}

	return r.create(ctx, players, row, rowIDs)
}

// bestNameMatch scores the team/position-filtered pool, falling back to every
// player when the filtered pool is empty. The first candidate with the top
// score wins.
func (r *PlayerResolver) bestNameMatch(ctx context.Context, players player.Repository, row roster.Row, rowIDs player.ExternalIDs) (player.Player, int, bool, error) {
	filter := player.Filter{Team: row.MLBTeam, Position: row.Position}
	candidates, err := players.ListByFilter(ctx, filter)
	if err != nil {
		return player.Player{}, 0, false, fmt.Errorf("list match candidates: %w", err)
	}
	if len(candidates) == 0 && !filter.IsEmpty() {
		candidates, err = players.ListByFilter(ctx, player.Filter{})
		if err != nil {
			return player.Player{}, 0, false, fmt.Errorf("list all match candidates: %w", err)
		}
	}

	var best player.Player
	bestScore := 0
	for _, candidate := range candidates {
		if !teamInitialsAgree(row.MLBTeam, candidate.MLBTeam) {
			continue
		}
		if conflictingIDs(rowIDs, candidate.ExternalIDs) {
			continue
		}
		if score := fuzzy.Score(row.Name, candidate.Name); score > bestScore {
			best, bestScore = candidate, score
		}
	}

	if bestScore < r.threshold {
		return player.Player{}, bestScore, false, nil
	}
	return best, bestScore, true, nil
}

// teamInitialsAgree rejects pairs whose team codes start with different
// letters when both sides carry a team.
func teamInitialsAgree(rowTeam, candidateTeam *string) bool {
	if rowTeam == nil || candidateTeam == nil {
		return true
	}
	a, b := strings.TrimSpace(*rowTeam), strings.TrimSpace(*candidateTeam)
	if a == "" || b == "" {
		return true
	}
	return strings.EqualFold(a[:1], b[:1])
}

// conflictingIDs reports a candidate that already holds a different id in a
// namespace where the row carries one; they are different players there.
func conflictingIDs(rowIDs, candidateIDs player.ExternalIDs) bool {
	for _, ns := range player.Namespaces {
		rowValue, rowOK := rowIDs.Value(ns)
		candValue, candOK := candidateIDs.Value(ns)
		if rowOK && candOK && rowValue != candValue {
			return true
		}
	}
	return false
}

func (r *PlayerResolver) backfill(ctx context.Context, players player.Repository, matched player.Player, rowIDs player.ExternalIDs, method ResolveMethod, score int) (Resolution, error) {
	res := Resolution{Player: matched, Method: method, Score: score}

	updated := matched
	for _, ns := range player.Namespaces {
		value, ok := rowIDs.Value(ns)
		if !ok {
			continue
		}
		if _, has := updated.ExternalIDs.Value(ns); has {
			continue
		}

		owner, taken, err := players.FindByExternalID(ctx, ns, value)
		if err != nil {
			return Resolution{}, fmt.Errorf("check %s id owner: %w", ns, err)
		}
		if taken && owner.ID != matched.ID {
			r.logger.WarnContext(ctx, "skip external id backfill, id belongs to another player",
				"namespace", ns,
				"external_id", value,
				"player_id", matched.ID,
				"owner_player_id", owner.ID,
				"method", method,
			)
			continue
		}
		if err := updated.ExternalIDs.Set(ns, value); err != nil {
			return Resolution{}, fmt.Errorf("set %s id: %w", ns, err)
		}
		res.Backfilled = append(res.Backfilled, ns)
	}

	if len(res.Backfilled) == 0 {
		return res, nil
	}

	updated.UpdatedAt = r.now().UTC()
	if err := players.Update(ctx, updated); err != nil {
		if errors.Is(err, player.ErrIdentityConflict) {
			r.logger.ErrorContext(ctx, "identity conflict on backfill", "player_id", matched.ID, "error", err)
		}
		return Resolution{}, fmt.Errorf("backfill player ids: %w", err)
	}
	res.Player = updated
	return res, nil
}

func (r *PlayerResolver) create(ctx context.Context, players player.Repository, row roster.Row, rowIDs player.ExternalIDs) (Resolution, error) {
	playerID, err := r.ids.NewID()
	if err != nil {
		return Resolution{}, fmt.Errorf("generate player id: %w", err)
	}

	now := r.now().UTC()
	created := player.Player{
		ID:          playerID,
		ExternalIDs: rowIDs,
		Name:        strings.TrimSpace(row.Name),
		MLBTeam:     row.MLBTeam,
		Position:    row.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := created.Validate(); err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := players.Create(ctx, created); err != nil {
		if errors.Is(err, player.ErrIdentityConflict) {
			r.logger.ErrorContext(ctx, "identity conflict on create", "name", created.Name, "error", err)
		}
		return Resolution{}, fmt.Errorf("create player: %w", err)
	}
	return Resolution{Player: created, Method: ResolveMethodCreated, Created: true}, nil
}

func rowExternalIDs(row roster.Row) player.ExternalIDs {
	var ids player.ExternalIDs
	if row.ExternalIDs.FantraxID != nil {
		v := *row.ExternalIDs.FantraxID
		ids.FantraxID = &v
	}
	if row.ExternalIDs.NFBCID != nil {
		v := *row.ExternalIDs.NFBCID
		ids.NFBCID = &v
	}
	return ids
}
