package postgres

import (
	"database/sql"
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
)

const pqUniqueViolation = "23505"

// externalIDConstraints maps the partial unique indexes of players to the
// namespace they guard.
var externalIDConstraints = map[string]player.Namespace{
	"players_razzball_id_key": player.NamespaceRazzball,
	"players_fantrax_id_key":  player.NamespaceFantrax,
	"players_nfbc_id_key":     player.NamespaceNFBC,
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// identityConflict returns a player.ErrIdentityConflict when err is a unique
// violation on an external id index, otherwise nil.
func identityConflict(err error, p player.Player) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
		return nil
	}
	ns, ok := externalIDConstraints[pqErr.Constraint]
	if !ok {
		return nil
	}
	value, _ := p.ExternalIDs.Value(ns)
	return crerr.Wrapf(player.ErrIdentityConflict, "%s id %s is already assigned to another player", ns, value)
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
