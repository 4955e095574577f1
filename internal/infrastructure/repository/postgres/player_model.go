package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
)

type playerTableModel struct {
	ID         string         `db:"id"`
	RazzballID sql.NullInt64  `db:"razzball_id"`
	FantraxID  sql.NullString `db:"fantrax_id"`
	NFBCID     sql.NullInt64  `db:"nfbc_id"`
	Name       string         `db:"name"`
	MLBTeam    sql.NullString `db:"mlb_team"`
	Position   sql.NullString `db:"position"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func playerModelFromDomain(p player.Player) playerTableModel {
	return playerTableModel{
		ID:         p.ID,
		RazzballID: nullInt64(p.ExternalIDs.RazzballID),
		FantraxID:  nullString(p.ExternalIDs.FantraxID),
		NFBCID:     nullInt64(p.ExternalIDs.NFBCID),
		Name:       p.Name,
		MLBTeam:    nullString(p.MLBTeam),
		Position:   nullString(p.Position),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID: m.ID,
		ExternalIDs: player.ExternalIDs{
			RazzballID: int64Ptr(m.RazzballID),
			FantraxID:  stringPtr(m.FantraxID),
			NFBCID:     int64Ptr(m.NFBCID),
		},
		Name:      m.Name,
		MLBTeam:   stringPtr(m.MLBTeam),
		Position:  stringPtr(m.Position),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

var playerSelectColumns = []string{
	"id",
	"razzball_id",
	"fantrax_id",
	"nfbc_id",
	"name",
	"mlb_team",
	"position",
	"created_at",
	"updated_at",
}

func namespaceColumn(ns player.Namespace) (string, bool) {
	switch ns {
	case player.NamespaceRazzball:
		return "razzball_id", true
	case player.NamespaceFantrax:
		return "fantrax_id", true
	case player.NamespaceNFBC:
		return "nfbc_id", true
	default:
		return "", false
	}
}
