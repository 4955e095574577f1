package rostercsv

import (
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

// NFBC exports name the player column either way.
const nfbcNameColumn = "Players|Player"

func parseNFBCRow(cols columns, fields []string) (roster.Row, error) {
	rawID := strings.TrimSpace(cols.get(fields, "id"))
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return roster.Row{}, crerr.Newf("invalid nfbc id %q", rawID)
	}

	name := strings.TrimSpace(cols.get(fields, nfbcNameColumn))
	if name == "" {
		return roster.Row{}, errMissingName
	}

	return roster.Row{
		ExternalIDs: roster.ExternalIDs{NFBCID: &id},
		Name:        name,
		MLBTeam:     optional(cols.get(fields, "Team")),
		Position:    optional(cols.get(fields, "Pos")),
		Owner:       ownerOrFreeAgent(cols.get(fields, "Owner")),
	}, nil
}
