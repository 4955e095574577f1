package rostercsv

import (
	"strings"

	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

// Statuses that mean nobody rosters the player.
var fantraxFreeStatuses = map[string]struct{}{"-": {}, "": {}, "FA": {}}

func parseFantraxRow(cols columns, fields []string) (roster.Row, error) {
	name := strings.TrimSpace(cols.get(fields, "Player"))
	if name == "" {
		return roster.Row{}, errMissingName
	}

	row := roster.Row{
		Name:     name,
		MLBTeam:  optional(cols.get(fields, "Team")),
		Position: optional(cols.get(fields, "Position")),
		Owner:    fantraxOwner(cols.get(fields, "Status")),
	}
	if id := cols.get(fields, "ID"); strings.TrimSpace(id) != "" {
		row.ExternalIDs.FantraxID = &id
	}
	if status := cols.get(fields, "Status"); status != "" {
		row.RawStatus = &status
	}
	return row, nil
}

func fantraxOwner(status string) string {
	trimmed := strings.TrimSpace(status)
	if _, free := fantraxFreeStatuses[trimmed]; free {
		return roster.FreeAgent
	}
	return trimmed
}
