package rostercsv

import (
	"regexp"
	"strings"

	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

// Trailing position tag in "Shohei Ohtani P,U".
var cbsPositionTag = regexp.MustCompile(`\s+[A-Z,]+\s*$`)

func parseCBSRow(cols columns, fields []string) (roster.Row, error) {
	name, team := splitCBSPlayer(cols.get(fields, "Player"))
	if name == "" {
		return roster.Row{}, errMissingName
	}
	return roster.Row{
		Name:    name,
		MLBTeam: team,
		Owner:   ownerOrFreeAgent(cols.get(fields, "Avail")),
	}, nil
}

// splitCBSPlayer splits "<Name> <POS[,POS]> | <TEAM>" on the first "|".
// Without a "|" the whole cell is the name.
func splitCBSPlayer(cell string) (string, *string) {
	namePos, team, found := strings.Cut(cell, "|")
	if !found {
		return strings.TrimSpace(cell), nil
	}
	name := strings.TrimSpace(cbsPositionTag.ReplaceAllString(namePos, ""))
	return name, optional(team)
}
