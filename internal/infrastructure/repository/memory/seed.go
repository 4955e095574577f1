package memory

import (
	"time"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
)

// SeedPlayers returns a small identity pool for local development, keyed by
// Razzball ids so uploads have something to match against.
func SeedPlayers() []player.Player {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	seed := []struct {
		id         string
		razzballID int64
		name       string
		team       string
		position   string
	}{
		{"seed-judge", 10155, "Aaron Judge", "NYY", "OF"},
		{"seed-ohtani", 19755, "Shohei Ohtani", "LAD", "DH,SP"},
		{"seed-crochet", 22007, "Garrett Crochet", "BOS", "SP"},
		{"seed-witt", 25764, "Bobby Witt Jr.", "KC", "SS"},
		{"seed-skenes", 31838, "Paul Skenes", "PIT", "SP"},
	}

	out := make([]player.Player, 0, len(seed))
	for _, s := range seed {
		razzballID := s.razzballID
		team := s.team
		position := s.position
		out = append(out, player.Player{
			ID:          s.id,
			ExternalIDs: player.ExternalIDs{RazzballID: &razzballID},
			Name:        s.name,
			MLBTeam:     &team,
			Position:    &position,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	return out
}
