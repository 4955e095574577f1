package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/projection"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	"github.com/riskibarqy/fantasy-roster/internal/usecase"
)

type uploadRosterRequest struct {
	Filename  string `json:"filename" validate:"required,max=255"`
	Extension string `json:"extension" validate:"eq=.csv"`
	Size      int64  `json:"size" validate:"gt=0"`
}

type enrichPlayersRequest struct {
	Names []string `json:"names" validate:"required,min=1,max=200,dive,required,max=200"`
}

type uploadDTO struct {
	ID         string    `json:"id"`
	Dialect    string    `json:"dialect"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type rowErrorDTO struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type importSummaryDTO struct {
	Upload         uploadDTO      `json:"upload"`
	Total          int            `json:"total"`
	Owned          int            `json:"owned"`
	FreeAgents     int            `json:"free_agents"`
	PlayersCreated int            `json:"players_created"`
	Matches        map[string]int `json:"matches"`
	Skipped        []rowErrorDTO  `json:"skipped"`
}

type playerDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	MLBTeam    *string `json:"mlb_team,omitempty"`
	Position   *string `json:"position,omitempty"`
	RazzballID *int64  `json:"razzball_id,omitempty"`
	FantraxID  *string `json:"fantrax_id,omitempty"`
	NFBCID     *int64  `json:"nfbc_id,omitempty"`
}

type rosterEntryDTO struct {
	Player         playerDTO           `json:"player"`
	Owner          string              `json:"owner"`
	Status         *string             `json:"status,omitempty"`
	HasProjections bool                `json:"has_projections"`
	Projection     *projection.Summary `json:"projection,omitempty"`
}

type rosterDTO struct {
	Upload  uploadDTO        `json:"upload"`
	Owner   string           `json:"owner,omitempty"`
	Horizon string           `json:"horizon,omitempty"`
	Count   int              `json:"count"`
	Entries []rosterEntryDTO `json:"entries"`
}

type projectionLookupDTO struct {
	Horizon string             `json:"horizon"`
	Query   string             `json:"query"`
	Name    string             `json:"name,omitempty"`
	Summary projection.Summary `json:"summary"`
	Record  projection.Record  `json:"record"`
}

type projectionTopDTO struct {
	Horizon  string              `json:"horizon"`
	Position string              `json:"position,omitempty"`
	Stat     string              `json:"stat"`
	UploadID string              `json:"upload_id,omitempty"`
	Items    []projection.Record `json:"items"`
}

type enrichedPlayerDTO struct {
	Name           string              `json:"name"`
	HasProjections bool                `json:"has_projections"`
	Projection     *projection.Summary `json:"projection,omitempty"`
}

type projectionRefreshDTO struct {
	Horizon   string    `json:"horizon"`
	Rows      int       `json:"rows"`
	Columns   []string  `json:"columns"`
	FetchedAt time.Time `json:"fetched_at"`
}

func uploadToDTO(u roster.Upload) uploadDTO {
	return uploadDTO{
		ID:         u.ID,
		Dialect:    string(u.Dialect),
		Filename:   u.Filename,
		UploadedAt: u.UploadedAt,
	}
}

func importSummaryToDTO(s usecase.ImportSummary) importSummaryDTO {
	matches := make(map[string]int, len(s.Matches))
	for method, count := range s.Matches {
		matches[string(method)] = count
	}
	skipped := make([]rowErrorDTO, 0, len(s.Skipped))
	for _, rowErr := range s.Skipped {
		skipped = append(skipped, rowErrorDTO{Line: rowErr.Line, Reason: rowErr.Reason})
	}

	return importSummaryDTO{
		Upload:         uploadToDTO(s.Upload),
		Total:          s.Total,
		Owned:          s.Owned,
		FreeAgents:     s.FreeAgents,
		PlayersCreated: s.PlayersCreated,
		Matches:        matches,
		Skipped:        skipped,
	}
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:         p.ID,
		Name:       p.Name,
		MLBTeam:    p.MLBTeam,
		Position:   p.Position,
		RazzballID: p.ExternalIDs.RazzballID,
		FantraxID:  p.ExternalIDs.FantraxID,
		NFBCID:     p.ExternalIDs.NFBCID,
	}
}

func rosterToDTO(v usecase.RosterView) rosterDTO {
	entries := make([]rosterEntryDTO, 0, len(v.Entries))
	for _, e := range v.Entries {
		entries = append(entries, rosterEntryDTO{
			Player:         playerToDTO(e.Player),
			Owner:          e.Owner,
			Status:         e.Status,
			HasProjections: e.HasProjections,
			Projection:     e.Projection,
		})
	}

	return rosterDTO{
		Upload:  uploadToDTO(v.Upload),
		Owner:   v.Owner,
		Horizon: string(v.Horizon),
		Count:   len(entries),
		Entries: entries,
	}
}

func enrichedPlayersToDTO(items []usecase.EnrichedPlayer) []enrichedPlayerDTO {
	out := make([]enrichedPlayerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, enrichedPlayerDTO{
			Name:           item.Name,
			HasProjections: item.HasProjections,
			Projection:     item.Projection,
		})
	}
	return out
}
