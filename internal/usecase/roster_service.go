package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/projection"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
)

// ProjectionReader is the projection surface roster reads depend on.
type ProjectionReader interface {
	EnrichPlayers(ctx context.Context, horizon projection.Horizon, names []string) ([]EnrichedPlayer, error)
	TopProjections(ctx context.Context, horizon projection.Horizon, position, stat string, limit int) ([]projection.Record, error)
}

type ListRosterInput struct {
	UploadID string
	Owner    string
	// Horizon enables projection enrichment when set.
	Horizon string
}

type RosterEntryView struct {
	Player         player.Player
	Owner          string
	Status         *string
	HasProjections bool
	Projection     *projection.Summary
}

type RosterView struct {
	Upload  roster.Upload
	Owner   string
	Horizon projection.Horizon
	Entries []RosterEntryView
}

type TopFreeAgentsInput struct {
	UploadID string
	Horizon  string
	Position string
	Stat     string
	Limit    int
}

type RosterService struct {
	rosters     roster.Repository
	players     player.Repository
	projections ProjectionReader
	logger      *logging.Logger
}

func NewRosterService(rosters roster.Repository, players player.Repository, projections ProjectionReader, logger *logging.Logger) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{
		rosters:     rosters,
		players:     players,
		projections: projections,
		logger:      logger.Named("roster"),
	}
}

func (s *RosterService) GetUpload(ctx context.Context, uploadID string) (roster.Upload, error) {
	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return roster.Upload{}, fmt.Errorf("%w: upload id is required", ErrInvalidInput)
	}

	upload, exists, err := s.rosters.GetUpload(ctx, uploadID)
	if err != nil {
		return roster.Upload{}, fmt.Errorf("get upload: %w", err)
	}
	if !exists {
		return roster.Upload{}, fmt.Errorf("%w: upload=%s", ErrNotFound, uploadID)
	}
	return upload, nil
}

// DeleteUpload removes the upload and every roster entry it owns. Players
// resolved for it stay.
func (s *RosterService) DeleteUpload(ctx context.Context, uploadID string) error {
	ctx, span := startSpan(ctx, "RosterService.DeleteUpload")
	defer span.End()

	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return fmt.Errorf("%w: upload id is required", ErrInvalidInput)
	}

	deleted, err := s.rosters.DeleteUpload(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: upload=%s", ErrNotFound, uploadID)
	}
	s.logger.InfoContext(ctx, "upload deleted", "upload_id", uploadID)
	return nil
}

func (s *RosterService) ListRoster(ctx context.Context, input ListRosterInput) (RosterView, error) {
	ctx, span := startSpan(ctx, "RosterService.ListRoster")
	defer span.End()

	var horizon projection.Horizon
	if raw := strings.TrimSpace(input.Horizon); raw != "" {
		h, err := projection.ParseHorizon(raw)
		if err != nil {
			return RosterView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		horizon = h
	}

	upload, err := s.GetUpload(ctx, input.UploadID)
	if err != nil {
		return RosterView{}, err
	}

	owner := strings.TrimSpace(input.Owner)
	entries, err := s.rosters.ListEntries(ctx, upload.ID, roster.EntryFilter{Owner: owner})
	if err != nil {
		return RosterView{}, fmt.Errorf("list roster entries: %w", err)
	}

	playerIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		playerIDs = append(playerIDs, e.PlayerID)
	}
	players, err := s.players.GetByIDs(ctx, playerIDs)
	if err != nil {
		return RosterView{}, fmt.Errorf("get roster players: %w", err)
	}
	playerByID := make(map[string]player.Player, len(players))
	for _, p := range players {
		playerByID[p.ID] = p
	}

	view := RosterView{
		Upload:  upload,
		Owner:   owner,
		Horizon: horizon,
		Entries: make([]RosterEntryView, 0, len(entries)),
	}
	for _, e := range entries {
		p, ok := playerByID[e.PlayerID]
		if !ok {
			s.logger.WarnContext(ctx, "roster entry without player", "upload_id", upload.ID, "player_id", e.PlayerID)
			continue
		}
		view.Entries = append(view.Entries, RosterEntryView{Player: p, Owner: e.Owner, Status: e.Status})
	}

	if horizon == "" || len(view.Entries) == 0 {
		return view, nil
	}

	names := make([]string, len(view.Entries))
	for i, e := range view.Entries {
		names[i] = e.Player.Name
	}
	enriched, err := s.projections.EnrichPlayers(ctx, horizon, names)
	if err != nil {
		return RosterView{}, fmt.Errorf("enrich roster: %w", err)
	}
	for i := range view.Entries {
		if i >= len(enriched) {
			break
		}
		view.Entries[i].HasProjections = enriched[i].HasProjections
		view.Entries[i].Projection = enriched[i].Projection
	}
	return view, nil
}

func (s *RosterService) ListFreeAgents(ctx context.Context, uploadID, horizon string) (RosterView, error) {
	return s.ListRoster(ctx, ListRosterInput{UploadID: uploadID, Owner: roster.FreeAgent, Horizon: horizon})
}

// TopFreeAgents ranks projection rows by stat. With an upload, players owned
// by a team in that upload are left out.
func (s *RosterService) TopFreeAgents(ctx context.Context, input TopFreeAgentsInput) ([]projection.Record, error) {
	ctx, span := startSpan(ctx, "RosterService.TopFreeAgents")
	defer span.End()

	horizon, err := projection.ParseHorizon(strings.TrimSpace(input.Horizon))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	limit := normalizeTopLimit(input.Limit)

	if strings.TrimSpace(input.UploadID) == "" {
		return s.projections.TopProjections(ctx, horizon, input.Position, input.Stat, limit)
	}

	owned, err := s.ownedNames(ctx, input.UploadID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.projections.TopProjections(ctx, horizon, input.Position, input.Stat, maxTopLimit)
	if err != nil {
		return nil, err
	}
	out := make([]projection.Record, 0, limit)
	for _, rec := range ranked {
		if name, ok := projection.RecordName(rec); ok {
			if _, taken := owned[name]; taken {
				continue
			}
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *RosterService) ownedNames(ctx context.Context, uploadID string) (map[string]struct{}, error) {
	upload, err := s.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	entries, err := s.rosters.ListEntries(ctx, upload.ID, roster.EntryFilter{})
	if err != nil {
		return nil, fmt.Errorf("list roster entries: %w", err)
	}

	playerIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Owner != roster.FreeAgent {
			playerIDs = append(playerIDs, e.PlayerID)
		}
	}
	players, err := s.players.GetByIDs(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("get owned players: %w", err)
	}

	names := make(map[string]struct{}, len(players))
	for _, p := range players {
		names[projection.CleanName(p.Name)] = struct{}{}
	}
	return names, nil
}
