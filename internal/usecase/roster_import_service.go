package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	"github.com/riskibarqy/fantasy-roster/internal/platform/id"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
	"github.com/riskibarqy/fantasy-roster/internal/platform/metrics"
)

// RosterParser turns raw export bytes into normalized rows.
type RosterParser interface {
	Parse(content []byte) (roster.ParseResult, error)
}

type ImportRosterInput struct {
	Filename string
	Content  []byte
}

// ImportSummary reports what one upload stored and what it skipped.
type ImportSummary struct {
	Upload         roster.Upload
	Total          int
	Owned          int
	FreeAgents     int
	PlayersCreated int
	Matches        map[ResolveMethod]int
	Skipped        []roster.RowError
}

type RosterImportService struct {
	parser   RosterParser
	tx       roster.TxManager
	resolver *PlayerResolver
	idGen    id.Generator
	metrics  metrics.Recorder
	logger   *logging.Logger
	now      func() time.Time

	// mu serializes identity mutation within this process.
	mu sync.Mutex
}

func NewRosterImportService(
	parser RosterParser,
	tx roster.TxManager,
	resolver *PlayerResolver,
	idGen id.Generator,
	recorder metrics.Recorder,
	logger *logging.Logger,
) *RosterImportService {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop
	}

	return &RosterImportService{
		parser:   parser,
		tx:       tx,
		resolver: resolver,
		idGen:    idGen,
		metrics:  recorder,
		logger:   logger.Named("roster_import"),
		now:      time.Now,
	}
}

// ImportRoster parses one export and stores it as a new upload. Every row is
// resolved to a canonical player inside a single transaction; a fatal error
// leaves no trace of the upload or of players created for it.
func (s *RosterImportService) ImportRoster(ctx context.Context, input ImportRosterInput) (ImportSummary, error) {
	ctx, span := startSpan(ctx, "RosterImportService.ImportRoster")
	defer span.End()

	filename := filepath.Base(strings.TrimSpace(input.Filename))
	if filename == "" || filename == "." {
		return ImportSummary{}, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	if len(input.Content) == 0 {
		return ImportSummary{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	parsed, err := s.parser.Parse(input.Content)
	if err != nil {
		reason := "parse"
		switch {
		case errors.Is(err, roster.ErrUnknownFormat):
			reason = "unknown_format"
		case errors.Is(err, roster.ErrMalformedFile):
			reason = "malformed_file"
		}
		s.metrics.RecordImportFailure(reason)
		s.logger.WarnContext(ctx, "roster file rejected", "filename", filename, "reason", reason, "error", err)
		return ImportSummary{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	uploadID, err := s.idGen.NewID()
	if err != nil {
		return ImportSummary{}, fmt.Errorf("generate upload id: %w", err)
	}

	summary := ImportSummary{
		Upload: roster.Upload{
			ID:         uploadID,
			Dialect:    parsed.Dialect,
			Filename:   filename,
			UploadedAt: s.now().UTC(),
		},
		Matches: make(map[ResolveMethod]int),
		Skipped: append([]roster.RowError(nil), parsed.Errors...),
	}

	s.mu.Lock()
	err = s.tx.WithinTx(ctx, func(ctx context.Context, store roster.Store) error {
		return s.store(ctx, store, parsed.Rows, &summary)
	})
	s.mu.Unlock()
	if err != nil {
		reason := "store"
		if errors.Is(err, player.ErrIdentityConflict) {
			reason = "identity_conflict"
			s.logger.ErrorContext(ctx, "roster import aborted on identity conflict", "upload_id", uploadID, "error", err)
		}
		s.metrics.RecordImportFailure(reason)
		return ImportSummary{}, fmt.Errorf("import roster %s: %w", filename, err)
	}

	for method, n := range summary.Matches {
		for i := 0; i < n; i++ {
			s.metrics.RecordMatch(string(method))
		}
	}
	s.metrics.RecordImport(string(parsed.Dialect), summary.Total, len(summary.Skipped))
	s.logger.InfoContext(ctx, "roster imported",
		"upload_id", uploadID,
		"dialect", parsed.Dialect,
		"filename", filename,
		"entries", summary.Total,
		"free_agents", summary.FreeAgents,
		"players_created", summary.PlayersCreated,
		"skipped", len(summary.Skipped),
	)
	return summary, nil
}

func (s *RosterImportService) store(ctx context.Context, store roster.Store, rows []roster.Row, summary *ImportSummary) error {
	if err := store.Rosters.CreateUpload(ctx, summary.Upload); err != nil {
		return fmt.Errorf("create upload: %w", err)
	}

	// One entry per resolved row, even when two rows share an identity.
	entries := make([]roster.Entry, 0, len(rows))
	var skipped []roster.RowError
	for _, row := range rows {
		res, err := s.resolver.Resolve(ctx, store.Players, row)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				skipped = append(skipped, roster.RowError{Line: row.Line, Reason: err.Error()})
				continue
			}
			return fmt.Errorf("resolve line %d: %w", row.Line, err)
		}

		summary.Matches[res.Method]++
		if res.Created {
			summary.PlayersCreated++
		}
		if row.IsFreeAgent() {
			summary.FreeAgents++
		} else {
			summary.Owned++
		}
		entries = append(entries, roster.Entry{
			UploadID: summary.Upload.ID,
			PlayerID: res.Player.ID,
			Owner:    row.Owner,
			Status:   row.RawStatus,
		})
	}
	summary.Total = len(entries)

	if err := store.Rosters.CreateEntries(ctx, entries); err != nil {
		return fmt.Errorf("create roster entries: %w", err)
	}
	summary.Skipped = append(summary.Skipped, skipped...)
	sort.SliceStable(summary.Skipped, func(i, j int) bool {
		return summary.Skipped[i].Line < summary.Skipped[j].Line
	})
	return nil
}
