package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-roster/internal/domain/projection"
	"github.com/riskibarqy/fantasy-roster/internal/platform/cache"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
	"github.com/riskibarqy/fantasy-roster/internal/platform/metrics"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultProjectionWorkers = 8
	defaultTopLimit          = 10
	maxTopLimit              = 200
)

// ProjectionFetcher downloads one full projection table from the provider.
type ProjectionFetcher interface {
	FetchProjections(ctx context.Context, horizon projection.Horizon) (*projection.Table, error)
}

type ProjectionServiceConfig struct {
	CacheTTL time.Duration
	Workers  int
}

// EnrichedPlayer is one looked-up name. Projection is nil when the name is
// not in the table or no table could be fetched.
type EnrichedPlayer struct {
	Name           string
	HasProjections bool
	Projection     *projection.Summary
	Record         projection.Record
}

type ProjectionService struct {
	fetcher ProjectionFetcher
	cache   *cache.Store
	workers int
	metrics metrics.Recorder
	logger  *logging.Logger
}

func NewProjectionService(fetcher ProjectionFetcher, cfg ProjectionServiceConfig, recorder metrics.Recorder, logger *logging.Logger) *ProjectionService {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultProjectionWorkers
	}

	return &ProjectionService{
		fetcher: fetcher,
		cache:   cache.NewStore(cfg.CacheTTL),
		workers: workers,
		metrics: recorder,
		logger:  logger.Named("projections"),
	}
}

// FetchProjections returns the cached table for horizon, fetching it once
// for all concurrent callers when missing or expired. When the provider
// fails, the last good table is served instead.
func (s *ProjectionService) FetchProjections(ctx context.Context, horizon projection.Horizon) (*projection.Table, error) {
	ctx, span := startSpan(ctx, "ProjectionService.FetchProjections")
	defer span.End()

	h, err := projection.ParseHorizon(string(horizon))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	key := string(h)

	if cached, ok := s.cache.Get(ctx, key); ok {
		s.metrics.RecordProjectionCache(key, "hit")
		return cached.(*projection.Table), nil
	}

	loaded, err := s.cache.GetOrLoad(ctx, key, s.loader(ctx, h))
	if err == nil {
		s.metrics.RecordProjectionCache(key, "miss")
		return loaded.(*projection.Table), nil
	}

	if stale, storedAt, ok := s.cache.GetStale(ctx, key); ok {
		s.metrics.RecordProjectionCache(key, "stale")
		s.logger.WarnContext(ctx, "serving stale projections after fetch failure",
			"horizon", key,
			"cached_at", storedAt,
			"error", err,
		)
		return stale.(*projection.Table), nil
	}

	s.metrics.RecordProjectionCache(key, "unavailable")
	return nil, fmt.Errorf("%w: %s projections: %w", ErrProjectionsUnavailable, key, err)
}

// RefreshProjections re-fetches horizon even when a fresh table is cached.
// A failed refresh keeps the previous table.
func (s *ProjectionService) RefreshProjections(ctx context.Context, horizon projection.Horizon) (*projection.Table, error) {
	ctx, span := startSpan(ctx, "ProjectionService.RefreshProjections")
	defer span.End()

	h, err := projection.ParseHorizon(string(horizon))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	loaded, err := s.cache.Reload(ctx, string(h), s.loader(ctx, h))
	if err != nil {
		s.logger.WarnContext(ctx, "projection refresh failed", "horizon", h, "error", err)
		return nil, fmt.Errorf("%w: refresh %s projections: %w", ErrDependencyUnavailable, h, err)
	}

	table := loaded.(*projection.Table)
	s.logger.InfoContext(ctx, "projections refreshed", "horizon", h, "rows", table.Len())
	return table, nil
}

// loader fetches horizon for every caller sharing the in-flight load, so it
// keeps the first caller's values but not its cancellation. The client
// timeout bounds the call.
func (s *ProjectionService) loader(ctx context.Context, h projection.Horizon) func(context.Context) (any, error) {
	detached := context.WithoutCancel(ctx)
	return func(context.Context) (any, error) {
		return s.fetcher.FetchProjections(detached, h)
	}
}

// LookupProjection finds the projection row for one player name.
func (s *ProjectionService) LookupProjection(ctx context.Context, horizon projection.Horizon, name string) (projection.Record, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	table, err := s.FetchProjections(ctx, horizon)
	if err != nil {
		return nil, false, err
	}
	record, ok := projection.Lookup(table, name)
	return record, ok, nil
}

// TopProjections ranks table rows by stat, optionally narrowed to a position.
func (s *ProjectionService) TopProjections(ctx context.Context, horizon projection.Horizon, position, stat string, limit int) ([]projection.Record, error) {
	ctx, span := startSpan(ctx, "ProjectionService.TopProjections")
	defer span.End()

	stat = strings.TrimSpace(stat)
	if stat == "" {
		stat = "HR"
	}
	limit = normalizeTopLimit(limit)

	table, err := s.FetchProjections(ctx, horizon)
	if err != nil {
		return nil, err
	}

	records, err := projection.TopBy(table, strings.TrimSpace(position), stat, limit)
	if err != nil {
		if errors.Is(err, projection.ErrUnknownStat) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("rank projections: %w", err)
	}
	return records, nil
}

// EnrichPlayers looks every name up in one horizon. A missing table degrades
// every result to HasProjections=false instead of failing.
func (s *ProjectionService) EnrichPlayers(ctx context.Context, horizon projection.Horizon, names []string) ([]EnrichedPlayer, error) {
	ctx, span := startSpan(ctx, "ProjectionService.EnrichPlayers")
	defer span.End()

	out := make([]EnrichedPlayer, len(names))
	for i, name := range names {
		out[i] = EnrichedPlayer{Name: name}
	}
	if len(names) == 0 {
		return out, nil
	}

	table, err := s.FetchProjections(ctx, horizon)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "enrichment without projections", "horizon", horizon, "players", len(names), "error", err)
		return out, nil
	}

	workerCount := min(s.workers, len(names))
	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create enrichment pool: %w", err)
	}
	defer workers.Release()

	var wg sync.WaitGroup
	for i := range names {
		i := i
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			record, ok := projection.Lookup(table, names[i])
			if !ok {
				return
			}
			summary := projection.Summarize(record)
			out[i].HasProjections = true
			out[i].Projection = &summary
			out[i].Record = record
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit enrichment task: %w", err)
		}
	}
	wg.Wait()

	return out, nil
}

// Warmup loads every horizon concurrently. Failures are logged and joined;
// horizons that loaded stay cached.
func (s *ProjectionService) Warmup(ctx context.Context) error {
	p := pool.New().WithMaxGoroutines(len(projection.Horizons)).WithErrors().WithContext(ctx)
	for _, h := range projection.Horizons {
		h := h
		p.Go(func(ctx context.Context) error {
			table, err := s.FetchProjections(ctx, h)
			if err != nil {
				s.logger.WarnContext(ctx, "projection warmup failed", "horizon", h, "error", err)
				return fmt.Errorf("warm %s: %w", h, err)
			}
			s.logger.InfoContext(ctx, "projection warmup done", "horizon", h, "rows", table.Len())
			return nil
		})
	}
	return p.Wait()
}

func normalizeTopLimit(limit int) int {
	if limit <= 0 {
		return defaultTopLimit
	}
	return min(limit, maxTopLimit)
}
