package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/riskibarqy/fantasy-roster/external/razzball"
	"github.com/riskibarqy/fantasy-roster/internal/config"
	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	"github.com/riskibarqy/fantasy-roster/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-roster/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-roster/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-roster/internal/infrastructure/rostercsv"
	"github.com/riskibarqy/fantasy-roster/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/fantasy-roster/internal/platform/cache"
	"github.com/riskibarqy/fantasy-roster/internal/platform/id"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
	"github.com/riskibarqy/fantasy-roster/internal/platform/metrics"
	"github.com/riskibarqy/fantasy-roster/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-roster/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const warmupTimeout = 5 * time.Minute

// App holds the HTTP server and the resources it owns.
type App struct {
	Server      *http.Server
	Projections *usecase.ProjectionService

	cfg    config.Config
	logger *logging.Logger
	db     *sqlx.DB
}

type storage struct {
	tx      roster.TxManager
	players player.Repository
	rosters roster.Repository
	db      *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	razzballClient := razzball.NewClient(razzball.ClientConfig{
		BaseURL:      cfg.RazzballBaseURL,
		PathPrefix:   cfg.RazzballPathPrefix,
		APIKey:       cfg.RazzballAPIKey,
		UserAgent:    cfg.ServiceName + "/" + cfg.ServiceVersion,
		Timeout:      cfg.RazzballTimeout,
		MaxRetries:   cfg.RazzballMaxRetries,
		RetryBackoff: 500 * time.Millisecond,
		RateLimit:    cfg.RazzballRateLimit,
		Logger:       logger,
		Metrics:      recorder,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.RazzballCircuitEnabled,
			FailureThreshold: cfg.RazzballCircuitFailureCount,
			OpenTimeout:      cfg.RazzballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.RazzballCircuitHalfOpenMaxReq,
		},
	})

	projections := usecase.NewProjectionService(razzballClient, usecase.ProjectionServiceConfig{
		CacheTTL: cfg.ProjectionCacheTTL,
		Workers:  cfg.ProjectionWorkers,
	}, recorder, logger)
	resolver := usecase.NewPlayerResolver(id.NewUUIDGenerator(), cfg.MatchThreshold, logger)
	imports := usecase.NewRosterImportService(
		rostercsv.NewParser(),
		store.tx,
		resolver,
		id.NewUUIDGenerator(),
		recorder,
		logger,
	)
	rosterReads := cache.NewRosterRepository(store.rosters, basecache.NewStore(cfg.RosterCacheTTL))
	rosters := usecase.NewRosterService(rosterReads, store.players, projections, logger)

	handler := httpapi.NewHandler(imports, rosters, projections, cfg.UploadMaxBytes, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, metrics.Handler(registry))

	return &App{
		Server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
		Projections: projections,
		cfg:         cfg,
		logger:      logger.Named("app"),
		db:          store.db,
	}, nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return storage{}, err
		}
		if cfg.SeedPlayers {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return storage{}, fmt.Errorf("seed players: %w", err)
			}
		}
		logger.Info("storage ready", "driver", cfg.StorageDriver, "db_name", dbNameFromURL(cfg.DBURL))
		return storage{
			tx:      postgres.NewTxManager(db),
			players: postgres.NewPlayerRepository(db),
			rosters: postgres.NewRosterRepository(db),
			db:      db,
		}, nil
	default:
		var seed []player.Player
		if cfg.SeedPlayers {
			seed = memory.SeedPlayers()
		}
		mem := memory.NewDatabase(seed)
		logger.Info("storage ready", "driver", config.StorageMemory, "seeded_players", len(seed))
		return storage{
			tx:      memory.NewTxManager(mem),
			players: memory.NewPlayerRepository(mem),
			rosters: memory.NewRosterRepository(mem),
		}, nil
	}
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres",
		postgresURL(cfg.DBURL, cfg.ServiceName, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// WarmupProjections loads every horizon in the background when enabled.
func (a *App) WarmupProjections(ctx context.Context) {
	if !a.cfg.ProjectionWarmup {
		a.logger.Info("projection warmup disabled", "reason", "PROJECTION_WARMUP=false")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
		defer cancel()

		start := time.Now()
		if err := a.Projections.Warmup(ctx); err != nil {
			a.logger.WarnContext(ctx, "projection warmup incomplete", "error", err, "duration", time.Since(start))
			return
		}
		a.logger.InfoContext(ctx, "projection warmup complete", "duration", time.Since(start))
	}()
}

// Shutdown stops the HTTP server and releases storage.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	return errors.Join(errs...)
}
