package docbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/docbridge/docbridge/pkg/logger"
	"github.com/docbridge/docbridge/pkg/store"
	"github.com/docbridge/docbridge/pkg/store/postgres"
	"github.com/docbridge/docbridge/pkg/store/surreal"
	"github.com/docbridge/docbridge/pkg/sync"
)

// App holds the connected stores and configuration for one run.
type App struct {
	cfg    *Config
	log    zerolog.Logger
	search store.Store
	column store.Store
}

// New connects to both stores. Either connection failing is fatal: there
// is nothing to reconcile against a single store.
func New(ctx context.Context, cfg *Config) (*App, error) {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := logger.New().Level(level).FromPath(cfg.LogFile).Make()

	search, err := surreal.New(ctx, surreal.Config{
		URL:       cfg.SurrealURL,
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
		Table:     cfg.SurrealTable,
	})
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}
	log.Info().Str("url", cfg.SurrealURL).Msg("connected to SurrealDB")

	column, err := postgres.New(cfg.PostgresDSN, cfg.Table)
	if err != nil {
		search.Close()
		return nil, fmt.Errorf("column store: %w", err)
	}
	log.Info().Str("table", cfg.Table).Msg("connected to PostgreSQL")

	return &App{cfg: cfg, log: log, search: search, column: column}, nil
}

func (a *App) Close() error {
	serr := a.search.Close()
	cerr := a.column.Close()
	if serr != nil {
		return serr
	}
	return cerr
}

// Run ensures both schemas exist, then drives the sync loop until ctx is
// canceled. Schema failures are returned as-is so main exits non-zero.
func (a *App) Run(ctx context.Context) error {
	if err := a.search.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := a.column.EnsureSchema(ctx); err != nil {
		return err
	}

	watermark := time.Now()
	if a.cfg.FullSync {
		// Beginning of time: the first cycle replays all existing data.
		watermark = time.Time{}
		a.log.Info().Msg("initial full synchronization requested")
	}

	syncer := &sync.Syncer{
		A:       a.search,
		B:       a.column,
		Period:  a.cfg.Period,
		Log:     a.log,
		Verbose: a.cfg.Verbose,
	}
	return syncer.Run(ctx, watermark)
}
