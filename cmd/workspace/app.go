package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/example/workspace-planner/internal/codec"
	"github.com/example/workspace-planner/internal/config"
	"github.com/example/workspace-planner/internal/directory"
	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/logging"
	"github.com/example/workspace-planner/internal/metrics"
	"github.com/example/workspace-planner/internal/persistence"
	"github.com/example/workspace-planner/internal/persistence/badger"
	"github.com/example/workspace-planner/internal/persistence/memory"
	"github.com/example/workspace-planner/internal/persistence/postgres"
	"github.com/example/workspace-planner/internal/persistence/sqlite"
	"github.com/example/workspace-planner/internal/store"
)

// app holds the long lived collaborators every command shares.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	repo    persistence.DocumentRepository
	codec   codec.Codec
	seed    floorplan.Seed
	store   *store.Store
	metrics *metrics.Metrics
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(w, lvl), nil
}

// openApp loads configuration and opens the configured backend.
func openApp(ctx context.Context, logOutput io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(logOutput, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	c, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	seed, err := floorplan.LoadSeedFile(cfg.SeedPath)
	if err != nil {
		return nil, err
	}

	repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	st, err := store.New(repo, seed,
		store.WithCodec(c),
		store.WithLogger(logger),
		store.WithObserver(m),
	)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	logger.DebugContext(ctx, "backend opened", "driver", cfg.StorageDriver, "codec", c.Name(), "plan_id", st.PlanID())
	return &app{cfg: cfg, logger: logger, repo: repo, codec: c, seed: seed, store: st, metrics: m}, nil
}

func openRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.DocumentRepository, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memory.NewStorage(), nil
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.StorageDSN)
	case config.DriverBadger:
		bc := badger.DefaultConfig(cfg.BadgerPath)
		bc.Logger = logger
		return badger.Open(bc)
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.StorageDSN)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

// directory opens the user directory on the same backend.
func (a *app) directory() (*directory.Directory, error) {
	opts := []directory.Option{directory.WithCodec(a.codec), directory.WithLogger(a.logger)}
	if path := a.cfg.UsersSeedPath; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open users seed: %w", err)
		}
		defer f.Close()
		users, err := directory.LoadSeed(f)
		if err != nil {
			return nil, err
		}
		opts = append(opts, directory.WithSeed(users))
	}
	return directory.New(a.repo, opts...)
}

func (a *app) Close() error {
	if a == nil || a.repo == nil {
		return nil
	}
	return a.repo.Close()
}
