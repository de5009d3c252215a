// Package harness wires a store, a directory and the application services
// over a throwaway backend for service and handler tests.
package harness

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/workspace-planner/internal/application"
	"github.com/example/workspace-planner/internal/directory"
	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/metrics"
	"github.com/example/workspace-planner/internal/persistence"
	"github.com/example/workspace-planner/internal/persistence/memory"
	"github.com/example/workspace-planner/internal/persistence/sqlite"
	"github.com/example/workspace-planner/internal/store"
	tf "github.com/example/workspace-planner/internal/testfixtures"
)

// Password is the password of every account in Users.
const Password = "secret"

// Admin and Employee are the accounts seeded into the harness directory.
var (
	Admin    = directory.SeedUser{Name: "Ada Admin", Email: "ada@company.com", Role: directory.RoleAdmin, Password: Password}
	Employee = directory.SeedUser{Name: "Eve Employee", Email: "eve@company.com", Role: directory.RoleEmployee, Password: Password}
)

// Users is the directory seed.
func Users() []directory.SeedUser {
	return []directory.SeedUser{Admin, Employee}
}

// Harness bundles everything a test needs to drive the services.
type Harness struct {
	Clock   *tf.Clock
	IDs     *tf.IDGenerator
	Repo    persistence.DocumentRepository
	Store   *store.Store
	Users   *directory.Directory
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	FloorPlans *application.FloorPlanService
	Bookings   *application.BookingService
	CheckIns   *application.CheckInService
	Accounts   *application.UserService
}

type settings struct {
	clock    *tf.Clock
	ids      *tf.IDGenerator
	plan     *floorplan.FloorPlan
	sqlite   bool
	attempts int
}

// Option configures a Harness.
type Option func(*settings)

// WithClock overrides the clock.
func WithClock(clock *tf.Clock) Option {
	return func(s *settings) { s.clock = clock }
}

// WithIDGenerator overrides the id generator used for bookings.
func WithIDGenerator(ids *tf.IDGenerator) Option {
	return func(s *settings) { s.ids = ids }
}

// WithPlan seeds the store with plan instead of the embedded office layout.
func WithPlan(plan floorplan.FloorPlan) Option {
	return func(s *settings) { s.plan = &plan }
}

// WithSQLite backs the harness with a migrated SQLite file in a temp dir.
func WithSQLite() Option {
	return func(s *settings) { s.sqlite = true }
}

// WithAttempts sets the services' read-modify-write attempts.
func WithAttempts(n int) Option {
	return func(s *settings) { s.attempts = n }
}

// New builds a harness. Resources are released through tb.Cleanup.
func New(tb testing.TB, opts ...Option) *Harness {
	tb.Helper()

	cfg := settings{
		clock:    tf.NewClock(tf.ReferenceTime()),
		ids:      tf.NewIDGenerator("bk"),
		attempts: 3,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var repo persistence.DocumentRepository = memory.NewStorage()
	if cfg.sqlite {
		path := filepath.Join(tb.TempDir(), "workspace.db")
		db, err := sqlite.Open(context.Background(), "file:"+path)
		if err != nil {
			tb.Fatalf("open sqlite: %v", err)
		}
		repo = db
	}
	tb.Cleanup(func() { _ = repo.Close() })

	seed, err := floorplan.DefaultSeed()
	if err != nil {
		tb.Fatalf("default seed: %v", err)
	}
	if cfg.plan != nil {
		seed = tf.SeedFunc(*cfg.plan)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	st, err := store.New(repo, seed,
		store.WithClock(cfg.clock.NowFunc()),
		store.WithLogger(logger),
		store.WithObserver(m),
	)
	if err != nil {
		tb.Fatalf("new store: %v", err)
	}

	users, err := directory.New(repo,
		directory.WithSeed(Users()),
		directory.WithHashParams(directory.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}),
		directory.WithLogger(logger),
	)
	if err != nil {
		tb.Fatalf("new directory: %v", err)
	}

	deps := application.Deps{
		Store:       st,
		Recorder:    m,
		IDGenerator: cfg.ids.NextFunc(),
		Now:         cfg.clock.NowFunc(),
		Logger:      logger,
		Attempts:    cfg.attempts,
	}
	return &Harness{
		Clock:      cfg.clock,
		IDs:        cfg.ids,
		Repo:       repo,
		Store:      st,
		Users:      users,
		Metrics:    m,
		Logger:     logger,
		FloorPlans: application.NewFloorPlanService(deps),
		Bookings:   application.NewBookingService(deps),
		CheckIns:   application.NewCheckInService(deps),
		Accounts:   application.NewUserService(users, logger),
	}
}

// Principal returns the application identity of a seeded account.
func Principal(u directory.SeedUser) application.Principal {
	return application.Principal{UserID: u.Email, Name: u.Name, IsAdmin: u.Role == directory.RoleAdmin}
}
