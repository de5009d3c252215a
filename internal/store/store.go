// Package store keeps the authoritative floor plan behind an optimistic
// concurrency check: a commit lands only when it carries a version strictly
// higher than the stored one.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/workspace-planner/internal/codec"
	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/logging"
	"github.com/example/workspace-planner/internal/persistence"
)

// ErrPlanMismatch is returned when a candidate names a different plan than
// the one the store manages.
var ErrPlanMismatch = errors.New("store: candidate belongs to another plan")

// Commit outcomes reported to observers and logs.
const (
	OutcomeCommitted = "committed"
	OutcomeStale     = "stale"
	OutcomeError     = "error"
)

// CommitResult is the answer to a commit. When Committed is false the
// candidate lost the race and Plan holds the authoritative copy.
type CommitResult struct {
	Committed bool
	Plan      floorplan.FloorPlan
}

// Observer receives commit outcomes, typically for metrics.
type Observer interface {
	ObserveCommit(outcome string, elapsed time.Duration)
}

// Option configures a Store.
type Option func(*Store)

// WithCodec selects the document encoding. JSON is the default.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for bootstrap timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithObserver registers a commit observer.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// Store is the versioned workspace store. It is safe for concurrent use;
// commits within one process are serialised and backends implementing
// persistence.Swapper extend the guarantee across processes.
type Store struct {
	repo     persistence.DocumentRepository
	swapper  persistence.Swapper
	codec    codec.Codec
	seed     floorplan.Seed
	planID   string
	now      func() time.Time
	logger   *slog.Logger
	observer Observer

	mu  sync.Mutex
	hub *Broadcaster
}

// New builds a store over repo. seed produces the plan written when the
// backend is empty and fixes the plan id the store manages.
func New(repo persistence.DocumentRepository, seed floorplan.Seed, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, errors.New("store: repository is required")
	}
	if seed == nil {
		return nil, errors.New("store: seed is required")
	}

	s := &Store{
		repo:   repo,
		codec:  codec.JSON{},
		seed:   seed,
		now:    time.Now,
		logger: slog.Default(),
		hub:    NewBroadcaster(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if swapper, ok := repo.(persistence.Swapper); ok {
		s.swapper = swapper
	}

	s.planID = seed(s.now()).ID
	if s.planID == "" {
		return nil, errors.New("store: seed plan has no id")
	}
	return s, nil
}

// PlanID returns the id of the managed plan.
func (s *Store) PlanID() string {
	return s.planID
}

func (s *Store) key() string {
	return persistence.FloorPlanKey(s.planID)
}

func (s *Store) loggerFor(ctx context.Context, operation string) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = s.logger
	}
	return logger.With("component", "store", "operation", operation, "plan_id", s.planID)
}

// Fetch re-reads the authoritative plan from the backend and returns a deep
// copy. An empty backend is seeded first.
func (s *Store) Fetch(ctx context.Context) (floorplan.FloorPlan, error) {
	rec, err := s.repo.Load(ctx, s.key())
	if errors.Is(err, persistence.ErrNotFound) {
		return s.bootstrap(ctx)
	}
	if err != nil {
		return floorplan.FloorPlan{}, fmt.Errorf("store: fetch: %w", err)
	}
	return s.decode(rec)
}

func (s *Store) bootstrap(ctx context.Context) (floorplan.FloorPlan, error) {
	plan := s.seed(s.now())
	result, err := s.Commit(ctx, plan)
	if err != nil {
		return floorplan.FloorPlan{}, fmt.Errorf("store: seed: %w", err)
	}
	if result.Committed {
		s.loggerFor(ctx, "Fetch").InfoContext(ctx, "seeded empty backend", "version", plan.Version, "rooms", len(plan.Rooms))
	}
	return result.Plan, nil
}

// Commit stores candidate verbatim when its version is strictly higher than
// the stored one. The store never assigns versions itself.
func (s *Store) Commit(ctx context.Context, candidate floorplan.FloorPlan) (result CommitResult, err error) {
	started := time.Now()
	logger := s.loggerFor(ctx, "Commit").With("candidate_version", candidate.Version)
	defer func() {
		outcome := OutcomeCommitted
		switch {
		case err != nil:
			outcome = OutcomeError
			logger.ErrorContext(ctx, "commit failed", "error", err)
		case !result.Committed:
			outcome = OutcomeStale
			logger.InfoContext(ctx, "commit rejected as stale", "latest_version", result.Plan.Version)
		default:
			logger.DebugContext(ctx, "commit accepted")
		}
		if s.observer != nil {
			s.observer.ObserveCommit(outcome, time.Since(started))
		}
	}()

	if candidate.ID != s.planID {
		return CommitResult{}, fmt.Errorf("%w: %q", ErrPlanMismatch, candidate.ID)
	}

	data, err := s.codec.Marshal(candidate)
	if err != nil {
		return CommitResult{}, fmt.Errorf("store: encode: %w", err)
	}
	rec := persistence.Record{Key: s.key(), Version: candidate.Version, Data: data, UpdatedAt: candidate.LastModified}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.swapper != nil {
		latest, saved, err := s.swapper.SaveIfNewer(ctx, rec)
		if err != nil {
			return CommitResult{}, fmt.Errorf("store: commit: %w", err)
		}
		if !saved {
			return s.stale(latest)
		}
	} else {
		latest, err := s.repo.Load(ctx, rec.Key)
		switch {
		case errors.Is(err, persistence.ErrNotFound):
		case err != nil:
			return CommitResult{}, fmt.Errorf("store: commit: %w", err)
		case latest.Version >= candidate.Version:
			return s.stale(latest)
		}
		if err := s.repo.Save(ctx, rec); err != nil {
			return CommitResult{}, fmt.Errorf("store: commit: %w", err)
		}
	}

	committed := candidate.Clone()
	s.hub.Publish(committed)
	return CommitResult{Committed: true, Plan: committed.Clone()}, nil
}

func (s *Store) stale(latest persistence.Record) (CommitResult, error) {
	plan, err := s.decode(latest)
	if err != nil {
		return CommitResult{}, err
	}
	return CommitResult{Committed: false, Plan: plan}, nil
}

func (s *Store) decode(rec persistence.Record) (floorplan.FloorPlan, error) {
	var plan floorplan.FloorPlan
	if err := s.codec.Unmarshal(rec.Data, &plan); err != nil {
		return floorplan.FloorPlan{}, fmt.Errorf("store: decode %s: %w", rec.Key, err)
	}
	return plan, nil
}

// Subscribe registers for committed plans. The channel holds at most one
// pending plan; a slow reader only ever sees the newest. cancel must be
// called to release the subscription.
func (s *Store) Subscribe() (<-chan floorplan.FloorPlan, func()) {
	return s.hub.Subscribe()
}
