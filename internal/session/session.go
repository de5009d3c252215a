// Package session tracks one operator's edit of the floor plan. Remote
// refreshes are applied only while the operator is not editing, so local
// work is never overwritten silently.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/store"
)

// State is the position of the session in its edit lifecycle.
type State int

const (
	Viewing State = iota
	Editing
	Committing
	ConflictPending
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Committing:
		return "committing"
	case ConflictPending:
		return "conflict_pending"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrBusy is returned when an operation is attempted while a commit is in flight.
	ErrBusy = errors.New("session: commit in progress")
	// ErrConflictPending is returned when edits are attempted before a conflict is resolved.
	ErrConflictPending = errors.New("session: conflict must be resolved first")
	// ErrNoConflict is returned by Resolve when nothing needs resolving.
	ErrNoConflict = errors.New("session: no conflict to resolve")
	// ErrNothingToSave is returned by Save outside the Editing state.
	ErrNothingToSave = errors.New("session: no local changes")
)

// Backend is the store surface a session uses.
type Backend interface {
	Fetch(ctx context.Context) (floorplan.FloorPlan, error)
	store.Committer
}

// SaveResult reports how a save ended.
type SaveResult struct {
	Committed bool
	Plan      floorplan.FloorPlan
	Conflict  *store.Conflict
}

// Session is safe for concurrent use; refreshes typically arrive from a
// polling or subscription goroutine while the operator edits.
type Session struct {
	backend  Backend
	resolver *store.Resolver
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	base     floorplan.FloorPlan
	working  floorplan.FloorPlan
	conflict *store.Conflict
}

// New creates a session in the Viewing state. Call Open to load the plan.
func New(backend Backend, now func() time.Time, logger *slog.Logger) *Session {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		backend:  backend,
		resolver: store.NewResolver(backend, now),
		now:      now,
		logger:   logger.With("component", "session"),
	}
}

// Open loads the authoritative plan.
func (s *Session) Open(ctx context.Context) (floorplan.FloorPlan, error) {
	plan, err := s.backend.Fetch(ctx)
	if err != nil {
		return floorplan.FloorPlan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = plan
	s.working = plan.Clone()
	s.state = Viewing
	s.conflict = nil
	return plan.Clone(), nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns a copy of what the operator sees: the working copy while
// editing, otherwise the last synced plan.
func (s *Session) Current() floorplan.FloorPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

// Conflict returns the pending conflict, if any.
func (s *Session) Conflict() (store.Conflict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflict == nil {
		return store.Conflict{}, false
	}
	return store.Conflict{Local: s.conflict.Local.Clone(), Remote: s.conflict.Remote.Clone()}, true
}

// Edit applies fn to the private working copy. A failing fn leaves the
// working copy unchanged.
func (s *Session) Edit(fn func(plan *floorplan.FloorPlan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Committing:
		return ErrBusy
	case ConflictPending:
		return ErrConflictPending
	}

	draft := s.working.Clone()
	if err := fn(&draft); err != nil {
		return err
	}
	s.working = draft
	s.state = Editing
	return nil
}

// Discard drops local edits and returns to the last synced plan.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Committing {
		return ErrBusy
	}
	s.working = s.base.Clone()
	s.conflict = nil
	s.state = Viewing
	return nil
}

// Refresh offers a plan observed remotely. It is applied only in Viewing and
// only when newer than the synced plan; the return value says whether it was.
func (s *Session) Refresh(plan floorplan.FloorPlan) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Viewing || plan.Version <= s.base.Version {
		return false
	}
	s.base = plan.Clone()
	s.working = plan.Clone()
	return true
}

// Save submits the working copy as version base+1.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()
	switch s.state {
	case Committing:
		s.mu.Unlock()
		return SaveResult{}, ErrBusy
	case ConflictPending:
		s.mu.Unlock()
		return SaveResult{}, ErrConflictPending
	case Viewing:
		s.mu.Unlock()
		return SaveResult{}, ErrNothingToSave
	}
	candidate := s.working.Clone()
	candidate.Touch(s.base.Version+1, s.now())
	s.state = Committing
	s.mu.Unlock()

	result, err := s.backend.Commit(ctx, candidate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Editing
		return SaveResult{}, err
	}
	if !result.Committed {
		s.conflict = &store.Conflict{Local: candidate, Remote: result.Plan}
		s.state = ConflictPending
		s.logger.Info("save rejected as stale", "candidate_version", candidate.Version, "remote_version", result.Plan.Version)
		return SaveResult{Plan: candidate.Clone(), Conflict: &store.Conflict{Local: candidate.Clone(), Remote: result.Plan.Clone()}}, nil
	}
	s.sync(result.Plan)
	return SaveResult{Committed: true, Plan: result.Plan.Clone()}, nil
}

// Resolve settles a pending conflict with the operator's strategy.
func (s *Session) Resolve(ctx context.Context, strategy store.Strategy) (SaveResult, error) {
	s.mu.Lock()
	if s.state != ConflictPending || s.conflict == nil {
		s.mu.Unlock()
		return SaveResult{}, ErrNoConflict
	}
	conflict := *s.conflict
	s.state = Committing
	s.mu.Unlock()

	res, err := s.resolver.Resolve(ctx, conflict, strategy)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = ConflictPending
		return SaveResult{}, err
	}
	if res.Conflict != nil {
		s.conflict = res.Conflict
		s.state = ConflictPending
		return SaveResult{Plan: res.Plan.Clone(), Conflict: &store.Conflict{Local: res.Conflict.Local.Clone(), Remote: res.Conflict.Remote.Clone()}}, nil
	}
	s.sync(res.Plan)
	return SaveResult{Committed: res.Committed, Plan: res.Plan.Clone()}, nil
}

func (s *Session) sync(plan floorplan.FloorPlan) {
	s.base = plan.Clone()
	s.working = plan.Clone()
	s.conflict = nil
	s.state = Viewing
}
