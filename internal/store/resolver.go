package store

import (
	"context"
	"fmt"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
)

// Strategy is an operator's answer to a commit conflict.
type Strategy string

const (
	// AcceptRemote discards the local edits and adopts the authoritative plan.
	AcceptRemote Strategy = "accept_remote"
	// ForceLocal re-submits the local plan on top of the authoritative version.
	ForceLocal Strategy = "force_local"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(value) {
	case AcceptRemote, ForceLocal:
		return Strategy(value), nil
	}
	return "", fmt.Errorf("store: unknown conflict strategy %q", value)
}

// Conflict pairs the rejected local candidate with the plan that beat it.
type Conflict struct {
	Local  floorplan.FloorPlan
	Remote floorplan.FloorPlan
}

// Resolution is the outcome of resolving a conflict. When Conflict is set the
// forced commit lost another race and the operator has to decide again.
type Resolution struct {
	Plan      floorplan.FloorPlan
	Committed bool
	Conflict  *Conflict
}

// Committer is the store surface the resolver needs.
type Committer interface {
	Commit(ctx context.Context, candidate floorplan.FloorPlan) (CommitResult, error)
}

// Resolver applies an operator's strategy to a conflict.
type Resolver struct {
	store Committer
	now   func() time.Time
}

// NewResolver returns a resolver committing through store.
func NewResolver(store Committer, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{store: store, now: now}
}

// Resolve applies strategy. ForceLocal rewrites the local plan to version
// remote+1 with a fresh timestamp and commits exactly once.
func (r *Resolver) Resolve(ctx context.Context, conflict Conflict, strategy Strategy) (Resolution, error) {
	switch strategy {
	case AcceptRemote:
		return Resolution{Plan: conflict.Remote.Clone()}, nil
	case ForceLocal:
	default:
		return Resolution{}, fmt.Errorf("store: unknown conflict strategy %q", strategy)
	}

	forced := conflict.Local.Clone()
	forced.Touch(conflict.Remote.Version+1, r.now())

	result, err := r.store.Commit(ctx, forced)
	if err != nil {
		return Resolution{}, err
	}
	if !result.Committed {
		return Resolution{
			Plan:     forced,
			Conflict: &Conflict{Local: forced, Remote: result.Plan},
		}, nil
	}
	return Resolution{Plan: result.Plan, Committed: true}, nil
}
