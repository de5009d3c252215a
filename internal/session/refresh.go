package session

import (
	"context"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
)

// Watch applies plans pushed on updates until ctx is done or updates closes.
func (s *Session) Watch(ctx context.Context, updates <-chan floorplan.FloorPlan) {
	for {
		select {
		case <-ctx.Done():
			return
		case plan, ok := <-updates:
			if !ok {
				return
			}
			if s.Refresh(plan) {
				s.logger.DebugContext(ctx, "applied pushed plan", "version", plan.Version)
			}
		}
	}
}

// Poll fetches the plan every interval and offers it to Refresh. Fetches are
// skipped while the operator is editing.
func (s *Session) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s.State() != Viewing {
			continue
		}
		plan, err := s.backend.Fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.WarnContext(ctx, "background refresh failed", "error", err)
			}
			continue
		}
		if s.Refresh(plan) {
			s.logger.DebugContext(ctx, "applied polled plan", "version", plan.Version)
		}
	}
}
