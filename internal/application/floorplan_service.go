package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/occupancy"
	"github.com/example/workspace-planner/internal/scheduler"
)

// FloorPlanService exposes the aggregate to readers and lets administrators
// replace it.
type FloorPlanService struct {
	deps Deps
}

// NewFloorPlanService constructs a floor plan service.
func NewFloorPlanService(deps Deps) *FloorPlanService {
	return &FloorPlanService{deps: deps.withDefaults()}
}

func (s *FloorPlanService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.deps.Logger, "FloorPlanService", operation, attrs...)
}

// Get returns the latest committed plan.
func (s *FloorPlanService) Get(ctx context.Context) (floorplan.FloorPlan, error) {
	return s.deps.Store.Fetch(ctx)
}

// Commit submits candidate as the next version. The caller sets the version;
// a candidate that does not beat the stored one fails with StaleVersionError.
func (s *FloorPlanService) Commit(ctx context.Context, principal Principal, candidate floorplan.FloorPlan) (plan floorplan.FloorPlan, err error) {
	logger := s.loggerWith(ctx, "Commit",
		"principal_id", principal.UserID,
		"candidate_version", candidate.Version,
	)
	defer func() {
		logOutcome(ctx, logger.With("version", plan.Version), err, "failed to commit floor plan", "floor plan committed")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	vErr.merge(candidate.Validate())
	if candidate.Version <= 0 {
		vErr.add("version", "version must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if candidate.LastModified.IsZero() {
		candidate.LastModified = s.deps.Now().UTC()
	}

	result, err := s.deps.Store.Commit(ctx, candidate)
	if err != nil {
		return
	}
	if !result.Committed {
		err = &StaleVersionError{Latest: result.Plan}
		return
	}
	plan = result.Plan
	s.deps.Recorder.SetAlertingRooms(len(occupancy.Alerts(plan)))
	return
}

// TriggerExternalMutation commits a synthetic change as if another editor
// made it.
func (s *FloorPlanService) TriggerExternalMutation(ctx context.Context, principal Principal) (plan floorplan.FloorPlan, err error) {
	logger := s.loggerWith(ctx, "TriggerExternalMutation", "principal_id", principal.UserID)
	defer func() {
		logOutcome(ctx, logger.With("version", plan.Version), err, "external mutation failed", "external mutation committed")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	result, err := s.deps.Store.TriggerExternalMutation(ctx)
	if err != nil {
		return
	}
	if !result.Committed {
		err = &StaleVersionError{Latest: result.Plan}
		return
	}
	plan = result.Plan
	return
}

// Alerts lists the rooms at or above their occupancy threshold.
func (s *FloorPlanService) Alerts(ctx context.Context) ([]occupancy.Alert, error) {
	plan, err := s.deps.Store.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	alerts := occupancy.Alerts(plan)
	s.deps.Recorder.SetAlertingRooms(len(alerts))
	return alerts, nil
}

// FloorStats summarises one floor.
func (s *FloorPlanService) FloorStats(ctx context.Context, floorID string) (occupancy.FloorStats, error) {
	plan, err := s.deps.Store.Fetch(ctx)
	if err != nil {
		return occupancy.FloorStats{}, err
	}
	if !hasFloor(plan, floorID) {
		return occupancy.FloorStats{}, fmt.Errorf("floor %q: %w", floorID, ErrNotFound)
	}
	return occupancy.Stats(plan, floorID), nil
}

// UpcomingSchedule returns the room's bookings that have not ended, by start.
func (s *FloorPlanService) UpcomingSchedule(ctx context.Context, roomID string) ([]floorplan.Booking, error) {
	plan, err := s.deps.Store.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	room, ok := plan.Room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return scheduler.Upcoming(room.Schedule, s.deps.Now()), nil
}

func hasFloor(plan floorplan.FloorPlan, floorID string) bool {
	for _, f := range plan.Floors {
		if f.ID == floorID {
			return true
		}
	}
	return len(plan.RoomsOnFloor(floorID)) > 0
}
