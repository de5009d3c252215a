package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/workspace-planner/internal/allocation"
	"github.com/example/workspace-planner/internal/floorplan"
)

// CheckInService seats and releases walk-in users.
type CheckInService struct {
	deps Deps
}

// NewCheckInService constructs a check-in service.
func NewCheckInService(deps Deps) *CheckInService {
	return &CheckInService{deps: deps.withDefaults()}
}

func (s *CheckInService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.deps.Logger, "CheckInService", operation, attrs...)
}

// CheckIn moves the principal into the room, leaving wherever they were, and
// records a live booking starting now.
func (s *CheckInService) CheckIn(ctx context.Context, principal Principal, input CheckInInput) (booking floorplan.Booking, err error) {
	logger := s.loggerWith(ctx, "CheckIn",
		"principal_id", principal.UserID,
		"room_id", input.RoomID,
	)
	defer func() {
		if err == nil {
			s.deps.Recorder.ObserveCheckIn("check_in")
		}
		logOutcome(ctx, logger.With("booking_id", booking.ID), err, "check-in failed", "checked in")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(principal.UserID) == "" {
		vErr.add("requester", "requester is required")
	}
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}
	if input.Duration < 0 {
		vErr.add("duration", "duration must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	duration := input.Duration
	if duration == 0 {
		duration = DefaultLaptopCheckInDuration
		if input.NeedsWorkstation {
			duration = DefaultCheckInDuration
		}
	}

	req := allocation.CheckInRequest{
		Requester: principal.Requester(),
		RoomID:    input.RoomID,
		Duration:  duration,
	}
	now := s.deps.Now().UTC()
	_, err = s.deps.mutate(ctx, logger, func(plan *floorplan.FloorPlan) (bool, error) {
		var cErr error
		booking, cErr = allocation.CheckIn(plan, req, now, s.deps.IDGenerator)
		return cErr == nil, cErr
	})
	if err != nil {
		booking = floorplan.Booking{}
	}
	return
}

// CheckOut removes the principal from every room and returns the rooms they
// left. Checking out while not checked in is a no-op.
func (s *CheckInService) CheckOut(ctx context.Context, principal Principal) (left []string, err error) {
	logger := s.loggerWith(ctx, "CheckOut", "principal_id", principal.UserID)
	defer func() {
		if err == nil && len(left) > 0 {
			s.deps.Recorder.ObserveCheckIn("check_out")
		}
		logOutcome(ctx, logger.With("rooms_left", left), err, "check-out failed", "checked out")
	}()

	_, err = s.deps.mutate(ctx, logger, func(plan *floorplan.FloorPlan) (bool, error) {
		left = allocation.CheckOut(plan, principal.UserID)
		return len(left) > 0, nil
	})
	if err != nil {
		left = nil
	}
	return
}

// Current returns the room the principal is checked in to.
func (s *CheckInService) Current(ctx context.Context, principal Principal) (floorplan.Room, error) {
	plan, err := s.deps.Store.Fetch(ctx)
	if err != nil {
		return floorplan.Room{}, err
	}
	room, ok := allocation.LocateOccupant(plan, principal.UserID)
	if !ok {
		return floorplan.Room{}, fmt.Errorf("%w: %s is not checked in", ErrNotFound, principal.UserID)
	}
	return room, nil
}
