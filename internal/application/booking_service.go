package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/example/workspace-planner/internal/allocation"
	"github.com/example/workspace-planner/internal/floorplan"
)

const (
	modeBestFit    = "best_fit"
	modeSingleRoom = "single_room"

	defaultMeetingTitle = "Meeting"
)

// BookingService recommends desks and reserves meeting rooms.
type BookingService struct {
	deps Deps
}

// NewBookingService constructs a booking service.
func NewBookingService(deps Deps) *BookingService {
	return &BookingService{deps: deps.withDefaults()}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.deps.Logger, "BookingService", operation, attrs...)
}

// RecommendDesks ranks the rooms a walk-in could sit in right now.
func (s *BookingService) RecommendDesks(ctx context.Context, query allocation.DeskQuery) ([]allocation.DeskRecommendation, error) {
	plan, err := s.deps.Store.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return allocation.RecommendDesks(plan, query, s.deps.Now()), nil
}

// ScheduleBestFit books the smallest free meeting room that seats everyone.
// Rejections are reported through the result outcome.
func (s *BookingService) ScheduleBestFit(ctx context.Context, principal Principal, input MeetingInput) (result allocation.MeetingResult, err error) {
	logger := s.loggerWith(ctx, "ScheduleBestFit",
		"principal_id", principal.UserID,
		"attendees", input.Attendees,
		"floor_id", input.FloorID,
	)
	defer func() { s.finish(ctx, logger, modeBestFit, result, err) }()

	req, err := s.meetingRequest(principal, input, true)
	if err != nil {
		return
	}

	now := s.deps.Now()
	_, err = s.deps.mutate(ctx, logger, func(plan *floorplan.FloorPlan) (bool, error) {
		result = allocation.ScheduleBestFit(plan, req, now, s.deps.IDGenerator)
		return result.Booked(), nil
	})
	return
}

// ScheduleInRoom books the named room, suggesting alternatives when it is
// taken. Attendees is optional here; zero skips the capacity check.
func (s *BookingService) ScheduleInRoom(ctx context.Context, principal Principal, roomID string, input MeetingInput) (result allocation.MeetingResult, err error) {
	logger := s.loggerWith(ctx, "ScheduleInRoom",
		"principal_id", principal.UserID,
		"room_id", roomID,
		"attendees", input.Attendees,
	)
	defer func() { s.finish(ctx, logger, modeSingleRoom, result, err) }()

	req, err := s.meetingRequest(principal, input, false)
	if err != nil {
		return
	}

	now := s.deps.Now()
	_, err = s.deps.mutate(ctx, logger, func(plan *floorplan.FloorPlan) (bool, error) {
		var mErr error
		result, mErr = allocation.ScheduleInRoom(plan, roomID, req, now, s.deps.IDGenerator)
		if mErr != nil {
			return false, mErr
		}
		return result.Booked(), nil
	})
	return
}

func (s *BookingService) finish(ctx context.Context, logger *slog.Logger, mode string, result allocation.MeetingResult, err error) {
	if err != nil {
		logOutcome(ctx, logger, err, "meeting reservation failed", "")
		return
	}
	s.deps.Recorder.ObserveAllocation(mode, string(result.Outcome))
	logger = logger.With("outcome", result.Outcome, "room_id", result.RoomID)
	if result.Booked() {
		logger.InfoContext(ctx, "meeting booked")
		return
	}
	logger.InfoContext(ctx, "meeting not booked", "suggestions", len(result.Suggestions))
}

func (s *BookingService) meetingRequest(principal Principal, input MeetingInput, needAttendees bool) (allocation.MeetingRequest, error) {
	vErr := &ValidationError{}
	if strings.TrimSpace(principal.UserID) == "" {
		vErr.add("requester", "requester is required")
	}
	switch {
	case needAttendees && input.Attendees < 1:
		vErr.add("attendees", "at least one attendee is required")
	case input.Attendees < 0:
		vErr.add("attendees", "attendees must not be negative")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if !input.End.After(input.Start) {
		vErr.add("end", "end must be after start")
	}
	if vErr.HasErrors() {
		return allocation.MeetingRequest{}, vErr
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = defaultMeetingTitle
	}
	return allocation.MeetingRequest{
		Requester: principal.Requester(),
		Title:     title,
		Attendees: input.Attendees,
		FloorID:   input.FloorID,
		Start:     input.Start.UTC(),
		End:       input.End.UTC(),
	}, nil
}
