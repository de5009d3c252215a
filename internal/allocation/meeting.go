package allocation

import (
	"errors"
	"sort"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/scheduler"
)

const (
	// DeskPopularityWeight is added to a room's popularity per check-in.
	DeskPopularityWeight = 1
	// MeetingPopularityWeight is added to a room's popularity per meeting.
	MeetingPopularityWeight = 2
	// MaxSuggestions caps the alternatives returned with a rejected request.
	MaxSuggestions = 3
)

// ErrRoomNotFound is returned when an operation names a room the plan does not contain.
var ErrRoomNotFound = errors.New("allocation: room not found")

// Outcome is the business result of a reservation attempt.
type Outcome string

const (
	OutcomeBooked             Outcome = "booked"
	OutcomePastStartTime      Outcome = "past_start_time"
	OutcomeNoCapacity         Outcome = "no_capacity"
	OutcomeAllSlotsConflicted Outcome = "all_slots_conflicted"
	OutcomeOverlap            Outcome = "overlap"
)

// MeetingRequest describes a meeting to place.
type MeetingRequest struct {
	Requester floorplan.Requester
	Title     string
	Attendees int
	FloorID   string
	Start     time.Time
	End       time.Time
}

func (r MeetingRequest) interval() scheduler.Interval {
	return scheduler.Interval{Start: r.Start, End: r.End}
}

// MeetingResult reports where a meeting landed or why it did not.
type MeetingResult struct {
	Outcome     Outcome            `json:"outcome"`
	RoomID      string             `json:"room_id,omitempty"`
	Booking     *floorplan.Booking `json:"booking,omitempty"`
	Suggestions []floorplan.Room   `json:"suggestions,omitempty"`
}

// Booked reports whether the plan was modified.
func (r MeetingResult) Booked() bool {
	return r.Outcome == OutcomeBooked
}

// BestFitCandidates returns the meeting rooms able to seat attendees, tightest
// fit first. Rooms with equal spare capacity keep plan order.
func BestFitCandidates(plan floorplan.FloorPlan, floorID string, attendees int) []floorplan.Room {
	var pool []floorplan.Room
	for _, room := range plan.RoomsOnFloor(floorID) {
		if room.Category == floorplan.CategoryMeeting && room.Capacity >= attendees {
			pool = append(pool, room)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Capacity-attendees < pool[j].Capacity-attendees
	})
	return pool
}

// ScheduleBestFit books the smallest free meeting room that seats the
// request and appends the booking to plan.
func ScheduleBestFit(plan *floorplan.FloorPlan, req MeetingRequest, now time.Time, newID func() string) MeetingResult {
	if !req.Start.After(now) {
		return MeetingResult{Outcome: OutcomePastStartTime}
	}

	pool := BestFitCandidates(*plan, req.FloorID, req.Attendees)
	if len(pool) == 0 {
		return MeetingResult{Outcome: OutcomeNoCapacity}
	}

	for _, candidate := range pool {
		if scheduler.Overlaps(candidate.Schedule, req.interval()) {
			continue
		}
		idx, _ := plan.RoomIndex(candidate.ID)
		booking := reserve(&plan.Rooms[idx], req, newID)
		return MeetingResult{Outcome: OutcomeBooked, RoomID: candidate.ID, Booking: &booking}
	}

	suggestions := make([]floorplan.Room, 0, MaxSuggestions)
	for _, room := range pool[:min(len(pool), MaxSuggestions)] {
		suggestions = append(suggestions, room.Clone())
	}
	return MeetingResult{Outcome: OutcomeAllSlotsConflicted, Suggestions: suggestions}
}

// ScheduleInRoom books a specific room. When the room is taken for the
// interval, rooms of the same category with at least half its capacity and
// a free slot are suggested instead. A zero attendee count skips the
// capacity check.
func ScheduleInRoom(plan *floorplan.FloorPlan, roomID string, req MeetingRequest, now time.Time, newID func() string) (MeetingResult, error) {
	idx, ok := plan.RoomIndex(roomID)
	if !ok {
		return MeetingResult{}, ErrRoomNotFound
	}
	if !req.Start.After(now) {
		return MeetingResult{Outcome: OutcomePastStartTime}, nil
	}

	target := plan.Rooms[idx]
	if req.Attendees > target.Capacity {
		return MeetingResult{Outcome: OutcomeNoCapacity}, nil
	}

	if !scheduler.Overlaps(target.Schedule, req.interval()) {
		booking := reserve(&plan.Rooms[idx], req, newID)
		return MeetingResult{Outcome: OutcomeBooked, RoomID: roomID, Booking: &booking}, nil
	}

	var suggestions []floorplan.Room
	for _, room := range plan.Rooms {
		if len(suggestions) == MaxSuggestions {
			break
		}
		if room.ID == roomID || room.Category != target.Category {
			continue
		}
		if room.Capacity*2 < target.Capacity {
			continue
		}
		if scheduler.Overlaps(room.Schedule, req.interval()) {
			continue
		}
		suggestions = append(suggestions, room.Clone())
	}
	return MeetingResult{Outcome: OutcomeOverlap, Suggestions: suggestions}, nil
}

func reserve(room *floorplan.Room, req MeetingRequest, newID func() string) floorplan.Booking {
	booking := floorplan.Booking{
		ID:        newID(),
		Requester: req.Requester,
		Start:     req.Start,
		End:       req.End,
		Kind:      floorplan.BookingMeeting,
		Title:     req.Title,
	}
	room.Schedule = append(room.Schedule, booking)
	room.Popularity += MeetingPopularityWeight
	return booking
}
