package allocation

import (
	"slices"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
)

// LiveCheckInTitle labels the booking recorded for a walk-in check-in.
const LiveCheckInTitle = "Live Check-in"

// CheckInRequest seats a user in a room for a while.
type CheckInRequest struct {
	Requester floorplan.Requester
	RoomID    string
	Duration  time.Duration
}

// CheckIn moves the user into the requested room, leaving any room they were
// in before, and records a live desk booking from now for the duration.
func CheckIn(plan *floorplan.FloorPlan, req CheckInRequest, now time.Time, newID func() string) (floorplan.Booking, error) {
	idx, ok := plan.RoomIndex(req.RoomID)
	if !ok {
		return floorplan.Booking{}, ErrRoomNotFound
	}

	CheckOut(plan, req.Requester.UserID)

	booking := floorplan.Booking{
		ID:        newID(),
		Requester: req.Requester,
		Start:     now,
		End:       now.Add(req.Duration),
		Kind:      floorplan.BookingDesk,
		Title:     LiveCheckInTitle,
		Live:      true,
	}
	room := &plan.Rooms[idx]
	room.Occupants = append(room.Occupants, req.Requester.UserID)
	room.Schedule = append(room.Schedule, booking)
	room.Popularity += DeskPopularityWeight
	return booking, nil
}

// CheckOut removes the user from every room. Bookings stay on the schedule.
// It returns the ids of the rooms the user left.
func CheckOut(plan *floorplan.FloorPlan, userID string) []string {
	var left []string
	for i := range plan.Rooms {
		room := &plan.Rooms[i]
		if !room.HasOccupant(userID) {
			continue
		}
		room.Occupants = slices.DeleteFunc(room.Occupants, func(id string) bool { return id == userID })
		left = append(left, room.ID)
	}
	return left
}

// LocateOccupant returns the room the user is currently checked in to.
func LocateOccupant(plan floorplan.FloorPlan, userID string) (floorplan.Room, bool) {
	for _, room := range plan.Rooms {
		if room.HasOccupant(userID) {
			return room.Clone(), true
		}
	}
	return floorplan.Room{}, false
}
