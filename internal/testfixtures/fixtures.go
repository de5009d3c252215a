package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
)

var (
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomOption configures the generated room fixture.
type RoomOption func(*floorplan.Room)

// NewRoom returns a deterministic single-cell meeting room on the ground
// floor with optional overrides.
func NewRoom(opts ...RoomOption) floorplan.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	room := floorplan.Room{
		ID:        fmt.Sprintf("room-%03d", idx),
		FloorID:   "ground",
		Name:      fmt.Sprintf("Room %03d", idx),
		Capacity:  4,
		Category:  floorplan.CategoryMeeting,
		Placement: floorplan.Placement{X: 0, Y: 0, Width: 1, Height: 1},
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(r *floorplan.Room) { r.ID = id }
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(r *floorplan.Room) { r.Name = name }
}

// WithRoomFloor places the room on another floor.
func WithRoomFloor(floorID string) RoomOption {
	return func(r *floorplan.Room) { r.FloorID = floorID }
}

// WithRoomCapacity overrides the room capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(r *floorplan.Room) { r.Capacity = capacity }
}

// WithRoomCategory overrides the room category.
func WithRoomCategory(category floorplan.Category) RoomOption {
	return func(r *floorplan.Room) { r.Category = category }
}

// WithRoomFeatures replaces the feature list.
func WithRoomFeatures(features ...string) RoomOption {
	return func(r *floorplan.Room) { r.Features = append([]string(nil), features...) }
}

// WithRoomThreshold sets the occupancy alert threshold in percent.
func WithRoomThreshold(percent int) RoomOption {
	return func(r *floorplan.Room) { r.OccupancyThreshold = &percent }
}

// WithRoomOccupants sets the users currently checked in.
func WithRoomOccupants(userIDs ...string) RoomOption {
	return func(r *floorplan.Room) { r.Occupants = append([]string(nil), userIDs...) }
}

// WithRoomBookings appends bookings to the room schedule.
func WithRoomBookings(bookings ...floorplan.Booking) RoomOption {
	return func(r *floorplan.Room) { r.Schedule = append(r.Schedule, bookings...) }
}

// WithRoomPopularity overrides the popularity counter.
func WithRoomPopularity(popularity int) RoomOption {
	return func(r *floorplan.Room) { r.Popularity = popularity }
}

// --------------------------- Booking fixtures ----------------------------

// NewBooking returns a meeting booking over [start, end).
func NewBooking(start, end time.Time) floorplan.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	return floorplan.Booking{
		ID:        fmt.Sprintf("booking-%03d", idx),
		Requester: floorplan.Requester{UserID: "fixture@example.com", DisplayName: "Fixture"},
		Start:     start,
		End:       end,
		Kind:      floorplan.BookingMeeting,
		Title:     fmt.Sprintf("Booking %03d", idx),
	}
}

// ---------------------------- Plan fixtures ------------------------------

// PlanOption configures the generated floor plan.
type PlanOption func(*floorplan.FloorPlan)

// NewPlan returns a two-floor plan at version 1 stamped with ReferenceTime.
func NewPlan(opts ...PlanOption) floorplan.FloorPlan {
	plan := floorplan.FloorPlan{
		ID:           "fp_test",
		Version:      floorplan.InitialVersion,
		LastModified: referenceTime,
		Floors: []floorplan.Floor{
			{ID: "ground", Name: "Ground Floor", Level: 0},
			{ID: "first", Name: "First Floor", Level: 1},
		},
		Rooms: []floorplan.Room{},
	}
	for _, opt := range opts {
		opt(&plan)
	}
	return plan
}

// WithPlanVersion overrides the plan version.
func WithPlanVersion(version int64) PlanOption {
	return func(p *floorplan.FloorPlan) { p.Version = version }
}

// WithPlanRooms appends rooms to the plan.
func WithPlanRooms(rooms ...floorplan.Room) PlanOption {
	return func(p *floorplan.FloorPlan) { p.Rooms = append(p.Rooms, rooms...) }
}

// SeedFunc adapts a fixed plan to the store's seed signature.
func SeedFunc(plan floorplan.FloorPlan) floorplan.Seed {
	return func(time.Time) floorplan.FloorPlan { return plan.Clone() }
}
