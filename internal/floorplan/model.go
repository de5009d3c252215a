// Package floorplan defines the versioned workspace aggregate shared by the
// store, the allocation engine and every client session.
package floorplan

import (
	"slices"
	"time"
)

// Category classifies how a room may be used.
type Category string

const (
	CategoryMeeting    Category = "meeting"
	CategoryDesk       Category = "desk"
	CategoryCommon     Category = "common"
	CategoryCafeteria  Category = "cafeteria"
	CategoryRecreation Category = "recreation"
)

// Valid reports whether the category is one of the known room types.
func (c Category) Valid() bool {
	switch c {
	case CategoryMeeting, CategoryDesk, CategoryCommon, CategoryCafeteria, CategoryRecreation:
		return true
	}
	return false
}

// BookingKind distinguishes desk check-ins from meeting reservations.
type BookingKind string

const (
	BookingDesk    BookingKind = "desk"
	BookingMeeting BookingKind = "meeting"
)

// FeatureWorkstation marks rooms with fixed computers.
const FeatureWorkstation = "pc"

// Requester identifies who made a booking.
type Requester struct {
	UserID      string `json:"user_id" yaml:"user_id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// Booking is a reservation of a room over the half-open interval [Start, End).
type Booking struct {
	ID        string      `json:"id"`
	Requester Requester   `json:"requester"`
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Kind      BookingKind `json:"kind"`
	Title     string      `json:"title,omitempty"`
	Live      bool        `json:"live,omitempty"`
}

// Placement is the room geometry on the editor canvas.
type Placement struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Room is a bookable space on a floor.
type Room struct {
	ID                 string    `json:"id"`
	FloorID            string    `json:"floor_id"`
	Name               string    `json:"name"`
	Capacity           int       `json:"capacity"`
	Category           Category  `json:"category"`
	Features           []string  `json:"features,omitempty"`
	OccupancyThreshold *int      `json:"occupancy_threshold,omitempty"`
	Placement          Placement `json:"placement"`
	Popularity         int       `json:"popularity"`
	Occupants          []string  `json:"occupants,omitempty"`
	Schedule           []Booking `json:"schedule,omitempty"`
}

// HasFeature reports whether the room advertises the named feature.
func (r Room) HasFeature(feature string) bool {
	return slices.Contains(r.Features, feature)
}

// HasOccupant reports whether the user is currently checked in to the room.
func (r Room) HasOccupant(userID string) bool {
	return slices.Contains(r.Occupants, userID)
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Room) Clone() Room {
	out := r
	out.Features = slices.Clone(r.Features)
	out.Occupants = slices.Clone(r.Occupants)
	out.Schedule = slices.Clone(r.Schedule)
	if r.OccupancyThreshold != nil {
		threshold := *r.OccupancyThreshold
		out.OccupancyThreshold = &threshold
	}
	return out
}

// Floor is a named level of the building.
type Floor struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level"`
}

// FloorPlan is the single authoritative aggregate. Version is a monotonic
// counter; a commit succeeds only when it carries a strictly higher version
// than the stored one.
type FloorPlan struct {
	ID           string    `json:"id"`
	Version      int64     `json:"version"`
	LastModified time.Time `json:"last_modified"`
	Floors       []Floor   `json:"floors,omitempty"`
	Rooms        []Room    `json:"rooms"`
}

// Clone returns a deep copy of the plan.
func (p FloorPlan) Clone() FloorPlan {
	out := p
	out.Floors = slices.Clone(p.Floors)
	if p.Rooms != nil {
		out.Rooms = make([]Room, len(p.Rooms))
		for i, room := range p.Rooms {
			out.Rooms[i] = room.Clone()
		}
	}
	return out
}

// RoomIndex returns the position of the room with the given id.
func (p FloorPlan) RoomIndex(id string) (int, bool) {
	for i := range p.Rooms {
		if p.Rooms[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Room returns a copy of the room with the given id.
func (p FloorPlan) Room(id string) (Room, bool) {
	idx, ok := p.RoomIndex(id)
	if !ok {
		return Room{}, false
	}
	return p.Rooms[idx].Clone(), true
}

// RoomsOnFloor returns the rooms of one floor, or all rooms when floorID is empty.
func (p FloorPlan) RoomsOnFloor(floorID string) []Room {
	out := make([]Room, 0, len(p.Rooms))
	for _, room := range p.Rooms {
		if floorID == "" || room.FloorID == floorID {
			out = append(out, room)
		}
	}
	return out
}

// Touch sets the next version and modification time on the plan.
func (p *FloorPlan) Touch(version int64, at time.Time) {
	p.Version = version
	p.LastModified = at.UTC()
}
