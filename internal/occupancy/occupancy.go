// Package occupancy evaluates live room utilisation against configured thresholds.
package occupancy

import (
	"math"

	"github.com/example/workspace-planner/internal/floorplan"
)

// Percent returns the live utilisation of the room in percent. Rooms without
// capacity report zero.
func Percent(room floorplan.Room) float64 {
	if room.Capacity <= 0 {
		return 0
	}
	return float64(len(room.Occupants)) / float64(room.Capacity) * 100
}

// IsAlerting reports whether the room has a threshold and live utilisation
// has reached it.
func IsAlerting(room floorplan.Room) bool {
	if room.OccupancyThreshold == nil {
		return false
	}
	return Percent(room) >= float64(*room.OccupancyThreshold)
}

// IsFull reports whether every seat in the room is taken.
func IsFull(room floorplan.Room) bool {
	return len(room.Occupants) >= room.Capacity
}

// Alert describes a room at or above its threshold.
type Alert struct {
	RoomID    string  `json:"room_id"`
	RoomName  string  `json:"room_name"`
	FloorID   string  `json:"floor_id"`
	Occupants int     `json:"occupants"`
	Capacity  int     `json:"capacity"`
	Percent   float64 `json:"percent"`
	Threshold int     `json:"threshold"`
}

// Alerts lists every alerting room in plan order.
func Alerts(plan floorplan.FloorPlan) []Alert {
	var alerts []Alert
	for _, room := range plan.Rooms {
		if !IsAlerting(room) {
			continue
		}
		alerts = append(alerts, Alert{
			RoomID:    room.ID,
			RoomName:  room.Name,
			FloorID:   room.FloorID,
			Occupants: len(room.Occupants),
			Capacity:  room.Capacity,
			Percent:   Percent(room),
			Threshold: *room.OccupancyThreshold,
		})
	}
	return alerts
}

// FloorStats summarises one floor.
type FloorStats struct {
	FloorID        string `json:"floor_id"`
	Rooms          int    `json:"rooms"`
	TotalCapacity  int    `json:"total_capacity"`
	TotalOccupants int    `json:"total_occupants"`
	OccupancyRate  int    `json:"occupancy_rate"`
	Alerting       int    `json:"alerting"`
}

// Stats aggregates capacity and occupancy for a floor. An empty floorID
// covers the whole building.
func Stats(plan floorplan.FloorPlan, floorID string) FloorStats {
	stats := FloorStats{FloorID: floorID}
	for _, room := range plan.RoomsOnFloor(floorID) {
		stats.Rooms++
		stats.TotalCapacity += room.Capacity
		stats.TotalOccupants += len(room.Occupants)
		if IsAlerting(room) {
			stats.Alerting++
		}
	}
	if stats.TotalCapacity > 0 {
		stats.OccupancyRate = int(math.Round(float64(stats.TotalOccupants) / float64(stats.TotalCapacity) * 100))
	}
	return stats
}
