package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-planner/internal/floorplan"
)

func threshold(v int) *int { return &v }

func room(id string, capacity, occupants int, limit *int) floorplan.Room {
	r := floorplan.Room{ID: id, Name: id, FloorID: "ground", Capacity: capacity, OccupancyThreshold: limit}
	for i := 0; i < occupants; i++ {
		r.Occupants = append(r.Occupants, id+"-user-"+string(rune('a'+i)))
	}
	return r
}

func TestIsAlerting(t *testing.T) {
	tests := []struct {
		name string
		room floorplan.Room
		want bool
	}{
		{"no threshold", room("r", 10, 10, nil), false},
		{"below threshold", room("r", 10, 7, threshold(80)), false},
		{"at threshold", room("r", 10, 8, threshold(80)), true},
		{"above threshold", room("r", 10, 9, threshold(80)), true},
		{"zero capacity is zero percent", room("r", 0, 0, threshold(50)), false},
		{"zero capacity with occupants does not alert", room("r", 0, 3, threshold(50)), false},
		{"threshold above 100 tolerates overfull room", room("r", 10, 12, threshold(150)), false},
		{"threshold above 100 alerts once exceeded", room("r", 10, 15, threshold(150)), true},
		{"zero threshold always alerts", room("r", 4, 0, threshold(0)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAlerting(tt.room); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAlertsAndStats(t *testing.T) {
	plan := floorplan.FloorPlan{Rooms: []floorplan.Room{
		room("busy", 4, 4, threshold(100)),
		room("quiet", 10, 1, threshold(80)),
	}}
	upstairs := room("dev", 6, 3, nil)
	upstairs.FloorID = "first"
	plan.Rooms = append(plan.Rooms, upstairs)

	alerts := Alerts(plan)
	require.Len(t, alerts, 1)
	assert.Equal(t, "busy", alerts[0].RoomID)
	assert.InDelta(t, 100, alerts[0].Percent, 0.001)

	ground := Stats(plan, "ground")
	assert.Equal(t, FloorStats{FloorID: "ground", Rooms: 2, TotalCapacity: 14, TotalOccupants: 5, OccupancyRate: 36, Alerting: 1}, ground)

	all := Stats(plan, "")
	assert.Equal(t, 3, all.Rooms)
	assert.Equal(t, 40, all.OccupancyRate)

	assert.Zero(t, Stats(plan, "roof").OccupancyRate)
}
