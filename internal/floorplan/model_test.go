package floorplan

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorPlanClone(t *testing.T) {
	threshold := 80
	original := FloorPlan{
		ID:      "fp",
		Version: 3,
		Floors:  []Floor{{ID: "ground", Name: "Ground", Level: 0}},
		Rooms: []Room{{
			ID:                 "r1",
			Features:           []string{"pc"},
			OccupancyThreshold: &threshold,
			Occupants:          []string{"alice"},
			Schedule:           []Booking{{ID: "b1"}},
		}},
	}

	clone := original.Clone()
	clone.Rooms[0].Features[0] = "mac"
	clone.Rooms[0].Occupants = append(clone.Rooms[0].Occupants, "bob")
	clone.Rooms[0].Schedule[0].ID = "b2"
	*clone.Rooms[0].OccupancyThreshold = 10
	clone.Floors[0].Name = "Lobby"

	assert.Equal(t, "pc", original.Rooms[0].Features[0])
	assert.Equal(t, []string{"alice"}, original.Rooms[0].Occupants)
	assert.Equal(t, "b1", original.Rooms[0].Schedule[0].ID)
	assert.Equal(t, 80, *original.Rooms[0].OccupancyThreshold)
	assert.Equal(t, "Ground", original.Floors[0].Name)
}

func TestFloorPlanRoomLookup(t *testing.T) {
	plan := FloorPlan{Rooms: []Room{{ID: "a", FloorID: "ground"}, {ID: "b", FloorID: "first"}}}

	idx, ok := plan.RoomIndex("b")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = plan.Room("missing")
	assert.False(t, ok)

	assert.Len(t, plan.RoomsOnFloor("first"), 1)
	assert.Len(t, plan.RoomsOnFloor(""), 2)
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)

	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	plan := seed(now)

	assert.Equal(t, "fp_main", plan.ID)
	assert.Equal(t, InitialVersion, plan.Version)
	assert.Equal(t, now, plan.LastModified)
	assert.Len(t, plan.Floors, 2)
	assert.Len(t, plan.Rooms, 13)

	devHub, ok := plan.Room("r6")
	require.True(t, ok)
	assert.True(t, devHub.HasFeature(FeatureWorkstation))
	require.NotNil(t, devHub.OccupancyThreshold)
	assert.Equal(t, 90, *devHub.OccupancyThreshold)

	// each call hands out an independent copy
	plan.Rooms[0].Name = "changed"
	assert.Equal(t, "Boardroom Alpha", seed(now).Rooms[0].Name)
}

func TestLoadSeedRejectsInvalidDocument(t *testing.T) {
	doc := `
id: fp
rooms:
  - {id: a, floor: g, name: A, capacity: 0, category: meeting, placement: {x: 0, y: 0, width: 1, height: 1}}
`
	_, err := LoadSeed(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity must be positive")
}

func TestValidate(t *testing.T) {
	valid := Room{ID: "a", Name: "A", Capacity: 2, Category: CategoryDesk, Placement: Placement{Width: 1, Height: 1}}
	start := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		plan  FloorPlan
		field string
	}{
		{name: "missing id", plan: FloorPlan{Rooms: []Room{valid}}, field: "id"},
		{name: "duplicate room", plan: FloorPlan{ID: "fp", Rooms: []Room{valid, valid}}, field: "rooms[1].id"},
		{name: "unknown category", plan: FloorPlan{ID: "fp", Rooms: []Room{func() Room { r := valid; r.Category = "garage"; return r }()}}, field: "rooms[0].category"},
		{name: "off grid", plan: FloorPlan{ID: "fp", Rooms: []Room{func() Room { r := valid; r.Placement.X = GridSize; return r }()}}, field: "rooms[0].placement"},
		{name: "unknown floor", plan: FloorPlan{ID: "fp", Floors: []Floor{{ID: "ground"}}, Rooms: []Room{func() Room { r := valid; r.FloorID = "roof"; return r }()}}, field: "rooms[0].floor_id"},
		{name: "negative threshold", plan: FloorPlan{ID: "fp", Rooms: []Room{func() Room {
			r := valid
			limit := -1
			r.OccupancyThreshold = &limit
			return r
		}()}}, field: "rooms[0].occupancy_threshold"},
		{name: "empty booking", plan: FloorPlan{ID: "fp", Rooms: []Room{func() Room {
			r := valid
			r.Schedule = []Booking{{ID: "b", Start: start, End: start}}
			return r
		}()}}, field: "rooms[0].schedule[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := tt.plan.Validate()
			if _, ok := problems[tt.field]; !ok {
				t.Fatalf("expected problem for %s, got %v", tt.field, problems)
			}
		})
	}

	t.Run("well formed", func(t *testing.T) {
		plan := FloorPlan{ID: "fp", Rooms: []Room{valid}}
		assert.Empty(t, plan.Validate())
	})

	t.Run("threshold above 100", func(t *testing.T) {
		r := valid
		limit := 150
		r.OccupancyThreshold = &limit
		plan := FloorPlan{ID: "fp", Rooms: []Room{r}}
		assert.Empty(t, plan.Validate())
	})
}
