package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-planner/internal/floorplan"
)

func TestByName(t *testing.T) {
	for name, want := range map[string]string{"": NameJSON, "json": NameJSON, " CBOR ": NameCBOR} {
		c, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, want, c.Name())
	}

	_, err := ByName("xml")
	assert.Error(t, err)
}

func TestCodecsPreserveFloorPlans(t *testing.T) {
	threshold := 80
	start := time.Date(2024, 1, 2, 9, 30, 0, 123456789, time.UTC)
	plan := floorplan.FloorPlan{
		ID:           "fp_main",
		Version:      12,
		LastModified: start,
		Rooms: []floorplan.Room{{
			ID:                 "r3",
			Name:               "Open Workspace",
			Capacity:           10,
			Category:           floorplan.CategoryDesk,
			OccupancyThreshold: &threshold,
			Occupants:          []string{"john@company.com"},
			Schedule: []floorplan.Booking{{
				ID:    "b1",
				Start: start,
				End:   start.Add(time.Hour),
				Kind:  floorplan.BookingDesk,
				Live:  true,
			}},
		}},
	}

	for _, c := range []Codec{JSON{}, CBOR{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(plan)
			require.NoError(t, err)

			var got floorplan.FloorPlan
			require.NoError(t, c.Unmarshal(data, &got))
			assert.True(t, got.LastModified.Equal(start))
			assert.True(t, got.Rooms[0].Schedule[0].End.Equal(start.Add(time.Hour)))
			assert.Equal(t, 80, *got.Rooms[0].OccupancyThreshold)
			assert.Equal(t, plan.Rooms[0].Occupants, got.Rooms[0].Occupants)
		})
	}
}

func TestCBORIsDeterministic(t *testing.T) {
	v := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := CBOR{}.Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := CBOR{}.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
