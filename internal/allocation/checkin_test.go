package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-planner/internal/floorplan"
	tf "github.com/example/workspace-planner/internal/testfixtures"
)

func TestCheckIn(t *testing.T) {
	now := tf.ReferenceTime()
	sarah := floorplan.Requester{UserID: "sarah@company.com", DisplayName: "Sarah Connor"}

	newPlan := func() floorplan.FloorPlan {
		return tf.NewPlan(tf.WithPlanRooms(
			tf.NewRoom(tf.WithRoomID("open"), tf.WithRoomCategory(floorplan.CategoryDesk), tf.WithRoomOccupants("sarah@company.com", "john@company.com")),
			tf.NewRoom(tf.WithRoomID("dev"), tf.WithRoomCategory(floorplan.CategoryDesk), tf.WithRoomPopularity(80)),
		))
	}

	t.Run("moves the user and records a live booking", func(t *testing.T) {
		plan := newPlan()
		booking, err := CheckIn(&plan, CheckInRequest{Requester: sarah, RoomID: "dev", Duration: 4 * time.Hour}, now, tf.NewIDGenerator("live").NextFunc())
		require.NoError(t, err)

		assert.Equal(t, "live-1", booking.ID)
		assert.Equal(t, floorplan.BookingDesk, booking.Kind)
		assert.Equal(t, LiveCheckInTitle, booking.Title)
		assert.True(t, booking.Live)
		assert.Equal(t, now, booking.Start)
		assert.Equal(t, now.Add(4*time.Hour), booking.End)

		open, _ := plan.Room("open")
		dev, _ := plan.Room("dev")
		assert.Equal(t, []string{"john@company.com"}, open.Occupants)
		assert.Equal(t, []string{"sarah@company.com"}, dev.Occupants)
		assert.Equal(t, 81, dev.Popularity)
		assert.Len(t, dev.Schedule, 1)
	})

	t.Run("checking in twice keeps a single seat", func(t *testing.T) {
		plan := newPlan()
		next := tf.NewIDGenerator("live").NextFunc()
		_, err := CheckIn(&plan, CheckInRequest{Requester: sarah, RoomID: "open", Duration: time.Hour}, now, next)
		require.NoError(t, err)

		open, _ := plan.Room("open")
		assert.ElementsMatch(t, []string{"john@company.com", "sarah@company.com"}, open.Occupants)
	})

	t.Run("unknown room leaves the plan untouched", func(t *testing.T) {
		plan := newPlan()
		before := plan.Clone()
		_, err := CheckIn(&plan, CheckInRequest{Requester: sarah, RoomID: "nope", Duration: time.Hour}, now, tf.NewIDGenerator("live").NextFunc())
		assert.ErrorIs(t, err, ErrRoomNotFound)
		assert.Equal(t, before, plan)
	})
}

func TestCheckOut(t *testing.T) {
	booking := tf.NewBooking(tf.ReferenceTime(), tf.ReferenceTime().Add(time.Hour))
	plan := tf.NewPlan(tf.WithPlanRooms(
		tf.NewRoom(tf.WithRoomID("a"), tf.WithRoomOccupants("u1", "u2"), tf.WithRoomBookings(booking)),
		tf.NewRoom(tf.WithRoomID("b"), tf.WithRoomOccupants("u1")),
	))

	left := CheckOut(&plan, "u1")
	assert.Equal(t, []string{"a", "b"}, left)

	a, _ := plan.Room("a")
	b, _ := plan.Room("b")
	assert.Equal(t, []string{"u2"}, a.Occupants)
	assert.Empty(t, b.Occupants)
	assert.Len(t, a.Schedule, 1)

	_, found := LocateOccupant(plan, "u1")
	assert.False(t, found)
	room, found := LocateOccupant(plan, "u2")
	require.True(t, found)
	assert.Equal(t, "a", room.ID)

	assert.Empty(t, CheckOut(&plan, "nobody"))
}
