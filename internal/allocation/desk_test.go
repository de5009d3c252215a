package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-planner/internal/floorplan"
	tf "github.com/example/workspace-planner/internal/testfixtures"
)

func deskPlan(now time.Time) floorplan.FloorPlan {
	return tf.NewPlan(tf.WithPlanRooms(
		tf.NewRoom(tf.WithRoomID("dev"), tf.WithRoomCategory(floorplan.CategoryDesk), tf.WithRoomFeatures("pc"), tf.WithRoomCapacity(2),
			tf.WithRoomOccupants("a", "b"),
			tf.WithRoomBookings(
				tf.NewBooking(now.Add(-3*time.Hour), now.Add(-time.Hour)),
				tf.NewBooking(now.Add(-time.Hour), now.Add(2*time.Hour)),
				tf.NewBooking(now.Add(-time.Hour), now.Add(time.Hour)),
			)),
		tf.NewRoom(tf.WithRoomID("open"), tf.WithRoomCategory(floorplan.CategoryDesk), tf.WithRoomCapacity(10)),
		tf.NewRoom(tf.WithRoomID("board"), tf.WithRoomCategory(floorplan.CategoryMeeting), tf.WithRoomFeatures("pc")),
		tf.NewRoom(tf.WithRoomID("cafe"), tf.WithRoomCategory(floorplan.CategoryCafeteria)),
		tf.NewRoom(tf.WithRoomID("lounge"), tf.WithRoomCategory(floorplan.CategoryCommon), tf.WithRoomFloor("first")),
	))
}

func ids(recs []DeskRecommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Room.ID)
	}
	return out
}

func TestRecommendDesks(t *testing.T) {
	now := tf.ReferenceTime()
	plan := deskPlan(now)

	t.Run("workstation users only see pc rooms", func(t *testing.T) {
		recs := RecommendDesks(plan, DeskQuery{NeedsWorkstation: true}, now)
		require.Equal(t, []string{"dev"}, ids(recs))
		assert.True(t, recs[0].IsFull)
		require.NotNil(t, recs[0].NextFreeAt)
		assert.Equal(t, now.Add(time.Hour), *recs[0].NextFreeAt)
	})

	t.Run("laptop users get non-pc rooms first and cafeterias", func(t *testing.T) {
		recs := RecommendDesks(plan, DeskQuery{}, now)
		assert.Equal(t, []string{"open", "cafe", "lounge", "dev"}, ids(recs))
		assert.False(t, recs[0].IsFull)
		assert.Nil(t, recs[0].NextFreeAt)
	})

	t.Run("floor filter", func(t *testing.T) {
		recs := RecommendDesks(plan, DeskQuery{FloorID: "first"}, now)
		assert.Equal(t, []string{"lounge"}, ids(recs))
	})

	t.Run("full room without future bookings has no estimate", func(t *testing.T) {
		full := tf.NewPlan(tf.WithPlanRooms(tf.NewRoom(tf.WithRoomCategory(floorplan.CategoryDesk), tf.WithRoomCapacity(1), tf.WithRoomOccupants("a"))))
		recs := RecommendDesks(full, DeskQuery{}, now)
		require.Len(t, recs, 1)
		assert.True(t, recs[0].IsFull)
		assert.Nil(t, recs[0].NextFreeAt)
	})

	t.Run("results are copies", func(t *testing.T) {
		recs := RecommendDesks(plan, DeskQuery{NeedsWorkstation: true}, now)
		recs[0].Room.Occupants[0] = "mallory"
		assert.Equal(t, "a", plan.Rooms[0].Occupants[0])
	})
}
