package allocation

import (
	"sort"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/occupancy"
	"github.com/example/workspace-planner/internal/scheduler"
)

// DeskQuery narrows a desk recommendation.
type DeskQuery struct {
	NeedsWorkstation bool
	FloorID          string
}

// DeskRecommendation is one candidate space with its live availability.
type DeskRecommendation struct {
	Room       floorplan.Room `json:"room"`
	IsFull     bool           `json:"is_full"`
	NextFreeAt *time.Time     `json:"next_free_at,omitempty"`
}

// RecommendDesks lists places to sit. Workstation users only see rooms with
// fixed computers; everyone else sees laptop-friendly rooms first and may
// also sit in a cafeteria.
func RecommendDesks(plan floorplan.FloorPlan, query DeskQuery, now time.Time) []DeskRecommendation {
	pool := make([]floorplan.Room, 0, len(plan.Rooms))
	for _, room := range plan.RoomsOnFloor(query.FloorID) {
		if !deskEligible(room, query.NeedsWorkstation) {
			continue
		}
		if query.NeedsWorkstation && !room.HasFeature(floorplan.FeatureWorkstation) {
			continue
		}
		pool = append(pool, room)
	}

	if !query.NeedsWorkstation {
		sort.SliceStable(pool, func(i, j int) bool {
			return !pool[i].HasFeature(floorplan.FeatureWorkstation) && pool[j].HasFeature(floorplan.FeatureWorkstation)
		})
	}

	out := make([]DeskRecommendation, 0, len(pool))
	for _, room := range pool {
		rec := DeskRecommendation{Room: room.Clone(), IsFull: occupancy.IsFull(room)}
		if rec.IsFull {
			if at, ok := scheduler.NextFreeAt(room.Schedule, now); ok {
				rec.NextFreeAt = &at
			}
		}
		out = append(out, rec)
	}
	return out
}

func deskEligible(room floorplan.Room, needsWorkstation bool) bool {
	switch room.Category {
	case floorplan.CategoryDesk, floorplan.CategoryCommon:
		return true
	case floorplan.CategoryCafeteria:
		return !needsWorkstation
	}
	return false
}
