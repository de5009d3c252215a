package floorplan

import (
	"fmt"
	"strings"
)

// GridSize is the number of cells along each edge of the editor canvas.
const GridSize = 12

// Validate reports structural problems keyed by field path. An empty result
// means the plan is well formed.
func (p FloorPlan) Validate() map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(p.ID) == "" {
		problems["id"] = "id is required"
	}

	floors := make(map[string]struct{}, len(p.Floors))
	for _, f := range p.Floors {
		floors[f.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(p.Rooms))
	for i, room := range p.Rooms {
		field := func(name string) string { return fmt.Sprintf("rooms[%d].%s", i, name) }

		if strings.TrimSpace(room.ID) == "" {
			problems[field("id")] = "id is required"
		} else if _, dup := seen[room.ID]; dup {
			problems[field("id")] = "id must be unique"
		}
		seen[room.ID] = struct{}{}

		if strings.TrimSpace(room.Name) == "" {
			problems[field("name")] = "name is required"
		}
		if room.Capacity <= 0 {
			problems[field("capacity")] = "capacity must be positive"
		}
		if !room.Category.Valid() {
			problems[field("category")] = "category is unknown"
		}
		if len(floors) > 0 {
			if _, ok := floors[room.FloorID]; !ok {
				problems[field("floor_id")] = "floor does not exist"
			}
		}
		// Thresholds above 100 alert only once the room is overfull.
		if t := room.OccupancyThreshold; t != nil && *t < 0 {
			problems[field("occupancy_threshold")] = "threshold must not be negative"
		}
		pl := room.Placement
		if pl.X < 0 || pl.Y < 0 || pl.Width <= 0 || pl.Height <= 0 || pl.X+pl.Width > GridSize || pl.Y+pl.Height > GridSize {
			problems[field("placement")] = "placement must fit the grid"
		}
		for j, b := range room.Schedule {
			if !b.End.After(b.Start) {
				problems[fmt.Sprintf("rooms[%d].schedule[%d]", i, j)] = "start must be before end"
			}
		}
	}
	return problems
}
