package application

import (
	"context"
	"log/slog"

	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/occupancy"
)

// mutation edits a fresh copy of the latest plan. Returning false leaves the
// store untouched. It may run once per attempt, so it must derive everything
// from the plan it is given.
type mutation func(plan *floorplan.FloorPlan) (changed bool, err error)

// mutate applies fn to the latest plan and commits it at the next version,
// starting over from a fresh fetch when another writer wins the race.
func (d Deps) mutate(ctx context.Context, logger *slog.Logger, fn mutation) (floorplan.FloorPlan, error) {
	var latest floorplan.FloorPlan
	for attempt := 1; attempt <= d.Attempts; attempt++ {
		if attempt > 1 {
			d.Recorder.ObserveRetry()
			logger.DebugContext(ctx, "retrying after lost commit race", "attempt", attempt, "latest_version", latest.Version)
		}

		current, err := d.Store.Fetch(ctx)
		if err != nil {
			return floorplan.FloorPlan{}, err
		}
		next := current.Clone()
		changed, err := fn(&next)
		if err != nil {
			return floorplan.FloorPlan{}, err
		}
		if !changed {
			return current, nil
		}

		next.Touch(current.Version+1, d.Now())
		result, err := d.Store.Commit(ctx, next)
		if err != nil {
			return floorplan.FloorPlan{}, err
		}
		if result.Committed {
			d.Recorder.SetAlertingRooms(len(occupancy.Alerts(result.Plan)))
			return result.Plan, nil
		}
		latest = result.Plan
	}
	return floorplan.FloorPlan{}, &StaleVersionError{Latest: latest}
}
