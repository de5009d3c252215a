package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/session"
	"github.com/example/workspace-planner/internal/store"
)

const onConflictAbort = "abort"

// errEditAborted is returned when a save conflicts and the operator chose to abort.
var errEditAborted = errors.New("edit aborted: floor plan changed remotely")

// roomEdit lists the attributes to change; nil fields are left untouched.
type roomEdit struct {
	RoomID         string
	Name           *string
	Capacity       *int
	Threshold      *int
	ClearThreshold bool
	Features       *[]string
}

func (e roomEdit) apply(plan *floorplan.FloorPlan) error {
	idx, ok := plan.RoomIndex(e.RoomID)
	if !ok {
		return fmt.Errorf("room %q not found", e.RoomID)
	}
	room := &plan.Rooms[idx]
	if e.Name != nil {
		room.Name = *e.Name
	}
	if e.Capacity != nil {
		room.Capacity = *e.Capacity
	}
	switch {
	case e.ClearThreshold:
		room.OccupancyThreshold = nil
	case e.Threshold != nil:
		v := *e.Threshold
		room.OccupancyThreshold = &v
	}
	if e.Features != nil {
		room.Features = slices.Clone(*e.Features)
	}

	if problems := plan.Validate(); len(problems) > 0 {
		keys := slices.Sorted(maps.Keys(problems))
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+problems[k])
		}
		return fmt.Errorf("invalid edit: %s", strings.Join(parts, "; "))
	}
	return nil
}

func newEditCmd() *cobra.Command {
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Edit the floor plan through an optimistic session",
	}
	edit.AddCommand(newEditRoomCmd())
	return edit
}

func newEditRoomCmd() *cobra.Command {
	var (
		e          roomEdit
		name       string
		capacity   int
		threshold  int
		features   []string
		onConflict string
	)
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Change the attributes of one room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("name") {
				e.Name = &name
			}
			if flags.Changed("capacity") {
				e.Capacity = &capacity
			}
			if flags.Changed("threshold") {
				e.Threshold = &threshold
			}
			if flags.Changed("features") {
				e.Features = &features
			}
			if e.Name == nil && e.Capacity == nil && e.Threshold == nil && e.Features == nil && !e.ClearThreshold {
				return errors.New("nothing to change: pass at least one attribute flag")
			}
			return withApp(cmd, func(a *app) error {
				return runEdit(cmd.Context(), a.store, a.logger, e, onConflict, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&e.RoomID, "id", "", "room id")
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "new capacity")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "occupancy alert threshold in percent")
	cmd.Flags().BoolVar(&e.ClearThreshold, "clear-threshold", false, "remove the occupancy alert threshold")
	cmd.Flags().StringSliceVar(&features, "features", nil, "comma separated feature list, replaces the current one")
	cmd.Flags().StringVar(&onConflict, "on-conflict", onConflictAbort, "accept_remote, force_local or abort")
	_ = cmd.MarkFlagRequired("id")
	cmd.MarkFlagsMutuallyExclusive("threshold", "clear-threshold")
	return cmd
}

// runEdit opens a session, applies the edit and saves it, resolving a
// conflicting save with the chosen strategy.
func runEdit(ctx context.Context, backend session.Backend, logger *slog.Logger, e roomEdit, onConflict string, out io.Writer) error {
	var strategy store.Strategy
	if onConflict != onConflictAbort {
		s, err := store.ParseStrategy(onConflict)
		if err != nil {
			return err
		}
		strategy = s
	}

	sess := session.New(backend, time.Now, logger)
	if _, err := sess.Open(ctx); err != nil {
		return err
	}
	if err := sess.Edit(e.apply); err != nil {
		return err
	}

	res, err := sess.Save(ctx)
	if err != nil {
		return err
	}
	if res.Conflict != nil {
		fmt.Fprintf(out, "conflict: local version %d, remote version %d\n", res.Conflict.Local.Version, res.Conflict.Remote.Version)
		if strategy == "" {
			return fmt.Errorf("%w (remote version %d)", errEditAborted, res.Conflict.Remote.Version)
		}
		// One re-attempt only; a second conflict goes back to the operator.
		res, err = sess.Resolve(ctx, strategy)
		if err != nil {
			return err
		}
		if res.Conflict != nil {
			fmt.Fprintf(out, "conflict again: local version %d, remote version %d\n", res.Conflict.Local.Version, res.Conflict.Remote.Version)
			return fmt.Errorf("%w again (remote version %d)", errEditAborted, res.Conflict.Remote.Version)
		}
	}

	if res.Committed {
		fmt.Fprintf(out, "committed version %d\n", res.Plan.Version)
	} else {
		fmt.Fprintf(out, "adopted remote version %d\n", res.Plan.Version)
	}
	return nil
}
