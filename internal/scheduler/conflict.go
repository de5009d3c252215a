// Package scheduler answers interval questions about room schedules.
package scheduler

import (
	"sort"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval has positive length.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Conflict details an existing booking that collides with a candidate interval.
type Conflict struct {
	WithBookingID string
	Kind          floorplan.BookingKind
	Interval      Interval
}

// DetectConflicts lists every booking in schedule that overlaps candidate.
func DetectConflicts(schedule []floorplan.Booking, candidate Interval) []Conflict {
	var conflicts []Conflict
	for _, b := range schedule {
		existing := Interval{Start: b.Start, End: b.End}
		if existing.Overlaps(candidate) {
			conflicts = append(conflicts, Conflict{WithBookingID: b.ID, Kind: b.Kind, Interval: existing})
		}
	}
	return conflicts
}

// Overlaps reports whether candidate collides with any booking in schedule.
func Overlaps(schedule []floorplan.Booking, candidate Interval) bool {
	for _, b := range schedule {
		if (Interval{Start: b.Start, End: b.End}).Overlaps(candidate) {
			return true
		}
	}
	return false
}

// NextFreeAt estimates when a room frees up: the earliest end among bookings
// that have not finished yet. ok is false when there is no such booking.
func NextFreeAt(schedule []floorplan.Booking, now time.Time) (at time.Time, ok bool) {
	for _, b := range schedule {
		if !b.End.After(now) {
			continue
		}
		if !ok || b.End.Before(at) {
			at, ok = b.End, true
		}
	}
	return at, ok
}

// Upcoming returns the bookings that have not ended yet, ordered by start.
func Upcoming(schedule []floorplan.Booking, now time.Time) []floorplan.Booking {
	out := make([]floorplan.Booking, 0, len(schedule))
	for _, b := range schedule {
		if b.End.After(now) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
