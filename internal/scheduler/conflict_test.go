package scheduler

import (
	"testing"
	"time"

	"github.com/example/workspace-planner/internal/floorplan"
)

var base = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

func at(hours float64) time.Time {
	return base.Add(time.Duration(hours * float64(time.Hour)))
}

func booking(id string, start, end float64) floorplan.Booking {
	return floorplan.Booking{ID: id, Start: at(start), End: at(end), Kind: floorplan.BookingMeeting}
}

func TestDetectConflicts(t *testing.T) {
	schedule := []floorplan.Booking{booking("b1", 1, 2), booking("b2", 3, 4)}

	t.Run("room overlap produces conflict", func(t *testing.T) {
		conflicts := DetectConflicts(schedule, Interval{Start: at(1.5), End: at(3.5)})
		if len(conflicts) != 2 {
			t.Fatalf("expected 2 conflicts, got %d", len(conflicts))
		}
		if conflicts[0].WithBookingID != "b1" || conflicts[1].WithBookingID != "b2" {
			t.Fatalf("unexpected conflicts %+v", conflicts)
		}
	})

	t.Run("touching endpoints do not conflict", func(t *testing.T) {
		if got := DetectConflicts(schedule, Interval{Start: at(2), End: at(3)}); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("non-overlapping schedules yield no conflicts", func(t *testing.T) {
		if Overlaps(schedule, Interval{Start: at(5), End: at(6)}) {
			t.Fatalf("expected no overlap")
		}
		if Overlaps(nil, Interval{Start: at(0), End: at(10)}) {
			t.Fatalf("expected empty schedule to be free")
		}
	})
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"contained", Interval{at(0), at(4)}, Interval{at(1), at(2)}, true},
		{"identical", Interval{at(1), at(2)}, Interval{at(1), at(2)}, true},
		{"partial", Interval{at(0), at(2)}, Interval{at(1), at(3)}, true},
		{"before", Interval{at(0), at(1)}, Interval{at(1), at(2)}, false},
		{"after", Interval{at(3), at(4)}, Interval{at(1), at(2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Fatalf("expected symmetric result %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNextFreeAt(t *testing.T) {
	schedule := []floorplan.Booking{booking("past", -3, -1), booking("late", 1, 5), booking("soon", 0, 2)}

	got, ok := NextFreeAt(schedule, base)
	if !ok {
		t.Fatalf("expected a next free time")
	}
	if !got.Equal(at(2)) {
		t.Fatalf("expected %v, got %v", at(2), got)
	}

	if _, ok := NextFreeAt([]floorplan.Booking{booking("past", -3, -1)}, base); ok {
		t.Fatalf("expected no estimate when every booking has ended")
	}
}

func TestUpcoming(t *testing.T) {
	schedule := []floorplan.Booking{booking("late", 3, 4), booking("past", -2, -1), booking("early", 1, 2)}

	got := Upcoming(schedule, base)
	if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
		t.Fatalf("unexpected upcoming bookings %+v", got)
	}
}
