package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/workspace-planner/internal/directory"
	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/store"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	Name    string
	IsAdmin bool
}

// PrincipalFromUser adapts a directory account.
func PrincipalFromUser(u directory.User) Principal {
	return Principal{UserID: u.ID, Name: u.Name, IsAdmin: u.IsAdmin()}
}

// Requester is the identity recorded on bookings made by the principal.
func (p Principal) Requester() floorplan.Requester {
	return floorplan.Requester{UserID: p.UserID, DisplayName: p.Name}
}

// MeetingInput captures caller provided meeting fields. FloorID is only used
// by best-fit reservations.
type MeetingInput struct {
	Title     string
	Attendees int
	FloorID   string
	Start     time.Time
	End       time.Time
}

// CheckInInput captures a walk-in check-in. A zero Duration selects the
// default for the kind of desk.
type CheckInInput struct {
	RoomID           string
	Duration         time.Duration
	NeedsWorkstation bool
}

const (
	// DefaultCheckInDuration applies to workstation check-ins without a duration.
	DefaultCheckInDuration = 60 * time.Minute
	// DefaultLaptopCheckInDuration applies to laptop check-ins without a duration.
	DefaultLaptopCheckInDuration = 240 * time.Minute
)

// PlanStore is the subset of the versioned store the services depend on.
type PlanStore interface {
	Fetch(ctx context.Context) (floorplan.FloorPlan, error)
	Commit(ctx context.Context, candidate floorplan.FloorPlan) (store.CommitResult, error)
	TriggerExternalMutation(ctx context.Context) (store.CommitResult, error)
}

// Recorder receives business metrics.
type Recorder interface {
	ObserveAllocation(mode, outcome string)
	ObserveCheckIn(action string)
	ObserveRetry()
	SetAlertingRooms(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAllocation(string, string) {}
func (nopRecorder) ObserveCheckIn(string)            {}
func (nopRecorder) ObserveRetry()                    {}
func (nopRecorder) SetAlertingRooms(int)             {}

// Deps bundles the collaborators shared by every service.
type Deps struct {
	Store       PlanStore
	Recorder    Recorder
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
	// Attempts bounds read-modify-write retries after a lost commit race.
	Attempts int
}

func (d Deps) withDefaults() Deps {
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.IDGenerator == nil {
		d.IDGenerator = uuid.NewString
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Attempts < 1 {
		d.Attempts = 1
	}
	d.Logger = defaultLogger(d.Logger)
	return d
}
