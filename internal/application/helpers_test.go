package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/persistence/memory"
	"github.com/example/workspace-planner/internal/store"
	tf "github.com/example/workspace-planner/internal/testfixtures"
)

var (
	admin    = Principal{UserID: "ada@company.com", Name: "Ada", IsAdmin: true}
	employee = Principal{UserID: "eve@company.com", Name: "Eve"}
)

type recorderStub struct {
	mu          sync.Mutex
	allocations []string
	checkIns    []string
	retries     int
	alerting    int
}

func (r *recorderStub) ObserveAllocation(mode, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allocations = append(r.allocations, mode+":"+outcome)
}

func (r *recorderStub) ObserveCheckIn(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkIns = append(r.checkIns, action)
}

func (r *recorderStub) ObserveRetry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

func (r *recorderStub) SetAlertingRooms(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerting = n
}

// racingStore lets another writer win the next `losses` commits.
type racingStore struct {
	*store.Store
	losses int
}

func (r *racingStore) Commit(ctx context.Context, candidate floorplan.FloorPlan) (store.CommitResult, error) {
	if r.losses > 0 {
		r.losses--
		if _, err := r.Store.TriggerExternalMutation(ctx); err != nil {
			return store.CommitResult{}, err
		}
	}
	return r.Store.Commit(ctx, candidate)
}

type env struct {
	deps     Deps
	store    *store.Store
	clock    *tf.Clock
	recorder *recorderStub
}

func officePlan() floorplan.FloorPlan {
	return tf.NewPlan(tf.WithPlanRooms(
		tf.NewRoom(tf.WithRoomID("huddle"), tf.WithRoomCapacity(4)),
		tf.NewRoom(tf.WithRoomID("board"), tf.WithRoomCapacity(8)),
		tf.NewRoom(tf.WithRoomID("dev"), tf.WithRoomFloor("first"), tf.WithRoomCategory(floorplan.CategoryDesk),
			tf.WithRoomCapacity(2), tf.WithRoomFeatures(floorplan.FeatureWorkstation), tf.WithRoomThreshold(50)),
		tf.NewRoom(tf.WithRoomID("open"), tf.WithRoomCategory(floorplan.CategoryDesk), tf.WithRoomCapacity(6)),
	))
}

func newEnv(t *testing.T, plan floorplan.FloorPlan) *env {
	t.Helper()
	clock := tf.NewClock(tf.ReferenceTime())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.New(memory.NewStorage(), tf.SeedFunc(plan), store.WithClock(clock.NowFunc()), store.WithLogger(logger))
	require.NoError(t, err)

	rec := &recorderStub{}
	return &env{
		deps: Deps{
			Store:       st,
			Recorder:    rec,
			IDGenerator: tf.NewIDGenerator("bk").NextFunc(),
			Now:         clock.NowFunc(),
			Logger:      logger,
			Attempts:    3,
		},
		store:    st,
		clock:    clock,
		recorder: rec,
	}
}

func (e *env) fetch(t *testing.T) floorplan.FloorPlan {
	t.Helper()
	plan, err := e.store.Fetch(context.Background())
	require.NoError(t, err)
	return plan
}
