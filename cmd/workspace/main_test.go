package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-planner/internal/directory"
	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/persistence/memory"
	"github.com/example/workspace-planner/internal/persistence/sqlite"
	"github.com/example/workspace-planner/internal/store"
)

func useSQLite(t *testing.T) string {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "workspace.db")
	t.Setenv("WORKSPACE_STORAGE_DRIVER", "sqlite")
	t.Setenv("WORKSPACE_STORAGE_DSN", dsn)
	t.Setenv("WORKSPACE_LOG_LEVEL", "error")
	return dsn
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func openPlan(t *testing.T, dsn string) floorplan.FloorPlan {
	t.Helper()
	ctx := context.Background()
	repo, err := sqlite.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	seed, err := floorplan.DefaultSeed()
	require.NoError(t, err)
	st, err := store.New(repo, seed)
	require.NoError(t, err)
	plan, err := st.Fetch(ctx)
	require.NoError(t, err)
	return plan
}

func TestCommandsShareBackend(t *testing.T) {
	dsn := useSQLite(t)

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "directory holds 4 users")
	assert.Contains(t, out, "floor plan at version 1")

	out, err = execute(t, "trigger-external")
	require.NoError(t, err)
	assert.Contains(t, out, "external mutation committed version 2")

	out, err = execute(t, "edit", "room", "--id", "r2", "--name", "Huddle Blue", "--capacity", "6", "--features", "whiteboard,tv")
	require.NoError(t, err)
	assert.Contains(t, out, "committed version 3")

	plan := openPlan(t, dsn)
	assert.EqualValues(t, 3, plan.Version)
	room, ok := plan.Room("r2")
	require.True(t, ok)
	assert.Equal(t, "Huddle Blue", room.Name)
	assert.Equal(t, 6, room.Capacity)
	assert.Equal(t, []string{"whiteboard", "tv"}, room.Features)

	first, _ := plan.Room("r1")
	assert.Equal(t, "Boardroom Alpha (ext v2)", first.Name)

	out, err = execute(t, "seed", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "seed committed as version 4")

	plan = openPlan(t, dsn)
	first, _ = plan.Room("r1")
	assert.Equal(t, "Boardroom Alpha", first.Name)
}

func TestUsersCommands(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "users", "add", "--name", "Nia Newcomer", "--email", "nia@company.com", "--password", "correct-horse")
	require.NoError(t, err)
	assert.Contains(t, out, "registered nia@company.com (EMPLOYEE)")

	_, err = execute(t, "users", "add", "--name", "Nia Again", "--email", "NIA@company.com", "--password", "correct-horse")
	require.ErrorIs(t, err, directory.ErrAlreadyExists)

	_, err = execute(t, "users", "add", "--name", "Bad Role", "--email", "bad@company.com", "--password", "x", "--role", "GUEST")
	require.ErrorIs(t, err, directory.ErrInvalidUser)

	out, err = execute(t, "users", "show", "nia@company.com")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Nia Newcomer")

	_, err = execute(t, "users", "show", "ghost@company.com")
	require.ErrorIs(t, err, directory.ErrNotFound)

	out, err = execute(t, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "nia@company.com")
	assert.Contains(t, out, "shantanu@company.com")
}

func TestEditRoomValidation(t *testing.T) {
	useSQLite(t)

	cases := []struct {
		name string
		args []string
	}{
		{name: "nothing to change", args: []string{"edit", "room", "--id", "r1"}},
		{name: "missing id", args: []string{"edit", "room", "--name", "X"}},
		{name: "unknown room", args: []string{"edit", "room", "--id", "nope", "--name", "X"}},
		{name: "invalid capacity", args: []string{"edit", "room", "--id", "r1", "--capacity", "0"}},
		{name: "negative threshold", args: []string{"edit", "room", "--id", "r1", "--threshold=-5"}},
		{name: "unknown strategy", args: []string{"edit", "room", "--id", "r1", "--name", "X", "--on-conflict", "merge"}},
		{name: "exclusive threshold flags", args: []string{"edit", "room", "--id", "r1", "--threshold", "50", "--clear-threshold"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("WORKSPACE_STORAGE_DRIVER", "cassandra")
	_, err := execute(t, "seed")
	assert.ErrorContains(t, err, "WORKSPACE_STORAGE_DRIVER")
}

// racingBackend lets another editor commit just before the first save lands.
type racingBackend struct {
	*store.Store
	raced bool
}

func (b *racingBackend) Commit(ctx context.Context, candidate floorplan.FloorPlan) (store.CommitResult, error) {
	if !b.raced {
		b.raced = true
		if _, err := b.Store.TriggerExternalMutation(ctx); err != nil {
			return store.CommitResult{}, err
		}
	}
	return b.Store.Commit(ctx, candidate)
}

func newRacingBackend(t *testing.T) *racingBackend {
	t.Helper()
	seed, err := floorplan.DefaultSeed()
	require.NoError(t, err)
	st, err := store.New(memory.NewStorage(), seed)
	require.NoError(t, err)
	return &racingBackend{Store: st}
}

func TestRunEditConflicts(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	name := "Quiet Room"
	edit := roomEdit{RoomID: "r2", Name: &name}

	t.Run("abort leaves remote plan in place", func(t *testing.T) {
		backend := newRacingBackend(t)
		var out bytes.Buffer
		err := runEdit(ctx, backend, logger, edit, onConflictAbort, &out)
		require.ErrorIs(t, err, errEditAborted)
		assert.Contains(t, out.String(), "conflict: local version 2, remote version 2")

		plan, err := backend.Fetch(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, plan.Version)
		room, _ := plan.Room("r2")
		assert.Equal(t, "Huddle A", room.Name)
	})

	t.Run("accept_remote adopts the remote plan", func(t *testing.T) {
		backend := newRacingBackend(t)
		var out bytes.Buffer
		require.NoError(t, runEdit(ctx, backend, logger, edit, string(store.AcceptRemote), &out))
		assert.Contains(t, out.String(), "adopted remote version 2")

		plan, err := backend.Fetch(ctx)
		require.NoError(t, err)
		room, _ := plan.Room("r2")
		assert.Equal(t, "Huddle A", room.Name)
	})

	t.Run("force_local commits on top of the remote version", func(t *testing.T) {
		backend := newRacingBackend(t)
		var out bytes.Buffer
		require.NoError(t, runEdit(ctx, backend, logger, edit, string(store.ForceLocal), &out))
		assert.Contains(t, out.String(), "committed version 3")

		plan, err := backend.Fetch(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, plan.Version)
		room, _ := plan.Room("r2")
		assert.Equal(t, "Quiet Room", room.Name)
		first, _ := plan.Room("r1")
		assert.Equal(t, "Boardroom Alpha", first.Name)
	})

	t.Run("force_local surfaces a second conflict", func(t *testing.T) {
		seed, err := floorplan.DefaultSeed()
		require.NoError(t, err)
		backend := &contendedBackend{plan: seed(time.Now())}
		var out bytes.Buffer

		err = runEdit(ctx, backend, logger, edit, string(store.ForceLocal), &out)
		require.ErrorIs(t, err, errEditAborted)
		assert.Equal(t, 2, backend.commits)
		assert.Contains(t, out.String(), "conflict again: local version 3, remote version 3")
	})
}

// contendedBackend loses every commit to a writer at the candidate's version.
type contendedBackend struct {
	plan    floorplan.FloorPlan
	commits int
}

func (b *contendedBackend) Fetch(context.Context) (floorplan.FloorPlan, error) {
	return b.plan.Clone(), nil
}

func (b *contendedBackend) Commit(_ context.Context, candidate floorplan.FloorPlan) (store.CommitResult, error) {
	b.commits++
	remote := b.plan.Clone()
	remote.Version = candidate.Version
	return store.CommitResult{Plan: remote}, nil
}
