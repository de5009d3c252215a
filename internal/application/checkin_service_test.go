package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-planner/internal/allocation"
)

func TestCheckInServiceDurations(t *testing.T) {
	tests := []struct {
		name  string
		input CheckInInput
		want  time.Duration
	}{
		{name: "laptop default", input: CheckInInput{RoomID: "open"}, want: DefaultLaptopCheckInDuration},
		{name: "workstation default", input: CheckInInput{RoomID: "dev", NeedsWorkstation: true}, want: DefaultCheckInDuration},
		{name: "explicit", input: CheckInInput{RoomID: "dev", NeedsWorkstation: true, Duration: 90 * time.Minute}, want: 90 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, officePlan())
			svc := NewCheckInService(e.deps)

			booking, err := svc.CheckIn(context.Background(), employee, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, booking.End.Sub(booking.Start))
			assert.True(t, booking.Live)
			assert.Equal(t, allocation.LiveCheckInTitle, booking.Title)
			assert.True(t, booking.Start.Equal(e.clock.Now()))
		})
	}
}

func TestCheckInServiceMovesBetweenRooms(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, officePlan())
	svc := NewCheckInService(e.deps)

	_, err := svc.CheckIn(ctx, employee, CheckInInput{RoomID: "open"})
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, employee, CheckInInput{RoomID: "dev", NeedsWorkstation: true})
	require.NoError(t, err)

	plan := e.fetch(t)
	assert.Equal(t, int64(3), plan.Version)
	open, _ := plan.Room("open")
	dev, _ := plan.Room("dev")
	assert.Empty(t, open.Occupants)
	assert.Len(t, open.Schedule, 1)
	assert.Equal(t, []string{employee.UserID}, dev.Occupants)
	assert.Equal(t, allocation.DeskPopularityWeight, dev.Popularity)

	current, err := svc.Current(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, "dev", current.ID)

	left, err := svc.CheckOut(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev"}, left)
	assert.Equal(t, int64(4), e.fetch(t).Version)

	_, err = svc.Current(ctx, employee)
	require.ErrorIs(t, err, ErrNotFound)

	left, err = svc.CheckOut(ctx, employee)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, int64(4), e.fetch(t).Version)

	assert.Equal(t, []string{"check_in", "check_in", "check_out"}, e.recorder.checkIns)
}

func TestCheckInServiceRejections(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, officePlan())
	svc := NewCheckInService(e.deps)

	_, err := svc.CheckIn(ctx, employee, CheckInInput{RoomID: "nowhere"})
	require.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.CheckIn(ctx, employee, CheckInInput{Duration: -time.Minute})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "room_id")
	assert.Contains(t, vErr.FieldErrors, "duration")

	assert.Equal(t, int64(1), e.fetch(t).Version)
	assert.Empty(t, e.recorder.checkIns)
}
