package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMA2401PT/eztiles/tag"
	"github.com/CMA2401PT/eztiles/tile"
)

func counterRegistry(t *testing.T) *tile.Registry {
	reg := tile.NewRegistry()
	require.NoError(t, reg.Register("count", func(tl *tile.Tile) error {
		n, _ := tl.GetData("n", tag.Int(0)).Int()
		return tl.SetData("n", n+1)
	}))
	require.NoError(t, reg.Register("once", func(*tile.Tile) error { return tile.ErrStopUpdates }))
	require.NoError(t, reg.Register("fail", func(*tile.Tile) error { return errors.New("broken") }))
	return reg
}

func mustTile(t *testing.T, callable string, schedule bool) *tile.Tile {
	tl, err := tile.New(tile.Info{Callable: callable, ScheduleUpdate: schedule})
	require.NoError(t, err)
	return tl
}

func TestSchedulerAddOnlyRequested(t *testing.T) {
	s := NewScheduler(counterRegistry(t))
	ids := s.Add(mustTile(t, "count", true), mustTile(t, "count", false), mustTile(t, "", true))
	assert.Len(t, ids, 1)
	assert.Equal(t, 1, s.Len())
}

func TestSchedulerTick(t *testing.T) {
	s := NewScheduler(counterRegistry(t))
	var dropped []error
	s.OnDrop = func(id uuid.UUID, tl *tile.Tile, err error) { dropped = append(dropped, err) }

	counter := mustTile(t, "count", true)
	s.Add(counter, mustTile(t, "once", true), mustTile(t, "fail", true), mustTile(t, "missing", true))
	require.Equal(t, 4, s.Len())

	err := s.Tick()
	require.Error(t, err)
	assert.ErrorIs(t, err, tile.ErrUnknownCallback)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, 1, s.Len())
	assert.Len(t, dropped, 3)
	assert.Nil(t, dropped[0])

	require.NoError(t, s.Tick())
	assert.Equal(t, int64(2), s.Ticks())
	assert.True(t, counter.GetData("n", tag.Value{}).Equal(tag.Int(2)))
}

func TestSchedulerUnschedule(t *testing.T) {
	s := NewScheduler(counterRegistry(t))
	id := s.Schedule(mustTile(t, "count", false))
	assert.True(t, s.Unschedule(id))
	assert.False(t, s.Unschedule(id))
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerRun(t *testing.T) {
	s := NewScheduler(counterRegistry(t))
	s.Add(mustTile(t, "count", true))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := s.Run(ctx, 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, s.Ticks(), int64(0))
}
