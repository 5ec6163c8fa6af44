package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/CMA2401PT/eztiles/tile"
)

// Scheduler runs the update hook of every scheduled tile once per tick, the way the host
// server ticks block entities.
type Scheduler struct {
	registry *tile.Registry

	mu    sync.Mutex
	tiles map[uuid.UUID]*tile.Tile
	order []uuid.UUID

	ticks *atomic.Int64
	// OnDrop is called for each tile removed from the schedule during a tick, with the error
	// that caused it or nil if the tile stopped by itself.
	OnDrop func(id uuid.UUID, t *tile.Tile, err error)
}

func NewScheduler(registry *tile.Registry) *Scheduler {
	return &Scheduler{
		registry: registry,
		tiles:    make(map[uuid.UUID]*tile.Tile),
		ticks:    atomic.NewInt64(0),
		OnDrop:   printDrop,
	}
}

func printDrop(id uuid.UUID, t *tile.Tile, err error) {
	if err != nil {
		fmt.Println(color.New(color.FgRed).Sprintf("Tile Scheduler: drop %v at %v (%v)", id, t.Pos(), err))
	}
}

// Schedule adds t to the schedule and returns the handle to unschedule it with.
func (s *Scheduler) Schedule(t *tile.Tile) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles[id] = t
	s.order = append(s.order, id)
	return id
}

// Add schedules every tile that requested updates and returns their handles.
func (s *Scheduler) Add(tiles ...*tile.Tile) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tiles))
	for _, t := range tiles {
		if t.NeedsUpdate() {
			ids = append(ids, s.Schedule(t))
		}
	}
	return ids
}

// Unschedule removes the tile with the handle passed, reporting whether it was scheduled.
func (s *Scheduler) Unschedule(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unschedule(id)
}

func (s *Scheduler) unschedule(id uuid.UUID) bool {
	if _, ok := s.tiles[id]; !ok {
		return false
	}
	delete(s.tiles, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Ticks returns the number of ticks run so far.
func (s *Scheduler) Ticks() int64 {
	return s.ticks.Load()
}

// Tick updates every scheduled tile once, in the order they were scheduled. Tiles whose
// hook returns false or fails are unscheduled; failures are joined into the returned error.
func (s *Scheduler) Tick() error {
	s.mu.Lock()
	ids := make([]uuid.UUID, len(s.order))
	copy(ids, s.order)
	tiles := make([]*tile.Tile, len(ids))
	for i, id := range ids {
		tiles[i] = s.tiles[id]
	}
	s.mu.Unlock()

	var errs []error
	for i, t := range tiles {
		again, err := t.OnUpdate(s.registry)
		if again && err == nil {
			continue
		}
		s.mu.Lock()
		dropped := s.unschedule(ids[i])
		s.mu.Unlock()
		if !dropped {
			// unscheduled by the handler itself
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
		if s.OnDrop != nil {
			s.OnDrop(ids[i], t, err)
		}
	}
	s.ticks.Inc()
	return errors.Join(errs...)
}

// Run ticks at the interval passed until ctx is done. Tick errors are reported through
// OnDrop and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = s.Tick()
		}
	}
}
