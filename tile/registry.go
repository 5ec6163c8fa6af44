package tile

import (
	"errors"
	"fmt"
	"sort"
)

// Handler is invoked on every scheduled update of a tile naming it as its callable.
// Returning ErrStopUpdates stops further updates of that tile.
type Handler func(t *Tile) error

var (
	ErrUnknownCallback = errors.New("tile: unknown callback")
	ErrStopUpdates     = errors.New("tile: stop updates")
)

// Registry maps callable names to handlers. It is filled at startup and handed to whatever
// drives tile updates.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds h under name. Names may only be registered once.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("tile: register: empty callback name")
	}
	if h == nil {
		return fmt.Errorf("tile: register %q: nil handler", name)
	}
	if _, hasK := r.handlers[name]; hasK {
		return fmt.Errorf("tile: register %q: callback already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// Resolve returns the handler registered under name.
func (r *Registry) Resolve(name string) (Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, name)
	}
	return h, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
