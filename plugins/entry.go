package plugins

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/CMA2401PT/eztiles/tag"
	"github.com/CMA2401PT/eztiles/tile"
)

// Keys the built-in callbacks work with.
const (
	KeyTicks = "ticks"
	KeyTTL   = "ttl"
)

var pool map[string]tile.Handler
var isInit bool

// Pool returns the built-in callbacks by name.
func Pool() map[string]tile.Handler {
	if !isInit {
		pool = make(map[string]tile.Handler)

		// Registry
		pool["counter"] = Counter
		pool["announce"] = Announce
		pool["expire"] = Expire

		isInit = true
	}
	return pool
}

// RegisterAll registers every built-in callback with reg.
func RegisterAll(reg *tile.Registry) error {
	for name, h := range Pool() {
		if err := reg.Register(name, h); err != nil {
			return err
		}
	}
	return nil
}

// Counter counts the updates of a tile in its ticks entry.
func Counter(t *tile.Tile) error {
	n, err := t.GetData(KeyTicks, tag.Int(0)).Int()
	if err != nil {
		return fmt.Errorf("counter: %w", err)
	}
	return t.SetData(KeyTicks, n+1)
}

// Announce prints the tile and its entries.
func Announce(t *tile.Tile) error {
	fmt.Println(color.New(color.FgCyan).Sprintf("Announce: %v at %v", t.ID(), t.Pos()))
	t.Store().Range(func(key string, v tag.Value) bool {
		fmt.Printf("Announce:   %v = %v\n", key, v)
		return true
	})
	return nil
}

// Expire counts the ttl entry of a tile down and stops its updates when it reaches zero.
// A tile without ttl stops right away.
func Expire(t *tile.Tile) error {
	ttl, err := t.GetData(KeyTTL, tag.Int(0)).Int()
	if err != nil {
		return fmt.Errorf("expire: %w", err)
	}
	if ttl <= 1 {
		if err := t.SetData(KeyTTL, 0); err != nil {
			return err
		}
		return tile.ErrStopUpdates
	}
	return t.SetData(KeyTTL, ttl-1)
}
