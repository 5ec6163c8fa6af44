package tile

import (
	"errors"
	"fmt"

	"github.com/CMA2401PT/eztiles/tag"
)

// DefaultID is the id a tile is saved with when its data does not carry one.
const DefaultID = "simpleTile"

// Keys the tile itself manages.
const (
	KeyID       = "id"
	KeyX        = "x"
	KeyY        = "y"
	KeyZ        = "z"
	KeyCallable = "callable"
)

var (
	// ErrBadPosition is returned when the x, y and z entries of a tile are missing or are not
	// ints.
	ErrBadPosition = errors.New("tile: position must be stored as int x, y and z")
	// ErrReservedKey is returned when data is written under KeyCallable, which only the tile
	// itself saves.
	ErrReservedKey = errors.New("tile: reserved key")
)

// Info describes a tile to be placed.
type Info struct {
	Pos  Pos
	Data map[string]interface{}
	// Callable names the Registry handler run on updates. Empty means none.
	Callable string
	// ScheduleUpdate requests updates right after placement. It has no effect without a
	// Callable.
	ScheduleUpdate bool
}

// Tile is a block entity holding arbitrary data in a tag.Store and running a named handler
// on scheduled updates.
type Tile struct {
	pos         Pos
	store       *tag.Store
	callable    string
	needsUpdate bool
}

// New creates a tile from freshly supplied data. Position and id go into the store first,
// so data may override both. Data may not carry KeyCallable; use Info.Callable instead.
func New(info Info) (*Tile, error) {
	if _, ok := info.Data[KeyCallable]; ok {
		return nil, fmt.Errorf("tile at %v: %w: %q", info.Pos, ErrReservedKey, KeyCallable)
	}
	s := tag.NewStore()
	for i, k := range []string{KeyX, KeyY, KeyZ} {
		if err := s.Set(k, tag.Int(int32(info.Pos[i]))); err != nil {
			return nil, err
		}
	}
	if _, ok := info.Data[KeyID]; !ok {
		_ = s.Set(KeyID, tag.String(DefaultID))
	}
	if err := s.PutAll(info.Data); err != nil {
		return nil, fmt.Errorf("tile at %v: %w", info.Pos, err)
	}
	pos, err := readPos(s)
	if err != nil {
		return nil, err
	}
	return &Tile{
		pos:         pos,
		store:       s,
		callable:    info.Callable,
		needsUpdate: info.ScheduleUpdate && info.Callable != "",
	}, nil
}

// Restore recreates a tile from a tree previously produced by SaveData. Entries are taken
// over as they are, without classifying them again. A callable entry that is not a string
// means no callable and is kept as plain data.
func Restore(tree map[string]interface{}) (*Tile, error) {
	var callable string
	if str, ok := tree[KeyCallable].(string); ok {
		callable = str
		rest := make(map[string]interface{}, len(tree)-1)
		for k, v := range tree {
			if k != KeyCallable {
				rest[k] = v
			}
		}
		tree = rest
	}
	s, err := tag.StoreFromNBT(tree)
	if err != nil {
		return nil, fmt.Errorf("tile: restore: %w", err)
	}
	pos, err := readPos(s)
	if err != nil {
		return nil, err
	}
	return &Tile{pos: pos, store: s, callable: callable, needsUpdate: callable != ""}, nil
}

func readPos(s *tag.Store) (Pos, error) {
	var pos Pos
	for i, k := range []string{KeyX, KeyY, KeyZ} {
		v, err := s.Get(k, tag.Value{}).Int()
		if err != nil {
			return pos, fmt.Errorf("%w: %v", ErrBadPosition, err)
		}
		pos[i] = int(v)
	}
	return pos, nil
}

// Pos returns the position held in the x, y and z entries of the store.
func (t *Tile) Pos() Pos { return t.pos }

// ID returns the saved id of the tile, or DefaultID if it is not a string.
func (t *Tile) ID() string {
	id, err := t.store.Get(KeyID, tag.String(DefaultID)).Str()
	if err != nil {
		return DefaultID
	}
	return id
}

func (t *Tile) Callable() string { return t.callable }

// NeedsUpdate reports whether the tile asked to be scheduled for updates.
func (t *Tile) NeedsUpdate() bool { return t.needsUpdate }

// Store returns the store backing the tile.
func (t *Tile) Store() *tag.Store { return t.store }

// GetData returns the value saved under key, or def.
func (t *Tile) GetData(key string, def tag.Value) tag.Value {
	return tag.Decode(t.store, key, def)
}

// SetData encodes v and saves it under key. KeyCallable cannot be written, and x, y and z
// only take Int values, which move the tile.
func (t *Tile) SetData(key string, v interface{}) error {
	if key == KeyCallable {
		return fmt.Errorf("%w: %q", ErrReservedKey, key)
	}
	axis := posAxis(key)
	if axis < 0 {
		return t.store.Put(key, v)
	}
	val, err := tag.Encode(key, v)
	if err != nil {
		return err
	}
	n, err := val.Int()
	if err != nil {
		return fmt.Errorf("%w: %q is %v", ErrBadPosition, key, val.Kind())
	}
	if err := t.store.Set(key, val); err != nil {
		return err
	}
	t.pos[axis] = int(n)
	return nil
}

func posAxis(key string) int {
	switch key {
	case KeyX:
		return 0
	case KeyY:
		return 1
	case KeyZ:
		return 2
	}
	return -1
}

// OnUpdate runs the handler of the tile. It returns false when the tile has no callable or
// the handler asked to stop updates.
func (t *Tile) OnUpdate(reg *Registry) (bool, error) {
	if t.callable == "" {
		return false, nil
	}
	h, err := reg.Resolve(t.callable)
	if err != nil {
		return false, err
	}
	if err := h(t); err != nil {
		if errors.Is(err, ErrStopUpdates) {
			t.needsUpdate = false
			return false, nil
		}
		return false, fmt.Errorf("tile at %v: callback %q: %w", t.pos, t.callable, err)
	}
	return true, nil
}

// SaveData returns the full tree to persist, including the callable.
func (t *Tile) SaveData() map[string]interface{} {
	m := t.store.NBT()
	if t.callable != "" {
		m[KeyCallable] = t.callable
	}
	return m
}

// SpawnData returns the tree sent to viewers of the tile.
func (t *Tile) SpawnData() map[string]interface{} {
	return t.store.NBT()
}
