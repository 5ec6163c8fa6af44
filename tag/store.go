package tag

import (
	"fmt"
	"sort"
)

// Store is the insertion ordered key/value state of one tile. Writing an existing key
// replaces its value in place.
type Store struct {
	keys   []string
	values map[string]Value
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

// Set stores v under key.
func (s *Store) Set(key string, v Value) error {
	if !v.IsValid() {
		return fmt.Errorf("set %q: %w: invalid value", key, ErrInvalidShape)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
	return nil
}

// Put encodes v and stores the result under key. Nothing is written when encoding fails.
func (s *Store) Put(key string, v interface{}) error {
	val, err := Encode(key, v)
	if err != nil {
		return err
	}
	return s.Set(key, val)
}

// PutAll puts every entry of data in sorted key order. It stops at the first entry that
// fails to encode; entries written before it stay written.
func (s *Store) PutAll(data map[string]interface{}) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.Put(k, data[k]); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value under key, or def if there is none.
func (s *Store) Get(key string, def Value) Value {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Lookup returns the value under key and whether it was present.
func (s *Store) Lookup(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Delete removes key, reporting whether it was present.
func (s *Store) Delete(key string) bool {
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) Len() int { return len(s.keys) }

// Keys returns the keys in insertion order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Range calls fn for every entry in insertion order until fn returns false.
func (s *Store) Range(fn func(key string, v Value) bool) {
	for _, k := range s.keys {
		if !fn(k, s.values[k]) {
			return
		}
	}
}
