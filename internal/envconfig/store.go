package envconfig

import "sync/atomic"

var emptyMapping = newMapping()

// Store holds the active configuration snapshot.
//
// Load swaps the snapshot atomically, so a reader sees either the previous
// or the new mapping, never a mix. The zero value is an empty, usable Store.
type Store struct {
	current atomic.Pointer[Mapping]
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the snapshot with a copy of m. Later changes to m's source do not leak in.
func (s *Store) Load(m *Mapping) {
	s.current.Store(m.clone())
}

// Snapshot returns the current read-only mapping.
func (s *Store) Snapshot() *Mapping {
	if m := s.current.Load(); m != nil {
		return m
	}
	return emptyMapping
}

// Get returns the value for key, or def when key is absent.
func (s *Store) Get(key, def string) string {
	return s.Snapshot().Get(key, def)
}

// Lookup returns the value for key and whether it was present.
func (s *Store) Lookup(key string) (string, bool) {
	return s.Snapshot().Lookup(key)
}

// Has reports whether key is present in the current snapshot.
func (s *Store) Has(key string) bool {
	return s.Snapshot().Has(key)
}
