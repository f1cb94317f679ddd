package envconfig

import "sort"

// Mapping is an ordered set of configuration keys and their values.
// A Mapping is immutable once built; it only exposes readers.
type Mapping struct {
	keys   []string
	values map[string]string
}

// NewMapping builds a Mapping from a plain map. Keys are ordered lexically; empty keys are dropped.
func NewMapping(values map[string]string) *Mapping {
	m := newMapping()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.set(k, values[k])
	}
	return m
}

func newMapping() *Mapping {
	return &Mapping{values: make(map[string]string)}
}

// set inserts or overwrites key. An overwritten key keeps its original position.
func (m *Mapping) set(key, value string) {
	if key == "" {
		return
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Mapping) clone() *Mapping {
	if m == nil {
		return newMapping()
	}
	c := &Mapping{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]string, len(m.values)),
	}
	copy(c.keys, m.keys)
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// Lookup returns the value for key and whether it was present.
func (m *Mapping) Lookup(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Get returns the value for key, or def when key is absent.
func (m *Mapping) Get(key, def string) string {
	if v, ok := m.Lookup(key); ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in declaration order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// ToMap returns a copy of the mapping as a plain map.
func (m *Mapping) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Environ returns the mapping as KEY=VALUE strings in declaration order, suitable for exec.Cmd.Env.
func (m *Mapping) Environ() []string {
	if m == nil {
		return nil
	}
	env := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		env = append(env, k+"="+m.values[k])
	}
	return env
}
