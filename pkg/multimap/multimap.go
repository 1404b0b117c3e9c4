// Package multimap provides a map that associates each key with an ordered
// list of values.
//
// Keys are kept in first-insertion order so that String and Keys are
// deterministic. A Map is not safe for concurrent use.
package multimap

import (
	"fmt"
	"slices"
	"strings"
)

// Map associates each key with a list of values.
type Map[K comparable, V any] struct {
	items map[K][]V
	order []K
}

// New creates an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		items: make(map[K][]V),
	}
}

// Get returns the values associated with key.
// Unknown keys yield an empty slice.
func (m *Map[K, V]) Get(key K) []V {
	values, ok := m.items[key]
	if !ok {
		return []V{}
	}
	return values
}

// Put appends value to the list of key.
func (m *Map[K, V]) Put(key K, value V) {
	values, ok := m.items[key]
	if !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = append(values, value)
}

// PutAll replaces the list of key with a copy of values.
func (m *Map[K, V]) PutAll(key K, values []V) {
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = slices.Clone(values)
	if m.items[key] == nil {
		m.items[key] = []V{}
	}
}

// Remove deletes key and returns the values it held.
func (m *Map[K, V]) Remove(key K) ([]V, bool) {
	values, ok := m.items[key]
	if !ok {
		return nil, false
	}
	delete(m.items, key)
	m.order = slices.DeleteFunc(m.order, func(k K) bool { return k == key })
	return values, true
}

// ContainsKey reports whether key has an entry, even an empty one.
func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.items[key]
	return ok
}

// Keys returns the keys in first-insertion order.
func (m *Map[K, V]) Keys() []K {
	return slices.Clone(m.order)
}

// Values returns the value lists in key order.
func (m *Map[K, V]) Values() [][]V {
	out := make([][]V, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.items[k])
	}
	return out
}

// FlatValues returns every value of every key, in key order.
func (m *Map[K, V]) FlatValues() []V {
	var out []V
	for _, k := range m.order {
		out = append(out, m.items[k]...)
	}
	return out
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	return len(m.items)
}

// Clear removes all keys.
func (m *Map[K, V]) Clear() {
	m.items = make(map[K][]V)
	m.order = nil
}

// Equal reports whether both maps hold the same keys with equal value lists.
// Key order is not compared.
func Equal[K comparable, V comparable](a, b *Map[K, V]) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.items) != len(b.items) {
		return false
	}
	for k, av := range a.items {
		bv, ok := b.items[k]
		if !ok || !slices.Equal(av, bv) {
			return false
		}
	}
	return true
}

// String renders one line per key: "key: v1, v2".
// A key with no values renders as "key: (empty)".
func (m *Map[K, V]) String() string {
	var b strings.Builder
	for _, k := range m.order {
		values := m.items[k]
		fmt.Fprintf(&b, "%v: ", k)
		if len(values) == 0 {
			b.WriteString("(empty)")
		}
		for i, v := range values {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%v", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}
