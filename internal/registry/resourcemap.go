/*
Copyright 2024 The Mayastor Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package registry

import "sync"

// ResourceMap is an insertion-ordered, keyed store of guarded entities of
// one kind. Iteration order follows insertion order, not key
// order, so readers observing "all pools" see them in the order the
// control plane first learned about them.
type ResourceMap[K comparable, V any] struct {
	mu     sync.RWMutex
	order  []K
	guards map[K]*Guard[V]
}

// NewResourceMap constructs an empty map.
func NewResourceMap[K comparable, V any]() *ResourceMap[K, V] {
	return &ResourceMap[K, V]{guards: make(map[K]*Guard[V])}
}

// Replace atomically clears and repopulates the map from items, preserving
// the order items are given in. The whole collection flips in one logical
// step, so a reader taking a Snapshot either sees the entirely-old or
// entirely-new generation, never a mix.
func (m *ResourceMap[K, V]) Replace(keys []K, values []V) {
	guards := make(map[K]*Guard[V], len(keys))
	order := make([]K, len(keys))
	copy(order, keys)
	for i, k := range keys {
		guards[k] = NewGuard(values[i])
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = order
	m.guards = guards
}

// Insert adds or overwrites a single entry, appending to the insertion
// order on first sight of the key.
func (m *ResourceMap[K, V]) Insert(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.guards[key]; ok {
		g.Set(value)
		return
	}
	m.guards[key] = NewGuard(value)
	m.order = append(m.order, key)
}

// Remove deletes a single entry. Removing an absent key is a no-op.
func (m *ResourceMap[K, V]) Remove(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.guards[key]; !ok {
		return
	}
	delete(m.guards, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Guard returns the per-entity guard for key, or nil if absent. Callers
// use this to wait on an in-flight write or to read the value without
// taking a full-map lock.
func (m *ResourceMap[K, V]) Guard(key K) *Guard[V] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.guards[key]
}

// Get returns a clone of the value for key and whether it was present.
func (m *ResourceMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	g, ok := m.guards[key]
	m.mu.RUnlock()
	var zero V
	if !ok {
		return zero, false
	}
	return g.Get(), true
}

// Len returns the number of entries.
func (m *ResourceMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Snapshot returns a clone of every value, in insertion order.
func (m *ResourceMap[K, V]) Snapshot() []V {
	m.mu.RLock()
	order := make([]K, len(m.order))
	copy(order, m.order)
	guards := m.guards
	m.mu.RUnlock()

	out := make([]V, 0, len(order))
	for _, k := range order {
		out = append(out, guards[k].Get())
	}
	return out
}

// Keys returns the keys currently present, in insertion order.
func (m *ResourceMap[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]K, len(m.order))
	copy(out, m.order)
	return out
}

// Each applies fn to a clone of every value, in insertion order, stopping
// early if fn returns false.
func (m *ResourceMap[K, V]) Each(fn func(K, V) bool) {
	m.mu.RLock()
	order := make([]K, len(m.order))
	copy(order, m.order)
	guards := m.guards
	m.mu.RUnlock()

	for _, k := range order {
		if !fn(k, guards[k].Get()) {
			return
		}
	}
}
