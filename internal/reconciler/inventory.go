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

// Package reconciler implements the pool-custody control loop: a
// watch-driven controller-runtime Reconciler that drives a declared
// DiskPool through create/check/destroy against the data-plane agent,
// keyed by a process-wide inventory of per-pool ResourceContexts.
package reconciler

import (
	"sync"

	"github.com/sinhaashish/mayastor-control-plane/api/v1alpha1"
)

// ResourceContext is the per-pool bookkeeping the reconciler keeps between
// watch events: the last-observed declared spec, a retry counter and the
// event-dedup set. It is never exposed outside this package's own lock.
type ResourceContext struct {
	// Spec is the most recently observed declared spec.
	Spec v1alpha1.DiskPoolSpec
	// LastStatus is the last status this process itself patched onto the CR.
	LastStatus v1alpha1.DiskPoolStatus
	// Retries counts consecutive error-policy backoffs for diagnostics.
	Retries int

	mu     sync.Mutex
	events map[string]struct{}
}

// seen reports whether msg has already been emitted for this context, and
// records it if not. A dedicated mutex is used here rather than the
// inventory lock because contention is per-resource and effectively none
// in practice.
func (c *ResourceContext) seen(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.events == nil {
		c.events = make(map[string]struct{})
	}
	if _, ok := c.events[msg]; ok {
		return true
	}
	c.events[msg] = struct{}{}
	return false
}

// Inventory is the process-wide map of ResourceContexts, guarded by a
// single reader-writer lock with short write sections.
type Inventory struct {
	mu    sync.RWMutex
	byKey map[string]*ResourceContext
}

// NewInventory builds an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{byKey: make(map[string]*ResourceContext)}
}

// Get returns the context for key, creating one on first observation.
func (inv *Inventory) Get(key string) *ResourceContext {
	inv.mu.RLock()
	ctx, ok := inv.byKey[key]
	inv.mu.RUnlock()
	if ok {
		return ctx
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if ctx, ok = inv.byKey[key]; ok {
		return ctx
	}
	ctx = &ResourceContext{}
	inv.byKey[key] = ctx
	return ctx
}

// Drop removes key from the inventory, e.g. once a pool's finalizer has
// been removed and the CR is fully gone.
func (inv *Inventory) Drop(key string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	delete(inv.byKey, key)
}

// Len reports the number of tracked contexts, used by tests.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.byKey)
}
