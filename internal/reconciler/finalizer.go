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

package reconciler

import "github.com/sinhaashish/mayastor-control-plane/api/v1alpha1"

// hasFinalizer reports whether pool already carries the custody finalizer.
func hasFinalizer(pool *v1alpha1.DiskPool) bool {
	for _, f := range pool.Finalizers {
		if f == v1alpha1.DiskPoolFinalizer {
			return true
		}
	}
	return false
}

// addFinalizer attaches the custody finalizer if absent, reporting whether
// it changed pool.Finalizers.
func addFinalizer(pool *v1alpha1.DiskPool) bool {
	if hasFinalizer(pool) {
		return false
	}
	pool.Finalizers = append(pool.Finalizers, v1alpha1.DiskPoolFinalizer)
	return true
}

// removeFinalizer strips the custody finalizer, reporting whether it
// changed pool.Finalizers.
func removeFinalizer(pool *v1alpha1.DiskPool) bool {
	out := pool.Finalizers[:0]
	changed := false
	for _, f := range pool.Finalizers {
		if f == v1alpha1.DiskPoolFinalizer {
			changed = true
			continue
		}
		out = append(out, f)
	}
	pool.Finalizers = out
	return changed
}
