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

// Package scheduler implements the placement pipeline: a uniform
// filter/sort abstraction over borrowed Registry snapshots, the
// standard filter/sorter library, the weighted SortBuilder, and the named
// policies that compose them. Nothing in this package performs I/O or
// blocks; every decision is synchronous over values already cloned out of
// the registry.
package scheduler

import "sort"

// Predicate decides whether item survives, given the shared scheduling
// context.
type Predicate[C any, I any] func(ctx C, item I) bool

// Less reports whether a should sort ahead of b.
type Less[I any] func(a, b I) bool

// CtxLess is Less with access to the shared scheduling context, for
// comparisons that need to look candidates up against registry state.
type CtxLess[C any, I any] func(ctx C, a, b I) bool

// ResourceFilter is the uniform `(context, list)` pipeline pattern:
// filter, sort, delegate-to-policy, collect. It never mutates the slice
// it was built from.
type ResourceFilter[C any, I any] struct {
	ctx   C
	items []I
}

// NewResourceFilter starts a pipeline over ctx and items. items is copied
// so the caller's slice is never mutated by subsequent Sort calls.
func NewResourceFilter[C any, I any](ctx C, items []I) *ResourceFilter[C, I] {
	cp := make([]I, len(items))
	copy(cp, items)
	return &ResourceFilter[C, I]{ctx: ctx, items: cp}
}

// Context returns the shared scheduling context.
func (f *ResourceFilter[C, I]) Context() C { return f.ctx }

// Len reports the number of surviving candidates.
func (f *ResourceFilter[C, I]) Len() int { return len(f.items) }

// Filter retains items where pred(ctx, item) holds.
func (f *ResourceFilter[C, I]) Filter(pred Predicate[C, I]) *ResourceFilter[C, I] {
	out := f.items[:0:0]
	for _, it := range f.items {
		if pred(f.ctx, it) {
			out = append(out, it)
		}
	}
	f.items = out
	return f
}

// FilterParam is Filter with an extra borrowed parameter threaded through,
// for predicates that need something beyond the shared context (e.g. a
// request-specific size or a moving replica reference). It is a
// standalone function rather than a method because Go methods cannot
// introduce new type parameters.
func FilterParam[C any, I any, P any](f *ResourceFilter[C, I], param P, pred func(C, I, P) bool) *ResourceFilter[C, I] {
	out := f.items[:0:0]
	for _, it := range f.items {
		if pred(f.ctx, it, param) {
			out = append(out, it)
		}
	}
	f.items = out
	return f
}

// Sort stably orders the surviving candidates by cmp.
func (f *ResourceFilter[C, I]) Sort(cmp Less[I]) *ResourceFilter[C, I] {
	sort.SliceStable(f.items, func(i, j int) bool { return cmp(f.items[i], f.items[j]) })
	return f
}

// SortCtx is Sort for comparators that need the shared context.
func (f *ResourceFilter[C, I]) SortCtx(cmp CtxLess[C, I]) *ResourceFilter[C, I] {
	sort.SliceStable(f.items, func(i, j int) bool { return cmp(f.ctx, f.items[i], f.items[j]) })
	return f
}

// Policy is a named, curated sequence of filters and a final sort.
type Policy[C any, I any] func(*ResourceFilter[C, I]) *ResourceFilter[C, I]

// ApplyPolicy delegates to a named policy.
func (f *ResourceFilter[C, I]) ApplyPolicy(p Policy[C, I]) *ResourceFilter[C, I] {
	return p(f)
}

// Collect yields the final ordered candidate list.
func (f *ResourceFilter[C, I]) Collect() []I {
	out := make([]I, len(f.items))
	copy(out, f.items)
	return out
}

// GroupBy folds the surviving candidates into a mapping, for second-stage
// selection such as grouping pools by node for anti-affinity decisions.
// It is a standalone function for the same reason as FilterParam.
func GroupBy[C any, I any, K comparable](f *ResourceFilter[C, I], key func(I) K) map[K][]I {
	out := make(map[K][]I)
	for _, it := range f.items {
		k := key(it)
		out[k] = append(out[k], it)
	}
	return out
}
