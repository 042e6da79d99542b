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

package types

import "errors"

// ErrExplicitTopologyUnsupported is returned by node topology matching
// when the request carries the Explicit variant, which is not implemented
// yet. Rather than silently pass every candidate, the scheduler surfaces
// it as an explicit, typed failure.
var ErrExplicitTopologyUnsupported = errors.New("explicit node topology is not implemented")

// LabelledTopology matches candidates against inclusion/exclusion label
// maps. Inclusion: the candidate must carry every inclusion key with the
// same value (an empty required value acts as a presence-only wildcard).
// Exclusion: the candidate must not carry any excluded key with the
// excluded value. A key present in both inclusion and exclusion makes the
// constraint unsatisfiable for every candidate.
type LabelledTopology struct {
	Inclusion map[string]string
	Exclusion map[string]string
}

// conflictingKeys reports whether inclusion and exclusion share any key.
func (l *LabelledTopology) conflictingKeys() bool {
	if len(l.Inclusion) == 0 || len(l.Exclusion) == 0 {
		return false
	}
	for k := range l.Inclusion {
		if _, ok := l.Exclusion[k]; ok {
			return true
		}
	}
	return false
}

// Matches reports whether the given label set satisfies the constraint.
func (l *LabelledTopology) Matches(labels map[string]string) bool {
	if l == nil {
		return true
	}
	if l.conflictingKeys() {
		return false
	}
	for k, v := range l.Inclusion {
		got, ok := labels[k]
		if !ok {
			return false
		}
		if v != "" && got != v {
			return false
		}
	}
	for k, v := range l.Exclusion {
		if got, ok := labels[k]; ok && got == v {
			return false
		}
	}
	return true
}

// Empty reports whether the constraint carries no inclusion or exclusion,
// i.e. imposes no restriction.
func (l *LabelledTopology) Empty() bool {
	return l == nil || (len(l.Inclusion) == 0 && len(l.Exclusion) == 0)
}

// NodeTopology is one of two independent node-placement constraints.
// Exactly one of Labelled or Explicit should be set; both nil means no
// constraint.
type NodeTopology struct {
	Labelled *LabelledTopology
	Explicit *ExplicitNodeTopology
}

// ExplicitNodeTopology restricts placement to a fixed allow-list of nodes.
// Unimplemented: MatchNode surfaces ErrExplicitTopologyUnsupported rather
// than silently accepting everything.
type ExplicitNodeTopology struct {
	AllowedNodes map[NodeId]struct{}
}

// MatchNode evaluates the node topology against a candidate node's labels.
// It returns an error, never a silent pass, when the Explicit variant is
// used.
func (t *NodeTopology) MatchNode(labels map[string]string) (bool, error) {
	if t == nil {
		return true, nil
	}
	if t.Explicit != nil {
		return false, ErrExplicitTopologyUnsupported
	}
	return t.Labelled.Matches(labels), nil
}

// PoolTopology constrains which pools are eligible, independent of node
// topology.
type PoolTopology struct {
	Labelled *LabelledTopology
}

// MatchPool evaluates the pool topology against a candidate pool's labels.
func (t *PoolTopology) MatchPool(labels map[string]string) bool {
	if t == nil {
		return true
	}
	return t.Labelled.Matches(labels)
}

// Topology bundles the node and pool placement constraints of a volume
// request. Either half may be nil.
type Topology struct {
	Node *NodeTopology
	Pool *PoolTopology
}
