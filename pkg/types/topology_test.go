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

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestLabelledTopologyInclusionExclusion(t *testing.T) {
	g := NewWithT(t)

	labels := map[string]string{"zone": "eu", "disk": "nvme"}

	// No constraint matches everything.
	var empty LabelledTopology
	g.Expect(empty.Matches(labels)).To(BeTrue())

	// Inclusion only ever narrows the set.
	incl := LabelledTopology{Inclusion: map[string]string{"zone": "eu"}}
	g.Expect(incl.Matches(labels)).To(BeTrue())
	inclMiss := LabelledTopology{Inclusion: map[string]string{"zone": "us"}}
	g.Expect(inclMiss.Matches(labels)).To(BeFalse())

	// Wildcard inclusion (empty value) is presence-only.
	wildcard := LabelledTopology{Inclusion: map[string]string{"zone": ""}}
	g.Expect(wildcard.Matches(labels)).To(BeTrue())

	// Exclusion narrows the set too.
	excl := LabelledTopology{Exclusion: map[string]string{"zone": "eu"}}
	g.Expect(excl.Matches(labels)).To(BeFalse())

	// Inclusion+exclusion sharing a key is unsatisfiable for everyone.
	conflict := LabelledTopology{
		Inclusion: map[string]string{"zone": "eu"},
		Exclusion: map[string]string{"zone": "eu"},
	}
	g.Expect(conflict.Matches(labels)).To(BeFalse())
	g.Expect(conflict.Matches(map[string]string{"zone": "us"})).To(BeFalse())
}

func TestNodeTopologyExplicitUnsupported(t *testing.T) {
	g := NewWithT(t)

	nt := &NodeTopology{Explicit: &ExplicitNodeTopology{AllowedNodes: map[NodeId]struct{}{"a": {}}}}
	_, err := nt.MatchNode(map[string]string{})
	g.Expect(err).To(MatchError(ErrExplicitTopologyUnsupported))
}

func TestPoolStatusOrder(t *testing.T) {
	g := NewWithT(t)

	g.Expect(PoolOnline.Better(PoolDegraded)).To(BeTrue())
	g.Expect(PoolOnline.Better(PoolUnknown)).To(BeTrue())
	g.Expect(PoolDegraded.Better(PoolUnknown)).To(BeTrue())
	g.Expect(PoolUnknown.Better(PoolFaulted)).To(BeFalse())
	g.Expect(PoolFaulted.Better(PoolUnknown)).To(BeFalse())
	// Rank gives a valid total preorder even where Better is undefined.
	g.Expect(PoolUnknown.Rank()).To(Equal(PoolFaulted.Rank()))
}
