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

package scheduler

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/sinhaashish/mayastor-control-plane/pkg/types"
)

func threeNodeThreePoolSnapshot() (map[types.NodeId]types.Node, []PoolItem) {
	nodes := map[types.NodeId]types.Node{
		"A": {Id: "A", Status: types.NodeOnline},
		"B": {Id: "B", Status: types.NodeOnline},
		"C": {Id: "C", Status: types.NodeOnline},
	}
	pools := []PoolItem{
		NewPoolItem(types.Pool{Id: "pool-A", NodeId: "A", Status: types.PoolOnline, Capacity: 100 << 30, Used: 0}, 0),
		NewPoolItem(types.Pool{Id: "pool-B", NodeId: "B", Status: types.PoolOnline, Capacity: 100 << 30, Used: 0}, 0),
		NewPoolItem(types.Pool{Id: "pool-C", NodeId: "C", Status: types.PoolOnline, Capacity: 100 << 30, Used: 0}, 0),
	}
	return nodes, pools
}

func newCtx(nodes map[types.NodeId]types.Node, volumeDataNodes map[types.NodeId]struct{}, req AddReplicaRequest) *PlacementContext {
	return &PlacementContext{
		Request: req,
		Snapshot: Snapshot{
			Nodes:           nodes,
			VolumeDataNodes: volumeDataNodes,
		},
	}
}

// Basic placement: anti-affinity shrinks the candidate set on repeated
// identical calls, then NotEnough once every node hosts a replica.
func TestBasicPlacementThenAntiAffinityExhaustion(t *testing.T) {
	g := NewWithT(t)
	nodes, pools := threeNodeThreePoolSnapshot()
	used := map[types.NodeId]struct{}{}

	req := AddReplicaRequest{VolumeId: "V", Size: 10 << 30}

	for i := 0; i < 3; i++ {
		ctx := newCtx(nodes, used, req)
		chosen, err := SelectPool(ctx, pools, DefaultBasePolicy)
		g.Expect(err).NotTo(HaveOccurred())
		_, alreadyUsed := used[chosen.NodeRef]
		g.Expect(alreadyUsed).To(BeFalse())
		used[chosen.NodeRef] = struct{}{}
	}

	g.Expect(used).To(HaveLen(3))

	ctx := newCtx(nodes, used, req)
	_, err := SelectPool(ctx, pools, DefaultBasePolicy)
	g.Expect(err).To(HaveOccurred())
	g.Expect(IsNotEnough(err, OfPools)).To(BeTrue())
}

// Topology inclusion narrows the candidate set to the matching node.
func TestTopologyInclusionNarrowsCandidates(t *testing.T) {
	g := NewWithT(t)
	nodes := map[types.NodeId]types.Node{
		"A": {Id: "A", Status: types.NodeOnline, Labels: map[string]string{"zone": "eu"}},
		"B": {Id: "B", Status: types.NodeOnline, Labels: map[string]string{"zone": "us"}},
	}
	pools := []PoolItem{
		NewPoolItem(types.Pool{Id: "pool-A", NodeId: "A", Status: types.PoolOnline, Capacity: 100 << 30}, 0),
		NewPoolItem(types.Pool{Id: "pool-B", NodeId: "B", Status: types.PoolOnline, Capacity: 100 << 30}, 0),
	}
	req := AddReplicaRequest{
		VolumeId: "V", Size: 10 << 30,
		Topology: &types.Topology{Node: &types.NodeTopology{Labelled: &types.LabelledTopology{
			Inclusion: map[string]string{"zone": "eu"},
		}}},
	}

	ctx := newCtx(nodes, nil, req)
	chosen, err := SelectPool(ctx, pools, DefaultBasePolicy)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(chosen.NodeRef).To(Equal(types.NodeId("A")))
}

// Inclusion/exclusion sharing a key is unsatisfiable for every node.
func TestTopologyInclusionExclusionConflictYieldsEmpty(t *testing.T) {
	g := NewWithT(t)
	nodes, pools := threeNodeThreePoolSnapshot()
	req := AddReplicaRequest{
		VolumeId: "V", Size: 10 << 30,
		Topology: &types.Topology{Node: &types.NodeTopology{Labelled: &types.LabelledTopology{
			Inclusion: map[string]string{"zone": "eu"},
			Exclusion: map[string]string{"zone": "eu"},
		}}},
	}

	ctx := newCtx(nodes, nil, req)
	_, err := SelectPool(ctx, pools, DefaultBasePolicy)
	g.Expect(err).To(HaveOccurred())
	g.Expect(IsNotEnough(err, OfPools)).To(BeTrue())
}

// A move request exempts the moving replica's source node from
// anti-affinity, provided the destination pool differs from the source
// pool.
func TestMoveReplicaAntiAffinityException(t *testing.T) {
	g := NewWithT(t)
	nodes := map[types.NodeId]types.Node{
		"A": {Id: "A", Status: types.NodeOnline},
		"B": {Id: "B", Status: types.NodeOnline},
	}
	pools := []PoolItem{
		NewPoolItem(types.Pool{Id: "pool1-A", NodeId: "A", Status: types.PoolOnline, Capacity: 100 << 30}, 0),
		NewPoolItem(types.Pool{Id: "pool1-B", NodeId: "B", Status: types.PoolOnline, Capacity: 100 << 30}, 0),
		NewPoolItem(types.Pool{Id: "pool2-B", NodeId: "B", Status: types.PoolOnline, Capacity: 100 << 30}, 0),
	}
	volumeDataNodes := map[types.NodeId]struct{}{"A": {}, "B": {}}

	req := AddReplicaRequest{
		VolumeId: "V", Size: 10 << 30,
		MoveRepl: &MoveReplicaRef{Node: "B", Pool: "pool1-B"},
	}

	ctx := newCtx(nodes, volumeDataNodes, req)
	f := NewResourceFilter[*PlacementContext, PoolItem](ctx, pools)
	candidates := DefaultBasePolicy(f).Collect()

	var ids []types.PoolId
	for _, c := range candidates {
		ids = append(ids, c.PoolState.Id)
	}
	g.Expect(ids).To(ConsistOf(types.PoolId("pool2-B")))
}

// The weighted sort builder is a total, stable comparator: sorting
// twice over the same input yields the same order, and no panics occur
// from an undefined comparison.
func TestSortBuilderTotalAndStable(t *testing.T) {
	g := NewWithT(t)
	pools := []PoolItem{
		NewPoolItem(types.Pool{Id: "p1", Capacity: 100, Used: 90}, 2), // 10 free
		NewPoolItem(types.Pool{Id: "p2", Capacity: 100, Used: 50}, 1), // 50 free
		NewPoolItem(types.Pool{Id: "p3", Capacity: 100, Used: 50}, 0), // 50 free, tie with p2 on free space
	}

	builder := thickSortCriteria()
	cmp := builder.Build(pools)

	sorted1 := append([]PoolItem(nil), pools...)
	f1 := NewResourceFilter[*PlacementContext, PoolItem](nil, sorted1)
	f1.Sort(cmp)
	ranked1 := f1.Collect()

	sorted2 := append([]PoolItem(nil), pools...)
	f2 := NewResourceFilter[*PlacementContext, PoolItem](nil, sorted2)
	f2.Sort(builder.Build(sorted2))
	ranked2 := f2.Collect()

	var ids1, ids2 []types.PoolId
	for _, p := range ranked1 {
		ids1 = append(ids1, p.PoolState.Id)
	}
	for _, p := range ranked2 {
		ids2 = append(ids2, p.PoolState.Id)
	}
	g.Expect(ids1).To(Equal(ids2))
	g.Expect(ids1[0]).To(Equal(types.PoolId("p3"))) // tied on free space with p2, wins on lighter AG load
}

func TestPoolStatusFiltersOutFaultedAndUnknown(t *testing.T) {
	g := NewWithT(t)
	nodes, _ := threeNodeThreePoolSnapshot()
	pools := []PoolItem{
		NewPoolItem(types.Pool{Id: "pool-A", NodeId: "A", Status: types.PoolFaulted, Capacity: 100 << 30}, 0),
		NewPoolItem(types.Pool{Id: "pool-B", NodeId: "B", Status: types.PoolUnknown, Capacity: 100 << 30}, 0),
		NewPoolItem(types.Pool{Id: "pool-C", NodeId: "C", Status: types.PoolOnline, Capacity: 100 << 30}, 0),
	}
	req := AddReplicaRequest{VolumeId: "V", Size: 10 << 30}

	ctx := newCtx(nodes, nil, req)
	chosen, err := SelectPool(ctx, pools, DefaultBasePolicy)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(chosen.PoolState.Id).To(Equal(types.PoolId("pool-C")))
}

func TestExplicitNodeTopologySurfacesAsError(t *testing.T) {
	g := NewWithT(t)
	nodes, pools := threeNodeThreePoolSnapshot()
	req := AddReplicaRequest{
		VolumeId: "V", Size: 10 << 30,
		Topology: &types.Topology{Node: &types.NodeTopology{
			Explicit: &types.ExplicitNodeTopology{AllowedNodes: map[types.NodeId]struct{}{"A": {}}},
		}},
	}

	ctx := newCtx(nodes, nil, req)
	_, err := SelectPool(ctx, pools, DefaultBasePolicy)
	g.Expect(err).To(MatchError(types.ErrExplicitTopologyUnsupported))
}
