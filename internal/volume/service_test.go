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

package volume

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/sinhaashish/mayastor-control-plane/internal/dataplane"
	"github.com/sinhaashish/mayastor-control-plane/internal/perrors"
	"github.com/sinhaashish/mayastor-control-plane/internal/registry"
	"github.com/sinhaashish/mayastor-control-plane/internal/scheduler"
	"github.com/sinhaashish/mayastor-control-plane/internal/store"
	"github.com/sinhaashish/mayastor-control-plane/pkg/types"
)

// memStore is a map-backed Store good enough for service tests.
type memStore struct {
	entries map[string][]byte
}

func newMemStore() *memStore { return &memStore{entries: make(map[string][]byte)} }

func (m *memStore) key(kind store.Kind, id string) string { return string(kind) + "/" + id }

func (m *memStore) Get(_ context.Context, kind store.Kind, id string) (store.Entry, bool, error) {
	v, ok := m.entries[m.key(kind, id)]
	return store.Entry{Key: m.key(kind, id), Value: v}, ok, nil
}

func (m *memStore) List(_ context.Context, _ store.Kind) ([]store.Entry, error) { return nil, nil }

func (m *memStore) Put(_ context.Context, kind store.Kind, id string, value []byte) (uint64, error) {
	m.entries[m.key(kind, id)] = value
	return 1, nil
}

func (m *memStore) CompareAndSwap(_ context.Context, kind store.Kind, id string, _ uint64, value []byte) (uint64, error) {
	m.entries[m.key(kind, id)] = value
	return 1, nil
}

func (m *memStore) Delete(_ context.Context, kind store.Kind, id string) error {
	delete(m.entries, m.key(kind, id))
	return nil
}

func (m *memStore) Close() error { return nil }

// fakeDataPlane answers replica and snapshot calls with values built from
// its arguments; pool calls are unused here.
type fakeDataPlane struct {
	dataplane.Client

	created  []types.ReplicaId
	deleted  []types.ReplicaId
	putErr   error
}

func (f *fakeDataPlane) PutPoolReplica(_ context.Context, _ types.NodeId, pool types.PoolId, replica types.ReplicaId, size uint64, thin bool) (types.Replica, error) {
	if f.putErr != nil {
		return types.Replica{}, f.putErr
	}
	f.created = append(f.created, replica)
	return types.Replica{Id: replica, PoolId: pool, Size: size, Thin: thin, Share: types.ShareNone}, nil
}

func (f *fakeDataPlane) DelPoolReplica(_ context.Context, _ types.NodeId, _ types.PoolId, replica types.ReplicaId) error {
	f.deleted = append(f.deleted, replica)
	return nil
}

func (f *fakeDataPlane) PutReplicaSnapshot(_ context.Context, _ types.NodeId, _ types.ReplicaId, snapshot types.SnapshotId) (types.Snapshot, error) {
	return types.Snapshot{Id: snapshot, Size: 1 << 30}, nil
}

func threeNodeRegistry() *registry.Registry {
	reg := registry.New()
	reg.UpdateNodes([]types.Node{
		{Id: "A", Status: types.NodeOnline},
		{Id: "B", Status: types.NodeOnline},
		{Id: "C", Status: types.NodeOnline},
	})
	reg.Update(
		[]types.Pool{
			{Id: "pool-A", NodeId: "A", Status: types.PoolOnline, Capacity: 100 << 30},
			{Id: "pool-B", NodeId: "B", Status: types.PoolOnline, Capacity: 100 << 30},
			{Id: "pool-C", NodeId: "C", Status: types.PoolOnline, Capacity: 100 << 30},
		},
		nil, nil, nil,
	)
	return reg
}

func owners(vol types.VolumeId) map[types.VolumeId]struct{} {
	return map[types.VolumeId]struct{}{vol: {}}
}

// Placing replicas one at a time never doubles up on a node, and runs the
// fleet dry after one replica per node.
func TestAddReplicaSpreadsAcrossNodes(t *testing.T) {
	g := NewWithT(t)
	reg := threeNodeRegistry()
	dp := &fakeDataPlane{}
	st := newMemStore()
	svc := NewService(reg, dp, st)

	vol := &types.VolumeSpec{Id: "V", Size: 10 << 30, ReplicaCount: 3}

	seen := map[types.PoolId]struct{}{}
	for i := 0; i < 3; i++ {
		r, err := svc.AddReplica(context.Background(), vol, nil, nil)
		g.Expect(err).NotTo(HaveOccurred())
		_, dup := seen[r.PoolId]
		g.Expect(dup).To(BeFalse())
		seen[r.PoolId] = struct{}{}
	}

	_, err := svc.AddReplica(context.Background(), vol, nil, nil)
	g.Expect(err).To(HaveOccurred())
	g.Expect(perrors.Is(err, perrors.KindResourceExhausted)).To(BeTrue())

	// Every created replica's spec was persisted.
	g.Expect(st.entries).To(HaveLen(3))
}

// A moved replica may land back on its own node, on a different pool.
func TestAddReplicaMoveReusesSourceNode(t *testing.T) {
	g := NewWithT(t)
	reg := registry.New()
	reg.UpdateNodes([]types.Node{
		{Id: "A", Status: types.NodeOnline},
		{Id: "B", Status: types.NodeOnline},
	})
	reg.Update(
		[]types.Pool{
			{Id: "pool1-A", NodeId: "A", Status: types.PoolOnline, Capacity: 100 << 30},
			{Id: "pool1-B", NodeId: "B", Status: types.PoolOnline, Capacity: 100 << 30},
			{Id: "pool2-B", NodeId: "B", Status: types.PoolOnline, Capacity: 100 << 30},
		},
		[]types.Replica{
			{Id: "r1", PoolId: "pool1-A", Size: 10 << 30, Owners: owners("V")},
			{Id: "r2", PoolId: "pool1-B", Size: 10 << 30, Owners: owners("V")},
		},
		nil, nil,
	)
	dp := &fakeDataPlane{}
	svc := NewService(reg, dp, newMemStore())

	vol := &types.VolumeSpec{Id: "V", Size: 10 << 30}
	move := &scheduler.MoveReplicaRef{Node: "B", Pool: "pool1-B"}

	r, err := svc.AddReplica(context.Background(), vol, move, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(r.PoolId).To(Equal(types.PoolId("pool2-B")))
}

// Shrinking below the healthy minimum is refused outright.
func TestRemoveReplicaHonorsHealthyMinimum(t *testing.T) {
	g := NewWithT(t)
	reg := threeNodeRegistry()
	healthy := true
	reg.InsertReplica(types.Replica{Id: "r1", PoolId: "pool-A", Size: 10 << 30, Owners: owners("V"), Healthy: &healthy})
	reg.InsertReplica(types.Replica{Id: "r2", PoolId: "pool-B", Size: 10 << 30, Owners: owners("V"), Healthy: &healthy})
	dp := &fakeDataPlane{}
	svc := NewService(reg, dp, newMemStore())

	vol := &types.VolumeSpec{Id: "V", Size: 10 << 30}

	_, err := svc.RemoveReplica(context.Background(), vol, 2, nil)
	g.Expect(err).To(HaveOccurred())
	g.Expect(perrors.Is(err, perrors.KindReplicaChangeCount)).To(BeTrue())
	g.Expect(dp.deleted).To(BeEmpty())
}

// Removal prefers to drop the unhealthy replica and keep the ones a nexus
// is actively using.
func TestRemoveReplicaPicksUnhealthyVictim(t *testing.T) {
	g := NewWithT(t)
	reg := threeNodeRegistry()
	healthy, unhealthy := true, false
	reg.InsertReplica(types.Replica{Id: "r1", PoolId: "pool-A", Size: 10 << 30, Owners: owners("V"), Healthy: &healthy})
	reg.InsertReplica(types.Replica{Id: "r2", PoolId: "pool-B", Size: 10 << 30, Owners: owners("V"), Healthy: &unhealthy})
	reg.InsertReplica(types.Replica{Id: "r3", PoolId: "pool-C", Size: 10 << 30, Owners: owners("V"), Healthy: &healthy})
	reg.InsertNexus(types.Nexus{
		Id: "nx1", NodeId: "A", VolumeId: "V",
		Children: []types.Child{
			{Replica: "r1", State: types.ChildOnline},
			{Replica: "r3", State: types.ChildOnline},
		},
	})
	dp := &fakeDataPlane{}
	st := newMemStore()
	svc := NewService(reg, dp, st)

	vol := &types.VolumeSpec{Id: "V", Size: 10 << 30}

	victim, err := svc.RemoveReplica(context.Background(), vol, 2, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(victim).To(Equal(types.ReplicaId("r2")))
	g.Expect(dp.deleted).To(ConsistOf(types.ReplicaId("r2")))
	_, stillThere := reg.ReplicaState("r2")
	g.Expect(stillThere).To(BeFalse())
}

// A snapshot stays on its source replica's pool.
func TestSnapshotInheritsSourcePool(t *testing.T) {
	g := NewWithT(t)
	reg := threeNodeRegistry()
	reg.InsertReplica(types.Replica{Id: "r1", PoolId: "pool-B", Size: 10 << 30, Owners: owners("V")})
	dp := &fakeDataPlane{}
	svc := NewService(reg, dp, newMemStore())

	vol := &types.VolumeSpec{Id: "V", Size: 10 << 30}

	snap, err := svc.CreateSnapshot(context.Background(), vol, "r1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(snap.PoolId).To(Equal(types.PoolId("pool-B")))
	g.Expect(snap.ReplicaId).To(Equal(types.ReplicaId("r1")))

	stored, ok := reg.SnapshotState(snap.Id)
	g.Expect(ok).To(BeTrue())
	g.Expect(stored.PoolId).To(Equal(types.PoolId("pool-B")))
}

// The nexus target lands on a node with no existing target for the
// volume, favouring the least-loaded node.
func TestSelectTargetNodeAvoidsExistingTargets(t *testing.T) {
	g := NewWithT(t)
	reg := threeNodeRegistry()
	reg.InsertNexus(types.Nexus{Id: "nx1", NodeId: "A", VolumeId: "V"})
	reg.InsertNexus(types.Nexus{Id: "nx2", NodeId: "B", VolumeId: "other"})
	svc := NewService(reg, &fakeDataPlane{}, newMemStore())

	vol := &types.VolumeSpec{Id: "V", Size: 10 << 30}

	node, err := svc.SelectTargetNode(vol, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	// A hosts V's nexus already; C beats B on total nexus count.
	g.Expect(node).To(Equal(types.NodeId("C")))
}

// Cordoned nodes never receive new replicas.
func TestAddReplicaSkipsCordonedNode(t *testing.T) {
	g := NewWithT(t)
	reg := registry.New()
	reg.UpdateNodes([]types.Node{
		{Id: "A", Status: types.NodeOnline, CordonLabels: map[string]string{"maintenance": ""}},
		{Id: "B", Status: types.NodeOnline},
	})
	reg.Update(
		[]types.Pool{
			{Id: "pool-A", NodeId: "A", Status: types.PoolOnline, Capacity: 100 << 30},
			{Id: "pool-B", NodeId: "B", Status: types.PoolOnline, Capacity: 100 << 30},
		},
		nil, nil, nil,
	)
	svc := NewService(reg, &fakeDataPlane{}, newMemStore())

	vol := &types.VolumeSpec{Id: "V", Size: 10 << 30}
	r, err := svc.AddReplica(context.Background(), vol, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(r.PoolId).To(Equal(types.PoolId("pool-B")))
}
