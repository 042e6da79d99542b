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

import (
	"github.com/sinhaashish/mayastor-control-plane/pkg/types"
)

// Registry is the authoritative in-memory view of every node, pool,
// replica, nexus and snapshot the control plane knows about. It performs
// no I/O of its own and is kept current by its callers through Update,
// UpdateNodes and the point-wise Insert/Remove calls; volume.Service
// records the replicas and snapshots it creates or removes.
type Registry struct {
	nodes     *ResourceMap[types.NodeId, types.Node]
	pools     *ResourceMap[types.PoolId, types.Pool]
	replicas  *ResourceMap[types.ReplicaId, types.Replica]
	nexuses   *ResourceMap[types.NexusId, types.Nexus]
	snapshots *ResourceMap[types.SnapshotId, types.Snapshot]
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		nodes:     NewResourceMap[types.NodeId, types.Node](),
		pools:     NewResourceMap[types.PoolId, types.Pool](),
		replicas:  NewResourceMap[types.ReplicaId, types.Replica](),
		nexuses:   NewResourceMap[types.NexusId, types.Nexus](),
		snapshots: NewResourceMap[types.SnapshotId, types.Snapshot](),
	}
}

// Update atomically replaces the pools, replicas, nexuses and snapshots
// collections. Each collection flips independently but a reader that only
// ever reads one collection at a time still sees either the fully-old or
// fully-new generation of it.
// Nodes are updated separately via UpdateNodes, since they come from a
// distinct discovery source in practice.
func (r *Registry) Update(pools []types.Pool, replicas []types.Replica, nexuses []types.Nexus, snapshots []types.Snapshot) {
	r.pools.Replace(keysOf(pools, func(p types.Pool) types.PoolId { return p.Id }), pools)
	r.replicas.Replace(keysOf(replicas, func(rp types.Replica) types.ReplicaId { return rp.Id }), replicas)
	r.nexuses.Replace(keysOf(nexuses, func(n types.Nexus) types.NexusId { return n.Id }), nexuses)
	r.snapshots.Replace(keysOf(snapshots, func(s types.Snapshot) types.SnapshotId { return s.Id }), snapshots)
}

// UpdateNodes atomically replaces the node collection.
func (r *Registry) UpdateNodes(nodes []types.Node) {
	r.nodes.Replace(keysOf(nodes, func(n types.Node) types.NodeId { return n.Id }), nodes)
}

func keysOf[V any, K comparable](items []V, key func(V) K) []K {
	out := make([]K, len(items))
	for i, it := range items {
		out[i] = key(it)
	}
	return out
}

// InsertNode / RemoveNode / InsertPool / ... are the point-wise atomic
// single-entity deltas.

func (r *Registry) InsertNode(n types.Node) { r.nodes.Insert(n.Id, n) }
func (r *Registry) RemoveNode(id types.NodeId) { r.nodes.Remove(id) }

func (r *Registry) InsertPool(p types.Pool) { r.pools.Insert(p.Id, p) }
func (r *Registry) RemovePool(id types.PoolId) { r.pools.Remove(id) }

func (r *Registry) InsertReplica(rp types.Replica) { r.replicas.Insert(rp.Id, rp) }
func (r *Registry) RemoveReplica(id types.ReplicaId) { r.replicas.Remove(id) }

func (r *Registry) InsertNexus(n types.Nexus) { r.nexuses.Insert(n.Id, n) }
func (r *Registry) RemoveNexus(id types.NexusId) { r.nexuses.Remove(id) }

func (r *Registry) InsertSnapshot(s types.Snapshot) { r.snapshots.Insert(s.Id, s) }
func (r *Registry) RemoveSnapshot(id types.SnapshotId) { r.snapshots.Remove(id) }

// Typed lookups — each returns a clone plus a found flag.

func (r *Registry) NodeState(id types.NodeId) (types.Node, bool) { return r.nodes.Get(id) }
func (r *Registry) PoolState(id types.PoolId) (types.Pool, bool) { return r.pools.Get(id) }
func (r *Registry) ReplicaState(id types.ReplicaId) (types.Replica, bool) { return r.replicas.Get(id) }
func (r *Registry) NexusState(id types.NexusId) (types.Nexus, bool) { return r.nexuses.Get(id) }
func (r *Registry) SnapshotState(id types.SnapshotId) (types.Snapshot, bool) {
	return r.snapshots.Get(id)
}

// Guard accessors, for callers that need operation_guard_wait semantics
// around a multi-step operation on a single entity.

func (r *Registry) NodeGuard(id types.NodeId) *Guard[types.Node]       { return r.nodes.Guard(id) }
func (r *Registry) PoolGuard(id types.PoolId) *Guard[types.Pool]       { return r.pools.Guard(id) }
func (r *Registry) ReplicaGuard(id types.ReplicaId) *Guard[types.Replica] {
	return r.replicas.Guard(id)
}
func (r *Registry) NexusGuard(id types.NexusId) *Guard[types.Nexus] { return r.nexuses.Guard(id) }

// Iteration/snapshot accessors over whole collections.

func (r *Registry) Nodes() []types.Node         { return r.nodes.Snapshot() }
func (r *Registry) Pools() []types.Pool         { return r.pools.Snapshot() }
func (r *Registry) Replicas() []types.Replica   { return r.replicas.Snapshot() }
func (r *Registry) Nexuses() []types.Nexus      { return r.nexuses.Snapshot() }
func (r *Registry) Snapshots() []types.Snapshot { return r.snapshots.Snapshot() }

// PoolsOnNode returns the pools owned by a given node, in insertion order.
func (r *Registry) PoolsOnNode(node types.NodeId) []types.Pool {
	var out []types.Pool
	r.pools.Each(func(_ types.PoolId, p types.Pool) bool {
		if p.NodeId == node {
			out = append(out, p)
		}
		return true
	})
	return out
}

// ReplicasOnPool returns the replicas living on a given pool.
func (r *Registry) ReplicasOnPool(pool types.PoolId) []types.Replica {
	var out []types.Replica
	r.replicas.Each(func(_ types.ReplicaId, rp types.Replica) bool {
		if rp.PoolId == pool {
			out = append(out, rp)
		}
		return true
	})
	return out
}

// VolumeDataNodes returns the set of nodes currently holding a replica
// owned by the given volume.
func (r *Registry) VolumeDataNodes(volume types.VolumeId) map[types.NodeId]struct{} {
	poolNode := make(map[types.PoolId]types.NodeId)
	r.pools.Each(func(id types.PoolId, p types.Pool) bool {
		poolNode[id] = p.NodeId
		return true
	})

	out := make(map[types.NodeId]struct{})
	r.replicas.Each(func(_ types.ReplicaId, rp types.Replica) bool {
		if !rp.OwnedBy(volume) {
			return true
		}
		if node, ok := poolNode[rp.PoolId]; ok {
			out[node] = struct{}{}
		}
		return true
	})
	return out
}

// CordonedNodes returns the specs of every node currently carrying a
// cordon marker.
func (r *Registry) CordonedNodes() []types.Node {
	var out []types.Node
	r.nodes.Each(func(_ types.NodeId, n types.Node) bool {
		if n.Cordoned() {
			out = append(out, n)
		}
		return true
	})
	return out
}

// VolumeNexuses returns the nexuses belonging to the given volume.
func (r *Registry) VolumeNexuses(volume types.VolumeId) []types.Nexus {
	var out []types.Nexus
	r.nexuses.Each(func(_ types.NexusId, n types.Nexus) bool {
		if n.VolumeId == volume {
			out = append(out, n)
		}
		return true
	})
	return out
}
