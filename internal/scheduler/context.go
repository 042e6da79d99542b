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

import "github.com/sinhaashish/mayastor-control-plane/pkg/types"

// MoveReplicaRef names the source of a replica move, granting the single
// anti-affinity exception: the replica's current node stays eligible
// provided the destination pool differs from its current pool.
type MoveReplicaRef struct {
	Node types.NodeId
	Pool types.PoolId
}

// AddReplicaRequest is the request shape consulted by the node/pool filter
// chains and the weighted sort builder when placing a new (or moved)
// volume replica.
type AddReplicaRequest struct {
	VolumeId types.VolumeId
	Size     uint64
	Thin     bool
	Topology *types.Topology

	// AllowedNodes implements the *allowed* filter: when non-empty, only
	// these nodes are eligible.
	AllowedNodes []types.NodeId

	// MoveRepl is set only when this request is moving an existing
	// replica, not adding a brand new one.
	MoveRepl *MoveReplicaRef

	// AllowedCommitPercent bounds thin-pool overcommit as a percentage of
	// capacity (volume.Service fills it from its CommitPercent, default
	// 250); the Overcommit filter treats 0 as 100.
	AllowedCommitPercent uint64
}

// Snapshot is the read-only set of borrowed state a placement decision is
// made over: the scheduler never talks to the registry mid-pipeline, it
// consults one consistent snapshot taken before the pipeline starts.
type Snapshot struct {
	Nodes    map[types.NodeId]types.Node
	PoolNode map[types.PoolId]types.NodeId

	// VolumeDataNodes is the set of nodes already hosting a replica of the
	// volume in question (registry.VolumeDataNodes, precomputed).
	VolumeDataNodes map[types.NodeId]struct{}

	// CurrentTargetNode is the node currently hosting the volume's nexus,
	// if published; nil otherwise.
	CurrentTargetNode *types.NodeId

	// VolumeNexusNodes is the set of nodes hosting any nexus for the
	// volume (used by the no_targets filter, which is broader than just
	// the current target).
	VolumeNexusNodes map[types.NodeId]struct{}

	// ShutdownFailedReplicaNodes records, for each node, the set of
	// replica ids still referenced by a shutdown-failed nexus on that
	// node (consulted by the *reservable* child filter).
	ShutdownFailedReplicaNodes map[types.NodeId]map[types.ReplicaId]struct{}

	// PoolFreeSpace is consulted by AddReplicaSorters to break ties by
	// greatest free space on the replica's owning pool.
	PoolFreeSpace map[types.PoolId]uint64
}

// PlacementContext is the C type parameter threaded through every
// ResourceFilter pipeline in this package.
type PlacementContext struct {
	Request  AddReplicaRequest
	Snapshot Snapshot

	// TopologyErr is set by the node-topology filter when the request
	// carries an Explicit node topology, which must surface as a hard
	// error rather than a silent pass. Callers must
	// check this after running a policy and before treating an empty
	// result as ordinary NotEnough.
	TopologyErr error
}

// NodeState looks up a node from the borrowed snapshot.
func (c *PlacementContext) NodeState(id types.NodeId) (types.Node, bool) {
	n, ok := c.Snapshot.Nodes[id]
	return n, ok
}

// unused implements the *unused* node filter's anti-affinity exception:
// the candidate node is acceptable if it is not already a data node for
// the volume, OR it is the move's source node and the destination pool
// differs from the move's source pool.
func (c *PlacementContext) unused(node types.NodeId, destPool types.PoolId) bool {
	_, used := c.Snapshot.VolumeDataNodes[node]
	if !used {
		return true
	}
	if c.Request.MoveRepl != nil && c.Request.MoveRepl.Node == node && c.Request.MoveRepl.Pool != destPool {
		return true
	}
	return false
}
