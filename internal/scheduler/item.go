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

// ChildInfo is the persisted nexus-child health record, distinct from
// the live ChildState observed from the data-plane: info survives a
// restart, state does not.
type ChildInfo struct {
	Healthy bool
}

// NodeCarrier is satisfied by any candidate item that names the node it
// would occupy. The node filter library (node_filters.go) is written once
// against this interface and reused by both PoolItem and NodeItem.
type NodeCarrier interface {
	NodeID() types.NodeId
}

// PoolItem is a pool candidate being considered for a new or moved
// replica.
type PoolItem struct {
	NodeRef                     types.NodeId
	PoolState                   types.Pool
	AffinityGroupReplicasOnPool int
}

// NodeID implements NodeCarrier.
func (p PoolItem) NodeID() types.NodeId { return p.NodeRef }

// NewPoolItem builds a PoolItem from a pool's current state.
func NewPoolItem(pool types.Pool, agReplicasOnPool int) PoolItem {
	return PoolItem{NodeRef: pool.NodeId, PoolState: pool, AffinityGroupReplicasOnPool: agReplicasOnPool}
}

// NodeItem is a node candidate being considered as a nexus target.
type NodeItem struct {
	NodeWrapper             types.Node
	AffinityGroupNexusCount int
	AGPreferred             bool
}

// NodeID implements NodeCarrier.
func (n NodeItem) NodeID() types.NodeId { return n.NodeWrapper.Id }

// ChildItem is a nexus-child candidate, consulted when assembling or
// rebuilding a nexus.
type ChildItem struct {
	ReplicaState types.Replica
	PoolRef      types.PoolId
	ChildSpec    *types.Child
	ChildState   *types.ChildState
	Info         *ChildInfo
}

// NodeID resolves the child's node through the owning pool, using the
// pool->node mapping the caller supplies since ChildItem alone does not
// carry it. Because it takes that argument, ChildItem does not satisfy
// NodeCarrier.
func (c ChildItem) NodeID(poolNode map[types.PoolId]types.NodeId) types.NodeId {
	return poolNode[c.PoolRef]
}

// ReplicaItem is a replica candidate for removal or rebuild ranking.
type ReplicaItem struct {
	SpecRef               types.Replica
	ChildInfo             *ChildInfo
	ChildState            *types.ChildState
	AGReplicasOnPool       int
}
