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

// The node filter library is written once against NodeCarrier and reused
// by both PoolItem and NodeItem pipelines.

// OnlineForPool / Online: node connectivity is Online.
func OnlineForPool[I NodeCarrier](ctx *PlacementContext, item I) bool {
	node, ok := ctx.NodeState(item.NodeID())
	return ok && node.Status == types.NodeOnline
}

// Allowed: if the request carries a non-empty allow-list, the candidate's
// node must be in it; otherwise every node passes.
func Allowed[I NodeCarrier](ctx *PlacementContext, item I) bool {
	if len(ctx.Request.AllowedNodes) == 0 {
		return true
	}
	for _, n := range ctx.Request.AllowedNodes {
		if n == item.NodeID() {
			return true
		}
	}
	return false
}

// CordonedForPool / Cordoned: candidate's node is not cordoned.
func CordonedForPool[I NodeCarrier](ctx *PlacementContext, item I) bool {
	node, ok := ctx.NodeState(item.NodeID())
	return ok && !node.Cordoned()
}

// CurrentTarget excludes the node currently hosting the volume's target
// nexus.
func CurrentTarget[I NodeCarrier](ctx *PlacementContext, item I) bool {
	if ctx.Snapshot.CurrentTargetNode == nil {
		return true
	}
	return *ctx.Snapshot.CurrentTargetNode != item.NodeID()
}

// NoTargets excludes nodes hosting any nexus for the request's volume.
func NoTargets[I NodeCarrier](ctx *PlacementContext, item I) bool {
	_, has := ctx.Snapshot.VolumeNexusNodes[item.NodeID()]
	return !has
}

// NodeTopology evaluates the node's Labelled inclusion/exclusion
// constraint. An Explicit constraint is a hard, unimplemented failure:
// it is recorded on ctx.TopologyErr (surfaced by the caller) and the
// candidate is rejected, never silently passed.
func NodeTopology[I NodeCarrier](ctx *PlacementContext, item I) bool {
	if ctx.Request.Topology == nil || ctx.Request.Topology.Node == nil {
		return true
	}
	node, ok := ctx.NodeState(item.NodeID())
	if !ok {
		return false
	}
	match, err := ctx.Request.Topology.Node.MatchNode(node.Labels)
	if err != nil {
		if ctx.TopologyErr == nil {
			ctx.TopologyErr = err
		}
		return false
	}
	return match
}

// UnusedForPool implements the *unused* filter against a PoolItem: the
// candidate's node must not already host a replica of the volume, unless
// the replica-move exception applies for this destination pool.
func UnusedForPool(ctx *PlacementContext, item PoolItem) bool {
	return ctx.unused(item.NodeRef, item.PoolState.Id)
}
