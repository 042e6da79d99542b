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

// ChildHealthy: on first creation (no persisted nexus info) every
// candidate is deemed healthy; otherwise it must carry info.healthy==true.
func ChildHealthy(ctx *PlacementContext, item ChildItem) bool {
	if item.Info == nil {
		return true
	}
	return item.Info.Healthy
}

// ChildOnline: the replica's child state is online.
func ChildOnline(ctx *PlacementContext, item ChildItem) bool {
	return item.ChildState != nil && *item.ChildState == types.ChildOnline
}

// ChildSize: replica size must be at least the requested volume size.
func ChildSize(ctx *PlacementContext, item ChildItem) bool {
	return item.ReplicaState.Size >= ctx.Request.Size
}

// ChildReservable: no shutdown-failed nexus on the same node still
// references this replica. A shutdown-failed nexus pins its children
// until an operator intervenes, so a replica it still references cannot
// be handed to a fresh nexus on that node.
func ChildReservable(ctx *PlacementContext, item ChildItem) bool {
	node := ctx.Snapshot.PoolNode[item.PoolRef]
	pinned := ctx.Snapshot.ShutdownFailedReplicaNodes[node]
	if pinned == nil {
		return true
	}
	_, isPinned := pinned[item.ReplicaState.Id]
	return !isPinned
}
