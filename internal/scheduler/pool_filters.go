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

const minFreeSpaceThin = 16 * 1024 * 1024 // 16 MiB

// Usable: pool status is neither Faulted nor Unknown.
func Usable(ctx *PlacementContext, item PoolItem) bool {
	s := item.PoolState.Status
	return s != types.PoolFaulted && s != types.PoolUnknown
}

// Capacity: pool capacity strictly greater than the requested size.
func Capacity(ctx *PlacementContext, item PoolItem) bool {
	return item.PoolState.Capacity > ctx.Request.Size
}

// Overcommit is a no-op for thick requests; for thin requests, the
// projected committed size after accepting this request must stay under
// the configured percentage of capacity.
func Overcommit(ctx *PlacementContext, item PoolItem) bool {
	if !ctx.Request.Thin {
		return true
	}
	percent := ctx.Request.AllowedCommitPercent
	if percent == 0 {
		percent = 100
	}
	projected := (ctx.Request.Size + item.PoolState.CommittedBytes()) * 100
	return projected < item.PoolState.Capacity*percent
}

// MinFreeSpace: thin requires free_space > 16 MiB; thick requires
// free_space > requested_size.
func MinFreeSpace(ctx *PlacementContext, item PoolItem) bool {
	free := item.PoolState.FreeSpace()
	if ctx.Request.Thin {
		return free > minFreeSpaceThin
	}
	return free > ctx.Request.Size
}

// MinFreeSpaceFullRebuild is MinFreeSpace, except the thin relaxation
// only applies when the pool carries no committed-size tracking at all
// (Committed == nil), meaning a full rebuild is expected rather than an
// incremental one.
func MinFreeSpaceFullRebuild(ctx *PlacementContext, item PoolItem) bool {
	if ctx.Request.Thin && item.PoolState.Committed == nil {
		return item.PoolState.FreeSpace() > minFreeSpaceThin
	}
	return item.PoolState.FreeSpace() > ctx.Request.Size
}

// PoolTopology: Labelled inclusion must match the pool's labels; an
// empty request value acts as a presence-only wildcard.
func PoolTopology(ctx *PlacementContext, item PoolItem) bool {
	if ctx.Request.Topology == nil || ctx.Request.Topology.Pool == nil {
		return true
	}
	return ctx.Request.Topology.Pool.MatchPool(item.PoolState.Labels)
}
