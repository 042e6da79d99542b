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

// isRemote reports whether a replica is reachable over the wire (shared)
// rather than only attachable in-process. Locality sorting prefers to
// keep remote replicas and remove local ones, since removing a local
// replica costs nothing to the rest of the fleet's reachability.
func isRemote(r ReplicaItem) bool {
	return r.SpecRef.Share != "" && r.SpecRef.Share != "None"
}

// ChildSorters orders candidates for removal: healthy
// preferred over unhealthy; replicas currently participating in a nexus
// kept over ones that are not; when both participate, the remote
// (shared) child is preferred to keep, for locality of what remains;
// ties broken by ascending affinity-group replica count on the pool, so
// removal drains the more-loaded pool first.
func ChildSorters(a, b ReplicaItem) bool {
	aHealthy := a.ChildInfo != nil && a.ChildInfo.Healthy
	bHealthy := b.ChildInfo != nil && b.ChildInfo.Healthy
	if aHealthy != bHealthy {
		return aHealthy // healthy sorts first, i.e. is kept/preferred
	}

	aInNexus := a.ChildState != nil
	bInNexus := b.ChildState != nil
	if aInNexus != bInNexus {
		return aInNexus
	}

	if aInNexus && bInNexus {
		aRemote, bRemote := isRemote(a), isRemote(b)
		if aRemote != bRemote {
			return aRemote
		}
	}

	// Ascending affinity-group replica count: the less-loaded pool's
	// replica sorts first, i.e. is the preferred keep (reversed cmp).
	return a.AGReplicasOnPool < b.AGReplicasOnPool
}

// childIsLocal reports whether a child's replica is local-only (not
// shared over the wire).
func childIsLocal(c ChildItem) bool {
	return c.ReplicaState.Share == "" || c.ReplicaState.Share == "None"
}

// ChildItemSortByLocality orders children local to the target node first.
func ChildItemSortByLocality() Less[ChildItem] {
	return func(a, b ChildItem) bool {
		aLocal, bLocal := childIsLocal(a), childIsLocal(b)
		return aLocal && !bLocal
	}
}

// AddReplicaSorters orders candidates when assembling a nexus's children
// for a new replica: local-to-nexus first, then healthy, then greatest
// pool free space.
func AddReplicaSorters() CtxLess[*PlacementContext, ChildItem] {
	return func(ctx *PlacementContext, a, b ChildItem) bool {
		aLocal, bLocal := childIsLocal(a), childIsLocal(b)
		if aLocal != bLocal {
			return aLocal
		}
		aHealthy := a.Info != nil && a.Info.Healthy
		bHealthy := b.Info != nil && b.Info.Healthy
		if aHealthy != bHealthy {
			return aHealthy
		}
		return ctx.Snapshot.PoolFreeSpace[a.PoolRef] > ctx.Snapshot.PoolFreeSpace[b.PoolRef]
	}
}

// NodeNumberTargets orders node candidates ascending by affinity-group
// nexus count, then prefers nodes already marked preferred by the
// affinity group, then ascending total nexus count. Total nexus count is
// supplied by the caller since NodeItem only carries the
// affinity-group-scoped count.
func NodeNumberTargets(totalNexusCount map[string]int) Less[NodeItem] {
	return func(a, b NodeItem) bool {
		if a.AffinityGroupNexusCount != b.AffinityGroupNexusCount {
			return a.AffinityGroupNexusCount < b.AffinityGroupNexusCount
		}
		if a.AGPreferred != b.AGPreferred {
			return a.AGPreferred
		}
		return totalNexusCount[string(a.NodeWrapper.Id)] < totalNexusCount[string(b.NodeWrapper.Id)]
	}
}
