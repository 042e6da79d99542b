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

// NotEnoughOf names the resource family a ResourceExhausted result is
// about.
type NotEnoughOf string

const (
	OfPools    NotEnoughOf = "OfPools"
	OfReplicas NotEnoughOf = "OfReplicas"
	OfNodes    NotEnoughOf = "OfNodes"
	PoolFree   NotEnoughOf = "PoolFree"
)

// DefaultBasePolicy is the add-replica policy: the node chain (cordon,
// connectivity, allow-list, anti-affinity) followed by the pool chain
// (usability, capacity, free space, topology).
func DefaultBasePolicy(f *ResourceFilter[*PlacementContext, PoolItem]) *ResourceFilter[*PlacementContext, PoolItem] {
	return f.
		Filter(CordonedForPool[PoolItem]).
		Filter(OnlineForPool[PoolItem]).
		Filter(Allowed[PoolItem]).
		Filter(UnusedForPool).
		Filter(Usable).
		Filter(Capacity).
		Filter(MinFreeSpace).
		Filter(NodeTopology[PoolItem]).
		Filter(PoolTopology)
}

// FilterSnapshot is the snapshot-creation policy: node cordon and
// connectivity checks, then pool usability, capacity and free space. It
// deliberately omits the allow-list, anti-affinity and topology filters,
// which are request-shape specific to volume replica placement.
func FilterSnapshot(f *ResourceFilter[*PlacementContext, PoolItem]) *ResourceFilter[*PlacementContext, PoolItem] {
	return f.
		Filter(CordonedForPool[PoolItem]).
		Filter(OnlineForPool[PoolItem]).
		Filter(Usable).
		Filter(Capacity).
		Filter(MinFreeSpace)
}

// FilterClone is identical to FilterSnapshot.
func FilterClone(f *ResourceFilter[*PlacementContext, PoolItem]) *ResourceFilter[*PlacementContext, PoolItem] {
	return FilterSnapshot(f)
}

// thickSortCriteria weighs free space most heavily for thick provisioning,
// since thick pools cannot overcommit and available headroom is the only
// soft signal left once the hard filters pass.
func thickSortCriteria() *SortBuilder[PoolItem] {
	return NewSortBuilder[PoolItem]().
		Add(SortCriteria[PoolItem]{Weight: 0.7, Value: func(p PoolItem) float64 {
			return float64(p.PoolState.FreeSpace())
		}}).
		Add(SortCriteria[PoolItem]{Weight: 0.3, Value: func(p PoolItem) float64 {
			// Fewer existing affinity-group replicas on the pool is
			// preferred; invert so higher Value() means higher score.
			return 1.0 / float64(1+p.AffinityGroupReplicasOnPool)
		}})
}

// ThickPolicy extends DefaultBasePolicy with the weighted sort
// appropriate to thick provisioning.
func ThickPolicy(f *ResourceFilter[*PlacementContext, PoolItem]) *ResourceFilter[*PlacementContext, PoolItem] {
	f = DefaultBasePolicy(f)
	cmp := thickSortCriteria().Build(f.Collect())
	return f.Sort(cmp)
}

// simpleSortCriteria ranks pools on free space (0.5), thin-aware
// overcommit headroom, i.e. capacity minus committed bytes floored at
// zero (0.3), and the affinity-group spread term (0.2). It has no
// free-space watermark term.
func simpleSortCriteria() *SortBuilder[PoolItem] {
	return NewSortBuilder[PoolItem]().
		Add(SortCriteria[PoolItem]{Weight: 0.5, Value: func(p PoolItem) float64 {
			return float64(p.PoolState.FreeSpace())
		}}).
		Add(SortCriteria[PoolItem]{Weight: 0.3, Value: func(p PoolItem) float64 {
			capacity := p.PoolState.Capacity
			if capacity == 0 {
				return 0
			}
			headroom := capacity - p.PoolState.CommittedBytes()
			if p.PoolState.CommittedBytes() > capacity {
				headroom = 0
			}
			return float64(headroom)
		}}).
		Add(SortCriteria[PoolItem]{Weight: 0.2, Value: func(p PoolItem) float64 {
			return 1.0 / float64(1+p.AffinityGroupReplicasOnPool)
		}})
}

// SimplePolicy extends DefaultBasePolicy with overcommit filtering and
// the thin-aware weighted sort.
func SimplePolicy(f *ResourceFilter[*PlacementContext, PoolItem]) *ResourceFilter[*PlacementContext, PoolItem] {
	f = DefaultBasePolicy(f).Filter(Overcommit)
	cmp := simpleSortCriteria().Build(f.Collect())
	return f.Sort(cmp)
}

// SelectPool runs the given policy over the candidate pools and returns
// the top-ranked choice, or a NotEnough error if the policy's pipeline
// empties the candidate set. A
// TopologyErr recorded during filtering is surfaced ahead of NotEnough,
// since an unsupported-topology condition is a distinct failure from
// ordinary resource exhaustion.
func SelectPool(ctx *PlacementContext, pools []PoolItem, policy Policy[*PlacementContext, PoolItem]) (PoolItem, error) {
	f := NewResourceFilter[*PlacementContext, PoolItem](ctx, pools)
	ranked := policy(f).Collect()
	if ctx.TopologyErr != nil {
		return PoolItem{}, ctx.TopologyErr
	}
	if len(ranked) == 0 {
		return PoolItem{}, NotEnoughErr(OfPools, 0, 1)
	}
	return ranked[0], nil
}

// notEnoughError is returned by SelectPool when a policy's
// pipeline yields no candidates. It is a distinct, typed result so
// callers can map it onto perrors.KindResourceExhausted without string
// matching.
type notEnoughError struct {
	Of   NotEnoughOf
	Have int
	Need int
}

func (e *notEnoughError) Error() string {
	return string(e.Of)
}

// NotEnoughErr builds the typed exhaustion error returned when a
// policy's pipeline yields no candidates.
func NotEnoughErr(of NotEnoughOf, have, need int) error {
	return &notEnoughError{Of: of, Have: have, Need: need}
}

// IsNotEnough reports whether err is a NotEnoughErr of the given family.
func IsNotEnough(err error, of NotEnoughOf) bool {
	ne, ok := err.(*notEnoughError)
	return ok && ne.Of == of
}
