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

// Package volume drives replica lifecycle for volumes: it reads a
// consistent snapshot out of the registry, runs the scheduling pipeline
// to rank candidates, then commits the top-ranked choice through the
// data-plane client and persists the resulting spec.
package volume

import (
	"context"
	"encoding/json"

	"github.com/sinhaashish/mayastor-control-plane/internal/dataplane"
	"github.com/sinhaashish/mayastor-control-plane/internal/metrics"
	"github.com/sinhaashish/mayastor-control-plane/internal/perrors"
	"github.com/sinhaashish/mayastor-control-plane/internal/registry"
	"github.com/sinhaashish/mayastor-control-plane/internal/scheduler"
	"github.com/sinhaashish/mayastor-control-plane/internal/store"
	"github.com/sinhaashish/mayastor-control-plane/internal/tele"
	"github.com/sinhaashish/mayastor-control-plane/pkg/types"
)

// DefaultCommitPercent bounds thin-pool overcommit when the request does
// not carry its own limit.
const DefaultCommitPercent = 250

// Service owns replica placement and removal for volumes.
type Service struct {
	registry  *registry.Registry
	dataplane dataplane.Client
	store     store.Store

	// CommitPercent is the thin overcommit ceiling applied to every
	// placement this service makes.
	CommitPercent uint64
}

// NewService wires a Service over its collaborators.
func NewService(reg *registry.Registry, dp dataplane.Client, st store.Store) *Service {
	return &Service{registry: reg, dataplane: dp, store: st, CommitPercent: DefaultCommitPercent}
}

// snapshotFor clones the registry state a single placement decision needs.
// Everything is copied by value up front; the pipeline never goes back to
// the registry mid-decision.
func (s *Service) snapshotFor(vol *types.VolumeSpec) scheduler.Snapshot {
	snap := scheduler.Snapshot{
		Nodes:                      make(map[types.NodeId]types.Node),
		PoolNode:                   make(map[types.PoolId]types.NodeId),
		VolumeNexusNodes:           make(map[types.NodeId]struct{}),
		ShutdownFailedReplicaNodes: make(map[types.NodeId]map[types.ReplicaId]struct{}),
		PoolFreeSpace:              make(map[types.PoolId]uint64),
	}
	for _, n := range s.registry.Nodes() {
		snap.Nodes[n.Id] = n.Clone()
	}
	for _, p := range s.registry.Pools() {
		snap.PoolNode[p.Id] = p.NodeId
		snap.PoolFreeSpace[p.Id] = p.FreeSpace()
	}
	snap.VolumeDataNodes = s.registry.VolumeDataNodes(vol.Id)
	for _, nx := range s.registry.VolumeNexuses(vol.Id) {
		snap.VolumeNexusNodes[nx.NodeId] = struct{}{}
	}
	for _, nx := range s.registry.Nexuses() {
		for _, ch := range nx.Children {
			if ch.State != types.ChildShutdownErr {
				continue
			}
			pinned := snap.ShutdownFailedReplicaNodes[nx.NodeId]
			if pinned == nil {
				pinned = make(map[types.ReplicaId]struct{})
				snap.ShutdownFailedReplicaNodes[nx.NodeId] = pinned
			}
			pinned[ch.Replica] = struct{}{}
		}
	}
	return snap
}

// poolCandidates builds one PoolItem per known pool, counting how many
// replicas of the volume's affinity group already sit on each.
func (s *Service) poolCandidates(vol *types.VolumeSpec, agVolumes map[types.VolumeId]struct{}) []scheduler.PoolItem {
	pools := s.registry.Pools()
	items := make([]scheduler.PoolItem, 0, len(pools))
	for _, p := range pools {
		agCount := 0
		for _, r := range s.registry.ReplicasOnPool(p.Id) {
			for v := range agVolumes {
				if r.OwnedBy(v) {
					agCount++
					break
				}
			}
		}
		items = append(items, scheduler.NewPoolItem(p.Clone(), agCount))
	}
	return items
}

// placementContext assembles the request/snapshot pair every pipeline in
// this package runs over.
func (s *Service) placementContext(vol *types.VolumeSpec, move *scheduler.MoveReplicaRef) *scheduler.PlacementContext {
	return &scheduler.PlacementContext{
		Request: scheduler.AddReplicaRequest{
			VolumeId:             vol.Id,
			Size:                 vol.Size,
			Thin:                 vol.Thin,
			Topology:             vol.Topology,
			MoveRepl:             move,
			AllowedCommitPercent: s.CommitPercent,
		},
		Snapshot: s.snapshotFor(vol),
	}
}

// AddReplica places and creates one new replica for vol. When move is
// set the placement may reuse the moving replica's node, as long as the
// chosen pool differs from the one the replica is moving off.
func (s *Service) AddReplica(ctx context.Context, vol *types.VolumeSpec, move *scheduler.MoveReplicaRef, agVolumes map[types.VolumeId]struct{}) (types.Replica, error) {
	ctx, log, done := tele.StartSpanWithLogger(ctx, "volume.add_replica", tele.KVP("volume", string(vol.Id)))
	defer done()

	pctx := s.placementContext(vol, move)
	policy := scheduler.ThickPolicy
	if vol.Thin {
		policy = scheduler.SimplePolicy
	}

	chosen, err := scheduler.SelectPool(pctx, s.poolCandidates(vol, agVolumes), policy)
	if err != nil {
		metrics.SchedulerSelections.WithLabelValues("exhausted").Inc()
		if scheduler.IsNotEnough(err, scheduler.OfPools) {
			return types.Replica{}, perrors.NotEnough(string(scheduler.OfPools), 0, 1)
		}
		return types.Replica{}, perrors.Wrap(err, perrors.KindFailedPrecondition, perrors.ResourcePool)
	}
	metrics.SchedulerSelections.WithLabelValues("success").Inc()

	guard := s.registry.PoolGuard(chosen.PoolState.Id)
	if guard != nil {
		if err := guard.WaitLock(ctx); err != nil {
			return types.Replica{}, perrors.Wrap(err, perrors.KindDeadlineExceeded, perrors.ResourcePool)
		}
	}

	id := types.NewReplicaId()
	created, err := s.dataplane.PutPoolReplica(ctx, chosen.NodeRef, chosen.PoolState.Id, id, vol.Size, vol.Thin)
	if err != nil {
		return types.Replica{}, err
	}
	created.Owners = map[types.VolumeId]struct{}{vol.Id: {}}

	s.registry.InsertReplica(created)
	if err := s.persistReplica(ctx, created); err != nil {
		return types.Replica{}, err
	}
	log.Info("replica placed", "pool", string(chosen.PoolState.Id), "node", string(chosen.NodeRef))
	return created, nil
}

// RemoveReplica picks the volume's least valuable replica and destroys
// it. The volume must keep at least healthyMin replicas after removal.
func (s *Service) RemoveReplica(ctx context.Context, vol *types.VolumeSpec, healthyMin int, agVolumes map[types.VolumeId]struct{}) (types.ReplicaId, error) {
	ctx, log, done := tele.StartSpanWithLogger(ctx, "volume.remove_replica", tele.KVP("volume", string(vol.Id)))
	defer done()

	items := s.replicaItems(vol, agVolumes)
	if len(items) <= healthyMin {
		return "", perrors.New(perrors.KindReplicaChangeCount, perrors.ResourceVolume, map[string]interface{}{
			"have": len(items), "min": healthyMin,
		})
	}

	pctx := s.placementContext(vol, nil)
	f := scheduler.NewResourceFilter[*scheduler.PlacementContext, scheduler.ReplicaItem](pctx, items)
	ranked := f.Sort(scheduler.ChildSorters).Collect()

	// The sort puts the replicas worth keeping first; the last entry is
	// the removal victim.
	victim := ranked[len(ranked)-1]
	pool, ok := s.registry.PoolState(victim.SpecRef.PoolId)
	if !ok {
		return "", perrors.New(perrors.KindNotFound, perrors.ResourcePool, nil)
	}

	if err := s.dataplane.DelPoolReplica(ctx, pool.NodeId, pool.Id, victim.SpecRef.Id); err != nil {
		return "", err
	}
	s.registry.RemoveReplica(victim.SpecRef.Id)
	if err := s.store.Delete(ctx, store.KindReplica, string(victim.SpecRef.Id)); err != nil {
		return "", perrors.Wrap(err, perrors.KindInternal, perrors.ResourceReplica)
	}
	log.Info("replica removed", "replica", string(victim.SpecRef.Id), "pool", string(pool.Id))
	return victim.SpecRef.Id, nil
}

// replicaItems builds the removal candidates for vol from registry state.
func (s *Service) replicaItems(vol *types.VolumeSpec, agVolumes map[types.VolumeId]struct{}) []scheduler.ReplicaItem {
	var items []scheduler.ReplicaItem
	nexuses := s.registry.VolumeNexuses(vol.Id)
	for _, r := range s.registry.Replicas() {
		if !r.OwnedBy(vol.Id) {
			continue
		}
		item := scheduler.ReplicaItem{SpecRef: r.Clone()}
		if r.Healthy != nil {
			item.ChildInfo = &scheduler.ChildInfo{Healthy: *r.Healthy}
		}
		for _, nx := range nexuses {
			for _, ch := range nx.Children {
				if ch.Replica == r.Id {
					state := ch.State
					item.ChildState = &state
				}
			}
		}
		for _, other := range s.registry.ReplicasOnPool(r.PoolId) {
			for v := range agVolumes {
				if other.OwnedBy(v) {
					item.AGReplicasOnPool++
					break
				}
			}
		}
		items = append(items, item)
	}
	return items
}

// CreateSnapshot snapshots a replica in place. The snapshot lands on the
// replica's own pool; there is no placement decision to make, only the
// custody bookkeeping.
func (s *Service) CreateSnapshot(ctx context.Context, vol *types.VolumeSpec, replica types.ReplicaId) (types.Snapshot, error) {
	ctx, _, done := tele.StartSpanWithLogger(ctx, "volume.create_snapshot", tele.KVP("replica", string(replica)))
	defer done()

	r, ok := s.registry.ReplicaState(replica)
	if !ok {
		return types.Snapshot{}, perrors.New(perrors.KindNotFound, perrors.ResourceReplica, nil)
	}
	pool, ok := s.registry.PoolState(r.PoolId)
	if !ok {
		return types.Snapshot{}, perrors.New(perrors.KindFailedPrecondition, perrors.ResourcePool, nil)
	}

	id := types.NewSnapshotId()
	snap, err := s.dataplane.PutReplicaSnapshot(ctx, pool.NodeId, replica, id)
	if err != nil {
		return types.Snapshot{}, err
	}
	snap.ReplicaId = replica
	snap.PoolId = r.PoolId
	snap.VolumeId = vol.Id

	s.registry.InsertSnapshot(snap)
	payload, err := json.Marshal(snap)
	if err != nil {
		return types.Snapshot{}, perrors.Wrap(err, perrors.KindInternal, perrors.ResourceSnapshot)
	}
	if _, err := s.store.Put(ctx, store.KindSnapshot, string(snap.Id), payload); err != nil {
		return types.Snapshot{}, perrors.Wrap(err, perrors.KindInternal, perrors.ResourceSnapshot)
	}
	return snap, nil
}

// SelectClonePool picks the pool a snapshot clone should be restored
// onto. Clones are exempt from the volume anti-affinity and topology
// rules; only node health and pool capacity gate the choice.
func (s *Service) SelectClonePool(vol *types.VolumeSpec) (scheduler.PoolItem, error) {
	pctx := s.placementContext(vol, nil)
	return scheduler.SelectPool(pctx, s.poolCandidates(vol, nil), scheduler.FilterClone)
}

// SelectTargetNode picks the node the volume's nexus should live on,
// spreading affinity-group targets across nodes.
func (s *Service) SelectTargetNode(vol *types.VolumeSpec, agNexusCount map[types.NodeId]int, agPreferred map[types.NodeId]bool) (types.NodeId, error) {
	pctx := s.placementContext(vol, nil)

	var items []scheduler.NodeItem
	totalNexusCount := make(map[string]int)
	for _, nx := range s.registry.Nexuses() {
		totalNexusCount[string(nx.NodeId)]++
	}
	for _, n := range s.registry.Nodes() {
		items = append(items, scheduler.NodeItem{
			NodeWrapper:             n.Clone(),
			AffinityGroupNexusCount: agNexusCount[n.Id],
			AGPreferred:             agPreferred[n.Id],
		})
	}

	f := scheduler.NewResourceFilter[*scheduler.PlacementContext, scheduler.NodeItem](pctx, items)
	ranked := f.
		Filter(scheduler.CordonedForPool[scheduler.NodeItem]).
		Filter(scheduler.OnlineForPool[scheduler.NodeItem]).
		Filter(scheduler.NoTargets[scheduler.NodeItem]).
		Sort(scheduler.NodeNumberTargets(totalNexusCount)).
		Collect()
	if len(ranked) == 0 {
		return "", perrors.NotEnough(string(scheduler.OfNodes), 0, 1)
	}
	return ranked[0].NodeWrapper.Id, nil
}

func (s *Service) persistReplica(ctx context.Context, r types.Replica) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return perrors.Wrap(err, perrors.KindInternal, perrors.ResourceReplica)
	}
	if _, err := s.store.Put(ctx, store.KindReplica, string(r.Id), payload); err != nil {
		return perrors.Wrap(err, perrors.KindInternal, perrors.ResourceReplica)
	}
	return nil
}
