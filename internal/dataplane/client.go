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

package dataplane

import (
	"context"

	"github.com/sinhaashish/mayastor-control-plane/pkg/types"
)

// Client is the data-plane REST surface consumed by the reconciler and
// scheduler-driven lifecycle actions. Every method maps
// transport and remote status codes onto internal/perrors before
// returning; callers never see a raw status code.
type Client interface {
	PutNodePool(ctx context.Context, node types.NodeId, pool types.PoolId, disks []string, labels map[string]string) (types.Pool, error)
	DelNodePool(ctx context.Context, node types.NodeId, pool types.PoolId) error
	GetNodePool(ctx context.Context, node types.NodeId, pool types.PoolId) (types.Pool, error)
	GetNodeBlockDevices(ctx context.Context, node types.NodeId, all bool) ([]BlockDevice, error)

	PutPoolReplica(ctx context.Context, node types.NodeId, pool types.PoolId, replica types.ReplicaId, size uint64, thin bool) (types.Replica, error)
	DelPoolReplica(ctx context.Context, node types.NodeId, pool types.PoolId, replica types.ReplicaId) error
	GetPoolReplica(ctx context.Context, node types.NodeId, pool types.PoolId, replica types.ReplicaId) (types.Replica, error)

	PutNodeNexus(ctx context.Context, node types.NodeId, nexus types.NexusId, size uint64, children []types.ReplicaId) (types.Nexus, error)
	DelNodeNexus(ctx context.Context, node types.NodeId, nexus types.NexusId) error
	GetNodeNexus(ctx context.Context, node types.NodeId, nexus types.NexusId) (types.Nexus, error)

	PutReplicaSnapshot(ctx context.Context, node types.NodeId, replica types.ReplicaId, snapshot types.SnapshotId) (types.Snapshot, error)
	DelReplicaSnapshot(ctx context.Context, node types.NodeId, snapshot types.SnapshotId) error
}
