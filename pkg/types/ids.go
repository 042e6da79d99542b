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

// Package types is the shared domain model for the registry, scheduler and
// reconciler: opaque identifiers and the specs/states of nodes, pools,
// replicas, nexuses and volumes. Equality on every id is byte-exact and
// ordering is lexicographic, matching the wire representation.
package types

import "github.com/google/uuid"

// NodeId identifies a storage node.
type NodeId string

// PoolId identifies a pool on a node.
type PoolId string

// ReplicaId identifies a replica within a pool.
type ReplicaId string

// NexusId identifies a nexus.
type NexusId string

// SnapshotId identifies a replica snapshot.
type SnapshotId string

// VolumeId identifies a volume.
type VolumeId string

// NewReplicaId generates a fresh, randomly-assigned replica id.
func NewReplicaId() ReplicaId {
	return ReplicaId(uuid.NewString())
}

// NewNexusId generates a fresh, randomly-assigned nexus id.
func NewNexusId() NexusId {
	return NexusId(uuid.NewString())
}

// NewSnapshotId generates a fresh, randomly-assigned snapshot id.
func NewSnapshotId() SnapshotId {
	return SnapshotId(uuid.NewString())
}
