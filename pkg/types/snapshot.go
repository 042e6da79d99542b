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

package types

// Snapshot is a point-in-time copy of a replica, itself backed by a
// replica on the same pool. The snapshot algorithm's internals are a
// Non-goal; this type carries only what placement and lifecycle custody
// need.
type Snapshot struct {
	Id       SnapshotId
	ReplicaId ReplicaId
	PoolId   PoolId
	VolumeId VolumeId
	Size     uint64
}

// Clone returns a value copy safe for scheduling snapshots.
func (s *Snapshot) Clone() Snapshot {
	return *s
}
