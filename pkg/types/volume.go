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

// TargetPolicy records a volume's nexus target preference. The scheduling
// core does not read it: SelectTargetNode ranks nodes without consulting
// the volume's TargetPolicy.
type TargetPolicy struct {
	// PreferredNode optionally names a preferred nexus target node; it is
	// not consulted when a target node is picked.
	PreferredNode *NodeId
}

// AffinityGroupId groups volumes that should be co-scheduled: their
// targets spread across nodes together and their replicas spread across
// pools together.
type AffinityGroupId string

// VolumeSpec is the desired state of a volume.
type VolumeSpec struct {
	Id            VolumeId
	Size          uint64
	ReplicaCount  uint8
	Thin          bool
	Topology      *Topology
	AffinityGroup *AffinityGroupId
	Target        TargetPolicy
}
