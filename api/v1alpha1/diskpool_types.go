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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DiskPoolFinalizer protects a DiskPool from removal until its
// control-plane-side pool has been destroyed.
const DiskPoolFinalizer = "openebs.io/diskpool-protection"

// CrState is the declarative lifecycle phase of a DiskPool, distinct from
// its observed PoolStatus.
type CrState string

const (
	CrStateCreating    CrState = "Creating"
	CrStateCreated     CrState = "Created"
	CrStateTerminating CrState = "Terminating"
)

// PoolStatusPhase is the observed health reported by the data-plane,
// mirrored onto the CR status.
type PoolStatusPhase string

const (
	PoolStatusUnknown  PoolStatusPhase = "Unknown"
	PoolStatusOnline   PoolStatusPhase = "Online"
	PoolStatusDegraded PoolStatusPhase = "Degraded"
	PoolStatusFaulted  PoolStatusPhase = "Faulted"
)

// DiskPoolSpec is the desired state of a pool.
type DiskPoolSpec struct {
	// Node is the storage node that should own this pool.
	Node string `json:"node"`
	// Disks are the block device paths or URIs backing the pool.
	Disks []string `json:"disks"`
	// Topology carries user-declared labels applied to the pool at
	// creation time, consulted by the scheduler's pool topology filter.
	// +optional
	Topology map[string]string `json:"topology,omitempty"`
}

// DiskPoolStatus is the observed state of a pool.
type DiskPoolStatus struct {
	// CrState is the declarative lifecycle phase.
	// +optional
	CrState CrState `json:"cr_state,omitempty"`
	// PoolStatus is the last-observed data-plane health.
	// +optional
	PoolStatus PoolStatusPhase `json:"pool_status,omitempty"`
	// Capacity is the pool's total byte capacity as last observed.
	// +optional
	Capacity uint64 `json:"capacity,omitempty"`
	// Used is the pool's used byte count as last observed.
	// +optional
	Used uint64 `json:"used,omitempty"`
	// Available is Capacity minus Used, as last observed.
	// +optional
	Available uint64 `json:"available,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:path=diskpools,scope=Namespaced,shortName=dsp
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Node",type=string,JSONPath=`.spec.node`
// +kubebuilder:printcolumn:name="Status",type=string,JSONPath=`.status.pool_status`

// DiskPool is the Schema for the diskpools API: a storage pool custody
// handle reconciled against the data-plane agent running on spec.Node.
type DiskPool struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DiskPoolSpec   `json:"spec,omitempty"`
	Status DiskPoolStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// DiskPoolList contains a list of DiskPool.
type DiskPoolList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DiskPool `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DiskPool{}, &DiskPoolList{})
}
