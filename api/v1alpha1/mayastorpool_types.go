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

// MayastorPool is the legacy CR kind migrated away from on startup: its
// target is DiskPool. Its shape is frozen at the point of deprecation;
// new fields only ever land on DiskPool.
type MayastorPoolSpec struct {
	Node  string   `json:"node"`
	Disks []string `json:"disks"`
}

type MayastorPoolStatus struct {
	State string `json:"state,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:path=mayastorpools,scope=Namespaced,shortName=msp
// +kubebuilder:subresource:status

// MayastorPool is the Schema for the deprecated mayastorpools API.
type MayastorPool struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   MayastorPoolSpec   `json:"spec,omitempty"`
	Status MayastorPoolStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// MayastorPoolList contains a list of MayastorPool.
type MayastorPoolList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []MayastorPool `json:"items"`
}

func init() {
	SchemeBuilder.Register(&MayastorPool{}, &MayastorPoolList{})
}

// AsDiskPool converts a legacy MayastorPool spec into the equivalent
// DiskPool spec. Topology is left empty: MayastorPool never carried
// topology labels.
func (m *MayastorPool) AsDiskPool() *DiskPool {
	return &DiskPool{
		ObjectMeta: metav1.ObjectMeta{
			Name:      m.Name,
			Namespace: m.Namespace,
			Labels:    m.Labels,
		},
		Spec: DiskPoolSpec{
			Node:  m.Spec.Node,
			Disks: append([]string(nil), m.Spec.Disks...),
		},
	}
}
