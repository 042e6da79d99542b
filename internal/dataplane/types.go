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

// Package dataplane is the REST client for the storage data-plane agent:
// the only component in this module that performs network I/O against a
// node's pool/replica/nexus/snapshot endpoints.
package dataplane

import "github.com/sinhaashish/mayastor-control-plane/pkg/types"

// BlockDevice is a block device reported by a node, consulted by the
// reconciler's create-failure attribution path.
type BlockDevice struct {
	DevName  string   `json:"devname"`
	DevLinks []string `json:"devlinks"`
}

// CreatePoolBody is the wire body of put_node_pool.
type CreatePoolBody struct {
	Disks  []string          `json:"disks"`
	Labels map[string]string `json:"labels,omitempty"`
}

// CreateReplicaBody is the wire body of put_pool_replica.
type CreateReplicaBody struct {
	Size  uint64               `json:"size"`
	Thin  bool                 `json:"thin"`
	Share types.ShareProtocol  `json:"share,omitempty"`
}

// CreateNexusBody is the wire body of put_node_nexus.
type CreateNexusBody struct {
	Size     uint64   `json:"size"`
	Children []string `json:"children"`
}
