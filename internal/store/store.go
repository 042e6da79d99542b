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

// Package store is the persistent key-value layer: specs are serialized
// with per-key compare-and-swap. BoltStore keys them as `/namespace/<id>`
// inside one bucket per kind, so the kind is not part of the key. Nothing
// loads the store into the registry at startup, and the store offers no
// change watch.
package store

import "context"

// Kind names the entity family a key belongs to; BoltStore keeps one
// bucket per kind.
type Kind string

const (
	KindNode     Kind = "node"
	KindPool     Kind = "pool"
	KindReplica  Kind = "replica"
	KindNexus    Kind = "nexus"
	KindSnapshot Kind = "snapshot"
	KindVolume   Kind = "volume"
)

// Entry is one stored spec plus the revision CAS is evaluated against.
type Entry struct {
	Key      string
	Value    []byte
	Revision uint64
}

// Store is the persistent KV contract volume.Service writes replica and
// snapshot specs through; the registry is not loaded from it.
type Store interface {
	// Get returns the current value and revision for key, or ok=false if
	// absent.
	Get(ctx context.Context, kind Kind, id string) (Entry, bool, error)

	// List returns every entry under the given kind, in no particular
	// order; callers needing a stable order sort by key themselves.
	List(ctx context.Context, kind Kind) ([]Entry, error)

	// Put unconditionally writes value under key, returning the new
	// revision.
	Put(ctx context.Context, kind Kind, id string, value []byte) (uint64, error)

	// CompareAndSwap writes value under key only if the key's current
	// revision equals expectedRevision (0 means "key must not exist
	// yet"). Returns the new revision on success, or a CASConflict error
	// with the key's actual current revision on mismatch.
	CompareAndSwap(ctx context.Context, kind Kind, id string, expectedRevision uint64, value []byte) (uint64, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, kind Kind, id string) error

	// Close releases the underlying handle.
	Close() error
}

// CASConflict is returned by CompareAndSwap when expectedRevision does
// not match the key's actual current revision.
type CASConflict struct {
	Key             string
	ExpectedRevision uint64
	ActualRevision   uint64
}

func (e *CASConflict) Error() string {
	return "store: compare-and-swap conflict on " + e.Key
}
