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

package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var kindBuckets = map[Kind][]byte{
	KindNode:     []byte("nodes"),
	KindPool:     []byte("pools"),
	KindReplica:  []byte("replicas"),
	KindNexus:    []byte("nexuses"),
	KindSnapshot: []byte("snapshots"),
	KindVolume:   []byte("volumes"),
}

// revisionSuffix is appended to every value's key to store its CAS
// revision alongside the payload, in the same bucket: bbolt has no
// built-in per-key version counter, so the control plane keeps its own.
const revisionSuffix = "\x00rev"

// BoltStore is the bbolt-backed implementation of Store, with one bucket
// per entity kind.
type BoltStore struct {
	db        *bolt.DB
	namespace string
}

// NewBoltStore opens (creating if absent) a bbolt database under dataDir
// and provisions one bucket per Kind.
func NewBoltStore(dataDir, namespace string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "mayastor-control-plane.db")
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range kindBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, namespace: namespace}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) key(id string) []byte {
	return []byte(fmt.Sprintf("/%s/%s", s.namespace, id))
}

func revisionKey(key []byte) []byte {
	return append(append([]byte(nil), key...), []byte(revisionSuffix)...)
}

func encodeRevision(rev uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, rev)
	return b
}

func decodeRevision(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (s *BoltStore) Get(_ context.Context, kind Kind, id string) (Entry, bool, error) {
	bucketName := kindBuckets[kind]
	key := s.key(id)
	var entry Entry
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		val := b.Get(key)
		if val == nil {
			return nil
		}
		found = true
		entry = Entry{
			Key:      string(key),
			Value:    append([]byte(nil), val...),
			Revision: decodeRevision(b.Get(revisionKey(key))),
		}
		return nil
	})
	return entry, found, err
}

func (s *BoltStore) List(_ context.Context, kind Kind) ([]Entry, error) {
	bucketName := kindBuckets[kind]
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.ForEach(func(k, v []byte) error {
			if len(k) >= len(revisionSuffix) && string(k[len(k)-len(revisionSuffix):]) == revisionSuffix {
				return nil
			}
			entries = append(entries, Entry{
				Key:      string(k),
				Value:    append([]byte(nil), v...),
				Revision: decodeRevision(b.Get(revisionKey(k))),
			})
			return nil
		})
	})
	return entries, err
}

func (s *BoltStore) Put(_ context.Context, kind Kind, id string, value []byte) (uint64, error) {
	bucketName := kindBuckets[kind]
	key := s.key(id)
	var newRev uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		newRev = decodeRevision(b.Get(revisionKey(key))) + 1
		if err := b.Put(key, value); err != nil {
			return err
		}
		return b.Put(revisionKey(key), encodeRevision(newRev))
	})
	return newRev, err
}

func (s *BoltStore) CompareAndSwap(_ context.Context, kind Kind, id string, expectedRevision uint64, value []byte) (uint64, error) {
	bucketName := kindBuckets[kind]
	key := s.key(id)
	var newRev uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		current := decodeRevision(b.Get(revisionKey(key)))
		if current != expectedRevision {
			return &CASConflict{Key: string(key), ExpectedRevision: expectedRevision, ActualRevision: current}
		}
		newRev = current + 1
		if err := b.Put(key, value); err != nil {
			return err
		}
		return b.Put(revisionKey(key), encodeRevision(newRev))
	})
	if err != nil {
		return 0, err
	}
	return newRev, nil
}

func (s *BoltStore) Delete(_ context.Context, kind Kind, id string) error {
	bucketName := kindBuckets[kind]
	key := s.key(id)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if err := b.Delete(key); err != nil {
			return err
		}
		return b.Delete(revisionKey(key))
	})
}

var _ Store = (*BoltStore)(nil)
