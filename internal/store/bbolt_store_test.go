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
	"testing"

	. "github.com/onsi/gomega"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(t.TempDir(), "mayastor")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	g := NewWithT(t)
	s := openTestStore(t)
	ctx := context.Background()

	rev, err := s.Put(ctx, KindPool, "pool-1", []byte(`{"id":"pool-1"}`))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rev).To(Equal(uint64(1)))

	entry, ok, err := s.Get(ctx, KindPool, "pool-1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ok).To(BeTrue())
	g.Expect(entry.Value).To(Equal([]byte(`{"id":"pool-1"}`)))
	g.Expect(entry.Revision).To(Equal(uint64(1)))
}

func TestCompareAndSwapConflict(t *testing.T) {
	g := NewWithT(t)
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CompareAndSwap(ctx, KindPool, "pool-1", 0, []byte("v1"))
	g.Expect(err).NotTo(HaveOccurred())

	// Stale expected revision is rejected.
	_, err = s.CompareAndSwap(ctx, KindPool, "pool-1", 0, []byte("v2"))
	g.Expect(err).To(HaveOccurred())
	var conflict *CASConflict
	g.Expect(err).To(BeAssignableToTypeOf(conflict))

	rev2, err := s.CompareAndSwap(ctx, KindPool, "pool-1", 1, []byte("v2"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rev2).To(Equal(uint64(2)))
}

func TestListExcludesRevisionKeys(t *testing.T) {
	g := NewWithT(t)
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, KindPool, "pool-1", []byte("a"))
	g.Expect(err).NotTo(HaveOccurred())
	_, err = s.Put(ctx, KindPool, "pool-2", []byte("b"))
	g.Expect(err).NotTo(HaveOccurred())

	entries, err := s.List(ctx, KindPool)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(entries).To(HaveLen(2))
}

func TestDeleteThenGetNotFound(t *testing.T) {
	g := NewWithT(t)
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, KindPool, "pool-1", []byte("a"))
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(s.Delete(ctx, KindPool, "pool-1")).To(Succeed())

	_, ok, err := s.Get(ctx, KindPool, "pool-1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ok).To(BeFalse())

	// Deleting again is not an error.
	g.Expect(s.Delete(ctx, KindPool, "pool-1")).To(Succeed())
}
