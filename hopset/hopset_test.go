// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hopset

import (
	"testing"

	"golang.org/x/exp/rand"
)

func intHash(n int) uint64 {
	h := uint64(n)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

func TestAddContainsRemove(t *testing.T) {
	s := New[int](intHash)
	if s.Contains(1) {
		t.Fatalf("fresh set contains 1")
	}
	if !s.Add(1) {
		t.Fatalf("Add(1) on fresh set reported already-present")
	}
	if s.Add(1) {
		t.Fatalf("Add(1) twice reported newly-added")
	}
	if !s.Contains(1) {
		t.Fatalf("Contains(1) after Add(1) is false")
	}
	if !s.Remove(1) {
		t.Fatalf("Remove(1) reported not-present")
	}
	if s.Contains(1) {
		t.Fatalf("Contains(1) after Remove(1) is true")
	}
}

func TestRangeVisitsEveryMember(t *testing.T) {
	s := NewWithCapacity[int](64, intHash)
	want := map[int]bool{}
	for i := 0; i < 40; i++ {
		s.Add(i)
		want[i] = true
	}
	got := map[int]bool{}
	s.Range(func(v int) bool {
		got[v] = true
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Range visited %d members, want %d", len(got), len(want))
	}
	for v := range want {
		if !got[v] {
			t.Fatalf("Range did not visit %d", v)
		}
	}
}

func TestUnionIntersect(t *testing.T) {
	a := New[int](intHash)
	b := New[int](intHash)
	for i := 0; i < 10; i++ {
		a.Add(i)
	}
	for i := 5; i < 15; i++ {
		b.Add(i)
	}

	u := Union(a, b)
	for i := 0; i < 15; i++ {
		if !u.Contains(i) {
			t.Fatalf("Union missing %d", i)
		}
	}
	if u.Len() != 15 {
		t.Fatalf("Union.Len() = %d, want 15", u.Len())
	}

	i := Intersect(a, b)
	for n := 5; n < 10; n++ {
		if !i.Contains(n) {
			t.Fatalf("Intersect missing %d", n)
		}
	}
	if i.Len() != 5 {
		t.Fatalf("Intersect.Len() = %d, want 5", i.Len())
	}
}

func TestSetCloneIsIndependent(t *testing.T) {
	s := New[int](intHash)
	for i := 0; i < 10; i++ {
		s.Add(i)
	}
	clone := s.Clone()
	s.Remove(0)
	if !clone.Contains(0) {
		t.Fatalf("clone.Contains(0) = false after removing from the original, want true")
	}
	if clone.Len() != 10 {
		t.Fatalf("clone.Len() = %d, want 10", clone.Len())
	}
}

func TestSetRandomizedAgainstModel(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	s := New[int](intHash)
	model := map[int]bool{}
	for step := 0; step < 3000; step++ {
		v := r.Intn(150)
		if model[v] {
			model[v] = false
			delete(model, v)
			s.Remove(v)
		} else {
			model[v] = true
			s.Add(v)
		}
	}
	for v := range model {
		if !s.Contains(v) {
			t.Fatalf("Contains(%d) false, want true", v)
		}
	}
	if s.Len() != len(model) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(model))
	}
}
