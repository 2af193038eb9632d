// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hopmap

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/aristanetworks/hoptable/test"
)

func intHash(n int) uint64 {
	h := uint64(n)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

func TestMapSetGetDelete(t *testing.T) {
	m := New[int, string](intHash)
	tests := []struct {
		setkey int
		getkey int
		val    string
		found  bool
	}{
		{setkey: 1, getkey: 1, val: "one", found: true},
		{getkey: 2, found: false},
		{setkey: 2, getkey: 2, val: "two", found: true},
		{getkey: 42, found: false},
	}
	for _, tc := range tests {
		if tc.found && tc.val != "" {
			m.Set(tc.setkey, tc.val)
		}
		val, found := m.Get(tc.getkey)
		if found != tc.found {
			t.Errorf("Get(%d): found = %t, want %t", tc.getkey, found, tc.found)
		}
		if found && val != tc.val {
			t.Errorf("Get(%d) = %q, want %q", tc.getkey, val, tc.val)
		}
	}

	if v, ok := m.Delete(1); !ok || v != "one" {
		t.Fatalf("Delete(1) = (%q, %t), want (\"one\", true)", v, ok)
	}
	if m.Contains(1) {
		t.Fatalf("Contains(1) after Delete(1) still true")
	}
}

func TestMapSetOverwriteReportsOccupied(t *testing.T) {
	m := New[int, string](intHash)
	if existed := m.Set(1, "a"); existed {
		t.Fatalf("first Set reported existed = true")
	}
	if existed := m.Set(1, "b"); !existed {
		t.Fatalf("second Set reported existed = false")
	}
	if v, _ := m.Get(1); v != "b" {
		t.Fatalf("Get(1) = %q, want %q", v, "b")
	}
}

func TestMapRangeVisitsEveryEntry(t *testing.T) {
	m := NewWithCapacity[int, int](64, intHash)
	want := map[int]int{}
	for i := 0; i < 40; i++ {
		m.Put(i, i*i)
		want[i] = i * i
	}
	got := map[int]int{}
	m.Range(func(k, v int) bool {
		got[k] = v
		return true
	})
	if diff := test.Diff(want, got); diff != "" {
		t.Fatalf("Range() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapDrainEmptiesMap(t *testing.T) {
	m := New[int, int](intHash)
	for i := 0; i < 30; i++ {
		m.Put(i, i)
	}
	got := map[int]int{}
	m.Drain(func(k, v int) { got[k] = v })
	if m.Len() != 0 {
		t.Fatalf("Len() after Drain = %d, want 0", m.Len())
	}
	if len(got) != 30 {
		t.Fatalf("drained %d entries, want 30", len(got))
	}
}

func TestMapRandomizedAgainstModel(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	m := New[int, int](intHash)
	model := map[int]int{}
	for step := 0; step < 3000; step++ {
		k := r.Intn(150)
		switch r.Intn(3) {
		case 0, 1:
			m.Put(k, k*2)
			model[k] = k * 2
		default:
			delete(model, k)
			m.Delete(k)
		}
	}
	for k, want := range model {
		if v, ok := m.Get(k); !ok || v != want {
			t.Fatalf("Get(%d) = (%d, %t), want (%d, true)", k, v, ok, want)
		}
	}
	if m.Len() != len(model) {
		t.Fatalf("Len() = %d, want %d", m.Len(), len(model))
	}
}

func TestMapGetMut(t *testing.T) {
	m := New[int, int](intHash)
	m.Put(1, 10)
	p, ok := m.GetMut(1)
	if !ok {
		t.Fatalf("GetMut(1) reported not-present")
	}
	*p = 20
	if v, _ := m.Get(1); v != 20 {
		t.Fatalf("mutation through GetMut did not persist, got %d", v)
	}
	if _, ok := m.GetMut(2); ok {
		t.Fatalf("GetMut(2) on absent key reported present")
	}
}

func TestMapCloneIsIndependent(t *testing.T) {
	m := New[int, int](intHash)
	for i := 0; i < 10; i++ {
		m.Put(i, i*10)
	}
	clone := m.Clone()
	m.Put(0, 999)
	if v, _ := clone.Get(0); v != 0 {
		t.Fatalf("clone.Get(0) = %d after mutating the original, want unchanged 0", v)
	}
	if clone.Len() != 10 {
		t.Fatalf("clone.Len() = %d, want 10", clone.Len())
	}
}

func TestDefaultHash(t *testing.T) {
	h := DefaultHash[string]()
	if h("a") != h("a") {
		t.Fatalf("DefaultHash is not stable across calls")
	}
}
