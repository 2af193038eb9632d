// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package hopset builds an ordinary set type on top of hoptable.Table, the
// other external-collaborator layer alongside hopmap.
package hopset

import (
	"github.com/aristanetworks/hoptable/hopmap"
	"github.com/aristanetworks/hoptable/hoptable"
)

// HashFn hashes a member of type T to the 64-bit value hoptable.Table keys
// its slots by.
type HashFn[T any] func(T) uint64

// Set is a collection of unique values of type T, built on
// hoptable.Table[T].
type Set[T comparable] struct {
	table *hoptable.Table[T]
	hash  HashFn[T]
}

// New constructs an empty Set using hash to derive slot positions.
func New[T comparable](hash HashFn[T]) *Set[T] {
	return NewWithCapacity[T](0, hash)
}

// DefaultHash is hopmap.DefaultHash under hopset's own HashFn type; see its
// documentation for the tradeoffs of using it on a hot path.
func DefaultHash[T comparable]() HashFn[T] {
	h := hopmap.DefaultHash[T]()
	return HashFn[T](h)
}

// NewWithCapacity constructs a Set pre-sized to hold at least capacity
// members without a resize.
func NewWithCapacity[T comparable](capacity uint64, hash HashFn[T]) *Set[T] {
	var opts []hoptable.Option
	if capacity > 0 {
		opts = append(opts, hoptable.WithCapacity(capacity))
	}
	return &Set[T]{table: hoptable.New[T](opts...), hash: hash}
}

func eq[T comparable](v T) func(T) bool {
	return func(candidate T) bool { return candidate == v }
}

// Len returns the number of members in the set.
func (s *Set[T]) Len() int { return s.table.Len() }

// IsEmpty reports whether the set holds no members.
func (s *Set[T]) IsEmpty() bool { return s.table.IsEmpty() }

// Cap returns the number of members the set can hold before its next
// resize.
func (s *Set[T]) Cap() uint64 { return s.table.Cap() }

// Contains reports whether v is a member of the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.table.Find(s.hash(v), eq(v))
	return ok
}

// Add inserts v, reporting whether it was newly added (false if v was
// already a member).
func (s *Set[T]) Add(v T) bool {
	entry := s.table.Entry(s.hash(v), eq(v))
	if _, ok := entry.Occupied(); ok {
		return false
	}
	vacant, _ := entry.Vacant()
	vacant.Insert(v)
	return true
}

// Remove deletes v from the set, reporting whether it was present.
func (s *Set[T]) Remove(v T) bool {
	_, ok := s.table.Remove(s.hash(v), eq(v))
	return ok
}

// Clear removes every member but keeps the set's current allocation.
func (s *Set[T]) Clear() { s.table.Clear() }

// Clone returns a deep copy of the set: mutating one afterward never
// affects the other.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{table: s.table.Clone(), hash: s.hash}
}

// Reserve grows the set, if needed, so it can hold at least additional
// more members than it currently does without a further resize.
func (s *Set[T]) Reserve(additional uint64) { s.table.Reserve(additional) }

// Range calls f for every member of the set, in unspecified order,
// stopping early if f returns false.
func (s *Set[T]) Range(f func(T) bool) {
	it := s.table.Iter()
	for {
		v, ok := it.Next()
		if !ok {
			return
		}
		if !f(v) {
			return
		}
	}
}

// Drain removes and calls f for every member of the set; after Drain
// returns, the set is empty.
func (s *Set[T]) Drain(f func(T)) {
	d := s.table.Drain()
	for {
		v, ok := d.Next()
		if !ok {
			return
		}
		f(v)
	}
}

// Union returns a new Set holding every member of a and b, using a's hash
// function for the result.
func Union[T comparable](a, b *Set[T]) *Set[T] {
	out := NewWithCapacity[T](uint64(a.Len()+b.Len()), a.hash)
	a.Range(func(v T) bool { out.Add(v); return true })
	b.Range(func(v T) bool { out.Add(v); return true })
	return out
}

// Intersect returns a new Set holding every member present in both a and
// b, using a's hash function for the result.
func Intersect[T comparable](a, b *Set[T]) *Set[T] {
	out := New[T](a.hash)
	a.Range(func(v T) bool {
		if b.Contains(v) {
			out.Add(v)
		}
		return true
	})
	return out
}
