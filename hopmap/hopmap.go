// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package hopmap builds an ordinary key-value map on top of hoptable.Table:
// the external collaborator layer the core container was designed to stay
// out of. It contributes nothing to the hashing or collision-resolution
// story; it just pairs a caller-supplied HashFn with Table's hash/equality
// interface.
package hopmap

import (
	"fmt"
	"hash/maphash"

	"github.com/aristanetworks/hoptable/hoptable"
)

// HashFn hashes a key of type K to the 64-bit value hoptable.Table keys its
// slots by. Callers own the hashing strategy, same as hoptable.Table itself
// requires of its caller.
type HashFn[K any] func(K) uint64

// DefaultHash builds a HashFn from a single process-lifetime maphash seed,
// for callers with no particular hashing requirements of their own. It
// formats each key with fmt.Sprintf("%v", ...) before hashing, so it is a
// convenience for getting started, not a low-overhead default: callers on
// a hot path should supply their own HashFn tailored to K.
func DefaultHash[K comparable]() HashFn[K] {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.String(seed, fmt.Sprintf("%v", k))
	}
}

type pair[K comparable, V any] struct {
	key   K
	value V
}

// Map is a key-value map built on hoptable.Table[pair[K, V]].
type Map[K comparable, V any] struct {
	table *hoptable.Table[pair[K, V]]
	hash  HashFn[K]
}

// New constructs an empty Map using hash to derive slot positions.
func New[K comparable, V any](hash HashFn[K]) *Map[K, V] {
	return NewWithCapacity[K, V](0, hash)
}

// NewWithCapacity constructs a Map pre-sized to hold at least capacity
// entries without a resize.
func NewWithCapacity[K comparable, V any](capacity uint64, hash HashFn[K]) *Map[K, V] {
	var opts []hoptable.Option
	if capacity > 0 {
		opts = append(opts, hoptable.WithCapacity(capacity))
	}
	return &Map[K, V]{table: hoptable.New[pair[K, V]](opts...), hash: hash}
}

func eq[K comparable, V any](k K) func(pair[K, V]) bool {
	return func(p pair[K, V]) bool { return p.key == k }
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int { return m.table.Len() }

// IsEmpty reports whether the map holds no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.table.IsEmpty() }

// Cap returns the number of entries the map can hold before its next
// resize.
func (m *Map[K, V]) Cap() uint64 { return m.table.Cap() }

// Get returns the value stored for key, if any.
func (m *Map[K, V]) Get(key K) (V, bool) {
	p, ok := m.table.Find(m.hash(key), eq[K, V](key))
	return p.value, ok
}

// Contains reports whether key has a stored value.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// GetMut returns a pointer to key's stored value, if any, for modifying it
// in place. The pointer is invalidated by any subsequent mutating call on
// the map.
func (m *Map[K, V]) GetMut(key K) (*V, bool) {
	p, ok := m.table.FindMut(m.hash(key), eq[K, V](key))
	if !ok {
		return nil, false
	}
	return &p.value, true
}

// Set associates key with value, overwriting any existing value, and
// reports whether the key was already present.
func (m *Map[K, V]) Set(key K, value V) bool {
	entry := m.table.Entry(m.hash(key), eq[K, V](key))
	if occupied, ok := entry.Occupied(); ok {
		occupied.GetMut().value = value
		return true
	}
	vacant, _ := entry.Vacant()
	vacant.Insert(pair[K, V]{key: key, value: value})
	return false
}

// Put is an alias for Set, for callers that prefer map.Put(k, v) reading
// order over Set's "was it already there" return value.
func (m *Map[K, V]) Put(key K, value V) {
	m.Set(key, value)
}

// Delete removes key's entry, if present, and returns its value.
func (m *Map[K, V]) Delete(key K) (V, bool) {
	p, ok := m.table.Remove(m.hash(key), eq[K, V](key))
	return p.value, ok
}

// Clear removes every entry but keeps the map's current allocation.
func (m *Map[K, V]) Clear() { m.table.Clear() }

// Reserve grows the map, if needed, so it can hold at least additional
// more entries than it currently does without a further resize.
func (m *Map[K, V]) Reserve(additional uint64) { m.table.Reserve(additional) }

// ShrinkToFit shrinks the map's allocation to fit its current contents.
func (m *Map[K, V]) ShrinkToFit() { m.table.ShrinkToFit() }

// Clone returns a deep copy of the map: mutating one afterward never
// affects the other.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{table: m.table.Clone(), hash: m.hash}
}

// Range calls f for every entry in the map, in unspecified order, stopping
// early if f returns false.
func (m *Map[K, V]) Range(f func(K, V) bool) {
	it := m.table.Iter()
	for {
		p, ok := it.Next()
		if !ok {
			return
		}
		if !f(p.key, p.value) {
			return
		}
	}
}

// Drain removes and calls f for every entry in the map; after Drain
// returns, the map is empty.
func (m *Map[K, V]) Drain(f func(K, V)) {
	d := m.table.Drain()
	for {
		p, ok := d.Next()
		if !ok {
			return
		}
		f(p.key, p.value)
	}
}
