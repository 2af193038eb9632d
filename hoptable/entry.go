// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hoptable

// Entry is the result of Table.Entry: exactly one of its Occupied or Vacant
// handle is usable, split into the two shapes a caller needs to act on
// differently (update-in-place versus first insertion).
type Entry[V any] struct {
	occupied *OccupiedEntry[V]
	vacant   *VacantEntry[V]
}

// Occupied returns the occupied handle and true if the looked-up entry
// already existed.
func (e Entry[V]) Occupied() (*OccupiedEntry[V], bool) {
	return e.occupied, e.occupied != nil
}

// Vacant returns the vacant handle and true if the looked-up entry did not
// exist.
func (e Entry[V]) Vacant() (*VacantEntry[V], bool) {
	return e.vacant, e.vacant != nil
}

// OrInsert returns a pointer to the existing value, or inserts v and
// returns a pointer to it.
func (e Entry[V]) OrInsert(v V) *V {
	if e.occupied != nil {
		return e.occupied.GetMut()
	}
	return e.vacant.Insert(v)
}

// OrInsertWith is like OrInsert but only calls f to produce the value when
// the entry is vacant.
func (e Entry[V]) OrInsertWith(f func() V) *V {
	if e.occupied != nil {
		return e.occupied.GetMut()
	}
	return e.vacant.Insert(f())
}

// OrDefault inserts the zero value of V when the entry is vacant.
func (e Entry[V]) OrDefault() *V {
	if e.occupied != nil {
		return e.occupied.GetMut()
	}
	var zero V
	return e.vacant.Insert(zero)
}

// OccupiedEntry is a handle to a slot already known to hold a matching
// value, letting a caller read, update, or remove it without repeating the
// neighborhood walk that found it.
type OccupiedEntry[V any] struct {
	table         *Table[V]
	rootIndex     uint64
	nIndex        int
	overflowIndex int // -1 when the match was found in the main slot arrays
}

// Get returns a copy of the entry's value.
func (o *OccupiedEntry[V]) Get() V {
	return *o.GetMut()
}

// GetMut returns a pointer to the entry's value for in-place modification.
func (o *OccupiedEntry[V]) GetMut() *V {
	if o.overflowIndex >= 0 {
		return &o.table.overflow[o.overflowIndex].value
	}
	return &o.table.values[int(o.rootIndex)*slotsPerBucket+o.nIndex]
}

// IntoMut is GetMut under a name that signals the handle is being consumed;
// Go has no move semantics to enforce that, so it is purely documentation.
func (o *OccupiedEntry[V]) IntoMut() *V {
	return o.GetMut()
}

// Remove deletes the entry and returns its value.
func (o *OccupiedEntry[V]) Remove() V {
	o.table.populated--
	if o.overflowIndex >= 0 {
		ov := o.table.overflow
		value := ov[o.overflowIndex].value
		last := len(ov) - 1
		ov[o.overflowIndex] = ov[last]
		o.table.overflow = ov[:last]
		return value
	}

	slot := int(o.rootIndex)*slotsPerBucket + o.nIndex
	value := o.table.values[slot]
	neighbor := o.nIndex / slotsPerBucket
	o.table.hops[o.rootIndex].clear(neighbor)
	o.table.tags[slot] = emptySentinel
	var zero V
	o.table.values[slot] = zero
	return value
}

// VacantEntry is a handle to a slot (or overflow-pool placement) already
// chosen for a not-yet-present hash, letting Insert skip re-deriving where
// the value belongs.
type VacantEntry[V any] struct {
	table      *Table[V]
	hopmapRoot uint64
	hash       uint64
	nIndex     int
	isOverflow bool
}

// Insert places value at the chosen slot and returns a pointer to it.
func (v *VacantEntry[V]) Insert(value V) *V {
	v.table.populated++
	if v.isOverflow {
		v.table.overflow = append(v.table.overflow, overflowEntry[V]{hash: v.hash, value: value})
		return &v.table.overflow[len(v.table.overflow)-1].value
	}

	neighbor := v.nIndex / slotsPerBucket
	v.table.hops[v.hopmapRoot].set(neighbor)

	target := int(v.hopmapRoot)*slotsPerBucket + v.nIndex
	v.table.tags[target] = hashtag(v.hash)
	v.table.hashes[target] = v.hash
	v.table.values[target] = value
	return &v.table.values[target]
}
