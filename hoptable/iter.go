// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hoptable

// Iter walks every value currently in a Table in unspecified order: the
// main slot arrays first, then the overflow pool. It reads the table's
// current arrays on every call to Next, so mutating the table while
// iterating changes what it yields.
type Iter[V any] struct {
	table         *Table[V]
	index         int
	overflowIndex int
}

// Iter returns an iterator over every value in t.
func (t *Table[V]) Iter() *Iter[V] {
	return &Iter[V]{table: t}
}

// Next returns the next value, or ok == false once exhausted.
func (it *Iter[V]) Next() (V, bool) {
	var zero V
	if it.table.populated == 0 {
		return zero, false
	}
	for it.index < len(it.table.tags) {
		if it.table.tags[it.index] != emptySentinel {
			v := it.table.values[it.index]
			it.index++
			return v, true
		}
		it.index++
	}
	if it.overflowIndex < len(it.table.overflow) {
		v := it.table.overflow[it.overflowIndex].value
		it.overflowIndex++
		return v, true
	}
	return zero, false
}

// Drain removes and yields every value currently in a Table as it is
// iterated. Unlike Iter it mutates the table: each call to Next removes the
// value it returns from its slot or from the overflow pool. A Drain
// abandoned before it is exhausted leaves the values it has not returned in
// the table, and leaves the hop-info counters as they were; those counters
// are reset only when the Drain is exhausted.
type Drain[V any] struct {
	table *Table[V]
	index int
	done  bool
}

// Drain returns a draining iterator over t. After it is exhausted, t is
// empty but keeps its current allocation.
func (t *Table[V]) Drain() *Drain[V] {
	return &Drain[V]{table: t}
}

// Next removes and returns the next value, or ok == false once exhausted.
// Exhausting a Drain resets every root bucket's hop-info counters to zero,
// matching the original's Drop impl, which always finishes the iteration
// before clearing the hopmap region of the allocation.
func (d *Drain[V]) Next() (V, bool) {
	var zero V
	if d.table.populated == 0 {
		d.finish()
		return zero, false
	}
	for d.index < len(d.table.tags) {
		if d.table.tags[d.index] != emptySentinel {
			v := d.table.values[d.index]
			d.table.values[d.index] = zero
			d.table.tags[d.index] = emptySentinel
			d.table.populated--
			d.index++
			return v, true
		}
		d.index++
	}
	if len(d.table.overflow) > 0 {
		last := len(d.table.overflow) - 1
		v := d.table.overflow[last].value
		d.table.overflow = d.table.overflow[:last]
		d.table.populated--
		return v, true
	}
	d.finish()
	return zero, false
}

func (d *Drain[V]) finish() {
	if d.done {
		return
	}
	d.done = true
	for i := range d.table.hops {
		d.table.hops[i] = hopInfo{}
	}
}
