// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package hoptable implements the core of a 16-way hopscotch hash table.
//
// Table is a raw associative container keyed by a caller-supplied 64-bit
// hash and an equality predicate: it has no opinion on how values are
// hashed or compared, and no built-in key type. The hopmap, hopset
// packages build ordinary map/set APIs on top of it; Table itself is where
// the engineering lives.
//
// A lookup walks a 16-slot-wide neighborhood per hop-window starting at the
// bucket `hash & maxRootMask` selects, using a packed tag byte per slot (the
// top 7 bits of the hash) to reject non-matches without touching V or
// calling eq. Insertion bubbles a displaced element toward a free slot when
// the direct neighborhood is full, falling back to a linear overflow pool
// only when a root's entire neighborhood is already saturated.
package hoptable

import "math/bits"

// overflowEntry is a (hash, value) pair kept outside the main slot arrays
// once a root bucket's neighborhood has no room left to bubble into.
type overflowEntry[V any] struct {
	hash  uint64
	value V
}

// Table is a 16-way hopscotch hash table over values of type V, keyed by a
// caller-supplied hash and equality predicate. The zero value is not usable;
// construct one with New.
type Table[V any] struct {
	hops        []hopInfo
	tags        []byte
	values      []V
	hashes      []uint64
	overflow    []overflowEntry[V]
	populated   int
	maxPop      uint64
	maxRootMask uint64
	wide        bool
}

// config collects New's functional options.
type config struct {
	capacity  uint64
	forceWide *bool
}

// Option configures a Table at construction time.
type Option func(*config)

// WithCapacity reserves room for at least n elements without a resize.
func WithCapacity(n uint64) Option {
	return func(c *config) { c.capacity = n }
}

// withWidePath forces the vector or scalar tag-scanning path regardless of
// detected CPU features. Test-only: exercising both paths on a single
// machine needs a way to pick one irrespective of what detectWidePath
// would choose there.
func withWidePath(wide bool) Option {
	return func(c *config) { c.forceWide = &wide }
}

// New constructs an empty Table, optionally pre-sized with WithCapacity.
func New[V any](opts ...Option) *Table[V] {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	t := &Table[V]{}
	if cfg.forceWide != nil {
		t.wide = *cfg.forceWide
	} else {
		t.wide = detectWidePath()
	}
	if cfg.capacity > 0 {
		t.allocate(planForElementCount(cfg.capacity))
	} else {
		t.allocate(emptyGeometry)
	}
	return t
}

// allocate replaces the table's slot arrays with freshly sized ones, sets
// maxRootMask and maxPop from g, and empties the overflow pool. It leaves
// populated unchanged and does not migrate any existing data, so callers
// that need to preserve contents or reset the count must do so themselves
// (see doResizeRehash).
func (t *Table[V]) allocate(g geometry) {
	t.hops = make([]hopInfo, g.buckets)
	t.tags = make([]byte, g.totalSlots)
	for i := range t.tags {
		t.tags[i] = emptySentinel
	}
	t.values = make([]V, g.totalSlots)
	t.hashes = make([]uint64, g.totalSlots)
	t.maxRootMask = g.maxRootMask
	t.maxPop = g.maxPop
	t.overflow = nil
}

// Len returns the number of elements currently stored.
func (t *Table[V]) Len() int { return t.populated }

// IsEmpty reports whether the table holds no elements.
func (t *Table[V]) IsEmpty() bool { return t.populated == 0 }

// Cap returns the number of elements the table can hold before its next
// resize, per the 99% load factor the capacity planner targets.
func (t *Table[V]) Cap() uint64 { return t.maxPop }

func (t *Table[V]) hopmapIndex(hash uint64) uint64 {
	return hash & t.maxRootMask
}

// searchNeighborhood scans every neighbor window a root bucket's hop-info
// says holds a live placement, rejecting slots by tag byte before calling
// eq, and returns the absolute slot index of the first match.
func (t *Table[V]) searchNeighborhood(hash uint64, bucket uint64, eq func(V) bool) (int, bool) {
	mask := t.hops[bucket].candidates(t.wide)
	tag := hashtag(hash)
	for mask != 0 {
		window := bits.TrailingZeros16(mask)
		mask &^= 1 << uint(window)

		base := int(bucket)*slotsPerBucket + window*slotsPerBucket
		tagMatches := scanTags(t.wide, t.tags, base, tag)
		for tagMatches != 0 {
			i := bits.TrailingZeros16(tagMatches)
			tagMatches &^= 1 << uint(i)
			slot := base + i
			if eq(t.values[slot]) {
				return slot, true
			}
		}
	}
	return 0, false
}

// Find looks up a value by hash and equality predicate without modifying
// the table.
func (t *Table[V]) Find(hash uint64, eq func(V) bool) (V, bool) {
	var zero V
	if t.populated == 0 {
		return zero, false
	}
	bucket := t.hopmapIndex(hash)
	if idx, ok := t.searchNeighborhood(hash, bucket, eq); ok {
		return t.values[idx], true
	}
	if len(t.overflow) == 0 {
		return zero, false
	}
	for _, o := range t.overflow {
		if eq(o.value) {
			return o.value, true
		}
	}
	return zero, false
}

// FindMut looks up a value by hash and equality predicate, returning a
// pointer that can be used to modify it in place. The pointer is
// invalidated by any subsequent mutating call on the table.
func (t *Table[V]) FindMut(hash uint64, eq func(V) bool) (*V, bool) {
	if t.populated == 0 {
		return nil, false
	}
	bucket := t.hopmapIndex(hash)
	if idx, ok := t.searchNeighborhood(hash, bucket, eq); ok {
		return &t.values[idx], true
	}
	if len(t.overflow) == 0 {
		return nil, false
	}
	for i := range t.overflow {
		if eq(t.overflow[i].value) {
			return &t.overflow[i].value, true
		}
	}
	return nil, false
}

// Entry returns a handle for looking up-or-inserting at hash in a single
// walk of the neighborhood, resizing first if the table has reached its
// load-factor ceiling.
func (t *Table[V]) Entry(hash uint64, eq func(V) bool) Entry[V] {
	t.maybeResizeRehash()
	return t.entryImpl(hash, eq)
}

func (t *Table[V]) entryImpl(hash uint64, eq func(V) bool) Entry[V] {
	bucket := t.hopmapIndex(hash)
	if idx, ok := t.searchNeighborhood(hash, bucket, eq); ok {
		return Entry[V]{occupied: &OccupiedEntry[V]{
			table:         t,
			rootIndex:     bucket,
			nIndex:        idx - int(bucket)*slotsPerBucket,
			overflowIndex: -1,
		}}
	}
	for i := range t.overflow {
		if eq(t.overflow[i].value) {
			return Entry[V]{occupied: &OccupiedEntry[V]{
				table:         t,
				rootIndex:     bucket,
				overflowIndex: i,
			}}
		}
	}
	return Entry[V]{vacant: t.doVacantLookup(hash, bucket)}
}

// Remove deletes the value matching hash and eq, if any, and returns it.
func (t *Table[V]) Remove(hash uint64, eq func(V) bool) (V, bool) {
	var zero V
	if t.populated == 0 {
		return zero, false
	}
	bucket := t.hopmapIndex(hash)
	if idx, ok := t.searchNeighborhood(hash, bucket, eq); ok {
		value := t.values[idx]
		neighbor := (idx - int(bucket)*slotsPerBucket) / slotsPerBucket
		t.hops[bucket].clear(neighbor)
		t.tags[idx] = emptySentinel
		t.values[idx] = zero
		t.populated--
		return value, true
	}
	for i := range t.overflow {
		if eq(t.overflow[i].value) {
			value := t.overflow[i].value
			last := len(t.overflow) - 1
			t.overflow[i] = t.overflow[last]
			t.overflow = t.overflow[:last]
			t.populated--
			return value, true
		}
	}
	return zero, false
}

// Clear removes every element but keeps the table's current allocation.
func (t *Table[V]) Clear() {
	var zero V
	for i := range t.tags {
		t.tags[i] = emptySentinel
		t.values[i] = zero
	}
	for i := range t.hops {
		t.hops[i] = hopInfo{}
	}
	t.populated = 0
	t.overflow = t.overflow[:0]
}

// Reserve grows the table, if needed, so it can hold at least additional
// more elements than it currently does without a further resize.
func (t *Table[V]) Reserve(additional uint64) {
	needed := uint64(t.populated) + additional
	if needed <= t.maxPop {
		return
	}
	t.doResizeRehash(planForElementCount(needed))
}

// ShrinkToFit shrinks the table's allocation to the smallest size that
// still fits its current contents at the target load factor. An empty
// table is deallocated entirely. Rehashing only happens if the smaller
// geometry is strictly smaller than the table's current one; an
// already-minimal table is left untouched.
func (t *Table[V]) ShrinkToFit() {
	if t.populated == 0 && len(t.overflow) == 0 {
		t.allocate(emptyGeometry)
		return
	}
	required := uint64(t.populated) + uint64(len(t.overflow))
	g := planForElementCount(required)
	if g.maxRootMask < t.maxRootMask {
		t.doResizeRehash(g)
	}
}

// Clone returns a deep copy of the table: a freshly allocated set of slot
// arrays and overflow pool holding the same hash/value pairs at the same
// slots, so mutating the receiver afterward never affects the copy (or vice
// versa). Copying a value of type V is whatever assignment means for V in
// Go — a full copy for a value type, a shared-underlying-data shallow copy
// for a pointer, slice, or map — the same value-independence Clone's V:
// Clone bound gives the original implementation.
func (t *Table[V]) Clone() *Table[V] {
	nt := &Table[V]{wide: t.wide}
	nt.allocate(geometry{
		buckets:     uint64(len(t.hops)),
		maxRootMask: t.maxRootMask,
		totalSlots:  uint64(len(t.tags)),
		maxPop:      t.maxPop,
	})
	copy(nt.tags, t.tags)
	copy(nt.hashes, t.hashes)
	copy(nt.values, t.values)
	copy(nt.hops, t.hops)
	nt.populated = t.populated
	if len(t.overflow) > 0 {
		nt.overflow = make([]overflowEntry[V], len(t.overflow))
		copy(nt.overflow, t.overflow)
	}
	return nt
}

func (t *Table[V]) maybeResizeRehash() {
	if uint64(t.populated) >= t.maxPop {
		t.resizeRehash()
	}
}

// resizeRehash asks the planner for one more bucket than the current count
// (or than hopRange, whichever is larger), which rounds up to the next power
// of two and so doubles the bucket count (to at least 2*hopRange), and
// migrates every live element into the new allocation.
func (t *Table[V]) resizeRehash() {
	buckets := t.maxRootMask + 1 // wraps to 0 for the empty table's all-ones mask
	if buckets < hopRange {
		buckets = hopRange
	}
	t.doResizeRehash(planFromBucketTarget(buckets + 1))
}

// doResizeRehash allocates a new geometry and migrates every live element
// (main-array and overflow) into it in three passes: direct root-slot
// claims, in-neighborhood claims, then full bubble-lookup placement for
// whatever is left. The three-pass split exists because the first two
// passes are branch-light common cases (an element's root slot, or some
// slot in its neighborhood, is still free in the bigger table) and only the
// remainder needs the full machinery that can itself trigger another
// resize.
func (t *Table[V]) doResizeRehash(g geometry) {
	oldTags := t.tags
	oldValues := t.values
	oldHashes := t.hashes
	oldOverflow := t.overflow
	oldPopulated := t.populated

	t.allocate(g)
	if oldPopulated == 0 {
		return
	}
	t.populated = 0

	var pending []int
	for i, tag := range oldTags {
		if tag == emptySentinel {
			continue
		}
		hash := oldHashes[i]
		bucket := t.hopmapIndex(hash)
		root := int(bucket) * slotsPerBucket
		if t.tags[root] != emptySentinel {
			pending = append(pending, i)
			continue
		}
		t.populated++
		t.values[root] = oldValues[i]
		t.hashes[root] = hash
		t.tags[root] = hashtag(hash)
		t.hops[bucket].set(0)
	}

	var needsShuffle []int
	for _, oldIndex := range pending {
		hash := oldHashes[oldIndex]
		bucket := t.hopmapIndex(hash)
		emptyIdx, found := findNextEmpty(t.wide, t.tags, int(bucket)*slotsPerBucket)
		if !found || emptyIdx >= int(bucket+hopRange)*slotsPerBucket {
			needsShuffle = append(needsShuffle, oldIndex)
			continue
		}
		t.populated++
		t.values[emptyIdx] = oldValues[oldIndex]
		t.hashes[emptyIdx] = hash
		t.tags[emptyIdx] = hashtag(hash)
		nIndex := (emptyIdx - int(bucket)*slotsPerBucket) / slotsPerBucket
		t.hops[bucket].set(nIndex)
	}

	for _, oldIndex := range needsShuffle {
		hash := oldHashes[oldIndex]
		bucket := t.hopmapIndex(hash)
		t.doVacantLookup(hash, bucket).Insert(oldValues[oldIndex])
	}

	for _, o := range oldOverflow {
		bucket := t.hopmapIndex(o.hash)
		t.doVacantLookup(o.hash, bucket).Insert(o.value)
	}
}

// findNextMovableIndex scans [bubbleBase, emptyIdx) for an element whose
// own root bucket's neighborhood still reaches emptyIdx, i.e. one that can
// legally be moved there. The subtraction is deliberately unsigned so it
// wraps exactly as the original's wrapping_sub does when hopmapIndex lands
// beyond emptyIdx, which reliably fails the distance check instead of
// needing a separate signed comparison.
func findNextMovableIndex(hashes []uint64, bubbleBase, emptyIdx int, maxRootMask uint64) (int, bool) {
	for idx := bubbleBase; idx < emptyIdx; idx++ {
		hash := hashes[idx]
		hopmapIndex := int(hash&maxRootMask) * slotsPerBucket
		distance := uint64(emptyIdx) - uint64(hopmapIndex)
		if distance < hopRange*slotsPerBucket {
			return idx, true
		}
	}
	return 0, false
}

// doVacantLookup finds or creates a slot suitable for inserting hash's
// value, bubbling an existing element out of the way if the neighborhood is
// full but not yet saturated, falling back to the overflow pool if it is,
// and resizing and retrying if no unoccupied slot exists within reach at
// all.
func (t *Table[V]) doVacantLookup(hash uint64, hopBucket uint64) *VacantEntry[V] {
	root := int(hopBucket) * slotsPerBucket
	emptyIdx, found := findNextEmpty(t.wide, t.tags, root)
	boundary := int(t.maxRootMask+1+hopRange) * slotsPerBucket
	if !found || emptyIdx >= boundary {
		t.resizeRehash()
		return t.doVacantLookup(hash, t.hopmapIndex(hash))
	}

	neighborhoodEnd := int(hopBucket+hopRange) * slotsPerBucket
	if emptyIdx < neighborhoodEnd {
		return &VacantEntry[V]{table: t, hopmapRoot: hopBucket, hash: hash, nIndex: emptyIdx - root}
	}

	for emptyIdx >= neighborhoodEnd {
		bubbleBase := emptyIdx - (hopRange-1)*slotsPerBucket
		movedIdx, ok := findNextMovableIndex(t.hashes, bubbleBase, emptyIdx, t.maxRootMask)
		if !ok {
			if t.hops[hopBucket].isFull(t.wide) {
				return &VacantEntry[V]{table: t, hopmapRoot: hopBucket, hash: hash, isOverflow: true}
			}
			t.resizeRehash()
			return t.doVacantLookup(hash, t.hopmapIndex(hash))
		}

		movedHash := t.hashes[movedIdx]
		t.values[emptyIdx] = t.values[movedIdx]
		t.hashes[emptyIdx] = movedHash

		movedRoot := t.hopmapIndex(movedHash)
		movedRootAbs := int(movedRoot) * slotsPerBucket
		oldNIndex := (movedIdx - movedRootAbs) / slotsPerBucket
		newNIndex := (emptyIdx - movedRootAbs) / slotsPerBucket
		t.hops[movedRoot].clear(oldNIndex)
		t.hops[movedRoot].set(newNIndex)

		var zero V
		t.values[movedIdx] = zero
		t.tags[movedIdx] = emptySentinel
		t.tags[emptyIdx] = hashtag(movedHash)
		emptyIdx = movedIdx
	}

	return &VacantEntry[V]{table: t, hopmapRoot: hopBucket, hash: hash, nIndex: emptyIdx - root}
}
