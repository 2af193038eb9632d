// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hoptable

import "math/bits"

// hopRange is the width, in neighbor windows, of a root bucket's
// neighborhood. Each neighbor window is 16 slots wide, so a neighborhood
// spans hopRange*16 slots. Changing this constant requires revisiting every
// routine that assumes a 16-way hopscotch (the hopInfo candidate mask, the
// SWAR tag scanner, and the bubble loop's stride).
const hopRange = 16

// slotsPerBucket is the number of slots addressed by one root bucket or one
// neighbor window.
const slotsPerBucket = 16

// emptySentinel marks an unoccupied slot. It is the only tag byte with its
// sign bit set; every hashtag (the top 7 bits of a hash) is in 0x00..0x7F
// and so can never collide with it. This is load-bearing for the SWAR tag
// scanner in tags.go: both findNextEmpty and scanTags lean on "only EMPTY
// has the sign bit set" to turn a byte compare into a handful of word-wide
// bitwise operations.
const emptySentinel byte = 0x80

// hashtag extracts the 7-bit tag stored alongside an occupied slot.
func hashtag(hash uint64) byte {
	return byte(hash >> 57)
}

// geometry is the allocation plan produced by the capacity planner: bucket
// count, derived mask, total slot count including the hopRange pad, and the
// 99%-load resize threshold.
type geometry struct {
	buckets     uint64 // power-of-two root bucket count; 0 means no allocation
	maxRootMask uint64
	totalSlots  uint64
	maxPop      uint64
}

// emptyGeometry is shared by every zero-capacity table; maxRootMask wraps to
// all-ones via ordinary unsigned-integer underflow, so any stray mask
// arithmetic before the first real allocation stays well-defined instead
// of underflowing.
var emptyGeometry = geometry{maxRootMask: ^uint64(0)}

// planFromBucketTarget builds a geometry whose bucket count is the next
// power of two at or above target. target == 0 yields emptyGeometry.
func planFromBucketTarget(target uint64) geometry {
	if target == 0 {
		return emptyGeometry
	}
	buckets := nextPow2(target)
	maxRootMask := buckets - 1
	totalSlots := mulFatal(buckets+hopRange, slotsPerBucket, "total slot count")
	maxPop := (mulFatal(buckets, slotsPerBucket, "load ceiling") * 99) / 100
	return geometry{
		buckets:     buckets,
		maxRootMask: maxRootMask,
		totalSlots:  totalSlots,
		maxPop:      maxPop,
	}
}

// planForElementCount builds a geometry sized to hold count elements at the
// 99%-load ceiling, mirroring with_capacity/reserve/shrink_to_fit's shared
// sizing rule: round the element count up to whole buckets of 16, then
// invert the 99% load factor so the planned bucket count actually has room
// for `count` live elements before the next resize.
func planForElementCount(count uint64) geometry {
	if count == 0 {
		return emptyGeometry
	}
	neededBuckets := ceilDiv(count, slotsPerBucket)
	inverted := ceilDiv(mulFatal(neededBuckets, 100, "capacity inversion"), 99)
	return planFromBucketTarget(inverted)
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

// nextPow2 returns the smallest power of two >= x, for x >= 1.
func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len64(x-1)
}

// mulFatal multiplies a and b, reporting a fatal error through the table's
// logger and panicking on overflow. It can only be reached by requesting a
// capacity that cannot be represented, so it is never expected to fire
// outside of adversarial test input.
func mulFatal(a, b uint64, what string) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		fatalf("hoptable: %s overflows 64 bits (a=%d b=%d)", what, a, b)
	}
	return lo
}
