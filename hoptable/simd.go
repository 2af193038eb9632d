// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package hoptable

import "golang.org/x/sys/cpu"

// detectWidePath reports whether this machine has a SIMD instruction set
// wide enough to make the vector path in hopinfo.go/tags.go worthwhile. The
// SWAR implementations of that path are themselves portable, branch-free
// Go, not assembly, so they produce identical results on every
// architecture; the detection here only decides which of two correct,
// pure-Go implementations a freshly constructed Table picks, matching the
// dual-path shape of the original SSE2/scalar split.
func detectWidePath() bool {
	return cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD
}
