// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scratch provides a bump-allocated arena for the Scalar slices a
// proof's count/result/prover passes need transiently: MLE evaluation
// tables, folded sumcheck round tables, and subpolynomial term buffers. No
// third-party arena allocator in the retrieved corpus models per-query
// scratch memory released in bulk (see DESIGN.md), so this is hand-built in
// the teacher's idiom: plain slices, no external dependency, reset once per
// query rather than freed piecewise.
package scratch

import "github.com/luxfi/sqlproof/scalar"

// Arena hands out Scalar slices for the lifetime of a single query's
// count/result/prover pass from one growable backing buffer. Alloc bumps a
// cursor into that buffer, growing it with append only when capacity is
// exhausted; Reset rewinds the cursor to zero so the next query's Allocs
// reuse the same backing array instead of issuing a fresh make per call.
type Arena struct {
	buf    []scalar.Scalar
	cursor int
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{}
}

// Alloc returns a zero-valued Scalar slice of length n. The slice is only
// valid until the next Reset. A grow moves the arena to a new backing array
// and leaves the old one untouched, so slices handed out earlier keep their
// contents across later Alloc/AllocCopy calls.
func (a *Arena) Alloc(n int) []scalar.Scalar {
	if a.cursor+n > len(a.buf) {
		grown := make([]scalar.Scalar, a.cursor, a.cursor+n)
		copy(grown, a.buf)
		a.buf = append(grown, make([]scalar.Scalar, n)...)
	}
	buf := a.buf[a.cursor : a.cursor+n : a.cursor+n]
	for i := range buf {
		buf[i] = scalar.Zero()
	}
	a.cursor += n
	return buf
}

// AllocCopy returns a fresh Scalar slice holding a copy of src.
func (a *Arena) AllocCopy(src []scalar.Scalar) []scalar.Scalar {
	buf := a.Alloc(len(src))
	copy(buf, src)
	return buf
}

// Reset rewinds the arena to empty, keeping its backing buffer's capacity so
// the next query's Allocs reuse it instead of reallocating.
func (a *Arena) Reset() {
	a.cursor = 0
}

// Allocated returns the total number of Scalars allocated since the last
// Reset, for diagnostics.
func (a *Arena) Allocated() int {
	return a.cursor
}
