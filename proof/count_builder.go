// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

// Counts is the seven-integer shape both the prover and verifier passes
// must agree on, finalized from a CountBuilder.
type Counts struct {
	DegreeBound          int
	ResultColumns        int
	Subpolynomials       int
	AnchoredMLEs         int
	IntermediateMLEs     int
	PostResultChallenges int
	TableLength          uint64
}

// NU returns the sumcheck hypercube dimension ceil(log2(TableLength)).
func (c Counts) NU() int {
	return ceilLog2(c.TableLength)
}

// Equal reports whether two Counts agree on every field, the check the
// verifier performs against the prover's declared shape.
func (c Counts) Equal(other Counts) bool {
	return c == other
}

// ceilLog2 returns the smallest nu such that 2^nu >= n, with n=0 and n=1
// both mapping to nu=0 (a single-point hypercube).
func ceilLog2(n uint64) int {
	nu := 0
	size := uint64(1)
	for size < n {
		size <<= 1
		nu++
	}
	return nu
}

// CountBuilder accumulates a plan's declared resource counts during the
// count pass.
type CountBuilder struct {
	tableLength          uint64
	degreeBound          int
	resultColumns        int
	subpolynomials       int
	anchoredMLEs         int
	intermediateMLEs     int
	postResultChallenges int
}

// NewCountBuilder starts a count pass for a plan of the given evaluated
// length.
func NewCountBuilder(tableLength uint64) *CountBuilder {
	return &CountBuilder{tableLength: tableLength}
}

// TableLength returns the plan's declared length.
func (b *CountBuilder) TableLength() uint64 { return b.tableLength }

// CountDegree registers a subpolynomial of degree d, keeping the maximum
// seen.
func (b *CountBuilder) CountDegree(d int) {
	if d > b.degreeBound {
		b.degreeBound = d
	}
}

// CountResultColumns registers k more result columns.
func (b *CountBuilder) CountResultColumns(k int) { b.resultColumns += k }

// CountSubpolynomials registers k more subpolynomials.
func (b *CountBuilder) CountSubpolynomials(k int) { b.subpolynomials += k }

// CountAnchoredMLEs registers k more anchored MLEs.
func (b *CountBuilder) CountAnchoredMLEs(k int) { b.anchoredMLEs += k }

// CountIntermediateMLEs registers k more intermediate MLEs.
func (b *CountBuilder) CountIntermediateMLEs(k int) { b.intermediateMLEs += k }

// CountPostResultChallenges registers k more post-result challenges.
func (b *CountBuilder) CountPostResultChallenges(k int) { b.postResultChallenges += k }

// Finalize validates and returns the accumulated Counts. The only count
// pass failure condition is a degree bound below 2 (every subpolynomial
// contributes at least one MLE factor; Identity-kind ones contribute at
// least two once the zerocheck multiplier is folded in).
func (b *CountBuilder) Finalize() (Counts, error) {
	if b.degreeBound < 2 {
		return Counts{}, newError(StructuralMismatch, "degree bound %d is below the minimum of 2", b.degreeBound)
	}
	return Counts{
		DegreeBound:          b.degreeBound,
		ResultColumns:        b.resultColumns,
		Subpolynomials:       b.subpolynomials,
		AnchoredMLEs:         b.anchoredMLEs,
		IntermediateMLEs:     b.intermediateMLEs,
		PostResultChallenges: b.postResultChallenges,
		TableLength:          b.tableLength,
	}, nil
}
