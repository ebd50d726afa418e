// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/sumcheck"
)

// ProofBuilder is the prover-side witness collector: a plan's
// ProverEvaluate emits anchored and intermediate MLEs, registers sumcheck
// subpolynomials, and consumes the post-result challenges sampled after
// the transcript absorbed the result.
//
// Every MLE slice a plan produces must be arena-allocated by the caller;
// ProofBuilder only ever borrows them.
type ProofBuilder struct {
	tableLength      uint64
	challenges       []scalar.Scalar
	challengeCursor  int
	anchoredMLEs     [][]scalar.Scalar
	intermediateMLEs [][]scalar.Scalar
	subpolynomials   []sumcheck.Subpolynomial
}

// NewProofBuilder starts a prover pass for a plan of the given evaluated
// length, armed with the post-result challenges sampled from the
// transcript (in request order).
func NewProofBuilder(tableLength uint64, challenges []scalar.Scalar) *ProofBuilder {
	return &ProofBuilder{tableLength: tableLength, challenges: challenges}
}

// TableLength returns the plan-declared length.
func (b *ProofBuilder) TableLength() uint64 { return b.tableLength }

// ProduceAnchoredMLE registers a column the catalog is assumed to have
// already committed to; the verifier reconstructs its commitment
// independently via the CommitmentAccessor.
func (b *ProofBuilder) ProduceAnchoredMLE(values []scalar.Scalar) {
	b.anchoredMLEs = append(b.anchoredMLEs, values)
}

// ProduceIntermediateMLE registers a column the prover commits to here
// and sends the commitment on the wire.
func (b *ProofBuilder) ProduceIntermediateMLE(values []scalar.Scalar) {
	b.intermediateMLEs = append(b.intermediateMLEs, values)
}

// ProduceSumcheckSubpolynomial registers a constraint polynomial.
func (b *ProofBuilder) ProduceSumcheckSubpolynomial(kind sumcheck.SubpolynomialKind, terms []sumcheck.Term) {
	b.subpolynomials = append(b.subpolynomials, sumcheck.Subpolynomial{Kind: kind, Terms: terms})
}

// ConsumePostResultChallenge returns challenges in request order; panics
// if more are consumed than were declared during the count pass, which
// indicates a bug in the plan, not an adversarial input.
func (b *ProofBuilder) ConsumePostResultChallenge() scalar.Scalar {
	if b.challengeCursor >= len(b.challenges) {
		panic("proof: consumed more post-result challenges than were requested during count")
	}
	c := b.challenges[b.challengeCursor]
	b.challengeCursor++
	return c
}

// AnchoredMLEs returns every produced anchored MLE, in production order.
func (b *ProofBuilder) AnchoredMLEs() [][]scalar.Scalar { return b.anchoredMLEs }

// IntermediateMLEs returns every produced intermediate MLE, in production
// order.
func (b *ProofBuilder) IntermediateMLEs() [][]scalar.Scalar { return b.intermediateMLEs }

// Subpolynomials returns every registered subpolynomial, in production
// order.
func (b *ProofBuilder) Subpolynomials() []sumcheck.Subpolynomial { return b.subpolynomials }
