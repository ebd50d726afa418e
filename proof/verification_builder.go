// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"github.com/luxfi/sqlproof/commitment"
	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/sumcheck"
)

// VerificationBuilder mirrors ProofBuilder for the verifier: it is fed the
// prover's declared MLE evaluations (partitioned into result, anchored,
// and intermediate queues, the order QueryProof evaluates them in) and the
// prover's intermediate commitments, and accumulates the verifier's
// recomputed subpolynomial evaluations.
//
// Prover and verifier invocations of the consume/produce operations must
// occur in identical sequence; any divergence is a protocol bug and
// verification fails (or, worse, silently diverges — plan authors are
// responsible for the mirror-ordering discipline).
type VerificationBuilder struct {
	resultEvals    []scalar.Scalar
	resultCursor   int
	anchoredEvals  []scalar.Scalar
	anchoredCursor int
	anchoredCommitments []commitment.Commitment

	intermediateEvals       []scalar.Scalar
	intermediateCommitments []commitment.Commitment
	intermediateCursor      int

	challenges      []scalar.Scalar
	challengeCursor int

	mle                sumcheck.MLEEvaluations
	subpolyEvaluations []scalar.Scalar
}

// NewVerificationBuilder constructs the verifier's mirror of ProofBuilder.
// intermediateCommitments is the proof's wire commitments vector, in
// production order; mle carries the zerocheck randomizer and the sumcheck
// challenge point.
func NewVerificationBuilder(
	resultEvals, anchoredEvals, intermediateEvals []scalar.Scalar,
	intermediateCommitments []commitment.Commitment,
	challenges []scalar.Scalar,
	mle sumcheck.MLEEvaluations,
) *VerificationBuilder {
	return &VerificationBuilder{
		resultEvals:             resultEvals,
		anchoredEvals:           anchoredEvals,
		intermediateEvals:       intermediateEvals,
		intermediateCommitments: intermediateCommitments,
		challenges:              challenges,
		mle:                     mle,
	}
}

// ConsumeResultMLE returns the next evaluation of a result column MLE at
// the sumcheck point.
func (b *VerificationBuilder) ConsumeResultMLE() (scalar.Scalar, error) {
	if b.resultCursor >= len(b.resultEvals) {
		return scalar.Scalar{}, newError(StructuralMismatch, "consumed more result MLEs than the proof declared")
	}
	v := b.resultEvals[b.resultCursor]
	b.resultCursor++
	return v, nil
}

// ConsumeAnchoredMLE returns the next anchored MLE evaluation; expected is
// the commitment the caller independently recomputed via the
// CommitmentAccessor, stashed for the final inner-product check.
func (b *VerificationBuilder) ConsumeAnchoredMLE(expected commitment.Commitment) (scalar.Scalar, error) {
	if b.anchoredCursor >= len(b.anchoredEvals) {
		return scalar.Scalar{}, newError(StructuralMismatch, "consumed more anchored MLEs than the proof declared")
	}
	v := b.anchoredEvals[b.anchoredCursor]
	b.anchoredCursor++
	b.anchoredCommitments = append(b.anchoredCommitments, expected)
	return v, nil
}

// ConsumeIntermediateMLE pairs the next intermediate evaluation with the
// next wire commitment.
func (b *VerificationBuilder) ConsumeIntermediateMLE() (scalar.Scalar, commitment.Commitment, error) {
	if b.intermediateCursor >= len(b.intermediateEvals) || b.intermediateCursor >= len(b.intermediateCommitments) {
		return scalar.Scalar{}, nil, newError(StructuralMismatch, "consumed more intermediate MLEs than the proof declared")
	}
	v := b.intermediateEvals[b.intermediateCursor]
	c := b.intermediateCommitments[b.intermediateCursor]
	b.intermediateCursor++
	return v, c, nil
}

// ProduceSumcheckSubpolynomialEvaluation registers the verifier's
// recomputed value for a subpolynomial at the sumcheck point, in the
// exact order and count the prover's ProduceSumcheckSubpolynomial calls
// occurred. Identity-kind evaluations are folded against the shared
// random_evaluation multiplier here, mirroring the extra eq(.,rho) factor
// the prover's composite polynomial embeds for Identity subpolynomials.
func (b *VerificationBuilder) ProduceSumcheckSubpolynomialEvaluation(kind sumcheck.SubpolynomialKind, value scalar.Scalar) {
	if kind == sumcheck.Identity {
		value = scalar.Mul(value, b.mle.RandomEvaluation())
	}
	b.subpolyEvaluations = append(b.subpolyEvaluations, value)
}

// ConsumePostResultChallenge is the verifier's mirror of
// ProofBuilder.ConsumePostResultChallenge.
func (b *VerificationBuilder) ConsumePostResultChallenge() (scalar.Scalar, error) {
	if b.challengeCursor >= len(b.challenges) {
		return scalar.Scalar{}, newError(StructuralMismatch, "consumed more post-result challenges than were requested during count")
	}
	c := b.challenges[b.challengeCursor]
	b.challengeCursor++
	return c, nil
}

// MLEEvaluations exposes the shared zerocheck/sumcheck random points.
func (b *VerificationBuilder) MLEEvaluations() sumcheck.MLEEvaluations { return b.mle }

// SubpolynomialEvaluations returns every produced subpolynomial
// evaluation, in production order, each already scaled for Identity kind.
func (b *VerificationBuilder) SubpolynomialEvaluations() []scalar.Scalar { return b.subpolyEvaluations }

// AnchoredCommitments returns the expected commitments passed to every
// ConsumeAnchoredMLE call, in consumption order.
func (b *VerificationBuilder) AnchoredCommitments() []commitment.Commitment { return b.anchoredCommitments }

// ConsumedIntermediateCommitments returns the wire commitments paired with
// each ConsumeIntermediateMLE call actually made.
func (b *VerificationBuilder) ConsumedIntermediateCommitments() []commitment.Commitment {
	return b.intermediateCommitments[:b.intermediateCursor]
}
