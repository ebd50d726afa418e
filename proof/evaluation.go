// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"fmt"

	"github.com/luxfi/sqlproof/commitment"
	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/sumcheck"
	"github.com/luxfi/sqlproof/transcript"
)

// EvaluationProof is the commitment-scheme evaluation proof step §4.9
// names as an external collaborator: a single, transcript-batched
// inner-product argument that the concatenation of anchored and
// intermediate MLEs, combined with transcript-derived coefficients,
// evaluates at the sumcheck point to the claimed combined value. Present
// is false when the configured Backend does not implement
// commitment.Opener, in which case this step is skipped entirely (both
// Prove and Verify must agree on the same Backend).
type EvaluationProof struct {
	Present bool
	Proof   commitment.OpeningProof
}

// ProveEvaluation draws batching coefficients from t (one per anchored and
// intermediate MLE, in that order) and, if backend supports it, opens the
// linear combination of those MLEs against the eq-basis of point.
func ProveEvaluation(t *transcript.Transcript, backend commitment.Backend, anchored, intermediate [][]scalar.Scalar, anchoredEvals, intermediateEvals []scalar.Scalar, point []scalar.Scalar, offset uint64) EvaluationProof {
	opener, ok := backend.(commitment.Opener)
	if !ok {
		return EvaluationProof{}
	}
	k := len(anchored) + len(intermediate)
	if k == 0 {
		return EvaluationProof{}
	}
	coeffs := sumcheck.DrawRandomScalars(t, "evaluation-combination", k).Subpolynomial

	n := 1 << uint(len(point))
	combined := make([]scalar.Scalar, n)
	for i := range combined {
		combined[i] = scalar.Zero()
	}
	combinedEval := scalar.Zero()
	idx := 0
	for i, v := range anchored {
		addScaled(combined, v, coeffs[idx])
		combinedEval = scalar.Add(combinedEval, scalar.Mul(anchoredEvals[i], coeffs[idx]))
		idx++
	}
	for i, v := range intermediate {
		addScaled(combined, v, coeffs[idx])
		combinedEval = scalar.Add(combinedEval, scalar.Mul(intermediateEvals[i], coeffs[idx]))
		idx++
	}

	basis := sumcheck.EqEvaluations(point)
	openingProof, err := opener.Open(combined, offset, basis, combinedEval)
	if err != nil {
		return EvaluationProof{}
	}
	return EvaluationProof{Present: true, Proof: openingProof}
}

// VerifyEvaluation mirrors ProveEvaluation: it draws the same batching
// coefficients, combines the anchored commitments (independently
// recomputed by the caller via the CommitmentAccessor) and the proof's
// intermediate commitments, and checks the resulting opening proof.
func VerifyEvaluation(t *transcript.Transcript, backend commitment.Backend, anchoredCommitments, intermediateCommitments []commitment.Commitment, anchoredEvals, intermediateEvals []scalar.Scalar, point []scalar.Scalar, offset uint64, proof EvaluationProof) error {
	opener, ok := backend.(commitment.Opener)
	if !ok {
		if proof.Present {
			return fmt.Errorf("backend does not support evaluation proofs but one was supplied")
		}
		return nil
	}
	k := len(anchoredCommitments) + len(intermediateCommitments)
	if k == 0 {
		return nil
	}
	if !proof.Present {
		return fmt.Errorf("backend supports evaluation proofs but none was supplied")
	}
	coeffs := sumcheck.DrawRandomScalars(t, "evaluation-combination", k).Subpolynomial

	combined := backend.Zero()
	combinedEval := scalar.Zero()
	idx := 0
	for i, c := range anchoredCommitments {
		coeff := coeffs[idx]
		combined = combined.Add(c.ScalarMul(&coeff))
		combinedEval = scalar.Add(combinedEval, scalar.Mul(anchoredEvals[i], coeff))
		idx++
	}
	for i, c := range intermediateCommitments {
		coeff := coeffs[idx]
		combined = combined.Add(c.ScalarMul(&coeff))
		combinedEval = scalar.Add(combinedEval, scalar.Mul(intermediateEvals[i], coeff))
		idx++
	}

	basis := sumcheck.EqEvaluations(point)
	return opener.VerifyOpen(combined, offset, basis, combinedEval, proof.Proof)
}

func addScaled(dst, src []scalar.Scalar, coeff scalar.Scalar) {
	for i, v := range src {
		dst[i] = scalar.Add(dst[i], scalar.Mul(v, coeff))
	}
}
