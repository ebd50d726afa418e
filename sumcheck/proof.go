// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sumcheck

import (
	"fmt"

	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/transcript"
)

// Proof is the non-interactive sum-check transcript: one round polynomial
// (as its evaluations at x = 0..degree) per hypercube variable.
type Proof struct {
	RoundPolynomials [][]scalar.Scalar
}

// Prove runs the sum-check protocol over p and returns the transcript
// proof, the resulting random challenge point, and the composite's
// evaluation there. It does not check p's hypercube sum; Verify checks the
// round polynomials against the claimed sum (always zero for this core's
// zerocheck/zerosum constraints).
//
// Mutates p: its factor tables are folded round by round and are not
// valid for reuse afterward.
func Prove(t *transcript.Transcript, p *CompositePolynomial) (Proof, []scalar.Scalar, scalar.Scalar) {
	proof := Proof{RoundPolynomials: make([][]scalar.Scalar, p.nu)}
	point := make([]scalar.Scalar, p.nu)

	half := 1 << uint(p.nu-1)
	for round := 0; round < p.nu; round++ {
		evals := p.evaluateRound(half)
		proof.RoundPolynomials[round] = evals
		for _, e := range evals {
			t.AppendScalar(fmt.Sprintf("sumcheck-round-%d-eval", round), e)
		}
		r := t.ChallengeScalar(fmt.Sprintf("sumcheck-round-%d-challenge", round))
		point[round] = r
		p.fold(half, r)
		half /= 2
	}
	return proof, point, p.finalEvaluation()
}

// Verify checks proof against the declared claimedSum and degree bound,
// deriving the same sequence of challenges the prover would have. It
// returns the resulting challenge point and the claimed final evaluation
// at that point, which the caller must independently cross-check against
// the recomputed composite value.
func Verify(t *transcript.Transcript, nu int, degree int, claimedSum scalar.Scalar, proof Proof) ([]scalar.Scalar, scalar.Scalar, error) {
	if len(proof.RoundPolynomials) != nu {
		return nil, scalar.Scalar{}, fmt.Errorf("sumcheck: expected %d round polynomials, got %d", nu, len(proof.RoundPolynomials))
	}
	point := make([]scalar.Scalar, nu)
	current := claimedSum
	for round, evals := range proof.RoundPolynomials {
		if len(evals) != degree+1 {
			return nil, scalar.Scalar{}, fmt.Errorf("sumcheck: round %d has %d evaluations, expected %d", round, len(evals), degree+1)
		}
		sum01 := scalar.Add(evals[0], evals[1])
		if !scalar.Equal(sum01, current) {
			return nil, scalar.Scalar{}, fmt.Errorf("sumcheck: round %d fails g(0)+g(1) = previous claim", round)
		}
		for _, e := range evals {
			t.AppendScalar(fmt.Sprintf("sumcheck-round-%d-eval", round), e)
		}
		r := t.ChallengeScalar(fmt.Sprintf("sumcheck-round-%d-challenge", round))
		point[round] = r
		current = interpolate(evals, r)
	}
	return point, current, nil
}

// interpolate evaluates, at x, the degree-len(evals)-1 polynomial defined
// by its values at the integer nodes 0, 1, ..., len(evals)-1, via
// Lagrange interpolation.
func interpolate(evals []scalar.Scalar, x scalar.Scalar) scalar.Scalar {
	n := len(evals)
	result := scalar.Zero()
	for i := 0; i < n; i++ {
		term := evals[i]
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			numerator := scalar.Sub(x, scalar.FromInt64(int64(j)))
			denominator := scalar.FromInt64(int64(i - j))
			term = scalar.Mul(term, scalar.Mul(numerator, scalar.Inverse(denominator)))
		}
		result = scalar.Add(result, term)
	}
	return result
}
