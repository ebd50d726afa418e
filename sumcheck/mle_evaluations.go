// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sumcheck

import "github.com/luxfi/sqlproof/scalar"

// MLEEvaluations carries the two random points every Identity-kind
// subpolynomial's zerocheck reduction depends on: Rho, sampled from the
// transcript before the composite polynomial is assembled (the zerocheck
// randomizer), and Point, the challenge point sumcheck itself produces.
// RandomEvaluation multiplies every Identity-kind subpolynomial's
// recomputed value on the verifier side, mirroring the extra eq(.,Rho)
// factor folded into the prover's composite polynomial.
type MLEEvaluations struct {
	Rho   []scalar.Scalar
	Point []scalar.Scalar
}

// RandomEvaluation returns eq(Rho, Point).
func (m MLEEvaluations) RandomEvaluation() scalar.Scalar {
	return Eq(m.Rho, m.Point)
}
