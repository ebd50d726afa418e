// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sumcheck

import (
	"fmt"

	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/transcript"
)

// RandomScalars deterministically materializes the per-subpolynomial
// Fiat–Shamir challenge scalars the CompositePolynomialBuilder scales each
// subpolynomial by, sampled from the transcript in subpolynomial order so
// prover and verifier always agree on them.
type RandomScalars struct {
	Subpolynomial []scalar.Scalar
}

// DrawRandomScalars samples count independent challenge scalars labeled
// label from the transcript.
func DrawRandomScalars(t *transcript.Transcript, label string, count int) RandomScalars {
	out := make([]scalar.Scalar, count)
	for i := range out {
		out[i] = t.ChallengeScalar(fmt.Sprintf("%s-%d", label, i))
	}
	return RandomScalars{Subpolynomial: out}
}
