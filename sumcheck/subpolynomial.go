// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sumcheck implements the multilinear sum-check engine the proof
// core reduces every constraint to: subpolynomials built from MLE factors,
// the composite polynomial that folds them into one sum-of-products claim,
// and the interactive-turned-Fiat–Shamir prover/verifier that proves or
// checks its hypercube sum equals a declared value.
package sumcheck

import "github.com/luxfi/sqlproof/scalar"

// SubpolynomialKind distinguishes the two constraint flavors a plan can
// register: Identity constraints must vanish at every hypercube point,
// ZeroSum constraints only need to sum to zero over the hypercube.
type SubpolynomialKind uint8

const (
	// Identity subpolynomials are required to be the zero polynomial.
	Identity SubpolynomialKind = iota
	// ZeroSum subpolynomials are only required to sum to zero.
	ZeroSum
)

func (k SubpolynomialKind) String() string {
	switch k {
	case Identity:
		return "Identity"
	case ZeroSum:
		return "ZeroSum"
	default:
		return "Unknown"
	}
}

// Term is one coefficient times a product of MLE factor tables, each
// spanning the same ν-variable hypercube.
type Term struct {
	Coefficient scalar.Scalar
	Factors     [][]scalar.Scalar
}

// Subpolynomial is a constraint registered by a plan's prover/verifier
// evaluation: a kind plus the terms summing to it.
type Subpolynomial struct {
	Kind  SubpolynomialKind
	Terms []Term
}

// Degree is the max term's factor count, plus one for Identity kind (the
// extra factor being the zerocheck equality-MLE multiplier).
func (s Subpolynomial) Degree() int {
	maxFactors := 0
	for _, term := range s.Terms {
		if len(term.Factors) > maxFactors {
			maxFactors = len(term.Factors)
		}
	}
	if s.Kind == Identity {
		maxFactors++
	}
	return maxFactors
}
