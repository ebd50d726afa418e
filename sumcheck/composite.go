// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sumcheck

import "github.com/luxfi/sqlproof/scalar"

// product is one term of the composite polynomial's sum-of-products form:
// an already-challenge-scaled coefficient times a list of MLE factor
// tables, all spanning the same nu-variable hypercube.
type product struct {
	coefficient scalar.Scalar
	factors     [][]scalar.Scalar
}

// CompositePolynomial is the single multivariate polynomial a proof's
// subpolynomials are folded into: the sumcheck engine proves or verifies
// that its hypercube sum equals a declared value without ever expanding the
// sum-of-products into a single dense evaluation table.
type CompositePolynomial struct {
	nu       int
	degree   int
	products []product
}

// NU returns the number of hypercube variables (ceil(log2(table length))).
func (p *CompositePolynomial) NU() int { return p.nu }

// Degree returns the polynomial's total degree, the max per-round degree
// the sumcheck engine's round polynomials can take.
func (p *CompositePolynomial) Degree() int { return p.degree }

// CompositePolynomialBuilder accumulates a proof's subpolynomials into a
// CompositePolynomial, scaling each by its independent Fiat–Shamir
// challenge and, for Identity-kind subpolynomials, folding in the
// zerocheck equality-MLE table so that the composite's hypercube sum is
// zero iff every constraint holds.
type CompositePolynomialBuilder struct {
	nu       int
	products []product
	degree   int
}

// NewCompositePolynomialBuilder starts a builder over a nu-variable
// hypercube (table length 2^nu).
func NewCompositePolynomialBuilder(nu int) *CompositePolynomialBuilder {
	return &CompositePolynomialBuilder{nu: nu}
}

// AddSubpolynomial folds sub into the composite, scaled by challenge. For
// Identity-kind subpolynomials, identityMLE (the length-2^nu eq(.,rho)
// table) is appended as an extra factor to every term. Factor tables
// shorter than 2^nu are zero-padded to the full hypercube.
func (b *CompositePolynomialBuilder) AddSubpolynomial(sub Subpolynomial, challenge scalar.Scalar, identityMLE []scalar.Scalar) {
	size := 1 << uint(b.nu)
	for _, term := range sub.Terms {
		coeff := scalar.Mul(term.Coefficient, challenge)
		factors := make([][]scalar.Scalar, 0, len(term.Factors)+1)
		for _, f := range term.Factors {
			padded := make([]scalar.Scalar, size)
			copy(padded, f)
			factors = append(factors, padded)
		}
		if sub.Kind == Identity {
			factors = append(factors, append([]scalar.Scalar{}, identityMLE...))
		}
		if len(factors) > b.degree {
			b.degree = len(factors)
		}
		b.products = append(b.products, product{coefficient: coeff, factors: factors})
	}
}

// Build finalizes the composite polynomial.
func (b *CompositePolynomialBuilder) Build() *CompositePolynomial {
	return &CompositePolynomial{nu: b.nu, degree: b.degree, products: b.products}
}

// evaluateRound computes the round's univariate polynomial, as its
// evaluations at x = 0, 1, ..., degree, given that every product's factor
// tables currently have length 2*half (the variables not yet bound).
func (p *CompositePolynomial) evaluateRound(half int) []scalar.Scalar {
	evals := make([]scalar.Scalar, p.degree+1)
	for t := 0; t <= p.degree; t++ {
		x := scalar.FromInt64(int64(t))
		oneMinusX := scalar.Sub(scalar.One(), x)
		sum := scalar.Zero()
		for _, prod := range p.products {
			for b := 0; b < half; b++ {
				term := prod.coefficient
				for _, f := range prod.factors {
					lo, hi := f[b], f[b+half]
					v := scalar.Add(scalar.Mul(lo, oneMinusX), scalar.Mul(hi, x))
					term = scalar.Mul(term, v)
				}
				sum = scalar.Add(sum, term)
			}
		}
		evals[t] = sum
	}
	return evals
}

// fold binds the round's challenge r, halving every factor table.
func (p *CompositePolynomial) fold(half int, r scalar.Scalar) {
	oneMinusR := scalar.Sub(scalar.One(), r)
	for i, prod := range p.products {
		newFactors := make([][]scalar.Scalar, len(prod.factors))
		for j, f := range prod.factors {
			next := make([]scalar.Scalar, half)
			for b := 0; b < half; b++ {
				next[b] = scalar.Add(scalar.Mul(f[b], oneMinusR), scalar.Mul(f[b+half], r))
			}
			newFactors[j] = next
		}
		p.products[i].factors = newFactors
	}
}

// finalEvaluation returns the composite's value once every factor table
// has been folded down to length 1.
func (p *CompositePolynomial) finalEvaluation() scalar.Scalar {
	sum := scalar.Zero()
	for _, prod := range p.products {
		term := prod.coefficient
		for _, f := range prod.factors {
			term = scalar.Mul(term, f[0])
		}
		sum = scalar.Add(sum, term)
	}
	return sum
}
