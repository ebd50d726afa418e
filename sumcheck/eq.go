// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sumcheck

import "github.com/luxfi/sqlproof/scalar"

// Eq evaluates the multilinear equality polynomial eq(x,y) =
// prod_i (x_i*y_i + (1-x_i)*(1-y_i)) at two equal-length points.
func Eq(x, y []scalar.Scalar) scalar.Scalar {
	acc := scalar.One()
	for i := range x {
		xi, yi := x[i], y[i]
		same := scalar.Add(scalar.Mul(xi, yi), scalar.Mul(scalar.Sub(scalar.One(), xi), scalar.Sub(scalar.One(), yi)))
		acc = scalar.Mul(acc, same)
	}
	return acc
}

// EqEvaluations returns the length-2^len(rho) table of eq(b, rho) for every
// b in the boolean hypercube {0,1}^len(rho), the "identity MLE" Identity
// kind subpolynomials are multiplied by before sumcheck.
func EqEvaluations(rho []scalar.Scalar) []scalar.Scalar {
	// Processed back-to-front so rho[0] ends up controlling the table's
	// top-level (most-significant-bit) split, matching EvaluateMLE's
	// convention of folding point[0] first.
	table := []scalar.Scalar{scalar.One()}
	for i := len(rho) - 1; i >= 0; i-- {
		r := rho[i]
		next := make([]scalar.Scalar, len(table)*2)
		oneMinusR := scalar.Sub(scalar.One(), r)
		for j, v := range table {
			next[j] = scalar.Mul(v, oneMinusR)
			next[j+len(table)] = scalar.Mul(v, r)
		}
		table = next
	}
	return table
}

// EvaluateMLE folds a length-2^nu evaluation table down to its multilinear
// extension's value at point (length nu), used to evaluate anchored and
// intermediate MLEs at the sumcheck challenge point. A shorter table is
// zero-padded to length 2^nu first.
func EvaluateMLE(table []scalar.Scalar, point []scalar.Scalar) scalar.Scalar {
	cur := append([]scalar.Scalar{}, table...)
	for len(cur) < 1<<uint(len(point)) {
		cur = append(cur, scalar.Zero())
	}
	for _, r := range point {
		half := len(cur) / 2
		next := make([]scalar.Scalar, half)
		for b := 0; b < half; b++ {
			lo, hi := cur[b], cur[b+half]
			next[b] = scalar.Add(lo, scalar.Mul(r, scalar.Sub(hi, lo)))
		}
		cur = next
	}
	if len(cur) != 1 {
		return scalar.Zero()
	}
	return cur[0]
}
