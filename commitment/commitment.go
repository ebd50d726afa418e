// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package commitment declares the homomorphic commitment abstraction the
// proof core depends on. The core never imports a concrete backend; see
// ipacommit for the reference implementation used by tests and examples.
package commitment

import "github.com/luxfi/sqlproof/scalar"

// Commitment is a group element homomorphic over Scalar:
//
//	Add(commit(a), commit(b)) == commit(a+b)
//	ScalarMul(commit(a), k)   == commit(k*a)
//
// Concrete backends (ipacommit and others) implement this over a specific
// curve or polynomial commitment scheme.
type Commitment interface {
	// Add returns the commitment to the sum of the two committed vectors.
	Add(other Commitment) Commitment
	// ScalarMul returns the commitment to k times the committed vector.
	ScalarMul(k *scalar.Scalar) Commitment
	// Equal reports whether two commitments are to the same value.
	Equal(other Commitment) bool
	// IsZero reports whether this is the commitment to the zero vector.
	IsZero() bool
	// Bytes returns a canonical, fixed-width wire encoding.
	Bytes() []byte
}

// Backend produces commitments to columns of Scalars anchored at a
// generator offset, and is the analog of the data accessor's role on the
// prover side: given an offset and a column, it deterministically produces
// the same Commitment the verifier independently reconstructs (for anchored
// columns) or receives on the wire (for intermediate columns).
type Backend interface {
	// Commit commits to column starting at generator offset.
	Commit(column []scalar.Scalar, offset uint64) Commitment
	// Zero returns the commitment to the empty/zero vector, used as an
	// accumulator seed.
	Zero() Commitment
	// Decode parses a Commitment from its Bytes() encoding.
	Decode(buf []byte) (Commitment, error)
}
