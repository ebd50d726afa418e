// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scalar defines the prime field element used throughout the proof
// core: every column value, MLE evaluation, sumcheck coefficient, and
// Fiat-Shamir challenge is a Scalar.
package scalar

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Scalar is an element of the BN254 scalar field.
type Scalar = fr.Element

// Zero returns the additive identity.
func Zero() Scalar {
	var z Scalar
	return z
}

// One returns the multiplicative identity.
func One() Scalar {
	var z Scalar
	z.SetOne()
	return z
}

// FromInt64 converts a signed integer to a field element.
func FromInt64(v int64) Scalar {
	var z Scalar
	z.SetInt64(v)
	return z
}

// FromUint64 converts an unsigned integer to a field element.
func FromUint64(v uint64) Scalar {
	var z Scalar
	z.SetUint64(v)
	return z
}

// FromBool maps false/true to 0/1, matching the wire encoding of Boolean columns.
func FromBool(b bool) Scalar {
	if b {
		return One()
	}
	return Zero()
}

// FromBytesReduced interprets buf as a big-endian integer and reduces it
// modulo the field order; used to turn transcript squeeze output into a
// uniformly-distributed challenge scalar.
func FromBytesReduced(buf []byte) Scalar {
	var z Scalar
	z.SetBytes(buf)
	return z
}

// Add returns a+b.
func Add(a, b Scalar) Scalar {
	var z Scalar
	z.Add(&a, &b)
	return z
}

// Sub returns a-b.
func Sub(a, b Scalar) Scalar {
	var z Scalar
	z.Sub(&a, &b)
	return z
}

// Mul returns a*b.
func Mul(a, b Scalar) Scalar {
	var z Scalar
	z.Mul(&a, &b)
	return z
}

// Neg returns -a.
func Neg(a Scalar) Scalar {
	var z Scalar
	z.Neg(&a)
	return z
}

// Inverse returns a^-1; panics if a is zero, matching the field's
// mathematical definition (callers must not invert zero).
func Inverse(a Scalar) Scalar {
	var z Scalar
	if a.IsZero() {
		panic("scalar: inverse of zero")
	}
	z.Inverse(&a)
	return z
}

// Equal reports whether a and b represent the same field element.
func Equal(a, b Scalar) bool {
	return a.Equal(&b)
}

// ToBigInt materializes a as a big.Int in [0, r).
func ToBigInt(a Scalar) *big.Int {
	return a.BigInt(new(big.Int))
}
