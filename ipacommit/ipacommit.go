// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ipacommit is a reference homomorphic commitment backend over the
// BN254 G1 group: a fixed, deterministically-derived generator sequence
// G_0, G_1, ... (nothing-up-my-sleeve, via hash-to-curve) lets any column
// be committed as a vector Pedersen commitment
//
//	commit(column, offset) = sum_i column[i] * G[offset+i]
//
// which satisfies the additive and scalar-homomorphism the core's
// commitment.Commitment abstraction requires. This stands in for the
// inner-product-argument scheme spec.md names as an external collaborator:
// the core never imports this package directly, only commitment.Commitment.
package ipacommit

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"

	"github.com/luxfi/sqlproof/commitment"
	"github.com/luxfi/sqlproof/scalar"
)

// point wraps a bn254 G1 affine point as a commitment.Commitment.
type point struct {
	p bn254.G1Affine
}

var _ commitment.Commitment = (*point)(nil)

func (c *point) Add(other commitment.Commitment) commitment.Commitment {
	o := other.(*point)
	var sum bn254.G1Affine
	sum.Add(&c.p, &o.p)
	return &point{p: sum}
}

func (c *point) ScalarMul(k *scalar.Scalar) commitment.Commitment {
	var out bn254.G1Affine
	out.ScalarMultiplication(&c.p, scalar.ToBigInt(*k))
	return &point{p: out}
}

func (c *point) Equal(other commitment.Commitment) bool {
	o, ok := other.(*point)
	if !ok {
		return false
	}
	return c.p.Equal(&o.p)
}

func (c *point) IsZero() bool {
	return c.p.IsInfinity()
}

func (c *point) Bytes() []byte {
	b := c.p.Bytes()
	return b[:]
}

// Backend generates and caches the generator sequence on demand and commits
// columns against it.
type Backend struct {
	mu         sync.Mutex
	generators []bn254.G1Affine
	label      string
}

var _ commitment.Backend = (*Backend)(nil)

// NewBackend creates a commitment backend whose generator sequence is
// derived from label, so distinct backends (e.g. distinct test fixtures)
// never collide.
func NewBackend(label string) *Backend {
	return &Backend{label: label}
}

func (b *Backend) generator(i uint64) bn254.G1Affine {
	b.mu.Lock()
	defer b.mu.Unlock()
	for uint64(len(b.generators)) <= i {
		b.generators = append(b.generators, hashToG1(fmt.Sprintf("%s/gen/%d", b.label, len(b.generators))))
	}
	return b.generators[i]
}

// Commit implements commitment.Backend.
func (b *Backend) Commit(column []scalar.Scalar, offset uint64) commitment.Commitment {
	var acc bn254.G1Jac
	for i, v := range column {
		if v.IsZero() {
			continue
		}
		g := b.generator(offset + uint64(i))
		var term bn254.G1Jac
		term.FromAffine(&g)
		term.ScalarMultiplication(&term, scalar.ToBigInt(v))
		acc.AddAssign(&term)
	}
	var affine bn254.G1Affine
	affine.FromJacobian(&acc)
	return &point{p: affine}
}

// Zero implements commitment.Backend.
func (b *Backend) Zero() commitment.Commitment {
	return &point{}
}

// Decode implements commitment.Backend.
func (b *Backend) Decode(buf []byte) (commitment.Commitment, error) {
	var p bn254.G1Affine
	if _, err := p.SetBytes(buf); err != nil {
		return nil, err
	}
	return &point{p: p}, nil
}

// hashToG1 derives a nothing-up-my-sleeve generator from seed via
// try-and-increment: hash the seed and a counter into a candidate x
// coordinate and accept the first one lying on the BN254 curve
// y^2 = x^3 + 3.
func hashToG1(seed string) bn254.G1Affine {
	seedBytes := []byte(seed)
	var three fp.Element
	three.SetInt64(3)

	for counter := byte(0); ; counter++ {
		data := append(append([]byte{}, seedBytes...), counter)
		digest := sha256.Sum256(data)

		var x fp.Element
		x.SetBytes(digest[:])

		var x2, x3, rhs, y fp.Element
		x2.Square(&x)
		x3.Mul(&x2, &x)
		rhs.Add(&x3, &three)

		if y.Sqrt(&rhs) != nil {
			return bn254.G1Affine{X: x, Y: y}
		}
	}
}
