// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ipacommit

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/luxfi/sqlproof/commitment"
	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/transcript"
)

// OpeningProof is a Bulletproofs-style inner-product argument proving a
// vector Pedersen commitment opens, against a public evaluation basis, to
// a claimed scalar, without revealing the committed vector.
type OpeningProof struct {
	L, R  []bn254.G1Affine
	Final scalar.Scalar
}

var _ commitment.OpeningProof = OpeningProof{}

// Bytes concatenates the proof's round commitments and final scalar.
func (p OpeningProof) Bytes() []byte {
	var buf []byte
	buf = appendUint64(buf, uint64(len(p.L)))
	for i := range p.L {
		lb := p.L[i].Bytes()
		rb := p.R[i].Bytes()
		buf = append(buf, lb[:]...)
		buf = append(buf, rb[:]...)
	}
	fb := p.Final.Bytes()
	buf = append(buf, fb[:]...)
	return buf
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func readUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, errors.New("ipacommit: truncated length prefix")
	}
	return binary.BigEndian.Uint64(buf[:8]), buf[8:], nil
}

// DecodeOpening implements commitment.Opener, parsing the wire form Bytes
// produces: a round count followed by that many (L,R) point pairs and one
// final scalar.
func (b *Backend) DecodeOpening(buf []byte) (commitment.OpeningProof, error) {
	rounds, buf, err := readUint64(buf)
	if err != nil {
		return nil, err
	}

	var pointLen int
	{
		var g bn254.G1Affine
		pointLen = len(g.Bytes())
	}
	var scalarLen int
	{
		var s scalar.Scalar
		scalarLen = len(s.Bytes())
	}

	ls := make([]bn254.G1Affine, rounds)
	rs := make([]bn254.G1Affine, rounds)
	for i := uint64(0); i < rounds; i++ {
		if len(buf) < pointLen {
			return nil, fmt.Errorf("ipacommit: truncated round-%d L point", i)
		}
		if _, err := ls[i].SetBytes(buf[:pointLen]); err != nil {
			return nil, fmt.Errorf("ipacommit: decode round-%d L point: %w", i, err)
		}
		buf = buf[pointLen:]
		if len(buf) < pointLen {
			return nil, fmt.Errorf("ipacommit: truncated round-%d R point", i)
		}
		if _, err := rs[i].SetBytes(buf[:pointLen]); err != nil {
			return nil, fmt.Errorf("ipacommit: decode round-%d R point: %w", i, err)
		}
		buf = buf[pointLen:]
	}
	if len(buf) != scalarLen {
		return nil, fmt.Errorf("ipacommit: expected %d trailing bytes for final scalar, got %d", scalarLen, len(buf))
	}
	var final scalar.Scalar
	final.SetBytes(buf)

	return OpeningProof{L: ls, R: rs, Final: final}, nil
}

var _ commitment.Opener = (*Backend)(nil)

var qPoint = hashToG1("sqlproof/ipacommit/auxiliary-Q")

// Open implements commitment.Opener, proving <vector, basis> == claimed
// where vector was committed via Commit(vector, offset).
func (b *Backend) Open(vector []scalar.Scalar, offset uint64, basis []scalar.Scalar, claimed scalar.Scalar) (commitment.OpeningProof, error) {
	n := len(vector)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("ipacommit: vector length %d is not a positive power of two", n)
	}
	if len(basis) != n {
		return nil, fmt.Errorf("ipacommit: basis length %d does not match vector length %d", len(basis), n)
	}

	gens := make([]bn254.G1Affine, n)
	for i := range gens {
		gens[i] = b.generator(offset + uint64(i))
	}

	t := transcript.New("sqlproof/ipacommit/opening/v1")
	t.AppendUint64("offset", offset)
	t.AppendScalar("claimed", claimed)
	for _, v := range basis {
		t.AppendScalar("basis", v)
	}

	v := append([]scalar.Scalar{}, vector...)
	g := append([]bn254.G1Affine{}, gens...)
	bas := append([]scalar.Scalar{}, basis...)

	var ls, rs []bn254.G1Affine
	for len(v) > 1 {
		half := len(v) / 2
		vlo, vhi := v[:half], v[half:]
		glo, ghi := g[:half], g[half:]
		blo, bhi := bas[:half], bas[half:]

		l := addPoints(msm(vlo, ghi), scalarPoint(innerProduct(vlo, bhi), qPoint))
		r := addPoints(msm(vhi, glo), scalarPoint(innerProduct(vhi, blo), qPoint))
		ls = append(ls, l)
		rs = append(rs, r)

		lb, rb := l.Bytes(), r.Bytes()
		t.AppendMessage("round-L", lb[:])
		t.AppendMessage("round-R", rb[:])
		x := t.ChallengeScalar("round-challenge")
		xInv := scalar.Inverse(x)

		v = foldScalars(vlo, vhi, x, xInv)
		g = foldPoints(glo, ghi, xInv, x)
		bas = foldScalars(blo, bhi, xInv, x)
	}

	return OpeningProof{L: ls, R: rs, Final: v[0]}, nil
}

// VerifyOpen implements commitment.Opener.
func (b *Backend) VerifyOpen(c commitment.Commitment, offset uint64, basis []scalar.Scalar, claimed scalar.Scalar, proof commitment.OpeningProof) error {
	p, ok := proof.(OpeningProof)
	if !ok {
		return errors.New("ipacommit: opening proof is not an ipacommit.OpeningProof")
	}
	n := len(basis)
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("ipacommit: basis length %d is not a positive power of two", n)
	}
	rounds := 0
	for 1<<uint(rounds) < n {
		rounds++
	}
	if len(p.L) != rounds || len(p.R) != rounds {
		return fmt.Errorf("ipacommit: expected %d rounds, got %d", rounds, len(p.L))
	}

	cPoint, ok := c.(*point)
	if !ok {
		return errors.New("ipacommit: commitment is not an ipacommit point")
	}

	t := transcript.New("sqlproof/ipacommit/opening/v1")
	t.AppendUint64("offset", offset)
	t.AppendScalar("claimed", claimed)
	for _, v := range basis {
		t.AppendScalar("basis", v)
	}

	gens := make([]bn254.G1Affine, n)
	for i := range gens {
		gens[i] = b.generator(offset + uint64(i))
	}

	pAcc := addPoints(cPoint.p, scalarPoint(claimed, qPoint))
	g := append([]bn254.G1Affine{}, gens...)
	bas := append([]scalar.Scalar{}, basis...)

	for i := 0; i < rounds; i++ {
		l, r := p.L[i], p.R[i]
		lb, rb := l.Bytes(), r.Bytes()
		t.AppendMessage("round-L", lb[:])
		t.AppendMessage("round-R", rb[:])
		x := t.ChallengeScalar("round-challenge")
		xInv := scalar.Inverse(x)
		x2 := scalar.Mul(x, x)
		xInv2 := scalar.Mul(xInv, xInv)

		pAcc = addPoints(addPoints(scalarPoint(x2, l), pAcc), scalarPoint(xInv2, r))

		half := len(g) / 2
		g = foldPoints(g[:half], g[half:], xInv, x)
		bas = foldScalars(bas[:half], bas[half:], xInv, x)
	}

	expected := addPoints(scalarPoint(p.Final, g[0]), scalarPoint(scalar.Mul(p.Final, bas[0]), qPoint))
	if !expected.Equal(&pAcc) {
		return errors.New("ipacommit: inner-product argument failed to verify")
	}
	return nil
}

func innerProduct(a, b []scalar.Scalar) scalar.Scalar {
	sum := scalar.Zero()
	for i := range a {
		sum = scalar.Add(sum, scalar.Mul(a[i], b[i]))
	}
	return sum
}

func msm(coeffs []scalar.Scalar, points []bn254.G1Affine) bn254.G1Affine {
	var acc bn254.G1Jac
	for i, c := range coeffs {
		if c.IsZero() {
			continue
		}
		var term bn254.G1Jac
		term.FromAffine(&points[i])
		term.ScalarMultiplication(&term, scalar.ToBigInt(c))
		acc.AddAssign(&term)
	}
	var affine bn254.G1Affine
	affine.FromJacobian(&acc)
	return affine
}

func scalarPoint(k scalar.Scalar, g bn254.G1Affine) bn254.G1Affine {
	var out bn254.G1Affine
	out.ScalarMultiplication(&g, scalar.ToBigInt(k))
	return out
}

func addPoints(a, b bn254.G1Affine) bn254.G1Affine {
	var out bn254.G1Affine
	out.Add(&a, &b)
	return out
}

func foldScalars(lo, hi []scalar.Scalar, cLo, cHi scalar.Scalar) []scalar.Scalar {
	out := make([]scalar.Scalar, len(lo))
	for i := range out {
		out[i] = scalar.Add(scalar.Mul(lo[i], cLo), scalar.Mul(hi[i], cHi))
	}
	return out
}

func foldPoints(lo, hi []bn254.G1Affine, cLo, cHi scalar.Scalar) []bn254.G1Affine {
	out := make([]bn254.G1Affine, len(lo))
	for i := range out {
		out[i] = addPoints(scalarPoint(cLo, lo[i]), scalarPoint(cHi, hi[i]))
	}
	return out
}
