// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/sqlproof/commitment"
	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/sumcheck"
)

// MarshalBinary produces the wire form of a QueryProof (spec.md §6): the
// intermediate commitments, the sum-check round polynomials, the three
// evaluation vectors (result, anchored, intermediate), and the commitment
// scheme's evaluation proof, each length-prefixed and concatenated in that
// order.
func (p *QueryProof) MarshalBinary() ([]byte, error) {
	var buf []byte

	buf = appendUint64(buf, uint64(len(p.Commitments)))
	for _, c := range p.Commitments {
		cb := c.Bytes()
		buf = appendUint64(buf, uint64(len(cb)))
		buf = append(buf, cb...)
	}

	buf = appendUint64(buf, uint64(len(p.SumcheckProof.RoundPolynomials)))
	for _, round := range p.SumcheckProof.RoundPolynomials {
		buf = appendUint64(buf, uint64(len(round)))
		for _, e := range round {
			buf = appendScalar(buf, e)
		}
	}

	buf = appendScalars(buf, p.ResultEvals)
	buf = appendScalars(buf, p.AnchoredEvals)
	buf = appendScalars(buf, p.IntermediateEvals)

	if p.EvaluationProof.Present {
		buf = append(buf, 1)
		eb := p.EvaluationProof.Proof.Bytes()
		buf = appendUint64(buf, uint64(len(eb)))
		buf = append(buf, eb...)
	} else {
		buf = append(buf, 0)
	}

	return buf, nil
}

// UnmarshalQueryProof parses the wire form MarshalBinary produces. Decoding
// commitments and the evaluation proof requires backend: the former via
// Backend.Decode, the latter via the commitment.Opener capability backend
// must implement whenever the encoded proof carries one.
func UnmarshalQueryProof(buf []byte, backend commitment.Backend) (*QueryProof, error) {
	numCommitments, buf, err := readUint64(buf)
	if err != nil {
		return nil, wrapError(DecodeError, err, "reading commitment count")
	}
	if numCommitments > uint64(len(buf))/8 {
		return nil, newError(DecodeError, "commitment count %d exceeds remaining %d bytes", numCommitments, len(buf))
	}
	commitments := make([]commitment.Commitment, numCommitments)
	for i := uint64(0); i < numCommitments; i++ {
		var clen uint64
		clen, buf, err = readUint64(buf)
		if err != nil {
			return nil, wrapError(DecodeError, err, "reading commitment %d length", i)
		}
		if uint64(len(buf)) < clen {
			return nil, newError(DecodeError, "truncated commitment %d", i)
		}
		c, derr := backend.Decode(buf[:clen])
		if derr != nil {
			return nil, wrapError(DecodeError, derr, "decoding commitment %d", i)
		}
		commitments[i] = c
		buf = buf[clen:]
	}

	numRounds, buf, err := readUint64(buf)
	if err != nil {
		return nil, wrapError(DecodeError, err, "reading round count")
	}
	rounds := make([][]scalar.Scalar, numRounds)
	for i := uint64(0); i < numRounds; i++ {
		var n uint64
		n, buf, err = readUint64(buf)
		if err != nil {
			return nil, wrapError(DecodeError, err, "reading round %d length", i)
		}
		evals := make([]scalar.Scalar, n)
		for j := uint64(0); j < n; j++ {
			var e scalar.Scalar
			e, buf, err = readScalar(buf)
			if err != nil {
				return nil, wrapError(DecodeError, err, "reading round %d eval %d", i, j)
			}
			evals[j] = e
		}
		rounds[i] = evals
	}

	resultEvals, buf, err := readScalars(buf)
	if err != nil {
		return nil, wrapError(DecodeError, err, "reading result evaluations")
	}
	anchoredEvals, buf, err := readScalars(buf)
	if err != nil {
		return nil, wrapError(DecodeError, err, "reading anchored evaluations")
	}
	intermediateEvals, buf, err := readScalars(buf)
	if err != nil {
		return nil, wrapError(DecodeError, err, "reading intermediate evaluations")
	}

	if len(buf) < 1 {
		return nil, newError(DecodeError, "truncated evaluation-proof presence byte")
	}
	present := buf[0] == 1
	buf = buf[1:]

	var evalProof EvaluationProof
	if present {
		var elen uint64
		elen, buf, err = readUint64(buf)
		if err != nil {
			return nil, wrapError(DecodeError, err, "reading evaluation proof length")
		}
		if uint64(len(buf)) < elen {
			return nil, newError(DecodeError, "truncated evaluation proof")
		}
		opener, ok := backend.(commitment.Opener)
		if !ok {
			return nil, newError(DecodeError, "proof carries an evaluation proof but backend does not support Opener")
		}
		op, derr := opener.DecodeOpening(buf[:elen])
		if derr != nil {
			return nil, wrapError(DecodeError, derr, "decoding evaluation proof")
		}
		evalProof = EvaluationProof{Present: true, Proof: op}
		buf = buf[elen:]
	}
	if len(buf) != 0 {
		return nil, newError(DecodeError, "%d trailing bytes after query proof", len(buf))
	}

	return &QueryProof{
		Commitments:       commitments,
		SumcheckProof:     sumcheck.Proof{RoundPolynomials: rounds},
		ResultEvals:       resultEvals,
		AnchoredEvals:     anchoredEvals,
		IntermediateEvals: intermediateEvals,
		EvaluationProof:   evalProof,
	}, nil
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func readUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, errors.New("proof: truncated length prefix")
	}
	return binary.BigEndian.Uint64(buf[:8]), buf[8:], nil
}

func appendScalar(buf []byte, s scalar.Scalar) []byte {
	b := s.Bytes()
	return append(buf, b[:]...)
}

func readScalar(buf []byte) (scalar.Scalar, []byte, error) {
	var s scalar.Scalar
	n := len(s.Bytes())
	if len(buf) < n {
		return scalar.Scalar{}, nil, fmt.Errorf("proof: truncated scalar, want %d bytes, have %d", n, len(buf))
	}
	s.SetBytes(buf[:n])
	return s, buf[n:], nil
}

func appendScalars(buf []byte, vals []scalar.Scalar) []byte {
	buf = appendUint64(buf, uint64(len(vals)))
	for _, v := range vals {
		buf = appendScalar(buf, v)
	}
	return buf
}

func readScalars(buf []byte) ([]scalar.Scalar, []byte, error) {
	n, buf, err := readUint64(buf)
	if err != nil {
		return nil, nil, err
	}
	out := make([]scalar.Scalar, n)
	for i := uint64(0); i < n; i++ {
		var v scalar.Scalar
		v, buf, err = readScalar(buf)
		if err != nil {
			return nil, nil, err
		}
		out[i] = v
	}
	return out, buf, nil
}
