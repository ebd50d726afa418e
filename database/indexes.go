// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/sqlproof/scalar"
)

// IndexesKind discriminates the two ways a result's row set can be encoded.
type IndexesKind uint8

const (
	// Dense describes a contiguous range [Start, End).
	Dense IndexesKind = iota
	// Sparse describes an explicit, strictly ascending list of row indices.
	Sparse
)

// Indexes is the sum type describing which rows of a plan's evaluated
// length are present in its result.
type Indexes struct {
	Kind  IndexesKind
	Start uint64 // Dense only: inclusive start
	End   uint64 // Dense only: exclusive end
	Rows  []uint64
}

// NewDenseIndexes builds a contiguous [start, end) index set.
func NewDenseIndexes(start, end uint64) Indexes {
	return Indexes{Kind: Dense, Start: start, End: end}
}

// NewSparseIndexes builds an index set from an explicit row list; the
// caller must supply it already in strictly ascending order.
func NewSparseIndexes(rows []uint64) Indexes {
	return Indexes{Kind: Sparse, Rows: append([]uint64{}, rows...)}
}

// Len returns the number of selected rows.
func (ix Indexes) Len() uint64 {
	switch ix.Kind {
	case Dense:
		if ix.End <= ix.Start {
			return 0
		}
		return ix.End - ix.Start
	case Sparse:
		return uint64(len(ix.Rows))
	default:
		return 0
	}
}

// Materialize returns the concrete, ascending list of selected row indices.
func (ix Indexes) Materialize() []uint64 {
	switch ix.Kind {
	case Dense:
		n := ix.Len()
		out := make([]uint64, n)
		for i := range out {
			out[i] = ix.Start + uint64(i)
		}
		return out
	case Sparse:
		return append([]uint64{}, ix.Rows...)
	default:
		return nil
	}
}

// Validate checks the invariants from spec.md §4.8: row indices are
// ascending, distinct, and each less than the plan's evaluated length n.
func (ix Indexes) Validate(n uint64) error {
	switch ix.Kind {
	case Dense:
		if ix.Start > ix.End {
			return fmt.Errorf("database: dense indexes start %d > end %d", ix.Start, ix.End)
		}
		if ix.End > n {
			return fmt.Errorf("database: dense indexes end %d exceeds table length %d", ix.End, n)
		}
		return nil
	case Sparse:
		var prev uint64
		for i, row := range ix.Rows {
			if row >= n {
				return fmt.Errorf("database: sparse index %d at position %d >= table length %d", row, i, n)
			}
			if i > 0 && row <= prev {
				return fmt.Errorf("database: sparse indexes not strictly ascending at position %d", i)
			}
			prev = row
		}
		return nil
	default:
		return fmt.Errorf("database: unknown indexes kind %d", ix.Kind)
	}
}

// SelectorEvaluations returns the length-n 0/1 table of the indicator
// function for the selected rows, the evaluation table of the "result
// indexes MLE" consumed by SumcheckMleEvaluations.
func (ix Indexes) SelectorEvaluations(n uint64) []scalar.Scalar {
	out := make([]scalar.Scalar, n)
	for i := range out {
		out[i] = scalar.Zero()
	}
	for _, row := range ix.Materialize() {
		if row < n {
			out[row] = scalar.One()
		}
	}
	return out
}

// Encode appends the wire form of ix to buf and returns the result:
// u8 tag (0=Dense,1=Sparse) ++ payload, per spec.md §6.
func (ix Indexes) Encode(buf []byte) []byte {
	var tag byte
	if ix.Kind == Sparse {
		tag = 1
	}
	buf = append(buf, tag)
	switch ix.Kind {
	case Dense:
		buf = appendUint64(buf, ix.Start)
		buf = appendUint64(buf, ix.End)
	case Sparse:
		buf = appendUint64(buf, uint64(len(ix.Rows)))
		for _, row := range ix.Rows {
			buf = appendUint64(buf, row)
		}
	}
	return buf
}

// DecodeIndexes reads an Indexes from the front of buf and returns the
// remaining, unconsumed bytes.
func DecodeIndexes(buf []byte) (Indexes, []byte, error) {
	if len(buf) < 1 {
		return Indexes{}, nil, errors.New("database: truncated indexes tag")
	}
	tag := buf[0]
	buf = buf[1:]
	switch tag {
	case 0:
		start, buf, err := readUint64(buf)
		if err != nil {
			return Indexes{}, nil, err
		}
		end, buf, err := readUint64(buf)
		if err != nil {
			return Indexes{}, nil, err
		}
		return Indexes{Kind: Dense, Start: start, End: end}, buf, nil
	case 1:
		length, buf, err := readUint64(buf)
		if err != nil {
			return Indexes{}, nil, err
		}
		rows := make([]uint64, length)
		for i := range rows {
			var row uint64
			row, buf, err = readUint64(buf)
			if err != nil {
				return Indexes{}, nil, err
			}
			rows[i] = row
		}
		return Indexes{Kind: Sparse, Rows: rows}, buf, nil
	default:
		return Indexes{}, nil, fmt.Errorf("database: unknown indexes tag %d", tag)
	}
}

// appendUint64 and readUint64 encode row offsets and indices at full
// 32-byte wire width via uint256, rather than a bare 8-byte integer: index
// sets and row offsets cross the wire boundary into catalogs that may
// address wider row spaces than a single plan's evaluated length, and a
// fixed-width wide integer avoids a second encoding once that happens.
func appendUint64(buf []byte, v uint64) []byte {
	var u uint256.Int
	u.SetUint64(v)
	b := u.Bytes32()
	return append(buf, b[:]...)
}

func readUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 32 {
		return 0, nil, errors.New("database: truncated wide integer")
	}
	var u uint256.Int
	u.SetBytes32(buf[:32])
	if !u.IsUint64() {
		return 0, nil, fmt.Errorf("database: wide integer %s exceeds uint64 range", u.String())
	}
	return u.Uint64(), buf[32:], nil
}
