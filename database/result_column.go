// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ProvableResultColumn is the compact, self-describing wire encoding of one
// result column: a type tag followed by a length-prefixed, type-specific
// body. BigInt values are zigzag-varint encoded so small magnitudes (the
// common case for aggregates and row counts) cost a single byte; Boolean
// values are one byte per value (0 or 1); VarChar values are length-prefixed
// UTF-8.
type ProvableResultColumn struct {
	Name string
	Type ColumnType
	Data []byte
}

// EncodeResultColumn produces the wire form of one column of length n.
func EncodeResultColumn(name string, col Column) ProvableResultColumn {
	var buf []byte
	switch col.Type {
	case BigInt:
		for _, v := range col.Ints {
			buf = appendVarint(buf, v)
		}
	case Boolean:
		for _, v := range col.Bools {
			if v {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		}
	case VarChar:
		for _, v := range col.Strings {
			buf = appendVarint(buf, int64(len(v)))
			buf = append(buf, v...)
		}
	}
	return ProvableResultColumn{Name: name, Type: col.Type, Data: buf}
}

// DecodeColumn parses a ProvableResultColumn's body back into n typed
// values, the inverse of EncodeResultColumn (spec.md's decode_and_convert).
func DecodeColumn(rc ProvableResultColumn, n uint64) (Column, error) {
	switch rc.Type {
	case BigInt:
		out := make([]int64, 0, n)
		buf := rc.Data
		for i := uint64(0); i < n; i++ {
			v, rest, err := readVarint(buf)
			if err != nil {
				return Column{}, fmt.Errorf("database: decode bigint column %q: %w", rc.Name, err)
			}
			out = append(out, v)
			buf = rest
		}
		if len(buf) != 0 {
			return Column{}, fmt.Errorf("database: trailing bytes in bigint column %q", rc.Name)
		}
		return NewBigIntColumn(out), nil
	case Boolean:
		if uint64(len(rc.Data)) != n {
			return Column{}, fmt.Errorf("database: boolean column %q expected %d bytes, got %d", rc.Name, n, len(rc.Data))
		}
		out := make([]bool, n)
		for i, b := range rc.Data {
			if b > 1 {
				return Column{}, fmt.Errorf("database: boolean column %q has non-boolean byte %d", rc.Name, b)
			}
			out[i] = b == 1
		}
		return NewBooleanColumn(out), nil
	case VarChar:
		out := make([]string, 0, n)
		buf := rc.Data
		for i := uint64(0); i < n; i++ {
			length, rest, err := readVarint(buf)
			if err != nil {
				return Column{}, fmt.Errorf("database: decode varchar column %q: %w", rc.Name, err)
			}
			if length < 0 || uint64(length) > uint64(len(rest)) {
				return Column{}, fmt.Errorf("database: varchar column %q has invalid length %d", rc.Name, length)
			}
			out = append(out, string(rest[:length]))
			buf = rest[length:]
		}
		if len(buf) != 0 {
			return Column{}, fmt.Errorf("database: trailing bytes in varchar column %q", rc.Name)
		}
		return NewVarCharColumn(out), nil
	default:
		return Column{}, fmt.Errorf("database: unknown column type %d for %q", rc.Type, rc.Name)
	}
}

func appendVarint(buf []byte, v int64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func readVarint(buf []byte) (int64, []byte, error) {
	v, n := binary.Varint(buf)
	if n <= 0 {
		return 0, nil, errors.New("database: truncated or invalid varint")
	}
	return v, buf[n:], nil
}
