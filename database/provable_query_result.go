// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import (
	"fmt"

	"github.com/luxfi/sqlproof/scalar"
)

// ProvableQueryResult is the compact, self-describing encoding of a query's
// output rows that is sent over the wire alongside the proof: the index set
// naming which rows of the plan's evaluated length are present, and one
// ProvableResultColumn per result field, each holding exactly Len(Indexes)
// values.
type ProvableQueryResult struct {
	Indexes Indexes
	Columns []ProvableResultColumn
}

// NewProvableQueryResult builds a ProvableQueryResult from the already
// row-selected columns the ResultBuilder accumulated.
func NewProvableQueryResult(indexes Indexes, fields []ColumnField, selected []Column) (ProvableQueryResult, error) {
	if len(fields) != len(selected) {
		return ProvableQueryResult{}, fmt.Errorf("database: %d result fields but %d columns", len(fields), len(selected))
	}
	n := indexes.Len()
	cols := make([]ProvableResultColumn, len(selected))
	for i, col := range selected {
		if uint64(col.Len()) != n {
			return ProvableQueryResult{}, fmt.Errorf("database: column %q has %d rows, expected %d", fields[i].Name, col.Len(), n)
		}
		cols[i] = EncodeResultColumn(fields[i].Name, col)
	}
	return ProvableQueryResult{Indexes: indexes, Columns: cols}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler, writing
// row_count ∥ column_count ∥ Indexes ∥ column_bytes…. Every integer here
// (the counts, the index payload, and each column's name and data lengths)
// is a 32-byte big-endian value written by appendUint64, not an 8-byte one.
func (r ProvableQueryResult) MarshalBinary() ([]byte, error) {
	buf := appendUint64(nil, r.Indexes.Len())
	buf = appendUint64(buf, uint64(len(r.Columns)))
	buf = r.Indexes.Encode(buf)
	for _, col := range r.Columns {
		buf = appendUint64(buf, uint64(len(col.Name)))
		buf = append(buf, col.Name...)
		buf = append(buf, byte(col.Type))
		buf = appendUint64(buf, uint64(len(col.Data)))
		buf = append(buf, col.Data...)
	}
	return buf, nil
}

// UnmarshalProvableQueryResult is the inverse of MarshalBinary.
func UnmarshalProvableQueryResult(buf []byte) (ProvableQueryResult, error) {
	rowCount, buf, err := readUint64(buf)
	if err != nil {
		return ProvableQueryResult{}, err
	}
	numCols, buf, err := readUint64(buf)
	if err != nil {
		return ProvableQueryResult{}, err
	}
	indexes, buf, err := DecodeIndexes(buf)
	if err != nil {
		return ProvableQueryResult{}, err
	}
	if indexes.Len() != rowCount {
		return ProvableQueryResult{}, fmt.Errorf("database: declared row count %d does not match indexes length %d", rowCount, indexes.Len())
	}
	cols := make([]ProvableResultColumn, numCols)
	for i := range cols {
		nameLen, rest, err := readUint64(buf)
		if err != nil {
			return ProvableQueryResult{}, err
		}
		if uint64(len(rest)) < nameLen {
			return ProvableQueryResult{}, fmt.Errorf("database: truncated column name")
		}
		name := string(rest[:nameLen])
		buf = rest[nameLen:]

		if len(buf) < 1 {
			return ProvableQueryResult{}, fmt.Errorf("database: truncated column type")
		}
		typ := ColumnType(buf[0])
		buf = buf[1:]

		dataLen, rest, err := readUint64(buf)
		if err != nil {
			return ProvableQueryResult{}, err
		}
		if uint64(len(rest)) < dataLen {
			return ProvableQueryResult{}, fmt.Errorf("database: truncated column data")
		}
		cols[i] = ProvableResultColumn{Name: name, Type: typ, Data: append([]byte{}, rest[:dataLen]...)}
		buf = rest[dataLen:]
	}
	if len(buf) != 0 {
		return ProvableQueryResult{}, fmt.Errorf("database: trailing bytes after query result")
	}
	return ProvableQueryResult{Indexes: indexes, Columns: cols}, nil
}

// ToColumns decodes every column back to its typed, in-memory form.
func (r ProvableQueryResult) ToColumns() ([]Column, error) {
	n := r.Indexes.Len()
	out := make([]Column, len(r.Columns))
	for i, rc := range r.Columns {
		col, err := DecodeColumn(rc, n)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

// ToScalars decodes every column and embeds it as Scalars, in field order,
// the representation the verifier needs to recompute the result MLE
// evaluation from the transmitted result.
func (r ProvableQueryResult) ToScalars() ([][]scalar.Scalar, error) {
	cols, err := r.ToColumns()
	if err != nil {
		return nil, err
	}
	out := make([][]scalar.Scalar, len(cols))
	for i, col := range cols {
		out[i] = col.ToScalars()
	}
	return out, nil
}
