// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package database declares the catalog-facing data model the proof core
// operates over: column references and types, the accessor contracts a
// catalog must satisfy, the compact verifiable result encoding, and the
// index set describing which rows of a plan's output made it into the
// result.
package database

import (
	"fmt"

	"github.com/luxfi/sqlproof/scalar"
)

// ColumnType tags the wire representation and Scalar embedding of a column.
type ColumnType uint8

const (
	// BigInt columns are signed 64-bit integers.
	BigInt ColumnType = iota
	// Boolean columns store 0/1.
	Boolean
	// VarChar columns store UTF-8 text.
	VarChar
)

func (t ColumnType) String() string {
	switch t {
	case BigInt:
		return "BIGINT"
	case Boolean:
		return "BOOLEAN"
	case VarChar:
		return "VARCHAR"
	default:
		return fmt.Sprintf("ColumnType(%d)", uint8(t))
	}
}

// TableRef identifies a source table within a namespace.
type TableRef struct {
	Namespace string
	Table     string
}

func (t TableRef) String() string {
	return t.Namespace + "." + t.Table
}

// ColumnRef identifies a single column of a source table.
type ColumnRef struct {
	Namespace string
	Table     string
	Column    string
	Type      ColumnType
}

func (c ColumnRef) TableRef() TableRef {
	return TableRef{Namespace: c.Namespace, Table: c.Table}
}

func (c ColumnRef) String() string {
	return fmt.Sprintf("%s.%s.%s:%s", c.Namespace, c.Table, c.Column, c.Type)
}

// ColumnField names a result column and its declared type, forming the
// plan's result schema.
type ColumnField struct {
	Name string
	Type ColumnType
}

// Column is a tagged union over the concrete, in-memory representation of
// one column's values. Exactly one of the slices is populated, selected by
// Type; all are addressed by the same row index.
type Column struct {
	Type    ColumnType
	Ints    []int64
	Bools   []bool
	Strings []string
}

// NewBigIntColumn wraps a slice of signed integers.
func NewBigIntColumn(values []int64) Column {
	return Column{Type: BigInt, Ints: values}
}

// NewBooleanColumn wraps a slice of booleans.
func NewBooleanColumn(values []bool) Column {
	return Column{Type: Boolean, Bools: values}
}

// NewVarCharColumn wraps a slice of strings.
func NewVarCharColumn(values []string) Column {
	return Column{Type: VarChar, Strings: values}
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	switch c.Type {
	case BigInt:
		return len(c.Ints)
	case Boolean:
		return len(c.Bools)
	case VarChar:
		return len(c.Strings)
	default:
		return 0
	}
}

// ToScalars embeds the column's values as field elements, the
// representation every MLE and sumcheck subpolynomial operates over.
func (c Column) ToScalars() []scalar.Scalar {
	out := make([]scalar.Scalar, c.Len())
	switch c.Type {
	case BigInt:
		for i, v := range c.Ints {
			out[i] = scalar.FromInt64(v)
		}
	case Boolean:
		for i, v := range c.Bools {
			out[i] = scalar.FromBool(v)
		}
	case VarChar:
		for i, v := range c.Strings {
			out[i] = scalar.FromBytesReduced([]byte(v))
		}
	}
	return out
}

// Select returns a new Column containing only the rows named by indices (in
// the order given), used to project a full-length column down to the rows
// a plan chose for its result.
func (c Column) Select(indices []uint64) Column {
	switch c.Type {
	case BigInt:
		out := make([]int64, len(indices))
		for i, idx := range indices {
			out[i] = c.Ints[idx]
		}
		return NewBigIntColumn(out)
	case Boolean:
		out := make([]bool, len(indices))
		for i, idx := range indices {
			out[i] = c.Bools[idx]
		}
		return NewBooleanColumn(out)
	case VarChar:
		out := make([]string, len(indices))
		for i, idx := range indices {
			out[i] = c.Strings[idx]
		}
		return NewVarCharColumn(out)
	default:
		return Column{}
	}
}
