// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import "github.com/luxfi/sqlproof/commitment"

// MetadataAccessor answers the schema-level questions a plan needs before it
// can count anything: a table's row count and a column's declared type.
type MetadataAccessor interface {
	// TableLength returns the number of rows backing table.
	TableLength(table TableRef) (uint64, error)
	// ColumnType returns the declared type of a column.
	ColumnType(column ColumnRef) (ColumnType, error)
}

// DataAccessor supplies the concrete column contents a plan's result and
// prover passes need.
type DataAccessor interface {
	MetadataAccessor
	// ColumnData returns the full column named by column, across every row
	// of its backing table.
	ColumnData(column ColumnRef) (Column, error)
}

// CommitmentAccessor supplies the anchored commitments a verifier needs:
// the commitment to a named column at a given generator offset, computed
// once (e.g. at ingest time) and reused across every query that touches it.
type CommitmentAccessor interface {
	MetadataAccessor
	// ColumnCommitment returns the commitment to column, anchored at
	// offset.
	ColumnCommitment(column ColumnRef, offset uint64) (commitment.Commitment, error)
}
