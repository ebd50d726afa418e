// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import "github.com/luxfi/sqlproof/database"

// ResultBuilder accumulates a plan's public result — the row indexes and
// the columns selected at those indexes — before any post-result
// challenge is sampled, preserving the Fiat–Shamir two-phase discipline:
// the result must bind the transcript before any randomness derived from
// it is consumed.
type ResultBuilder struct {
	tableLength         uint64
	indexes             *database.Indexes
	columns             []database.Column
	requestedChallenges int
}

// NewResultBuilder starts a result pass for a plan of the given evaluated
// length.
func NewResultBuilder(tableLength uint64) *ResultBuilder {
	return &ResultBuilder{tableLength: tableLength}
}

// TableLength returns the plan-declared length, for sizing temporary
// columns.
func (b *ResultBuilder) TableLength() uint64 { return b.tableLength }

// SetResultIndexes records which rows of the plan's evaluated length are
// present in the result. Must be called exactly once.
func (b *ResultBuilder) SetResultIndexes(indexes database.Indexes) error {
	if b.indexes != nil {
		return newError(StructuralMismatch, "result indexes already set")
	}
	if err := indexes.Validate(b.tableLength); err != nil {
		return wrapError(StructuralMismatch, err, "invalid result indexes")
	}
	b.indexes = &indexes
	return nil
}

// ProduceResultColumn appends the next result column, in schema order. Its
// length must equal the result indexes' length.
func (b *ResultBuilder) ProduceResultColumn(col database.Column) error {
	if b.indexes == nil {
		return newError(StructuralMismatch, "result indexes must be set before producing columns")
	}
	if uint64(col.Len()) != b.indexes.Len() {
		return newError(StructuralMismatch, "result column %d has %d rows, expected %d", len(b.columns), col.Len(), b.indexes.Len())
	}
	b.columns = append(b.columns, col)
	return nil
}

// RequestPostResultChallenges declares that k more Fiat–Shamir scalars
// will be sampled once the transcript has absorbed the result.
func (b *ResultBuilder) RequestPostResultChallenges(k int) {
	b.requestedChallenges += k
}

// RequestedChallenges returns the total post-result challenges requested
// so far.
func (b *ResultBuilder) RequestedChallenges() int { return b.requestedChallenges }

// Indexes returns the result indexes, or nil if not yet set.
func (b *ResultBuilder) Indexes() *database.Indexes { return b.indexes }

// Columns returns the produced result columns so far.
func (b *ResultBuilder) Columns() []database.Column { return b.columns }

// Finalize validates the accumulated result against schema and builds the
// wire-ready ProvableQueryResult.
func (b *ResultBuilder) Finalize(schema []database.ColumnField) (database.ProvableQueryResult, error) {
	if b.indexes == nil {
		return database.ProvableQueryResult{}, newError(StructuralMismatch, "result indexes were never set")
	}
	if len(b.columns) != len(schema) {
		return database.ProvableQueryResult{}, newError(StructuralMismatch, "produced %d result columns, schema declares %d", len(b.columns), len(schema))
	}
	result, err := database.NewProvableQueryResult(*b.indexes, schema, b.columns)
	if err != nil {
		return database.ProvableQueryResult{}, wrapError(StructuralMismatch, err, "finalizing result")
	}
	return result, nil
}
