// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import (
	"fmt"
	"sync"

	"github.com/luxfi/sqlproof/commitment"
)

// MemoryAccessor is an in-memory DataAccessor and CommitmentAccessor backed
// by maps guarded by a single mutex, the pattern the verifier's in-memory
// registries (verifying keys, nullifiers, commitments) follow.
type MemoryAccessor struct {
	mu          sync.Mutex
	tables      map[TableRef]uint64
	columns     map[ColumnRef]Column
	commitments map[commitKey]commitment.Commitment
	backend     commitment.Backend
}

// commitKey identifies a cached commitment by both the column and the
// generator offset it was committed at: the same column committed at two
// different offsets produces two different commitments.
type commitKey struct {
	column ColumnRef
	offset uint64
}

var (
	_ DataAccessor       = (*MemoryAccessor)(nil)
	_ CommitmentAccessor = (*MemoryAccessor)(nil)
)

// NewMemoryAccessor builds an empty accessor that computes commitments with
// backend when asked for one it has not cached.
func NewMemoryAccessor(backend commitment.Backend) *MemoryAccessor {
	return &MemoryAccessor{
		tables:      make(map[TableRef]uint64),
		columns:     make(map[ColumnRef]Column),
		commitments: make(map[commitKey]commitment.Commitment),
		backend:     backend,
	}
}

// PutTable registers table as having length rows.
func (a *MemoryAccessor) PutTable(table TableRef, length uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tables[table] = length
}

// PutColumn registers the full contents of column, and invalidates any
// cached commitments for it at every offset.
func (a *MemoryAccessor) PutColumn(column ColumnRef, data Column) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.columns[column] = data
	for key := range a.commitments {
		if key.column == column {
			delete(a.commitments, key)
		}
	}
}

// TableLength implements MetadataAccessor.
func (a *MemoryAccessor) TableLength(table TableRef) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.tables[table]
	if !ok {
		return 0, fmt.Errorf("database: unknown table %s", table)
	}
	return n, nil
}

// ColumnType implements MetadataAccessor.
func (a *MemoryAccessor) ColumnType(column ColumnRef) (ColumnType, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	col, ok := a.columns[column]
	if !ok {
		return 0, fmt.Errorf("database: unknown column %s", column)
	}
	return col.Type, nil
}

// ColumnData implements DataAccessor.
func (a *MemoryAccessor) ColumnData(column ColumnRef) (Column, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	col, ok := a.columns[column]
	if !ok {
		return Column{}, fmt.Errorf("database: unknown column %s", column)
	}
	return col, nil
}

// ColumnCommitment implements CommitmentAccessor, computing and caching the
// commitment on first request for a given (column, offset) pair.
func (a *MemoryAccessor) ColumnCommitment(column ColumnRef, offset uint64) (commitment.Commitment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := commitKey{column: column, offset: offset}
	if c, ok := a.commitments[key]; ok {
		return c, nil
	}
	col, ok := a.columns[column]
	if !ok {
		return nil, fmt.Errorf("database: unknown column %s", column)
	}
	c := a.backend.Commit(col.ToScalars(), offset)
	a.commitments[key] = c
	return c, nil
}
