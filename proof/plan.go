// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"github.com/luxfi/sqlproof/database"
	"github.com/luxfi/sqlproof/internal/scratch"
)

// ExecutionPlan is the shape-declaring half of a plan: it knows its own
// size and schema and how to fill in the public result, all without
// touching any prover witness or challenge.
type ExecutionPlan interface {
	// Count registers this plan's resource counts (degree bound, column
	// counts, MLE counts, challenge count) against accessor's metadata.
	Count(cb *CountBuilder, accessor database.MetadataAccessor) error
	// Length returns the plan's evaluated row count.
	Length(accessor database.MetadataAccessor) (uint64, error)
	// Offset returns the plan's generator offset for commitment alignment.
	Offset(accessor database.MetadataAccessor) (uint64, error)
	// ResultSchema names and types the plan's result columns, in order.
	ResultSchema() []database.ColumnField
	// ColumnReferences names every source column this plan reads; an
	// optional hint, not consulted by the verifier path.
	ColumnReferences() []database.ColumnRef
	// ResultEvaluate fills rb with the plan's public result indexes and
	// columns, and may request post-result challenges.
	ResultEvaluate(rb *ResultBuilder, arena *scratch.Arena, accessor database.DataAccessor) error
}

// ProverEvaluate extends ExecutionPlan with the witness-producing and
// witness-consuming halves of a plan, implemented by every plan that can
// actually be proved and verified (as opposed to planned/counted only).
type ProverEvaluate interface {
	ExecutionPlan
	// ProverEvaluate emits this plan's anchored/intermediate MLEs and
	// sumcheck subpolynomials, consuming post-result challenges from pb as
	// needed.
	ProverEvaluate(pb *ProofBuilder, arena *scratch.Arena, accessor database.DataAccessor) error
	// VerifierEvaluate consumes MLE evaluations from vb in the same order
	// ProverEvaluate produced them, and emits subpolynomial evaluations at
	// the sumcheck point. Verify always passes the transmitted result; on
	// the empty-result fast path it returns without calling
	// VerifierEvaluate at all.
	VerifierEvaluate(vb *VerificationBuilder, accessor database.CommitmentAccessor, result *database.ProvableQueryResult) error
}
