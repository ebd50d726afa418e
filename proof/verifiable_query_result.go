// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"github.com/luxfi/sqlproof/commitment"
	"github.com/luxfi/sqlproof/database"
)

// VerifiableQueryResult pairs a query's public result with the proof that
// certifies it, as it would cross the wire from prover to verifier. A nil
// Proof is only valid alongside an empty Result (spec §4.10's fast path).
type VerifiableQueryResult struct {
	Result database.ProvableQueryResult
	Proof  *QueryProof
}

// ProveQueryResult runs the full prove lifecycle for plan and wraps its outcome as a
// VerifiableQueryResult.
func ProveQueryResult(plan ProverEvaluate, accessor database.DataAccessor, backend commitment.Backend) (VerifiableQueryResult, error) {
	result, proof, err := Prove(plan, accessor, backend)
	if err != nil {
		return VerifiableQueryResult{}, err
	}
	return VerifiableQueryResult{Result: result, Proof: proof}, nil
}

// Verify checks v against plan, returning the verified QueryData on success.
func (v VerifiableQueryResult) Verify(plan ProverEvaluate, accessor database.CommitmentAccessor, backend commitment.Backend) (QueryData, error) {
	return Verify(plan, v.Result, v.Proof, accessor, backend)
}
