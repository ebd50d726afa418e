// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"github.com/luxfi/sqlproof/commitment"
	"github.com/luxfi/sqlproof/database"
	"github.com/luxfi/sqlproof/internal/scratch"
	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/sumcheck"
	"github.com/luxfi/sqlproof/transcript"
)

const transcriptDomain = "sqlproof/query-proof/v1"

// QueryProof is the non-interactive proof a Prove call emits:
// the intermediate column commitments, the sum-check transcript, the
// claimed MLE evaluations at the sum-check point (in result, anchored,
// intermediate order), and the commitment scheme's evaluation proof.
type QueryProof struct {
	Commitments      []commitment.Commitment
	SumcheckProof    sumcheck.Proof
	ResultEvals      []scalar.Scalar
	AnchoredEvals    []scalar.Scalar
	IntermediateEvals []scalar.Scalar
	EvaluationProof  EvaluationProof
}

// QueryData is the successful outcome of verification: the transcript's
// final digest and the decoded result table. On the empty-result fast path
// no transcript digest is taken and VerificationHash is all zeros.
type QueryData struct {
	VerificationHash [32]byte
	Table            []database.Column
}

// Prove executes the full prove lifecycle (spec §4.9) for plan against
// accessor at the given commitment backend, returning the public result
// and, unless the result is empty, a QueryProof.
func Prove(plan ProverEvaluate, accessor database.DataAccessor, backend commitment.Backend) (database.ProvableQueryResult, *QueryProof, error) {
	length, err := plan.Length(accessor)
	if err != nil {
		return database.ProvableQueryResult{}, nil, wrapError(AccessorError, err, "plan length")
	}
	offset, err := plan.Offset(accessor)
	if err != nil {
		return database.ProvableQueryResult{}, nil, wrapError(AccessorError, err, "plan offset")
	}

	t := transcript.New(transcriptDomain)
	absorbFingerprint(t, plan, offset)

	cb := NewCountBuilder(length)
	if err := plan.Count(cb, accessor); err != nil {
		return database.ProvableQueryResult{}, nil, wrapError(StructuralMismatch, err, "count pass")
	}
	counts, err := cb.Finalize()
	if err != nil {
		return database.ProvableQueryResult{}, nil, err
	}

	arena := scratch.New()
	rb := NewResultBuilder(length)
	if err := plan.ResultEvaluate(rb, arena, accessor); err != nil {
		return database.ProvableQueryResult{}, nil, wrapError(AccessorError, err, "result evaluation")
	}
	result, err := rb.Finalize(plan.ResultSchema())
	if err != nil {
		return database.ProvableQueryResult{}, nil, err
	}

	if result.Indexes.Len() == 0 {
		return result, nil, nil
	}

	resultBytes, err := result.MarshalBinary()
	if err != nil {
		return database.ProvableQueryResult{}, nil, wrapError(DecodeError, err, "serializing result")
	}
	t.AppendMessage("result", resultBytes)

	challenges := make([]scalar.Scalar, rb.RequestedChallenges())
	for i := range challenges {
		challenges[i] = t.ChallengeScalar("post-result-challenge")
	}

	pb := NewProofBuilder(length, challenges)
	if err := plan.ProverEvaluate(pb, arena, accessor); err != nil {
		return database.ProvableQueryResult{}, nil, wrapError(AccessorError, err, "prover evaluation")
	}
	if err := checkObservedCounts(counts, rb, pb); err != nil {
		return database.ProvableQueryResult{}, nil, err
	}

	intermediateCommitments := make([]commitment.Commitment, len(pb.IntermediateMLEs()))
	for i, mle := range pb.IntermediateMLEs() {
		intermediateCommitments[i] = backend.Commit(mle, offset)
	}
	for i, c := range intermediateCommitments {
		t.AppendMessage("intermediate-commitment", indexed(i, c.Bytes()))
	}

	nu := counts.NU()
	n := uint64(1) << uint(nu)
	rho := drawPoint(t, "zerocheck-rho", nu)
	identityMLE := sumcheck.EqEvaluations(rho)

	rs := sumcheck.DrawRandomScalars(t, "subpolynomial-challenge", len(pb.Subpolynomials()))

	builder := sumcheck.NewCompositePolynomialBuilder(nu)
	for i, sub := range pb.Subpolynomials() {
		builder.AddSubpolynomial(sub, rs.Subpolynomial[i], identityMLE)
	}
	composite := builder.Build()

	sumcheckProof, point, _ := sumcheck.Prove(t, composite)

	resultEvals := make([]scalar.Scalar, len(result.Columns))
	for i, rc := range result.Columns {
		col, derr := database.DecodeColumn(rc, result.Indexes.Len())
		if derr != nil {
			return database.ProvableQueryResult{}, nil, wrapError(DecodeError, derr, "decoding produced result column")
		}
		expanded := ExpandResultColumn(result.Indexes, col, n)
		resultEvals[i] = sumcheck.EvaluateMLE(expanded, point)
	}
	anchoredEvals := make([]scalar.Scalar, len(pb.AnchoredMLEs()))
	for i, mle := range pb.AnchoredMLEs() {
		anchoredEvals[i] = sumcheck.EvaluateMLE(mle, point)
	}
	intermediateEvals := make([]scalar.Scalar, len(pb.IntermediateMLEs()))
	for i, mle := range pb.IntermediateMLEs() {
		intermediateEvals[i] = sumcheck.EvaluateMLE(mle, point)
	}
	for _, e := range resultEvals {
		t.AppendScalar("result-mle-eval", e)
	}
	for _, e := range anchoredEvals {
		t.AppendScalar("anchored-mle-eval", e)
	}
	for _, e := range intermediateEvals {
		t.AppendScalar("intermediate-mle-eval", e)
	}

	evalProof := ProveEvaluation(t, backend, pb.AnchoredMLEs(), pb.IntermediateMLEs(), anchoredEvals, intermediateEvals, point, offset)

	proof := &QueryProof{
		Commitments:       intermediateCommitments,
		SumcheckProof:     sumcheckProof,
		ResultEvals:       resultEvals,
		AnchoredEvals:     anchoredEvals,
		IntermediateEvals: intermediateEvals,
		EvaluationProof:   evalProof,
	}
	return result, proof, nil
}

// Verify executes the full verify lifecycle (spec §4.9) for plan and
// proof against result, returning the verified QueryData on success.
func Verify(plan ProverEvaluate, result database.ProvableQueryResult, proof *QueryProof, accessor database.CommitmentAccessor, backend commitment.Backend) (QueryData, error) {
	length, err := plan.Length(accessor)
	if err != nil {
		return QueryData{}, wrapError(AccessorError, err, "plan length")
	}
	offset, err := plan.Offset(accessor)
	if err != nil {
		return QueryData{}, wrapError(AccessorError, err, "plan offset")
	}

	t := transcript.New(transcriptDomain)
	absorbFingerprint(t, plan, offset)

	cb := NewCountBuilder(length)
	if err := plan.Count(cb, accessor); err != nil {
		return QueryData{}, wrapError(StructuralMismatch, err, "count pass")
	}
	counts, err := cb.Finalize()
	if err != nil {
		return QueryData{}, err
	}

	if result.Indexes.Len() == 0 {
		if proof != nil {
			return QueryData{}, newError(StructuralMismatch, "empty result must not carry a proof")
		}
		table := make([]database.Column, len(plan.ResultSchema()))
		for i, field := range plan.ResultSchema() {
			table[i] = emptyColumn(field.Type)
		}
		var digest [32]byte
		return QueryData{VerificationHash: digest, Table: table}, nil
	}
	if proof == nil {
		return QueryData{}, newError(StructuralMismatch, "non-empty result requires a proof")
	}

	resultBytes, err := result.MarshalBinary()
	if err != nil {
		return QueryData{}, wrapError(DecodeError, err, "serializing result")
	}
	t.AppendMessage("result", resultBytes)

	challenges := make([]scalar.Scalar, counts.PostResultChallenges)
	for i := range challenges {
		challenges[i] = t.ChallengeScalar("post-result-challenge")
	}

	if len(proof.Commitments) != counts.IntermediateMLEs {
		return QueryData{}, newError(StructuralMismatch, "proof declares %d intermediate commitments, plan counted %d", len(proof.Commitments), counts.IntermediateMLEs)
	}
	for i, c := range proof.Commitments {
		t.AppendMessage("intermediate-commitment", indexed(i, c.Bytes()))
	}

	nu := counts.NU()
	rho := drawPoint(t, "zerocheck-rho", nu)

	rs := sumcheck.DrawRandomScalars(t, "subpolynomial-challenge", counts.Subpolynomials)

	point, claimedEval, err := sumcheck.Verify(t, nu, counts.DegreeBound, scalar.Zero(), proof.SumcheckProof)
	if err != nil {
		return QueryData{}, wrapError(SumcheckFailure, err, "sumcheck verification")
	}

	if len(proof.ResultEvals) != len(result.Columns) {
		return QueryData{}, newError(StructuralMismatch, "proof declares %d result evaluations, result has %d columns", len(proof.ResultEvals), len(result.Columns))
	}
	if len(proof.AnchoredEvals) != counts.AnchoredMLEs {
		return QueryData{}, newError(StructuralMismatch, "proof declares %d anchored evaluations, plan counted %d", len(proof.AnchoredEvals), counts.AnchoredMLEs)
	}
	if len(proof.IntermediateEvals) != counts.IntermediateMLEs {
		return QueryData{}, newError(StructuralMismatch, "proof declares %d intermediate evaluations, plan counted %d", len(proof.IntermediateEvals), counts.IntermediateMLEs)
	}

	mle := sumcheck.MLEEvaluations{Rho: rho, Point: point}
	vb := NewVerificationBuilder(proof.ResultEvals, proof.AnchoredEvals, proof.IntermediateEvals, proof.Commitments, challenges, mle)
	resultPtr := result
	if err := plan.VerifierEvaluate(vb, accessor, &resultPtr); err != nil {
		return QueryData{}, wrapError(AccessorError, err, "verifier evaluation")
	}
	if err := checkVerifierObservedCounts(counts, vb); err != nil {
		return QueryData{}, err
	}

	recomputed := scalar.Zero()
	for i, eval := range vb.SubpolynomialEvaluations() {
		recomputed = scalar.Add(recomputed, scalar.Mul(eval, rs.Subpolynomial[i]))
	}
	if !scalar.Equal(recomputed, claimedEval) {
		return QueryData{}, newError(EvaluationMismatch, "recomputed composite evaluation disagrees with sumcheck's claimed value")
	}

	for _, e := range proof.ResultEvals {
		t.AppendScalar("result-mle-eval", e)
	}
	for _, e := range proof.AnchoredEvals {
		t.AppendScalar("anchored-mle-eval", e)
	}
	for _, e := range proof.IntermediateEvals {
		t.AppendScalar("intermediate-mle-eval", e)
	}

	if err := VerifyEvaluation(t, backend, vb.AnchoredCommitments(), proof.Commitments, proof.AnchoredEvals, proof.IntermediateEvals, point, offset, proof.EvaluationProof); err != nil {
		return QueryData{}, wrapError(InnerProductFailure, err, "evaluation proof verification")
	}

	table, err := result.ToColumns()
	if err != nil {
		return QueryData{}, wrapError(DecodeError, err, "decoding result")
	}

	digestBytes := t.ChallengeBytes("verification-hash", 32)
	var digest [32]byte
	copy(digest[:], digestBytes)
	return QueryData{VerificationHash: digest, Table: table}, nil
}

func checkObservedCounts(counts Counts, rb *ResultBuilder, pb *ProofBuilder) error {
	if len(rb.Columns()) != counts.ResultColumns {
		return newError(StructuralMismatch, "plan produced %d result columns, counted %d", len(rb.Columns()), counts.ResultColumns)
	}
	if rb.RequestedChallenges() != counts.PostResultChallenges {
		return newError(StructuralMismatch, "plan requested %d post-result challenges, counted %d", rb.RequestedChallenges(), counts.PostResultChallenges)
	}
	if len(pb.AnchoredMLEs()) != counts.AnchoredMLEs {
		return newError(StructuralMismatch, "plan produced %d anchored MLEs, counted %d", len(pb.AnchoredMLEs()), counts.AnchoredMLEs)
	}
	if len(pb.IntermediateMLEs()) != counts.IntermediateMLEs {
		return newError(StructuralMismatch, "plan produced %d intermediate MLEs, counted %d", len(pb.IntermediateMLEs()), counts.IntermediateMLEs)
	}
	if len(pb.Subpolynomials()) != counts.Subpolynomials {
		return newError(StructuralMismatch, "plan produced %d subpolynomials, counted %d", len(pb.Subpolynomials()), counts.Subpolynomials)
	}
	maxDegree := 0
	for _, sub := range pb.Subpolynomials() {
		if d := sub.Degree(); d > maxDegree {
			maxDegree = d
		}
	}
	if maxDegree > counts.DegreeBound {
		return newError(StructuralMismatch, "plan produced degree %d, counted bound %d", maxDegree, counts.DegreeBound)
	}
	return nil
}

func checkVerifierObservedCounts(counts Counts, vb *VerificationBuilder) error {
	if len(vb.SubpolynomialEvaluations()) != counts.Subpolynomials {
		return newError(StructuralMismatch, "verifier produced %d subpolynomial evaluations, counted %d", len(vb.SubpolynomialEvaluations()), counts.Subpolynomials)
	}
	return nil
}

func absorbFingerprint(t *transcript.Transcript, plan ExecutionPlan, offset uint64) {
	for _, field := range plan.ResultSchema() {
		t.AppendMessage("schema-field-name", []byte(field.Name))
		t.AppendUint64("schema-field-type", uint64(field.Type))
	}
	t.AppendUint64("offset", offset)
}

func drawPoint(t *transcript.Transcript, label string, nu int) []scalar.Scalar {
	point := make([]scalar.Scalar, nu)
	for i := range point {
		point[i] = t.ChallengeScalar(label)
	}
	return point
}

func indexed(i int, data []byte) []byte {
	return append([]byte{byte(i), byte(i >> 8), byte(i >> 16), byte(i >> 24)}, data...)
}

func emptyColumn(t database.ColumnType) database.Column {
	switch t {
	case database.BigInt:
		return database.NewBigIntColumn(nil)
	case database.Boolean:
		return database.NewBooleanColumn(nil)
	case database.VarChar:
		return database.NewVarCharColumn(nil)
	default:
		return database.Column{}
	}
}

// ExpandResultColumn places col's values at their corresponding row
// indices within a length-n table, zero elsewhere, so a result column
// (sent at only its selected rows) can be evaluated as an MLE over the
// same hypercube as the plan's other columns.
func ExpandResultColumn(indexes database.Indexes, col database.Column, n uint64) []scalar.Scalar {
	out := make([]scalar.Scalar, n)
	for i := range out {
		out[i] = scalar.Zero()
	}
	values := col.ToScalars()
	for i, row := range indexes.Materialize() {
		if row < n {
			out[row] = values[i]
		}
	}
	return out
}
