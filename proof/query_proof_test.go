// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sqlproof/database"
	"github.com/luxfi/sqlproof/internal/scratch"
	"github.com/luxfi/sqlproof/ipacommit"
	"github.com/luxfi/sqlproof/proof"
	"github.com/luxfi/sqlproof/scalar"
	"github.com/luxfi/sqlproof/sumcheck"
)

// booleanPlan returns a boolean column verbatim as the query result and
// certifies (via two Identity subpolynomials routed through an
// intermediate b-1 MLE) that every entry of the underlying column is
// genuinely 0 or 1. No subpolynomial ties the result column to b: the
// verifier side never consumes the result MLE.
type booleanPlan struct {
	table  database.TableRef
	column database.ColumnRef
	offset uint64
}

var _ proof.ProverEvaluate = booleanPlan{}

func (p booleanPlan) Count(cb *proof.CountBuilder, accessor database.MetadataAccessor) error {
	cb.CountResultColumns(1)
	cb.CountAnchoredMLEs(1)
	cb.CountIntermediateMLEs(1)
	cb.CountSubpolynomials(2)
	cb.CountDegree(2)
	cb.CountDegree(3)
	cb.CountPostResultChallenges(1)
	return nil
}

func (p booleanPlan) Length(accessor database.MetadataAccessor) (uint64, error) {
	return accessor.TableLength(p.table)
}

func (p booleanPlan) Offset(accessor database.MetadataAccessor) (uint64, error) {
	return p.offset, nil
}

func (p booleanPlan) ResultSchema() []database.ColumnField {
	return []database.ColumnField{{Name: p.column.Column, Type: database.Boolean}}
}

func (p booleanPlan) ColumnReferences() []database.ColumnRef {
	return []database.ColumnRef{p.column}
}

func (p booleanPlan) ResultEvaluate(rb *proof.ResultBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	col, err := accessor.ColumnData(p.column)
	if err != nil {
		return err
	}
	if err := rb.SetResultIndexes(database.NewDenseIndexes(0, uint64(col.Len()))); err != nil {
		return err
	}
	if err := rb.ProduceResultColumn(col); err != nil {
		return err
	}
	rb.RequestPostResultChallenges(1)
	return nil
}

func (p booleanPlan) ProverEvaluate(pb *proof.ProofBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	col, err := accessor.ColumnData(p.column)
	if err != nil {
		return err
	}
	b := arena.AllocCopy(col.ToScalars())
	pb.ProduceAnchoredMLE(b)

	bMinusOne := arena.Alloc(len(b))
	for i := range b {
		bMinusOne[i] = scalar.Sub(b[i], scalar.One())
	}
	pb.ProduceIntermediateMLE(bMinusOne)

	one := arena.Alloc(len(b))
	for i := range one {
		one[i] = scalar.One()
	}

	// Identity: bMinusOne - b + 1 == 0, i.e. bMinusOne == b-1.
	pb.ProduceSumcheckSubpolynomial(sumcheck.Identity, []sumcheck.Term{
		{Coefficient: scalar.One(), Factors: [][]scalar.Scalar{bMinusOne}},
		{Coefficient: scalar.Neg(scalar.One()), Factors: [][]scalar.Scalar{b}},
		{Coefficient: scalar.One(), Factors: [][]scalar.Scalar{one}},
	})
	// Identity: b * bMinusOne == 0, i.e. b is genuinely boolean.
	pb.ProduceSumcheckSubpolynomial(sumcheck.Identity, []sumcheck.Term{
		{Coefficient: scalar.One(), Factors: [][]scalar.Scalar{b, bMinusOne}},
	})

	pb.ConsumePostResultChallenge()
	return nil
}

func (p booleanPlan) VerifierEvaluate(vb *proof.VerificationBuilder, accessor database.CommitmentAccessor, result *database.ProvableQueryResult) error {
	expected, err := accessor.ColumnCommitment(p.column, p.offset)
	if err != nil {
		return err
	}
	bEval, err := vb.ConsumeAnchoredMLE(expected)
	if err != nil {
		return err
	}
	bMinusOneEval, _, err := vb.ConsumeIntermediateMLE()
	if err != nil {
		return err
	}

	linking := scalar.Add(scalar.Sub(bMinusOneEval, bEval), scalar.One())
	vb.ProduceSumcheckSubpolynomialEvaluation(sumcheck.Identity, linking)

	booleanness := scalar.Mul(bEval, bMinusOneEval)
	vb.ProduceSumcheckSubpolynomialEvaluation(sumcheck.Identity, booleanness)

	if _, err := vb.ConsumePostResultChallenge(); err != nil {
		return err
	}
	return nil
}

func TestQueryProofRoundTrip(t *testing.T) {
	backend := ipacommit.NewBackend("query-proof-round-trip")
	accessor := database.NewMemoryAccessor(backend)

	table := database.TableRef{Namespace: "public", Table: "flags"}
	column := database.ColumnRef{Namespace: "public", Table: "flags", Column: "active", Type: database.Boolean}

	values := []bool{true, false, true, true}
	accessor.PutTable(table, uint64(len(values)))
	accessor.PutColumn(column, database.NewBooleanColumn(values))

	plan := booleanPlan{table: table, column: column, offset: 0}

	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)
	require.NotNil(t, queryProof)
	require.Equal(t, uint64(len(values)), result.Indexes.Len())

	data, err := proof.Verify(plan, result, queryProof, accessor, backend)
	require.NoError(t, err)
	require.Len(t, data.Table, 1)
	require.Equal(t, values, data.Table[0].Bools)
}

func TestQueryProofTamperedEvaluationFails(t *testing.T) {
	backend := ipacommit.NewBackend("query-proof-tamper")
	accessor := database.NewMemoryAccessor(backend)

	table := database.TableRef{Namespace: "public", Table: "flags"}
	column := database.ColumnRef{Namespace: "public", Table: "flags", Column: "active", Type: database.Boolean}

	values := []bool{true, false, true, true}
	accessor.PutTable(table, uint64(len(values)))
	accessor.PutColumn(column, database.NewBooleanColumn(values))

	plan := booleanPlan{table: table, column: column, offset: 0}

	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	queryProof.AnchoredEvals[0] = scalar.Add(queryProof.AnchoredEvals[0], scalar.One())

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
}

func TestQueryProofEmptyResultFastPath(t *testing.T) {
	backend := ipacommit.NewBackend("query-proof-empty")
	accessor := database.NewMemoryAccessor(backend)

	table := database.TableRef{Namespace: "public", Table: "flags"}
	column := database.ColumnRef{Namespace: "public", Table: "flags", Column: "active", Type: database.Boolean}

	accessor.PutTable(table, 0)
	accessor.PutColumn(column, database.NewBooleanColumn(nil))

	plan := booleanPlan{table: table, column: column, offset: 0}

	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)
	require.Nil(t, queryProof)
	require.Equal(t, uint64(0), result.Indexes.Len())

	data, err := proof.Verify(plan, result, queryProof, accessor, backend)
	require.NoError(t, err)
	require.Len(t, data.Table, 1)
	require.Equal(t, 0, data.Table[0].Len())
}

// trivialPlan returns a one-row result column holding fillValue at row 0
// and proves one Identity subpolynomial over a witness column filled with
// fillValue across the whole table, claiming claimedEvaluation as that
// subpolynomial's value at the sumcheck point. anchoredMLECount
// lets a test declare more anchored MLEs during Count than ProverEvaluate
// ever produces, to exercise the declared/observed count mismatch.
type trivialPlan struct {
	length            uint64
	offset            uint64
	fillValue         int64
	claimedEvaluation int64
	anchoredMLECount  int
}

var _ proof.ProverEvaluate = trivialPlan{}

func (p trivialPlan) Count(cb *proof.CountBuilder, accessor database.MetadataAccessor) error {
	cb.CountDegree(2)
	cb.CountResultColumns(1)
	cb.CountSubpolynomials(1)
	cb.CountAnchoredMLEs(p.anchoredMLECount)
	return nil
}

func (p trivialPlan) Length(accessor database.MetadataAccessor) (uint64, error) {
	return p.length, nil
}

func (p trivialPlan) Offset(accessor database.MetadataAccessor) (uint64, error) {
	return p.offset, nil
}

func (p trivialPlan) ResultSchema() []database.ColumnField {
	return []database.ColumnField{{Name: "a1", Type: database.BigInt}}
}

func (p trivialPlan) ColumnReferences() []database.ColumnRef { return nil }

func (p trivialPlan) ResultEvaluate(rb *proof.ResultBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	if err := rb.SetResultIndexes(database.NewSparseIndexes([]uint64{0})); err != nil {
		return err
	}
	return rb.ProduceResultColumn(database.NewBigIntColumn([]int64{p.fillValue}))
}

func (p trivialPlan) ProverEvaluate(pb *proof.ProofBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	col := arena.Alloc(int(pb.TableLength()))
	fill := scalar.FromInt64(p.fillValue)
	for i := range col {
		col[i] = fill
	}
	pb.ProduceSumcheckSubpolynomial(sumcheck.Identity, []sumcheck.Term{
		{Coefficient: scalar.One(), Factors: [][]scalar.Scalar{col}},
	})
	return nil
}

func (p trivialPlan) VerifierEvaluate(vb *proof.VerificationBuilder, accessor database.CommitmentAccessor, result *database.ProvableQueryResult) error {
	if _, err := vb.ConsumeResultMLE(); err != nil {
		return err
	}
	vb.ProduceSumcheckSubpolynomialEvaluation(sumcheck.Identity, scalar.FromInt64(p.claimedEvaluation))
	return nil
}

// TestTrivialQueryProof_ZeroColumnSucceeds is spec.md §8 scenario S1: a
// trivial all-zero column of varying length verifies successfully and
// produces a non-zero verification hash.
func TestTrivialQueryProof_ZeroColumnSucceeds(t *testing.T) {
	backend := ipacommit.NewBackend("trivial-s1")
	accessor := database.NewMemoryAccessor(backend)

	for n := uint64(1); n <= 4; n++ {
		plan := trivialPlan{length: n}

		result, queryProof, err := proof.Prove(plan, accessor, backend)
		require.NoError(t, err)
		require.NotNil(t, queryProof)

		data, err := proof.Verify(plan, result, queryProof, accessor, backend)
		require.NoError(t, err)
		require.NotEqual(t, [32]byte{}, data.VerificationHash)
		require.Len(t, data.Table, 1)
		require.Equal(t, []int64{0}, data.Table[0].Ints)
	}
}

// TestTrivialQueryProof_OffsetVariationSucceeds is spec.md §8 scenario S2:
// the same trivial plan verifies at both a zero and a non-zero generator
// offset.
func TestTrivialQueryProof_OffsetVariationSucceeds(t *testing.T) {
	backend := ipacommit.NewBackend("trivial-s2")
	accessor := database.NewMemoryAccessor(backend)

	for _, offset := range []uint64{0, 123} {
		plan := trivialPlan{length: 2, offset: offset}

		result, queryProof, err := proof.Prove(plan, accessor, backend)
		require.NoError(t, err)

		_, err = proof.Verify(plan, result, queryProof, accessor, backend)
		require.NoError(t, err)
	}
}

// TestTrivialQueryProof_WrongOffsetFails is spec.md §8 property 3: a proof
// produced for offset d fails to verify against offset d+1.
func TestTrivialQueryProof_WrongOffsetFails(t *testing.T) {
	backend := ipacommit.NewBackend("trivial-wrong-offset")
	accessor := database.NewMemoryAccessor(backend)

	plan := trivialPlan{length: 2, offset: 5}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	wrongOffsetPlan := trivialPlan{length: 2, offset: 6}
	_, err = proof.Verify(wrongOffsetPlan, result, queryProof, accessor, backend)
	require.Error(t, err)
}

// TestTrivialQueryProof_NonZeroColumnFailsSumcheck is spec.md §8 scenario
// S3: a column that is not identically zero makes the zerocheck's
// hypercube sum non-zero, and verification fails with SumcheckFailure.
func TestTrivialQueryProof_NonZeroColumnFailsSumcheck(t *testing.T) {
	backend := ipacommit.NewBackend("trivial-s3")
	accessor := database.NewMemoryAccessor(backend)

	plan := trivialPlan{length: 2, fillValue: 123}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
	var perr *proof.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, proof.SumcheckFailure, perr.Kind)
}

// TestTrivialQueryProof_ClaimedEvaluationMismatchFails covers the sibling
// scenario in original_source's trivial-plan test suite: a correct
// zero-sum sumcheck proof whose plan claims the wrong subpolynomial
// evaluation at the sumcheck point is rejected with EvaluationMismatch.
func TestTrivialQueryProof_ClaimedEvaluationMismatchFails(t *testing.T) {
	backend := ipacommit.NewBackend("trivial-claimed-eval")
	accessor := database.NewMemoryAccessor(backend)

	plan := trivialPlan{length: 2, claimedEvaluation: 123}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
	var perr *proof.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, proof.EvaluationMismatch, perr.Kind)
}

// TestTrivialQueryProof_DeclaredAnchoredCountMismatchFailsToProve is
// spec.md §8 property 5: a plan that declares an anchored MLE during Count
// but never produces one cannot even produce a proof, let alone have it
// verify.
func TestTrivialQueryProof_DeclaredAnchoredCountMismatchFailsToProve(t *testing.T) {
	backend := ipacommit.NewBackend("trivial-count-mismatch")
	accessor := database.NewMemoryAccessor(backend)

	plan := trivialPlan{length: 2, anchoredMLECount: 1}
	_, _, err := proof.Prove(plan, accessor, backend)
	require.Error(t, err)
	var perr *proof.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, proof.StructuralMismatch, perr.Kind)
}

// squarePlan proves res == x*x against a catalog column x, anchoring x via
// a CommitmentAccessor lookup. commitMultiplier scales the commitment the
// verifier expects to match against, letting a test simulate a catalog
// that reports the wrong commitment for x.
type squarePlan struct {
	table            database.TableRef
	column           database.ColumnRef
	res              [2]int64
	commitMultiplier int64
	offset           uint64
}

var _ proof.ProverEvaluate = squarePlan{}

func (p squarePlan) Count(cb *proof.CountBuilder, accessor database.MetadataAccessor) error {
	cb.CountDegree(3)
	cb.CountResultColumns(1)
	cb.CountSubpolynomials(1)
	cb.CountAnchoredMLEs(1)
	return nil
}

func (p squarePlan) Length(accessor database.MetadataAccessor) (uint64, error) {
	return accessor.TableLength(p.table)
}

func (p squarePlan) Offset(accessor database.MetadataAccessor) (uint64, error) {
	return p.offset, nil
}

func (p squarePlan) ResultSchema() []database.ColumnField {
	return []database.ColumnField{{Name: "res", Type: database.BigInt}}
}

func (p squarePlan) ColumnReferences() []database.ColumnRef {
	return []database.ColumnRef{p.column}
}

func (p squarePlan) ResultEvaluate(rb *proof.ResultBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	if err := rb.SetResultIndexes(database.NewDenseIndexes(0, 2)); err != nil {
		return err
	}
	return rb.ProduceResultColumn(database.NewBigIntColumn(p.res[:]))
}

func (p squarePlan) ProverEvaluate(pb *proof.ProofBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	col, err := accessor.ColumnData(p.column)
	if err != nil {
		return err
	}
	x := arena.AllocCopy(col.ToScalars())
	res := arena.Alloc(2)
	res[0] = scalar.FromInt64(p.res[0])
	res[1] = scalar.FromInt64(p.res[1])

	pb.ProduceAnchoredMLE(x)
	// Identity: res - x*x == 0.
	pb.ProduceSumcheckSubpolynomial(sumcheck.Identity, []sumcheck.Term{
		{Coefficient: scalar.One(), Factors: [][]scalar.Scalar{res}},
		{Coefficient: scalar.Neg(scalar.One()), Factors: [][]scalar.Scalar{x, x}},
	})
	return nil
}

func (p squarePlan) VerifierEvaluate(vb *proof.VerificationBuilder, accessor database.CommitmentAccessor, result *database.ProvableQueryResult) error {
	resEval, err := vb.ConsumeResultMLE()
	if err != nil {
		return err
	}
	commit, err := accessor.ColumnCommitment(p.column, p.offset)
	if err != nil {
		return err
	}
	multiplier := scalar.FromInt64(p.commitMultiplier)
	xEval, err := vb.ConsumeAnchoredMLE(commit.ScalarMul(&multiplier))
	if err != nil {
		return err
	}
	vb.ProduceSumcheckSubpolynomialEvaluation(sumcheck.Identity, scalar.Sub(resEval, scalar.Mul(xEval, xEval)))
	return nil
}

func newSquareAccessor(backend *ipacommit.Backend) (database.TableRef, database.ColumnRef, *database.MemoryAccessor) {
	accessor := database.NewMemoryAccessor(backend)
	table := database.TableRef{Namespace: "sxt", Table: "test"}
	column := database.ColumnRef{Namespace: "sxt", Table: "test", Column: "x", Type: database.BigInt}
	accessor.PutTable(table, 2)
	accessor.PutColumn(column, database.NewBigIntColumn([]int64{3, 5}))
	return table, column, accessor
}

// TestSquareQueryProof_AnchoredCommitmentSucceeds is spec.md §8 scenario
// S4: res=x*x verifies at both a zero and a non-zero generator offset.
func TestSquareQueryProof_AnchoredCommitmentSucceeds(t *testing.T) {
	backend := ipacommit.NewBackend("square-s4")
	table, column, accessor := newSquareAccessor(backend)

	for _, offset := range []uint64{0, 123} {
		plan := squarePlan{table: table, column: column, res: [2]int64{9, 25}, commitMultiplier: 1, offset: offset}

		result, queryProof, err := proof.Prove(plan, accessor, backend)
		require.NoError(t, err)

		data, err := proof.Verify(plan, result, queryProof, accessor, backend)
		require.NoError(t, err)
		require.Equal(t, []int64{9, 25}, data.Table[0].Ints)
	}
}

// TestSquareQueryProof_WrongOffsetFails is spec.md §8 property 3 against
// S4's anchored-commitment plan.
func TestSquareQueryProof_WrongOffsetFails(t *testing.T) {
	backend := ipacommit.NewBackend("square-wrong-offset")
	table, column, accessor := newSquareAccessor(backend)

	plan := squarePlan{table: table, column: column, res: [2]int64{9, 25}, commitMultiplier: 1, offset: 5}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	wrongOffsetPlan := squarePlan{table: table, column: column, res: [2]int64{9, 25}, commitMultiplier: 1, offset: 6}
	_, err = proof.Verify(wrongOffsetPlan, result, queryProof, accessor, backend)
	require.Error(t, err)
}

// TestSquareQueryProof_WrongResultFailsAnchoredEquation is spec.md §8
// scenario S4's rejection case: a result column that does not satisfy
// res == x*x fails verification.
func TestSquareQueryProof_WrongResultFailsAnchoredEquation(t *testing.T) {
	backend := ipacommit.NewBackend("square-wrong-result")
	table, column, accessor := newSquareAccessor(backend)

	plan := squarePlan{table: table, column: column, res: [2]int64{9, 26}, commitMultiplier: 1}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
	var perr *proof.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, proof.SumcheckFailure, perr.Kind)
}

// TestSquareQueryProof_ScaledCommitmentFails is spec.md §8 scenario S4's
// other rejection case: the verifier's independently-recomputed
// commitment to x no longer matches what was actually committed (here
// simulated by scaling it), so the evaluation proof fails to verify even
// though the sumcheck proof itself is internally consistent.
func TestSquareQueryProof_ScaledCommitmentFails(t *testing.T) {
	backend := ipacommit.NewBackend("square-scaled-commitment")
	table, column, accessor := newSquareAccessor(backend)

	plan := squarePlan{table: table, column: column, res: [2]int64{9, 25}, commitMultiplier: 2}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
	var perr *proof.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, proof.InnerProductFailure, perr.Kind)
}

// TestSquareQueryProof_DeclaredCountDeviationOnWireFails is spec.md §8
// property 5 exercised directly at the wire boundary: a valid proof whose
// AnchoredEvals vector is extended beyond what Count declared is rejected
// with StructuralMismatch, independent of any cryptographic check.
func TestSquareQueryProof_DeclaredCountDeviationOnWireFails(t *testing.T) {
	backend := ipacommit.NewBackend("square-count-deviation")
	table, column, accessor := newSquareAccessor(backend)

	plan := squarePlan{table: table, column: column, res: [2]int64{9, 25}, commitMultiplier: 1}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	queryProof.AnchoredEvals = append(queryProof.AnchoredEvals, scalar.Zero())

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
	var perr *proof.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, proof.StructuralMismatch, perr.Kind)
}

// doubleSquarePlan proves res == z*z and z == x*x against a catalog column
// x, routing z through an intermediate (prover-committed) MLE.
type doubleSquarePlan struct {
	table  database.TableRef
	column database.ColumnRef
	res    [2]int64
	z      [2]int64
	offset uint64
}

var _ proof.ProverEvaluate = doubleSquarePlan{}

func (p doubleSquarePlan) Count(cb *proof.CountBuilder, accessor database.MetadataAccessor) error {
	cb.CountDegree(3)
	cb.CountResultColumns(1)
	cb.CountSubpolynomials(2)
	cb.CountAnchoredMLEs(1)
	cb.CountIntermediateMLEs(1)
	return nil
}

func (p doubleSquarePlan) Length(accessor database.MetadataAccessor) (uint64, error) {
	return accessor.TableLength(p.table)
}

func (p doubleSquarePlan) Offset(accessor database.MetadataAccessor) (uint64, error) {
	return p.offset, nil
}

func (p doubleSquarePlan) ResultSchema() []database.ColumnField {
	return []database.ColumnField{{Name: "res", Type: database.BigInt}}
}

func (p doubleSquarePlan) ColumnReferences() []database.ColumnRef {
	return []database.ColumnRef{p.column}
}

func (p doubleSquarePlan) ResultEvaluate(rb *proof.ResultBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	if err := rb.SetResultIndexes(database.NewDenseIndexes(0, 2)); err != nil {
		return err
	}
	return rb.ProduceResultColumn(database.NewBigIntColumn(p.res[:]))
}

func (p doubleSquarePlan) ProverEvaluate(pb *proof.ProofBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	col, err := accessor.ColumnData(p.column)
	if err != nil {
		return err
	}
	x := arena.AllocCopy(col.ToScalars())
	z := arena.Alloc(2)
	z[0], z[1] = scalar.FromInt64(p.z[0]), scalar.FromInt64(p.z[1])
	res := arena.Alloc(2)
	res[0], res[1] = scalar.FromInt64(p.res[0]), scalar.FromInt64(p.res[1])

	pb.ProduceAnchoredMLE(x)
	pb.ProduceIntermediateMLE(z)

	// Identity: z - x*x == 0.
	pb.ProduceSumcheckSubpolynomial(sumcheck.Identity, []sumcheck.Term{
		{Coefficient: scalar.One(), Factors: [][]scalar.Scalar{z}},
		{Coefficient: scalar.Neg(scalar.One()), Factors: [][]scalar.Scalar{x, x}},
	})
	// Identity: res - z*z == 0.
	pb.ProduceSumcheckSubpolynomial(sumcheck.Identity, []sumcheck.Term{
		{Coefficient: scalar.One(), Factors: [][]scalar.Scalar{res}},
		{Coefficient: scalar.Neg(scalar.One()), Factors: [][]scalar.Scalar{z, z}},
	})
	return nil
}

func (p doubleSquarePlan) VerifierEvaluate(vb *proof.VerificationBuilder, accessor database.CommitmentAccessor, result *database.ProvableQueryResult) error {
	resEval, err := vb.ConsumeResultMLE()
	if err != nil {
		return err
	}
	commit, err := accessor.ColumnCommitment(p.column, p.offset)
	if err != nil {
		return err
	}
	xEval, err := vb.ConsumeAnchoredMLE(commit)
	if err != nil {
		return err
	}
	zEval, _, err := vb.ConsumeIntermediateMLE()
	if err != nil {
		return err
	}

	vb.ProduceSumcheckSubpolynomialEvaluation(sumcheck.Identity, scalar.Sub(zEval, scalar.Mul(xEval, xEval)))
	vb.ProduceSumcheckSubpolynomialEvaluation(sumcheck.Identity, scalar.Sub(resEval, scalar.Mul(zEval, zEval)))
	return nil
}

func newDoubleSquareAccessor(backend *ipacommit.Backend, x [2]int64) (database.TableRef, database.ColumnRef, *database.MemoryAccessor) {
	accessor := database.NewMemoryAccessor(backend)
	table := database.TableRef{Namespace: "sxt", Table: "test"}
	column := database.ColumnRef{Namespace: "sxt", Table: "test", Column: "x", Type: database.BigInt}
	accessor.PutTable(table, 2)
	accessor.PutColumn(column, database.NewBigIntColumn(x[:]))
	return table, column, accessor
}

// TestDoubleSquareQueryProof_IntermediateSucceeds is spec.md §8 scenario
// S5: res=(x*x)*(x*x), routed through an intermediate z=x*x, verifies at
// both a zero and a non-zero generator offset.
func TestDoubleSquareQueryProof_IntermediateSucceeds(t *testing.T) {
	backend := ipacommit.NewBackend("double-square-s5")
	table, column, accessor := newDoubleSquareAccessor(backend, [2]int64{3, 5})

	for _, offset := range []uint64{0, 89} {
		plan := doubleSquarePlan{table: table, column: column, res: [2]int64{81, 625}, z: [2]int64{9, 25}, offset: offset}

		result, queryProof, err := proof.Prove(plan, accessor, backend)
		require.NoError(t, err)

		data, err := proof.Verify(plan, result, queryProof, accessor, backend)
		require.NoError(t, err)
		require.Equal(t, []int64{81, 625}, data.Table[0].Ints)
	}
}

// TestDoubleSquareQueryProof_WrongOffsetFails is spec.md §8 property 3
// against S5's intermediate-commitment plan.
func TestDoubleSquareQueryProof_WrongOffsetFails(t *testing.T) {
	backend := ipacommit.NewBackend("double-square-wrong-offset")
	table, column, accessor := newDoubleSquareAccessor(backend, [2]int64{3, 5})

	plan := doubleSquarePlan{table: table, column: column, res: [2]int64{81, 625}, z: [2]int64{9, 25}, offset: 5}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	wrongOffsetPlan := doubleSquarePlan{table: table, column: column, res: [2]int64{81, 625}, z: [2]int64{9, 25}, offset: 6}
	_, err = proof.Verify(wrongOffsetPlan, result, queryProof, accessor, backend)
	require.Error(t, err)
}

// TestDoubleSquareQueryProof_TamperedWireCommitmentFails is spec.md §8
// scenario S5's wire-tamper rejection case: scaling the proof's
// intermediate (z) commitment after the fact, distinct from tampering an
// MLE evaluation, makes verification fail.
func TestDoubleSquareQueryProof_TamperedWireCommitmentFails(t *testing.T) {
	backend := ipacommit.NewBackend("double-square-tampered-commitment")
	table, column, accessor := newDoubleSquareAccessor(backend, [2]int64{3, 5})

	plan := doubleSquarePlan{table: table, column: column, res: [2]int64{81, 625}, z: [2]int64{9, 25}}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)
	require.Len(t, queryProof.Commitments, 1)

	two := scalar.FromInt64(2)
	queryProof.Commitments[0] = queryProof.Commitments[0].ScalarMul(&two)

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
}

// TestDoubleSquareQueryProof_ViolatedIntermediateEquationFails is
// spec.md §8 scenario S5's rejection case on the first equation: the
// catalog's actual x no longer satisfies z == x*x for the plan's declared
// z, and verification fails.
func TestDoubleSquareQueryProof_ViolatedIntermediateEquationFails(t *testing.T) {
	backend := ipacommit.NewBackend("double-square-violated-intermediate")
	table, column, accessor := newDoubleSquareAccessor(backend, [2]int64{3, 4})

	plan := doubleSquarePlan{table: table, column: column, res: [2]int64{81, 625}, z: [2]int64{9, 25}}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
	var perr *proof.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, proof.SumcheckFailure, perr.Kind)
}

// TestDoubleSquareQueryProof_ResultViolatesIntermediateEquationFails is
// spec.md §8 scenario S5's rejection case on the second equation: the
// declared result does not satisfy res == z*z, and verification fails.
func TestDoubleSquareQueryProof_ResultViolatesIntermediateEquationFails(t *testing.T) {
	backend := ipacommit.NewBackend("double-square-violated-result")
	table, column, accessor := newDoubleSquareAccessor(backend, [2]int64{3, 5})

	plan := doubleSquarePlan{table: table, column: column, res: [2]int64{81, 624}, z: [2]int64{9, 25}}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	_, err = proof.Verify(plan, result, queryProof, accessor, backend)
	require.Error(t, err)
	var perr *proof.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, proof.SumcheckFailure, perr.Kind)
}

// challengePlan proves res == x*x, but only after consuming a post-result
// challenge alpha to scale the Identity subpolynomial; a second requested
// challenge (beta) is deliberately never folded into the computation, to
// certify that both sides still sample it in lockstep.
type challengePlan struct {
	table  database.TableRef
	column database.ColumnRef
	offset uint64
}

var _ proof.ProverEvaluate = challengePlan{}

func (p challengePlan) Count(cb *proof.CountBuilder, accessor database.MetadataAccessor) error {
	cb.CountDegree(3)
	cb.CountResultColumns(1)
	cb.CountSubpolynomials(1)
	cb.CountAnchoredMLEs(1)
	cb.CountPostResultChallenges(2)
	return nil
}

func (p challengePlan) Length(accessor database.MetadataAccessor) (uint64, error) {
	return accessor.TableLength(p.table)
}

func (p challengePlan) Offset(accessor database.MetadataAccessor) (uint64, error) {
	return p.offset, nil
}

func (p challengePlan) ResultSchema() []database.ColumnField {
	return []database.ColumnField{{Name: "res", Type: database.BigInt}}
}

func (p challengePlan) ColumnReferences() []database.ColumnRef {
	return []database.ColumnRef{p.column}
}

func (p challengePlan) ResultEvaluate(rb *proof.ResultBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	if err := rb.SetResultIndexes(database.NewDenseIndexes(0, 2)); err != nil {
		return err
	}
	if err := rb.ProduceResultColumn(database.NewBigIntColumn([]int64{9, 25})); err != nil {
		return err
	}
	rb.RequestPostResultChallenges(2)
	return nil
}

func (p challengePlan) ProverEvaluate(pb *proof.ProofBuilder, arena *scratch.Arena, accessor database.DataAccessor) error {
	col, err := accessor.ColumnData(p.column)
	if err != nil {
		return err
	}
	x := arena.AllocCopy(col.ToScalars())
	res := arena.Alloc(2)
	res[0], res[1] = scalar.FromInt64(9), scalar.FromInt64(25)

	alpha := pb.ConsumePostResultChallenge()
	pb.ConsumePostResultChallenge() // beta: requested, never folded into the computation.

	pb.ProduceAnchoredMLE(x)
	pb.ProduceSumcheckSubpolynomial(sumcheck.Identity, []sumcheck.Term{
		{Coefficient: alpha, Factors: [][]scalar.Scalar{res}},
		{Coefficient: scalar.Neg(alpha), Factors: [][]scalar.Scalar{x, x}},
	})
	return nil
}

func (p challengePlan) VerifierEvaluate(vb *proof.VerificationBuilder, accessor database.CommitmentAccessor, result *database.ProvableQueryResult) error {
	alpha, err := vb.ConsumePostResultChallenge()
	if err != nil {
		return err
	}
	if _, err := vb.ConsumePostResultChallenge(); err != nil { // beta: unused, still consumed.
		return err
	}

	resEval, err := vb.ConsumeResultMLE()
	if err != nil {
		return err
	}
	commit, err := accessor.ColumnCommitment(p.column, p.offset)
	if err != nil {
		return err
	}
	xEval, err := vb.ConsumeAnchoredMLE(commit)
	if err != nil {
		return err
	}

	value := scalar.Mul(alpha, scalar.Sub(resEval, scalar.Mul(xEval, xEval)))
	vb.ProduceSumcheckSubpolynomialEvaluation(sumcheck.Identity, value)
	return nil
}

// TestChallengeQueryProof_PostResultChallengeSucceeds is spec.md §8
// scenario S6: a plan using a post-result challenge as a subpolynomial
// coefficient verifies at both a zero and a non-zero generator offset,
// even though a second requested challenge (beta) is never used.
func TestChallengeQueryProof_PostResultChallengeSucceeds(t *testing.T) {
	backend := ipacommit.NewBackend("challenge-s6")
	table, column, accessor := newSquareAccessor(backend)

	for _, offset := range []uint64{0, 123} {
		plan := challengePlan{table: table, column: column, offset: offset}

		result, queryProof, err := proof.Prove(plan, accessor, backend)
		require.NoError(t, err)

		data, err := proof.Verify(plan, result, queryProof, accessor, backend)
		require.NoError(t, err)
		require.Equal(t, []int64{9, 25}, data.Table[0].Ints)
	}
}

// TestChallengeQueryProof_WrongOffsetFails is spec.md §8 property 3
// against S6's post-result-challenge plan.
func TestChallengeQueryProof_WrongOffsetFails(t *testing.T) {
	backend := ipacommit.NewBackend("challenge-wrong-offset")
	table, column, accessor := newSquareAccessor(backend)

	plan := challengePlan{table: table, column: column, offset: 5}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	wrongOffsetPlan := challengePlan{table: table, column: column, offset: 6}
	_, err = proof.Verify(wrongOffsetPlan, result, queryProof, accessor, backend)
	require.Error(t, err)
}

// TestQueryProofWireRoundTrip is spec.md §6's QueryProof byte layout: a
// proof survives MarshalBinary/UnmarshalQueryProof and still verifies.
func TestQueryProofWireRoundTrip(t *testing.T) {
	backend := ipacommit.NewBackend("wire-round-trip")
	table, column, accessor := newSquareAccessor(backend)

	plan := squarePlan{table: table, column: column, res: [2]int64{9, 25}, commitMultiplier: 1}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	buf, err := queryProof.MarshalBinary()
	require.NoError(t, err)

	decoded, err := proof.UnmarshalQueryProof(buf, backend)
	require.NoError(t, err)

	data, err := proof.Verify(plan, result, decoded, accessor, backend)
	require.NoError(t, err)
	require.Equal(t, []int64{9, 25}, data.Table[0].Ints)
}

// TestQueryProofWireBitFlipFails is spec.md §8 property 2: flipping any
// byte of a serialized QueryProof causes the decoded proof to be rejected,
// either at decode time (malformed framing) or at verify time (a
// cryptographic check fails).
func TestQueryProofWireBitFlipFails(t *testing.T) {
	backend := ipacommit.NewBackend("wire-bit-flip")
	table, column, accessor := newSquareAccessor(backend)

	plan := squarePlan{table: table, column: column, res: [2]int64{9, 25}, commitMultiplier: 1}
	result, queryProof, err := proof.Prove(plan, accessor, backend)
	require.NoError(t, err)

	buf, err := queryProof.MarshalBinary()
	require.NoError(t, err)

	// Flip the final byte: inside the evaluation proof's trailing scalar,
	// never inside a length prefix, so this byte always decodes cleanly.
	tailFlip := append([]byte(nil), buf...)
	tailFlip[len(tailFlip)-1] ^= 0xFF
	decoded, decodeErr := proof.UnmarshalQueryProof(tailFlip, backend)
	rejected := decodeErr != nil
	if decodeErr == nil {
		_, verifyErr := proof.Verify(plan, result, decoded, accessor, backend)
		rejected = verifyErr != nil
	}
	require.True(t, rejected, "bit-flipped proof must be rejected at decode or verify time")

	// Flip the leading length prefix (the commitment count): a huge bogus
	// count always fails to decode.
	headFlip := append([]byte(nil), buf...)
	headFlip[0] ^= 0xFF
	_, decodeErr = proof.UnmarshalQueryProof(headFlip, backend)
	require.Error(t, decodeErr)
}
