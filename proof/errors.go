// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package proof implements the IOP proof core: the three-pass
// count/result/prover builders, the query-proof lifecycle that drives a
// plan through them with a Fiat–Shamir transcript, and the verifiable
// query result container.
package proof

import "fmt"

// ErrorKind classifies why a proof failed to verify or a plan failed to
// prove. It names a category, not a concrete Go type: every failure
// surfaces as an *Error carrying one of these.
type ErrorKind int

const (
	// StructuralMismatch: counts, schema, or indexes disagree with the plan.
	StructuralMismatch ErrorKind = iota
	// CommitmentMismatch: a recomputed commitment does not match the wire value.
	CommitmentMismatch
	// SumcheckFailure: the sum-check proof is invalid, or the claimed sum is nonzero.
	SumcheckFailure
	// EvaluationMismatch: the verifier's recomputed composite evaluation disagrees with the prover's.
	EvaluationMismatch
	// InnerProductFailure: the commitment scheme's evaluation proof is invalid.
	InnerProductFailure
	// DecodeError: malformed wire bytes.
	DecodeError
	// AccessorError: a referenced column is absent or has the wrong type.
	AccessorError
)

func (k ErrorKind) String() string {
	switch k {
	case StructuralMismatch:
		return "StructuralMismatch"
	case CommitmentMismatch:
		return "CommitmentMismatch"
	case SumcheckFailure:
		return "SumcheckFailure"
	case EvaluationMismatch:
		return "EvaluationMismatch"
	case InnerProductFailure:
		return "InnerProductFailure"
	case DecodeError:
		return "DecodeError"
	case AccessorError:
		return "AccessorError"
	default:
		return "Unknown"
	}
}

// Error is the single error family every proving or verification failure
// surfaces as.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proof: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("proof: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
