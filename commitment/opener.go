// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package commitment

import "github.com/luxfi/sqlproof/scalar"

// OpeningProof is a backend-specific proof that a committed vector
// evaluates to a claimed scalar against a public evaluation basis; its
// internal structure is opaque to the proof core.
type OpeningProof interface {
	Bytes() []byte
}

// Opener is the optional capability a Backend may implement: producing
// and checking an evaluation proof (e.g. an inner-product argument) for a
// committed vector, the commitment-scheme evaluation proof step §4.9
// names as an external collaborator. The core never requires it — a
// Backend without Opener still supports every other operation, just not
// QueryProof's final evaluation-proof step.
type Opener interface {
	// Open proves that vector, committed via Commit(vector, offset),
	// satisfies <vector, basis> == claimed, where basis is a public
	// vector both parties agree on (typically an eq-MLE evaluation
	// basis).
	Open(vector []scalar.Scalar, offset uint64, basis []scalar.Scalar, claimed scalar.Scalar) (OpeningProof, error)
	// VerifyOpen checks a proof produced by Open against the public
	// commitment, basis, and claimed evaluation.
	VerifyOpen(c Commitment, offset uint64, basis []scalar.Scalar, claimed scalar.Scalar, proof OpeningProof) error
	// DecodeOpening parses an OpeningProof from its Bytes() encoding, the
	// Opener-side counterpart of Backend.Decode, needed to deserialize a
	// QueryProof's evaluation proof off the wire.
	DecodeOpening(buf []byte) (OpeningProof, error)
}
