// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transcript implements the Fiat–Shamir transcript that turns the
// proof core's interactive sum-check protocol into a non-interactive one:
// every message the prover would have sent is first absorbed, and every
// challenge the verifier would have sampled is instead squeezed
// deterministically from the accumulated transcript state.
package transcript

import (
	"encoding/binary"

	"github.com/zeebo/blake3"

	"github.com/luxfi/sqlproof/scalar"
)

// Transcript is a running, domain-separated BLAKE3 sponge. Every absorb and
// squeeze is prefixed with a caller-supplied label so prover and verifier,
// evaluated in lock-step, never confuse one field's bytes for another's.
type Transcript struct {
	h      *blake3.Hasher
	rounds uint64
}

// New starts a transcript seeded with a protocol-identifying domain string,
// so proofs produced for unrelated protocols can never be confused.
func New(domain string) *Transcript {
	t := &Transcript{h: blake3.New()}
	t.absorb("domain", []byte(domain))
	return t
}

func (t *Transcript) absorb(label string, data []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(label)))
	t.h.Write(lenBuf[:])
	t.h.Write([]byte(label))
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(data)))
	t.h.Write(lenBuf[:])
	t.h.Write(data)
}

// AppendMessage absorbs a labeled message, e.g. a commitment's byte
// encoding or a claimed sum-check evaluation.
func (t *Transcript) AppendMessage(label string, data []byte) {
	t.absorb(label, data)
}

// AppendScalar absorbs a labeled Scalar.
func (t *Transcript) AppendScalar(label string, s scalar.Scalar) {
	b := s.Bytes()
	t.absorb(label, b[:])
}

// AppendUint64 absorbs a labeled length or count.
func (t *Transcript) AppendUint64(label string, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	t.absorb(label, buf[:])
}

// ChallengeBytes squeezes n pseudorandom bytes labeled label, then ratchets
// the transcript state forward by absorbing the squeezed output, so the
// same label never yields the same bytes twice from the same prefix.
func (t *Transcript) ChallengeBytes(label string, n int) []byte {
	t.absorb(label, leBytes(t.rounds))
	t.rounds++

	digest := t.h.Digest()
	out := make([]byte, n)
	if _, err := digest.Read(out); err != nil {
		panic("transcript: blake3 digest read failed: " + err.Error())
	}
	t.absorb("challenge-ratchet", out)
	return out
}

// ChallengeScalar squeezes a uniformly random field element labeled label.
func (t *Transcript) ChallengeScalar(label string) scalar.Scalar {
	buf := t.ChallengeBytes(label, 48)
	return scalar.FromBytesReduced(buf)
}

func leBytes(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:]
}
