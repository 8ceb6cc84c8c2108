// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package commitment builds and checks pre-rotation next-key commitments.
//
// A commitment publishes the digest of each candidate next public key
// together with the threshold required to rotate. The keys themselves stay
// private until the rotation that uses them.
package commitment

import (
	"crypto/ed25519"
	"fmt"
	"strconv"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/digest"
	"github.com/aumos-ai/keri-agent/types"
)

// Commitment is the public next-key commitment carried in the "nt" and "n"
// fields of an establishment event.
type Commitment struct {
	Threshold uint16
	Digests   []string
}

// ThresholdHex is the threshold in the lowercase hex form used in events.
func (c *Commitment) ThresholdHex() string {
	return strconv.FormatUint(uint64(c.Threshold), 16)
}

// Builder computes commitments with a fixed digest algorithm.
type Builder struct {
	Code cesr.Code
}

// NewBuilder returns a Builder for code, or the default digest when code is empty.
func NewBuilder(code cesr.Code) (*Builder, error) {
	if code == "" {
		code = digest.Default
	}
	if err := digest.Validate(code); err != nil {
		return nil, fmt.Errorf("commitment: %w", err)
	}
	return &Builder{Code: code}, nil
}

// Commit returns the commitment to candidateNextKeys. The result depends only on
// the inputs, so any holder of the keys can recompute it.
func (b *Builder) Commit(threshold uint16, candidateNextKeys []ed25519.PublicKey) (*Commitment, error) {
	if err := checkKeySet(threshold, candidateNextKeys); err != nil {
		return nil, err
	}
	digests := make([]string, len(candidateNextKeys))
	for i, key := range candidateNextKeys {
		d, err := KeyDigest(b.Code, key)
		if err != nil {
			return nil, fmt.Errorf("commitment: digest key %d: %w", i, err)
		}
		digests[i] = d
	}
	return &Commitment{Threshold: threshold, Digests: digests}, nil
}

// Verify checks that revealed keys satisfy the commitment. Each key is
// digested with the algorithm recorded in the corresponding stored digest.
func (c *Commitment) Verify(sequence uint64, threshold uint16, revealed []ed25519.PublicKey) error {
	if threshold != c.Threshold {
		return &types.ErrCommitmentMismatch{Sequence: sequence, Reason: fmt.Sprintf("threshold %d does not match committed %d", threshold, c.Threshold)}
	}
	if len(revealed) != len(c.Digests) {
		return &types.ErrCommitmentMismatch{Sequence: sequence, Reason: fmt.Sprintf("%d keys revealed, %d committed", len(revealed), len(c.Digests))}
	}
	for i, key := range revealed {
		if len(key) != ed25519.PublicKeySize {
			return &types.ErrCommitmentMismatch{Sequence: sequence, Reason: fmt.Sprintf("key %d has invalid length %d", i, len(key))}
		}
		ok, err := digest.Matches(c.Digests[i], []byte(QualifiedKey(key)))
		if err != nil {
			return &types.ErrCommitmentMismatch{Sequence: sequence, Reason: err.Error()}
		}
		if !ok {
			return &types.ErrCommitmentMismatch{Sequence: sequence, Reason: fmt.Sprintf("key %d does not hash to committed digest", i)}
		}
	}
	return nil
}

// QualifiedKey is the qb64 text of a transferable Ed25519 verification key,
// the form that appears in the "k" field of events.
func QualifiedKey(key ed25519.PublicKey) string {
	return cesr.MustEncode(cesr.Ed25519Transferable, key)
}

// KeyDigest is the qb64 digest of the qualified form of key.
func KeyDigest(code cesr.Code, key ed25519.PublicKey) (string, error) {
	if len(key) != ed25519.PublicKeySize {
		return "", &types.ErrInvalidKeySet{Reason: fmt.Sprintf("key has invalid length %d", len(key))}
	}
	return digest.QB64(code, []byte(QualifiedKey(key)))
}

func checkKeySet(threshold uint16, keys []ed25519.PublicKey) error {
	if len(keys) == 0 {
		return &types.ErrInvalidKeySet{Reason: "no candidate next keys"}
	}
	if threshold == 0 || int(threshold) > len(keys) {
		return &types.ErrInvalidKeySet{Reason: fmt.Sprintf("threshold %d out of range for %d keys", threshold, len(keys))}
	}
	for i, key := range keys {
		if len(key) != ed25519.PublicKeySize {
			return &types.ErrInvalidKeySet{Reason: fmt.Sprintf("key %d has invalid length %d", i, len(key))}
		}
	}
	return nil
}
