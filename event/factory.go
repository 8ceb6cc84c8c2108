// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package event

import (
	"crypto/ed25519"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/commitment"
	"github.com/aumos-ai/keri-agent/digest"
	"github.com/aumos-ai/keri-agent/types"
)

// placeholder stands in for the "d" (and inception "i") field while the SAID
// is computed. It has the length of a qb64 256-bit digest.
var placeholder = strings.Repeat("#", 44)

// Factory builds inception and rotation events with a fixed digest algorithm.
type Factory struct {
	code cesr.Code
}

// NewFactory returns a Factory that derives SAIDs with code, or the default
// digest when code is empty.
func NewFactory(code cesr.Code) (*Factory, error) {
	if code == "" {
		code = digest.Default
	}
	if err := digest.Validate(code); err != nil {
		return nil, fmt.Errorf("event: %w", err)
	}
	return &Factory{code: code}, nil
}

// Code returns the digest code used for SAIDs.
func (f *Factory) Code() cesr.Code { return f.code }

// BuildInception assembles an inception event. Its prefix is its own SAID,
// so any change to any field changes the identifier.
func (f *Factory) BuildInception(keys []ed25519.PublicKey, next *commitment.Commitment, signingThreshold uint16) (*InceptionEvent, error) {
	qualified, err := qualifyKeys(keys, signingThreshold)
	if err != nil {
		return nil, err
	}
	if err := checkCommitment(next); err != nil {
		return nil, err
	}

	e := &InceptionEvent{
		Type:            types.EventKindInception,
		SequenceNumber:  formatSequence(0),
		KeyThreshold:    strconv.FormatUint(uint64(signingThreshold), 16),
		Keys:            qualified,
		NextThreshold:   next.ThresholdHex(),
		NextKeys:        append([]string{}, next.Digests...),
		BackerThreshold: "0",
		Backers:         []string{},
		Config:          []string{},
		Anchors:         []string{},
	}
	if err := saidify(f.code, e); err != nil {
		return nil, err
	}
	return e, nil
}

// BuildRotation assembles the rotation following priorSequence. It does not
// check newKeys against the prior commitment; that is the caller's job.
func (f *Factory) BuildRotation(prefix, priorSAID string, newKeys []ed25519.PublicKey, next *commitment.Commitment, signingThreshold uint16, priorSequence uint64) (*RotationEvent, error) {
	if prefix == "" || priorSAID == "" {
		return nil, &types.ErrSerialization{Op: "build", Reason: "rotation requires prefix and prior event digest"}
	}
	if priorSequence == math.MaxUint64 {
		return nil, &types.ErrSerialization{Op: "build", Reason: "sequence number overflow"}
	}
	qualified, err := qualifyKeys(newKeys, signingThreshold)
	if err != nil {
		return nil, err
	}
	if err := checkCommitment(next); err != nil {
		return nil, err
	}

	e := &RotationEvent{
		Type:            types.EventKindRotation,
		Identifier:      prefix,
		SequenceNumber:  formatSequence(priorSequence + 1),
		Prior:           priorSAID,
		KeyThreshold:    strconv.FormatUint(uint64(signingThreshold), 16),
		Keys:            qualified,
		NextThreshold:   next.ThresholdHex(),
		NextKeys:        append([]string{}, next.Digests...),
		BackerThreshold: "0",
		BackersRemoved:  []string{},
		BackersAdded:    []string{},
		Anchors:         []string{},
	}
	if err := saidify(f.code, e); err != nil {
		return nil, err
	}
	return e, nil
}

// VerifySAID recomputes the SAID of e with the algorithm named by its digest
// code and checks the version string, the digest and, for inception, that the
// prefix is the digest.
func VerifySAID(e Event) error {
	code, _, err := cesr.Decode(e.SAID())
	if err != nil {
		return fmt.Errorf("event: decode SAID: %w", err)
	}
	s, err := Serialize(e)
	if err != nil {
		return err
	}
	clone, err := Deserialize(s)
	if err != nil {
		return err
	}
	if err := saidify(code, clone); err != nil {
		return err
	}
	recomputed, err := Serialize(clone)
	if err != nil {
		return err
	}
	if recomputed != s {
		return &types.ErrSerialization{Op: "verify", Reason: fmt.Sprintf("SAID %s does not match event content", e.SAID())}
	}
	return nil
}

// saidify fills the version string and SAID of e. The version string encodes
// the final serialized size, which is fixed once the placeholders are in place
// because a digest and the placeholder have the same length.
func saidify(code cesr.Code, e Event) error {
	e.setPlaceholders(placeholder, placeholder)
	e.setVersion(versionString(0))
	raw, err := marshal(e)
	if err != nil {
		return err
	}
	e.setVersion(versionString(len(raw)))
	raw, err = marshal(e)
	if err != nil {
		return err
	}
	said, err := digest.QB64(code, raw)
	if err != nil {
		return fmt.Errorf("event: compute SAID: %w", err)
	}
	e.setPlaceholders(said, said)
	return nil
}

func versionString(size int) string {
	return fmt.Sprintf("%s%06x_", types.Version, size)
}

func qualifyKeys(keys []ed25519.PublicKey, threshold uint16) ([]string, error) {
	if len(keys) == 0 {
		return nil, &types.ErrInvalidKeySet{Reason: "no signing keys"}
	}
	if threshold == 0 || int(threshold) > len(keys) {
		return nil, &types.ErrInvalidKeySet{Reason: fmt.Sprintf("signing threshold %d out of range for %d keys", threshold, len(keys))}
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		if len(k) != ed25519.PublicKeySize {
			return nil, &types.ErrInvalidKeySet{Reason: fmt.Sprintf("signing key %d has invalid length %d", i, len(k))}
		}
		out[i] = commitment.QualifiedKey(k)
	}
	return out, nil
}

func checkCommitment(next *commitment.Commitment) error {
	if next == nil || len(next.Digests) == 0 {
		return &types.ErrInvalidKeySet{Reason: "missing next-key commitment"}
	}
	return nil
}
