// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package event builds, serializes and validates KERI key events.
//
// Struct field order is the KERI field order, so encoding/json produces the
// canonical serialization directly. Event values are treated as immutable
// once built.
package event

import (
	"crypto/ed25519"
	"fmt"
	"strconv"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/commitment"
	"github.com/aumos-ai/keri-agent/types"
)

// Event is implemented by InceptionEvent and RotationEvent.
type Event interface {
	Kind() types.EventKind
	// Prefix is the identifier the event belongs to.
	Prefix() string
	// SAID is the self-addressing digest of the event.
	SAID() string
	Sequence() (uint64, error)
	// SigningKeys are the qb64 keys in effect after the event.
	SigningKeys() []string
	// SigningThreshold is the "kt" value.
	SigningThreshold() (uint16, error)
	// NextCommitment is the commitment published for the following rotation.
	NextCommitment() (*commitment.Commitment, error)

	setPlaceholders(said, prefix string)
	setVersion(v string)
}

// InceptionEvent is an "icp" event.
type InceptionEvent struct {
	Version         string          `json:"v"`
	Type            types.EventKind `json:"t"`
	Digest          string          `json:"d"`
	Identifier      string          `json:"i"`
	SequenceNumber  string          `json:"s"`
	KeyThreshold    string          `json:"kt"`
	Keys            []string        `json:"k"`
	NextThreshold   string          `json:"nt"`
	NextKeys        []string        `json:"n"`
	BackerThreshold string          `json:"bt"`
	Backers         []string        `json:"b"`
	Config          []string        `json:"c"`
	Anchors         []string        `json:"a"`
}

// RotationEvent is a "rot" event.
type RotationEvent struct {
	Version         string          `json:"v"`
	Type            types.EventKind `json:"t"`
	Digest          string          `json:"d"`
	Identifier      string          `json:"i"`
	SequenceNumber  string          `json:"s"`
	Prior           string          `json:"p"`
	KeyThreshold    string          `json:"kt"`
	Keys            []string        `json:"k"`
	NextThreshold   string          `json:"nt"`
	NextKeys        []string        `json:"n"`
	BackerThreshold string          `json:"bt"`
	BackersRemoved  []string        `json:"br"`
	BackersAdded    []string        `json:"ba"`
	Anchors         []string        `json:"a"`
}

func (e *InceptionEvent) Kind() types.EventKind { return types.EventKindInception }
func (e *InceptionEvent) Prefix() string { return e.Identifier }
func (e *InceptionEvent) SAID() string { return e.Digest }
func (e *InceptionEvent) SigningKeys() []string { return append([]string(nil), e.Keys...) }

func (e *InceptionEvent) Sequence() (uint64, error) { return parseSequence(e.SequenceNumber) }

func (e *InceptionEvent) SigningThreshold() (uint16, error) {
	return parseThreshold("kt", e.KeyThreshold)
}

func (e *InceptionEvent) NextCommitment() (*commitment.Commitment, error) {
	return nextCommitment(e.NextThreshold, e.NextKeys)
}

func (e *InceptionEvent) setPlaceholders(said, prefix string) {
	e.Digest = said
	e.Identifier = prefix
}

func (e *InceptionEvent) setVersion(v string) { e.Version = v }

func (e *RotationEvent) Kind() types.EventKind { return types.EventKindRotation }
func (e *RotationEvent) Prefix() string { return e.Identifier }
func (e *RotationEvent) SAID() string { return e.Digest }
func (e *RotationEvent) SigningKeys() []string { return append([]string(nil), e.Keys...) }

func (e *RotationEvent) Sequence() (uint64, error) { return parseSequence(e.SequenceNumber) }

func (e *RotationEvent) SigningThreshold() (uint16, error) {
	return parseThreshold("kt", e.KeyThreshold)
}

func (e *RotationEvent) NextCommitment() (*commitment.Commitment, error) {
	return nextCommitment(e.NextThreshold, e.NextKeys)
}

// setPlaceholders only replaces the digest; a rotation's prefix is fixed by
// the inception event.
func (e *RotationEvent) setPlaceholders(said, _ string) { e.Digest = said }

func (e *RotationEvent) setVersion(v string) { e.Version = v }

// PublicKeys decodes the qb64 signing keys of e.
func PublicKeys(e Event) ([]ed25519.PublicKey, error) {
	qualified := e.SigningKeys()
	out := make([]ed25519.PublicKey, len(qualified))
	for i, k := range qualified {
		code, raw, err := cesr.Decode(k)
		if err != nil {
			return nil, fmt.Errorf("event: decode key %d: %w", i, err)
		}
		if code != cesr.Ed25519Transferable {
			return nil, &types.ErrEncoding{Field: "k", Reason: fmt.Sprintf("key %d has code %s, want transferable Ed25519", i, code)}
		}
		out[i] = ed25519.PublicKey(raw)
	}
	return out, nil
}

func formatSequence(n uint64) string { return strconv.FormatUint(n, 16) }

func parseSequence(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, &types.ErrSerialization{Op: "decode", Reason: fmt.Sprintf("invalid sequence number %q", s)}
	}
	return n, nil
}

func parseThreshold(field, s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, &types.ErrSerialization{Op: "decode", Reason: fmt.Sprintf("invalid %s %q", field, s)}
	}
	return uint16(n), nil
}

func nextCommitment(threshold string, digests []string) (*commitment.Commitment, error) {
	nt, err := parseThreshold("nt", threshold)
	if err != nil {
		return nil, err
	}
	return &commitment.Commitment{Threshold: nt, Digests: append([]string(nil), digests...)}, nil
}
