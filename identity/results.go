// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package identity

import "github.com/aumos-ai/keri-agent/types"

// InceptionResult is returned by Registry.Incept.
type InceptionResult struct {
	// AID is the self-certifying identifier prefix.
	AID string `json:"aid"`
	// PublicKey is the current signing key, standard base64.
	PublicKey string `json:"public_key"`
	// KELEntry is the serialized inception event.
	KELEntry string `json:"kel_entry"`
}

// RotationResult is returned by Registry.Rotate.
type RotationResult struct {
	AID string `json:"aid"`
	// NewPublicKey is the key revealed by the rotation, standard base64.
	NewPublicKey string `json:"new_public_key"`
	KELEntry     string `json:"kel_entry"`
}

// SignResult is returned by Registry.Sign. Both fields are standard base64.
type SignResult struct {
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
}

// KeyState summarizes an identifier's current key configuration.
type KeyState struct {
	Name           string                 `json:"name"`
	AID            string                 `json:"aid"`
	Status         types.IdentifierStatus `json:"status"`
	SequenceNumber uint64                 `json:"sequence_number"`
	EventCount     int                    `json:"event_count"`
	// PublicKey is the current signing key in standard base64; QualifiedKey is
	// the same key as it appears in events.
	PublicKey          string   `json:"public_key"`
	QualifiedKey       string   `json:"qualified_key"`
	PublicKeyMultibase string   `json:"public_key_multibase"`
	DIDKey             string   `json:"did_key"`
	NextThreshold      uint16   `json:"next_threshold"`
	NextDigests        []string `json:"next_digests"`
	LastEventSAID      string   `json:"last_event_said"`
}
