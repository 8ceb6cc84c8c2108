// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package types defines shared value types used across the keri-agent module.
package types

// EventKind identifies the type of a key event (the KERI "t" field).
type EventKind string

const (
	// EventKindInception establishes an identifier and its first key configuration.
	EventKindInception EventKind = "icp"
	// EventKindRotation transitions an identifier to its pre-committed next key.
	EventKindRotation EventKind = "rot"
)

// KeyAlgorithm identifies the cryptographic algorithm used by a key pair.
type KeyAlgorithm string

const (
	KeyAlgorithmEd25519 KeyAlgorithm = "Ed25519"
)

// IdentifierStatus represents the lifecycle state of an identifier in a registry.
type IdentifierStatus string

const (
	// StatusActive is the only state an incepted identifier can be in.
	StatusActive IdentifierStatus = "active"
)

// Version is the KERI protocol/serialization version prefix of every event.
const Version = "KERI10JSON"

// DefaultThreshold is the single-key signing and next threshold.
const DefaultThreshold uint16 = 1
