// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package types

import "fmt"

// ErrKeyGeneration is returned when the secure random source or key derivation fails.
type ErrKeyGeneration struct {
	Reason string
}

func (e *ErrKeyGeneration) Error() string {
	return fmt.Sprintf("key generation failed: %s", e.Reason)
}

// ErrSigning is returned when a signature cannot be produced.
type ErrSigning struct {
	Reason string
}

func (e *ErrSigning) Error() string {
	return fmt.Sprintf("signing failed: %s", e.Reason)
}

// ErrIdentifierNotFound is returned when a name is not present in the registry.
type ErrIdentifierNotFound struct {
	Name string
}

func (e *ErrIdentifierNotFound) Error() string {
	return fmt.Sprintf("no AID found with name: %s", e.Name)
}

// ErrIdentifierExists is returned when incepting under a name that is already registered.
type ErrIdentifierExists struct {
	Name string
	AID  string
}

func (e *ErrIdentifierExists) Error() string {
	return fmt.Sprintf("AID already exists with name %s: %s", e.Name, e.AID)
}

// ErrInvalidName is returned when an identifier name is empty or otherwise unusable.
type ErrInvalidName struct {
	Name   string
	Reason string
}

func (e *ErrInvalidName) Error() string {
	return fmt.Sprintf("invalid identifier name %q: %s", e.Name, e.Reason)
}

// ErrSerialization is returned when canonical encoding or decoding of an event fails.
type ErrSerialization struct {
	Op     string
	Reason string
}

func (e *ErrSerialization) Error() string {
	return fmt.Sprintf("KEL serialization failed (%s): %s", e.Op, e.Reason)
}

// ErrEncoding is returned when a caller-supplied base64 or qb64 value is malformed.
type ErrEncoding struct {
	Field  string
	Reason string
}

func (e *ErrEncoding) Error() string {
	return fmt.Sprintf("invalid %s encoding: %s", e.Field, e.Reason)
}

// ErrVerification is returned for malformed cryptographic material. A signature that
// simply does not match is not an error.
type ErrVerification struct {
	Reason string
}

func (e *ErrVerification) Error() string {
	return fmt.Sprintf("verification failed: %s", e.Reason)
}

// ErrInvalidKeySet is returned when a commitment is requested over an unusable key list.
type ErrInvalidKeySet struct {
	Reason string
}

func (e *ErrInvalidKeySet) Error() string {
	return fmt.Sprintf("invalid key set: %s", e.Reason)
}

// ErrCommitmentMismatch is returned when a rotation reveals keys that do not match the
// commitment published in the prior event.
type ErrCommitmentMismatch struct {
	Sequence uint64
	Reason   string
}

func (e *ErrCommitmentMismatch) Error() string {
	return fmt.Sprintf("next-key commitment mismatch at sequence %d: %s", e.Sequence, e.Reason)
}

// ErrUnsupportedDigest is returned for an unknown digest derivation code.
type ErrUnsupportedDigest struct {
	Code string
}

func (e *ErrUnsupportedDigest) Error() string {
	return fmt.Sprintf("unsupported digest code: %q", e.Code)
}

// ErrInvalidLog is returned when a key event log fails replay validation.
type ErrInvalidLog struct {
	Sequence int
	Reason   string
}

func (e *ErrInvalidLog) Error() string {
	return fmt.Sprintf("invalid KEL at event %d: %s", e.Sequence, e.Reason)
}

// ErrRegistryClosed is returned by any registry call made after Close.
type ErrRegistryClosed struct{}

func (e *ErrRegistryClosed) Error() string {
	return "identifier registry is closed"
}

// ErrResolutionFailed is returned when a remote key event log cannot be fetched
// or does not resolve to the expected identifier.
type ErrResolutionFailed struct {
	Source string
	Reason string
}

func (e *ErrResolutionFailed) Error() string {
	return fmt.Sprintf("failed to resolve KEL from %s: %s", e.Source, e.Reason)
}
