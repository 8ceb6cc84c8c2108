// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package digest computes the content-addressing digests used for event
// SAIDs and next-key commitments. The algorithm is selected by its qb64
// derivation code so a digest always carries enough information to be
// recomputed by any party holding the KEL.
package digest

import (
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"

	"github.com/minio/sha256-simd"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/types"
)

// Default is the digest code used when none is configured. It matches the
// Blake3-256 derivation used by KERI reference implementations.
const Default = cesr.Blake3_256

// Supported returns the digest codes this package can compute.
func Supported() []cesr.Code {
	return []cesr.Code{cesr.Blake3_256, cesr.Blake2b_256, cesr.SHA3_256, cesr.SHA2_256}
}

// Validate reports whether code names a supported digest algorithm.
func Validate(code cesr.Code) error {
	switch code {
	case cesr.Blake3_256, cesr.Blake2b_256, cesr.SHA3_256, cesr.SHA2_256:
		return nil
	default:
		return &types.ErrUnsupportedDigest{Code: string(code)}
	}
}

// Sum returns the raw 32-byte digest of data under code.
func Sum(code cesr.Code, data []byte) ([]byte, error) {
	switch code {
	case cesr.Blake3_256:
		sum := blake3.Sum256(data)
		return sum[:], nil
	case cesr.Blake2b_256:
		sum := blake2b.Sum256(data)
		return sum[:], nil
	case cesr.SHA3_256:
		sum := sha3.Sum256(data)
		return sum[:], nil
	case cesr.SHA2_256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	default:
		return nil, &types.ErrUnsupportedDigest{Code: string(code)}
	}
}

// QB64 returns the qualified qb64 digest of data under code.
func QB64(code cesr.Code, data []byte) (string, error) {
	raw, err := Sum(code, data)
	if err != nil {
		return "", err
	}
	return cesr.Encode(code, raw)
}

// Matches reports whether qb64 is the digest of data. The algorithm is taken
// from the code embedded in qb64.
func Matches(qb64 string, data []byte) (bool, error) {
	code, _, err := cesr.Decode(qb64)
	if err != nil {
		return false, err
	}
	if err := Validate(code); err != nil {
		return false, err
	}
	got, err := QB64(code, data)
	if err != nil {
		return false, err
	}
	return got == qb64, nil
}
