// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package keys

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"

	"github.com/aumos-ai/keri-agent/types"
)

// ed25519MulticodecPrefix is the multicodec varint prefix for Ed25519 public keys (0xed01).
var ed25519MulticodecPrefix = []byte{0xed, 0x01}

// PublicKeyMultibase encodes an Ed25519 public key as multibase base58btc with
// the Ed25519 multicodec prefix, the form used in DID documents.
func PublicKeyMultibase(publicKey ed25519.PublicKey) (string, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return "", &types.ErrVerification{Reason: fmt.Sprintf("invalid Ed25519 public key length %d", len(publicKey))}
	}
	prefixed := make([]byte, 0, len(ed25519MulticodecPrefix)+len(publicKey))
	prefixed = append(prefixed, ed25519MulticodecPrefix...)
	prefixed = append(prefixed, publicKey...)

	encoded, err := multibase.Encode(multibase.Base58BTC, prefixed)
	if err != nil {
		return "", fmt.Errorf("keys: multibase encode: %w", err)
	}
	return encoded, nil
}

// DeriveKeyDID renders the current signing key as a did:key DID. Unlike the
// AID it changes on every rotation.
func DeriveKeyDID(publicKey ed25519.PublicKey) (string, error) {
	encoded, err := PublicKeyMultibase(publicKey)
	if err != nil {
		return "", err
	}
	return "did:key:" + encoded, nil
}

// ExtractPublicKeyFromKeyDID decodes the Ed25519 public key embedded in a did:key DID.
func ExtractPublicKeyFromKeyDID(did string) (ed25519.PublicKey, error) {
	if !strings.HasPrefix(did, "did:key:") {
		return nil, &types.ErrEncoding{Field: "did:key", Reason: "missing did:key: prefix"}
	}

	_, decoded, err := multibase.Decode(strings.TrimPrefix(did, "did:key:"))
	if err != nil {
		return nil, &types.ErrEncoding{Field: "did:key", Reason: err.Error()}
	}
	if !bytes.HasPrefix(decoded, ed25519MulticodecPrefix) {
		return nil, &types.ErrEncoding{Field: "did:key", Reason: "unexpected multicodec prefix"}
	}

	rawKey := decoded[len(ed25519MulticodecPrefix):]
	if len(rawKey) != ed25519.PublicKeySize {
		return nil, &types.ErrEncoding{Field: "did:key", Reason: fmt.Sprintf("expected %d key bytes, got %d", ed25519.PublicKeySize, len(rawKey))}
	}
	return ed25519.PublicKey(rawKey), nil
}
