// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/types"
)

// Verify reports whether signature is a valid Ed25519 signature over message.
func Verify(publicKey ed25519.PublicKey, message, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, message, signature)
}

// VerifyEncoded checks a detached signature carried across a transport boundary.
//
// Both inputs are standard padded base64. The public key may also be a qb64
// Ed25519 verification key ("D…" or "B…") or a did:key, and the signature a
// qb64 "0B…" signature. A string is read as qb64 only when it has exactly the
// qb64 length for its code and no padding.
//
// A signature that does not match returns (false, nil). Malformed base64 is an
// *types.ErrEncoding and material of the wrong size is an *types.ErrVerification.
func VerifyEncoded(data []byte, signature, publicKey string) (bool, error) {
	sig, err := decodeSignature(signature)
	if err != nil {
		return false, err
	}
	pub, err := DecodePublicKey(publicKey)
	if err != nil {
		return false, err
	}
	if len(sig) != ed25519.SignatureSize {
		return false, &types.ErrVerification{Reason: fmt.Sprintf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(sig))}
	}
	return Verify(pub, data, sig), nil
}

// EncodePublicKey returns the standard base64 form of a public key used at the
// transport boundary.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub)
}

// EncodeSignature returns the standard base64 form of a signature.
func EncodeSignature(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}

// DecodePublicKey accepts a standard base64, qb64 or did:key Ed25519 public key.
func DecodePublicKey(s string) (ed25519.PublicKey, error) {
	if strings.HasPrefix(s, "did:key:") {
		return ExtractPublicKeyFromKeyDID(s)
	}
	var raw []byte
	if isQB64(s, cesr.Ed25519Transferable) || isQB64(s, cesr.Ed25519NonTransferable) {
		_, decoded, err := cesr.Decode(s)
		if err != nil {
			return nil, &types.ErrEncoding{Field: "public key", Reason: err.Error()}
		}
		raw = decoded
	} else {
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, &types.ErrEncoding{Field: "public key", Reason: err.Error()}
		}
		raw = decoded
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, &types.ErrVerification{Reason: fmt.Sprintf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))}
	}
	return ed25519.PublicKey(raw), nil
}

func decodeSignature(s string) ([]byte, error) {
	if isQB64(s, cesr.Ed25519Sig) {
		_, raw, err := cesr.Decode(s)
		if err != nil {
			return nil, &types.ErrEncoding{Field: "signature", Reason: err.Error()}
		}
		return raw, nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &types.ErrEncoding{Field: "signature", Reason: err.Error()}
	}
	return raw, nil
}

// isQB64 reports whether s has the exact shape of a qb64 value for code. Any
// other string is decoded as standard base64.
func isQB64(s string, code cesr.Code) bool {
	n, ok := cesr.TextSize(code)
	return ok && len(s) == n && strings.HasPrefix(s, string(code)) && !strings.ContainsAny(s, "=+/")
}
