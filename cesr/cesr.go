// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package cesr encodes fixed-size cryptographic primitives in the qualified
// base64 ("qb64") text domain used by KERI events. A derivation code replaces
// the leading pad characters of the base64url encoding of the raw bytes, so
// the encoded length is always a multiple of four and the code is readable
// as the first one or two characters.
//
// Only the primitives needed by single-key inception and rotation are
// supported; the binary stream domain is not implemented.
package cesr

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aumos-ai/keri-agent/types"
)

// Code is a qb64 derivation code.
type Code string

const (
	// Ed25519Transferable is a transferable Ed25519 verification key.
	Ed25519Transferable Code = "D"
	// Ed25519NonTransferable is a non-transferable Ed25519 verification key.
	Ed25519NonTransferable Code = "B"
	// Blake3_256 is a 256-bit Blake3 digest.
	Blake3_256 Code = "E"
	// Blake2b_256 is a 256-bit Blake2b digest.
	Blake2b_256 Code = "F"
	// SHA3_256 is a 256-bit SHA3 digest.
	SHA3_256 Code = "H"
	// SHA2_256 is a 256-bit SHA2 digest.
	SHA2_256 Code = "I"
	// Ed25519Sig is an Ed25519 signature.
	Ed25519Sig Code = "0B"
)

// rawSizes maps each supported code to the length of its raw material.
var rawSizes = map[Code]int{
	Ed25519Transferable:    32,
	Ed25519NonTransferable: 32,
	Blake3_256:             32,
	Blake2b_256:            32,
	SHA3_256:               32,
	SHA2_256:               32,
	Ed25519Sig:             64,
}

var b64 = base64.RawURLEncoding

// RawSize returns the raw byte length for code and whether the code is known.
func RawSize(code Code) (int, bool) {
	n, ok := rawSizes[code]
	return n, ok
}

// TextSize returns the qb64 length for code and whether the code is known.
func TextSize(code Code) (int, bool) {
	n, ok := RawSize(code)
	if !ok {
		return 0, false
	}
	return (padSize(n) + n) * 4 / 3, true
}

// Encode returns the qb64 text of raw qualified by code.
func Encode(code Code, raw []byte) (string, error) {
	size, ok := RawSize(code)
	if !ok {
		return "", &types.ErrEncoding{Field: "qb64", Reason: fmt.Sprintf("unknown code %q", code)}
	}
	if len(raw) != size {
		return "", &types.ErrEncoding{Field: "qb64", Reason: fmt.Sprintf("code %s expects %d raw bytes, got %d", code, size, len(raw))}
	}
	pad := padSize(size)
	padded := make([]byte, pad+size)
	copy(padded[pad:], raw)
	text := b64.EncodeToString(padded)
	return string(code) + text[len(code):], nil
}

// MustEncode is Encode for material whose size is known to be correct.
func MustEncode(code Code, raw []byte) string {
	s, err := Encode(code, raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode splits a qb64 string into its code and raw bytes.
func Decode(qb64 string) (Code, []byte, error) {
	code, err := codeOf(qb64)
	if err != nil {
		return "", nil, err
	}
	size, _ := RawSize(code)
	pad := padSize(size)
	want, _ := TextSize(code)
	if len(qb64) != want {
		return "", nil, &types.ErrEncoding{Field: "qb64", Reason: fmt.Sprintf("code %s expects %d characters, got %d", code, want, len(qb64))}
	}
	text := strings.Repeat("A", len(code)) + qb64[len(code):]
	padded, err := b64.DecodeString(text)
	if err != nil {
		return "", nil, &types.ErrEncoding{Field: "qb64", Reason: err.Error()}
	}
	for _, b := range padded[:pad] {
		if b != 0 {
			return "", nil, &types.ErrEncoding{Field: "qb64", Reason: "non-zero lead bits"}
		}
	}
	return code, padded[pad:], nil
}

func codeOf(qb64 string) (Code, error) {
	if qb64 == "" {
		return "", &types.ErrEncoding{Field: "qb64", Reason: "empty"}
	}
	// Two-character codes start with a digit selector.
	if qb64[0] >= '0' && qb64[0] <= '9' {
		if len(qb64) < 2 {
			return "", &types.ErrEncoding{Field: "qb64", Reason: "truncated code"}
		}
		code := Code(qb64[:2])
		if _, ok := rawSizes[code]; !ok {
			return "", &types.ErrEncoding{Field: "qb64", Reason: fmt.Sprintf("unknown code %q", code)}
		}
		return code, nil
	}
	code := Code(qb64[:1])
	if _, ok := rawSizes[code]; !ok {
		return "", &types.ErrEncoding{Field: "qb64", Reason: fmt.Sprintf("unknown code %q", code)}
	}
	return code, nil
}

func padSize(n int) int {
	return (3 - n%3) % 3
}
