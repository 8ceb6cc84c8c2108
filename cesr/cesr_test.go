// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package cesr

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aumos-ai/keri-agent/types"
)

func TestEncodeDecode(t *testing.T) {
	key := bytes.Repeat([]byte{0xab}, 32)
	sig := bytes.Repeat([]byte{0x42}, 64)

	tests := []struct {
		name    string
		code    Code
		raw     []byte
		wantLen int
	}{
		{"transferable key", Ed25519Transferable, key, 44},
		{"non-transferable key", Ed25519NonTransferable, key, 44},
		{"blake3 digest", Blake3_256, key, 44},
		{"sha2 digest", SHA2_256, key, 44},
		{"signature", Ed25519Sig, sig, 88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qb64, err := Encode(tt.code, tt.raw)
			require.NoError(t, err)
			assert.Len(t, qb64, tt.wantLen)
			assert.Equal(t, string(tt.code), qb64[:len(tt.code)])

			code, raw, err := Decode(qb64)
			require.NoError(t, err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.raw, raw)
		})
	}
}

func TestEncode_WrongSize(t *testing.T) {
	_, err := Encode(Blake3_256, []byte{1, 2, 3})
	var encErr *types.ErrEncoding
	assert.True(t, errors.As(err, &encErr))
}

func TestDecode_Invalid(t *testing.T) {
	valid := MustEncode(Ed25519Transferable, make([]byte, 32))

	cases := map[string]string{
		"empty":        "",
		"unknown code": "Z" + valid[1:],
		"truncated":    valid[:40],
		"bad alphabet": "D" + valid[1:43] + "=",
		"lead bits":    "D_" + valid[2:],
		"short 2-char": "0",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode(in)
			var encErr *types.ErrEncoding
			assert.True(t, errors.As(err, &encErr), "got %v", err)
		})
	}
}

func TestTextSize(t *testing.T) {
	for code, want := range map[Code]int{Ed25519Transferable: 44, Blake3_256: 44, Ed25519Sig: 88} {
		n, ok := TextSize(code)
		require.True(t, ok)
		assert.Equal(t, want, n)
		assert.Len(t, MustEncode(code, make([]byte, rawSizes[code])), n)
	}
	_, ok := TextSize("Z")
	assert.False(t, ok)
}
