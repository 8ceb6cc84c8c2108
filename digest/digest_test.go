// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package digest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/types"
)

func TestQB64_AllCodes(t *testing.T) {
	data := []byte("DKxy2sgzfplyr-tgwIxS19f2OchFHtLwPWD3v4oYimBx")
	seen := map[string]bool{}

	for _, code := range Supported() {
		t.Run(string(code), func(t *testing.T) {
			a, err := QB64(code, data)
			require.NoError(t, err)
			b, err := QB64(code, data)
			require.NoError(t, err)

			assert.Equal(t, a, b, "digest must be deterministic")
			assert.Len(t, a, 44)
			assert.Equal(t, string(code), a[:1])
			assert.False(t, seen[a], "algorithms must not collide")
			seen[a] = true

			ok, err := Matches(a, data)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = Matches(a, append([]byte("!"), data...))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSum_Unsupported(t *testing.T) {
	_, err := Sum(cesr.Ed25519Transferable, []byte("x"))
	var unsupported *types.ErrUnsupportedDigest
	assert.True(t, errors.As(err, &unsupported))

	assert.Error(t, Validate("Z"))
	assert.NoError(t, Validate(Default))
}

func TestMatches_NotADigest(t *testing.T) {
	key := cesr.MustEncode(cesr.Ed25519Transferable, make([]byte, 32))
	_, err := Matches(key, []byte("x"))
	var unsupported *types.ErrUnsupportedDigest
	assert.True(t, errors.As(err, &unsupported))
}
