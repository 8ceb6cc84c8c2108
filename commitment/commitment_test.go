// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package commitment

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/keys"
	"github.com/aumos-ai/keri-agent/types"
)

func newKey(t *testing.T, gen keys.Generator) ed25519.PublicKey {
	t.Helper()
	kp, err := gen.NewKeyPair()
	require.NoError(t, err)
	return kp.PublicKey
}

func TestCommit_Deterministic(t *testing.T) {
	gen := keys.NewSeedGenerator([]byte("commit"))
	key := newKey(t, gen)

	for _, code := range []cesr.Code{cesr.Blake3_256, cesr.Blake2b_256, cesr.SHA3_256, cesr.SHA2_256} {
		t.Run(string(code), func(t *testing.T) {
			b, err := NewBuilder(code)
			require.NoError(t, err)

			c1, err := b.Commit(1, []ed25519.PublicKey{key})
			require.NoError(t, err)
			c2, err := b.Commit(1, []ed25519.PublicKey{key})
			require.NoError(t, err)

			assert.Equal(t, c1, c2)
			require.Len(t, c1.Digests, 1)
			assert.Equal(t, string(code), c1.Digests[0][:1])
			assert.Equal(t, "1", c1.ThresholdHex())
		})
	}
}

func TestCommit_DoesNotExposeKey(t *testing.T) {
	key := newKey(t, keys.RandomGenerator{})
	b, err := NewBuilder("")
	require.NoError(t, err)

	c, err := b.Commit(1, []ed25519.PublicKey{key})
	require.NoError(t, err)
	assert.NotEqual(t, QualifiedKey(key), c.Digests[0])
	assert.Equal(t, cesr.Blake3_256, b.Code)
}

func TestCommit_InvalidKeySet(t *testing.T) {
	b, err := NewBuilder(cesr.Blake3_256)
	require.NoError(t, err)
	key := newKey(t, keys.RandomGenerator{})

	cases := map[string]struct {
		threshold uint16
		keys      []ed25519.PublicKey
	}{
		"empty":            {1, nil},
		"zero threshold":   {0, []ed25519.PublicKey{key}},
		"threshold > keys": {2, []ed25519.PublicKey{key}},
		"short key":        {1, []ed25519.PublicKey{key[:16]}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := b.Commit(tc.threshold, tc.keys)
			var invalid *types.ErrInvalidKeySet
			assert.True(t, errors.As(err, &invalid), "got %v", err)
		})
	}
}

func TestNewBuilder_UnsupportedCode(t *testing.T) {
	_, err := NewBuilder(cesr.Ed25519Transferable)
	var unsupported *types.ErrUnsupportedDigest
	assert.True(t, errors.As(err, &unsupported))
}

func TestVerify(t *testing.T) {
	gen := keys.NewSeedGenerator([]byte("verify"))
	next := newKey(t, gen)
	other := newKey(t, gen)

	b, err := NewBuilder(cesr.SHA2_256)
	require.NoError(t, err)
	c, err := b.Commit(1, []ed25519.PublicKey{next})
	require.NoError(t, err)

	assert.NoError(t, c.Verify(1, 1, []ed25519.PublicKey{next}))

	var mismatch *types.ErrCommitmentMismatch
	require.True(t, errors.As(c.Verify(3, 1, []ed25519.PublicKey{other}), &mismatch))
	assert.Equal(t, uint64(3), mismatch.Sequence)

	assert.True(t, errors.As(c.Verify(1, 2, []ed25519.PublicKey{next}), &mismatch))
	assert.True(t, errors.As(c.Verify(1, 1, []ed25519.PublicKey{next, other}), &mismatch))
	assert.True(t, errors.As(c.Verify(1, 1, []ed25519.PublicKey{next[:8]}), &mismatch))
}
