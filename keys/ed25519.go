// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package keys holds the Ed25519 key material behind an identifier: the
// current signing pair and the pre-rotated next pair whose public key is
// only ever published as a commitment.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/sha256-simd"

	"github.com/aumos-ai/keri-agent/types"
)

// KeyPair is a single Ed25519 key pair.
type KeyPair struct {
	// KeyID is a stable identifier derived from the public key, used for log correlation.
	KeyID      string
	Algorithm  types.KeyAlgorithm
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

func newKeyPair(pub ed25519.PublicKey, priv ed25519.PrivateKey) *KeyPair {
	return &KeyPair{
		KeyID:      uuid.NewSHA1(uuid.NameSpaceOID, pub).String(),
		Algorithm:  types.KeyAlgorithmEd25519,
		PublicKey:  pub,
		PrivateKey: priv,
	}
}

// Generator produces fresh key pairs.
type Generator interface {
	NewKeyPair() (*KeyPair, error)
}

// RandomGenerator draws key pairs from a cryptographically secure source.
type RandomGenerator struct {
	// Rand overrides the entropy source. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// NewKeyPair generates an Ed25519 key pair.
func (g RandomGenerator) NewKeyPair() (*KeyPair, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	pub, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, &types.ErrKeyGeneration{Reason: err.Error()}
	}
	return newKeyPair(pub, priv), nil
}

// SeedGenerator derives a deterministic sequence of key pairs from a seed.
// The i-th pair uses SHA-256(seed || i) as its Ed25519 seed. It is intended
// for reproducible tests and demos; it is safe for concurrent use.
type SeedGenerator struct {
	mu      sync.Mutex
	seed    []byte
	counter uint64
}

// NewSeedGenerator returns a SeedGenerator over a copy of seed.
func NewSeedGenerator(seed []byte) *SeedGenerator {
	return &SeedGenerator{seed: append([]byte(nil), seed...)}
}

// NewKeyPair derives the next key pair in the sequence.
func (g *SeedGenerator) NewKeyPair() (*KeyPair, error) {
	if len(g.seed) == 0 {
		return nil, &types.ErrKeyGeneration{Reason: "empty seed"}
	}
	g.mu.Lock()
	n := g.counter
	g.counter++
	g.mu.Unlock()

	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], n)
	h := sha256.New()
	h.Write(g.seed)
	h.Write(ctr[:])
	priv := ed25519.NewKeyFromSeed(h.Sum(nil))
	return newKeyPair(priv.Public().(ed25519.PublicKey), priv), nil
}

// KeyMaterial is the current and next key pair of one identifier.
// A KeyMaterial value is never mutated; rotation returns a new one.
type KeyMaterial struct {
	current *KeyPair
	next    *KeyPair
}

// Generate creates fresh current and next key pairs.
func Generate(gen Generator) (*KeyMaterial, error) {
	current, err := gen.NewKeyPair()
	if err != nil {
		return nil, fmt.Errorf("keys: generate current key: %w", err)
	}
	next, err := gen.NewKeyPair()
	if err != nil {
		return nil, fmt.Errorf("keys: generate next key: %w", err)
	}
	return &KeyMaterial{current: current, next: next}, nil
}

// CurrentPublic returns a copy of the current signing public key.
func (m *KeyMaterial) CurrentPublic() ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), m.current.PublicKey...)
}

// NextPublic returns a copy of the pre-rotated next public key.
func (m *KeyMaterial) NextPublic() ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), m.next.PublicKey...)
}

// CurrentKeyID returns the key ID of the current signing key.
func (m *KeyMaterial) CurrentKeyID() string { return m.current.KeyID }

// NextKeyID returns the key ID of the next key.
func (m *KeyMaterial) NextKeyID() string { return m.next.KeyID }

// Sign produces an Ed25519 signature over message with the current private key.
func (m *KeyMaterial) Sign(message []byte) ([]byte, error) {
	if m == nil || m.current == nil || len(m.current.PrivateKey) != ed25519.PrivateKeySize {
		return nil, &types.ErrSigning{Reason: "current private key not available"}
	}
	return ed25519.Sign(m.current.PrivateKey, message), nil
}
