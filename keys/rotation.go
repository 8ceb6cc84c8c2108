// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package keys

import "fmt"

// Rotate promotes the next key pair to current and generates a fresh next pair.
// The receiver is left unchanged so a failed rotation has no effect on the
// caller's state.
func (m *KeyMaterial) Rotate(gen Generator) (*KeyMaterial, error) {
	fresh, err := gen.NewKeyPair()
	if err != nil {
		return nil, fmt.Errorf("keys: rotate: generate next key: %w", err)
	}
	return &KeyMaterial{current: m.next, next: fresh}, nil
}
