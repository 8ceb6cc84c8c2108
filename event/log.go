// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package event

import (
	"fmt"

	"github.com/aumos-ai/keri-agent/types"
)

// KeyState is the key configuration established by the last event of a log.
type KeyState struct {
	Prefix        string   `json:"prefix"`
	Sequence      uint64   `json:"sequence"`
	LastSAID      string   `json:"last_said"`
	SigningKeys   []string `json:"signing_keys"`
	NextThreshold uint16   `json:"next_threshold"`
	NextDigests   []string `json:"next_digests"`
	EventCount    int      `json:"event_count"`
}

// ValidateLog replays a key event log and returns the resulting key state.
//
// Every entry must be byte-identical to the canonical serialization of the
// event it decodes to. It checks that the first entry is an inception whose
// prefix is its SAID,
// that every SAID matches its event content, that the prefix never changes,
// that entry i carries sequence number i and the SAID of entry i-1, and that
// every rotation reveals keys matching the commitment of the event before it.
func ValidateLog(entries []string) (*KeyState, error) {
	if len(entries) == 0 {
		return nil, &types.ErrInvalidLog{Sequence: 0, Reason: "log is empty"}
	}

	var (
		prefix string
		prev   Event
	)
	for i, raw := range entries {
		e, err := Deserialize(raw)
		if err != nil {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: err.Error()}
		}
		canonical, err := Serialize(e)
		if err != nil {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: err.Error()}
		}
		if canonical != raw {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: "entry is not in canonical serialization"}
		}
		if err := VerifySAID(e); err != nil {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: err.Error()}
		}
		sn, err := e.Sequence()
		if err != nil {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: err.Error()}
		}
		if sn != uint64(i) {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: fmt.Sprintf("sequence number %d at position %d", sn, i)}
		}
		if _, err := PublicKeys(e); err != nil {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: err.Error()}
		}

		if i == 0 {
			icp, ok := e.(*InceptionEvent)
			if !ok {
				return nil, &types.ErrInvalidLog{Sequence: 0, Reason: fmt.Sprintf("first event is %s, want %s", e.Kind(), types.EventKindInception)}
			}
			if icp.Prefix() != icp.SAID() {
				return nil, &types.ErrInvalidLog{Sequence: 0, Reason: "prefix is not the inception SAID"}
			}
			prefix = icp.Prefix()
			prev = e
			continue
		}

		rot, ok := e.(*RotationEvent)
		if !ok {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: fmt.Sprintf("event is %s, want %s", e.Kind(), types.EventKindRotation)}
		}
		if rot.Prefix() != prefix {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: fmt.Sprintf("prefix %s does not match %s", rot.Prefix(), prefix)}
		}
		if rot.Prior != prev.SAID() {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: "prior event digest does not chain"}
		}
		if err := CheckRotation(prev, rot); err != nil {
			return nil, &types.ErrInvalidLog{Sequence: i, Reason: err.Error()}
		}
		prev = e
	}

	next, err := prev.NextCommitment()
	if err != nil {
		return nil, &types.ErrInvalidLog{Sequence: len(entries) - 1, Reason: err.Error()}
	}
	sn, _ := prev.Sequence()
	return &KeyState{
		Prefix:        prefix,
		Sequence:      sn,
		LastSAID:      prev.SAID(),
		SigningKeys:   prev.SigningKeys(),
		NextThreshold: next.Threshold,
		NextDigests:   next.Digests,
		EventCount:    len(entries),
	}, nil
}

// CheckRotation verifies that rot reveals keys committed to by prior.
func CheckRotation(prior Event, rot *RotationEvent) error {
	sn, err := rot.Sequence()
	if err != nil {
		return err
	}
	committed, err := prior.NextCommitment()
	if err != nil {
		return err
	}
	revealed, err := PublicKeys(rot)
	if err != nil {
		return err
	}
	kt, err := rot.SigningThreshold()
	if err != nil {
		return err
	}
	return committed.Verify(sn, kt, revealed)
}
