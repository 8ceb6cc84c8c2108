// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aumos-ai/keri-agent/types"
)

// Serialize returns the canonical JSON encoding of e. The same event always
// yields the same bytes, which is what SAIDs are computed over.
func Serialize(e Event) (string, error) {
	if e == nil {
		return "", &types.ErrSerialization{Op: "encode", Reason: "nil event"}
	}
	raw, err := marshal(e)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Deserialize parses a serialized event, dispatching on its "t" field.
func Deserialize(s string) (Event, error) {
	var probe struct {
		Type types.EventKind `json:"t"`
	}
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, &types.ErrSerialization{Op: "decode", Reason: err.Error()}
	}

	var e Event
	switch probe.Type {
	case types.EventKindInception:
		e = &InceptionEvent{}
	case types.EventKindRotation:
		e = &RotationEvent{}
	default:
		return nil, &types.ErrSerialization{Op: "decode", Reason: fmt.Sprintf("unknown event type %q", probe.Type)}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(e); err != nil {
		return nil, &types.ErrSerialization{Op: "decode", Reason: err.Error()}
	}

	sn, err := e.Sequence()
	if err != nil {
		return nil, err
	}
	if probe.Type == types.EventKindInception && sn != 0 {
		return nil, &types.ErrSerialization{Op: "decode", Reason: fmt.Sprintf("inception sequence must be 0, got %d", sn)}
	}
	return e, nil
}

// MarshalLog renders serialized events as a pretty-printed JSON array.
func MarshalLog(entries []string) (string, error) {
	if entries == nil {
		entries = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return "", &types.ErrSerialization{Op: "encode", Reason: err.Error()}
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// UnmarshalLog parses the output of MarshalLog.
func UnmarshalLog(s string) ([]string, error) {
	var entries []string
	if err := json.Unmarshal([]byte(s), &entries); err != nil {
		return nil, &types.ErrSerialization{Op: "decode", Reason: err.Error()}
	}
	return entries, nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, &types.ErrSerialization{Op: "encode", Reason: err.Error()}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
