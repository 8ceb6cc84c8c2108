// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package identity is the primary package for identifier lifecycle
// management. Registry owns every identifier's key material and key event
// log and is the only surface through which they change.
package identity

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/commitment"
	"github.com/aumos-ai/keri-agent/event"
	"github.com/aumos-ai/keri-agent/keys"
	"github.com/aumos-ai/keri-agent/metrics"
	"github.com/aumos-ai/keri-agent/types"
)

// Options configures a Registry.
type Options struct {
	// Generator supplies key pairs. Defaults to keys.RandomGenerator.
	Generator keys.Generator
	// DigestCode selects the SAID and commitment digest. Defaults to Blake3-256.
	DigestCode cesr.Code
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics defaults to metrics.NopRecorder.
	Metrics metrics.Recorder
}

// entry is the state of one identifier. Its mutex serializes state
// transitions of that identifier only.
type entry struct {
	mu      sync.Mutex
	name    string
	prefix  string
	keys    *keys.KeyMaterial
	pending *commitment.Commitment
	last    event.Event
	kel     []string
}

// Registry maps caller-chosen names to identifiers. All exported methods are
// safe for concurrent use. The table lock is held only for lookups and
// inserts; each identifier has its own lock, so rotations of different
// identifiers run in parallel.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	closed  bool

	gen     keys.Generator
	factory *event.Factory
	builder *commitment.Builder
	log     *zap.Logger
	metrics metrics.Recorder
}

// NewRegistry constructs an empty Registry.
func NewRegistry(opts Options) (*Registry, error) {
	gen := opts.Generator
	if gen == nil {
		gen = keys.RandomGenerator{}
	}
	factory, err := event.NewFactory(opts.DigestCode)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	builder, err := commitment.NewBuilder(opts.DigestCode)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Registry{
		entries: make(map[string]*entry),
		gen:     gen,
		factory: factory,
		builder: builder,
		log:     log.Named("registry"),
		metrics: rec,
	}, nil
}

// Incept creates a new identifier under name. Reusing a registered name is an
// *types.ErrIdentifierExists; the existing identifier is left untouched.
func (r *Registry) Incept(ctx context.Context, name string) (res *InceptionResult, err error) {
	defer r.observe(metrics.OpIncept, name, time.Now(), &err)

	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("identity: incept: %w", err)
	}
	if err := r.checkAvailable(name); err != nil {
		return nil, fmt.Errorf("identity: incept: %w", err)
	}

	km, err := keys.Generate(r.gen)
	if err != nil {
		return nil, fmt.Errorf("identity: incept %s: %w", name, err)
	}
	next, err := r.builder.Commit(types.DefaultThreshold, []ed25519.PublicKey{km.NextPublic()})
	if err != nil {
		return nil, fmt.Errorf("identity: incept %s: commit next key: %w", name, err)
	}
	icp, err := r.factory.BuildInception([]ed25519.PublicKey{km.CurrentPublic()}, next, types.DefaultThreshold)
	if err != nil {
		return nil, fmt.Errorf("identity: incept %s: build event: %w", name, err)
	}
	serialized, err := event.Serialize(icp)
	if err != nil {
		return nil, fmt.Errorf("identity: incept %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("identity: incept %s: %w", name, err)
	}

	e := &entry{
		name:    name,
		prefix:  icp.Prefix(),
		keys:    km,
		pending: next,
		last:    icp,
		kel:     []string{serialized},
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, fmt.Errorf("identity: incept: %w", &types.ErrRegistryClosed{})
	}
	if existing, ok := r.entries[name]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("identity: incept: %w", &types.ErrIdentifierExists{Name: name, AID: existing.prefix})
	}
	r.entries[name] = e
	r.metrics.SetIdentifiers(len(r.entries))
	r.mu.Unlock()

	r.log.Info("identifier incepted",
		zap.String("name", name),
		zap.String("aid", e.prefix),
		zap.String("key_id", km.CurrentKeyID()),
	)

	return &InceptionResult{
		AID:       e.prefix,
		PublicKey: keys.EncodePublicKey(km.CurrentPublic()),
		KELEntry:  serialized,
	}, nil
}

// Rotate moves the identifier to its pre-committed next key and commits to a
// freshly generated one. On any failure the identifier is unchanged.
func (r *Registry) Rotate(ctx context.Context, name string) (res *RotationResult, err error) {
	defer r.observe(metrics.OpRotate, name, time.Now(), &err)

	e, err := r.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("identity: rotate: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rotated, err := e.keys.Rotate(r.gen)
	if err != nil {
		return nil, fmt.Errorf("identity: rotate %s: %w", name, err)
	}
	revealed := []ed25519.PublicKey{rotated.CurrentPublic()}
	sequence := uint64(len(e.kel))

	if err := e.pending.Verify(sequence, types.DefaultThreshold, revealed); err != nil {
		return nil, fmt.Errorf("identity: rotate %s: %w", name, err)
	}
	next, err := r.builder.Commit(types.DefaultThreshold, []ed25519.PublicKey{rotated.NextPublic()})
	if err != nil {
		return nil, fmt.Errorf("identity: rotate %s: commit next key: %w", name, err)
	}
	rot, err := r.factory.BuildRotation(e.prefix, e.last.SAID(), revealed, next, types.DefaultThreshold, sequence-1)
	if err != nil {
		return nil, fmt.Errorf("identity: rotate %s: build event: %w", name, err)
	}
	serialized, err := event.Serialize(rot)
	if err != nil {
		return nil, fmt.Errorf("identity: rotate %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("identity: rotate %s: %w", name, err)
	}

	e.kel = append(e.kel, serialized)
	e.keys = rotated
	e.pending = next
	e.last = rot

	r.log.Info("identifier rotated",
		zap.String("name", name),
		zap.String("aid", e.prefix),
		zap.Uint64("sequence", sequence),
		zap.String("key_id", rotated.CurrentKeyID()),
	)

	return &RotationResult{
		AID:          e.prefix,
		NewPublicKey: keys.EncodePublicKey(rotated.CurrentPublic()),
		KELEntry:     serialized,
	}, nil
}

// Sign signs data with the identifier's current key.
func (r *Registry) Sign(ctx context.Context, name string, data []byte) (res *SignResult, err error) {
	defer r.observe(metrics.OpSign, name, time.Now(), &err)

	e, err := r.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("identity: sign: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("identity: sign %s: %w", name, err)
	}

	e.mu.Lock()
	km := e.keys
	e.mu.Unlock()

	sig, err := km.Sign(data)
	if err != nil {
		return nil, fmt.Errorf("identity: sign %s: %w", name, err)
	}
	return &SignResult{
		Signature: keys.EncodeSignature(sig),
		PublicKey: keys.EncodePublicKey(km.CurrentPublic()),
	}, nil
}

// ExportKEL returns the identifier's serialized events as a pretty-printed
// JSON array, oldest first.
func (r *Registry) ExportKEL(ctx context.Context, name string) (out string, err error) {
	defer r.observe(metrics.OpKEL, name, time.Now(), &err)

	kel, err := r.snapshot(ctx, name)
	if err != nil {
		return "", fmt.Errorf("identity: export KEL: %w", err)
	}
	out, err = event.MarshalLog(kel)
	if err != nil {
		return "", fmt.Errorf("identity: export KEL %s: %w", name, err)
	}
	return out, nil
}

// Audit replays the identifier's KEL from inception and returns the key
// state it establishes.
func (r *Registry) Audit(ctx context.Context, name string) (*event.KeyState, error) {
	kel, err := r.snapshot(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("identity: audit: %w", err)
	}
	state, err := event.ValidateLog(kel)
	if err != nil {
		return nil, fmt.Errorf("identity: audit %s: %w", name, err)
	}
	return state, nil
}

// KeyState reports the current key configuration of the identifier.
func (r *Registry) KeyState(ctx context.Context, name string) (res *KeyState, err error) {
	defer r.observe(metrics.OpState, name, time.Now(), &err)

	e, err := r.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("identity: key state: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("identity: key state %s: %w", name, err)
	}

	e.mu.Lock()
	km, pending, last, count := e.keys, e.pending, e.last, len(e.kel)
	e.mu.Unlock()

	pub := km.CurrentPublic()
	mb, err := keys.PublicKeyMultibase(pub)
	if err != nil {
		return nil, fmt.Errorf("identity: key state %s: %w", name, err)
	}
	did, err := keys.DeriveKeyDID(pub)
	if err != nil {
		return nil, fmt.Errorf("identity: key state %s: %w", name, err)
	}
	sn, err := last.Sequence()
	if err != nil {
		return nil, fmt.Errorf("identity: key state %s: %w", name, err)
	}

	return &KeyState{
		Name:               name,
		AID:                e.prefix,
		Status:             types.StatusActive,
		SequenceNumber:     sn,
		EventCount:         count,
		PublicKey:          keys.EncodePublicKey(pub),
		QualifiedKey:       commitment.QualifiedKey(pub),
		PublicKeyMultibase: mb,
		DIDKey:             did,
		NextThreshold:      pending.Threshold,
		NextDigests:        append([]string(nil), pending.Digests...),
		LastEventSAID:      last.SAID(),
	}, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names(_ context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DigestCode returns the code of the digest used for SAIDs and commitments.
func (r *Registry) DigestCode() cesr.Code {
	return r.factory.Code()
}

// Len returns the number of registered identifiers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close drops all identifier state. Later calls fail with
// *types.ErrRegistryClosed. Close is idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	n := len(r.entries)
	r.entries = make(map[string]*entry)
	r.closed = true
	r.metrics.SetIdentifiers(0)
	r.mu.Unlock()

	r.log.Info("registry closed", zap.Int("identifiers_dropped", n))
	return nil
}

func (r *Registry) lookup(name string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, &types.ErrRegistryClosed{}
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, &types.ErrIdentifierNotFound{Name: name}
	}
	return e, nil
}

func (r *Registry) checkAvailable(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return &types.ErrRegistryClosed{}
	}
	if existing, ok := r.entries[name]; ok {
		return &types.ErrIdentifierExists{Name: name, AID: existing.prefix}
	}
	return nil
}

// snapshot returns a copy of the identifier's KEL.
func (r *Registry) snapshot(ctx context.Context, name string) ([]string, error) {
	e, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.kel...), nil
}

func (r *Registry) observe(op, name string, start time.Time, errp *error) {
	err := *errp
	r.metrics.Observe(op, time.Since(start), err)
	if err != nil {
		r.log.Warn("operation failed",
			zap.String("op", op),
			zap.String("name", name),
			zap.Error(err),
		)
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &types.ErrInvalidName{Name: name, Reason: "must not be empty"}
	}
	return nil
}
