// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package identity

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aumos-ai/keri-agent/cesr"
	"github.com/aumos-ai/keri-agent/event"
	"github.com/aumos-ai/keri-agent/types"
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// HTTPClient fetches remote logs. Defaults to a client with a 10s timeout.
	HTTPClient *http.Client
	// MaxResponseBytes caps the size of a fetched log (default 1 MiB).
	MaxResponseBytes int64
}

// Resolver fetches another agent's key event log from its /kel endpoint and
// replays it locally. Nothing in the response is trusted until the replay
// succeeds.
type Resolver struct {
	httpClient       *http.Client
	maxResponseBytes int64
}

// NewResolver constructs a Resolver with the provided options.
func NewResolver(opts ResolverOptions) *Resolver {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	maxBytes := opts.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20 // 1 MiB
	}
	return &Resolver{
		httpClient:       client,
		maxResponseBytes: maxBytes,
	}
}

// Resolve fetches the log for name from the agent at baseURL and returns its
// replayed key state. A non-empty aid must match the log's prefix.
func (r *Resolver) Resolve(ctx context.Context, baseURL, name, aid string) (*event.KeyState, error) {
	endpoint, err := kelURL(baseURL, name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &types.ErrResolutionFailed{Source: endpoint, Reason: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &types.ErrResolutionFailed{Source: endpoint, Reason: fmt.Sprintf("HTTP fetch: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.ErrResolutionFailed{Source: endpoint, Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxResponseBytes))
	if err != nil {
		return nil, &types.ErrResolutionFailed{Source: endpoint, Reason: fmt.Sprintf("read body: %v", err)}
	}
	return ResolveLog(string(body), aid)
}

// ResolveLog replays a serialized log as produced by Registry.ExportKEL. A
// non-empty aid must match the log's prefix.
func ResolveLog(kel, aid string) (*event.KeyState, error) {
	entries, err := event.UnmarshalLog(kel)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	state, err := event.ValidateLog(entries)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	if aid != "" && state.Prefix != aid {
		return nil, &types.ErrResolutionFailed{Source: "kel", Reason: fmt.Sprintf("log prefix %q does not match requested AID %q", state.Prefix, aid)}
	}
	return state, nil
}

// CurrentPublicKey extracts the first signing key of a resolved state.
func CurrentPublicKey(state *event.KeyState) (ed25519.PublicKey, error) {
	if state == nil || len(state.SigningKeys) == 0 {
		return nil, fmt.Errorf("resolver: key state has no signing keys")
	}
	code, raw, err := cesr.Decode(state.SigningKeys[0])
	if err != nil {
		return nil, fmt.Errorf("resolver: decode signing key: %w", err)
	}
	if code != cesr.Ed25519Transferable {
		return nil, fmt.Errorf("resolver: unexpected signing key code %q", code)
	}
	return ed25519.PublicKey(raw), nil
}

// kelURL builds <base>/kel?name=<name>.
func kelURL(baseURL, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", &types.ErrInvalidName{Name: name, Reason: "must not be empty"}
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &types.ErrResolutionFailed{Source: baseURL, Reason: "base URL must be absolute"}
	}
	u.Path += "/kel"
	u.RawQuery = url.Values{"name": {name}}.Encode()
	return u.String(), nil
}
