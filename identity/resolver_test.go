// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package identity

import (
	"context"
	"crypto/ed25519"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aumos-ai/keri-agent/keys"
	"github.com/aumos-ai/keri-agent/types"
)

// kelServer serves reg's logs the way the HTTP driver does.
func kelServer(t *testing.T, reg *Registry) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/kel" {
			http.NotFound(w, req)
			return
		}
		out, err := reg.ExportKEL(req.Context(), req.URL.Query().Get("name"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(out))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t, Options{})
	inc, err := reg.Incept(ctx, "remote")
	require.NoError(t, err)
	rot, err := reg.Rotate(ctx, "remote")
	require.NoError(t, err)

	srv := kelServer(t, reg)
	res := NewResolver(ResolverOptions{HTTPClient: srv.Client()})

	state, err := res.Resolve(ctx, srv.URL+"/", "remote", inc.AID)
	require.NoError(t, err)
	assert.Equal(t, inc.AID, state.Prefix)
	assert.Equal(t, uint64(1), state.Sequence)

	pub, err := CurrentPublicKey(state)
	require.NoError(t, err)
	assert.Equal(t, rot.NewPublicKey, keys.EncodePublicKey(pub))

	sig, err := reg.Sign(ctx, "remote", []byte("m"))
	require.NoError(t, err)
	raw, err := keys.DecodePublicKey(sig.PublicKey)
	require.NoError(t, err)
	assert.True(t, ed25519.PublicKey(raw).Equal(pub))
}

func TestResolver_Failures(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t, Options{})
	_, err := reg.Incept(ctx, "remote")
	require.NoError(t, err)
	srv := kelServer(t, reg)
	res := NewResolver(ResolverOptions{HTTPClient: srv.Client()})

	var rf *types.ErrResolutionFailed

	_, err = res.Resolve(ctx, srv.URL, "remote", "Eother")
	assert.True(t, errors.As(err, &rf), "prefix mismatch: %v", err)

	_, err = res.Resolve(ctx, srv.URL, "missing", "")
	assert.True(t, errors.As(err, &rf), "404: %v", err)

	_, err = res.Resolve(ctx, "not a url", "remote", "")
	assert.True(t, errors.As(err, &rf), "bad base: %v", err)

	var in *types.ErrInvalidName
	_, err = res.Resolve(ctx, srv.URL, " ", "")
	assert.True(t, errors.As(err, &in))
}

func TestResolver_RejectsTamperedLog(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t, Options{})
	_, err := reg.Incept(ctx, "x")
	require.NoError(t, err)
	kel, err := reg.ExportKEL(ctx, "x")
	require.NoError(t, err)

	tampered := strings.Replace(kel, `\"bt\":\"0\"`, `\"bt\":\"1\"`, 1)
	require.NotEqual(t, kel, tampered)
	_, err = ResolveLog(tampered, "")
	var il *types.ErrInvalidLog
	assert.True(t, errors.As(err, &il), "%v", err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(tampered))
	}))
	defer srv.Close()
	_, err = NewResolver(ResolverOptions{}).Resolve(ctx, srv.URL, "x", "")
	assert.True(t, errors.As(err, &il), "%v", err)
}

func TestCurrentPublicKey_Empty(t *testing.T) {
	_, err := CurrentPublicKey(nil)
	assert.Error(t, err)
}
