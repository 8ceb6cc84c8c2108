// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aumos-ai/keri-agent/event"
	"github.com/aumos-ai/keri-agent/identity"
	"github.com/aumos-ai/keri-agent/keys"
	"github.com/aumos-ai/keri-agent/metrics"
)

type fixture struct {
	srv *httptest.Server
	reg *identity.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	promReg := prometheus.NewRegistry()
	rec := metrics.NewPrometheus()
	require.NoError(t, rec.Register(promReg))

	reg, err := identity.NewRegistry(identity.Options{
		Generator: keys.NewSeedGenerator([]byte("api-test")),
		Metrics:   rec,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	h, err := NewHandler(Options{Registry: reg, Metrics: rec, Gatherer: promReg, Version: "test"})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, reg: reg}
}

func (f *fixture) post(t *testing.T, path string, body any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(f.srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Error
}

func TestNewHandler_RequiresRegistry(t *testing.T) {
	_, err := NewHandler(Options{})
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st statusResponse
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, "active", st.Status)
	assert.Equal(t, "test", st.Version)
	assert.Equal(t, 0, st.Identifiers)
	assert.Equal(t, "E", st.Digest)
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, body := f.post(t, "/inception", nameRequest{Name: "alice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var inc identity.InceptionResult
	require.NoError(t, json.Unmarshal(body, &inc))
	assert.NotEmpty(t, inc.AID)

	resp, body = f.post(t, "/rotation", nameRequest{Name: "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var rot identity.RotationResult
	require.NoError(t, json.Unmarshal(body, &rot))
	assert.Equal(t, inc.AID, rot.AID)
	assert.NotEqual(t, inc.PublicKey, rot.NewPublicKey)

	data := base64.StdEncoding.EncodeToString([]byte("hello"))
	resp, body = f.post(t, "/sign", signRequest{Name: "alice", Data: data})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var sig identity.SignResult
	require.NoError(t, json.Unmarshal(body, &sig))
	assert.Equal(t, rot.NewPublicKey, sig.PublicKey)

	resp, body = f.post(t, "/verify", verifyRequest{Data: data, Signature: sig.Signature, PublicKey: sig.PublicKey})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var v verifyResponse
	require.NoError(t, json.Unmarshal(body, &v))
	assert.True(t, v.Valid)

	other := base64.StdEncoding.EncodeToString([]byte("hellO"))
	_, body = f.post(t, "/verify", verifyRequest{Data: other, Signature: sig.Signature, PublicKey: sig.PublicKey})
	require.NoError(t, json.Unmarshal(body, &v))
	assert.False(t, v.Valid)

	resp, body = f.get(t, "/kel?name=alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries, err := event.UnmarshalLog(string(body))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	state, err := event.ValidateLog(entries)
	require.NoError(t, err)
	assert.Equal(t, inc.AID, state.Prefix)

	resp, body = f.get(t, "/keystate?name=alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ks identity.KeyState
	require.NoError(t, json.Unmarshal(body, &ks))
	assert.Equal(t, uint64(1), ks.SequenceNumber)
	assert.Equal(t, rot.NewPublicKey, ks.PublicKey)

	_, body = f.get(t, "/status")
	var st statusResponse
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 1, st.Identifiers)
}

func TestErrorStatus(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.post(t, "/inception", nameRequest{Name: "bob"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"duplicate name", http.MethodPost, "/inception", nameRequest{Name: "bob"}, http.StatusConflict},
		{"empty name", http.MethodPost, "/inception", nameRequest{}, http.StatusBadRequest},
		{"rotate unknown", http.MethodPost, "/rotation", nameRequest{Name: "nobody"}, http.StatusNotFound},
		{"rotate empty", http.MethodPost, "/rotation", nameRequest{}, http.StatusBadRequest},
		{"sign unknown", http.MethodPost, "/sign", signRequest{Name: "nobody", Data: ""}, http.StatusNotFound},
		{"sign bad data", http.MethodPost, "/sign", signRequest{Name: "bob", Data: "%%%"}, http.StatusBadRequest},
		{"kel unknown", http.MethodGet, "/kel?name=nobody", nil, http.StatusNotFound},
		{"kel missing name", http.MethodGet, "/kel", nil, http.StatusBadRequest},
		{"keystate unknown", http.MethodGet, "/keystate?name=nobody", nil, http.StatusNotFound},
		{"verify bad key", http.MethodPost, "/verify", verifyRequest{Data: "", Signature: "AA==", PublicKey: "AA=="}, http.StatusBadRequest},
		{"verify bad encoding", http.MethodPost, "/verify", verifyRequest{Data: "", Signature: "%%%", PublicKey: "AA=="}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var (
				resp *http.Response
				body []byte
			)
			if tc.method == http.MethodGet {
				resp, body = f.get(t, tc.path)
			} else {
				resp, body = f.post(t, tc.path, tc.body)
			}
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
			assert.NotEmpty(t, errorOf(t, body))
		})
	}
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{"{", `{"name":"x","extra":1}`, ""} {
		resp, err := http.Post(f.srv.URL+"/inception", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		b := readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Contains(t, errorOf(t, b), "invalid request body")
	}
}

func TestClosedRegistry(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Close())
	resp, body := f.post(t, "/inception", nameRequest{Name: "carol"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/inception", nameRequest{Name: "dave"})
	f.post(t, "/verify", verifyRequest{Data: "", Signature: "%%%", PublicKey: "AA=="})

	resp, body := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `keri_operations_total{op="incept",result="ok"} 1`)
	assert.Contains(t, text, `keri_operations_total{op="verify",result="encoding"} 1`)
	assert.Contains(t, text, "keri_identifiers 1")
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.get(t, "/inception")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
