// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package api exposes the identifier registry over HTTP. Request and response
// bodies are JSON; errors are reported as {"error": "<message>"}.
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aumos-ai/keri-agent/identity"
	"github.com/aumos-ai/keri-agent/keys"
	"github.com/aumos-ai/keri-agent/metrics"
	"github.com/aumos-ai/keri-agent/types"
)

const maxBodyBytes = 1 << 20

// Options configures the HTTP handler.
type Options struct {
	// Registry is required.
	Registry *identity.Registry
	Logger   *zap.Logger
	// Metrics records verify calls, which do not go through the registry.
	Metrics metrics.Recorder
	// Gatherer backs /metrics. When nil the endpoint is not mounted.
	Gatherer prometheus.Gatherer
	Version  string
}

type handler struct {
	reg     *identity.Registry
	log     *zap.Logger
	metrics metrics.Recorder
	version string
	started time.Time
}

// NewHandler returns the router for the driver API.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("api: Options.Registry must not be nil")
	}
	h := &handler{
		reg:     opts.Registry,
		log:     opts.Logger,
		metrics: opts.Metrics,
		version: opts.Version,
		started: time.Now(),
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = metrics.NopRecorder{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	h.Register(r)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r, nil
}

// Register mounts the driver routes on r.
func (h *handler) Register(r chi.Router) {
	r.Get("/status", h.status)
	r.Post("/inception", h.incept)
	r.Post("/rotation", h.rotate)
	r.Post("/sign", h.sign)
	r.Get("/kel", h.kel)
	r.Get("/keystate", h.keyState)
	r.Post("/verify", h.verify)
}

type nameRequest struct {
	Name string `json:"name"`
}

type signRequest struct {
	Name string `json:"name"`
	// Data is the payload, standard base64.
	Data string `json:"data"`
}

type verifyRequest struct {
	Data      string `json:"data"`
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

type statusResponse struct {
	Status      string `json:"status"`
	Driver      string `json:"driver"`
	Version     string `json:"version"`
	Identifiers int    `json:"identifiers"`
	Digest      string `json:"digest"`
	Uptime      string `json:"uptime"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:      "active",
		Driver:      "keri-agent",
		Version:     h.version,
		Identifiers: h.reg.Len(),
		Digest:      string(h.reg.DigestCode()),
		Uptime:      time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *handler) incept(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.reg.Incept(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handler) rotate(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.writeError(w, &types.ErrInvalidName{Reason: "name is required"})
		return
	}
	res, err := h.reg.Rotate(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.writeError(w, &types.ErrInvalidName{Reason: "name is required"})
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		h.writeError(w, &types.ErrEncoding{Field: "data", Reason: err.Error()})
		return
	}
	res, err := h.reg.Sign(r.Context(), req.Name, data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) kel(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, &types.ErrInvalidName{Reason: "name query parameter is required"})
		return
	}
	out, err := h.reg.ExportKEL(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (h *handler) keyState(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, &types.ErrInvalidName{Reason: "name query parameter is required"})
		return
	}
	st, err := h.reg.KeyState(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	valid, err := verifyRequestPayload(req)
	h.metrics.Observe(metrics.OpVerify, time.Since(start), err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Valid: valid})
}

func verifyRequestPayload(req verifyRequest) (bool, error) {
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return false, &types.ErrEncoding{Field: "data", Reason: err.Error()}
	}
	return keys.VerifyEncoded(data, req.Signature, req.PublicKey)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var (
		notFound *types.ErrIdentifierNotFound
		exists   *types.ErrIdentifierExists
		mismatch *types.ErrCommitmentMismatch
		name     *types.ErrInvalidName
		encoding *types.ErrEncoding
		verify   *types.ErrVerification
		closed   *types.ErrRegistryClosed
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &exists):
		return http.StatusConflict
	case errors.As(err, &mismatch):
		return http.StatusUnprocessableEntity
	case errors.As(err, &name), errors.As(err, &encoding), errors.As(err, &verify):
		return http.StatusBadRequest
	case errors.As(err, &closed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
