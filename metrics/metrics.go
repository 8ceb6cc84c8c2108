// SPDX-License-Identifier: BSL-1.1
// Copyright (c) 2026 MuVeraAI Corporation

// Package metrics records registry operations as Prometheus metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aumos-ai/keri-agent/types"
)

// Operation names used as the "op" label.
const (
	OpIncept = "incept"
	OpRotate = "rotate"
	OpSign   = "sign"
	OpKEL    = "get_kel"
	OpVerify = "verify"
	OpState  = "key_state"
)

// Recorder receives one observation per registry operation.
type Recorder interface {
	Observe(op string, elapsed time.Duration, err error)
	SetIdentifiers(n int)
}

// NopRecorder discards observations.
type NopRecorder struct{}

func (NopRecorder) Observe(string, time.Duration, error) {}
func (NopRecorder) SetIdentifiers(int) {}

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	Operations  *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Identifiers prometheus.Gauge
}

// NewPrometheus creates unregistered collectors.
func NewPrometheus() *Prometheus {
	return &Prometheus{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keri_operations_total",
			Help: "Identifier operations by result",
		}, []string{"op", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keri_operation_duration_seconds",
			Help:    "Identifier operation latency",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		}, []string{"op"}),
		Identifiers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keri_identifiers",
			Help: "Identifiers held in the registry",
		}),
	}
}

// Register registers the collectors on reg (or the default registerer if nil).
// Collectors that are already registered are not an error.
func (p *Prometheus) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{p.Operations, p.Duration, p.Identifiers} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}
	return nil
}

func (p *Prometheus) Observe(op string, elapsed time.Duration, err error) {
	p.Operations.WithLabelValues(op, Result(err)).Inc()
	p.Duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (p *Prometheus) SetIdentifiers(n int) {
	p.Identifiers.Set(float64(n))
}

// Result classifies err for the "result" label.
func Result(err error) string {
	var (
		notFound *types.ErrIdentifierNotFound
		exists   *types.ErrIdentifierExists
		mismatch *types.ErrCommitmentMismatch
		encoding *types.ErrEncoding
		verify   *types.ErrVerification
		keygen   *types.ErrKeyGeneration
		ser      *types.ErrSerialization
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &exists):
		return "exists"
	case errors.As(err, &mismatch):
		return "commitment_mismatch"
	case errors.As(err, &encoding):
		return "encoding"
	case errors.As(err, &verify):
		return "verification"
	case errors.As(err, &keygen):
		return "key_generation"
	case errors.As(err, &ser):
		return "serialization"
	default:
		return "error"
	}
}
