// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package validation runs probe strategies over batches of models and
// classifies each outcome into success, failed, untested or skipped.
package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/metrics"
	"github.com/traylinx/modelprobe/internal/probe"
	"github.com/traylinx/modelprobe/internal/util"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds simultaneous probes to stay under provider rate limits.
const DefaultConcurrency = 3

// ErrorNoAPIKey is reported when the provider has no credential.
const ErrorNoAPIKey = "No API key configured"

// Dispatcher runs validation probes.
type Dispatcher struct {
	registry    *probe.Registry
	credentials CredentialSource
	concurrency int
	metrics     *metrics.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConcurrency sets the maximum number of probes in flight. 1 runs strictly
// sequentially.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithMetrics records every result.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a dispatcher over a strategy registry.
func NewDispatcher(registry *probe.Registry, credentials CredentialSource, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:    registry,
		credentials: credentials,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithCredentials returns a copy of d that resolves keys from c.
func (d *Dispatcher) WithCredentials(c CredentialSource) *Dispatcher {
	cp := *d
	cp.credentials = c
	return &cp
}

// Strategies lists the probes this dispatcher can run.
func (d *Dispatcher) Strategies() []probe.Strategy {
	return d.registry.Strategies()
}

// RunTests validates a batch. Results come back in input order, one per input.
func (d *Dispatcher) RunTests(ctx context.Context, models []ModelToTest) []TestResult {
	results := make([]TestResult, len(models))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, m := range models {
		g.Go(func() error {
			results[i] = d.RunTest(ctx, m)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// RunTest validates a single model.
func (d *Dispatcher) RunTest(ctx context.Context, m ModelToTest) (result TestResult) {
	result = TestResult{
		Provider: m.Provider,
		Model:    m.Model,
		Modality: m.Modality,
		Label:    m.Label,
	}
	start := time.Now()
	defer func() {
		result.Timestamp = time.Now()
		d.metrics.ObserveProbe(string(m.Provider), string(m.Modality), string(result.Status), time.Since(start))
	}()

	if !m.Provider.Valid() {
		return d.finish(result, StatusSkipped, fmt.Sprintf("unsupported provider: %s", m.Provider), "")
	}
	apiKey := ""
	if d.credentials != nil {
		apiKey = d.credentials.APIKey(m.Provider)
	}
	if apiKey == "" {
		return d.finish(result, StatusFailed, ErrorNoAPIKey, "")
	}
	strategy, ok := d.registry.Lookup(m.Provider, m.Modality)
	if !ok {
		return d.finish(result, StatusSkipped, fmt.Sprintf("no %s probe available for %s", m.Modality, m.Provider.DisplayName()), apiKey)
	}
	if err := ctx.Err(); err != nil {
		return d.finish(result, StatusFailed, "validation cancelled", apiKey)
	}

	probeCtx, cancel := context.WithTimeout(ctx, strategy.Timeout)
	defer cancel()

	probeStart := time.Now()
	err := invoke(probeCtx, strategy, apiKey, m.Model)
	latency := time.Since(probeStart).Milliseconds()
	result.LatencyMs = &latency

	switch {
	case ctx.Err() != nil:
		return d.finish(result, StatusFailed, "validation cancelled", apiKey)
	case err == nil:
		return d.finish(result, StatusSuccess, "", apiKey)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(probeCtx.Err(), context.DeadlineExceeded):
		return d.finish(result, StatusFailed, fmt.Sprintf("probe timed out after %s", strategy.Timeout), apiKey)
	}

	verdict, message := strategy.Classify(m.Model, err)
	if verdict == probe.VerdictUntested {
		return d.finish(result, StatusUntested, message, apiKey)
	}
	log.WithField("provider", m.Provider).WithField("model", m.Model).WithError(err).Debug("Probe failed")
	return d.finish(result, StatusFailed, message, apiKey)
}

// invoke runs a probe, converting a panic into an error.
func invoke(ctx context.Context, s probe.Strategy, apiKey, model string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = util.RecoverError(r)
		}
	}()
	return s.Probe(ctx, apiKey, model)
}

func (d *Dispatcher) finish(result TestResult, status Status, message, apiKey string) TestResult {
	result.Status = status
	result.Error = message

	entry := log.WithField("provider", result.Provider).
		WithField("model", result.Model).
		WithField("type", result.Modality).
		WithField("status", status)
	if apiKey != "" {
		entry = entry.WithField("key", util.HideAPIKey(apiKey))
	}
	if result.LatencyMs != nil {
		entry = entry.WithField("latency_ms", *result.LatencyMs)
	}
	switch status {
	case StatusSuccess:
		entry.Info("Model validated")
	case StatusFailed:
		entry.WithField("error", message).Warn("Model validation failed")
	default:
		entry.WithField("reason", message).Info("Model validation inconclusive")
	}
	return result
}

// ParseModelToTest normalizes a raw tuple from an API or CLI caller.
func ParseModelToTest(provider, model, modality, label string) (ModelToTest, error) {
	if model == "" {
		return ModelToTest{}, errors.New("model is required")
	}
	p, ok := constant.ParseProvider(provider)
	if !ok {
		// Unknown providers are kept verbatim and reported as skipped.
		p = constant.Provider(provider)
	}
	mod, ok := constant.ParseModality(modality)
	if !ok {
		mod = constant.Modality(modality)
	}
	return ModelToTest{Provider: p, Model: model, Modality: mod, Label: label}, nil
}
