// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes prometheus collectors for discovery runs and probe outcomes.
// Collectors live on a private registry so tests and multiple instances never collide.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "modelprobe"

// Metrics holds the modelprobe collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	DiscoveryRuns     *prometheus.CounterVec
	DiscoveryDuration *prometheus.HistogramVec
	DiscoveredModels  *prometheus.GaugeVec
	ProbeResults      *prometheus.CounterVec
	ProbeDuration     *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DiscoveryRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_runs_total",
			Help:      "Provider discovery runs by outcome.",
		}, []string{"provider", "outcome"}),
		DiscoveryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discovery_duration_seconds",
			Help:      "Time spent listing a provider's models, all pages included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		DiscoveredModels: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovered_models",
			Help:      "Models returned by the last successful discovery per provider.",
		}, []string{"provider"}),
		ProbeResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_results_total",
			Help:      "Validation probe results by status.",
		}, []string{"provider", "modality", "status"}),
		ProbeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Latency of validation probes.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 10},
		}, []string{"provider", "modality"}),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDiscovery records one adapter run.
func (m *Metrics) ObserveDiscovery(provider string, success bool, elapsed time.Duration, models int) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.DiscoveryRuns.WithLabelValues(provider, outcome).Inc()
	m.DiscoveryDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	if success {
		m.DiscoveredModels.WithLabelValues(provider).Set(float64(models))
	}
}

// ObserveProbe records one validation result. Skipped probes never ran, so no
// latency is recorded for them.
func (m *Metrics) ObserveProbe(provider, modality, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProbeResults.WithLabelValues(provider, modality, status).Inc()
	if status != "skipped" {
		m.ProbeDuration.WithLabelValues(provider, modality).Observe(elapsed.Seconds())
	}
}
