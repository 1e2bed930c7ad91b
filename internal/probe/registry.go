// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package probe holds the per-(provider, modality) probe strategies: minimal,
// cheap requests that prove a model answers a given capability, plus the rules
// for reading each provider's failure shapes.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/traylinx/modelprobe/internal/constant"
)

// Default per-probe budgets.
const (
	DefaultRESTTimeout     = 8 * time.Second
	DefaultRealtimeTimeout = 10 * time.Second
)

// ProbeFunc issues one probe. A nil error means the model answered.
type ProbeFunc func(ctx context.Context, apiKey, model string) error

// Strategy knows how to probe one capability of one provider.
type Strategy struct {
	Provider constant.Provider
	Modality constant.Modality
	Timeout  time.Duration
	Probe    ProbeFunc
	// UntestedMarkers are error substrings meaning the model exists but this
	// probe cannot confirm the capability.
	UntestedMarkers []string
	// NotFoundMarkers are error substrings meaning the provider does not serve the model.
	NotFoundMarkers []string
}

// Verdict is the classification of a failed probe.
type Verdict int

const (
	// VerdictFailed means the model failed the probe.
	VerdictFailed Verdict = iota
	// VerdictUntested means the model exists but the capability could not be confirmed.
	VerdictUntested
)

// DefaultUntestedMarkers apply to every strategy.
var DefaultUntestedMarkers = []string{
	"model exists but",
	"not a chat model",
	"only supported in v1/responses",
	"is not supported in the v1/chat/completions endpoint",
}

// DefaultNotFoundMarkers per provider.
var DefaultNotFoundMarkers = map[constant.Provider][]string{
	constant.OpenAI:    {"model_not_found", "does not exist"},
	constant.XAI:       {"model_not_found", "does not exist"},
	constant.Anthropic: {"not_found_error"},
	constant.Gemini:    {"NOT_FOUND", "is not found"},
}

type key struct {
	provider constant.Provider
	modality constant.Modality
}

// Registry maps (provider, modality) to a Strategy.
type Registry struct {
	mu         sync.RWMutex
	strategies map[key]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[key]Strategy)}
}

// Register adds or replaces a strategy. Missing markers and timeout are
// filled with the defaults.
func (r *Registry) Register(s Strategy) {
	if s.Timeout <= 0 {
		s.Timeout = DefaultRESTTimeout
	}
	if s.UntestedMarkers == nil {
		s.UntestedMarkers = DefaultUntestedMarkers
	}
	if s.NotFoundMarkers == nil {
		s.NotFoundMarkers = DefaultNotFoundMarkers[s.Provider]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[key{s.Provider, s.Modality}] = s
}

// Lookup returns the strategy for a pair.
func (r *Registry) Lookup(provider constant.Provider, modality constant.Modality) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[key{provider, modality}]
	return s, ok
}

// Strategies lists the registered pairs, sorted by provider then modality.
func (r *Registry) Strategies() []Strategy {
	r.mu.RLock()
	out := make([]Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Modality < out[j].Modality
	})
	return out
}

// NotFoundMessage is reported when a provider does not serve a model.
func NotFoundMessage(provider constant.Provider, model string) string {
	return fmt.Sprintf("Model %s is not available via %s's direct API", model, provider.DisplayName())
}

// Classify turns a probe error into a verdict and a user-facing message using
// this strategy's markers. Untested markers are checked before not-found, since
// some providers answer "not a chat model" with a 404.
func (s Strategy) Classify(model string, err error) (Verdict, string) {
	return classify(s, s.Provider, model, err)
}

func classify(s Strategy, provider constant.Provider, model string, err error) (Verdict, string) {
	var pe *Error
	isProbeErr := errors.As(err, &pe)

	text := err.Error()
	if isProbeErr {
		text = pe.text()
	}

	if containsAny(text, s.UntestedMarkers) {
		return VerdictUntested, message(pe, err)
	}
	if (isProbeErr && pe.NotFound) || containsAny(text, s.NotFoundMarkers) {
		return VerdictFailed, NotFoundMessage(provider, model)
	}
	if IsTransportError(err) {
		return VerdictFailed, fmt.Sprintf("network error contacting %s", provider.DisplayName())
	}
	return VerdictFailed, message(pe, err)
}

func message(pe *Error, err error) string {
	if pe != nil && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// IsTransportError reports whether err is a network failure with no HTTP answer.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	var pe *Error
	if errors.As(err, &pe) && pe.StatusCode > 0 {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
