// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package validation

import (
	"time"

	"github.com/traylinx/modelprobe/internal/constant"
)

// Status is the fixed outcome vocabulary of a validation probe.
type Status string

const (
	// StatusSuccess means the model answered the probe.
	StatusSuccess Status = "success"
	// StatusFailed means the probe ran, or could not run, and the model did not answer.
	StatusFailed Status = "failed"
	// StatusUntested means the model exists but the capability could not be confirmed.
	StatusUntested Status = "untested"
	// StatusSkipped means no probe exists for the (provider, modality) pair.
	StatusSkipped Status = "skipped"
)

// ModelToTest is one validation request.
type ModelToTest struct {
	Provider constant.Provider `json:"provider"`
	Model    string            `json:"model"`
	Modality constant.Modality `json:"type"`
	Label    string            `json:"label,omitempty"`
}

// TestResult is the outcome for one ModelToTest.
type TestResult struct {
	Provider  constant.Provider `json:"provider"`
	Model     string            `json:"model"`
	Modality  constant.Modality `json:"type"`
	Label     string            `json:"label,omitempty"`
	Status    Status            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	// LatencyMs is set whenever a probe actually ran.
	LatencyMs *int64 `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CredentialSource resolves the API key for a provider. An empty string means
// no key is configured.
type CredentialSource interface {
	APIKey(provider constant.Provider) string
}

// StaticCredentials is a fixed provider→key map.
type StaticCredentials map[constant.Provider]string

// APIKey implements CredentialSource.
func (s StaticCredentials) APIKey(provider constant.Provider) string {
	return s[provider]
}

// LayeredCredentials consults each source in order and returns the first non-empty key.
type LayeredCredentials []CredentialSource

// APIKey implements CredentialSource.
func (l LayeredCredentials) APIKey(provider constant.Provider) string {
	for _, src := range l {
		if src == nil {
			continue
		}
		if key := src.APIKey(provider); key != "" {
			return key
		}
	}
	return ""
}
