// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package registry

import (
	"time"

	"github.com/traylinx/modelprobe/internal/constant"
)

// ModelType is a loosely-typed capability tag inferred per provider.
type ModelType string

const (
	TypeChat       ModelType = "chat"
	TypeImage      ModelType = "image"
	TypeEmbedding  ModelType = "embedding"
	TypeAudio      ModelType = "audio"
	TypeTTS        ModelType = "tts"
	TypeRealtime   ModelType = "realtime"
	TypeVideo      ModelType = "video"
	TypeModeration ModelType = "moderation"
	TypeUnknown    ModelType = "unknown"
)

// DiscoveredModel is a provider's model in canonical form.
// Records are built fresh on every discovery call and never mutated afterwards.
type DiscoveredModel struct {
	// ID is the provider-native slug used verbatim in later calls.
	ID string `json:"id"`
	// Provider is the upstream provider the model belongs to.
	Provider constant.Provider `json:"provider"`
	// DisplayName defaults to ID when the provider supplies none.
	DisplayName string `json:"display_name"`
	// ModelType is the inferred capability tag.
	ModelType ModelType `json:"model_type"`
	// Created is the provider-reported creation time, for display and sorting only.
	Created *time.Time `json:"created,omitempty"`
	// OwnedBy is an attribution string.
	OwnedBy string `json:"owned_by,omitempty"`
	// Description is provider-supplied free text (Gemini).
	Description string `json:"description,omitempty"`
	// InputTokenLimit is the maximum input token limit, when reported.
	InputTokenLimit int `json:"input_token_limit,omitempty"`
	// OutputTokenLimit is the maximum output token limit, when reported.
	OutputTokenLimit int `json:"output_token_limit,omitempty"`
}

// Key returns the (provider, id) identity of the model.
func (m DiscoveredModel) Key() string {
	return string(m.Provider) + "/" + m.ID
}

// ProviderDiscoveryResult is the outcome of one adapter run. Failures are data:
// when Success is false, Models is empty and Error explains why.
type ProviderDiscoveryResult struct {
	Provider     constant.Provider `json:"provider"`
	Success      bool              `json:"available"`
	Models       []DiscoveredModel `json:"models"`
	Error        string            `json:"error,omitempty"`
	DiscoveredAt time.Time         `json:"discovered_at"`
}

// FailedResult builds a failed result with an empty (non-nil) model list.
func FailedResult(provider constant.Provider, message string) ProviderDiscoveryResult {
	return ProviderDiscoveryResult{
		Provider:     provider,
		Success:      false,
		Models:       []DiscoveredModel{},
		Error:        message,
		DiscoveredAt: time.Now(),
	}
}
