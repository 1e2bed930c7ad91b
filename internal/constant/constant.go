// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package constant defines provider and modality identifiers used throughout modelprobe.
// These constants identify the supported AI service providers and the capabilities a probe
// can exercise, ensuring consistent naming across discovery, validation and the API.
package constant

import (
	"sort"
	"strings"
)

// Provider identifies a supported upstream AI provider.
type Provider string

const (
	// OpenAI represents the OpenAI provider identifier.
	OpenAI Provider = "openai"

	// Anthropic represents the Anthropic Claude provider identifier.
	Anthropic Provider = "anthropic"

	// Gemini represents the Google Gemini provider identifier.
	Gemini Provider = "gemini"

	// XAI represents the xAI Grok provider identifier (OpenAI-compatible API).
	XAI Provider = "xai"
)

// Providers lists every supported provider in a stable order.
var Providers = []Provider{Anthropic, Gemini, OpenAI, XAI}

var providerDisplayNames = map[Provider]string{
	OpenAI:    "OpenAI",
	Anthropic: "Anthropic",
	Gemini:    "Google Gemini",
	XAI:       "xAI",
}

// DisplayName returns the human-readable provider name.
func (p Provider) DisplayName() string {
	if name, ok := providerDisplayNames[p]; ok {
		return name
	}
	return string(p)
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	_, ok := providerDisplayNames[p]
	return ok
}

// ParseProvider normalizes a provider name. Common aliases ("claude", "google") are accepted.
func ParseProvider(name string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		return OpenAI, true
	case "anthropic", "claude":
		return Anthropic, true
	case "gemini", "google":
		return Gemini, true
	case "xai", "grok":
		return XAI, true
	}
	return "", false
}

// SortProviders sorts providers in place by name.
func SortProviders(ps []Provider) {
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
}

// Modality is the capability a probe exercises.
type Modality string

const (
	ModalityChat      Modality = "chat"
	ModalityImage     Modality = "image"
	ModalityEmbedding Modality = "embedding"
	// ModalityAudioIn is speech-to-text (transcription).
	ModalityAudioIn Modality = "audio-in"
	// ModalityAudioOut is text-to-speech.
	ModalityAudioOut Modality = "audio-out"
	ModalityRealtime Modality = "realtime"
)

// ParseModality maps an inbound model type onto a probe modality.
func ParseModality(name string) (Modality, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chat", "text", "":
		return ModalityChat, true
	case "image", "images":
		return ModalityImage, true
	case "embedding", "embeddings":
		return ModalityEmbedding, true
	case "audio-in", "audio", "transcription", "stt":
		return ModalityAudioIn, true
	case "audio-out", "tts", "speech":
		return ModalityAudioOut, true
	case "realtime":
		return ModalityRealtime, true
	}
	return "", false
}

// Default upstream base URLs. Path segments are appended by the adapters and probes.
const (
	DefaultOpenAIBaseURL    = "https://api.openai.com"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultGeminiBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultXAIBaseURL       = "https://api.x.ai"

	// AnthropicVersion is the API version header sent on every Anthropic request.
	AnthropicVersion = "2023-06-01"

	// UserAgent identifies modelprobe to upstream providers.
	UserAgent = "modelprobe/1.0 (catalog-discovery)"
)

// DefaultBaseURL returns the public API root for a provider.
func DefaultBaseURL(p Provider) string {
	switch p {
	case OpenAI:
		return DefaultOpenAIBaseURL
	case Anthropic:
		return DefaultAnthropicBaseURL
	case Gemini:
		return DefaultGeminiBaseURL
	case XAI:
		return DefaultXAIBaseURL
	}
	return ""
}
