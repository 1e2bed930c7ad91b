// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package capability infers a model's capability tag. Explicit provider-reported
// capability fields always win; the id-substring heuristics here are the fallback,
// and anything they cannot place is tagged unknown rather than guessed.
package capability

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/registry"
)

// Analyzer infers model types from model ids and provider metadata.
type Analyzer struct{}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Ordered: more specific families first, so "gpt-4o-mini-tts" is tts, not chat,
// and "gpt-4o-realtime-preview" is realtime.
var typePatterns = []struct {
	modelType registry.ModelType
	patterns  []string
}{
	{registry.TypeEmbedding, []string{"embedding", "embed"}},
	{registry.TypeModeration, []string{"moderation"}},
	{registry.TypeRealtime, []string{"realtime", "native-audio", "live"}},
	{registry.TypeTTS, []string{"tts"}},
	{registry.TypeAudio, []string{"whisper", "transcribe"}},
	{registry.TypeVideo, []string{"veo-", "sora"}},
	{registry.TypeImage, []string{"dall-e", "gpt-image", "imagen", "image"}},
	{registry.TypeChat, []string{
		"gpt-", "chatgpt", "o1", "o3", "o4", "codex",
		"claude", "gemini", "gemma", "grok",
	}},
}

// InferType applies id-substring heuristics. Unrecognized ids are TypeUnknown.
func (a *Analyzer) InferType(modelID string) registry.ModelType {
	id := strings.ToLower(modelID)
	for _, group := range typePatterns {
		for _, pattern := range group.patterns {
			if strings.Contains(id, pattern) {
				return group.modelType
			}
		}
	}
	log.Debugf("No type heuristic matched model %s", modelID)
	return registry.TypeUnknown
}

// FromGenerationMethods maps Gemini's supportedGenerationMethods onto a type.
// The bool result is false when the methods are absent or too generic to decide
// (plain generateContent covers chat, tts and image-output models alike).
func (a *Analyzer) FromGenerationMethods(methods []string) (registry.ModelType, bool) {
	has := make(map[string]bool, len(methods))
	for _, m := range methods {
		has[m] = true
	}
	switch {
	case has["embedContent"], has["embedText"], has["batchEmbedContents"]:
		return registry.TypeEmbedding, true
	case has["predictLongRunning"]:
		return registry.TypeVideo, true
	case has["predict"]:
		return registry.TypeImage, true
	case has["bidiGenerateContent"] && !has["generateContent"]:
		return registry.TypeRealtime, true
	}
	return "", false
}

// InferGemini combines the explicit method list with the id fallback.
// A generic generateContent model that no heuristic recognizes is chat.
func (a *Analyzer) InferGemini(modelID string, methods []string) registry.ModelType {
	if t, ok := a.FromGenerationMethods(methods); ok {
		return t
	}
	t := a.InferType(modelID)
	if t == registry.TypeUnknown {
		for _, m := range methods {
			if m == "generateContent" {
				return registry.TypeChat
			}
		}
	}
	return t
}
