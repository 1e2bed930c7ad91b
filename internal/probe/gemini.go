// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/sjson"
	"github.com/traylinx/modelprobe/internal/constant"
	"google.golang.org/genai"
)

func geminiClient(ctx context.Context, c Clients, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient(),
		HTTPOptions: genai.HTTPOptions{
			BaseURL: c.baseURL(constant.Gemini) + "/",
		},
	})
}

func geminiChatProbe(c Clients) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.Gemini, model, constant.ModalityChat}
		client, err := geminiClient(ctx, c, apiKey)
		if err != nil {
			return t.newError(0, "", "", "failed to create client", err)
		}
		_, err = client.Models.GenerateContent(ctx, model, genai.Text(probePrompt), &genai.GenerateContentConfig{
			MaxOutputTokens: 1,
		})
		return t.fromGenAI(err)
	}
}

func geminiEmbeddingProbe(c Clients) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.Gemini, model, constant.ModalityEmbedding}
		client, err := geminiClient(ctx, c, apiKey)
		if err != nil {
			return t.newError(0, "", "", "failed to create client", err)
		}
		_, err = client.Models.EmbedContent(ctx, model, genai.Text(probePrompt), nil)
		return t.fromGenAI(err)
	}
}

// geminiImageProbe uses the Imagen predict endpoint for imagen-* models and
// image-output generateContent for Gemini image models.
func geminiImageProbe(c Clients) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.Gemini, model, constant.ModalityImage}
		client, err := geminiClient(ctx, c, apiKey)
		if err != nil {
			return t.newError(0, "", "", "failed to create client", err)
		}
		if strings.HasPrefix(model, "imagen") {
			_, err = client.Models.GenerateImages(ctx, model, "a single white dot", &genai.GenerateImagesConfig{
				NumberOfImages: 1,
			})
			return t.fromGenAI(err)
		}
		_, err = client.Models.GenerateContent(ctx, model, genai.Text("a single white dot"), &genai.GenerateContentConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		})
		return t.fromGenAI(err)
	}
}

// geminiLivePath is the Live API bidirectional streaming endpoint.
const geminiLivePath = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

func geminiRealtimeProbe(c Clients, budget time.Duration) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.Gemini, model, constant.ModalityRealtime}
		setup, err := sjson.SetBytes([]byte(`{}`), "setup.model", "models/"+model)
		if err != nil {
			return t.newError(0, "", "", "failed to build setup frame", err)
		}
		header := http.Header{}
		header.Set("x-goog-api-key", apiKey)
		return realtimeProbe(ctx, c.dialer(budget), t, websocketURL(c.baseURL(constant.Gemini))+geminiLivePath, header, setup)
	}
}
