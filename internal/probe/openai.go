// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/sjson"
	"github.com/traylinx/modelprobe/internal/constant"
)

const probePrompt = "ping"

// openAIClient builds a go-openai client for OpenAI or an OpenAI-compatible provider.
func openAIClient(c Clients, p constant.Provider, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = c.baseURL(p) + "/v1"
	cfg.HTTPClient = c.httpClient()
	return openai.NewClientWithConfig(cfg)
}

// isOutputLimit reports the error reasoning models give when a single token is
// not enough to answer. The model ran, which is all a probe needs.
func isOutputLimit(err error) bool {
	return err != nil && strings.Contains(err.Error(), "max_tokens or model output limit")
}

func openAIChatProbe(c Clients, p constant.Provider) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{p, model, constant.ModalityChat}
		req := openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: probePrompt},
			},
		}
		// xAI still documents max_tokens; OpenAI reasoning models reject it.
		if p == constant.XAI {
			req.MaxTokens = 1
		} else {
			req.MaxCompletionTokens = 1
		}

		_, err := openAIClient(c, p, apiKey).CreateChatCompletion(ctx, req)
		if isOutputLimit(err) {
			return nil
		}
		if errors.Is(err, openai.ErrChatCompletionInvalidModel) {
			return t.newError(0, "", "", "not a chat model: "+model+" is a legacy completions model", err)
		}
		return t.fromOpenAI(err)
	}
}

// imageRequest picks the cheapest valid request for the model family.
func imageRequest(p constant.Provider, model string) openai.ImageRequest {
	req := openai.ImageRequest{
		Prompt: "a single white dot",
		Model:  model,
		N:      1,
	}
	switch {
	case p == constant.XAI:
		// xAI rejects the size parameter.
	case model == openai.CreateImageModelDallE2:
		req.Size = openai.CreateImageSize256x256
	case strings.HasPrefix(model, "gpt-image"):
		req.Size = openai.CreateImageSize1024x1024
		req.Quality = "low"
	default:
		req.Size = openai.CreateImageSize1024x1024
	}
	return req
}

func openAIImageProbe(c Clients, p constant.Provider) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{p, model, constant.ModalityImage}
		_, err := openAIClient(c, p, apiKey).CreateImage(ctx, imageRequest(p, model))
		return t.fromOpenAI(err)
	}
}

func openAIEmbeddingProbe(c Clients) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.OpenAI, model, constant.ModalityEmbedding}
		_, err := openAIClient(c, constant.OpenAI, apiKey).CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{probePrompt},
			Model: openai.EmbeddingModel(model),
		})
		return t.fromOpenAI(err)
	}
}

func openAITranscriptionProbe(c Clients) ProbeFunc {
	audio := SilentWAV(100*time.Millisecond, 16000)
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.OpenAI, model, constant.ModalityAudioIn}
		_, err := openAIClient(c, constant.OpenAI, apiKey).CreateTranscription(ctx, openai.AudioRequest{
			Model:    model,
			FilePath: "probe.wav",
			Reader:   bytes.NewReader(audio),
		})
		return t.fromOpenAI(err)
	}
}

// openAISpeechProbe posts to /v1/audio/speech directly. The response audio is
// drained and discarded.
func openAISpeechProbe(c Clients) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.OpenAI, model, constant.ModalityAudioOut}

		body := []byte(`{"voice":"alloy","response_format":"mp3"}`)
		body, _ = sjson.SetBytes(body, "model", model)
		body, _ = sjson.SetBytes(body, "input", probePrompt)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(constant.OpenAI)+"/v1/audio/speech", bytes.NewReader(body))
		if err != nil {
			return t.newError(0, "", "", "failed to create request", err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", constant.UserAgent)

		resp, err := c.httpClient().Do(req)
		if err != nil {
			return t.newError(0, "", "", "", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
			return nil
		}
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return t.fromHTTP(resp.StatusCode, errBody)
	}
}

func openAIRealtimeProbe(c Clients, budget time.Duration) ProbeFunc {
	return func(ctx context.Context, apiKey, model string) error {
		t := target{constant.OpenAI, model, constant.ModalityRealtime}
		u := websocketURL(c.baseURL(constant.OpenAI)) + "/v1/realtime?model=" + url.QueryEscape(model)
		header := http.Header{}
		header.Set("Authorization", "Bearer "+apiKey)
		header.Set("OpenAI-Beta", "realtime=v1")
		return realtimeProbe(ctx, c.dialer(budget), t, u, header, nil)
	}
}
