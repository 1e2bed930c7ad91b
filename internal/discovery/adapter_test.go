// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery/fetcher"
	"github.com/traylinx/modelprobe/internal/registry"
)

func newTestAdapter(t *testing.T, provider constant.Provider, baseURL string) *PagedAdapter {
	t.Helper()
	src, err := NewSource(provider, SourceOptions{BaseURL: baseURL})
	require.NoError(t, err)
	return NewPagedAdapter(src, fetcher.NewHTTPFetcher(5*time.Second))
}

func TestPagedAdapter_OpenAI_PaginatesAndFilters(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		switch r.URL.Query().Get("after") {
		case "":
			w.Write([]byte(`{"data":[{"id":"gpt-4o","created":1715367049,"owned_by":"system"},{"id":"babbage-002"}],"has_more":true,"last_id":"babbage-002"}`))
		case "babbage-002":
			w.Write([]byte(`{"data":[{"id":"text-embedding-3-small"},{"id":"whisper-1"}],"has_more":false}`))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("after"))
		}
	}))
	defer server.Close()

	result := newTestAdapter(t, constant.OpenAI, server.URL).Discover(context.Background(), "sk-test")

	require.True(t, result.Success, result.Error)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, result.Models, 3)

	byID := map[string]registry.DiscoveredModel{}
	for _, m := range result.Models {
		byID[m.ID] = m
	}
	assert.NotContains(t, byID, "babbage-002")
	assert.Equal(t, registry.TypeChat, byID["gpt-4o"].ModelType)
	assert.Equal(t, registry.TypeEmbedding, byID["text-embedding-3-small"].ModelType)
	assert.Equal(t, registry.TypeAudio, byID["whisper-1"].ModelType)
	assert.Equal(t, "gpt-4o", byID["gpt-4o"].DisplayName)
	assert.Equal(t, constant.OpenAI, byID["gpt-4o"].Provider)
}

func TestPagedAdapter_NonSuccessStatusYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	result := newTestAdapter(t, constant.OpenAI, server.URL).Discover(context.Background(), "sk-bad")

	assert.False(t, result.Success)
	assert.NotNil(t, result.Models)
	assert.Empty(t, result.Models)
	assert.Contains(t, result.Error, "401")
	assert.Contains(t, result.Error, "Incorrect API key provided")
}

func TestPagedAdapter_FailureOnLaterPageDiscardsEarlierPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "" {
			w.Write([]byte(`{"data":[{"id":"gpt-4o"}],"has_more":true,"last_id":"gpt-4o"}`))
			return
		}
		w.Write([]byte(`{"data":`))
	}))
	defer server.Close()

	result := newTestAdapter(t, constant.OpenAI, server.URL).Discover(context.Background(), "sk-test")

	assert.False(t, result.Success)
	assert.Empty(t, result.Models)
	assert.NotEmpty(t, result.Error)
}

func TestPagedAdapter_RepeatedCursorStops(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Always claims more pages with the same cursor
		w.Write([]byte(`{"data":[{"id":"grok-3"}],"has_more":true,"last_id":"grok-3"}`))
	}))
	defer server.Close()

	result := newTestAdapter(t, constant.XAI, server.URL).Discover(context.Background(), "xai-test")

	require.True(t, result.Success)
	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, result.Models, 1)
}

func TestPagedAdapter_Anthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, constant.AnthropicVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))

		if r.URL.Query().Get("after_id") == "" {
			w.Write([]byte(`{"data":[{"id":"claude-sonnet-4-20250514","display_name":"Claude Sonnet 4","created_at":"2025-05-22T00:00:00Z"}],"has_more":true,"last_id":"claude-sonnet-4-20250514"}`))
			return
		}
		w.Write([]byte(`{"data":[{"id":"claude-2.1"},{"id":"claude-3-5-haiku-20241022"}],"has_more":false}`))
	}))
	defer server.Close()

	result := newTestAdapter(t, constant.Anthropic, server.URL).Discover(context.Background(), "sk-ant")

	require.True(t, result.Success, result.Error)
	require.Len(t, result.Models, 2)
	assert.Equal(t, "Claude Sonnet 4", result.Models[0].DisplayName)
	for _, m := range result.Models {
		assert.Equal(t, registry.TypeChat, m.ModelType)
		assert.NotEqual(t, "claude-2.1", m.ID)
	}
}

func TestPagedAdapter_Gemini(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models", r.URL.Path)
		assert.Equal(t, "AIza-test", r.Header.Get("x-goog-api-key"))

		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"models":[
				{"name":"models/gemini-2.5-flash","displayName":"Gemini 2.5 Flash","supportedGenerationMethods":["generateContent"]},
				{"name":"models/gemini-1.0-pro","supportedGenerationMethods":["generateContent"]}
			],"nextPageToken":"p2"}`))
			return
		}
		w.Write([]byte(`{"models":[
			{"name":"models/text-embedding-004","supportedGenerationMethods":["embedContent"]},
			{"name":"models/imagen-3.0-generate-002","supportedGenerationMethods":["predict"]},
			{"name":"models/aqa","supportedGenerationMethods":["generateAnswer"]}
		]}`))
	}))
	defer server.Close()

	result := newTestAdapter(t, constant.Gemini, server.URL).Discover(context.Background(), "AIza-test")

	require.True(t, result.Success, result.Error)
	types := map[string]registry.ModelType{}
	for _, m := range result.Models {
		types[m.ID] = m.ModelType
	}
	assert.Equal(t, map[string]registry.ModelType{
		"gemini-2.5-flash":        registry.TypeChat,
		"text-embedding-004":      registry.TypeEmbedding,
		"imagen-3.0-generate-002": registry.TypeImage,
	}, types)
}

func TestPagedAdapter_Verify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models/gpt-4o":
			w.Write([]byte(`{"id":"gpt-4o"}`))
		case "/v1/models/gpt-missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"model_not_found"}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, constant.OpenAI, server.URL)
	ctx := context.Background()

	assert.True(t, adapter.Verify(ctx, "sk-test", "gpt-4o"))
	assert.False(t, adapter.Verify(ctx, "sk-test", "gpt-missing"))
	// Auth failures are inconclusive
	assert.True(t, adapter.Verify(ctx, "sk-test", "o3"))

	// Repeated calls give the same answer
	for i := 0; i < 3; i++ {
		assert.False(t, adapter.Verify(ctx, "sk-test", "gpt-missing"))
	}
}

func TestPagedAdapter_VerifyTransportErrorIsInconclusive(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	adapter := newTestAdapter(t, constant.Anthropic, baseURL)
	assert.True(t, adapter.Verify(context.Background(), "sk-ant", "claude-opus-4"))
}

func TestNewSource_InvalidExcludePattern(t *testing.T) {
	_, err := NewSource(constant.OpenAI, SourceOptions{Exclude: []string{"("}})
	assert.Error(t, err)

	_, err = NewSource(constant.Provider("mistral"), SourceOptions{})
	assert.Error(t, err)
}

func TestSource_PageURL(t *testing.T) {
	src, err := NewSource(constant.Gemini, SourceOptions{BaseURL: "https://example.test/"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/v1beta/models?pageSize=1000", src.PageURL(""))
	assert.Equal(t, "https://example.test/v1beta/models?pageSize=1000&pageToken=abc", src.PageURL("abc"))
	assert.Equal(t, "https://example.test/v1beta/models/gemini-2.5-pro", src.ModelURL("gemini-2.5-pro"))
}
