// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/traylinx/modelprobe/internal/api/handlers"
	"github.com/traylinx/modelprobe/internal/config"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery"
	"github.com/traylinx/modelprobe/internal/logging"
	"github.com/traylinx/modelprobe/internal/metrics"
	"github.com/traylinx/modelprobe/internal/probe"
	"github.com/traylinx/modelprobe/internal/registry"
	"github.com/traylinx/modelprobe/internal/validation"
)

type stubAdapter struct {
	provider constant.Provider
	models   []registry.DiscoveredModel
	fail     string
	calls    atomic.Int32
	lastKey  atomic.Value
}

func (a *stubAdapter) ProviderID() constant.Provider { return a.provider }

func (a *stubAdapter) Discover(_ context.Context, apiKey string) registry.ProviderDiscoveryResult {
	a.calls.Add(1)
	a.lastKey.Store(apiKey)
	if a.fail != "" {
		return registry.FailedResult(a.provider, a.fail)
	}
	return registry.ProviderDiscoveryResult{Provider: a.provider, Success: true, Models: a.models, DiscoveredAt: time.Now()}
}

func (a *stubAdapter) Verify(_ context.Context, _ string, modelID string) bool {
	for _, m := range a.models {
		if m.ID == modelID {
			return true
		}
	}
	return false
}

type fixture struct {
	server *Server
	openai *stubAdapter
	gemini *stubAdapter
	creds  *config.Credentials
}

func newTestServer(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	openai := &stubAdapter{provider: constant.OpenAI, models: []registry.DiscoveredModel{
		{ID: "gpt-4o", Provider: constant.OpenAI, DisplayName: "gpt-4o", ModelType: registry.TypeChat},
		{ID: "dall-e-3", Provider: constant.OpenAI, DisplayName: "dall-e-3", ModelType: registry.TypeImage},
	}}
	gemini := &stubAdapter{provider: constant.Gemini, fail: "Google Gemini API returned status 403: denied"}
	anthropic := &stubAdapter{provider: constant.Anthropic}

	m := metrics.New()
	models := registry.NewModelRegistry()
	catalog := discovery.NewCatalog([]discovery.Adapter{openai, gemini, anthropic}, nil,
		discovery.WithRegistry(models), discovery.WithMetrics(m))

	reg := probe.NewRegistry()
	reg.Register(probe.Strategy{
		Provider: constant.OpenAI,
		Modality: constant.ModalityChat,
		Probe: func(_ context.Context, _ string, model string) error {
			if model == "gpt-missing" {
				return errors.New("The model `gpt-missing` does not exist")
			}
			return nil
		},
	})
	reg.Register(probe.Strategy{
		Provider: constant.Anthropic,
		Modality: constant.ModalityChat,
		Probe: func(_ context.Context, apiKey, _ string) error {
			if apiKey != "request-key" {
				return errors.New("invalid x-api-key")
			}
			return nil
		},
	})

	creds := config.NewCredentials(map[constant.Provider]string{
		constant.OpenAI: "sk-openai",
		constant.Gemini: "AIza-gemini",
	})
	dispatcher := validation.NewDispatcher(reg, creds, validation.WithMetrics(m))
	h := handlers.NewHandler(catalog, dispatcher, models, creds)

	cfg := config.Default()
	return &fixture{server: NewServer(cfg, h, m), openai: openai, gemini: gemini, creds: creds}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthzAndRequestID(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
	assert.Equal(t, "dev", gjson.Get(w.Body.String(), "version").String())
	assert.NotEmpty(t, w.Header().Get(logging.RequestIDHeader))
}

func TestDiscoverAll(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodPost, "/v1/discovery", `{"provider":"all"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "total_models").Int())
	results := gjson.Get(body, "results").Array()
	require.Len(t, results, 3)
	assert.Equal(t, "anthropic", results[0].Get("provider").String())
	assert.Equal(t, "no credential", results[0].Get("error").String())
	assert.False(t, results[1].Get("available").Bool())
	assert.True(t, results[2].Get("available").Bool())
	assert.Len(t, results[2].Get("models").Array(), 2)

	errs := gjson.Get(body, "errors").Array()
	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0].String(), "gemini: "))
	assert.NotEmpty(t, gjson.Get(body, "timestamp").String())
}

func TestDiscoverEmptyBodyDefaultsToAll(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodPost, "/v1/discovery", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, gjson.Get(w.Body.String(), "results").Array(), 3)
}

func TestDiscoverCachedUntilRefresh(t *testing.T) {
	f := newTestServer(t)
	f.do(t, http.MethodPost, "/v1/discovery", `{}`)
	f.do(t, http.MethodPost, "/v1/discovery", `{}`)
	assert.Equal(t, int32(1), f.openai.calls.Load())

	f.do(t, http.MethodPost, "/v1/discovery", `{"refresh":true}`)
	assert.Equal(t, int32(2), f.openai.calls.Load())
}

func TestDiscoverSingleProvider(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodPost, "/v1/discovery", `{"provider":"openai","api_keys":{"openai":"sk-request"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Len(t, gjson.Get(body, "results").Array(), 1)
	assert.Equal(t, int64(2), gjson.Get(body, "total_models").Int())
	assert.Equal(t, "sk-request", f.openai.lastKey.Load())

	w = f.do(t, http.MethodPost, "/v1/discovery", `{"provider":"google"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gemini: Google Gemini API returned status 403: denied", gjson.Get(w.Body.String(), "errors.0").String())

	w = f.do(t, http.MethodPost, "/v1/discovery", `{"provider":"mistral"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_provider", gjson.Get(w.Body.String(), "error").String())
}

func TestCatalogAfterDiscovery(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodGet, "/v1/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "count").Int())

	f.do(t, http.MethodPost, "/v1/discovery", `{}`)

	w = f.do(t, http.MethodGet, "/v1/catalog?provider=openai&type=image", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "count").Int())
	assert.Equal(t, "dall-e-3", gjson.Get(w.Body.String(), "models.0.id").String())

	w = f.do(t, http.MethodGet, "/v1/catalog?provider=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerify(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodPost, "/v1/verify", `{"provider":"openai","model":"gpt-4o"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "exists").Bool())

	w = f.do(t, http.MethodPost, "/v1/verify", `{"provider":"openai","model":"gpt-9"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "exists").Bool())

	w = f.do(t, http.MethodPost, "/v1/verify", `{"provider":"anthropic","model":"claude-x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no credential", gjson.Get(w.Body.String(), "error").String())
	assert.Equal(t, "anthropic", gjson.Get(w.Body.String(), "provider").String())
	assert.Equal(t, "claude-x", gjson.Get(w.Body.String(), "model").String())
	assert.True(t, gjson.Get(w.Body.String(), "exists").Exists(), "same shape as the CLI verify output")

	w = f.do(t, http.MethodPost, "/v1/verify", `{"provider":"openai"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidationBatch(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodPost, "/v1/validation", `{"models":[
		{"provider":"openai","model":"gpt-4o","type":"chat","label":"GPT-4o"},
		{"provider":"openai","model":"gpt-missing","type":"chat"},
		{"provider":"anthropic","model":"claude-x","type":"chat"},
		{"provider":"gemini","model":"gemini-2.0-flash","type":"realtime"}
	]}`)
	require.Equal(t, http.StatusOK, w.Code)

	results := gjson.Get(w.Body.String(), "results").Array()
	require.Len(t, results, 4)
	assert.Equal(t, "success", results[0].Get("status").String())
	assert.Equal(t, "GPT-4o", results[0].Get("label").String())
	assert.True(t, results[0].Get("latency_ms").Exists())
	assert.Equal(t, "failed", results[1].Get("status").String())
	assert.Contains(t, results[1].Get("error").String(), "not available via OpenAI's direct API")
	assert.Equal(t, "failed", results[2].Get("status").String())
	assert.Equal(t, "No API key configured", results[2].Get("error").String())
	assert.Equal(t, "skipped", results[3].Get("status").String())
}

func TestValidationRequestKeys(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodPost, "/v1/validation", `{"models":[{"provider":"anthropic","model":"claude-x","type":"chat"}],"api_keys":{"claude":"request-key"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", gjson.Get(w.Body.String(), "results.0.status").String())
}

func TestValidationRejectsBadInput(t *testing.T) {
	f := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/v1/validation", `{"models":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/v1/validation", `{"models":[{"provider":"openai"}]}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/v1/validation", `not json`).Code)
}

func TestValidationSingle(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodPost, "/v1/validation/single", `{"provider":"openai","model":"gpt-4o","type":"chat"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", gjson.Get(w.Body.String(), "status").String())
	assert.Equal(t, "chat", gjson.Get(w.Body.String(), "type").String())
}

func TestStrategiesAndMetrics(t *testing.T) {
	f := newTestServer(t)
	w := f.do(t, http.MethodGet, "/v1/validation/strategies", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, gjson.Get(w.Body.String(), "strategies").Array(), 2)

	f.do(t, http.MethodPost, "/v1/discovery", `{}`)
	f.do(t, http.MethodPost, "/v1/validation/single", `{"provider":"openai","model":"gpt-4o","type":"chat"}`)

	w = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "modelprobe_discovery_runs_total")
	assert.Contains(t, w.Body.String(), "modelprobe_probe_results_total")
}

func TestCredentialsHotSwap(t *testing.T) {
	f := newTestServer(t)
	f.creds.Replace(map[constant.Provider]string{})

	w := f.do(t, http.MethodPost, "/v1/validation/single", `{"provider":"openai","model":"gpt-4o","type":"chat"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No API key configured", gjson.Get(w.Body.String(), "error").String())
}
