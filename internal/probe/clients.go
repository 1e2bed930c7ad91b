// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"net/http"
	"strings"
	"time"

	"github.com/traylinx/modelprobe/internal/constant"
)

// Clients carries the transport every probe uses. Tests point BaseURLs at
// httptest servers and swap the Dialer for a mock.
type Clients struct {
	HTTP     *http.Client
	BaseURLs map[constant.Provider]string
	Dialer   Dialer
}

// Timeouts are the per-probe budgets.
type Timeouts struct {
	REST     time.Duration
	Realtime time.Duration
}

func (c Clients) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c Clients) baseURL(p constant.Provider) string {
	if u, ok := c.BaseURLs[p]; ok && u != "" {
		return strings.TrimRight(u, "/")
	}
	return constant.DefaultBaseURL(p)
}

func (c Clients) dialer(handshake time.Duration) Dialer {
	if c.Dialer != nil {
		return c.Dialer
	}
	return NewWebsocketDialer(handshake)
}

// websocketURL rewrites an http(s) base URL into its ws(s) form.
func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

// NewDefaultRegistry registers every built-in strategy.
func NewDefaultRegistry(c Clients, t Timeouts) *Registry {
	if t.REST <= 0 {
		t.REST = DefaultRESTTimeout
	}
	if t.Realtime <= 0 {
		t.Realtime = DefaultRealtimeTimeout
	}

	r := NewRegistry()
	rest := func(p constant.Provider, m constant.Modality, fn ProbeFunc) {
		r.Register(Strategy{Provider: p, Modality: m, Timeout: t.REST, Probe: fn})
	}
	realtime := func(p constant.Provider, fn ProbeFunc) {
		r.Register(Strategy{Provider: p, Modality: constant.ModalityRealtime, Timeout: t.Realtime, Probe: fn})
	}

	for _, p := range []constant.Provider{constant.OpenAI, constant.XAI} {
		rest(p, constant.ModalityChat, openAIChatProbe(c, p))
		rest(p, constant.ModalityImage, openAIImageProbe(c, p))
	}
	rest(constant.OpenAI, constant.ModalityEmbedding, openAIEmbeddingProbe(c))
	rest(constant.OpenAI, constant.ModalityAudioIn, openAITranscriptionProbe(c))
	rest(constant.OpenAI, constant.ModalityAudioOut, openAISpeechProbe(c))
	realtime(constant.OpenAI, openAIRealtimeProbe(c, t.Realtime))

	rest(constant.Anthropic, constant.ModalityChat, anthropicChatProbe(c))

	rest(constant.Gemini, constant.ModalityChat, geminiChatProbe(c))
	rest(constant.Gemini, constant.ModalityEmbedding, geminiEmbeddingProbe(c))
	rest(constant.Gemini, constant.ModalityImage, geminiImageProbe(c))
	realtime(constant.Gemini, geminiRealtimeProbe(c, t.Realtime))

	return r
}
