// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package handlers implements the HTTP endpoints for catalog discovery,
// model verification and capability validation.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/traylinx/modelprobe/internal/buildinfo"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery"
	"github.com/traylinx/modelprobe/internal/registry"
	"github.com/traylinx/modelprobe/internal/validation"
)

// Discoverer is the catalog surface the handlers need.
type Discoverer interface {
	Providers() []constant.Provider
	DiscoverAll(ctx context.Context, keys map[constant.Provider]string, force bool) discovery.Snapshot
	DiscoverProvider(ctx context.Context, p constant.Provider, apiKey string) registry.ProviderDiscoveryResult
	Verify(ctx context.Context, p constant.Provider, apiKey, modelID string) (bool, error)
}

// KeyStore exposes the configured credentials.
type KeyStore interface {
	validation.CredentialSource
	Keys() map[constant.Provider]string
}

// Handler serves the modelprobe API.
type Handler struct {
	catalog    Discoverer
	dispatcher *validation.Dispatcher
	models     *registry.ModelRegistry
	keys       KeyStore
}

// NewHandler wires the handler to its collaborators.
func NewHandler(catalog Discoverer, dispatcher *validation.Dispatcher, models *registry.ModelRegistry, keys KeyStore) *Handler {
	return &Handler{catalog: catalog, dispatcher: dispatcher, models: models, keys: keys}
}

// APIKeys is an optional per-request credential override keyed by provider name.
type APIKeys map[string]string

// resolve merges request keys over the configured store. Unknown provider names are ignored.
func (h *Handler) resolve(override APIKeys) map[constant.Provider]string {
	keys := map[constant.Provider]string{}
	if h.keys != nil {
		keys = h.keys.Keys()
	}
	for name, key := range override {
		p, ok := constant.ParseProvider(name)
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		keys[p] = strings.TrimSpace(key)
	}
	return keys
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": code, "message": message})
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildinfo.Version})
}
