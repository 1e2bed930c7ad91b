// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery"
	"github.com/traylinx/modelprobe/internal/logging"
	"github.com/traylinx/modelprobe/internal/registry"
)

// DiscoverRequest selects which providers to list.
type DiscoverRequest struct {
	// Provider is "all" (default) or a single provider name.
	Provider string  `json:"provider"`
	Refresh  bool    `json:"refresh"`
	APIKeys  APIKeys `json:"api_keys,omitempty"`
}

// Discover lists models from one or all providers.
func (h *Handler) Discover(c *gin.Context) {
	var req DiscoverRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid_request", err.Error())
			return
		}
	}
	keys := h.resolve(req.APIKeys)
	ctx := c.Request.Context()

	name := strings.TrimSpace(req.Provider)
	if name == "" || strings.EqualFold(name, "all") {
		c.JSON(http.StatusOK, h.catalog.DiscoverAll(ctx, keys, req.Refresh))
		return
	}

	p, ok := constant.ParseProvider(name)
	if !ok {
		badRequest(c, "unknown_provider", "unknown provider: "+name)
		return
	}
	result := h.catalog.DiscoverProvider(ctx, p, keys[p])
	logging.FromContext(ctx).WithField("provider", p).WithField("models", len(result.Models)).Debug("single provider discovery")
	c.JSON(http.StatusOK, discovery.SingleSnapshot(result))
}

// VerifyRequest asks whether a model id exists.
type VerifyRequest struct {
	Provider string  `json:"provider" binding:"required"`
	Model    string  `json:"model" binding:"required"`
	APIKeys  APIKeys `json:"api_keys,omitempty"`
}

// Verify checks a single model id against the provider.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", err.Error())
		return
	}
	p, ok := constant.ParseProvider(req.Provider)
	if !ok {
		badRequest(c, "unknown_provider", "unknown provider: "+req.Provider)
		return
	}
	key := h.resolve(req.APIKeys)[p]
	if key == "" {
		c.JSON(http.StatusOK, discovery.VerifyResult{Provider: p, Model: req.Model, Error: discovery.ErrorNoCredential})
		return
	}
	exists, err := h.catalog.Verify(c.Request.Context(), p, key, req.Model)
	if err != nil {
		badRequest(c, "unsupported_provider", err.Error())
		return
	}
	c.JSON(http.StatusOK, discovery.VerifyResult{Provider: p, Model: req.Model, Exists: exists})
}

// Catalog returns models from the last published discovery, optionally filtered.
func (h *Handler) Catalog(c *gin.Context) {
	var f registry.Filter
	if name := c.Query("provider"); name != "" {
		p, ok := constant.ParseProvider(name)
		if !ok {
			badRequest(c, "unknown_provider", "unknown provider: "+name)
			return
		}
		f.Provider = p
	}
	if t := c.Query("type"); t != "" {
		f.Type = registry.ModelType(strings.ToLower(t))
	}
	models := h.models.GetAvailableModels(f)
	c.JSON(http.StatusOK, gin.H{"models": models, "count": len(models)})
}
