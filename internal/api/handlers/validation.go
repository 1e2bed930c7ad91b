// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/logging"
	"github.com/traylinx/modelprobe/internal/validation"
)

// maxBatch caps a single validation request.
const maxBatch = 200

// TestModelRequest is one tuple as sent by callers.
type TestModelRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type"`
}

// TestModelsRequest is a validation batch.
type TestModelsRequest struct {
	Models  []TestModelRequest `json:"models"`
	APIKeys APIKeys            `json:"api_keys,omitempty"`
}

// SingleTestRequest validates one model.
type SingleTestRequest struct {
	TestModelRequest
	APIKeys APIKeys `json:"api_keys,omitempty"`
}

func (h *Handler) dispatcherFor(override APIKeys) *validation.Dispatcher {
	if len(override) == 0 {
		return h.dispatcher
	}
	return h.dispatcher.WithCredentials(validation.StaticCredentials(h.resolve(override)))
}

func toModel(r TestModelRequest) (validation.ModelToTest, error) {
	return validation.ParseModelToTest(r.Provider, r.Model, r.Type, r.Label)
}

// TestModels validates a batch and returns results in request order.
func (h *Handler) TestModels(c *gin.Context) {
	var req TestModelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", err.Error())
		return
	}
	if len(req.Models) == 0 {
		badRequest(c, "invalid_request", "models must not be empty")
		return
	}
	if len(req.Models) > maxBatch {
		badRequest(c, "invalid_request", fmt.Sprintf("at most %d models per request", maxBatch))
		return
	}

	models := make([]validation.ModelToTest, 0, len(req.Models))
	for i, m := range req.Models {
		parsed, err := toModel(m)
		if err != nil {
			badRequest(c, "invalid_request", fmt.Sprintf("models[%d]: %v", i, err))
			return
		}
		models = append(models, parsed)
	}

	ctx := c.Request.Context()
	results := h.dispatcherFor(req.APIKeys).RunTests(ctx, models)
	logging.FromContext(ctx).WithField("models", len(results)).Info("validation batch finished")
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// TestModel validates a single model.
func (h *Handler) TestModel(c *gin.Context) {
	var req SingleTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", err.Error())
		return
	}
	m, err := toModel(req.TestModelRequest)
	if err != nil {
		badRequest(c, "invalid_request", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.dispatcherFor(req.APIKeys).RunTest(c.Request.Context(), m))
}

// Strategies lists the registered (provider, modality) probe pairs.
func (h *Handler) Strategies(c *gin.Context) {
	type pair struct {
		Provider constant.Provider `json:"provider"`
		Type     constant.Modality `json:"type"`
		Timeout  string            `json:"timeout"`
	}
	out := make([]pair, 0)
	for _, s := range h.dispatcher.Strategies() {
		out = append(out, pair{Provider: s.Provider, Type: s.Modality, Timeout: s.Timeout.String()})
	}
	c.JSON(http.StatusOK, gin.H{"strategies": out})
}
