// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package api provides the HTTP API server for modelprobe. It wires the gin
// engine, middleware and routes, and manages the server lifecycle.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/api/handlers"
	"github.com/traylinx/modelprobe/internal/config"
	"github.com/traylinx/modelprobe/internal/logging"
	"github.com/traylinx/modelprobe/internal/metrics"
)

// Server is the modelprobe HTTP server.
type Server struct {
	engine  *gin.Engine
	server  *http.Server
	handler *handlers.Handler
	metrics *metrics.Metrics
}

// NewServer builds the gin engine and registers every route.
func NewServer(cfg *config.Config, h *handlers.Handler, m *metrics.Metrics) *Server {
	engine := gin.New()
	engine.Use(logging.RequestID(), logging.GinLogrusLogger(), logging.GinLogrusRecovery())

	s := &Server{
		engine:  engine,
		handler: h,
		metrics: m,
	}
	s.setupRoutes()

	addr := ":0"
	if cfg != nil {
		addr = cfg.Addr()
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.handler.Healthz)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/discovery", s.handler.Discover)
		v1.GET("/catalog", s.handler.Catalog)
		v1.POST("/verify", s.handler.Verify)
		v1.POST("/validation", s.handler.TestModels)
		v1.POST("/validation/single", s.handler.TestModel)
		v1.GET("/validation/strategies", s.handler.Strategies)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until Stop is called. It returns nil on a clean shutdown.
func (s *Server) Start() error {
	log.Infof("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	log.Debug("Stopping API server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	log.Debug("API server stopped")
	return nil
}
