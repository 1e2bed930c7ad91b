// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cmd assembles the modelprobe components from a Config and runs
// them, either as a long-lived API service or for one-shot CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/api"
	"github.com/traylinx/modelprobe/internal/api/handlers"
	"github.com/traylinx/modelprobe/internal/config"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery"
	"github.com/traylinx/modelprobe/internal/discovery/fetcher"
	"github.com/traylinx/modelprobe/internal/metrics"
	"github.com/traylinx/modelprobe/internal/probe"
	"github.com/traylinx/modelprobe/internal/registry"
	"github.com/traylinx/modelprobe/internal/validation"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Service holds the wired components.
type Service struct {
	cfg         *config.Config
	Metrics     *metrics.Metrics
	Credentials *config.Credentials
	Models      *registry.ModelRegistry
	Catalog     *discovery.Catalog
	Dispatcher  *validation.Dispatcher
}

// ServiceOption customizes NewService.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	httpClient *http.Client
	dialer     probe.Dialer
}

// WithHTTPClient replaces the client used for listings and REST probes.
func WithHTTPClient(c *http.Client) ServiceOption {
	return func(o *serviceOptions) { o.httpClient = c }
}

// WithDialer replaces the realtime socket dialer.
func WithDialer(d probe.Dialer) ServiceOption {
	return func(o *serviceOptions) { o.dialer = d }
}

// NewService builds every component from cfg.
func NewService(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := metrics.New()
	creds := config.NewCredentials(cfg.APIKeys())
	models := registry.NewModelRegistry()

	var f discovery.Fetcher
	if o.httpClient != nil {
		f = fetcher.NewHTTPFetcherWithClient(o.httpClient)
	} else {
		f = fetcher.NewHTTPFetcher(cfg.RequestTimeout())
	}
	adapters, err := discovery.NewAdapters(cfg.SourceOptions(), f)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider adapters: %w", err)
	}
	cache, err := discovery.NewCache(cfg.Discovery.CacheDir, cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to open discovery cache: %w", err)
	}
	catalog := discovery.NewCatalog(adapters, cache, discovery.WithRegistry(models), discovery.WithMetrics(m))

	strategies := probe.NewDefaultRegistry(probe.Clients{
		HTTP:     o.httpClient,
		BaseURLs: cfg.BaseURLs(),
		Dialer:   o.dialer,
	}, cfg.ProbeTimeouts())
	dispatcher := validation.NewDispatcher(strategies, creds,
		validation.WithConcurrency(cfg.Validation.MaxConcurrency),
		validation.WithMetrics(m))

	return &Service{
		cfg:         cfg,
		Metrics:     m,
		Credentials: creds,
		Models:      models,
		Catalog:     catalog,
		Dispatcher:  dispatcher,
	}, nil
}

// Keys returns the current credential set.
func (s *Service) Keys() map[constant.Provider]string { return s.Credentials.Keys() }

// Reload applies a changed config. Credentials swap atomically and cached
// snapshots are dropped; listing overrides take effect on restart. Providers
// left without a key leave the model index.
func (s *Service) Reload(cfg *config.Config) {
	keys := cfg.APIKeys()
	s.Credentials.Replace(keys)
	s.Catalog.Invalidate()
	for _, p := range constant.Providers {
		if keys[p] == "" {
			s.Models.UnregisterProvider(p)
		}
	}
	log.WithField("providers", len(cfg.APIKeys())).Info("credentials reloaded")
}

// Server builds the HTTP API over the service components.
func (s *Service) Server() *api.Server {
	h := handlers.NewHandler(s.Catalog, s.Dispatcher, s.Models, s.Credentials)
	return api.NewServer(s.cfg, h, s.Metrics)
}

// Run serves the API until ctx is done. When configPath is set the file is
// watched for credential changes.
func (s *Service) Run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if configPath != "" {
		if err := config.Watch(ctx, configPath, s.Reload); err != nil {
			log.Warnf("config hot reload disabled: %v", err)
		}
	}
	if interval := s.cfg.RefreshInterval(); interval > 0 {
		go discovery.NewRefresher(s.Catalog, s.Keys, interval).Run(ctx)
	}

	server := s.Server()
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancelShutdown()
	return server.Stop(shutdownCtx)
}

// StartService runs the API until SIGINT or SIGTERM.
func StartService(cfg *config.Config, configPath string) error {
	ctxSignal, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	service, err := NewService(cfg)
	if err != nil {
		return err
	}
	if err = service.Run(ctxSignal, configPath); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("service exited with error: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}
