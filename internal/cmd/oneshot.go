// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery"
	"github.com/traylinx/modelprobe/internal/validation"
)

// Discover runs discovery for "all" (or "") or a single provider.
func (s *Service) Discover(ctx context.Context, provider string, refresh bool) (discovery.Snapshot, error) {
	name := strings.TrimSpace(provider)
	if name == "" || strings.EqualFold(name, "all") {
		return s.Catalog.DiscoverAll(ctx, s.Keys(), refresh), nil
	}
	p, ok := constant.ParseProvider(name)
	if !ok {
		return discovery.Snapshot{}, fmt.Errorf("unknown provider: %s", provider)
	}
	return discovery.SingleSnapshot(s.Catalog.DiscoverProvider(ctx, p, s.Credentials.APIKey(p))), nil
}

// Test validates one model.
func (s *Service) Test(ctx context.Context, provider, model, modality string) (validation.TestResult, error) {
	m, err := validation.ParseModelToTest(provider, model, modality, "")
	if err != nil {
		return validation.TestResult{}, err
	}
	return s.Dispatcher.RunTest(ctx, m), nil
}

// Verify checks whether a model id exists for a provider.
func (s *Service) Verify(ctx context.Context, provider, model string) (discovery.VerifyResult, error) {
	p, ok := constant.ParseProvider(provider)
	if !ok {
		return discovery.VerifyResult{}, fmt.Errorf("unknown provider: %s", provider)
	}
	if model == "" {
		return discovery.VerifyResult{}, fmt.Errorf("model is required")
	}
	key := s.Credentials.APIKey(p)
	if key == "" {
		return discovery.VerifyResult{Provider: p, Model: model, Error: discovery.ErrorNoCredential}, nil
	}
	exists, err := s.Catalog.Verify(ctx, p, key, model)
	if err != nil {
		return discovery.VerifyResult{}, err
	}
	return discovery.VerifyResult{Provider: p, Model: model, Exists: exists}, nil
}

// WriteJSON prints v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
