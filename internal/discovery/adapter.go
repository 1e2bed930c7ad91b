// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery/fetcher"
	"github.com/traylinx/modelprobe/internal/discovery/parsers"
	"github.com/traylinx/modelprobe/internal/registry"
)

// PagedAdapter lists a provider by walking its paginated listing endpoint.
// Pages are fetched sequentially; a failure on any page fails the whole run.
// There are no retries.
type PagedAdapter struct {
	source  Source
	fetcher Fetcher
}

// NewPagedAdapter creates an adapter for the given source.
func NewPagedAdapter(source Source, f Fetcher) *PagedAdapter {
	return &PagedAdapter{source: source, fetcher: f}
}

// ProviderID returns the provider this adapter lists.
func (a *PagedAdapter) ProviderID() constant.Provider {
	return a.source.Provider
}

// Discover fetches every page, filters and maps the entries.
func (a *PagedAdapter) Discover(ctx context.Context, apiKey string) registry.ProviderDiscoveryResult {
	logger := log.WithField("provider", a.source.Provider)

	items, err := a.fetchAll(ctx, apiKey)
	if err != nil {
		logger.WithError(err).Warn("Discovery failed for provider")
		return registry.FailedResult(a.source.Provider, a.describe(err))
	}

	models := make([]registry.DiscoveredModel, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ID] || !a.source.Allowed(item.ID) {
			continue
		}
		seen[item.ID] = true
		models = append(models, a.toModel(item))
	}

	logger.WithField("listed", len(items)).WithField("kept", len(models)).Info("Successfully discovered models")
	return registry.ProviderDiscoveryResult{
		Provider:     a.source.Provider,
		Success:      true,
		Models:       models,
		DiscoveredAt: time.Now(),
	}
}

// Verify performs a single-model lookup. Only HTTP 404 means the model does not
// exist; auth failures and transport errors are inconclusive and report true.
func (a *PagedAdapter) Verify(ctx context.Context, apiKey, modelID string) bool {
	_, err := a.fetcher.Fetch(ctx, a.source.ModelURL(modelID), a.source.AuthHeaders(apiKey))
	var statusErr *fetcher.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return false
	}
	if err != nil {
		log.WithField("provider", a.source.Provider).WithField("model", modelID).WithError(err).Debug("Verify inconclusive, assuming model exists")
	}
	return true
}

func (a *PagedAdapter) fetchAll(ctx context.Context, apiKey string) ([]parsers.Item, error) {
	headers := a.source.AuthHeaders(apiKey)
	var items []parsers.Item
	visited := map[string]bool{}
	cursor := ""

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := a.fetcher.Fetch(ctx, a.source.PageURL(cursor), headers)
		if err != nil {
			return nil, err
		}
		parsed, err := a.source.Parser.ParsePage(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %d: %w", page, err)
		}
		items = append(items, parsed.Items...)

		next := parsed.NextCursor
		if next == "" {
			return items, nil
		}
		if visited[next] {
			log.WithField("provider", a.source.Provider).WithField("cursor", next).Warn("Pagination cursor repeated, stopping")
			return items, nil
		}
		visited[next] = true
		cursor = next
	}
}

func (a *PagedAdapter) toModel(item parsers.Item) registry.DiscoveredModel {
	displayName := item.DisplayName
	if displayName == "" {
		displayName = item.ID
	}
	return registry.DiscoveredModel{
		ID:               item.ID,
		Provider:         a.source.Provider,
		DisplayName:      displayName,
		ModelType:        a.source.InferType(item),
		Created:          item.Created,
		OwnedBy:          item.OwnedBy,
		Description:      item.Description,
		InputTokenLimit:  item.InputTokenLimit,
		OutputTokenLimit: item.OutputTokenLimit,
	}
}

func (a *PagedAdapter) describe(err error) string {
	name := a.source.Provider.DisplayName()
	var statusErr *fetcher.StatusError
	switch {
	case errors.As(err, &statusErr):
		if msg := statusErr.ProviderMessage(); msg != "" {
			return fmt.Sprintf("%s API returned status %d: %s", name, statusErr.StatusCode, msg)
		}
		return fmt.Sprintf("%s API returned status %d", name, statusErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("timed out listing %s models", name)
	case errors.Is(err, context.Canceled):
		return "discovery cancelled"
	case errors.Is(err, parsers.ErrInvalidJSON):
		return fmt.Sprintf("%s returned an unreadable model list: %v", name, err)
	}
	return fmt.Sprintf("failed to list %s models: %v", name, err)
}

// NewAdapters builds a PagedAdapter for every supported provider. Providers
// missing from opts use their defaults.
func NewAdapters(opts map[constant.Provider]SourceOptions, f Fetcher) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(constant.Providers))
	for _, p := range constant.Providers {
		src, err := NewSource(p, opts[p])
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, NewPagedAdapter(src, f))
	}
	return adapters, nil
}
