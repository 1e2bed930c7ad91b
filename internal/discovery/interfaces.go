// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package discovery lists the models each provider exposes to a given credential
// and merges the per-provider outcomes into catalog snapshots.
package discovery

import (
	"context"

	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery/parsers"
	"github.com/traylinx/modelprobe/internal/registry"
)

// Adapter is the per-provider discovery contract. Discover never returns an
// error: every failure is reported inside the result.
type Adapter interface {
	// ProviderID returns the provider this adapter lists.
	ProviderID() constant.Provider

	// Discover lists every model visible to apiKey.
	Discover(ctx context.Context, apiKey string) registry.ProviderDiscoveryResult

	// Verify reports whether a single model id exists. Only a definitive
	// not-found answer yields false.
	Verify(ctx context.Context, apiKey, modelID string) bool
}

// Fetcher is the interface for retrieving raw content from a remote source (URL).
type Fetcher interface {
	// Fetch retrieves the content from the given URL with the given request headers.
	Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// Parser decodes one page of a listing response.
type Parser interface {
	// ParsePage extracts raw model entries and the next-page cursor.
	ParsePage(content []byte) (parsers.Page, error)
}
