// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/util"
)

// maxErrorBody bounds how much of a non-2xx body is kept for error reporting.
const maxErrorBody = 8 << 10

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if msg := e.ProviderMessage(); msg != "" {
		return fmt.Sprintf("server returned status %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("server returned status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ProviderMessage extracts the provider's own error text from the body.
func (e *StatusError) ProviderMessage() string {
	return util.ProviderErrorMessage(e.Body)
}

// HTTPFetcher performs authenticated GET requests against provider listing endpoints.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a new fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewHTTPFetcherWithClient(&http.Client{Timeout: timeout})
}

// NewHTTPFetcherWithClient wraps an existing client (tests pass httptest clients).
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

// Fetch retrieves the content from the given URL with per-request headers applied
// on top of the defaults. Any non-2xx status yields a *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		masked := make(map[string]string, len(req.Header))
		for k := range req.Header {
			masked[k] = util.MaskSensitiveHeaderValue(k, req.Header.Get(k))
		}
		log.WithField("url", util.MaskURL(url)).WithField("headers", masked).Debug("fetching")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
