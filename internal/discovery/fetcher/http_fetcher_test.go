// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch_AppliesHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	f := NewHTTPFetcher(5 * time.Second)

	body, err := f.Fetch(context.Background(), server.URL, map[string]string{"x-api-key": "secret"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))
}

func TestHTTPFetcher_Fetch_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), server.URL, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "Incorrect API key provided", statusErr.ProviderMessage())
	assert.Contains(t, err.Error(), "401")
}
