// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "XAI_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestBuildRootCmd(t *testing.T) {
	root := buildRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "discover", "test", "verify"} {
		assert.True(t, names[want], "missing %s command", want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestDiscoverCommand(t *testing.T) {
	clearProviderEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"grok-3"},{"id":"grok-beta"}]}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("providers:\n  xai:\n    api-key: xai-test\n    base-url: %s\n", srv.URL)), 0o600))

	var out bytes.Buffer
	root := buildRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"discover", "--config", path, "--provider", "xai"})
	require.NoError(t, root.Execute())

	assert.Equal(t, int64(1), gjson.Get(out.String(), "total_models").Int())
	assert.Equal(t, "grok-3", gjson.Get(out.String(), "results.0.models.0.id").String())
}

func TestVerifyCommandWithoutKey(t *testing.T) {
	clearProviderEnv(t)
	var out bytes.Buffer
	root := buildRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"verify", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--provider", "anthropic", "--model", "claude-x"})
	require.NoError(t, root.Execute())

	assert.False(t, gjson.Get(out.String(), "exists").Bool())
	assert.Equal(t, "no credential", gjson.Get(out.String(), "error").String())
}

func TestTestCommandRequiresModel(t *testing.T) {
	root := buildRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"test", "--provider", "openai"})
	assert.Error(t, root.Execute())
}
