// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"maps"
	"sync/atomic"

	"github.com/traylinx/modelprobe/internal/constant"
)

// Credentials is a hot-swappable API key store. Readers always see a complete key set.
type Credentials struct {
	keys atomic.Pointer[map[constant.Provider]string]
}

// NewCredentials creates a store seeded with keys.
func NewCredentials(keys map[constant.Provider]string) *Credentials {
	c := &Credentials{}
	c.Replace(keys)
	return c
}

// Replace swaps the whole key set.
func (c *Credentials) Replace(keys map[constant.Provider]string) {
	cp := maps.Clone(keys)
	if cp == nil {
		cp = map[constant.Provider]string{}
	}
	c.keys.Store(&cp)
}

// APIKey returns the key for provider or "".
func (c *Credentials) APIKey(provider constant.Provider) string {
	if m := c.keys.Load(); m != nil {
		return (*m)[provider]
	}
	return ""
}

// Keys returns a copy of the current key set.
func (c *Credentials) Keys() map[constant.Provider]string {
	if m := c.keys.Load(); m != nil {
		return maps.Clone(*m)
	}
	return map[constant.Provider]string{}
}
