// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry holds the canonical model records produced by discovery and an
// in-memory index of the most recently published catalog, used by read-only API callers.
package registry

import (
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/constant"
)

// ProviderRegistration tracks the models last published for one provider.
type ProviderRegistration struct {
	// Models maps model ID to its canonical record
	Models map[string]DiscoveredModel
	// LastUpdated tracks when this registration was last replaced
	LastUpdated time.Time
}

// ModelRegistry indexes the latest successful discovery results per provider.
// A failed discovery never clears a provider's previous registration.
type ModelRegistry struct {
	providers map[constant.Provider]*ProviderRegistration
	mutex     *sync.RWMutex
}

// NewModelRegistry creates a new, empty model registry.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{
		providers: make(map[constant.Provider]*ProviderRegistration),
		mutex:     &sync.RWMutex{},
	}
}

// Publish registers every successful result, replacing that provider's previous models.
func (r *ModelRegistry) Publish(results []ProviderDiscoveryResult) {
	for _, res := range results {
		if !res.Success {
			continue
		}
		r.RegisterProvider(res.Provider, res.Models, res.DiscoveredAt)
	}
}

// RegisterProvider replaces the models known for a provider.
func (r *ModelRegistry) RegisterProvider(provider constant.Provider, models []DiscoveredModel, at time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	reg := &ProviderRegistration{
		Models:      make(map[string]DiscoveredModel, len(models)),
		LastUpdated: at,
	}
	for _, m := range models {
		if m.ID == "" {
			continue
		}
		reg.Models[m.ID] = m
	}
	r.providers[provider] = reg
	log.Debugf("Registered %d models for provider %s", len(reg.Models), provider)
}

// UnregisterProvider drops a provider from the index.
func (r *ModelRegistry) UnregisterProvider(provider constant.Provider) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.providers, provider)
}

// GetModel looks up a model by its (provider, id) identity.
func (r *ModelRegistry) GetModel(provider constant.Provider, id string) (DiscoveredModel, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	reg, ok := r.providers[provider]
	if !ok {
		return DiscoveredModel{}, false
	}
	m, ok := reg.Models[id]
	return m, ok
}

// Filter narrows GetAvailableModels. Zero values match everything.
type Filter struct {
	Provider constant.Provider
	Type     ModelType
}

// GetAvailableModels returns the indexed models matching f, sorted by provider then id.
func (r *ModelRegistry) GetAvailableModels(f Filter) []DiscoveredModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]DiscoveredModel, 0)
	for provider, reg := range r.providers {
		if f.Provider != "" && provider != f.Provider {
			continue
		}
		for _, m := range reg.Models {
			if f.Type != "" && m.ModelType != f.Type {
				continue
			}
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// LastUpdated returns when a provider was last registered.
func (r *ModelRegistry) LastUpdated(provider constant.Provider) (time.Time, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	reg, ok := r.providers[provider]
	if !ok {
		return time.Time{}, false
	}
	return reg.LastUpdated, true
}
