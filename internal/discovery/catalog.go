// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/metrics"
	"github.com/traylinx/modelprobe/internal/registry"
	"github.com/traylinx/modelprobe/internal/util"
	"golang.org/x/sync/singleflight"
)

// ErrorNoCredential is reported for providers that were skipped for lack of a key.
const ErrorNoCredential = "no credential"

// DefaultRunTimeout bounds one full discovery fan-out.
const DefaultRunTimeout = 2 * time.Minute

// Snapshot is the merged outcome of one discovery run. Snapshots are shared
// between callers and must not be mutated.
type Snapshot struct {
	// Results holds one entry per known provider, ordered by provider name.
	Results []registry.ProviderDiscoveryResult `json:"results"`
	// TotalModels counts models across successful providers.
	TotalModels int `json:"total_models"`
	// Errors lists "<provider>: <error>" for every attempted provider that failed.
	Errors    []string  `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Catalog orchestrates discovery across providers.
type Catalog struct {
	adapters   map[constant.Provider]Adapter
	providers  []constant.Provider
	cache      *Cache
	group      singleflight.Group
	models     *registry.ModelRegistry
	metrics    *metrics.Metrics
	runTimeout time.Duration
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRegistry publishes every fresh result into the given model registry.
func WithRegistry(r *registry.ModelRegistry) Option {
	return func(c *Catalog) { c.models = r }
}

// WithMetrics records discovery runs.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithRunTimeout overrides DefaultRunTimeout.
func WithRunTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.runTimeout = d
		}
	}
}

// NewCatalog creates an orchestrator over the given adapters. A nil cache
// gets an in-memory cache with the default TTL.
func NewCatalog(adapters []Adapter, cache *Cache, opts ...Option) *Catalog {
	if cache == nil {
		cache, _ = NewCache("", DefaultCacheTTL)
	}
	c := &Catalog{
		adapters:   make(map[constant.Provider]Adapter, len(adapters)),
		cache:      cache,
		runTimeout: DefaultRunTimeout,
	}
	for _, a := range adapters {
		if _, dup := c.adapters[a.ProviderID()]; !dup {
			c.providers = append(c.providers, a.ProviderID())
		}
		c.adapters[a.ProviderID()] = a
	}
	constant.SortProviders(c.providers)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Providers returns the providers with a registered adapter, sorted.
func (c *Catalog) Providers() []constant.Provider {
	return append([]constant.Provider(nil), c.providers...)
}

// DiscoverAll runs every adapter that has a key and merges the outcomes.
// Fresh cached snapshots are returned as-is unless force is set. Concurrent
// misses for the same credential set share one upstream run.
func (c *Catalog) DiscoverAll(ctx context.Context, keys map[constant.Provider]string, force bool) Snapshot {
	scoped := make(map[constant.Provider]string, len(keys))
	for p, k := range keys {
		if _, ok := c.adapters[p]; ok && k != "" {
			scoped[p] = k
		}
	}
	key := SnapshotKey(scoped)

	if !force {
		if snap := c.cache.Get(key); snap != nil {
			log.WithField("providers", len(scoped)).Debug("Using cached discovery snapshot")
			return *snap
		}
	}

	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		if !force {
			if snap := c.cache.Get(key); snap != nil {
				return snap, nil
			}
		}
		// The run is shared by every waiting caller, so it must not die with the
		// first caller's context.
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.runTimeout)
		defer cancel()

		snap := c.collect(runCtx, scoped)
		c.cache.Set(key, snap)
		if c.models != nil {
			c.models.Publish(snap.Results)
		}
		return snap, nil
	})
	if shared {
		log.Debug("Joined in-flight discovery run")
	}
	return *v.(*Snapshot)
}

func (c *Catalog) collect(ctx context.Context, keys map[constant.Provider]string) *Snapshot {
	log.WithField("count", len(keys)).Debug("Starting discovery for all providers")

	results := make([]registry.ProviderDiscoveryResult, len(c.providers))
	var wg sync.WaitGroup

	for i, p := range c.providers {
		apiKey := keys[p]
		if apiKey == "" {
			results[i] = registry.FailedResult(p, ErrorNoCredential)
			continue
		}
		wg.Add(1)
		go func(i int, p constant.Provider, apiKey string) {
			defer wg.Done()
			results[i] = c.run(ctx, p, apiKey)
		}(i, p, apiKey)
	}
	wg.Wait()

	now := time.Now()
	snap := &Snapshot{
		Results:   results,
		Errors:    []string{},
		Timestamp: now,
		ExpiresAt: now.Add(c.cache.TTL()),
	}
	for _, res := range results {
		if res.Success {
			snap.TotalModels += len(res.Models)
			continue
		}
		if keys[res.Provider] != "" {
			snap.Errors = append(snap.Errors, fmt.Sprintf("%s: %s", res.Provider, res.Error))
		}
	}

	log.WithField("models", snap.TotalModels).WithField("errors", len(snap.Errors)).Info("Discovery run complete")
	return snap
}

// run invokes one adapter. A panic inside the adapter becomes a failed result.
func (c *Catalog) run(ctx context.Context, p constant.Provider, apiKey string) (result registry.ProviderDiscoveryResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("provider", p).Errorf("Discovery panicked: %v", r)
			result = registry.FailedResult(p, fmt.Sprintf("discovery failed: %v", util.RecoverError(r)))
		}
		c.metrics.ObserveDiscovery(string(p), result.Success, time.Since(start), len(result.Models))
	}()

	log.WithField("provider", p).WithField("key", util.HideAPIKey(apiKey)).Debug("Running discovery for provider")
	result = c.adapters[p].Discover(ctx, apiKey)
	if result.Models == nil {
		result.Models = []registry.DiscoveredModel{}
	}
	return result
}

// DiscoverProvider lists a single provider, bypassing the snapshot cache.
// Cached snapshots that listed the provider are evicted so the next
// DiscoverAll does not serve an older view of it.
func (c *Catalog) DiscoverProvider(ctx context.Context, p constant.Provider, apiKey string) registry.ProviderDiscoveryResult {
	if _, ok := c.adapters[p]; !ok {
		return registry.FailedResult(p, fmt.Sprintf("unsupported provider: %s", p))
	}
	if apiKey == "" {
		return registry.FailedResult(p, ErrorNoCredential)
	}
	result := c.run(ctx, p, apiKey)
	c.cache.Evict(func(snap *Snapshot) bool {
		for _, r := range snap.Results {
			if r.Provider == p && r.Error != ErrorNoCredential {
				return true
			}
		}
		return false
	})
	if c.models != nil {
		c.models.Publish([]registry.ProviderDiscoveryResult{result})
	}
	return result
}

// VerifyResult answers a verify request from the CLI or the API.
type VerifyResult struct {
	Provider constant.Provider `json:"provider"`
	Model    string            `json:"model"`
	Exists   bool              `json:"exists"`
	Error    string            `json:"error,omitempty"`
}

// Verify checks whether a single model exists for a provider.
func (c *Catalog) Verify(ctx context.Context, p constant.Provider, apiKey, modelID string) (bool, error) {
	adapter, ok := c.adapters[p]
	if !ok {
		return false, fmt.Errorf("unsupported provider: %s", p)
	}
	return adapter.Verify(ctx, apiKey, modelID), nil
}

// Invalidate drops every cached snapshot.
func (c *Catalog) Invalidate() {
	c.cache.Clear()
}

// SingleSnapshot wraps one provider result in the snapshot shape.
func SingleSnapshot(r registry.ProviderDiscoveryResult) Snapshot {
	snap := Snapshot{
		Results:   []registry.ProviderDiscoveryResult{r},
		Errors:    []string{},
		Timestamp: r.DiscoveredAt,
	}
	if r.Success {
		snap.TotalModels = len(r.Models)
	} else if r.Error != ErrorNoCredential {
		snap.Errors = append(snap.Errors, fmt.Sprintf("%s: %s", r.Provider, r.Error))
	}
	return snap
}
