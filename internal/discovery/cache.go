// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/util"
)

// DefaultCacheTTL is the snapshot freshness window.
const DefaultCacheTTL = time.Hour

// Cache holds catalog snapshots in memory and, when a directory is configured,
// mirrors them to disk. Disk I/O is best-effort: a failed write only logs.
type Cache struct {
	dir string
	ttl time.Duration
	mu  sync.RWMutex
	mem map[string]*Snapshot
}

// NewCache creates a snapshot cache. An empty dir keeps snapshots in memory only.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	// Expand ~ to home directory
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &Cache{
		dir: dir,
		ttl: ttl,
		mem: make(map[string]*Snapshot),
	}, nil
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns a fresh snapshot for key, or nil.
func (c *Cache) Get(key string) *Snapshot {
	now := time.Now()

	c.mu.RLock()
	snap, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		if now.Before(snap.ExpiresAt) {
			return snap
		}
		return nil
	}

	snap, err := c.loadFromDisk(key)
	if err != nil {
		log.WithError(err).Debug("Ignoring unreadable discovery cache file")
		return nil
	}
	if snap == nil || !now.Before(snap.ExpiresAt) {
		return nil
	}

	c.mu.Lock()
	c.mem[key] = snap
	c.mu.Unlock()
	return snap
}

// Set stores a snapshot under key, replacing any previous entry.
func (c *Cache) Set(key string, snap *Snapshot) {
	c.mu.Lock()
	c.mem[key] = snap
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	util.BestEffort("discovery cache write", func() error {
		return util.SecureWriteJSON(c.filePath(key), snap, nil)
	})
}

// Clear drops every snapshot, in memory and on disk.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.mem = make(map[string]*Snapshot)
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	util.BestEffort("discovery cache clear", func() error {
		entries, err := os.ReadDir(c.dir)
		if err != nil {
			return fmt.Errorf("failed to read cache directory: %w", err)
		}
		var errs []error
		for _, entry := range entries {
			if filepath.Ext(entry.Name()) == ".json" {
				if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
					errs = append(errs, err)
				}
			}
		}
		return errors.Join(errs...)
	})
}

// Evict drops every snapshot, in memory and on disk, for which match is true.
func (c *Cache) Evict(match func(*Snapshot) bool) {
	c.mu.Lock()
	for key, snap := range c.mem {
		if match(snap) {
			delete(c.mem, key)
		}
	}
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	util.BestEffort("discovery cache evict", func() error {
		entries, err := os.ReadDir(c.dir)
		if err != nil {
			return fmt.Errorf("failed to read cache directory: %w", err)
		}
		var errs []error
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, "catalog-") || filepath.Ext(name) != ".json" {
				continue
			}
			snap, err := c.loadFromDisk(strings.TrimSuffix(strings.TrimPrefix(name, "catalog-"), ".json"))
			if err != nil || snap == nil || !match(snap) {
				continue
			}
			if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !os.IsNotExist(err) {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dir, "catalog-"+key+".json")
}

func (c *Cache) loadFromDisk(key string) (*Snapshot, error) {
	if c.dir == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	return &snap, nil
}

// SnapshotKey identifies a credentialed provider set. Keys are folded in as a
// SHA-256 fingerprint so two callers with different credentials never share a
// snapshot, and no key material reaches the disk.
func SnapshotKey(keys map[constant.Provider]string) string {
	providers := make([]constant.Provider, 0, len(keys))
	for p, k := range keys {
		if k != "" {
			providers = append(providers, p)
		}
	}
	constant.SortProviders(providers)

	h := sha256.New()
	for _, p := range providers {
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write([]byte(keys[p]))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
