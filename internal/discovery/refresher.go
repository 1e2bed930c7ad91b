// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/modelprobe/internal/constant"
)

// KeySource returns the current provider credentials.
type KeySource func() map[constant.Provider]string

// Refresher periodically forces a discovery run so the cached snapshot and the
// model registry stay warm.
type Refresher struct {
	catalog  *Catalog
	keys     KeySource
	interval time.Duration
}

// NewRefresher creates a refresher. A non-positive interval disables it.
func NewRefresher(catalog *Catalog, keys KeySource, interval time.Duration) *Refresher {
	return &Refresher{catalog: catalog, keys: keys, interval: interval}
}

// Run blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.WithField("interval", r.interval).Info("Discovery refresher started")
	for {
		select {
		case <-ctx.Done():
			log.Debug("Discovery refresher stopped")
			return
		case <-ticker.C:
			snap := r.catalog.DiscoverAll(ctx, r.keys(), true)
			log.WithField("models", snap.TotalModels).WithField("errors", len(snap.Errors)).Debug("Background discovery refresh complete")
		}
	}
}
