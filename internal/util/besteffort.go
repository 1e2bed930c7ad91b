// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// BestEffort runs a side effect whose failure must never reach the caller.
// Errors and panics are logged at warn level and swallowed. Use it for cache
// persistence, metrics and similar fire-and-forget work.
func BestEffort(op string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("op", op).Warnf("best-effort operation panicked: %v", r)
		}
	}()
	if err := fn(); err != nil {
		log.WithField("op", op).WithError(err).Warn("best-effort operation failed")
	}
}

// RecoverError converts a recovered panic value into an error.
func RecoverError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
