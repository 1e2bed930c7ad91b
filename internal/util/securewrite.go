// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SecureWriteOptions configures the secure write operation.
type SecureWriteOptions struct {
	// Permissions sets the file permissions (default: 0600)
	Permissions os.FileMode
}

// SecureWrite atomically writes data to a file using the rename-swap pattern.
// It writes to a temporary file first, calls fsync(), then atomically renames
// to the target path, so a crash never leaves a half-written cache file behind.
func SecureWrite(path string, data []byte, opts *SecureWriteOptions) error {
	perm := os.FileMode(0600)
	if opts != nil && opts.Permissions != 0 {
		perm = opts.Permissions
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempPath := fmt.Sprintf("%s.tmp.%s", path, uuid.New().String())
	tempFile, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file %s: %w", tempPath, err)
	}

	cleanupTemp := true
	defer func() {
		if cleanupTemp {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to target: %w", err)
	}
	cleanupTemp = false

	// Directory sync is advisory; the file itself is already durable.
	_ = syncDir(dir)
	return nil
}

// syncDir syncs a directory to ensure metadata changes are persisted.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// SecureWriteJSON marshals v to indented JSON and writes it atomically.
func SecureWriteJSON(path string, v interface{}, opts *SecureWriteOptions) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return SecureWrite(path, data, opts)
}
