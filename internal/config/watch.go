// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// reloadDelay lets editors finish writing before the file is re-read.
const reloadDelay = 100 * time.Millisecond

// Watch reloads configFile whenever it changes and hands each valid result to onChange.
// The parent directory is watched so atomic rename-on-save is picked up.
// Invalid files are logged and ignored. Watch returns once ctx is done.
func Watch(ctx context.Context, configFile string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(configFile)
	if err != nil {
		watcher.Close()
		return err
	}
	name := filepath.Base(abs)
	if err = watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Infof("config file changed (%s), reloading...", event.Name)
				time.Sleep(reloadDelay)
				cfg, errLoad := LoadConfig(abs)
				if errLoad != nil {
					log.Errorf("failed to reload config: %v", errLoad)
					continue
				}
				cfg.ApplyEnv(nil)
				onChange(cfg)
			case errWatch, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("config watcher error: %v", errWatch)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
