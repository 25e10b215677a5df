// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/robo-tui/internal/config"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// ConfigStore holds the configuration handed to new connections.
type ConfigStore struct {
	p atomic.Pointer[config.Config]
}

// NewConfigStore creates a store holding cfg.
func NewConfigStore(cfg *config.Config) *ConfigStore {
	s := &ConfigStore{}
	s.Set(cfg)
	return s
}

// Get returns the current configuration.
func (s *ConfigStore) Get() *config.Config {
	return s.p.Load()
}

// Set replaces the current configuration.
func (s *ConfigStore) Set(cfg *config.Config) {
	s.p.Store(cfg)
}

// ConfigWatcher reloads a config file into a ConfigStore when it changes.
type ConfigWatcher struct {
	path     string
	store    *ConfigStore
	debounce time.Duration
	logger   *slog.Logger
	onReload func(*config.Config)
}

// NewConfigWatcher creates a watcher for path.
func NewConfigWatcher(path string, store *ConfigStore) *ConfigWatcher {
	return &ConfigWatcher{
		path:     filepath.Clean(path),
		store:    store,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger.
func (w *ConfigWatcher) WithLogger(l *slog.Logger) *ConfigWatcher {
	w.logger = l
	return w
}

// WithDebounce sets the settle delay.
func (w *ConfigWatcher) WithDebounce(d time.Duration) *ConfigWatcher {
	w.debounce = d
	return w
}

// OnReload registers a callback run after each successful reload.
func (w *ConfigWatcher) OnReload(fn func(*config.Config)) *ConfigWatcher {
	w.onReload = fn
	return w
}

// Name implements Service.
func (w *ConfigWatcher) Name() string { return "config watcher" }

// Run watches the file's directory until ctx ends. Editors often replace a
// file instead of writing it, so the directory is watched and events are
// filtered by name.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		// Not fatal: the server still runs with the settings it started with.
		w.logger.Warn("config reload disabled", "dir", dir, "error", err)
		<-ctx.Done()
		return nil
	}
	w.logger.Debug("watching config", "path", w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *ConfigWatcher) reload() {
	cfg, err := config.LoadFromPath(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous settings", "path", w.path, "error", err)
		return
	}
	w.store.Set(cfg)
	w.logger.Info("config reloaded", "path", w.path, "model", cfg.Gemini.Model)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
