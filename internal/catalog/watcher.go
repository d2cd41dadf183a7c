// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tombee/starfish/pkg/operation"
)

// Watcher reloads a registry when catalog files change.
type Watcher struct {
	// fsWatcher is the underlying filesystem watcher
	fsWatcher *fsnotify.Watcher

	patterns  []string
	matcher   *patternSet
	registry  *operation.Registry
	opts      Options
	onReload  func(count int, err error)
	logger    *slog.Logger
	recursive map[string]bool
	debounce  time.Duration
	pending   *time.Timer

	// mu protects pending
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WatcherConfig configures the catalog watcher.
type WatcherConfig struct {
	// Patterns are the catalog file patterns, as passed to Load.
	Patterns []string

	// Registry receives the reloaded operations.
	Registry *operation.Registry

	// Options builds the reloaded operations.
	Options Options

	// Logger is used for structured logging (optional)
	Logger *slog.Logger

	// DebounceDelay coalesces bursts of events (defaults to 200ms)
	DebounceDelay time.Duration

	// OnReload is called after every reload attempt (optional)
	OnReload func(count int, err error)
}

// NewWatcher starts watching the directories the patterns live in.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if len(cfg.Patterns) == 0 {
		return nil, errors.New("at least one pattern is required")
	}

	matcher, err := newPatternSet(cfg.Patterns)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		fsWatcher: fsWatcher,
		patterns:  cfg.Patterns,
		matcher:   matcher,
		registry:  cfg.Registry,
		opts:      cfg.Options,
		onReload:  cfg.OnReload,
		logger:    logger.With(slog.String("component", "catalog")),
		recursive: matcher.Roots(),
		debounce:  debounce,
		ctx:       ctx,
		cancel:    cancel,
	}

	for dir, recursive := range w.recursive {
		if err := w.watchDir(dir, recursive); err != nil {
			cancel()
			_ = fsWatcher.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.processEvents()

	return w, nil
}

// watchDir adds dir, and every directory below it when recursive is set.
func (w *Watcher) watchDir(dir string, recursive bool) error {
	if !recursive {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", dir, err)
		}
		w.logger.Debug("watching catalog directory", "path", dir)
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", path, err)
		}
		w.logger.Debug("watching catalog directory", "path", path)
		return nil
	})
}

// processEvents processes filesystem events and schedules reloads.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) && w.underRecursiveRoot(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchDir(event.Name, true); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			w.scheduleReload()
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.matcher.Match(event.Name) {
		return
	}

	w.logger.Info("catalog file changed", "file", event.Name, "op", event.Op.String())
	w.scheduleReload()
}

func (w *Watcher) underRecursiveRoot(path string) bool {
	for root, recursive := range w.recursive {
		if !recursive {
			continue
		}
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// scheduleReload restarts the debounce timer.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.Reload)
}

// Reload loads the catalog and replaces the registry contents. On
// failure the registry keeps its previous operations.
func (w *Watcher) Reload() {
	w.mu.Lock()
	w.pending = nil
	w.mu.Unlock()

	ops, err := Load(w.patterns, w.opts)
	if err == nil {
		err = w.registry.Replace(ops)
	}

	if err != nil {
		w.logger.Error("catalog reload failed, keeping previous operations", "error", err)
	} else {
		w.logger.Info("catalog reloaded", "operations", len(ops))
	}

	if w.onReload != nil {
		w.onReload(len(ops), err)
	}
}

// Close shuts down the watcher.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()

	w.wg.Wait()

	return w.fsWatcher.Close()
}
