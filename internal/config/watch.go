// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/herofield"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc receives every reload attempt. Exactly one of cfg and err is
// meaningful.
type ReloadFunc func(cfg Config, err error)

// Watch reloads l whenever l.Path changes and passes the result to fn. It
// returns once the watch is established; fn runs on a background
// goroutine until ctx is cancelled.
//
// The parent directory is watched rather than the file so that editors
// which replace the file on save keep triggering reloads.
func (l Loader) Watch(ctx context.Context, debounce time.Duration, fn ReloadFunc) error {
	if l.Path == "" {
		return fmt.Errorf("%w: nothing to watch", ErrInvalid)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(l.Path)
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", l.Path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return fmt.Errorf("config: watch %s: %w", l.Path, err)
	}
	herofield.Logger().Debug("config: watching", "path", target)

	go l.watchLoop(ctx, w, target, debounce, fn)
	return nil
}

func (l Loader) watchLoop(ctx context.Context, w *fsnotify.Watcher, target string, debounce time.Duration, fn ReloadFunc) {
	defer func() { _ = w.Close() }()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if relevant(ev, target) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			herofield.Logger().Warn("config: watcher error", "err", err)
		case <-timer.C:
			cfg, err := l.Load()
			if err != nil {
				herofield.Logger().Warn("config: reload failed", "path", target, "err", err)
			}
			fn(cfg, err)
		case <-ctx.Done():
			return
		}
	}
}

func relevant(ev fsnotify.Event, target string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	return err == nil && name == target
}
