// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeWatcher records filesystem events on files under review.
//
// Description:
//
//	fsnotify watches directories, so each watched file adds its parent
//	directory with a reference count. Any event naming a watched file
//	marks it changed until the file is unwatched. The commit guard stays
//	authoritative; the watcher only lets the reviewer know early.
//
// Thread Safety: Safe for concurrent use.
type ChangeWatcher struct {
	w      *fsnotify.Watcher
	logger *slog.Logger

	mu      sync.Mutex
	changed map[string]bool
	dirs    map[string]int

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewChangeWatcher starts the event loop. Close must be called.
func NewChangeWatcher(logger *slog.Logger) (*ChangeWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	cw := &ChangeWatcher{
		w:       w,
		logger:  logger,
		changed: make(map[string]bool),
		dirs:    make(map[string]int),
		done:    make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.loop()
	return cw, nil
}

// Watch starts tracking path and clears any earlier change mark.
func (c *ChangeWatcher) Watch(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.changed[path]; ok {
		c.changed[path] = false
		return nil
	}
	if c.dirs[dir] == 0 {
		if err := c.w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	c.dirs[dir]++
	c.changed[path] = false
	return nil
}

// Unwatch stops tracking path.
func (c *ChangeWatcher) Unwatch(path string) {
	path, err := filepath.Abs(path)
	if err != nil {
		return
	}
	dir := filepath.Dir(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.changed[path]; !ok {
		return
	}
	delete(c.changed, path)
	c.dirs[dir]--
	if c.dirs[dir] <= 0 {
		delete(c.dirs, dir)
		if err := c.w.Remove(dir); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			c.logger.Debug("unwatch failed", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}
}

// Changed reports whether path saw an event since Watch.
func (c *ChangeWatcher) Changed(path string) bool {
	path, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed[path]
}

// Close stops the event loop and releases the watcher. Idempotent.
func (c *ChangeWatcher) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.w.Close()
		c.wg.Wait()
	})
	return err
}

func (c *ChangeWatcher) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.w.Events:
			if !ok {
				return
			}
			c.mark(ev)
		case err, ok := <-c.w.Errors:
			if !ok {
				return
			}
			c.logger.Warn("file watcher error", slog.String("error", err.Error()))
		}
	}
}

func (c *ChangeWatcher) mark(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.changed[name]; ok {
		if !c.changed[name] {
			c.logger.Info("file changed during review",
				slog.String("file", name),
				slog.String("op", ev.Op.String()),
			)
		}
		c.changed[name] = true
	}
}
