// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package content

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// DefaultDebounce is used when NewWatcher gets a non-positive debounce.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads collections of an Index when their files change.
//
// # Description
//
// Every collection directory is watched recursively. Events are mapped back
// to the owning collection, collected for the debounce window and then each
// affected collection is reloaded once. Listeners registered with
// Index.OnReload observe the new snapshots.
//
// A collection directory that does not exist yet is picked up when it is
// created: its nearest existing ancestor, usually the content root, is
// watched until then.
//
// # Thread Safety
//
// Start and Stop may be called from any goroutine. Stop is idempotent.
type Watcher struct {
	index    *Index
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	// dirs maps a cleaned collection directory to its collection, longest
	// first so nested collection roots win.
	dirs []watchedDir

	changes  chan selfheal.CollectionName
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.RWMutex
	watching bool
}

type watchedDir struct {
	dir  string
	name selfheal.CollectionName
}

// NewWatcher prepares a watcher for every collection of index.
func NewWatcher(index *Index, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		index:    index,
		watcher:  fw,
		logger:   logger.With("component", "content.watcher"),
		debounce: debounce,
		changes:  make(chan selfheal.CollectionName, 256),
		done:     make(chan struct{}),
	}
	for _, name := range index.Collections() {
		src, _ := index.Source(name)
		w.dirs = append(w.dirs, watchedDir{dir: filepath.Clean(src.Dir), name: name})
	}
	sort.Slice(w.dirs, func(i, j int) bool { return len(w.dirs[i].dir) > len(w.dirs[j].dir) })
	return w, nil
}

// Start begins watching. Watching stops when ctx is cancelled or Stop is
// called. Missing collection directories are watched for through their
// nearest existing ancestor.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	for _, d := range w.dirs {
		if _, err := os.Stat(d.dir); err != nil {
			parent, ok := existingAncestor(d.dir)
			if !ok {
				w.logger.Warn("not watching collection", "collection", string(d.name), "dir", d.dir, "error", err)
				continue
			}
			if err := w.watcher.Add(parent); err != nil {
				return err
			}
			w.logger.Info("waiting for collection directory",
				"collection", string(d.name), "dir", d.dir, "watching", parent)
			continue
		}
		if err := w.addRecursive(d.dir); err != nil {
			return err
		}
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.logger.Info("watching content", "collections", len(w.dirs), "debounce", w.debounce)
	return nil
}

// Stop stops watching and waits for pending reloads to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true while the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// existingAncestor returns the closest existing directory above dir.
func existingAncestor(dir string) (string, bool) {
	for p := filepath.Dir(dir); ; {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, true
		}
		next := filepath.Dir(p)
		if next == p {
			return "", false
		}
		p = next
	}
}

// collectionsUnder returns the collections whose directory is dir, lies
// below dir, or contains dir.
func (w *Watcher) collectionsUnder(dir string) []selfheal.CollectionName {
	dir = filepath.Clean(dir)
	var out []selfheal.CollectionName
	for _, d := range w.dirs {
		if d.dir == dir ||
			strings.HasPrefix(d.dir, dir+string(filepath.Separator)) ||
			strings.HasPrefix(dir, d.dir+string(filepath.Separator)) {
			out = append(out, d.name)
		}
	}
	return out
}

// collectionFor maps a changed path to its collection.
func (w *Watcher) collectionFor(path string) (selfheal.CollectionName, bool) {
	path = filepath.Clean(path)
	for _, d := range w.dirs {
		if path == d.dir || strings.HasPrefix(path, d.dir+string(filepath.Separator)) {
			return d.name, true
		}
	}
	return "", false
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					// Files may have landed before the watch was added.
					for _, name := range w.collectionsUnder(event.Name) {
						w.queue(name)
					}
					continue
				}
			}

			if !IsContentFile(event.Name) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name, ok := w.collectionFor(event.Name)
			if !ok {
				continue
			}

			w.queue(name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) queue(name selfheal.CollectionName) {
	select {
	case w.changes <- name:
	default:
		// Buffer full; a reload for this burst is already queued.
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[selfheal.CollectionName]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
		for name := range pending {
			delete(pending, name)
			start := time.Now()
			snap, err := w.index.Reload(context.WithoutCancel(ctx), name)
			if err != nil {
				w.logger.Error("reload failed", "collection", string(name), "error", err)
				continue
			}
			w.logger.Info("collection reloaded",
				"collection", string(name),
				"entries", len(snap.entries),
				"collisions", len(snap.collisions),
				"duration", time.Since(start))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			flush()
			return
		case name := <-w.changes:
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}
