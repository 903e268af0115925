// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package content is the Content Index: it loads markdown collections from
// disk and serves per-collection snapshots of (code, slug) entries to the
// self-healing resolver.
//
// Each collection is an independent partition. A lookup for "team" never
// sees entries loaded for "notes", even when the code strings are equal.
//
//	disk ──LoadCollection──▶ Snapshot ──ListEntries──▶ selfheal.Resolve
//	  ▲                         │
//	  └──── Watcher (fsnotify) ─┘ Reload + listeners
package content

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// ReloadListener is called after a collection snapshot is replaced.
type ReloadListener func(*Snapshot)

// Index holds the latest snapshot of every configured collection.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Snapshots are swapped
// atomically under a write lock; readers always see a complete snapshot.
type Index struct {
	sources map[selfheal.CollectionName]Source
	logger  *slog.Logger

	mu        sync.RWMutex
	snapshots map[selfheal.CollectionName]*Snapshot
	listeners []ReloadListener

	flight singleflight.Group
	loaded atomic.Bool
}

// NewIndex creates an empty index for sources. Call Load before serving, or
// let ListEntries load collections lazily.
func NewIndex(logger *slog.Logger, sources ...Source) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ix := &Index{
		sources:   make(map[selfheal.CollectionName]Source, len(sources)),
		logger:    logger.With("component", "content"),
		snapshots: make(map[selfheal.CollectionName]*Snapshot, len(sources)),
	}
	for _, src := range sources {
		if _, err := selfheal.ParseCollectionName(string(src.Name)); err != nil {
			return nil, err
		}
		if _, dup := ix.sources[src.Name]; dup {
			return nil, fmt.Errorf("%w: %s", selfheal.ErrDuplicatePartition, src.Name)
		}
		ix.sources[src.Name] = src
	}
	return ix, nil
}

// Collections returns the configured collection names, sorted.
func (ix *Index) Collections() []selfheal.CollectionName {
	names := make([]selfheal.CollectionName, 0, len(ix.sources))
	for name := range ix.sources {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Source returns the on-disk source of a collection.
func (ix *Index) Source(name selfheal.CollectionName) (Source, bool) {
	src, ok := ix.sources[name]
	return src, ok
}

// Ready reports whether Load has completed successfully at least once.
func (ix *Index) Ready() bool {
	return ix.loaded.Load()
}

// OnReload registers fn to run after every snapshot swap.
func (ix *Index) OnReload(fn ReloadListener) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.listeners = append(ix.listeners, fn)
}

// Load builds every collection concurrently.
func (ix *Index) Load(ctx context.Context) error {
	ctx, span := contentTracer.Start(ctx, "content.Index.Load")
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range ix.Collections() {
		g.Go(func() error {
			_, err := ix.Reload(gctx, name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return err
	}
	ix.loaded.Store(true)
	span.SetAttributes(attribute.Int("collections", len(ix.sources)))
	return nil
}

// Reload rebuilds one collection from disk and swaps its snapshot.
// Concurrent reloads of the same collection share one build.
func (ix *Index) Reload(ctx context.Context, name selfheal.CollectionName) (*Snapshot, error) {
	src, ok := ix.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}

	v, err, _ := ix.flight.Do(string(name), func() (any, error) {
		return ix.build(ctx, src)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (ix *Index) build(ctx context.Context, src Source) (*Snapshot, error) {
	ctx, span := contentTracer.Start(ctx, "content.Index.Reload",
		trace.WithAttributes(attribute.String("collection", string(src.Name))))
	defer span.End()

	start := time.Now()
	snap, err := LoadCollection(ctx, src, ix.logger)
	reloadDuration.WithLabelValues(string(src.Name)).Observe(time.Since(start).Seconds())
	if err != nil {
		reloadsTotal.WithLabelValues(string(src.Name), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return nil, err
	}
	reloadsTotal.WithLabelValues(string(src.Name), "ok").Inc()
	recordSnapshot(snap)

	span.SetAttributes(
		attribute.Int("entries", len(snap.entries)),
		attribute.Int("collisions", len(snap.collisions)),
		attribute.Int("rejections", len(snap.rejections)),
	)

	ix.mu.Lock()
	ix.snapshots[src.Name] = snap
	listeners := make([]ReloadListener, len(ix.listeners))
	copy(listeners, ix.listeners)
	ix.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap, nil
}

// Snapshot returns the current snapshot of name, loading it on first use.
func (ix *Index) Snapshot(ctx context.Context, name selfheal.CollectionName) (*Snapshot, error) {
	if _, ok := ix.sources[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}

	ix.mu.RLock()
	snap := ix.snapshots[name]
	ix.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return ix.Reload(ctx, name)
}

// ListEntries returns the (code, slug) entries of exactly one collection in
// index order. The result is never nil for a known collection.
func (ix *Index) ListEntries(ctx context.Context, name selfheal.CollectionName) ([]selfheal.Entry, error) {
	snap, err := ix.Snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	return snap.Entries(), nil
}

// Entry returns the published document with slug. Drafts are reported as
// ErrNotFound.
func (ix *Index) Entry(ctx context.Context, name selfheal.CollectionName, slug string) (Document, error) {
	snap, err := ix.Snapshot(ctx, name)
	if err != nil {
		return Document{}, err
	}
	doc, ok := snap.Document(slug)
	if !ok || doc.Draft {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, name, slug)
	}
	return doc, nil
}
