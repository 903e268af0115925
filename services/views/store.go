// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package views

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// StoreConfig configures the BadgerDB view store.
type StoreConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps counters in memory only. Used by tests and when no
	// path is configured.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// GCInterval is how often the value log is compacted. Zero disables GC.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum garbage ratio before a rewrite.
	GCDiscardRatio float64

	// Logger receives BadgerDB's internal logs. Nil silences them.
	Logger *slog.Logger
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Store persists per-entry view counters keyed by collection and
// self-healing code, so counts survive slug renames.
//
// Key layout:
//
//	views/<collection>/<code>/<kind> → uint64 big-endian
//
// # Thread Safety
//
// Safe for concurrent use. Increments retry on transaction conflicts.
type Store struct {
	db        *badger.DB
	inMemory  bool
	gc        *gcRunner
	logger    *slog.Logger
	closeOnce sync.Once

	// incMu serialises read-modify-write increments within this process.
	incMu sync.Mutex
}

// OpenStore opens the view store described by cfg and starts the GC runner
// for persistent stores.
func OpenStore(cfg StoreConfig) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("views: path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create views directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open views store: %w", err)
	}

	s := &Store{db: db, inMemory: cfg.InMemory, logger: logger}
	if !cfg.InMemory && cfg.GCInterval > 0 {
		ratio := cfg.GCDiscardRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}
		s.gc = newGCRunner(db, cfg.GCInterval, ratio, logger)
		s.gc.start()
	}
	return s, nil
}

// OpenInMemoryStore opens a store that forgets everything on Close.
func OpenInMemoryStore() (*Store, error) {
	return OpenStore(StoreConfig{InMemory: true})
}

// InMemory reports whether counts are kept in memory only.
func (s *Store) InMemory() bool { return s.inMemory }

// Close stops GC and closes the database.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.gc != nil {
			s.gc.stop()
		}
		err = s.db.Close()
	})
	return err
}

func counterKey(collection selfheal.CollectionName, code selfheal.Code, kind EventType) []byte {
	return []byte("views/" + string(collection) + "/" + string(code) + "/" + string(kind))
}

func counterPrefix(collection selfheal.CollectionName, code selfheal.Code) []byte {
	return []byte("views/" + string(collection) + "/" + string(code) + "/")
}

// Increment adds one to the counter for (collection, code, kind) and returns
// the new value.
func (s *Store) Increment(ctx context.Context, collection selfheal.CollectionName, code selfheal.Code, kind EventType) (uint64, error) {
	key := counterKey(collection, code, kind)

	s.incMu.Lock()
	defer s.incMu.Unlock()

	for attempt := 0; attempt < 10; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		var next uint64
		err := s.db.Update(func(txn *badger.Txn) error {
			current, err := readCounter(txn, key)
			if err != nil {
				return err
			}
			next = current + 1
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, next)
			return txn.Set(key, buf)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("increment %s: %w", key, err)
		}
		return next, nil
	}
	return 0, fmt.Errorf("increment %s: %w", key, badger.ErrConflict)
}

func readCounter(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt counter %s: %d bytes", key, len(val))
		}
		n = binary.BigEndian.Uint64(val)
		return nil
	})
	return n, err
}

// Counts returns every counter stored for (collection, code), keyed by
// event type. Missing counters are absent from the map.
func (s *Store) Counts(ctx context.Context, collection selfheal.CollectionName, code selfheal.Code) (map[EventType]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := counterPrefix(collection, code)
	out := make(map[EventType]uint64)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			kind := EventType(strings.TrimPrefix(string(item.Key()), string(prefix)))
			err := item.Value(func(val []byte) error {
				if len(val) != 8 {
					return fmt.Errorf("corrupt counter %s: %d bytes", item.Key(), len(val))
				}
				out[kind] = binary.BigEndian.Uint64(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read counts: %w", err)
	}
	return out, nil
}

// =============================================================================
// Value log GC
// =============================================================================

// gcRunner periodically compacts the value log of a persistent store.
type gcRunner struct {
	db       *badger.DB
	interval time.Duration
	ratio    float64
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newGCRunner(db *badger.DB, interval time.Duration, ratio float64, logger *slog.Logger) *gcRunner {
	return &gcRunner{
		db:       db,
		interval: interval,
		ratio:    ratio,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (r *gcRunner) start() {
	go r.run()
}

func (r *gcRunner) stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *gcRunner) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runOnce()
		}
	}
}

// runOnce rewrites value log files until badger reports nothing to do.
func (r *gcRunner) runOnce() {
	for i := 0; i < 10; i++ {
		err := r.db.RunValueLogGC(r.ratio)
		if err == nil {
			r.logger.Debug("views value log GC completed")
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
			r.logger.Warn("views value log GC error", slog.String("error", err.Error()))
		}
		return
	}
}
