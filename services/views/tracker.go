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
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

var viewEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "notebook_view_events_total",
	Help: "Tracking events accepted, by collection and type",
}, []string{"collection", "type"})

// EntryLister is the part of the Content Index the tracker needs.
type EntryLister interface {
	ListEntries(ctx context.Context, name selfheal.CollectionName) ([]selfheal.Entry, error)
}

// Result describes an accepted event.
type Result struct {
	Type       EventType               `json:"type"`
	Collection selfheal.CollectionName `json:"collection"`
	Code       selfheal.Code           `json:"code"`
	Slug       string                  `json:"slug"`

	// Count is the counter value after this event. Zero for event types
	// that are not counted.
	Count uint64 `json:"count,omitempty"`
}

// Summary is the stored counters of one entry.
type Summary struct {
	Collection selfheal.CollectionName `json:"collection"`
	Code       selfheal.Code           `json:"code"`
	Slug       string                  `json:"slug"`
	Views      uint64                  `json:"views"`
	Counts     map[EventType]uint64    `json:"counts"`
}

// Tracker validates events, checks that the referenced entry exists in the
// Content Index and updates the store.
type Tracker struct {
	store    *Store
	entries  EntryLister
	byLocale map[string]selfheal.CollectionName
	logger   *slog.Logger
}

// NewTracker creates a Tracker. byLocale maps an event language to the
// collection used when an event names no collection; the "en" mapping is
// the fallback for events without a language.
func NewTracker(store *Store, entries EntryLister, byLocale map[string]selfheal.CollectionName, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:    store,
		entries:  entries,
		byLocale: byLocale,
		logger:   logger.With("component", "views"),
	}
}

// collectionFor picks the collection an event refers to.
func (t *Tracker) collectionFor(e Event) (selfheal.CollectionName, error) {
	if e.Collection != "" {
		name, err := selfheal.ParseCollectionName(e.Collection)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		return name, nil
	}
	lang := e.Language
	if lang == "" {
		lang = "en"
	}
	name, ok := t.byLocale[lang]
	if !ok {
		return "", fmt.Errorf("%w: no collection for language %q", ErrInvalidEvent, lang)
	}
	return name, nil
}

// lookup finds the entry carrying code in collection.
func (t *Tracker) lookup(ctx context.Context, collection selfheal.CollectionName, code selfheal.Code) (selfheal.Entry, error) {
	entries, err := t.entries.ListEntries(ctx, collection)
	if err != nil {
		return selfheal.Entry{}, err
	}
	for _, e := range entries {
		if e.Code == code {
			return e, nil
		}
	}
	return selfheal.Entry{}, fmt.Errorf("%w: %s/%s", ErrUnknownEntry, collection, code)
}

// Track records one event.
func (t *Tracker) Track(ctx context.Context, e Event) (Result, error) {
	if err := e.Validate(); err != nil {
		return Result{}, err
	}
	collection, err := t.collectionFor(e)
	if err != nil {
		return Result{}, err
	}
	if !selfheal.IsValidCode(e.NoteID) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEntry, e.NoteID)
	}
	code := selfheal.Code(e.NoteID)

	entry, err := t.lookup(ctx, collection, code)
	if err != nil {
		return Result{}, err
	}

	res := Result{Type: e.Type, Collection: collection, Code: code, Slug: entry.Slug}
	if e.Type.Counted() {
		n, err := t.store.Increment(ctx, collection, code, e.Type)
		if err != nil {
			return Result{}, err
		}
		res.Count = n
	} else {
		t.logger.Info("track event",
			"type", string(e.Type),
			"collection", string(collection),
			"code", string(code),
			"metadata", e.Metadata)
	}
	viewEvents.WithLabelValues(string(collection), string(e.Type)).Inc()
	return res, nil
}

// Summary returns the stored counters for the entry carrying code.
func (t *Tracker) Summary(ctx context.Context, collection selfheal.CollectionName, code selfheal.Code) (Summary, error) {
	entry, err := t.lookup(ctx, collection, code)
	if err != nil {
		return Summary{}, err
	}
	counts, err := t.store.Counts(ctx, collection, code)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Collection: collection,
		Code:       code,
		Slug:       entry.Slug,
		Views:      counts[EventPageView],
		Counts:     counts,
	}, nil
}
