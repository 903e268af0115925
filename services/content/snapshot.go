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
	"sort"
	"time"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// Document is one parsed content file.
type Document struct {
	Collection selfheal.CollectionName `json:"collection"`
	Slug       string                  `json:"slug"`
	Path       string                  `json:"path"`
	Code       selfheal.Code           `json:"code,omitempty"`
	Frontmatter
	Body string `json:"body"`
}

// HasCode reports whether the document participates in self-healing.
func (d Document) HasCode() bool {
	return d.Code != ""
}

// Entry returns the (code, slug) pair used by the resolver.
func (d Document) Entry() selfheal.Entry {
	return selfheal.Entry{Code: d.Code, Slug: d.Slug}
}

// Collision is a code shared by more than one entry in a collection.
// Slugs are listed in index order; the first one wins resolution.
type Collision struct {
	Code  selfheal.Code `json:"code"`
	Slugs []string      `json:"slugs"`
}

// Rejection is a file excluded from the snapshot.
type Rejection struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Snapshot is an immutable view of one collection at a point in time.
//
// # Thread Safety
//
// Snapshots are never mutated after construction and may be shared freely.
type Snapshot struct {
	collection selfheal.CollectionName
	docs       []Document
	entries    []selfheal.Entry
	bySlug     map[string]int
	collisions []Collision
	rejections []Rejection
	loadedAt   time.Time
}

// newSnapshot orders docs by path and derives entries, slug lookup and
// collisions.
func newSnapshot(name selfheal.CollectionName, docs []Document, rejections []Rejection) *Snapshot {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	s := &Snapshot{
		collection: name,
		docs:       docs,
		entries:    make([]selfheal.Entry, 0, len(docs)),
		bySlug:     make(map[string]int, len(docs)),
		rejections: rejections,
		loadedAt:   time.Now(),
	}

	byCode := make(map[selfheal.Code][]string)
	var order []selfheal.Code
	for i, d := range docs {
		if _, dup := s.bySlug[d.Slug]; !dup {
			s.bySlug[d.Slug] = i
		}
		if !d.HasCode() {
			continue
		}
		s.entries = append(s.entries, d.Entry())
		if _, seen := byCode[d.Code]; !seen {
			order = append(order, d.Code)
		}
		byCode[d.Code] = append(byCode[d.Code], d.Slug)
	}

	for _, code := range order {
		if slugs := byCode[code]; len(slugs) > 1 {
			s.collisions = append(s.collisions, Collision{Code: code, Slugs: slugs})
		}
	}
	return s
}

// Collection returns the collection name.
func (s *Snapshot) Collection() selfheal.CollectionName { return s.collection }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Len returns the number of documents, drafts included.
func (s *Snapshot) Len() int { return len(s.docs) }

// Entries returns a copy of the resolver entries in index order. The result
// is never nil.
func (s *Snapshot) Entries() []selfheal.Entry {
	out := make([]selfheal.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Collisions returns codes used by more than one entry.
func (s *Snapshot) Collisions() []Collision {
	out := make([]Collision, len(s.collisions))
	copy(out, s.collisions)
	return out
}

// Rejections returns files excluded while building the snapshot.
func (s *Snapshot) Rejections() []Rejection {
	out := make([]Rejection, len(s.rejections))
	copy(out, s.rejections)
	return out
}

// Document returns the document with slug, drafts included.
func (s *Snapshot) Document(slug string) (Document, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Document{}, false
	}
	return s.docs[i], true
}

// FindByCode returns the first document carrying code.
func (s *Snapshot) FindByCode(code selfheal.Code) (Document, bool) {
	for _, d := range s.docs {
		if d.Code == code {
			return d, true
		}
	}
	return Document{}, false
}

// Published returns non-draft documents, newest publish date first. Ties
// keep index order.
func (s *Snapshot) Published() []Document {
	out := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		if !d.Draft {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishDate.After(out[j].PublishDate.Time)
	})
	return out
}
