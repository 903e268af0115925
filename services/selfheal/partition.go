// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selfheal

import (
	"fmt"
	"sort"
	"strings"
)

// CollectionName names a content partition, e.g. "notes" or "notas".
//
// Build values with ParseCollectionName; the zero value is never valid.
type CollectionName string

// String returns the collection name.
func (n CollectionName) String() string {
	return string(n)
}

// ParseCollectionName validates a collection name.
//
// Names are non-empty and made of lower-case ASCII letters, digits, '-' and
// '_'. Returns ErrInvalidCollectionName otherwise.
func ParseCollectionName(s string) (CollectionName, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidCollectionName)
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidCollectionName, s)
		}
	}
	return CollectionName(s), nil
}

// Partition is one content collection mounted under a URL base path.
type Partition struct {
	// Name is the collection key, e.g. "notes".
	Name CollectionName

	// BasePath is the URL prefix, e.g. "/notebook" or "/es/cuaderno".
	// Always has a leading slash and no trailing slash.
	BasePath string

	// Locale is the content language, e.g. "en" or "es".
	Locale string
}

// IsZero reports whether p is the zero Partition.
func (p Partition) IsZero() bool {
	return p.Name == "" && p.BasePath == ""
}

// prefix returns the path prefix that requests must start with.
func (p Partition) prefix() string {
	return p.BasePath + "/"
}

// EntryPath returns the public path of an entry slug in this partition.
func (p Partition) EntryPath(slug string) string {
	return p.prefix() + slug
}

// RequestedSlug returns the part of urlPath below the partition's base path
// with surrounding slashes trimmed. A path outside the partition, such as a
// bare segment, is returned trimmed.
//
//	notes.RequestedSlug("/notebook/2024/rhythm-guide/") // "2024/rhythm-guide"
//	notes.RequestedSlug("brdcst-old")                  // "brdcst-old"
func (p Partition) RequestedSlug(urlPath string) string {
	rest := strings.TrimPrefix(urlPath, p.prefix())
	return strings.Trim(rest, "/")
}

// NormalizeBasePath returns path with exactly one leading slash and no
// trailing slash. "notebook/" becomes "/notebook".
func NormalizeBasePath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	return "/" + trimmed
}

// Partitions is an immutable registry of partitions.
//
// # Description
//
// Built once from configuration. Lookup by name replaces passing loose
// collection strings around: only registered names resolve to a Partition.
// Match maps a request path to its partition, longest base path first, so
// "/es/cuaderno/..." is never captured by a shorter registration.
//
// # Thread Safety
//
// Immutable after construction, safe for concurrent use.
type Partitions struct {
	byName  map[CollectionName]Partition
	ordered []Partition // by descending base path length
}

// NewPartitions validates and registers the given partitions.
//
// Returns ErrInvalidPartition for empty or root base paths, and
// ErrDuplicatePartition when a name or base path is registered twice.
func NewPartitions(parts ...Partition) (*Partitions, error) {
	reg := &Partitions{
		byName: make(map[CollectionName]Partition, len(parts)),
	}
	paths := make(map[string]CollectionName, len(parts))

	for _, p := range parts {
		name, err := ParseCollectionName(string(p.Name))
		if err != nil {
			return nil, err
		}
		p.Name = name
		p.BasePath = NormalizeBasePath(p.BasePath)
		if p.BasePath == "/" {
			return nil, fmt.Errorf("%w: %s has no base path", ErrInvalidPartition, name)
		}
		if _, dup := reg.byName[name]; dup {
			return nil, fmt.Errorf("%w: name %s", ErrDuplicatePartition, name)
		}
		if other, dup := paths[p.BasePath]; dup {
			return nil, fmt.Errorf("%w: base path %s used by %s and %s",
				ErrDuplicatePartition, p.BasePath, other, name)
		}
		paths[p.BasePath] = name
		reg.byName[name] = p
		reg.ordered = append(reg.ordered, p)
	}

	sort.SliceStable(reg.ordered, func(i, j int) bool {
		return len(reg.ordered[i].BasePath) > len(reg.ordered[j].BasePath)
	})
	return reg, nil
}

// Lookup returns the partition registered under name.
func (r *Partitions) Lookup(name CollectionName) (Partition, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Match returns the partition whose base path prefixes urlPath.
//
// The path must continue past the prefix: "/notebook/" alone does not
// match because it carries no entry segment.
func (r *Partitions) Match(urlPath string) (Partition, bool) {
	for _, p := range r.ordered {
		rest, ok := strings.CutPrefix(urlPath, p.prefix())
		if ok && strings.Trim(rest, "/") != "" {
			return p, true
		}
	}
	return Partition{}, false
}

// All returns the registered partitions sorted by name.
func (r *Partitions) All() []Partition {
	out := make([]Partition, 0, len(r.ordered))
	out = append(out, r.ordered...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered partitions.
func (r *Partitions) Len() int {
	return len(r.byName)
}
