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

import "fmt"

// Entry is the (code, slug) pair the resolver needs from a content entry.
type Entry struct {
	// Code is the stable self-healing code from frontmatter.
	Code Code `json:"code"`

	// Slug is the full current path segment of the entry.
	Slug string `json:"slug"`
}

// OutcomeKind enumerates resolution results.
type OutcomeKind int

const (
	// NoActionNeeded lets normal routing continue.
	NoActionNeeded OutcomeKind = iota

	// PermanentRedirect sends the client to Outcome.Target with a 301.
	PermanentRedirect

	// NotFound means the code matches no entry of the partition.
	NotFound
)

// String returns a metric-friendly label for the kind.
func (k OutcomeKind) String() string {
	switch k {
	case NoActionNeeded:
		return "no_action"
	case PermanentRedirect:
		return "redirect"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as its label.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of a resolution.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`

	// Target is the redirect path. Set only for PermanentRedirect.
	Target string `json:"target,omitempty"`

	// Code is the code extracted from the request, if any.
	Code Code `json:"code,omitempty"`

	// Slug is the requested slug: the path below the partition's base path,
	// slashes trimmed. Nested slugs keep their inner slashes.
	Slug string `json:"slug,omitempty"`
}

// Resolve decides what to do with a request for a partition path.
//
// # Description
//
// Extracts the first code from the last path segment and looks it up in
// entries by linear scan. The first entry carrying the code wins; the order
// is whatever the content index returned. The entry slug is compared with
// the whole path below the base path, so nested slugs such as
// "2024/rhythm-guide" match their own URL.
//
//   - No code in the segment: NoActionNeeded.
//   - Code matches no entry: NotFound.
//   - Entry slug equals the requested slug: NoActionNeeded.
//   - Otherwise: PermanentRedirect to partition.BasePath + "/" + slug.
//
// # Inputs
//
//   - requestedPath: URL path or bare segment, e.g. "/notebook/brdcst-old".
//   - partition: The partition the path belongs to. Must not be zero.
//   - entries: Snapshot of the partition. Must not be nil; may be empty.
//
// # Outputs
//
//   - Outcome: The decision.
//   - error: ErrInvalidPartition or ErrNilEntries on caller misuse.
//
// # Examples
//
//	entries := []Entry{{Code: "brdcst", Slug: "brdcst-new-title"}}
//	out, _ := Resolve("/notebook/brdcst-old-title", notes, entries)
//	// out.Kind == PermanentRedirect, out.Target == "/notebook/brdcst-new-title"
//
// # Thread Safety
//
// Pure function. Only reads entries.
func Resolve(requestedPath string, partition Partition, entries []Entry) (Outcome, error) {
	if partition.Name == "" || partition.BasePath == "" {
		return Outcome{}, fmt.Errorf("resolve %q: %w", requestedPath, ErrInvalidPartition)
	}
	if entries == nil {
		return Outcome{}, fmt.Errorf("resolve %q in %s: %w", requestedPath, partition.Name, ErrNilEntries)
	}

	slug := partition.RequestedSlug(requestedPath)
	code, ok := ExtractCode(LastSegment(slug))
	if !ok {
		return Outcome{Kind: NoActionNeeded, Slug: slug}, nil
	}

	entry, ok := findEntry(entries, code)
	if !ok {
		return Outcome{Kind: NotFound, Code: code, Slug: slug}, nil
	}

	if entry.Slug == slug {
		return Outcome{Kind: NoActionNeeded, Code: code, Slug: slug}, nil
	}

	return Outcome{
		Kind:   PermanentRedirect,
		Target: partition.EntryPath(entry.Slug),
		Code:   code,
		Slug:   slug,
	}, nil
}

// findEntry returns the first entry carrying code.
func findEntry(entries []Entry, code Code) (Entry, bool) {
	for _, e := range entries {
		if e.Code == code {
			return e, true
		}
	}
	return Entry{}, false
}
