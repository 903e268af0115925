// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selfheal implements self-healing content URLs.
//
// Every content entry carries a stable six character code drawn from a
// consonant-only alphabet (no vowels, no hyphen). The code is embedded in
// published URLs, usually as a hyphen-delimited token of the slug:
//
//	/notebook/brdcst-broadcast-channel-api
//
// When an entry's slug changes, links that still carry the code keep working:
// the code is extracted from the requested path segment, matched against the
// entries of the partition, and the request is redirected to the current slug.
//
// # Flow
//
//	request path
//	     │
//	     ▼
//	last segment ──► ExtractCode ──► none? ──► NoActionNeeded
//	                      │
//	                      ▼
//	               scan entries ──► none? ──► NotFound
//	                      │
//	                      ▼
//	          slug == segment? ──► NoActionNeeded
//	                      │
//	                      ▼
//	        PermanentRedirect(basePath + "/" + slug)
//
// Resolve is a pure function. It performs no I/O and holds no state, so it is
// safe to call from any number of request goroutines. Fetching the entries is
// the job of the caller (see the content package).
//
// # Code generation
//
// GenerateCode and GenerateAlternatives derive candidate codes from a title.
// They are authoring helpers and do not guarantee uniqueness.
package selfheal
