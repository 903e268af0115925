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

import "errors"

var (
	// ErrUnknownCollection is returned for a collection the index was not
	// built with.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrNotFound is returned when no published document has the slug.
	ErrNotFound = errors.New("entry not found")

	// ErrNoFrontmatter is returned for files without a "---" header.
	ErrNoFrontmatter = errors.New("missing frontmatter")

	// ErrBadFrontmatter wraps YAML decoding failures.
	ErrBadFrontmatter = errors.New("malformed frontmatter")

	// ErrInvalidCode marks a selfHealing value that is not a valid code.
	ErrInvalidCode = errors.New("invalid selfHealing code")

	// ErrMissingCode marks an entry without selfHealing in a collection that
	// requires one.
	ErrMissingCode = errors.New("missing selfHealing code")
)
