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

import "errors"

// Sentinel errors for self-healing resolution. All of them signal caller
// misuse; an unresolvable path is reported as an Outcome, never an error.
var (
	// ErrInvalidPartition indicates an empty or unregistered partition.
	ErrInvalidPartition = errors.New("invalid partition")

	// ErrInvalidCollectionName indicates a malformed collection name.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrDuplicatePartition indicates a name or base path registered twice.
	ErrDuplicatePartition = errors.New("duplicate partition")

	// ErrNilEntries indicates Resolve was called without an entry snapshot.
	ErrNilEntries = errors.New("entries must not be nil")

	// ErrInvalidCode is returned by CheckCode.
	ErrInvalidCode = errors.New("invalid code")
)
