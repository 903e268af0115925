// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-provided URL paths and slugs before they
// reach the content index or the self-healing resolver.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength bounds request paths accepted for resolution.
	MaxPathLength = 2048

	// MaxSlugLength bounds entry slugs.
	MaxSlugLength = 512
)

// checkText rejects invalid UTF-8, control characters and backslashes.
func checkText(kind, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s is not valid UTF-8", kind)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s contains control character %U", kind, r)
		}
		if r == '\\' {
			return fmt.Errorf("%s contains a backslash", kind)
		}
	}
	return nil
}

// ValidatePath validates an absolute URL path such as "/notebook/brdcst-title".
//
// Valid paths:
//   - start with "/"
//   - are at most MaxPathLength bytes
//   - are valid UTF-8 without control characters or backslashes
//
// Example:
//
//	if err := validation.ValidatePath(c.Query("path")); err != nil {
//	    return err
//	}
//	// Safe to hand to the resolver
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path %q must be an absolute URL path", path)
	}
	if len(path) > MaxPathLength {
		return fmt.Errorf("path exceeds %d bytes", MaxPathLength)
	}
	return checkText("path", path)
}

// ValidateSlug validates an entry slug. Nested slugs ("css/css-rhythm") are
// allowed; empty, "." and ".." segments are not.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("slug exceeds %d bytes", MaxSlugLength)
	}
	if err := checkText("slug", slug); err != nil {
		return err
	}
	for _, seg := range strings.Split(slug, "/") {
		switch seg {
		case "":
			return fmt.Errorf("slug %q has an empty segment", slug)
		case ".", "..":
			return fmt.Errorf("slug %q has a relative segment", slug)
		}
	}
	return nil
}

// SanitizeSlug trims surrounding slashes and validates the result.
//
// Use this on catch-all route parameters:
//
//	slug, err := validation.SanitizeSlug(c.Param("slug"))
//	if err != nil {
//	    // not an entry
//	}
func SanitizeSlug(slug string) (string, error) {
	trimmed := strings.Trim(slug, "/")
	if err := ValidateSlug(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
