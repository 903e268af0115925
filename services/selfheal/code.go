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
	"strings"
	"unicode/utf8"
)

// CodeLength is the number of characters in a self-healing code.
const CodeLength = 6

// codeSeparator delimits code tokens inside a path segment.
const codeSeparator = "-"

// Code is a six character self-healing identifier such as "brdcst".
type Code string

// String returns the code as a plain string.
func (c Code) String() string {
	return string(c)
}

// Valid reports whether c is a well-formed code.
func (c Code) Valid() bool {
	return IsValidCode(string(c))
}

// IsValidCode reports whether code is exactly six characters long and
// contains no vowel (either case) and no hyphen.
//
// # Description
//
// Mirrors the frontmatter contract `^[^aeiouAEIOU-]{6}$`. Only vowels and the
// hyphen are excluded; consonants, digits and any other character qualify.
// Length is counted in runes.
//
// # Examples
//
//	IsValidCode("rhythm")  // true
//	IsValidCode("brdc5t")  // true
//	IsValidCode("broad1")  // false (vowels)
//	IsValidCode("brd-st")  // false (hyphen)
//	IsValidCode("brdcs")   // false (length)
//
// # Thread Safety
//
// Pure function, safe for concurrent use.
func IsValidCode(code string) bool {
	if utf8.RuneCountInString(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if !isCodeRune(r) {
			return false
		}
	}
	return true
}

// CheckCode is IsValidCode with a reason. The returned error wraps
// ErrInvalidCode and names the first problem found.
func CheckCode(code string) error {
	if n := utf8.RuneCountInString(code); n != CodeLength {
		return fmt.Errorf("%w: %q has %d characters, want %d", ErrInvalidCode, code, n, CodeLength)
	}
	for _, r := range code {
		switch {
		case r == '-':
			return fmt.Errorf("%w: %q contains a hyphen", ErrInvalidCode, code)
		case r == utf8.RuneError:
			return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidCode, code)
		case !isCodeRune(r):
			return fmt.Errorf("%w: %q contains vowel %q", ErrInvalidCode, code, r)
		}
	}
	return nil
}

// isCodeRune reports whether r belongs to the code alphabet.
func isCodeRune(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U', '-':
		return false
	}
	return r != utf8.RuneError
}

// ExtractCode returns the first code embedded in a path segment.
//
// # Description
//
// A code must be bounded on both sides by the segment edge or a hyphen, so
// a candidate is exactly one hyphen-delimited token of six qualifying
// characters. A longer run of qualifying characters never yields a code.
// This is the mode used by the request-time resolver.
//
// # Inputs
//
//   - segment: A single path segment, e.g. "brdcst-old-title".
//
// # Outputs
//
//   - Code: The first code found.
//   - bool: False when the segment holds no code.
//
// # Examples
//
//	ExtractCode("brdcst-old-title")  // "brdcst", true
//	ExtractCode("old-title-brdcst")  // "brdcst", true
//	ExtractCode("brdcsts-title")     // "", false
//	ExtractCode("hello-world")       // "", false
func ExtractCode(segment string) (Code, bool) {
	for _, token := range strings.Split(segment, codeSeparator) {
		if IsValidCode(token) {
			return Code(token), true
		}
	}
	return "", false
}

// ExtractCodes returns every code embedded in a path segment, in order of
// appearance. Non-overlapping by construction since tokens never share a
// hyphen. Returns nil when the segment holds no code.
func ExtractCodes(segment string) []Code {
	var codes []Code
	for _, token := range strings.Split(segment, codeSeparator) {
		if IsValidCode(token) {
			codes = append(codes, Code(token))
		}
	}
	return codes
}

// LastSegment returns the last non-empty segment of a URL path.
//
// A trailing slash is ignored, so "/notebook/brdcst-title/" yields
// "brdcst-title". Returns "" for "/" and "".
func LastSegment(urlPath string) string {
	trimmed := strings.TrimRight(urlPath, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
