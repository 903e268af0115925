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
	"strings"
)

// fillerRune pads generated codes shorter than CodeLength.
const fillerRune = 'x'

// DefaultAlternatives is the number of alternatives offered by the tooling.
const DefaultAlternatives = 5

// suffixDigits replace the last character of the primary code when the
// sliding windows are exhausted.
const suffixDigits = "0123456789"

// GenerateCode derives a code from a title.
//
// # Description
//
// Lower-cases the title, keeps only ASCII consonants and digits, takes the
// first six and right-pads with 'x'. Deterministic and collision-prone: two
// titles sharing the first six consonants produce the same code.
//
// # Examples
//
//	GenerateCode("Understanding React Hooks")  // "ndrstn"
//	GenerateCode("A Tag")                      // "tgxxxx"
//	GenerateCode("")                           // "xxxxxx"
//
// # Thread Safety
//
// Pure function, safe for concurrent use.
func GenerateCode(title string) Code {
	return windowCode(consonantsOf(title), 0)
}

// GenerateAlternatives returns up to count distinct candidate codes.
//
// # Description
//
// Candidates are produced in a fixed order:
//
//  1. The primary code (GenerateCode).
//  2. Sliding windows over the filtered consonants at offsets 1..count-1.
//  3. The primary code with its last character replaced by '0'..'9'.
//
// Duplicates and invalid candidates are skipped. The result never holds
// more than count codes; count <= 0 yields nil.
//
// # Examples
//
//	GenerateAlternatives("Understanding React Hooks", 3)
//	// ["ndrstn", "drstnd", "rstndn"]
func GenerateAlternatives(title string, count int) []Code {
	if count <= 0 {
		return nil
	}

	base := consonantsOf(title)
	codes := make([]Code, 0, count)
	seen := make(map[Code]struct{}, count)

	add := func(c Code) {
		if len(codes) >= count || !c.Valid() {
			return
		}
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		codes = append(codes, c)
	}

	primary := windowCode(base, 0)
	add(primary)

	for offset := 1; offset < count && len(codes) < count; offset++ {
		add(windowCode(base, offset))
	}

	stem := string(primary[:CodeLength-1])
	for _, d := range suffixDigits {
		if len(codes) >= count {
			break
		}
		add(Code(stem + string(d)))
	}

	return codes
}

// consonantsOf lower-cases s and keeps ASCII consonants and digits.
func consonantsOf(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r == 'a' || r == 'e' || r == 'i' || r == 'o' || r == 'u':
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// windowCode takes six characters of base starting at offset, padded with
// the filler. base is ASCII so byte offsets are character offsets.
func windowCode(base string, offset int) Code {
	var window string
	if offset < len(base) {
		window = base[offset:min(offset+CodeLength, len(base))]
	}
	return Code(window + strings.Repeat(string(fillerRune), CodeLength-len(window)))
}
