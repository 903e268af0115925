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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		title string
		want  Code
	}{
		{"Understanding React Hooks", "ndrstn"},
		{"rhythm", "rhythm"},
		{"A Tag", "tgxxxx"},
		{"", "xxxxxx"},
		{"aeiou", "xxxxxx"},
		{"Web Components 101!", "wbcmpn"},
		{"Qué es Astro?", "qsstrx"},
		{"HTTP/2 & CSS", "http2c"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := GenerateCode(tt.title)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsValidCode(string(got)), "generated code %q must be valid", got)
		})
	}
}

func TestGenerateCode_Deterministic(t *testing.T) {
	first := GenerateCode("Understanding React Hooks")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GenerateCode("Understanding React Hooks"))
	}
}

func TestGenerateCode_AlwaysValid(t *testing.T) {
	titles := []string{
		"", " ", "---", "ñandú", "日本語のタイトル", "The 10 Best Tips", "¿Por qué?",
		"a-b-c-d-e-f-g", "UPPER CASE TITLE", "x",
	}
	for _, title := range titles {
		code := GenerateCode(title)
		assert.True(t, code.Valid(), "GenerateCode(%q) = %q", title, code)
	}
}

func TestGenerateAlternatives(t *testing.T) {
	got := GenerateAlternatives("Understanding React Hooks", 3)
	assert.Equal(t, []Code{"ndrstn", "drstnd", "rstndn"}, got)
}

func TestGenerateAlternatives_DistinctAndValid(t *testing.T) {
	titles := []string{"Understanding React Hooks", "A Tag", "", "rhythm", "Web Components"}
	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			codes := GenerateAlternatives(title, DefaultAlternatives)
			require.LessOrEqual(t, len(codes), DefaultAlternatives)
			require.NotEmpty(t, codes)

			seen := make(map[Code]bool)
			for _, c := range codes {
				assert.True(t, c.Valid(), "invalid alternative %q", c)
				assert.False(t, seen[c], "duplicate alternative %q", c)
				seen[c] = true
			}
			assert.Equal(t, GenerateCode(title), codes[0])
		})
	}
}

func TestGenerateAlternatives_FallsBackToDigitSuffixes(t *testing.T) {
	// "A Tag" has two consonants, so every window past the primary pads to
	// the same code and the digit suffixes fill the remainder.
	got := GenerateAlternatives("A Tag", 4)
	assert.Equal(t, []Code{"tgxxxx", "gxxxxx", "xxxxxx", "tgxxx0"}, got)
}

func TestGenerateAlternatives_Bounds(t *testing.T) {
	assert.Nil(t, GenerateAlternatives("title", 0))
	assert.Nil(t, GenerateAlternatives("title", -3))
	assert.Len(t, GenerateAlternatives("Understanding React Hooks", 1), 1)

	// Ten digit suffixes plus at most count-1 windows bound the output.
	many := GenerateAlternatives("", 50)
	assert.LessOrEqual(t, len(many), 50)
	assert.Equal(t, Code("xxxxxx"), many[0])
}
