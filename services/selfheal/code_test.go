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
)

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"lowercase consonants", "rhythm", true},
		{"uppercase consonants", "RHYTHM", true},
		{"digits allowed", "000004", true},
		{"mixed digits", "brdc5t", true},
		{"filler padded", "tgxxxx", true},
		{"lowercase vowel", "brdcat", false},
		{"uppercase vowel", "brdcAt", false},
		{"hyphen", "brd-st", false},
		{"too short", "brdcs", false},
		{"too long", "brdcstt", false},
		{"empty", "", false},
		{"multibyte counted as runes", "ñññççç", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCode(tt.code))
			assert.Equal(t, tt.want, Code(tt.code).Valid())
		})
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    Code
		found   bool
	}{
		{"bare code", "brdcst", "brdcst", true},
		{"code prefix", "brdcst-old-title", "brdcst", true},
		{"code suffix", "old-title-brdcst", "brdcst", true},
		{"code in the middle", "old-brdcst-title", "brdcst", true},
		{"numeric legacy code", "000004-tag-link", "000004", true},
		{"first of several", "brdcst-x-rhythm", "brdcst", true},
		{"longer run is not a code", "brdcsts-title", "", false},
		{"shorter run is not a code", "brdcs-title", "", false},
		{"vowel inside token", "broadc-title", "", false},
		{"no code", "hello-world", "", false},
		{"empty", "", "", false},
		{"double hyphen", "title--brdcst", "brdcst", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCode(tt.segment)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractCodes(t *testing.T) {
	assert.Equal(t, []Code{"brdcst", "rhythm"}, ExtractCodes("brdcst-title-rhythm"))
	assert.Equal(t, []Code{"brdcst"}, ExtractCodes("brdcst"))
	assert.Nil(t, ExtractCodes("plain-title"))
	assert.Nil(t, ExtractCodes(""))
}

func TestExtractCode_AgreesWithExtractCodes(t *testing.T) {
	segments := []string{"brdcst-title-rhythm", "title", "a-brdcst", "xxxxxx-yyyyyy"}
	for _, s := range segments {
		first, ok := ExtractCode(s)
		all := ExtractCodes(s)
		if !ok {
			assert.Empty(t, all, s)
			continue
		}
		if assert.NotEmpty(t, all, s) {
			assert.Equal(t, all[0], first, s)
		}
	}
}

func TestLastSegment(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/notebook/brdcst-title", "brdcst-title"},
		{"/notebook/brdcst-title/", "brdcst-title"},
		{"/es/cuaderno/nested/brdcst", "brdcst"},
		{"brdcst", "brdcst"},
		{"/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LastSegment(tt.path), tt.path)
	}
}

func TestCheckCode(t *testing.T) {
	tests := []struct {
		code   string
		reason string
	}{
		{"rhythm", ""},
		{"brdc5t", ""},
		{"brdcs", "has 5 characters"},
		{"brd-st", "contains a hyphen"},
		{"brOdst", "contains vowel 'O'"},
		{"brd\xffst", "not valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := CheckCode(tt.code)
			if tt.reason == "" {
				assert.NoError(t, err)
				assert.True(t, IsValidCode(tt.code))
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCode)
			assert.Contains(t, err.Error(), tt.reason)
			assert.False(t, IsValidCode(tt.code))
		})
	}
}
