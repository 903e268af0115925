// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// OutputEnv overrides output mode detection.
const OutputEnv = "NOTEBOOK_OUTPUT"

// Mode defines the richness of CLI output.
type Mode string

const (
	// ModeRich enables colors, icons and boxes.
	ModeRich Mode = "rich"

	// ModeMinimal uses icons and no colors.
	ModeMinimal Mode = "minimal"

	// ModeMachine outputs plain text suitable for scripting and parsing.
	ModeMachine Mode = "machine"
)

// ParseMode converts a string to a Mode. Unknown values yield ModeRich.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal", "min", "m":
		return ModeMinimal
	case "machine", "plain", "quiet", "q":
		return ModeMachine
	default:
		return ModeRich
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DetectMode picks the output mode: NOTEBOOK_OUTPUT when set, otherwise
// rich for a terminal and machine for pipes and files.
func DetectMode(getenv func(string) string, out *os.File) Mode {
	if getenv != nil {
		if v := getenv(OutputEnv); v != "" {
			return ParseMode(v)
		}
	}
	if !IsTerminal(out) {
		return ModeMachine
	}
	return ModeRich
}
