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
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

// =============================================================================
// Mode Tests
// =============================================================================

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"machine": ModeMachine,
		"PLAIN":   ModeMachine,
		"q":       ModeMachine,
		"minimal": ModeMinimal,
		"m":       ModeMinimal,
		"rich":    ModeRich,
		"":        ModeRich,
		"bogus":   ModeRich,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectMode(t *testing.T) {
	env := func(v string) func(string) string {
		return func(key string) string {
			if key == OutputEnv {
				return v
			}
			return ""
		}
	}

	if got := DetectMode(env("minimal"), nil); got != ModeMinimal {
		t.Errorf("env override: got %q", got)
	}
	if got := DetectMode(env(""), nil); got != ModeMachine {
		t.Errorf("no terminal: got %q", got)
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("regular file reported as terminal")
	}
	if got := DetectMode(nil, f); got != ModeMachine {
		t.Errorf("file output: got %q", got)
	}
}

// =============================================================================
// Printer Tests
// =============================================================================

func TestPrinter_MachineMode(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, ModeMachine)

	p.Title("Ignored")
	p.Success("done")
	p.Warning("careful")
	p.Error("broken")
	p.Info("note")
	p.KeyValue("code", "ndrstn")
	p.List([]string{"a", "b"})
	p.Tally(TallyItem{Label: "entries", Value: 3}, TallyItem{Label: "collisions", Value: 1, Warn: true})

	want := "OK: done\nnote\ncode=ndrstn\na\nb\nSUMMARY: entries=3 collisions=1\n"
	if out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
	if errOut.String() != "WARN: careful\nERROR: broken\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
	if p.Interactive() {
		t.Error("machine mode must not be interactive")
	}
}

func TestPrinter_MinimalMode(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, nil, ModeMinimal)

	p.Title("Codes")
	p.Success("done")
	p.KeyValue("code", "ndrstn")
	p.Box("Frontmatter", "selfHealing: ndrstn")

	got := out.String()
	for _, want := range []string{"Codes\n", "✓ done\n", "code: ndrstn\n", "Frontmatter: selfHealing: ndrstn\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestPrinter_RichModeKeepsText(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, nil, ModeRich)

	p.Title("Self-healing codes")
	p.Warning("collision")
	p.Box("Frontmatter", "selfHealing: ndrstn")
	p.Tally(TallyItem{Label: "entries", Value: 2})

	got := out.String()
	for _, want := range []string{"Self-healing codes", "collision", "selfHealing: ndrstn", "entries"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if !p.Interactive() {
		t.Error("rich mode should be interactive")
	}
}

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconArrow, IconBullet} {
		if !strings.Contains(icon.Render(), string(icon)) {
			t.Errorf("Render(%q) lost the icon", icon)
		}
	}
}

// =============================================================================
// Prompt Tests
// =============================================================================

func TestSelect(t *testing.T) {
	old := selectRunner
	defer func() { selectRunner = old }()

	var gotTitle string
	selectRunner = func(title string, options []string, value *string) error {
		gotTitle = title
		*value = options[1]
		return nil
	}

	p := NewPrinter(&bytes.Buffer{}, nil, ModeRich)
	choice, err := p.Select("Pick a code", []string{"ndrstn", "drstnd"})
	if err != nil {
		t.Fatal(err)
	}
	if choice != "drstnd" || gotTitle != "Pick a code" {
		t.Errorf("choice = %q, title = %q", choice, gotTitle)
	}

	if _, err := p.Select("Pick", nil); err == nil {
		t.Error("expected error for no options")
	}

	machine := NewPrinter(&bytes.Buffer{}, nil, ModeMachine)
	if _, err := machine.Select("Pick", []string{"a"}); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("err = %v, want ErrNotInteractive", err)
	}
}
