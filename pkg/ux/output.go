// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the notebook CLI.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Notebook color palette
var (
	ColorInk     = lipgloss.Color("#1F2937") // Ink - body text on light backgrounds
	ColorAccent  = lipgloss.Color("#7C3AED") // Violet - titles, highlights
	ColorSoft    = lipgloss.Color("#A78BFA") // Soft violet - subtitles
	ColorSuccess = lipgloss.Color("#10B981") // Green for success
	ColorWarning = lipgloss.Color("#F59E0B") // Amber for warnings
	ColorError   = lipgloss.Color("#EF4444") // Red for errors
	ColorMuted   = lipgloss.Color("#6B7280") // Gray for muted text
)

// Styles holds the shared lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Code      lipgloss.Style

	Box        lipgloss.Style
	WarningBox lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorSoft),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorAccent).Bold(true),
	Code:      lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 1),
	WarningBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Printer writes styled output according to its Mode. Errors and warnings
// in machine mode go to the error writer so stdout stays parseable.
type Printer struct {
	out  io.Writer
	err  io.Writer
	mode Mode
}

// NewPrinter creates a Printer. A nil err writes everything to out.
func NewPrinter(out, err io.Writer, mode Mode) *Printer {
	if err == nil {
		err = out
	}
	return &Printer{out: out, err: err, mode: mode}
}

// Mode returns the output mode.
func (p *Printer) Mode() Mode { return p.mode }

// Out returns the standard output writer.
func (p *Printer) Out() io.Writer { return p.out }

// Interactive reports whether prompts may be shown.
func (p *Printer) Interactive() bool { return p.mode != ModeMachine }

// Title prints a styled title
func (p *Printer) Title(text string) {
	switch p.mode {
	case ModeMachine:
		return
	case ModeMinimal:
		fmt.Fprintln(p.out, text)
	default:
		fmt.Fprintln(p.out, Styles.Title.Render(text))
	}
}

// Success prints a success message with checkmark
func (p *Printer) Success(text string) {
	switch p.mode {
	case ModeMachine:
		fmt.Fprintf(p.out, "OK: %s\n", text)
	case ModeMinimal:
		fmt.Fprintf(p.out, "%s %s\n", IconSuccess, text)
	default:
		fmt.Fprintf(p.out, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message
func (p *Printer) Warning(text string) {
	switch p.mode {
	case ModeMachine:
		fmt.Fprintf(p.err, "WARN: %s\n", text)
	case ModeMinimal:
		fmt.Fprintf(p.out, "%s %s\n", IconWarning, text)
	default:
		fmt.Fprintf(p.out, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message
func (p *Printer) Error(text string) {
	switch p.mode {
	case ModeMachine:
		fmt.Fprintf(p.err, "ERROR: %s\n", text)
	case ModeMinimal:
		fmt.Fprintf(p.out, "%s %s\n", IconError, text)
	default:
		fmt.Fprintf(p.out, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func (p *Printer) Info(text string) {
	switch p.mode {
	case ModeMachine, ModeMinimal:
		fmt.Fprintln(p.out, text)
	default:
		fmt.Fprintf(p.out, "%s %s\n", Styles.Muted.Render("│"), text)
	}
}

// KeyValue prints one labelled value. Machine mode prints key=value.
func (p *Printer) KeyValue(key, value string) {
	switch p.mode {
	case ModeMachine:
		fmt.Fprintf(p.out, "%s=%s\n", key, value)
	case ModeMinimal:
		fmt.Fprintf(p.out, "%s: %s\n", key, value)
	default:
		fmt.Fprintf(p.out, "%s %s\n", Styles.Muted.Render(key+":"), Styles.Bold.Render(value))
	}
}

// List prints items as bullets. Machine mode prints one item per line.
func (p *Printer) List(items []string) {
	for _, item := range items {
		if p.mode == ModeMachine {
			fmt.Fprintln(p.out, item)
			continue
		}
		fmt.Fprintf(p.out, "  %s %s\n", IconBullet, item)
	}
}

// Box prints text in a rounded box
func (p *Printer) Box(title, content string) {
	if p.mode != ModeRich {
		fmt.Fprintf(p.out, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(p.out, Styles.Box.Render(Styles.Title.Render(title)+"\n"+content))
}

// TallyItem is one count of a Tally line. Warn colors non-zero values.
type TallyItem struct {
	Label string
	Value int
	Warn  bool
}

// Tally prints a summary line of counts.
func (p *Printer) Tally(items ...TallyItem) {
	if p.mode == ModeMachine {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, fmt.Sprintf("%s=%d", it.Label, it.Value))
		}
		fmt.Fprintf(p.out, "SUMMARY: %s\n", strings.Join(parts, " "))
		return
	}

	parts := make([]string, 0, len(items))
	for _, it := range items {
		n := fmt.Sprintf("%d", it.Value)
		switch {
		case p.mode == ModeMinimal:
		case it.Warn && it.Value > 0:
			n = Styles.Warning.Render(n)
		default:
			n = Styles.Bold.Render(n)
		}
		label := it.Label
		if p.mode == ModeRich {
			label = Styles.Muted.Render(label)
		}
		parts = append(parts, n+" "+label)
	}
	fmt.Fprintln(p.out, strings.Join(parts, "  "))
}
