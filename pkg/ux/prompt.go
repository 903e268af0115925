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
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrNotInteractive is returned when a prompt is requested in machine mode.
var ErrNotInteractive = errors.New("prompt requires an interactive terminal")

// selectRunner shows a select prompt. Replaced in tests.
var selectRunner = func(title string, options []string, value *string) error {
	return huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(value).
		Run()
}

// Select asks the user to choose one of options and returns the choice.
func (p *Printer) Select(title string, options []string) (string, error) {
	if !p.Interactive() {
		return "", ErrNotInteractive
	}
	if len(options) == 0 {
		return "", errors.New("no options to choose from")
	}
	choice := options[0]
	if err := selectRunner(title, options, &choice); err != nil {
		return "", err
	}
	return choice, nil
}
