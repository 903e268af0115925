// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

func (a *app) codeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Generate and validate selfHealing codes",
	}

	var count int
	alts := &cobra.Command{
		Use:   "alts <title...>",
		Short: "List alternative codes for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAlternatives(strings.Join(args, " "), count)
		},
	}
	alts.Flags().IntVarP(&count, "count", "n", selfheal.DefaultAlternatives, "number of alternatives")

	var pickCount int
	pick := &cobra.Command{
		Use:   "pick <title...>",
		Short: "Choose a code interactively and print its frontmatter line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPick(strings.Join(args, " "), pickCount)
		},
	}
	pick.Flags().IntVarP(&pickCount, "count", "n", selfheal.DefaultAlternatives, "number of candidates")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate <title...>",
			Short: "Derive a code from a title",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runGenerate(strings.Join(args, " "))
			},
		},
		&cobra.Command{
			Use:   "validate <code>",
			Short: "Check a code; exits 1 when invalid",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runValidate(args[0])
			},
		},
		alts,
		pick,
	)
	return cmd
}

func frontmatterLine(code selfheal.Code) string {
	return "selfHealing: " + string(code)
}

func (a *app) runGenerate(title string) error {
	p := a.printer
	code := selfheal.GenerateCode(title)

	p.Title("Self-healing code")
	p.KeyValue("title", title)
	p.KeyValue("code", string(code))
	p.KeyValue("valid", strconv.FormatBool(code.Valid()))
	p.Box("Frontmatter", frontmatterLine(code))
	return nil
}

func (a *app) runValidate(code string) error {
	if err := selfheal.CheckCode(code); err != nil {
		a.printer.Error(err.Error())
		return errReported
	}
	a.printer.Success(fmt.Sprintf("%q is a valid code", code))
	return nil
}

func (a *app) runAlternatives(title string, count int) error {
	if count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", count)
	}
	codes := selfheal.GenerateAlternatives(title, count)

	a.printer.Title("Alternatives for " + strconv.Quote(title))
	items := make([]string, 0, len(codes))
	for _, c := range codes {
		items = append(items, string(c))
	}
	a.printer.List(items)
	return nil
}

func (a *app) runPick(title string, count int) error {
	if count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", count)
	}
	if !a.printer.Interactive() {
		return a.runAlternatives(title, count)
	}

	codes := selfheal.GenerateAlternatives(title, count)
	options := make([]string, 0, len(codes))
	for _, c := range codes {
		options = append(options, string(c))
	}
	choice, err := a.printer.Select("Pick a code for "+strconv.Quote(title), options)
	if err != nil {
		return err
	}
	a.printer.Box("Frontmatter", frontmatterLine(selfheal.Code(choice)))
	return nil
}
