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
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Giorgiosaud/giorgiosaud.io/pkg/ux"
	"github.com/Giorgiosaud/giorgiosaud.io/services/config"
)

// defaultConfigPath is read when present and --config is not given.
const defaultConfigPath = "notebook.yaml"

// errReported signals a failure already printed to the user. main exits 1
// without printing it again.
var errReported = errors.New("reported")

// app carries the state shared by every command.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	getenv  func(string) string
	printer *ux.Printer

	// Global flags
	configPath  string
	contentRoot string
	outputMode  string
}

func newApp(stdout, stderr io.Writer, getenv func(string) string) *app {
	mode := ux.ModeMachine
	if f, ok := stdout.(*os.File); ok {
		mode = ux.DetectMode(getenv, f)
	} else if v := getenv(ux.OutputEnv); v != "" {
		mode = ux.ParseMode(v)
	}
	return &app{
		stdout:  stdout,
		stderr:  stderr,
		getenv:  getenv,
		printer: ux.NewPrinter(stdout, stderr, mode),
	}
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "notebook",
		Short: "Serve the giorgiosaud.io notebook with self-healing URLs",
		Long: `notebook serves the bilingual notebook and team pages and keeps old links
working: every entry carries a six character selfHealing code, and any URL
holding that code is redirected to the entry's current slug.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.outputMode != "" {
				a.printer = ux.NewPrinter(a.stdout, a.stderr, ux.ParseMode(a.outputMode))
			}
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default "+defaultConfigPath+" when present)")
	root.PersistentFlags().StringVar(&a.contentRoot, "content", "", "content root directory, overrides content.root")
	root.PersistentFlags().StringVarP(&a.outputMode, "output", "o", "", "output mode: rich, minimal or machine")

	root.AddCommand(
		a.serveCmd(),
		a.codeCmd(),
		a.indexCmd(),
		a.resolveCmd(),
		a.configCmd(),
	)
	return root
}

// loadConfig reads the config file, applies environment and flag overrides
// and validates the result.
func (a *app) loadConfig() (config.Config, error) {
	path := a.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config.Config{}, err
		}
		if cfg, err = config.Parse(data); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.ApplyEnv(a.getenv); err != nil {
		return config.Config{}, err
	}
	if a.contentRoot != "" {
		cfg.Content.Root = a.contentRoot
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
