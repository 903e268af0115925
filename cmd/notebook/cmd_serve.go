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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Giorgiosaud/giorgiosaud.io/pkg/logging"
	"github.com/Giorgiosaud/giorgiosaud.io/services/config"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site"
	"github.com/Giorgiosaud/giorgiosaud.io/services/telemetry"
)

type serveOptions struct {
	port  int
	debug bool
	watch bool
}

func (a *app) serveCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the notebook HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.port
			}
			if cmd.Flags().Changed("debug") {
				cfg.Server.Debug = opts.debug
			}
			if cmd.Flags().Changed("watch") {
				cfg.Content.Watch = opts.watch
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cfg)
		},
	}
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port, overrides server.port")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable gin debug mode and live reload")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload collections when files change")
	return cmd
}

func newLogger(cfg config.Config, a *app) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	if cfg.Server.Debug {
		level = logging.LevelDebug
	}
	var exporter logging.LogExporter
	if cfg.Logging.Exporter == "span" {
		exporter = telemetry.NewSpanEventExporter()
	}
	return logging.New(logging.Config{
		Level:    level,
		LogDir:   cfg.Logging.Dir,
		Service:  "notebook",
		JSON:     cfg.Logging.JSON,
		Writer:   a.stderr,
		Exporter: exporter,
	})
}

func (a *app) serve(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg, a)
	defer logger.Close()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.Telemetry, cfg.Server.Env))
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	srv, err := site.New(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	a.printBanner(cfg)
	logger.Info("Starting notebook server",
		"addr", cfg.Server.Addr(),
		"env", cfg.Server.Env,
		"content", cfg.Content.Root,
		"watch", cfg.Content.Watch)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Notebook server stopped")
	return nil
}

func (a *app) printBanner(cfg config.Config) {
	p := a.printer
	lines := []string{
		"listening on " + cfg.Server.Addr(),
		"content     " + cfg.Content.Root,
		"environment " + cfg.Server.Env,
		"watch       " + strconv.FormatBool(cfg.Content.Watch),
	}
	for _, part := range cfg.Partitions {
		lines = append(lines, fmt.Sprintf("%-11s %s (%s)", part.Name, part.BasePath, part.Locale))
	}
	p.Box("notebook "+telemetry.Version, strings.Join(lines, "\n"))
}
