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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Giorgiosaud/giorgiosaud.io/pkg/logging"
	"github.com/Giorgiosaud/giorgiosaud.io/pkg/ux"
	"github.com/Giorgiosaud/giorgiosaud.io/pkg/validation"
	"github.com/Giorgiosaud/giorgiosaud.io/services/content"
	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/middleware"
)

func (a *app) indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the content index",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load every collection and report collisions and invalid files; exits 1 on problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIndexCheck(cmd.Context())
		},
	})
	return cmd
}

// loadIndex builds and loads the content index described by the config.
func (a *app) loadIndex(ctx context.Context) (*content.Index, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	index, err := content.NewIndex(logging.Nop().Slog(), site.Sources(cfg)...)
	if err != nil {
		return nil, err
	}
	if err := index.Load(ctx); err != nil {
		return nil, err
	}
	return index, nil
}

func (a *app) runIndexCheck(ctx context.Context) error {
	index, err := a.loadIndex(ctx)
	if err != nil {
		return err
	}

	p := a.printer
	p.Title("Content index")

	problems := 0
	for _, name := range index.Collections() {
		snap, err := index.Snapshot(ctx, name)
		if err != nil {
			return err
		}
		src, _ := index.Source(name)
		p.KeyValue(string(name), src.Dir)
		p.Tally(
			ux.TallyItem{Label: "documents", Value: snap.Len()},
			ux.TallyItem{Label: "entries", Value: len(snap.Entries())},
			ux.TallyItem{Label: "collisions", Value: len(snap.Collisions()), Warn: true},
			ux.TallyItem{Label: "rejected", Value: len(snap.Rejections()), Warn: true},
		)
		for _, c := range snap.Collisions() {
			p.Warning(fmt.Sprintf("%s: code %s shared by %v, %s wins", name, c.Code, c.Slugs, c.Slugs[0]))
			problems++
		}
		for _, r := range snap.Rejections() {
			p.Error(fmt.Sprintf("%s: %s: %s", name, r.Path, r.Reason))
			problems++
		}
	}

	if problems > 0 {
		p.Error(fmt.Sprintf("%d problem(s) found", problems))
		return errReported
	}
	p.Success("index is consistent")
	return nil
}

func (a *app) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show what the server would do for a URL path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd.Context(), args[0])
		},
	}
}

func (a *app) runResolve(ctx context.Context, path string) error {
	if err := validation.ValidatePath(path); err != nil {
		return err
	}
	path, markdown := strings.CutSuffix(path, middleware.MarkdownSuffix)

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	partitions, err := cfg.Registry()
	if err != nil {
		return err
	}

	p := a.printer
	p.KeyValue("path", path)

	partition, ok := partitions.Match(path)
	if !ok {
		p.KeyValue("partition", "none")
		p.KeyValue("outcome", selfheal.NoActionNeeded.String())
		return nil
	}

	index, err := a.loadIndex(ctx)
	if err != nil {
		return err
	}
	entries, err := index.ListEntries(ctx, partition.Name)
	if err != nil {
		return err
	}
	outcome, err := selfheal.Resolve(path, partition, entries)
	if err != nil {
		return err
	}

	p.KeyValue("partition", string(partition.Name))
	if outcome.Code != "" {
		p.KeyValue("code", string(outcome.Code))
	}
	p.KeyValue("outcome", outcome.Kind.String())
	if outcome.Kind == selfheal.PermanentRedirect {
		if markdown {
			outcome.Target += middleware.MarkdownSuffix
		}
		p.KeyValue("location", outcome.Target)
	}
	return nil
}
