// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the notebook site.
//
// The self-healing interceptor runs before page routing. It recognises
// requests under a registered partition, extracts the self-healing code
// from the last path segment and compares the requested slug with the
// current slug held by the Content Index.
//
// # Resolution Flow
//
//	Request
//	   │
//	   ▼
//	SelfHeal
//	   │
//	   ├─► partitions.Match(path)      no partition ─► c.Next()
//	   │
//	   ├─► index.ListEntries(ctx, p)   error        ─► 500
//	   │
//	   └─► selfheal.Resolve(path, p, entries)
//	           │
//	           ├─► NoActionNeeded    ─► c.Next()
//	           ├─► PermanentRedirect ─► 301 Location: <target>[.md]?<query>
//	           └─► NotFound          ─► 404 {"error":"not found"}
//
// The decision is stored in the Gin context and can be read by handlers
// via GetOutcome.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/observability"
	"github.com/Giorgiosaud/giorgiosaud.io/services/telemetry"
)

// =============================================================================
// Context Keys
// =============================================================================

const (
	outcomeKey   = "notebook_selfheal_outcome"
	partitionKey = "notebook_selfheal_partition"
)

var tracer = otel.Tracer("notebook.site.selfheal")

// EntryLister is the part of the Content Index the interceptor reads.
type EntryLister interface {
	ListEntries(ctx context.Context, name selfheal.CollectionName) ([]selfheal.Entry, error)
}

// =============================================================================
// Context Helpers
// =============================================================================

// GetOutcome returns the resolution stored by SelfHeal for this request.
// The boolean is false when the request was outside every partition.
func GetOutcome(c *gin.Context) (selfheal.Outcome, bool) {
	v, ok := c.Get(outcomeKey)
	if !ok {
		return selfheal.Outcome{}, false
	}
	outcome, ok := v.(selfheal.Outcome)
	return outcome, ok
}

// GetPartition returns the partition matched by SelfHeal for this request.
func GetPartition(c *gin.Context) (selfheal.Partition, bool) {
	v, ok := c.Get(partitionKey)
	if !ok {
		return selfheal.Partition{}, false
	}
	p, ok := v.(selfheal.Partition)
	return p, ok
}

// =============================================================================
// Middleware
// =============================================================================

// SelfHeal returns the self-healing request interceptor.
//
// # Description
//
// For GET and HEAD requests whose path falls under a partition base path,
// the interceptor resolves the last path segment against the entries of
// that partition only. Redirects keep the original query string. Requests
// outside every partition and non-GET methods pass through untouched.
//
// # Inputs
//
//   - partitions: Registered partitions. Must not be nil.
//   - index: Source of current entries, usually *content.Index.
//   - logger: Receives redirect and error logs. Nil uses slog.Default().
//   - metrics: Resolution counters. Nil disables metrics.
//
// # Outputs
//
// A gin.HandlerFunc. Aborts the chain on redirect, not found and index
// errors.
//
// # Thread Safety
//
// Safe for concurrent use. The index is read through ListEntries, which
// returns a private copy of the snapshot.
func SelfHeal(partitions *selfheal.Partitions, index EntryLister, logger *slog.Logger, metrics *observability.SiteMetrics) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "selfheal")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		path, suffix := splitMarkdown(c.Request.URL.Path)
		partition, ok := partitions.Match(path)
		if !ok {
			c.Next()
			return
		}
		c.Set(partitionKey, partition)

		ctx, span := tracer.Start(c.Request.Context(), "selfheal.Resolve",
			trace.WithAttributes(
				attribute.String("selfheal.collection", string(partition.Name)),
				attribute.String("http.path", path),
			))
		start := time.Now()

		entries, err := index.ListEntries(ctx, partition.Name)
		if err == nil {
			var outcome selfheal.Outcome
			outcome, err = selfheal.Resolve(path, partition, entries)
			if err == nil {
				elapsed := time.Since(start).Seconds()
				span.SetAttributes(
					attribute.String("selfheal.outcome", outcome.Kind.String()),
					attribute.String("selfheal.code", string(outcome.Code)),
				)
				span.End()
				metrics.RecordResolution(string(partition.Name), outcome.Kind.String(), elapsed)
				c.Set(outcomeKey, outcome)
				apply(c, outcome, suffix, partition, logger)
				return
			}
		}

		telemetry.RecordError(span, err)
		span.End()
		metrics.RecordResolution(string(partition.Name), "error", time.Since(start).Seconds())
		logger.Error("self-healing resolution failed",
			"collection", string(partition.Name),
			"path", path,
			"error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// MarkdownSuffix selects the raw markdown rendition of an entry. It is
// ignored during resolution and kept on redirects.
const MarkdownSuffix = ".md"

func splitMarkdown(path string) (string, string) {
	if trimmed, ok := strings.CutSuffix(path, MarkdownSuffix); ok {
		return trimmed, MarkdownSuffix
	}
	return path, ""
}

// apply turns an outcome into an HTTP response.
func apply(c *gin.Context, outcome selfheal.Outcome, suffix string, partition selfheal.Partition, logger *slog.Logger) {
	switch outcome.Kind {
	case selfheal.PermanentRedirect:
		target := outcome.Target + suffix
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		logger.Debug("self-healing redirect",
			"collection", string(partition.Name),
			"code", string(outcome.Code),
			"from", c.Request.URL.Path,
			"to", outcome.Target)
		c.Redirect(http.StatusMovedPermanently, target)
		c.Abort()
	case selfheal.NotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.Next()
	}
}
