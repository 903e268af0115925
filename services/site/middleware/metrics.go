// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Giorgiosaud/giorgiosaud.io/services/telemetry"
)

// routeLabel is the matched route template, or "unmatched" for 404s.
func routeLabel(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

// Metrics records request count, duration and in-flight requests on the
// OpenTelemetry meter. Routes are labelled by template, never raw path.
func Metrics(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		method := attribute.String("http.method", c.Request.Method)

		m.ActiveRequests.Add(ctx, 1, metric.WithAttributes(method))
		start := time.Now()

		c.Next()

		m.ActiveRequests.Add(ctx, -1, metric.WithAttributes(method))
		attrs := metric.WithAttributes(
			method,
			attribute.String("http.route", routeLabel(c)),
			attribute.Int("http.status_code", c.Writer.Status()),
		)
		m.RequestsTotal.Add(ctx, 1, attrs)
		m.RequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// Logger writes one structured line per request. Server errors log at
// error level, client errors at warn, the rest at debug.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()
		log := telemetry.LoggerWithTrace(ctx, logger)
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", routeLabel(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if id := GetRequestID(c); id != "" {
			args = append(args, "request_id", id)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.ErrorContext(ctx, "request", args...)
		case status >= 400:
			log.WarnContext(ctx, "request", args...)
		default:
			log.DebugContext(ctx, "request", args...)
		}
	}
}
