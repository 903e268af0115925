// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Giorgiosaud/giorgiosaud.io/pkg/logging"
)

// SpanEventExporter records log entries as "log" events on the span carried
// by the export context. Entries logged outside a recording span are dropped,
// since the console and file handlers already hold them.
type SpanEventExporter struct{}

// NewSpanEventExporter returns an exporter for logging.Config.Exporter.
func NewSpanEventExporter() *SpanEventExporter {
	return &SpanEventExporter{}
}

func (e *SpanEventExporter) Export(ctx context.Context, entry logging.LogEntry) error {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(entry.Attrs)+2)
	attrs = append(attrs,
		attribute.String("log.severity", entry.Level.String()),
		attribute.String("log.message", entry.Message),
	)
	for k, v := range entry.Attrs {
		attrs = append(attrs, logAttribute(k, v))
	}
	span.AddEvent("log", trace.WithTimestamp(entry.Timestamp), trace.WithAttributes(attrs...))
	return nil
}

func (e *SpanEventExporter) Flush(context.Context) error { return nil }

func (e *SpanEventExporter) Close() error { return nil }

func logAttribute(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case bool:
		return attribute.Bool(key, val)
	case int64:
		return attribute.Int64(key, val)
	case int:
		return attribute.Int(key, val)
	case float64:
		return attribute.Float64(key, val)
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}

var _ logging.LogExporter = (*SpanEventExporter)(nil)
