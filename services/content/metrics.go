// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package content

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	indexEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "notebook_content_entries",
		Help: "Resolvable entries per collection in the current snapshot",
	}, []string{"collection"})

	indexCollisions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "notebook_content_code_collisions",
		Help: "Self-healing codes shared by more than one entry",
	}, []string{"collection"})

	indexRejections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "notebook_content_rejected_files",
		Help: "Content files excluded from the current snapshot",
	}, []string{"collection"})

	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notebook_content_reloads_total",
		Help: "Collection reloads by result",
	}, []string{"collection", "result"})

	reloadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notebook_content_reload_duration_seconds",
		Help:    "Time to rebuild a collection snapshot",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"collection"})
)

var contentTracer = otel.Tracer("notebook.content")

func recordSnapshot(s *Snapshot) {
	name := string(s.collection)
	indexEntries.WithLabelValues(name).Set(float64(len(s.entries)))
	indexCollisions.WithLabelValues(name).Set(float64(len(s.collisions)))
	indexRejections.WithLabelValues(name).Set(float64(len(s.rejections)))
}
