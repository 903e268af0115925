// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the notebook site.
//
// Metrics are registered once per process on the default registry; call
// Default to obtain the shared instance.
//
// # Metrics
//
//   - notebook_selfheal_resolutions_total{collection,outcome}
//   - notebook_selfheal_resolution_duration_seconds{collection}
//   - notebook_site_rate_limited_total{route}
//   - notebook_site_livereload_clients
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "notebook"

// SiteMetrics groups the collectors used by the site middleware.
type SiteMetrics struct {
	// ResolutionsTotal counts self-healing decisions by outcome:
	// no_action, redirect, not_found or error.
	ResolutionsTotal *prometheus.CounterVec

	// ResolutionDuration is the time from index lookup to decision.
	ResolutionDuration *prometheus.HistogramVec

	// RateLimitedTotal counts requests rejected with 429.
	RateLimitedTotal *prometheus.CounterVec

	// LiveReloadClients is the number of connected reload sockets.
	LiveReloadClients prometheus.Gauge
}

var (
	defaultMetrics *SiteMetrics
	defaultOnce    sync.Once
)

// Default returns the process-wide metrics, registering them on first use.
func Default() *SiteMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(promauto.With(prometheus.DefaultRegisterer))
	})
	return defaultMetrics
}

// New creates SiteMetrics on factory. Tests pass a factory bound to a
// private registry.
func New(factory promauto.Factory) *SiteMetrics {
	return &SiteMetrics{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "selfheal",
				Name:      "resolutions_total",
				Help:      "Self-healing resolutions by collection and outcome",
			},
			[]string{"collection", "outcome"},
		),
		ResolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "selfheal",
				Name:      "resolution_duration_seconds",
				Help:      "Time to resolve a request against the content index",
				Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"collection"},
		),
		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "site",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
		LiveReloadClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "site",
				Name:      "livereload_clients",
				Help:      "Connected live reload clients",
			},
		),
	}
}

// RecordResolution counts one decision. A nil receiver is a no-op.
func (m *SiteMetrics) RecordResolution(collection, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(collection, outcome).Inc()
	m.ResolutionDuration.WithLabelValues(collection).Observe(seconds)
}

// RecordRateLimited counts one rejected request. A nil receiver is a no-op.
func (m *SiteMetrics) RecordRateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(route).Inc()
}
