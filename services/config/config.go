// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the notebook server configuration.
//
// Configuration is read from a YAML file layered over DefaultConfig, then
// environment overrides are applied, then the result is validated. The
// default configuration reproduces the production deployment: four content
// collections (notes, notas, team, equipo) served under /notebook,
// /es/cuaderno, /team and /es/equipo.
package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// Environment names accepted by ServerConfig.Env.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the root configuration document.
type Config struct {
	// Server controls the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Content locates the markdown collections on disk.
	Content ContentConfig `yaml:"content"`

	// Partitions maps collections to URL prefixes. Order is irrelevant;
	// requests are matched by longest base path.
	Partitions []PartitionConfig `yaml:"partitions" validate:"required,min=1,dive"`

	// Views configures the view counter store.
	Views ViewsConfig `yaml:"views"`

	// Logging configures pkg/logging.
	Logging LoggingConfig `yaml:"logging"`

	// Telemetry configures traces and metrics export.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"gte=1,lte=65535"`
	Env             string        `yaml:"env" validate:"oneof=development production test"`
	Debug           bool          `yaml:"debug"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`

	// RateLimit is the sustained requests/second allowed per client on the
	// write APIs. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" validate:"gte=0"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ContentConfig locates the markdown collections on disk.
type ContentConfig struct {
	// Root is the directory that holds one subdirectory per collection.
	Root string `yaml:"root" validate:"required"`

	// Watch reloads collections when their files change.
	Watch bool `yaml:"watch"`

	// Debounce collapses bursts of file events into one reload.
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// PartitionConfig describes one content collection and its URL prefix.
type PartitionConfig struct {
	Name     string `yaml:"name" validate:"required,collection"`
	BasePath string `yaml:"base_path" validate:"required,startswith=/"`
	Locale   string `yaml:"locale" validate:"required,oneof=en es"`

	// Dir is the collection directory relative to Content.Root.
	// Defaults to Name.
	Dir string `yaml:"dir,omitempty"`

	// RequireCode rejects entries that have no selfHealing field.
	RequireCode bool `yaml:"require_code"`
}

// ViewsConfig configures the view counter store.
type ViewsConfig struct {
	// Path is the BadgerDB directory. Empty keeps counts in memory.
	Path string `yaml:"path"`

	// GCInterval is how often the value log is compacted.
	GCInterval time.Duration `yaml:"gc_interval" validate:"gte=0"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir"`

	// Exporter forwards records to an extra sink: "span" attaches them as
	// events on the active request span, "none" disables forwarding.
	Exporter string `yaml:"exporter" validate:"oneof=none span"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	// Exporter selects the trace exporter: none, stdout or otlp.
	Exporter string `yaml:"exporter" validate:"oneof=none stdout otlp"`

	// Metrics selects the OpenTelemetry metric reader: none, prometheus or
	// stdout. Prometheus shares the /metrics endpoint with promauto metrics.
	Metrics string `yaml:"metrics" validate:"oneof=none prometheus stdout"`

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string `yaml:"endpoint" validate:"required_if=Exporter otlp"`

	// Insecure disables TLS towards Endpoint.
	Insecure bool `yaml:"insecure"`

	// ServiceName is reported as service.name.
	ServiceName string `yaml:"service_name"`

	// SampleRate is the trace sampling ratio in [0,1].
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the production deployment settings.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "",
			Port:            4321,
			Env:             EnvDevelopment,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       5,
			RateBurst:       20,
		},
		Content: ContentConfig{
			Root:     "src/content",
			Debounce: 200 * time.Millisecond,
		},
		Partitions: []PartitionConfig{
			{Name: "notes", BasePath: "/notebook", Locale: "en", Dir: "notes/en", RequireCode: true},
			{Name: "notas", BasePath: "/es/cuaderno", Locale: "es", Dir: "notes/es", RequireCode: true},
			{Name: "team", BasePath: "/team", Locale: "en", Dir: "team/en"},
			{Name: "equipo", BasePath: "/es/equipo", Locale: "es", Dir: "team/es"},
		},
		Views: ViewsConfig{
			GCInterval: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Exporter: "span",
		},
		Telemetry: TelemetryConfig{
			Exporter:    "none",
			Metrics:     "prometheus",
			Insecure:    true,
			ServiceName: "notebook",
			SampleRate:  1,
		},
	}
}

// CollectionDir returns the absolute-or-relative directory for p.
func (c Config) CollectionDir(p PartitionConfig) string {
	dir := p.Dir
	if dir == "" {
		dir = p.Name
	}
	return filepath.Join(c.Content.Root, filepath.FromSlash(dir))
}

// Registry builds the partition registry from the configured partitions.
func (c Config) Registry() (*selfheal.Partitions, error) {
	parts := make([]selfheal.Partition, 0, len(c.Partitions))
	for _, p := range c.Partitions {
		name, err := selfheal.ParseCollectionName(p.Name)
		if err != nil {
			return nil, err
		}
		parts = append(parts, selfheal.Partition{
			Name:     name,
			BasePath: p.BasePath,
			Locale:   p.Locale,
		})
	}
	return selfheal.NewPartitions(parts...)
}

// IsProduction reports whether Server.Env is production.
func (c Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}
