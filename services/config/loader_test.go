// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())

	p, ok := reg.Match("/es/cuaderno/brdcst-titulo")
	require.True(t, ok)
	assert.Equal(t, selfheal.CollectionName("notas"), p.Name)
	assert.Equal(t, "es", p.Locale)
}

func TestConfig_CollectionDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Content.Root = "/srv/content"
	assert.Equal(t, filepath.Join("/srv/content", "notes", "en"), cfg.CollectionDir(cfg.Partitions[0]))
	assert.Equal(t, filepath.Join("/srv/content", "blog"), cfg.CollectionDir(PartitionConfig{Name: "blog"}))
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  port: 8080
  debug: true
content:
  root: ./content
  watch: true
  debounce: 50ms
`))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, 50*time.Millisecond, cfg.Content.Debounce)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Len(t, cfg.Partitions, 4)
}

func TestParse_LoggingExporter(t *testing.T) {
	cfg, err := Parse([]byte("logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "span", cfg.Logging.Exporter)

	cfg, err = Parse([]byte("logging:\n  exporter: none\n"))
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Logging.Exporter)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParse_PartitionsReplaceDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
partitions:
  - name: notes
    base_path: /blog
    locale: en
`))
	require.NoError(t, err)
	require.Len(t, cfg.Partitions, 1)
	assert.Equal(t, "/blog", cfg.Partitions[0].BasePath)
	assert.NoError(t, cfg.Validate())
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("server:\n  prot: 80\n"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown env", func(c *Config) { c.Server.Env = "staging" }},
		{"missing content root", func(c *Config) { c.Content.Root = "" }},
		{"no partitions", func(c *Config) { c.Partitions = nil }},
		{"bad collection name", func(c *Config) { c.Partitions[0].Name = "Notes" }},
		{"relative base path", func(c *Config) { c.Partitions[0].BasePath = "notebook" }},
		{"unknown locale", func(c *Config) { c.Partitions[0].Locale = "fr" }},
		{"duplicate name", func(c *Config) { c.Partitions[1].Name = "notes" }},
		{"duplicate base path", func(c *Config) { c.Partitions[1].BasePath = "/notebook/" }},
		{"otlp without endpoint", func(c *Config) { c.Telemetry.Exporter = "otlp" }},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"log exporter", func(c *Config) { c.Logging.Exporter = "loki" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvPort:        "9000",
		EnvContentRoot: "/data/content",
		EnvViewsPath:   "/data/views",
		EnvName:        "Production",
	}
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/data/content", cfg.Content.Root)
	assert.Equal(t, "/data/views", cfg.Views.Path)
	assert.True(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_BadPort(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(func(k string) string {
		if k == EnvPort {
			return "http"
		}
		return ""
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0600))
	t.Setenv(EnvPort, "8181")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, ":8181", cfg.Server.Addr())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notebook.yaml")
	require.NoError(t, WriteDefault(path))
	assert.Error(t, WriteDefault(path), "existing file must not be overwritten")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Partitions, cfg.Partitions)
	assert.Equal(t, DefaultConfig().Content.Debounce, cfg.Content.Debounce)
}
