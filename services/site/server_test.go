// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Giorgiosaud/giorgiosaud.io/services/config"
	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

func writeDoc(t *testing.T, path, frontmatter string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("---\n"+frontmatter+"---\nbody\n"), 0o644))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "notes/en/brdcst-new-title.md"),
		"title: Broadcast\ndescription: Tabs\nselfHealing: brdcst\npublishDate: 2024-03-01\n")
	writeDoc(t, filepath.Join(root, "notes/es/brdcst-titulo.md"),
		"title: Difusion\nselfHealing: brdcst\npublishDate: 2024-03-01\n")
	writeDoc(t, filepath.Join(root, "team/en/jane.md"), "name: Jane\n")

	cfg := config.DefaultConfig()
	cfg.Server.Env = config.EnvTest
	cfg.Content.Root = root
	cfg.Telemetry.Metrics = "none"
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	s, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Index().Load(context.Background()))
	return s
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func post(h http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSources(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Content.Root = "/srv/content"
	sources := Sources(cfg)
	require.Len(t, sources, 4)
	assert.Equal(t, selfheal.CollectionName("notes"), sources[0].Name)
	assert.Equal(t, filepath.Join("/srv/content", "notes", "en"), sources[0].Dir)
	assert.True(t, sources[0].RequireCode)
	assert.False(t, sources[2].RequireCode)
}

func TestLLMsRoutes(t *testing.T) {
	assert.Equal(t, map[string]selfheal.CollectionName{
		"/llms.txt":    "notes",
		"/es/llms.txt": "notas",
	}, LLMsRoutes(config.DefaultConfig()))
}

func TestFeedRoutes(t *testing.T) {
	assert.Equal(t, map[string]selfheal.CollectionName{
		"/rss.xml":    "notes",
		"/es/rss.xml": "notas",
	}, FeedRoutes(config.DefaultConfig()))
}

func TestLocaleCollections(t *testing.T) {
	assert.Equal(t, map[string]selfheal.CollectionName{
		"en": "notes",
		"es": "notas",
	}, LocaleCollections(config.DefaultConfig()))

	cfg := config.DefaultConfig()
	cfg.Partitions = []config.PartitionConfig{
		{Name: "team", BasePath: "/team", Locale: "en"},
		{Name: "notes", BasePath: "/notebook", Locale: "en", RequireCode: true},
		{Name: "archive", BasePath: "/archive", Locale: "en", RequireCode: true},
	}
	assert.Equal(t, map[string]selfheal.CollectionName{"en": "notes"}, LocaleCollections(cfg),
		"first code-bearing partition wins; code-less ones are skipped")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Partitions = nil
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestServer_SelfHealingEndToEnd(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	h := s.Handler()

	w := get(h, "/notebook/brdcst-old-title?utm_source=rss")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/notebook/brdcst-new-title?utm_source=rss", w.Header().Get("Location"))

	w = get(h, "/es/cuaderno/brdcst-viejo")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/es/cuaderno/brdcst-titulo", w.Header().Get("Location"))

	w = get(h, "/notebook/brdcst-new-title")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Broadcast"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(h, "/notebook/zzzzzz-gone")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(h, "/team/jane").Code)
	assert.Equal(t, http.StatusOK, get(h, "/notebook").Code)
}

func TestServer_NestedSlugIsNotRedirectedToItself(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, filepath.Join(cfg.Content.Root, "notes/en/2024/rhythm-guide.md"),
		"title: Rhythm\nselfHealing: rhythm\npublishDate: 2024-04-01\n")
	h := newTestServer(t, cfg).Handler()

	w := get(h, "/notebook/2024/rhythm-guide")
	assert.Equal(t, http.StatusOK, w.Code, "Location=%q", w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), `"slug":"2024/rhythm-guide"`)

	w = get(h, "/notebook/rhythm-old")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/notebook/2024/rhythm-guide", w.Header().Get("Location"))

	w = get(h, "/notebook/2024/rhythm-guide.md")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Endpoints(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	h := s.Handler()
	get(h, "/notebook/brdcst-old")

	w := get(h, "/llms.txt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "- [Broadcast](/notebook/brdcst-new-title.md): Tabs")

	w = get(h, "/es/llms.txt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/es/cuaderno/brdcst-titulo.md")

	w = get(h, "/rss.xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<link>http://example.com/notebook/brdcst-new-title/</link>")
	assert.Contains(t, w.Body.String(), "<pubDate>Fri, 01 Mar 2024 00:00:00 +0000</pubDate>")

	w = get(h, "/es/rss.xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<link>http://example.com/es/cuaderno/brdcst-titulo/</link>")

	assert.Equal(t, http.StatusOK, get(h, "/api/health.json").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/ready.json").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/collections/notes/entries").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/selfheal/resolve?path=/notebook/brdcst").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/selfheal/codes/rhythm").Code)

	w = post(h, "/api/views/track.json", `{"type":"page_view","noteId":"brdcst"}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = get(h, "/api/views/notes/brdcst")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"views":1`)

	w = get(h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "notebook_selfheal_resolutions_total")

	assert.Equal(t, http.StatusNotFound, get(h, "/dev/livereload").Code, "live reload is debug only")
}

func TestServer_RateLimitsWrites(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RateLimit = 0.001
	cfg.Server.RateBurst = 1
	s := newTestServer(t, cfg)
	h := s.Handler()

	assert.Equal(t, http.StatusOK, post(h, "/api/selfheal/codes", `{"title":"Hello World"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(h, "/api/selfheal/codes", `{"title":"Hello World"}`).Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/selfheal/codes/rhythm").Code, "reads are not limited")
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServer_RunAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Content.Watch = true
	cfg.Server.ShutdownTimeout = 2 * time.Second

	s, err := New(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	url := fmt.Sprintf("http://%s/api/ready.json", cfg.Server.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, err == nil || errors.Is(err, context.Canceled), "unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
