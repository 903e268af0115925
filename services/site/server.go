// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package site assembles the notebook HTTP server.
//
// # Request Pipeline
//
//	gin.Recovery ─► otelgin ─► RequestID ─► Logger ─► Metrics ─► SelfHeal ─► route
//
// SelfHeal runs as global middleware, so stale URLs are redirected even
// when no page route would match them.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/Giorgiosaud/giorgiosaud.io/pkg/logging"
	"github.com/Giorgiosaud/giorgiosaud.io/services/config"
	"github.com/Giorgiosaud/giorgiosaud.io/services/content"
	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/livereload"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/middleware"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/observability"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/routes"
	"github.com/Giorgiosaud/giorgiosaud.io/services/telemetry"
	"github.com/Giorgiosaud/giorgiosaud.io/services/views"
)

// Sources converts the configured partitions into content sources.
func Sources(cfg config.Config) []content.Source {
	out := make([]content.Source, 0, len(cfg.Partitions))
	for _, p := range cfg.Partitions {
		out = append(out, content.Source{
			Name:        selfheal.CollectionName(p.Name),
			Dir:         cfg.CollectionDir(p),
			RequireCode: p.RequireCode,
		})
	}
	return out
}

// LocaleCollections picks, per locale, the first configured partition that
// requires codes. It is the collection behind the locale's llms.txt, its
// feed and its view counters.
func LocaleCollections(cfg config.Config) map[string]selfheal.CollectionName {
	out := make(map[string]selfheal.CollectionName)
	for _, p := range cfg.Partitions {
		if !p.RequireCode {
			continue
		}
		if _, taken := out[p.Locale]; !taken {
			out[p.Locale] = selfheal.CollectionName(p.Name)
		}
	}
	return out
}

// LLMsRoutes maps each locale's llms.txt path to its collection.
func LLMsRoutes(cfg config.Config) map[string]selfheal.CollectionName {
	return localePaths(cfg, routes.LLMsPath)
}

// FeedRoutes maps each locale's rss.xml path to its collection.
func FeedRoutes(cfg config.Config) map[string]selfheal.CollectionName {
	return localePaths(cfg, routes.RSSPath)
}

func localePaths(cfg config.Config, path func(locale string) string) map[string]selfheal.CollectionName {
	byLocale := LocaleCollections(cfg)
	out := make(map[string]selfheal.CollectionName, len(byLocale))
	for locale, name := range byLocale {
		out[path(locale)] = name
	}
	return out
}

// Server owns the router and the services behind it.
type Server struct {
	cfg     config.Config
	logger  *logging.Logger
	index   *content.Index
	store   *views.Store
	watcher *content.Watcher
	hub     *livereload.Hub
	router  *gin.Engine

	closeOnce sync.Once
}

// New builds the server from cfg. It does not load content or listen;
// call Run for that.
func New(cfg config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	log := logger.Slog()

	partitions, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("build partitions: %w", err)
	}

	index, err := content.NewIndex(log, Sources(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("build content index: %w", err)
	}

	store, err := views.OpenStore(views.StoreConfig{
		Path:       cfg.Views.Path,
		InMemory:   cfg.Views.Path == "",
		GCInterval: cfg.Views.GCInterval,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	tracker := views.NewTracker(store, index, LocaleCollections(cfg), log)

	s := &Server{cfg: cfg, logger: logger, index: index, store: store}

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else if cfg.Server.Env == config.EnvTest {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := observability.Default()
	httpMetrics, err := telemetry.NewHTTPMetrics(otel.GetMeterProvider().Meter("notebook.site"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.Telemetry.ServiceName),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Metrics(httpMetrics),
		middleware.SelfHeal(partitions, index, log, metrics),
	)

	deps := routes.Deps{
		Partitions:  partitions,
		Index:       index,
		Tracker:     tracker,
		Metrics:     metrics,
		Logger:      log,
		LLMs:        LLMsRoutes(cfg),
		Feeds:       FeedRoutes(cfg),
		RateLimiter: middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
	}
	if cfg.Server.Debug {
		s.hub = livereload.NewHub(log, metrics)
		index.OnReload(s.hub.OnReload)
		deps.LiveReload = s.hub
	}
	routes.SetupRoutes(router, deps)
	s.router = router

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Index returns the content index.
func (s *Server) Index() *content.Index { return s.index }

// Run loads every collection, starts the file watcher when enabled and
// serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := s.logger.Slog()

	start := time.Now()
	if err := s.index.Load(ctx); err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	log.Info("content loaded",
		"collections", len(s.index.Collections()),
		"duration_ms", time.Since(start).Milliseconds())

	if s.cfg.Content.Watch {
		w, err := content.NewWatcher(s.index, s.cfg.Content.Debounce, log)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		s.watcher = w
	}

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("notebook server listening", "addr", srv.Addr, "env", s.cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down notebook server")
	if s.hub != nil {
		s.hub.Close()
	}
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops the watcher and closes the view store.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.watcher != nil {
			s.watcher.Stop()
		}
		if s.hub != nil {
			s.hub.Close()
		}
		err = s.store.Close()
	})
	return err
}
