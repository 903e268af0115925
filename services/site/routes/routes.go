// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/handlers"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/livereload"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/middleware"
	"github.com/Giorgiosaud/giorgiosaud.io/services/site/observability"
	"github.com/Giorgiosaud/giorgiosaud.io/services/views"
)

// Index is everything the routes read from the content index.
type Index interface {
	handlers.ContentIndex
	middleware.EntryLister
}

// Deps are the services wired into the router.
type Deps struct {
	Partitions *selfheal.Partitions
	Index      Index
	Tracker    *views.Tracker
	Metrics    *observability.SiteMetrics
	Logger     *slog.Logger

	// LLMs maps an llms.txt path to the collection it lists.
	LLMs map[string]selfheal.CollectionName

	// Feeds maps an rss.xml path to the collection it lists.
	Feeds map[string]selfheal.CollectionName

	// RateLimiter guards the write APIs. Nil disables limiting.
	RateLimiter *middleware.RateLimiter

	// LiveReload is mounted at /dev/livereload when set.
	LiveReload *livereload.Hub
}

// LLMsPath returns the llms.txt path for a locale: "/llms.txt" for English,
// "/<locale>/llms.txt" otherwise.
func LLMsPath(locale string) string {
	if locale == "" || locale == "en" {
		return "/llms.txt"
	}
	return "/" + locale + "/llms.txt"
}

// RSSPath returns the feed path for a locale: "/rss.xml" for English,
// "/<locale>/rss.xml" otherwise.
func RSSPath(locale string) string {
	if locale == "" || locale == "en" {
		return "/rss.xml"
	}
	return "/" + locale + "/rss.xml"
}

// SetupRoutes registers every site route on router. The self-healing
// interceptor must already be installed as global middleware so that it
// also sees requests that match no route.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	for _, p := range deps.Partitions.All() {
		router.GET(p.BasePath, handlers.EntryList(deps.Index, p, deps.Logger))
		router.GET(p.BasePath+"/*slug", handlers.Entry(deps.Index, p, deps.Logger))
	}

	for path, name := range deps.LLMs {
		p, ok := deps.Partitions.Lookup(name)
		if !ok {
			continue
		}
		header, ok := handlers.DefaultLLMsHeaders[p.Locale]
		if !ok {
			header = handlers.DefaultLLMsHeaders["en"]
		}
		router.GET(path, handlers.LLMsText(deps.Index, p, header, deps.Logger))
	}

	for path, name := range deps.Feeds {
		p, ok := deps.Partitions.Lookup(name)
		if !ok {
			continue
		}
		header, ok := handlers.DefaultFeedHeaders[p.Locale]
		if !ok {
			header = handlers.DefaultFeedHeaders["en"]
		}
		router.GET(path, handlers.RSS(deps.Index, p, header, deps.Logger))
	}

	writeGuard := func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		writeGuard = middleware.RateLimit(deps.RateLimiter, deps.Metrics)
	}

	api := router.Group("/api")
	{
		api.GET("/health.json", handlers.Health(deps.Index))
		api.GET("/ready.json", handlers.Ready(deps.Index))
		api.GET("/collections", handlers.Collections(deps.Partitions, deps.Index, deps.Logger))
		api.GET("/collections/:collection/entries", handlers.CollectionEntries(deps.Index, deps.Logger))

		sh := api.Group("/selfheal")
		{
			sh.GET("/resolve", handlers.Resolve(deps.Partitions, deps.Index, deps.Logger))
			sh.POST("/codes", writeGuard, handlers.GenerateCodes())
			sh.GET("/codes/:code", handlers.ValidateCode())
		}

		v := api.Group("/views")
		{
			v.POST("/track.json", writeGuard, handlers.TrackView(deps.Tracker, deps.Logger))
			v.GET("/:collection/:code", handlers.ViewSummary(deps.Tracker, deps.Logger))
		}
	}

	if deps.LiveReload != nil {
		router.GET("/dev/livereload", deps.LiveReload.Handler())
	}
}
