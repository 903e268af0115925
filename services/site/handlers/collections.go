// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Giorgiosaud/giorgiosaud.io/services/content"
	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// CollectionSummary describes one collection of the index.
type CollectionSummary struct {
	Name       selfheal.CollectionName `json:"name"`
	BasePath   string                  `json:"basePath,omitempty"`
	Locale     string                  `json:"locale,omitempty"`
	Documents  int                     `json:"documents"`
	Entries    int                     `json:"entries"`
	Collisions int                     `json:"collisions"`
	Rejected   int                     `json:"rejected"`
}

// Collections lists every collection with its counts.
func Collections(partitions *selfheal.Partitions, index ContentIndex, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		names := index.Collections()
		out := make([]CollectionSummary, 0, len(names))
		for _, name := range names {
			snap, err := index.Snapshot(c.Request.Context(), name)
			if err != nil {
				writeError(c, logger, err)
				return
			}
			sum := CollectionSummary{
				Name:       name,
				Documents:  snap.Len(),
				Entries:    len(snap.Entries()),
				Collisions: len(snap.Collisions()),
				Rejected:   len(snap.Rejections()),
			}
			if p, ok := partitions.Lookup(name); ok {
				sum.BasePath = p.BasePath
				sum.Locale = p.Locale
			}
			out = append(out, sum)
		}
		c.JSON(http.StatusOK, gin.H{"collections": out})
	}
}

// CollectionEntries returns the (code, slug) entries of :collection in
// resolution order, plus any code collisions.
func CollectionEntries(index ContentIndex, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := collectionParam(c, logger)
		if !ok {
			return
		}
		snap, err := index.Snapshot(c.Request.Context(), name)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"collection": name,
			"entries":    snap.Entries(),
			"collisions": nonNil(snap.Collisions()),
			"rejections": nonNil(snap.Rejections()),
			"loadedAt":   snap.LoadedAt(),
		})
	}
}

func nonNil[T content.Collision | content.Rejection](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
