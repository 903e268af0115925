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
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Giorgiosaud/giorgiosaud.io/pkg/validation"
	"github.com/Giorgiosaud/giorgiosaud.io/services/content"
	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// EntryResponse is the JSON rendition of one published entry.
type EntryResponse struct {
	Collection  selfheal.CollectionName `json:"collection"`
	Locale      string                  `json:"locale"`
	Slug        string                  `json:"slug"`
	URL         string                  `json:"url"`
	Code        selfheal.Code           `json:"code,omitempty"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Category    string                  `json:"category,omitempty"`
	Tags        []string                `json:"tags,omitempty"`
	PublishDate *time.Time              `json:"publishDate,omitempty"`
	LastUpdate  *time.Time              `json:"lastUpdate,omitempty"`
	Body        string                  `json:"body"`
}

func timePtr(d content.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func newEntryResponse(p selfheal.Partition, doc content.Document) EntryResponse {
	return EntryResponse{
		Collection:  p.Name,
		Locale:      p.Locale,
		Slug:        doc.Slug,
		URL:         p.EntryPath(doc.Slug),
		Code:        doc.Code,
		Title:       doc.DisplayTitle(),
		Description: doc.Summary(),
		Category:    doc.Category,
		Tags:        doc.Tags,
		PublishDate: timePtr(doc.PublishDate),
		LastUpdate:  timePtr(doc.LastUpdate),
		Body:        doc.Body,
	}
}

// Entry serves one entry of partition from the catch-all *slug parameter.
// A ".md" suffix returns the raw markdown body.
//
// Runs after the self-healing interceptor, so a slug carrying a known code
// has already been redirected to its current form.
func Entry(index ContentIndex, partition selfheal.Partition, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug, err := validation.SanitizeSlug(c.Param("slug"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "not found"})
			return
		}
		slug, markdown := strings.CutSuffix(slug, ".md")
		if slug == "" || strings.HasSuffix(slug, "/") {
			c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "not found"})
			return
		}

		doc, err := index.Entry(c.Request.Context(), partition.Name, slug)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		if markdown {
			c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc.Body))
			return
		}
		c.JSON(http.StatusOK, newEntryResponse(partition, doc))
	}
}

// EntryList serves the published entries of partition at its base path.
func EntryList(index ContentIndex, partition selfheal.Partition, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := index.Snapshot(c.Request.Context(), partition.Name)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		published := snap.Published()
		out := make([]EntryResponse, 0, len(published))
		for _, doc := range published {
			resp := newEntryResponse(partition, doc)
			resp.Body = ""
			out = append(out, resp)
		}
		c.JSON(http.StatusOK, gin.H{
			"collection": partition.Name,
			"locale":     partition.Locale,
			"entries":    out,
		})
	}
}
