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

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
	"github.com/Giorgiosaud/giorgiosaud.io/services/views"
)

// TrackResponse acknowledges an accepted event.
type TrackResponse struct {
	Success    bool                    `json:"success"`
	Type       views.EventType         `json:"type"`
	Collection selfheal.CollectionName `json:"collection"`
	Slug       string                  `json:"slug"`
	Count      uint64                  `json:"count,omitempty"`
}

// TrackView records one tracking event posted by the page script.
func TrackView(tracker *views.Tracker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event views.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		res, err := tracker.Track(c.Request.Context(), event)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, TrackResponse{
			Success:    true,
			Type:       res.Type,
			Collection: res.Collection,
			Slug:       res.Slug,
			Count:      res.Count,
		})
	}
}

// ViewSummary returns the counters of the entry carrying :code.
func ViewSummary(tracker *views.Tracker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := collectionParam(c, logger)
		if !ok {
			return
		}
		code := c.Param("code")
		if err := selfheal.CheckCode(code); err != nil {
			writeError(c, logger, err)
			return
		}

		sum, err := tracker.Summary(c.Request.Context(), name, selfheal.Code(code))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}
