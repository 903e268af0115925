// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP handlers of the notebook site.
//
// Handlers are constructed with their dependencies, including the logger
// that receives internal errors, and return a gin.HandlerFunc. Errors from
// the content and views packages are mapped to status codes by writeError.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Giorgiosaud/giorgiosaud.io/services/content"
	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
	"github.com/Giorgiosaud/giorgiosaud.io/services/views"
)

// ContentIndex is the read side of *content.Index used by the handlers.
type ContentIndex interface {
	Collections() []selfheal.CollectionName
	Ready() bool
	Snapshot(ctx context.Context, name selfheal.CollectionName) (*content.Snapshot, error)
	Entry(ctx context.Context, name selfheal.CollectionName, slug string) (content.Document, error)
	ListEntries(ctx context.Context, name selfheal.CollectionName) ([]selfheal.Entry, error)
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps package sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, content.ErrNotFound),
		errors.Is(err, content.ErrUnknownCollection),
		errors.Is(err, views.ErrUnknownEntry):
		return http.StatusNotFound
	case errors.Is(err, views.ErrInvalidEvent),
		errors.Is(err, selfheal.ErrInvalidCollectionName),
		errors.Is(err, selfheal.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError aborts with the mapped status. Internal errors are logged to
// logger, when set, and their message hidden from the client.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed",
				"path", c.Request.URL.Path,
				"status", status,
				"error", err)
		}
		msg = http.StatusText(status)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// collectionParam parses the :collection path parameter.
func collectionParam(c *gin.Context, logger *slog.Logger) (selfheal.CollectionName, bool) {
	name, err := selfheal.ParseCollectionName(c.Param("collection"))
	if err != nil {
		writeError(c, logger, err)
		return "", false
	}
	return name, true
}
