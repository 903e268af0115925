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

	"github.com/gin-gonic/gin"

	"github.com/Giorgiosaud/giorgiosaud.io/pkg/validation"
	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// ResolveResponse is the result of a dry-run resolution.
type ResolveResponse struct {
	Path      string           `json:"path"`
	Matched   bool             `json:"matched"`
	Partition string           `json:"partition,omitempty"`
	Outcome   selfheal.Outcome `json:"outcome"`
}

// Resolve reports what the interceptor would do for ?path= without
// redirecting.
func Resolve(partitions *selfheal.Partitions, index ContentIndex, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Query("path")
		if err := validation.ValidatePath(path); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		path, _ = strings.CutSuffix(path, ".md")

		partition, ok := partitions.Match(path)
		if !ok {
			c.JSON(http.StatusOK, ResolveResponse{
				Path:    path,
				Outcome: selfheal.Outcome{Kind: selfheal.NoActionNeeded},
			})
			return
		}

		entries, err := index.ListEntries(c.Request.Context(), partition.Name)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		outcome, err := selfheal.Resolve(path, partition, entries)
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, ResolveResponse{
			Path:      path,
			Matched:   true,
			Partition: string(partition.Name),
			Outcome:   outcome,
		})
	}
}

// GenerateRequest asks for codes derived from a title.
type GenerateRequest struct {
	Title string `json:"title" binding:"required,max=500"`
	Count int    `json:"count" binding:"omitempty,min=1,max=20"`
}

// GenerateResponse carries the primary code and its alternatives.
type GenerateResponse struct {
	Title        string          `json:"title"`
	Code         selfheal.Code   `json:"code"`
	Valid        bool            `json:"valid"`
	Frontmatter  string          `json:"frontmatter"`
	Alternatives []selfheal.Code `json:"alternatives"`
}

// GenerateCodes derives a code and alternatives from a title.
func GenerateCodes() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		count := req.Count
		if count == 0 {
			count = selfheal.DefaultAlternatives
		}

		code := selfheal.GenerateCode(req.Title)
		c.JSON(http.StatusOK, GenerateResponse{
			Title:        req.Title,
			Code:         code,
			Valid:        code.Valid(),
			Frontmatter:  "selfHealing: " + string(code),
			Alternatives: selfheal.GenerateAlternatives(req.Title, count),
		})
	}
}

// ValidateCode reports whether :code is a well-formed code, with the reason
// when it is not. Always 200; validity is in the body.
func ValidateCode() gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		resp := gin.H{"code": code, "valid": true}
		if err := selfheal.CheckCode(code); err != nil {
			resp["valid"] = false
			resp["reason"] = err.Error()
		}
		c.JSON(http.StatusOK, resp)
	}
}
