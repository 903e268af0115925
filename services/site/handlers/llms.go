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

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// LLMsHeader is the preamble of an llms.txt document.
type LLMsHeader struct {
	Title   string
	Summary string
	Section string
}

// DefaultLLMsHeaders holds the preambles by locale.
var DefaultLLMsHeaders = map[string]LLMsHeader{
	"en": {
		Title:   "Giorgiosaud.io",
		Summary: "Web developer notebook with notes on Astro, JavaScript, TypeScript, and modern web development.",
		Section: "Notes",
	},
	"es": {
		Title:   "Giorgiosaud.io",
		Summary: "Cuaderno de desarrollador web con notas sobre Astro, JavaScript, TypeScript y desarrollo web moderno.",
		Section: "Notas",
	},
}

// LLMsText lists the published entries of partition, newest first, as a
// plain-text index for language models. Each line links to the markdown
// rendition of the entry.
//
//	# Giorgiosaud.io
//
//	> Web developer notebook ...
//
//	## Notes
//	- [Title](/notebook/brdcst-title.md): description
func LLMsText(index ContentIndex, partition selfheal.Partition, header LLMsHeader, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := index.Snapshot(c.Request.Context(), partition.Name)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		var b strings.Builder
		b.WriteString("# " + header.Title + "\n\n")
		b.WriteString("> " + header.Summary + "\n\n")
		b.WriteString("## " + header.Section + "\n")
		for i, doc := range snap.Published() {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("- [" + doc.DisplayTitle() + "](" + partition.EntryPath(doc.Slug) + ".md): " + doc.Summary())
		}
		b.WriteByte('\n')

		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
	}
}
