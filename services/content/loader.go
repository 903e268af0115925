// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// Source describes where one collection lives on disk.
type Source struct {
	// Name is the collection name.
	Name selfheal.CollectionName

	// Dir holds the collection's markdown files.
	Dir string

	// RequireCode rejects files without a selfHealing field.
	RequireCode bool
}

// IsContentFile reports whether name matches "[^_]*.{md,mdx}".
func IsContentFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".md" || ext == ".mdx"
}

// SlugFromPath derives an entry slug from a path relative to the collection
// directory: extension dropped, lower-cased, spaces replaced by "-", forward
// slashes kept for nested files.
func SlugFromPath(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	rel = strings.ToLower(rel)
	return strings.Join(strings.Fields(rel), "-")
}

// LoadCollection reads every content file below src.Dir and builds a
// Snapshot. A missing directory yields an empty snapshot. Files that fail to
// parse or carry an invalid code are recorded as rejections and logged; they
// never fail the load.
func LoadCollection(ctx context.Context, src Source, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("collection", string(src.Name))

	var (
		docs       []Document
		rejections []Rejection
	)

	if _, err := os.Stat(src.Dir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("collection directory does not exist", "dir", src.Dir)
		return newSnapshot(src.Name, docs, rejections), nil
	}

	err := filepath.WalkDir(src.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != src.Dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsContentFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(src.Dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		doc, err := readDocument(src, path, rel)
		if err != nil {
			logger.Warn("rejected content file", "path", rel, "error", err)
			rejections = append(rejections, Rejection{Path: rel, Reason: err.Error()})
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", src.Name, err)
	}

	snap := newSnapshot(src.Name, docs, rejections)
	for _, c := range snap.collisions {
		logger.Warn("duplicate selfHealing code", "code", string(c.Code), "slugs", c.Slugs, "winner", c.Slugs[0])
	}
	logger.Debug("collection loaded", "documents", snap.Len(), "entries", len(snap.entries))
	return snap, nil
}

func readDocument(src Source, path, rel string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	fm, body, err := ParseDocument(raw)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		Collection:  src.Name,
		Path:        rel,
		Frontmatter: fm,
		Body:        body,
	}

	doc.Slug = strings.Trim(fm.Slug, "/")
	if doc.Slug == "" {
		doc.Slug = SlugFromPath(rel)
	}

	switch code := strings.TrimSpace(fm.SelfHealing); {
	case code == "" && src.RequireCode:
		return Document{}, ErrMissingCode
	case code == "":
	case !selfheal.IsValidCode(code):
		return Document{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	default:
		doc.Code = selfheal.Code(code)
	}
	return doc, nil
}
