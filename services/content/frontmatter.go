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
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML header of a notebook or team markdown file.
//
// Notes carry Title and SelfHealing; team members carry Name and usually no
// code. Unknown keys (cover images, author references) are ignored.
type Frontmatter struct {
	Title       string   `yaml:"title" json:"title"`
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Alias       string   `yaml:"alias,omitempty" json:"alias,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Resume      string   `yaml:"resume,omitempty" json:"resume,omitempty"`
	Draft       bool     `yaml:"draft" json:"draft"`
	SelfHealing string   `yaml:"selfHealing,omitempty" json:"selfHealing,omitempty"`
	Slug        string   `yaml:"slug,omitempty" json:"slug,omitempty"`
	Category    string   `yaml:"category,omitempty" json:"category,omitempty"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	PublishDate Date     `yaml:"publishDate" json:"publishDate"`
	LastUpdate  Date     `yaml:"lastUpdate,omitempty" json:"lastUpdate,omitempty"`
}

// DisplayTitle returns Title, falling back to Name for team entries.
func (f Frontmatter) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return f.Name
}

// Summary returns Description, falling back to Resume.
func (f Frontmatter) Summary() string {
	if f.Description != "" {
		return f.Description
	}
	return f.Resume
}

// dateLayouts are tried in order when decoding a Date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"Jan 2 2006",
	"January 2, 2006",
}

// Date is a frontmatter date. It accepts quoted and unquoted YAML dates in
// the layouts authors actually use.
type Date struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", node.Line)
	}
	value := strings.TrimSpace(node.Value)
	if value == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("line %d: unrecognised date %q", node.Line, value)
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format("2006-01-02"), nil
}

var fence = []byte("---")

// ParseDocument splits raw file content into frontmatter and body.
//
// The file must open with a "---" line; the header ends at the next line
// that is exactly "---". A leading UTF-8 BOM is ignored.
func ParseDocument(raw []byte) (Frontmatter, string, error) {
	var fm Frontmatter

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))

	first, rest, ok := bytes.Cut(raw, []byte("\n"))
	if !ok || !bytes.Equal(bytes.TrimRight(first, " \t"), fence) {
		return fm, "", ErrNoFrontmatter
	}

	var header []byte
	body := []byte{}
	found := false
	for {
		line, tail, more := bytes.Cut(rest, []byte("\n"))
		if bytes.Equal(bytes.TrimRight(line, " \t"), fence) {
			body = tail
			found = true
			break
		}
		header = append(header, line...)
		header = append(header, '\n')
		rest = tail
		if !more {
			break
		}
	}
	if !found {
		return fm, "", ErrNoFrontmatter
	}

	if err := yaml.Unmarshal(header, &fm); err != nil {
		return fm, "", fmt.Errorf("%w: %v", ErrBadFrontmatter, err)
	}
	return fm, strings.TrimLeft(string(body), "\n"), nil
}
