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
	"encoding/xml"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

// RSSContentType is the media type of the feed responses.
const RSSContentType = "application/rss+xml; charset=utf-8"

// FeedHeader is the channel metadata of an RSS feed.
type FeedHeader struct {
	Title       string
	Description string
}

// DefaultFeedHeaders holds the channel metadata by locale.
var DefaultFeedHeaders = map[string]FeedHeader{
	"en": {
		Title:       "Giorgiosaud Notebook",
		Description: "A developer notebook of important things",
	},
	"es": {
		Title:       "Cuaderno de Giorgiosaud",
		Description: "Un cuaderno de desarrollador con las cosas importantes",
	},
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Description string  `xml:"description,omitempty"`
	PubDate     string  `xml:"pubDate,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSS serves the published entries of partition as an RSS 2.0 feed, newest
// first. Links are absolute, built from the request origin, and end in a
// slash: <origin><base>/<slug>/.
func RSS(index ContentIndex, partition selfheal.Partition, header FeedHeader, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := index.Snapshot(c.Request.Context(), partition.Name)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		origin := requestOrigin(c.Request)
		published := snap.Published()
		feed := rssFeed{
			Version: "2.0",
			Channel: rssChannel{
				Title:       header.Title,
				Link:        origin + partition.BasePath + "/",
				Description: header.Description,
				Language:    partition.Locale,
				Items:       make([]rssItem, 0, len(published)),
			},
		}
		for _, doc := range published {
			link := origin + partition.EntryPath(doc.Slug) + "/"
			item := rssItem{
				Title:       doc.DisplayTitle(),
				Link:        link,
				GUID:        rssGUID{IsPermaLink: true, Value: link},
				Description: doc.Summary(),
			}
			if !doc.PublishDate.IsZero() {
				item.PubDate = doc.PublishDate.UTC().Format(time.RFC1123Z)
			}
			feed.Channel.Items = append(feed.Channel.Items, item)
		}

		body, err := xml.MarshalIndent(feed, "", "  ")
		if err != nil {
			writeError(c, logger, err)
			return
		}
		c.Data(http.StatusOK, RSSContentType, append([]byte(xml.Header), body...))
	}
}

// requestOrigin returns scheme://host of r, honouring X-Forwarded-Proto.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
