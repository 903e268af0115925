// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package views records reader engagement events against notebook entries.
//
// Events reference an entry by its self-healing code rather than its slug,
// so counts follow an entry through title changes.
package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EventType is the kind of tracking event.
type EventType string

const (
	EventPageView    EventType = "page_view"
	EventScrollDepth EventType = "scroll_depth"
	EventEngagement  EventType = "engagement"
	EventClick       EventType = "click"
	EventVideo       EventType = "video"
	EventCustom      EventType = "custom"
)

// Counted reports whether events of this type increment a stored counter.
// Click, video and custom events are only logged.
func (t EventType) Counted() bool {
	switch t {
	case EventPageView, EventScrollDepth, EventEngagement:
		return true
	}
	return false
}

var (
	// ErrInvalidEvent wraps validation failures. Maps to HTTP 400.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrUnknownEntry is returned when no entry carries the event's code.
	// Maps to HTTP 404.
	ErrUnknownEntry = errors.New("unknown entry")
)

// Event is one tracking event posted by the page script.
type Event struct {
	Type   EventType `json:"type" validate:"required,oneof=page_view scroll_depth engagement click video custom"`
	NoteID string    `json:"noteId" validate:"required,max=64"`

	// Collection selects the partition explicitly. When empty it is derived
	// from Language.
	Collection string `json:"collection,omitempty" validate:"omitempty,max=64"`
	Language   string `json:"language,omitempty" validate:"omitempty,oneof=en es"`
	SessionID  string `json:"sessionId,omitempty" validate:"omitempty,max=128"`

	ScrollDepth  *float64 `json:"scrollDepth,omitempty" validate:"omitempty,gte=0,lte=1"`
	ViewDuration *int     `json:"viewDuration,omitempty" validate:"omitempty,gte=0"`

	ElementID     string   `json:"elementId,omitempty" validate:"omitempty,max=256"`
	ElementType   string   `json:"elementType,omitempty" validate:"omitempty,max=64"`
	VideoID       string   `json:"videoId,omitempty" validate:"omitempty,max=256"`
	VideoProgress *float64 `json:"videoProgress,omitempty" validate:"omitempty,gte=0,lte=1"`

	Metadata map[string]any `json:"metadata,omitempty" validate:"omitempty,max=32"`
}

var eventValidate = validator.New()

// Validate checks the event shape. A scroll_depth event must carry
// scrollDepth.
func (e Event) Validate() error {
	if err := eventValidate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidEvent, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if e.Type == EventScrollDepth && e.ScrollDepth == nil {
		return fmt.Errorf("%w: scroll depth required (must be 0-1)", ErrInvalidEvent)
	}
	return nil
}
