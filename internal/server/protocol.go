// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"time"

	"github.com/samber/lo"

	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/render"
	"github.com/jeranaias/robo-tui/internal/sources"
)

// Frame types.
const (
	FrameSubmit        = "submit"
	FrameLocation      = "location"
	FrameLocationError = "location_error"

	FrameSnapshot = "snapshot"
	FrameMessage  = "message"
	FrameState    = "state"
)

// InboundFrame is any frame sent by the browser.
type InboundFrame struct {
	Type      string   `json:"type"`
	Text      string   `json:"text,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// MessageView is a log entry as the page displays it. HTML and SourcesHTML
// are rendered server-side and already escaped.
type MessageView struct {
	ID          string           `json:"id"`
	Author      model.Author     `json:"author"`
	Time        time.Time        `json:"time"`
	Text        string           `json:"text"`
	HTML        string           `json:"html"`
	Sources     []sources.Source `json:"sources"`
	SourcesHTML string           `json:"sourcesHtml,omitempty"`
}

// SnapshotFrame is sent once when a connection opens.
type SnapshotFrame struct {
	Type            string        `json:"type"`
	Messages        []MessageView `json:"messages"`
	InFlight        bool          `json:"inFlight"`
	Error           string        `json:"error"`
	RequestLocation bool          `json:"requestLocation"`
}

// MessageFrame carries one appended message.
type MessageFrame struct {
	Type    string      `json:"type"`
	Message MessageView `json:"message"`
}

// StateFrame carries the phase and the banner.
type StateFrame struct {
	Type     string `json:"type"`
	InFlight bool   `json:"inFlight"`
	Error    string `json:"error"`
}

func viewOf(m *model.Message) MessageView {
	list := sources.Normalize(m.Sources)
	v := MessageView{
		ID:      m.ID,
		Author:  m.Author,
		Time:    m.CreatedAt,
		Text:    m.Text,
		HTML:    render.HTML(render.ForAuthor(m.Author, m.Text)),
		Sources: lo.Ternary(list == nil, []sources.Source{}, list),
	}
	if len(list) > 0 {
		v.SourcesHTML = render.HTMLSources(list)
	}
	return v
}

func viewsOf(msgs []*model.Message) []MessageView {
	return lo.Map(msgs, func(m *model.Message, _ int) MessageView { return viewOf(m) })
}
