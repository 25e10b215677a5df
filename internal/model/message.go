// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// AUTHOR TYPE
// =============================================================================

// Author identifies who produced a message.
type Author string

const (
	AuthorUser Author = "USER"
	AuthorBot  Author = "BOT"
)

// String returns the string representation of the author.
func (a Author) String() string {
	return string(a)
}

// DisplayName returns a human-readable name for the author.
func (a Author) DisplayName() string {
	switch a {
	case AuthorUser:
		return "You"
	case AuthorBot:
		return "Robo AI"
	default:
		return string(a)
	}
}

// =============================================================================
// GROUNDING CHUNKS
// =============================================================================

// WebChunk is a web page cited by the model.
type WebChunk struct {
	URI   string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// ReviewSnippet is a place review cited as supporting evidence.
type ReviewSnippet struct {
	URI      string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	ReviewID string `json:"reviewId,omitempty" yaml:"review_id,omitempty"`
}

// PlaceAnswerSources holds the evidence attached to a map place.
type PlaceAnswerSources struct {
	ReviewSnippets []ReviewSnippet `json:"reviewSnippets,omitempty" yaml:"review_snippets,omitempty"`
}

// MapsChunk is a map place cited by the model.
type MapsChunk struct {
	URI                string              `json:"uri,omitempty" yaml:"uri,omitempty"`
	Title              string              `json:"title,omitempty" yaml:"title,omitempty"`
	PlaceID            string              `json:"placeId,omitempty" yaml:"place_id,omitempty"`
	PlaceAnswerSources *PlaceAnswerSources `json:"placeAnswerSources,omitempty" yaml:"place_answer_sources,omitempty"`
}

// GroundingChunk is one citation record. Either field may be absent.
type GroundingChunk struct {
	Web  *WebChunk  `json:"web,omitempty" yaml:"web,omitempty"`
	Maps *MapsChunk `json:"maps,omitempty" yaml:"maps,omitempty"`
}

// Reply is the outcome of one successful model turn.
type Reply struct {
	Text    string
	Sources []GroundingChunk
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the conversation log.
// Messages are never edited once appended.
type Message struct {
	ID        string           `json:"id" yaml:"id"`
	Author    Author           `json:"author" yaml:"author"`
	Text      string           `json:"text" yaml:"text"`
	Sources   []GroundingChunk `json:"sources,omitempty" yaml:"sources,omitempty"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
}

// NewMessage creates a message with a time-ordered ID.
func NewMessage(author Author, text string, sources []GroundingChunk) *Message {
	return &Message{
		ID:        generateID(),
		Author:    author,
		Text:      text,
		Sources:   sources,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(text string) *Message {
	return NewMessage(AuthorUser, text, nil)
}

// NewBotMessage creates a message authored by the bot.
func NewBotMessage(text string, sources []GroundingChunk) *Message {
	return NewMessage(AuthorBot, text, sources)
}

// IsUser reports whether the user wrote the message.
func (m *Message) IsUser() bool {
	return m.Author == AuthorUser
}

// HasSources reports whether the message carries any citations.
func (m *Message) HasSources() bool {
	return len(m.Sources) > 0
}

// generateID returns a UUIDv7, which sorts by creation time.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
