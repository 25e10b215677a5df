// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"strings"

	"github.com/samber/lo"

	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/model"
)

// Tool names a retrieval tool the model may invoke.
type Tool string

const (
	ToolGoogleSearch Tool = "googleSearch"
	ToolGoogleMaps   Tool = "googleMaps"
)

// DefaultTools returns the tools every chat is created with.
func DefaultTools() []Tool {
	return []Tool{ToolGoogleSearch, ToolGoogleMaps}
}

// ChatConfig is fixed for the lifetime of a chat.
type ChatConfig struct {
	Model  string
	Tools  []Tool
	LatLng *geo.Coordinates
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Part is a piece of content. Only text parts are used.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is one turn of the conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Text joins the text of all parts.
func (c Content) Text() string {
	return strings.Join(lo.Map(c.Parts, func(p Part, _ int) string {
		return p.Text
	}), "")
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type retrievalConfig struct {
	LatLng *latLng `json:"latLng,omitempty"`
}

type toolConfig struct {
	RetrievalConfig *retrievalConfig `json:"retrievalConfig,omitempty"`
}

// GenerateRequest is the body of a generateContent call.
type GenerateRequest struct {
	Contents   []Content             `json:"contents"`
	Tools      []map[string]struct{} `json:"tools,omitempty"`
	ToolConfig *toolConfig           `json:"toolConfig,omitempty"`
}

// GroundingMetadata carries the citations of a candidate.
type GroundingMetadata struct {
	GroundingChunks []model.GroundingChunk `json:"groundingChunks,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// PromptFeedback reports why a prompt was rejected.
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// GenerateResponse is the body of a successful generateContent call.
type GenerateResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

// apiErrorResponse is the body of a failed call.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func buildRequest(cfg ChatConfig, contents []Content) GenerateRequest {
	req := GenerateRequest{
		Contents: contents,
		Tools: lo.Map(cfg.Tools, func(t Tool, _ int) map[string]struct{} {
			return map[string]struct{}{string(t): {}}
		}),
	}
	if cfg.LatLng != nil {
		req.ToolConfig = &toolConfig{
			RetrievalConfig: &retrievalConfig{
				LatLng: &latLng{Latitude: cfg.LatLng.Latitude, Longitude: cfg.LatLng.Longitude},
			},
		}
	}
	return req
}
