// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sources flattens and deduplicates the grounding citations attached
// to a model reply.
package sources

import (
	"github.com/samber/lo"

	"github.com/jeranaias/robo-tui/internal/model"
)

// Kind classifies a normalized source.
type Kind string

const (
	KindWeb Kind = "web"
	KindMap Kind = "map"
)

// Icon returns the chip marker for the kind.
func (k Kind) Icon() string {
	if k == KindMap {
		return "📍"
	}
	return "🌐"
}

// Source is a single displayable citation.
type Source struct {
	Title string `json:"title" yaml:"title"`
	URI   string `json:"uri" yaml:"uri"`
	Kind  Kind   `json:"kind" yaml:"kind"`
}

// Flatten expands chunks into sources in citation order. For each chunk the
// web page comes first, then the map place, then the place's review snippets.
func Flatten(chunks []model.GroundingChunk) []Source {
	return lo.FlatMap(chunks, func(c model.GroundingChunk, _ int) []Source {
		var out []Source
		if c.Web != nil {
			out = append(out, Source{Title: c.Web.Title, URI: c.Web.URI, Kind: KindWeb})
		}
		if c.Maps != nil {
			out = append(out, Source{Title: c.Maps.Title, URI: c.Maps.URI, Kind: KindMap})
			if c.Maps.PlaceAnswerSources != nil {
				for _, r := range c.Maps.PlaceAnswerSources.ReviewSnippets {
					out = append(out, Source{Title: r.Title, URI: r.URI, Kind: KindMap})
				}
			}
		}
		return out
	})
}

// Dedupe drops every source whose URI was already seen. The first occurrence
// wins, title included, and order is preserved. An empty URI is a key like
// any other.
func Dedupe(items []Source) []Source {
	if len(items) == 0 {
		return nil
	}
	return lo.UniqBy(items, func(s Source) string {
		return s.URI
	})
}

// Normalize flattens and deduplicates chunks. A nil result means there is
// nothing to show.
func Normalize(chunks []model.GroundingChunk) []Source {
	return Dedupe(Flatten(chunks))
}
