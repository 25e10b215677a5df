// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/robo-tui/internal/model"
)

func web(uri, title string) model.GroundingChunk {
	return model.GroundingChunk{Web: &model.WebChunk{URI: uri, Title: title}}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		chunks []model.GroundingChunk
		want   []Source
	}{
		{
			name:   "nil input",
			chunks: nil,
			want:   nil,
		},
		{
			name:   "empty chunks",
			chunks: []model.GroundingChunk{{}, {}},
			want:   nil,
		},
		{
			name:   "first title wins",
			chunks: []model.GroundingChunk{web("a", "A1"), web("b", "B"), web("a", "A2")},
			want: []Source{
				{Title: "A1", URI: "a", Kind: KindWeb},
				{Title: "B", URI: "b", Kind: KindWeb},
			},
		},
		{
			name: "web then maps then reviews",
			chunks: []model.GroundingChunk{
				{
					Web: &model.WebChunk{URI: "w", Title: "Web"},
					Maps: &model.MapsChunk{
						URI:   "m",
						Title: "Cafe",
						PlaceAnswerSources: &model.PlaceAnswerSources{
							ReviewSnippets: []model.ReviewSnippet{
								{URI: "r1", Title: "Great"},
								{URI: "m", Title: "Dup of place"},
							},
						},
					},
				},
			},
			want: []Source{
				{Title: "Web", URI: "w", Kind: KindWeb},
				{Title: "Cafe", URI: "m", Kind: KindMap},
				{Title: "Great", URI: "r1", Kind: KindMap},
			},
		},
		{
			name:   "cross kind duplicate keeps web",
			chunks: []model.GroundingChunk{web("x", "Page"), {Maps: &model.MapsChunk{URI: "x", Title: "Place"}}},
			want:   []Source{{Title: "Page", URI: "x", Kind: KindWeb}},
		},
		{
			name:   "empty uri deduped as a key",
			chunks: []model.GroundingChunk{web("", "one"), web("", "two")},
			want:   []Source{{Title: "one", URI: "", Kind: KindWeb}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.chunks))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	chunks := []model.GroundingChunk{
		web("a", "A1"), web("b", "B"), web("a", "A2"),
		{Maps: &model.MapsChunk{URI: "c", Title: "C"}},
	}
	once := Normalize(chunks)
	assert.Equal(t, once, Dedupe(once))
}

func TestKind_Icon(t *testing.T) {
	assert.Equal(t, "📍", KindMap.Icon())
	assert.Equal(t, "🌐", KindWeb.Icon())
}
