// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/sources"
)

func sampleLog() *model.Log {
	log := model.NewLog()
	log.Append(model.NewUserMessage("Best café in Zürich?"))
	log.Append(model.NewBotMessage("Try [Café Sprüngli](https://maps.test/s)\nIt's <great>.", []model.GroundingChunk{
		{Maps: &model.MapsChunk{URI: "https://maps.test/s", Title: "Sprüngli"}},
		{Web: &model.WebChunk{URI: "https://maps.test/s", Title: "dup"}},
		{Web: &model.WebChunk{URI: "https://web.test", Title: "Guide"}},
	}))
	return log
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument(sampleLog(), "gemini-2.5-flash")

	assert.Equal(t, "Best café in Zürich?", doc.Title)
	require.Len(t, doc.Messages, 3)
	assert.Equal(t, model.AuthorBot, doc.Messages[0].Author)
	assert.Equal(t, []sources.Source{
		{Title: "Sprüngli", URI: "https://maps.test/s", Kind: sources.KindMap},
		{Title: "Guide", URI: "https://web.test", Kind: sources.KindWeb},
	}, doc.Messages[2].Sources)
}

func TestNewDocument_GreetingOnly(t *testing.T) {
	doc := NewDocument(model.NewLog(), "m")
	assert.Equal(t, "Robo AI conversation", doc.Title)
}

func TestMarkdownExporter(t *testing.T) {
	out, err := Markdown().Export(NewDocument(sampleLog(), "gemini-2.5-flash"))
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "---\n"))
	assert.Contains(t, s, "model: gemini-2.5-flash")
	assert.Contains(t, s, "### You")
	assert.Contains(t, s, "### Robo AI")
	assert.Contains(t, s, "- 📍 [Sprüngli](https://maps.test/s)")
	assert.Equal(t, 1, strings.Count(s, "https://web.test"))
}

func TestHTMLExporter_EscapesText(t *testing.T) {
	out, err := HTML().Export(NewDocument(sampleLog(), "m"))
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "It&#39;s &lt;great&gt;.")
	assert.Contains(t, s, `<a href="https://maps.test/s" target="_blank" rel="noopener noreferrer">Café Sprüngli</a>`)
	assert.Contains(t, s, "<br>")
	assert.Contains(t, s, "Sources:")
}

func TestJSONAndYAMLExporters(t *testing.T) {
	doc := NewDocument(sampleLog(), "m")

	out, err := JSON().Export(doc)
	require.NoError(t, err)
	var fromJSON Document
	require.NoError(t, json.Unmarshal(out, &fromJSON))
	assert.Len(t, fromJSON.Messages, 3)

	out, err = YAML().Export(doc)
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.Equal(t, "m", fromYAML["model"])
	assert.Len(t, fromYAML["messages"], 3)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportToFile(NewDocument(sampleLog(), "m"), Markdown(), &Options{OutputDir: filepath.Join(dir, "out")})
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "robo_best-cafe-in-zurich_"), base)
	assert.True(t, strings.HasSuffix(base, ".md"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestExportToFile_Empty(t *testing.T) {
	_, err := ExportToFile(&Document{}, JSON(), nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
	}{
		{"markdown", ".md"},
		{"MD", ".md"},
		{"html", ".html"},
		{"json", ".json"},
		{"yml", ".yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := ForFormat(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.ext, e.FileExtension())
		})
	}

	_, err := ForFormat("pdf")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Best café in Zürich?", "best-cafe-in-zurich"},
		{"  ", "conversation"},
		{"日本", "conversation"},
		{"a/b\\c", "a-b-c"},
	}
	for _, tc := range tests {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
