// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownExporter exports to Markdown with YAML frontmatter. Message text
// already uses [label](target) links, so it is written as is.
type MarkdownExporter struct{}

// Markdown returns a Markdown exporter.
func Markdown() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export implements Exporter.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %q\n", doc.Title))
	sb.WriteString(fmt.Sprintf("model: %s\n", doc.Model))
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(doc.Messages)))
	sb.WriteString(fmt.Sprintf("exported: %s\n", doc.ExportedAt.Format(time.RFC3339)))
	sb.WriteString("generator: robo\n")
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Title))

	for _, m := range doc.Messages {
		sb.WriteString(fmt.Sprintf("### %s\n\n", m.Author.DisplayName()))
		sb.WriteString(fmt.Sprintf("*%s*\n\n", formatTimestamp(m.Time)))
		sb.WriteString(m.Text)
		sb.WriteString("\n\n")

		if len(m.Sources) > 0 {
			sb.WriteString("**Sources:**\n\n")
			for _, s := range m.Sources {
				sb.WriteString(fmt.Sprintf("- %s [%s](%s)\n", s.Kind.Icon(), escapeLabel(s.Title, s.URI), s.URI))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("---\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType implements Exporter.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

func escapeLabel(title, uri string) string {
	if title == "" {
		title = uri
	}
	return strings.NewReplacer("[", "\\[", "]", "\\]").Replace(title)
}
