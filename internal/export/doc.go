// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation log to disk.
//
// # Formats
//
//   - markdown: YAML frontmatter followed by one section per message
//   - html: a standalone page using the same link rendering as the browser UI
//   - json: the document structure, suitable for scripting
//   - yaml: the same structure as json
//
// Sources are exported normalized (flattened and deduplicated), which is
// what the user saw on screen.
//
// # Usage
//
//	doc := export.NewDocument(log, "gemini-2.5-flash")
//	path, err := export.ExportToFile(doc, export.Markdown(), export.DefaultOptions())
package export
