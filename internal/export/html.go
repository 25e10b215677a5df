// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"html/template"

	"github.com/jeranaias/robo-tui/internal/render"
)

// HTMLExporter exports a standalone HTML page.
type HTMLExporter struct {
	tmpl *template.Template
}

// HTML returns an HTML exporter.
func HTML() *HTMLExporter {
	return &HTMLExporter{tmpl: template.Must(template.New("export").Funcs(template.FuncMap{
		"body": func(e Entry) template.HTML {
			// render.HTML escapes all text it emits.
			return template.HTML(render.HTML(render.ForAuthor(e.Author, e.Text)))
		},
		"sources": func(e Entry) template.HTML {
			return template.HTML(render.HTMLSources(e.Sources))
		},
		"stamp": formatTimestamp,
	}).Parse(htmlTemplate))}
}

// Export implements Exporter.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileExtension implements Exporter.
func (e *HTMLExporter) FileExtension() string { return ".html" }

// MimeType implements Exporter.
func (e *HTMLExporter) MimeType() string { return "text/html" }

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; background: #111827; color: #e5e7eb; max-width: 48rem; margin: 2rem auto; }
.msg { padding: .75rem 1rem; border-radius: 1rem; margin: .75rem 0; }
.USER { background: #1d4ed8; margin-left: 20%; }
.BOT { background: #374151; margin-right: 20%; }
.meta { font-size: .75rem; color: #9ca3af; }
a { color: #93c5fd; }
.chip { display: inline-block; margin: .25rem .25rem 0 0; padding: .1rem .5rem; border-radius: 999px; background: #4b5563; text-decoration: none; }
h4 { margin: .75rem 0 .25rem; font-size: .8rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Model {{.Model}} &middot; exported {{stamp .ExportedAt}}</p>
{{range .Messages}}<div class="msg {{.Author}}">
<div class="meta">{{.Author.DisplayName}} &middot; {{stamp .Time}}</div>
<div class="text">{{body .}}</div>
{{sources .}}
</div>
{{end}}</body>
</html>
`
