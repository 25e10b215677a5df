// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"html"
	"net/url"
	"strings"

	"github.com/jeranaias/robo-tui/internal/sources"
)

// HTML draws segments as an HTML fragment. Text is escaped, line breaks
// become <br>, and links open in a new tab without an opener reference.
// A link whose target is not http, https or mailto is written as literal
// text.
func HTML(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case SegmentText:
			b.WriteString(html.EscapeString(seg.Text))
		case SegmentLineBreak:
			b.WriteString("<br>")
		case SegmentLink:
			if !safeHref(seg.Target) {
				b.WriteString(html.EscapeString("[" + seg.Label + "](" + seg.Target + ")"))
				continue
			}
			writeAnchor(&b, seg.Target, html.EscapeString(seg.Label), "")
		}
	}
	return b.String()
}

// HTMLSources draws the sources block, or nothing for an empty list.
func HTMLSources(list []sources.Source) string {
	if len(list) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="sources"><h4>` + SourcesHeading + `</h4><div class="chips">`)
	for _, s := range list {
		writeAnchor(&b, s.URI, s.Kind.Icon()+" "+html.EscapeString(chipLabel(s)), "chip chip-"+string(s.Kind))
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

var allowedSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

func safeHref(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return allowedSchemes[strings.ToLower(u.Scheme)]
}

// writeAnchor falls back to a span when href has a disallowed scheme.
func writeAnchor(b *strings.Builder, href, inner, class string) {
	if !safeHref(href) {
		b.WriteString(`<span`)
		if class != "" {
			b.WriteString(` class="` + class + `"`)
		}
		b.WriteString(`>` + inner + `</span>`)
		return
	}
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(href))
	b.WriteString(`" target="_blank" rel="noopener noreferrer"`)
	if class != "" {
		b.WriteString(` class="` + class + `"`)
	}
	b.WriteString(`>`)
	b.WriteString(inner)
	b.WriteString(`</a>`)
}

// Plain draws segments without styling. Links become "label (target)".
func Plain(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case SegmentText:
			b.WriteString(seg.Text)
		case SegmentLineBreak:
			b.WriteByte('\n')
		case SegmentLink:
			b.WriteString(seg.Label + " (" + seg.Target + ")")
		}
	}
	return b.String()
}

// PlainSources draws the sources block as plain lines.
func PlainSources(list []sources.Source) string {
	if len(list) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(SourcesHeading)
	for _, s := range list {
		b.WriteString("\n  " + s.Kind.Icon() + " " + chipLabel(s) + " <" + s.URI + ">")
	}
	return b.String()
}
