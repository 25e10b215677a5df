// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/jeranaias/robo-tui/internal/sources"
	"github.com/jeranaias/robo-tui/internal/ui/styles"
)

// SourcesHeading introduces the citation chips under a reply.
const SourcesHeading = "Sources:"

// Terminal draws segments for an ANSI terminal, word-wrapped to Width.
// With Hyperlinks set, links are emitted as OSC 8 sequences so supporting
// terminals open them in the browser; otherwise the target is printed after
// the label.
type Terminal struct {
	Width      int
	Hyperlinks bool

	TextStyle    lipgloss.Style
	LinkStyle    lipgloss.Style
	HeadingStyle lipgloss.Style
	ChipStyle    lipgloss.Style
}

// NewTerminal returns a terminal renderer using the theme's styles.
func NewTerminal(theme *styles.Theme, width int, hyperlinks bool) *Terminal {
	return &Terminal{
		Width:        width,
		Hyperlinks:   hyperlinks,
		TextStyle:    theme.MessageText,
		LinkStyle:    theme.Link,
		HeadingStyle: theme.SourcesLabel,
		ChipStyle:    theme.SourceChip,
	}
}

// token is a unit of wrapping: its visible width and its rendered form.
type token struct {
	width    int
	rendered string
	space    bool
	newline  bool
}

// Render draws the segments.
func (t *Terminal) Render(segs []Segment) string {
	var tokens []token
	for _, seg := range segs {
		switch seg.Kind {
		case SegmentText:
			tokens = append(tokens, t.textTokens(seg.Text)...)
		case SegmentLineBreak:
			tokens = append(tokens, token{newline: true})
		case SegmentLink:
			tokens = append(tokens, t.linkToken(seg.Label, seg.Target, t.LinkStyle))
		}
	}
	return t.wrap(tokens)
}

// RenderText parses and draws text in one step.
func (t *Terminal) RenderText(text string) string {
	return t.Render(Parse(text))
}

// RenderSources draws the heading and one chip per source. It returns an
// empty string for an empty list so no heading is shown.
func (t *Terminal) RenderSources(list []sources.Source) string {
	if len(list) == 0 {
		return ""
	}
	var tokens []token
	for i, s := range list {
		if i > 0 {
			tokens = append(tokens, token{width: 2, rendered: "  ", space: true})
		}
		tokens = append(tokens, t.linkToken(s.Kind.Icon()+" "+chipLabel(s), s.URI, t.ChipStyle))
	}
	return t.HeadingStyle.Render(SourcesHeading) + "\n" + t.wrap(tokens)
}

func (t *Terminal) textTokens(s string) []token {
	var out []token
	for _, word := range splitWords(s) {
		if strings.TrimSpace(word) == "" {
			out = append(out, token{width: runewidth.StringWidth(word), rendered: word, space: true})
			continue
		}
		out = append(out, token{width: runewidth.StringWidth(word), rendered: t.TextStyle.Render(word)})
	}
	return out
}

func (t *Terminal) linkToken(label, target string, style lipgloss.Style) token {
	if t.Hyperlinks {
		return token{
			width:    runewidth.StringWidth(label),
			rendered: termenv.Hyperlink(target, style.Render(label)),
		}
	}
	text := label + " (" + target + ")"
	return token{width: runewidth.StringWidth(text), rendered: style.Render(text)}
}

// wrap lays tokens out greedily. Runs of spaces are only written when a word
// follows on the same line. A token wider than the line is placed alone and
// overflows.
func (t *Terminal) wrap(tokens []token) string {
	var b strings.Builder
	lineWidth := 0
	pending, pendingWidth := "", 0
	for _, tok := range tokens {
		switch {
		case tok.newline:
			b.WriteByte('\n')
			lineWidth = 0
			pending, pendingWidth = "", 0
			continue
		case tok.space:
			pending += tok.rendered
			pendingWidth += tok.width
			continue
		}
		if t.Width > 0 && lineWidth > 0 && lineWidth+pendingWidth+tok.width > t.Width {
			b.WriteByte('\n')
			lineWidth = 0
		} else {
			b.WriteString(pending)
			lineWidth += pendingWidth
		}
		pending, pendingWidth = "", 0
		b.WriteString(tok.rendered)
		lineWidth += tok.width
	}
	return b.String()
}

// splitWords splits s into alternating runs of spaces and non-spaces.
func splitWords(s string) []string {
	var out []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || (s[i] == ' ') != (s[start] == ' ') {
			out = append(out, s[start:i])
			start = i
		}
	}
	return out
}

func chipLabel(s sources.Source) string {
	if s.Title != "" {
		return s.Title
	}
	return s.URI
}
