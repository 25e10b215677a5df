// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns reply text into typed segments and draws them for the
// terminal, the browser, or plain output.
//
// The accepted syntax is deliberately small: inline links written as
// [label](target) and literal newlines. Everything else is shown as typed.
package render

import (
	"strings"

	"github.com/jeranaias/robo-tui/internal/model"
)

// SegmentKind discriminates the segment variants.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentLineBreak
	SegmentLink
)

// String returns a short name for the kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentLineBreak:
		return "break"
	case SegmentLink:
		return "link"
	default:
		return "unknown"
	}
}

// Segment is one renderable piece of a message.
// Text is set for SegmentText, Label and Target for SegmentLink.
type Segment struct {
	Kind   SegmentKind
	Text   string
	Label  string
	Target string
}

// Text builds a text segment.
func Text(s string) Segment { return Segment{Kind: SegmentText, Text: s} }

// LineBreak builds a line break segment.
func LineBreak() Segment { return Segment{Kind: SegmentLineBreak} }

// Link builds a link segment.
func Link(label, target string) Segment {
	return Segment{Kind: SegmentLink, Label: label, Target: target}
}

// Parse scans text left to right for non-overlapping [label](target) links.
// Label and target must be non-empty; label cannot contain ']' and target
// cannot contain ')'. Text between links becomes Text segments with a
// LineBreak for each newline. An unmatched bracket stays literal.
func Parse(text string) []Segment {
	var segs []Segment
	literalStart := 0
	i := 0
	for i < len(text) {
		if text[i] != '[' {
			i++
			continue
		}
		label, target, end, ok := matchLink(text, i)
		if !ok {
			i++
			continue
		}
		segs = appendLiteral(segs, text[literalStart:i])
		segs = append(segs, Link(label, target))
		i = end
		literalStart = end
	}
	return appendLiteral(segs, text[literalStart:])
}

// Literal splits text into Text and LineBreak segments without looking for
// links.
func Literal(text string) []Segment {
	return appendLiteral(nil, text)
}

// ForAuthor parses bot replies for links and keeps user input literal.
func ForAuthor(author model.Author, text string) []Segment {
	if author == model.AuthorUser {
		return Literal(text)
	}
	return Parse(text)
}

// matchLink tries to match a link starting at the '[' at position start.
// It returns the label, the target and the index just past the ')'.
func matchLink(text string, start int) (string, string, int, bool) {
	closeBracket := strings.IndexByte(text[start+1:], ']')
	if closeBracket <= 0 {
		return "", "", 0, false
	}
	labelEnd := start + 1 + closeBracket
	if labelEnd+1 >= len(text) || text[labelEnd+1] != '(' {
		return "", "", 0, false
	}
	targetStart := labelEnd + 2
	closeParen := strings.IndexByte(text[targetStart:], ')')
	if closeParen <= 0 {
		return "", "", 0, false
	}
	targetEnd := targetStart + closeParen
	return text[start+1 : labelEnd], text[targetStart:targetEnd], targetEnd + 1, true
}

// appendLiteral splits s on newlines. Breaks go between pieces, never after
// the last one, and empty pieces are skipped.
func appendLiteral(segs []Segment, s string) []Segment {
	if s == "" {
		return segs
	}
	pieces := strings.Split(s, "\n")
	for i, p := range pieces {
		if p != "" {
			segs = append(segs, Text(p))
		}
		if i < len(pieces)-1 {
			segs = append(segs, LineBreak())
		}
	}
	return segs
}
