// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/robo-tui/internal/conversation"
	"github.com/jeranaias/robo-tui/internal/export"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/render"
	"github.com/jeranaias/robo-tui/internal/sources"
)

// errNothingToCopy is reported when no reply exists yet.
var errNothingToCopy = errors.New("no reply to copy yet")

// sendCmd runs the network call off the update loop.
func sendCmd(ctx context.Context, ctrl *conversation.Controller, turn conversation.Turn) tea.Cmd {
	return func() tea.Msg {
		reply, err := ctrl.Send(ctx, turn)
		return ReplyMsg{Turn: turn, Reply: reply, Err: err}
	}
}

// locateCmd makes the single location attempt.
func locateCmd(ctx context.Context, loc geo.Locator) tea.Cmd {
	return func() tea.Msg {
		return LocationMsg{Fix: geo.RequestWithAdvisory(ctx, loc, geo.TerminalAdvisory)}
	}
}

// exportCmd writes the log to disk in the background.
func exportCmd(log *model.Log, modelID, format, dir string) tea.Cmd {
	return func() tea.Msg {
		exporter, err := export.ForFormat(format)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path, err := export.ExportToFile(export.NewDocument(log, modelID), exporter, &export.Options{OutputDir: dir})
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// copyCmd puts the last bot reply, links and sources spelled out, on the
// clipboard.
func copyCmd(log *model.Log, write func(string) error) tea.Cmd {
	return func() tea.Msg {
		text := plainReply(log.LastBot())
		if text == "" {
			return CopyDoneMsg{Err: errNothingToCopy}
		}
		if err := write(text); err != nil {
			return CopyDoneMsg{Err: err}
		}
		return CopyDoneMsg{Chars: len([]rune(text))}
	}
}

func plainReply(msg *model.Message) string {
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return ""
	}
	text := render.Plain(render.Parse(msg.Text))
	if src := render.PlainSources(sources.Normalize(msg.Sources)); src != "" {
		text += "\n\n" + src
	}
	return text
}
