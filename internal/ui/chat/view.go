// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/render"
	"github.com/jeranaias/robo-tui/internal/sources"
)

const (
	// Title and Subtitle make up the header.
	Title    = "Robo AI - Map Advisor"
	Subtitle = "Powered by Gemini, Google Maps & Search"

	thinkingText = "Robo AI is thinking..."
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) renderChat() string {
	parts := []string{m.renderHeader(), m.viewport.View()}
	if banner := m.renderBanner(); banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, m.renderInput(), m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// chromeHeight is the height of everything except the viewport.
func (m Model) chromeHeight() int {
	h := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())
	if banner := m.renderBanner(); banner != "" {
		h += lipgloss.Height(banner)
	}
	return h
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render(Title)
	subtitle := m.theme.HeaderSubtitle.Render(Subtitle)
	return m.theme.Header.Width(m.width).Render(title + "\n" + subtitle)
}

func (m Model) renderBanner() string {
	text := m.ctrl.LastError()
	if text == "" {
		return ""
	}
	return m.theme.ErrorBanner.Width(m.width).Render(text)
}

func (m Model) renderInput() string {
	var line string
	if m.ctrl.InFlight() {
		line = m.theme.InputPrompt.Render("> ") + m.theme.InputDisabled.Render(thinkingText)
	} else {
		line = m.input.View()
	}
	return m.theme.InputContainer.Width(max(m.width-2, 10)).Render(line)
}

func (m Model) renderStatusBar() string {
	var items []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		items = append(items, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	left := strings.Join(items, "  ")
	if m.statusMsg != "" {
		left = m.statusMsg + "  |  " + left
	}
	return m.theme.StatusBar.Width(m.width).MaxHeight(1).Render(left)
}

// =============================================================================
// MESSAGES
// =============================================================================

// bubbleWidth is the widest a message bubble may be.
func (m Model) bubbleWidth() int {
	return max(m.width*3/4, 20)
}

func (m Model) renderLog() string {
	var blocks []string
	for _, msg := range m.ctrl.Messages() {
		blocks = append(blocks, m.renderMessage(msg))
	}
	if m.ctrl.InFlight() {
		blocks = append(blocks, m.spinner.View()+" "+m.theme.ThinkingText.Render(thinkingText))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg *model.Message) string {
	style := m.theme.BotBubble
	align := lipgloss.Left
	if msg.IsUser() {
		style = m.theme.UserBubble
		align = lipgloss.Right
	}

	// Border and padding take 6 columns.
	inner := m.bubbleWidth() - 6
	r := render.NewTerminal(m.theme, inner, m.hyperlinks)

	body := r.Render(render.ForAuthor(msg.Author, msg.Text))
	if src := r.RenderSources(sources.Normalize(msg.Sources)); src != "" {
		body += "\n\n" + src
	}

	label := m.theme.AuthorLabel.Render(msg.Author.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	block := lipgloss.JoinVertical(align, label, style.Render(body))
	return lipgloss.PlaceHorizontal(m.width, align, block)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelp() string {
	box := m.theme.Overlay.Width(max(m.width-4, 20)).Render(m.helpText)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
