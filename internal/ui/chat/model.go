// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/robo-tui/internal/conversation"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/ui/styles"
)

// Placeholder is shown in the empty input.
const Placeholder = "Ask about a place..."

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Model.
type Options struct {
	Controller *conversation.Controller // required
	Slot       *geo.Slot                // receives the location result
	Locator    geo.Locator              // nil skips the location request
	Theme      *styles.Theme

	ModelID      string
	ExportDir    string
	ExportFormat string
	Hyperlinks   bool

	// Clipboard defaults to atotto/clipboard.
	Clipboard func(string) error
	Logger    *slog.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx    context.Context
	ctrl   *conversation.Controller
	slot   *geo.Slot
	loc    geo.Locator
	theme  *styles.Theme
	logger *slog.Logger

	modelID      string
	exportDir    string
	exportFormat string
	hyperlinks   bool
	clipboard    func(string) error

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Help overlay
	showHelp bool
	helpText string

	statusMsg string
}

// New creates a chat model.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Slot == nil {
		opts.Slot = &geo.Slot{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ExportFormat == "" {
		opts.ExportFormat = "markdown"
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = opts.Theme.InputPrompt
	ti.Placeholder = Placeholder
	ti.PlaceholderStyle = opts.Theme.InputPlaceholder
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = opts.Theme.Spinner

	return Model{
		ctx:          context.Background(),
		ctrl:         opts.Controller,
		slot:         opts.Slot,
		loc:          opts.Locator,
		theme:        opts.Theme,
		logger:       opts.Logger,
		modelID:      opts.ModelID,
		exportDir:    opts.ExportDir,
		exportFormat: opts.ExportFormat,
		hyperlinks:   opts.Hyperlinks,
		clipboard:    opts.Clipboard,
		viewport:     viewport.New(80, 20),
		input:        ti,
		spinner:      sp,
		keyMap:       DefaultKeyMap(),
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the one-shot location request.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.loc != nil {
		cmds = append(cmds, locateCmd(m.ctx, m.loc))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ReplyMsg:
		return m.handleReply(msg)

	case LocationMsg:
		return m.handleLocation(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.statusMsg = "Export failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "Exported to " + msg.Path
		}
		return m, nil

	case CopyDoneMsg:
		switch {
		case errors.Is(msg.Err, errNothingToCopy):
			m.statusMsg = "No reply to copy"
		case msg.Err != nil:
			m.statusMsg = "Failed to copy: " + msg.Err.Error()
		default:
			m.statusMsg = fmt.Sprintf("Copied reply (%d chars)", msg.Chars)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.InFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat view.
func (m Model) View() string {
	if !m.ready {
		return "Starting Robo AI..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)
	m.ready = true

	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-m.chromeHeight(), 1)
	m.input.Width = max(m.width-8, 10)
	m.helpText = ""

	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keyMap.Close) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Help) && (msg.String() == "f1" || m.input.Value() == ""):
		m.showHelp = true
		if m.helpText == "" {
			m.helpText = m.renderHelpText()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Copy):
		return m, copyCmd(m.ctrl.Log(), m.clipboard)

	case key.Matches(msg, m.keyMap.Export):
		m.statusMsg = "Exporting..."
		return m, exportCmd(m.ctrl.Log(), m.modelID, m.exportFormat, m.exportDir)

	case key.Matches(msg, m.keyMap.PageUp, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keyMap.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	// The input is disabled while a request is in flight.
	if m.ctrl.InFlight() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	turn, ok := m.ctrl.Begin(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.input.Blur()
	m.statusMsg = ""
	m.relayout()
	m.refresh()
	return m, tea.Batch(sendCmd(m.ctx, m.ctrl, turn), m.spinner.Tick)
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.ctrl.Complete(msg.Turn, msg.Reply, msg.Err)
	m.relayout()
	m.refresh()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) handleLocation(msg LocationMsg) (tea.Model, tea.Cmd) {
	if !m.slot.Resolve(msg.Fix) {
		return m, nil
	}
	switch {
	case msg.Fix.OK():
		m.logger.Info("location resolved", "coords", msg.Fix.Coords.String())
		m.ctrl.ClearAdvisory()
	case errors.Is(msg.Fix.Err, geo.ErrDisabled):
		// Turned off in config: nothing to warn about.
		m.logger.Debug("location disabled")
	default:
		m.logger.Warn("location unavailable", "error", msg.Fix.Err)
		m.ctrl.SetAdvisory(msg.Fix.Advisory)
	}
	m.relayout()
	m.refresh()
	return m, nil
}

// =============================================================================
// VIEWPORT
// =============================================================================

// relayout recomputes the viewport height after the banner changes.
func (m *Model) relayout() {
	if !m.ready {
		return
	}
	m.viewport.Height = max(m.height-m.chromeHeight(), 1)
}

// refresh redraws the log and scrolls to the latest message.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

// renderHelpText renders the help markdown for the current width.
func (m Model) renderHelpText() string {
	md := m.keyMap.helpMarkdown(m.modelID)
	style := "dark"
	if !m.theme.IsDark {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(m.width-8, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
