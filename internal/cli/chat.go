// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-based chat for terminals where the full-screen UI is not
// wanted.
//
// Interactive commands:
//
//	/help, /h            Show available commands
//	/export [format]     Save the conversation (markdown, html, json, yaml)
//	/location            Show the location used for map answers
//	/quit, /exit, /q     Exit chat
//	Ctrl+C               Cancel the current request, or exit at the prompt
//	Ctrl+D               Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/robo-tui/internal/config"
	"github.com/jeranaias/robo-tui/internal/conversation"
	"github.com/jeranaias/robo-tui/internal/export"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/ui/chat"
	"github.com/jeranaias/robo-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)
)

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-based chat with input history",
		Long: `Chat reads questions line by line and prints each answer with its
sources. Input history is kept in ~/.robo/chat_history.

Type /help inside the chat for commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.consoleLogger()
			ctrl, slot := app.newConversation(logger)

			in := newHistoryLiner()
			defer in.Close()

			r := &repl{
				app:    app,
				ctrl:   ctrl,
				slot:   slot,
				in:     in,
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
			}
			return r.run(cmd.Context())
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of input per prompt.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// historyLiner is a lineReader with arrow-key history saved between runs.
type historyLiner struct {
	line        *liner.State
	historyFile string
}

func newHistoryLiner() *historyLiner {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	h := &historyLiner{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(h.historyFile); err == nil {
		h.line.ReadHistory(f)
		f.Close()
	}
	return h
}

// Prompt reads a line. Non-empty input is added to the history.
func (h *historyLiner) Prompt(prompt string) (string, error) {
	input, err := h.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		h.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (h *historyLiner) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(h.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			h.line.WriteHistory(f)
			f.Close()
		}
	}
	h.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	app    *App
	ctrl   *conversation.Controller
	slot   *geo.Slot
	in     lineReader
	out    io.Writer
	errOut io.Writer
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, welcomeStyle.Render(chat.Title))
	fmt.Fprintln(r.out, infoStyle.Render(chat.Subtitle+" · "+r.app.cfg.Gemini.Model))
	fmt.Fprintln(r.out)
	printReply(r.out, r.ctrl.Log().Last(), r.hyperlinks())
	fmt.Fprintln(r.out)

	r.app.locate(ctx, r.slot, r.errOut)

	for {
		input, err := r.in.Prompt(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D and closed input all end the chat.
			fmt.Fprintln(r.out)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := r.handleCommand(input)
			if err != nil {
				fmt.Fprintln(r.errOut, styles.RenderError(err.Error()))
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		r.ask(ctx, input)
	}
}

// ask runs one cycle. Ctrl+C while waiting cancels the request.
func (r *repl) ask(ctx context.Context, input string) {
	sendCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if !r.ctrl.Submit(sendCtx, input) {
		return
	}
	fmt.Fprintln(r.out)
	printReply(r.out, r.ctrl.Log().LastBot(), r.hyperlinks())
	if banner := r.ctrl.LastError(); banner != "" {
		fmt.Fprintln(r.errOut, styles.RenderError(banner))
	}
	fmt.Fprintln(r.out)
}

// handleCommand runs a slash command and reports whether to keep going.
func (r *repl) handleCommand(input string) (bool, error) {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/h":
		r.printHelp()
		return true, nil

	case "/export":
		format := r.app.cfg.Export.Format
		if len(fields) > 1 {
			format = fields[1]
		}
		exporter, err := export.ForFormat(format)
		if err != nil {
			return true, err
		}
		doc := export.NewDocument(r.ctrl.Log(), r.app.cfg.Gemini.Model)
		path, err := export.ExportToFile(doc, exporter, &export.Options{OutputDir: r.app.cfg.Export.Dir})
		if err != nil {
			return true, err
		}
		fmt.Fprintln(r.out, styles.RenderSuccess("Exported to "+path))
		return true, nil

	case "/location":
		if c, ok := r.slot.Coordinates(); ok {
			fmt.Fprintln(r.out, infoStyle.Render("Location: "+c.String()))
		} else {
			fmt.Fprintln(r.out, infoStyle.Render("Location: not available"))
		}
		return true, nil

	default:
		return true, errors.New("unknown command " + fields[0] + " (type /help)")
	}
}

func (r *repl) printHelp() {
	rows := [][2]string{
		{"/help, /h", "Show this help"},
		{"/export [format]", "Save the conversation (markdown, html, json, yaml)"},
		{"/location", "Show the location used for map answers"},
		{"/quit, /exit, /q", "Exit chat"},
		{"Ctrl+C", "Cancel the current request"},
		{"Ctrl+D", "Exit chat"},
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %s  %s\n", commandStyle.Render(fmt.Sprintf("%-18s", row[0])), infoStyle.Render(row[1]))
	}
}

func (r *repl) hyperlinks() bool {
	return r.app.cfg.UI.Hyperlinks && IsStdoutTTY()
}
