// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/robo-tui/internal/export"
	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/render"
	"github.com/jeranaias/robo-tui/internal/sources"
	"github.com/jeranaias/robo-tui/internal/ui/styles"
)

func newAskCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer",
		Long: `Ask sends a single question and prints the answer with its sources.

Examples:
  robo ask "best ramen near Shinjuku station"
  robo ask --json "is the Louvre open on Tuesdays?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			logger := app.consoleLogger()
			ctrl, slot := app.newConversation(logger)

			app.locate(cmd.Context(), slot, cmd.ErrOrStderr())
			if !ctrl.Submit(cmd.Context(), question) {
				return errors.New("question is empty")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				doc := export.NewDocument(ctrl.Log(), app.cfg.Gemini.Model)
				if n := len(doc.Messages); n > 2 {
					doc.Messages = doc.Messages[n-2:]
				}
				data, err := export.JSON().Export(doc)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				printReply(out, ctrl.Log().LastBot(), app.cfg.UI.Hyperlinks && IsStdoutTTY())
			}

			if banner := ctrl.LastError(); banner != "" {
				return errors.New(banner)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the question and answer as JSON")
	return cmd
}

// printReply writes a bot message and its sources, wrapped to the terminal.
func printReply(w io.Writer, msg *model.Message, hyperlinks bool) {
	if msg == nil {
		return
	}
	r := render.NewTerminal(styles.NewTheme(), GetTerminalWidth(), hyperlinks)
	fmt.Fprintln(w, r.Render(render.Parse(msg.Text)))
	if src := r.RenderSources(sources.Normalize(msg.Sources)); src != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, src)
	}
}
