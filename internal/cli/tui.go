// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/robo-tui/internal/config"
	"github.com/jeranaias/robo-tui/internal/logging"
	"github.com/jeranaias/robo-tui/internal/ui/chat"
	"github.com/jeranaias/robo-tui/internal/ui/styles"
)

// runTUI opens the full-screen chat. Logs go to a file since the program
// owns the terminal.
func (a *App) runTUI(ctx context.Context) error {
	if err := RequiresTTY("run the chat UI"); err != nil {
		return fmt.Errorf("%w (try `robo ask` or `robo chat`)", err)
	}

	logPath := a.cfg.Log.File
	if logPath == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		logPath = filepath.Join(dir, "robo.log")
	}
	logger, closer, err := logging.SetupFile(logPath, a.cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctrl, slot := a.newConversation(logger)
	m := chat.New(chat.Options{
		Controller:   ctrl,
		Slot:         slot,
		Locator:      a.cfg.Locator(),
		Theme:        styles.NewTheme(),
		ModelID:      a.cfg.Gemini.Model,
		ExportDir:    a.cfg.Export.Dir,
		ExportFormat: a.cfg.Export.Format,
		Hyperlinks:   a.cfg.UI.Hyperlinks,
		Logger:       logger,
	})

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseCellMotion()}
	if a.cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	logger.Info("starting chat UI", "model", a.cfg.Gemini.Model, "location", a.cfg.Location.Mode)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("chat UI: %w", err)
	}
	return nil
}
