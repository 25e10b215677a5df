// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jeranaias/robo-tui/internal/config"
	"github.com/jeranaias/robo-tui/internal/conversation"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/logging"
	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/server"
	"github.com/jeranaias/robo-tui/internal/ui/styles"
)

// locateTimeout bounds the one-shot location attempt of ask and chat.
const locateTimeout = 5 * time.Second

// App carries the state shared by all commands.
type App struct {
	Version string

	// NewSender defaults to server.GeminiSender.
	NewSender server.SenderFactory

	cfg        *config.Config
	configPath string
	modelFlag  string
	logLevel   string
}

// Execute runs the root command and exits with status 1 on error.
func Execute(version string) {
	app := &App{Version: version}
	if err := NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	if app.NewSender == nil {
		app.NewSender = server.GeminiSender
	}

	root := &cobra.Command{
		Use:   "robo",
		Short: "Robo AI - Map Advisor",
		Long: `Robo AI answers questions about places, with answers grounded in
Google Maps and Google Search and cited underneath each reply.

Run without a subcommand to open the full-screen chat.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lipgloss.SetColorProfile(colorProfile())
			return app.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI(cmd.Context())
		},
	}
	root.SetVersionTemplate("robo {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "config file (default ~/.robo/config.toml)")
	flags.StringVarP(&app.modelFlag, "model", "m", "", "Gemini model (overrides config)")
	flags.StringVar(&app.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newAskCmd(app),
		newChatCmd(app),
		newServeCmd(app),
		newConfigCmd(app),
		newVersionCmd(app),
	)
	return root
}

// loadConfig reads the configuration and applies flag overrides.
func (a *App) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.modelFlag != "" {
		cfg.Gemini.Model = a.modelFlag
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	config.SetGlobal(cfg)
	return nil
}

// resolvedConfigPath returns the file the configuration was read from.
func (a *App) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ConfigPathTOML()
}

// consoleLogger logs to stderr. Line-oriented commands stay quiet below
// warn unless --log-level says otherwise.
func (a *App) consoleLogger() *slog.Logger {
	level := "warn"
	if a.logLevel != "" {
		level = a.logLevel
	}
	return logging.SetupStderr(level)
}

// newConversation wires a controller to a sender that reads the slot.
func (a *App) newConversation(logger *slog.Logger) (*conversation.Controller, *geo.Slot) {
	slot := &geo.Slot{}
	sender := a.NewSender(a.cfg, slot, logger)
	log := model.NewLogWithGreeting(a.cfg.UI.Greeting)
	return conversation.NewWithLog(sender, log).WithLogger(logger), slot
}

// locate makes the single location attempt for a line-oriented command and
// prints the advisory to w when it fails. A disabled locator is silent.
func (a *App) locate(ctx context.Context, slot *geo.Slot, w io.Writer) {
	ctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	fix := geo.RequestWithAdvisory(ctx, a.cfg.Locator(), geo.TerminalAdvisory)
	slot.Resolve(fix)
	if fix.OK() {
		slog.Debug("location resolved", "coords", fix.Coords.String())
		return
	}
	if errors.Is(fix.Err, geo.ErrDisabled) {
		return
	}
	slog.Warn("location unavailable", "error", fix.Err)
	fmt.Fprintln(w, styles.RenderWarning(fix.Advisory))
}
