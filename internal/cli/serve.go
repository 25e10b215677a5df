// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/robo-tui/internal/logging"
	"github.com/jeranaias/robo-tui/internal/server"
	"github.com/jeranaias/robo-tui/internal/ui/styles"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser chat",
		Long: `Serve starts the browser front-end. Each browser tab gets its own
conversation and asks the browser for its location once.

Edits to the config file apply to connections opened afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				app.cfg.Server.Addr = addr
			}

			logger := logging.SetupStderr(app.cfg.Log.Level)
			if app.cfg.Log.File != "" {
				fileLogger, closer, err := logging.SetupFile(app.cfg.Log.File, app.cfg.Log.Level)
				if err != nil {
					return err
				}
				defer closer.Close()
				logger = fileLogger
			}

			path, err := app.resolvedConfigPath()
			if err != nil {
				logger.Warn("config reload disabled", "error", err)
				path = ""
			}

			srv := server.New(server.Options{
				Config:     app.cfg,
				ConfigPath: path,
				NewSender:  app.NewSender,
				Logger:     logger,
				Version:    app.Version,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.PrintErrln(styles.RenderSuccess("Robo AI listening on http://" + app.cfg.Server.Addr))
			if app.cfg.Gemini.APIKey == "" {
				cmd.PrintErrln(styles.RenderWarning("No Gemini API key set; replies will fail until GEMINI_API_KEY is provided."))
			}
			return serve(ctx, srv, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, srv *server.Server, logger *slog.Logger) error {
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	return nil
}
