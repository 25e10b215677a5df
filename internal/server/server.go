// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jeranaias/robo-tui/internal/config"
	"github.com/jeranaias/robo-tui/internal/conversation"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/logging"
	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/session"
)

//go:embed static
var staticFiles embed.FS

// SenderFactory builds the sender for one connection. loc reports the
// browser's location once it arrives.
type SenderFactory func(cfg *config.Config, loc session.LocationSource, logger *slog.Logger) conversation.Sender

// GeminiSender is the production SenderFactory: a lazily started Gemini
// chat per connection.
func GeminiSender(cfg *config.Config, loc session.LocationSource, logger *slog.Logger) conversation.Sender {
	client := cfg.NewClient().WithLogger(logger)
	return session.NewManager(session.FromClient(client), cfg.Gemini.Model, loc).WithLogger(logger)
}

// Options configures a Server.
type Options struct {
	// Config is the configuration at startup. Required.
	Config *config.Config

	// ConfigPath enables hot reload of this file when set.
	ConfigPath string

	// NewSender defaults to GeminiSender.
	NewSender SenderFactory

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Version is reported by /health.
	Version string
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the browser front-end.
type Server struct {
	store     *ConfigStore
	path      string
	newSender SenderFactory
	logger    *slog.Logger
	version   string
	router    *http.ServeMux
	upgrader  websocket.Upgrader
	conns     atomic.Int64
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.NewSender == nil {
		opts.NewSender = GeminiSender
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		store:     NewConfigStore(opts.Config),
		path:      opts.ConfigPath,
		newSender: opts.NewSender,
		logger:    opts.Logger,
		version:   opts.Version,
		router:    http.NewServeMux(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			policy := OriginPolicy{AllowedOrigins: s.store.Get().Server.AllowedOrigins}
			return policy.Check(r)
		},
	}
	s.setupRoutes()
	return s
}

// Config returns the configuration new connections will use.
func (s *Server) Config() *config.Config {
	return s.store.Get()
}

// Connections returns the number of open websocket connections.
func (s *Server) Connections() int64 {
	return s.conns.Load()
}

func (s *Server) setupRoutes() {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("GET /", http.FileServer(http.FS(static)))
	s.router.HandleFunc("GET /ws", s.handleWS)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the routes wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
	)(s.router)
}

// ============================================================================
// WEBSOCKET
// ============================================================================

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	cfg := s.store.Get()
	id := uuid.NewString()[:8]
	ctx, cancel := context.WithCancel(logging.ContextWithConnID(context.Background(), id))
	logger := s.logger.With("remote", getRemoteIP(r.RemoteAddr))

	slot := &geo.Slot{}
	requestLocation := true
	switch cfg.Location.Mode {
	case config.LocationStatic:
		slot.Resolve(geo.Success(geo.Coordinates{Latitude: cfg.Location.Latitude, Longitude: cfg.Location.Longitude}))
		requestLocation = false
	case config.LocationOff:
		slot.Resolve(geo.Failure("", geo.ErrDisabled))
		requestLocation = false
	}

	ctrl := conversation.NewWithLog(s.newSender(cfg, slot, logger), model.NewLogWithGreeting(cfg.UI.Greeting)).WithLogger(logger)
	c := &client{
		conn:   conn,
		ctrl:   ctrl,
		slot:   slot,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}

	c.push(SnapshotFrame{
		Type:            FrameSnapshot,
		Messages:        viewsOf(ctrl.Messages()),
		InFlight:        ctrl.InFlight(),
		Error:           ctrl.LastError(),
		RequestLocation: requestLocation,
	})
	ctrl.OnChange(c.onChange)

	n := s.conns.Add(1)
	logger.InfoContext(ctx, "websocket connected", "connections", n, "model", cfg.Gemini.Model)

	go c.writePump()
	go func() {
		c.readPump()
		n := s.conns.Add(-1)
		logger.InfoContext(ctx, "websocket closed", "connections", n)
	}()
}

// ============================================================================
// HEALTH
// ============================================================================

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Model       string `json:"model"`
	Gemini      string `json:"gemini"`
	Location    string `json:"location"`
	Connections int64  `json:"connections"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Get()
	health := HealthResponse{
		Status:      "ok",
		Version:     s.version,
		Model:       cfg.Gemini.Model,
		Gemini:      "not_configured",
		Location:    cfg.Location.Mode,
		Connections: s.conns.Load(),
	}
	if cfg.Gemini.APIKey != "" {
		health.Gemini = "configured"
	} else {
		health.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// httpService adapts the listener to Service.
type httpService struct {
	srv    *http.Server
	logger *slog.Logger
}

func (h *httpService) Name() string { return "http server" }

func (h *httpService) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("server listening", "addr", h.srv.Addr)
		errCh <- h.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	h.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.srv.Shutdown(shutdownCtx)
}

// Run serves until ctx ends. When a config path was given, the config
// watcher runs alongside the listener.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.store.Get()
	group := Group{&httpService{
		srv: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: s.logger,
	}}
	if s.path != "" {
		group = append(group, NewConfigWatcher(s.path, s.store).WithLogger(s.logger))
	}
	return group.Run(ctx)
}
