// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/robo-tui/internal/gemini"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/model"
)

// UnknownError is shown when a failure carries no description.
const UnknownError = "An unknown error occurred."

// State is the lifecycle state of a Manager.
type State int

const (
	StateUninitialized State = iota
	StateActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Chat sends one message and waits for one reply.
type Chat interface {
	SendMessage(ctx context.Context, text string) (*model.Reply, error)
}

// Starter creates a chat with the given configuration.
type Starter func(cfg gemini.ChatConfig) (Chat, error)

// FromClient returns a Starter backed by a Gemini client.
func FromClient(c *gemini.Client) Starter {
	return func(cfg gemini.ChatConfig) (Chat, error) {
		return c.StartChat(cfg), nil
	}
}

// LocationSource reports the coordinates known right now, if any.
type LocationSource interface {
	Coordinates() (geo.Coordinates, bool)
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager holds the chat for one conversation. It is safe for concurrent
// use, but callers are expected to send one message at a time.
type Manager struct {
	mu       sync.Mutex
	start    Starter
	modelID  string
	location LocationSource
	logger   *slog.Logger

	state  State
	chat   Chat
	config gemini.ChatConfig
}

// NewManager creates an uninitialized manager. location may be nil.
func NewManager(start Starter, modelID string, location LocationSource) *Manager {
	if modelID == "" {
		modelID = gemini.DefaultModel
	}
	return &Manager{
		start:    start,
		modelID:  modelID,
		location: location,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger.
func (m *Manager) WithLogger(l *slog.Logger) *Manager {
	m.logger = l
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Config returns the frozen chat configuration and whether the chat exists.
func (m *Manager) Config() (gemini.ChatConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config, m.state == StateActive
}

// Send delivers text through the chat, creating it first if needed.
// Errors are returned as is; nothing is retried.
func (m *Manager) Send(ctx context.Context, text string) (*model.Reply, error) {
	chat, err := m.ensureChat()
	if err != nil {
		return nil, err
	}
	return chat.SendMessage(ctx, text)
}

func (m *Manager) ensureChat() (Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateActive {
		return m.chat, nil
	}

	cfg := gemini.ChatConfig{
		Model: m.modelID,
		Tools: gemini.DefaultTools(),
	}
	if m.location != nil {
		if c, ok := m.location.Coordinates(); ok {
			cfg.LatLng = &c
		}
	}

	chat, err := m.start(cfg)
	if err != nil {
		return nil, err
	}

	m.chat = chat
	m.config = cfg
	m.state = StateActive
	m.logger.Info("chat session started", "model", cfg.Model, "location_bias", cfg.LatLng != nil)
	return chat, nil
}

// Describe returns the message shown to the user for err.
func Describe(err error) string {
	if err == nil {
		return UnknownError
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return UnknownError
}
