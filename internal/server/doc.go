// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the browser front-end.
//
// Endpoints:
//   - GET /        - the single-page chat client (embedded static files)
//   - GET /ws      - websocket carrying one conversation per connection
//   - GET /health  - health check
//
// Each websocket connection owns a conversation.Controller, a
// session.Manager and a geo.Slot. The page asks the browser for its
// position once and forwards the result; the first result wins.
//
// Frames are JSON objects with a "type" field:
//
//	client -> server   submit, location, location_error
//	server -> client   snapshot, message, state
//
// A ConfigWatcher reloads ~/.robo/config.toml on change. Connections opened
// after a reload use the new settings; open connections keep theirs.
package server
