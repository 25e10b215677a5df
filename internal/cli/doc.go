// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the robo command line.
//
// Commands:
//
//	robo                     Full-screen chat (default)
//	robo ask <question>      One question, answer printed to stdout
//	robo chat                Line-based chat with history
//	robo serve               Browser front-end over a websocket
//	robo config show|path|init
//	robo version
//
// Every command loads ~/.robo/config.toml (or --config), then applies
// GEMINI_API_KEY, API_KEY and the ROBO_* environment overrides.
package cli
