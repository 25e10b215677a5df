// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for robo.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - GeminiConfig: API key, model, endpoint and timeout
//   - LocationConfig: How the device location is obtained
//   - ServerConfig: Browser front-end listener settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ROBO_*, GEMINI_API_KEY, API_KEY)
//   - ~/.robo/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := gemini.NewClient(cfg.Gemini.APIKey)
package config
