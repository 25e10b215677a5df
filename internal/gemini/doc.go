// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides a client for the Gemini generateContent API with
// Google Search and Google Maps grounding.
//
// # Key Types
//
//   - Client: HTTP client holding the API key and endpoint
//   - ChatConfig: model, tools and location bias, fixed per chat
//   - Chat: a multi-turn conversation whose history lives client-side
//   - APIError: a non-2xx response that maps to no sentinel error
//
// # Usage
//
//	client := gemini.NewClient(apiKey)
//	chat := client.StartChat(gemini.ChatConfig{
//	    Model: gemini.DefaultModel,
//	    Tools: gemini.DefaultTools(),
//	})
//	reply, err := chat.SendMessage(ctx, "best ramen near me?")
//
// # Security
//
// API keys are never logged. Only a short SHA-256 fingerprint appears in
// debug output.
package gemini
