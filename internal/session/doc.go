// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the single remote chat of a conversation.
//
// The chat is created lazily on the first send. Its tools and location bias
// are captured at that moment and never change afterwards, even if the
// device location becomes known later.
//
// # Key Types
//
//   - Manager: the two-state (uninitialized, active) session holder
//   - Chat: the remote conversational handle
//   - Starter: creates a Chat from a frozen configuration
//
// # Usage
//
//	mgr := session.NewManager(session.FromClient(client), gemini.DefaultModel, slot)
//	reply, err := mgr.Send(ctx, "museums open late?")
//	if err != nil {
//	    fmt.Println(session.Describe(err))
//	}
package session
