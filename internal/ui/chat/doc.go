// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the terminal chat view.
//
// The Model wraps a conversation.Controller in a Bubble Tea program:
//
//   - Enter calls Controller.Begin in Update, sends inside a tea.Cmd and
//     calls Controller.Complete when the ReplyMsg arrives
//   - the input is disabled and a spinner runs while a request is in flight
//   - Init requests the location once; the result goes to the geo.Slot and
//     failures show an advisory in the banner
//   - every log change scrolls the viewport to the latest message
//
// Extra keys: ctrl+y copies the last reply, ctrl+e exports the conversation,
// f1 (or ? on an empty input) opens the help overlay.
package chat
