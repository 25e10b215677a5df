// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/robo-tui/internal/conversation"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/model"
)

// ReplyMsg carries the outcome of a send back into Update.
type ReplyMsg struct {
	Turn  conversation.Turn
	Reply *model.Reply
	Err   error
}

// LocationMsg carries the one-shot location result.
type LocationMsg struct {
	Fix geo.Fix
}

// ExportDoneMsg reports an export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// CopyDoneMsg reports a clipboard copy.
type CopyDoneMsg struct {
	Chars int
	Err   error
}
