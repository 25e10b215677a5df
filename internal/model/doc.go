// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
//
// # Key Types
//
//   - Message: a single immutable entry authored by the user or the bot
//   - Log: the append-only, ordered conversation log
//   - GroundingChunk: a raw citation returned alongside a model reply
//   - Reply: the text and citations of one model turn
//
// # Usage
//
//	log := model.NewLog()
//	log.Append(model.NewUserMessage("coffee near me?"))
//	log.Append(model.NewBotMessage(reply.Text, reply.Sources))
package model
