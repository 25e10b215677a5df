// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/robo-tui/internal/model"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// Chat is a multi-turn conversation. The full history is sent with every
// message; a turn is added to it only when the model answers.
type Chat struct {
	client *Client
	config ChatConfig

	mu      sync.Mutex
	history []Content
}

// Config returns the configuration the chat was started with.
func (ch *Chat) Config() ChatConfig {
	return ch.config
}

// History returns a copy of the accepted turns.
func (ch *Chat) History() []Content {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	out := make([]Content, len(ch.history))
	copy(out, ch.history)
	return out
}

// SendMessage sends text and waits for the reply. Calls are serialized.
func (ch *Chat) SendMessage(ctx context.Context, text string) (*model.Reply, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	user := Content{Role: roleUser, Parts: []Part{{Text: text}}}
	contents := make([]Content, 0, len(ch.history)+1)
	contents = append(contents, ch.history...)
	contents = append(contents, user)

	resp, err := ch.client.GenerateContent(ctx, ch.config.Model, buildRequest(ch.config, contents))
	if err != nil {
		return nil, err
	}

	reply, answer, err := extractReply(resp)
	if err != nil {
		return nil, err
	}

	ch.history = append(ch.history, user, answer)
	return reply, nil
}

// extractReply reads the first candidate's text and citations.
func extractReply(resp *GenerateResponse) (*model.Reply, Content, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, Content{}, fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, Content{}, fmt.Errorf("%w: no candidates returned", ErrBlocked)
	}

	cand := resp.Candidates[0]
	answer := cand.Content
	if strings.TrimSpace(answer.Text()) == "" {
		return nil, Content{}, fmt.Errorf("%w: empty response (finish reason %s)", ErrBlocked, cand.FinishReason)
	}
	if answer.Role == "" {
		answer.Role = roleModel
	}

	reply := &model.Reply{Text: answer.Text()}
	if cand.GroundingMetadata != nil {
		reply.Sources = cand.GroundingMetadata.GroundingChunks
	}
	return reply, answer, nil
}
