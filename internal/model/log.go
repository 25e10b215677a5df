// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sync"

// Greeting is the synthetic bot message every log starts with.
const Greeting = "Hello! I'm Robo AI, your map advisor. Ask me about places, or any general question. I'll use Google Maps and Search to find the best information for you."

// Log is the ordered, append-only conversation log.
// It is safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	messages []*Message
}

// NewLog returns a log holding only the greeting.
func NewLog() *Log {
	return NewLogWithGreeting(Greeting)
}

// NewLogWithGreeting returns a log whose first entry is a bot message with
// the given text.
func NewLogWithGreeting(greeting string) *Log {
	return &Log{
		messages: []*Message{NewBotMessage(greeting, nil)},
	}
}

// Append adds a message to the end of the log.
func (l *Log) Append(msg *Message) {
	if msg == nil {
		return
	}
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
}

// Messages returns a copy of the log in display order.
func (l *Log) Messages() []*Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the most recent message.
func (l *Log) Last() *Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.messages[len(l.messages)-1]
}

// LastBot returns the most recent bot message, or nil if the log holds none.
func (l *Log) LastBot() *Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].Author == AuthorBot {
			return l.messages[i]
		}
	}
	return nil
}
