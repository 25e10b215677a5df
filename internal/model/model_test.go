// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"testing"
)

// =============================================================================
// LOG TESTS
// =============================================================================

func TestNewLog_StartsWithGreeting(t *testing.T) {
	log := NewLog()

	if log.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", log.Len())
	}
	first := log.Messages()[0]
	if first.Author != AuthorBot {
		t.Errorf("first.Author = %q, want %q", first.Author, AuthorBot)
	}
	if first.Text != Greeting {
		t.Errorf("first.Text = %q, want greeting", first.Text)
	}
}

func TestLog_AppendPreservesOrder(t *testing.T) {
	log := NewLog()
	u := NewUserMessage("where is the park?")
	b := NewBotMessage("over there", nil)
	log.Append(u)
	log.Append(b)
	log.Append(nil)

	msgs := log.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[1] != u || msgs[2] != b {
		t.Error("messages not in insertion order")
	}
	if log.Last() != b {
		t.Error("Last() did not return the newest message")
	}
}

func TestLog_MessagesIsCopy(t *testing.T) {
	log := NewLog()
	msgs := log.Messages()
	msgs[0] = NewUserMessage("tamper")

	if log.Messages()[0].Author != AuthorBot {
		t.Error("mutating the returned slice changed the log")
	}
}

func TestLog_LastBot(t *testing.T) {
	log := NewLogWithGreeting("hi")
	log.Append(NewUserMessage("q"))

	got := log.LastBot()
	if got == nil || got.Text != "hi" {
		t.Errorf("LastBot() = %v, want greeting", got)
	}

	reply := NewBotMessage("answer", []GroundingChunk{{Web: &WebChunk{URI: "u"}}})
	log.Append(reply)
	if log.LastBot() != reply {
		t.Error("LastBot() did not return the newest bot message")
	}
	if !reply.HasSources() {
		t.Error("HasSources() = false, want true")
	}
}

func TestLog_ConcurrentAppend(t *testing.T) {
	log := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(NewUserMessage("x"))
			_ = log.Messages()
		}()
	}
	wg.Wait()

	if log.Len() != 51 {
		t.Errorf("Len() = %d, want 51", log.Len())
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestAuthor_DisplayName(t *testing.T) {
	tests := []struct {
		author Author
		want   string
	}{
		{AuthorUser, "You"},
		{AuthorBot, "Robo AI"},
		{Author("OTHER"), "OTHER"},
	}
	for _, tc := range tests {
		t.Run(tc.author.String(), func(t *testing.T) {
			if got := tc.author.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewMessage_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		m := NewUserMessage("x")
		if m.ID == "" {
			t.Fatal("empty ID")
		}
		if seen[m.ID] {
			t.Fatalf("duplicate ID %s", m.ID)
		}
		seen[m.ID] = true
		if !m.IsUser() {
			t.Error("IsUser() = false for user message")
		}
	}
}
