// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jeranaias/robo-tui/internal/gemini"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/model"
)

type fakeChat struct {
	mu    sync.Mutex
	sent  []string
	reply *model.Reply
	err   error
}

func (f *fakeChat) SendMessage(_ context.Context, text string) (*model.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.reply, f.err
}

type mutableLocation struct {
	mu sync.Mutex
	c  *geo.Coordinates
}

func (l *mutableLocation) set(c geo.Coordinates) {
	l.mu.Lock()
	l.c = &c
	l.mu.Unlock()
}

func (l *mutableLocation) Coordinates() (geo.Coordinates, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.c == nil {
		return geo.Coordinates{}, false
	}
	return *l.c, true
}

func countingStarter(chat Chat, starts *int, configs *[]gemini.ChatConfig) Starter {
	return func(cfg gemini.ChatConfig) (Chat, error) {
		*starts++
		*configs = append(*configs, cfg)
		return chat, nil
	}
}

func TestManager_LazyCreationOnce(t *testing.T) {
	chat := &fakeChat{reply: &model.Reply{Text: "ok"}}
	starts := 0
	var configs []gemini.ChatConfig
	mgr := NewManager(countingStarter(chat, &starts, &configs), "", nil)

	if mgr.State() != StateUninitialized {
		t.Fatalf("State() = %v, want uninitialized", mgr.State())
	}
	if starts != 0 {
		t.Fatal("chat created before first send")
	}

	for _, text := range []string{"a", "b", "c"} {
		if _, err := mgr.Send(context.Background(), text); err != nil {
			t.Fatalf("Send(%q) error = %v", text, err)
		}
	}

	if starts != 1 {
		t.Errorf("starter called %d times, want 1", starts)
	}
	if mgr.State() != StateActive {
		t.Errorf("State() = %v, want active", mgr.State())
	}
	if len(chat.sent) != 3 {
		t.Errorf("sent %d messages, want 3", len(chat.sent))
	}

	cfg := configs[0]
	if cfg.Model != gemini.DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, gemini.DefaultModel)
	}
	if len(cfg.Tools) != 2 || cfg.Tools[0] != gemini.ToolGoogleSearch || cfg.Tools[1] != gemini.ToolGoogleMaps {
		t.Errorf("Tools = %v, want search and maps", cfg.Tools)
	}
	if cfg.LatLng != nil {
		t.Errorf("LatLng = %v, want nil without location", cfg.LatLng)
	}
}

func TestManager_LocationFrozenAtCreation(t *testing.T) {
	chat := &fakeChat{reply: &model.Reply{Text: "ok"}}
	starts := 0
	var configs []gemini.ChatConfig
	loc := &mutableLocation{}
	loc.set(geo.Coordinates{Latitude: 1, Longitude: 2})
	mgr := NewManager(countingStarter(chat, &starts, &configs), "gemini-x", loc)

	if _, err := mgr.Send(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	loc.set(geo.Coordinates{Latitude: 3, Longitude: 4})
	if _, err := mgr.Send(context.Background(), "second"); err != nil {
		t.Fatal(err)
	}

	cfg, active := mgr.Config()
	if !active {
		t.Fatal("Config() reports inactive")
	}
	if cfg.LatLng == nil || cfg.LatLng.Latitude != 1 || cfg.LatLng.Longitude != 2 {
		t.Errorf("LatLng = %v, want {1 2}", cfg.LatLng)
	}
	if cfg.Model != "gemini-x" {
		t.Errorf("Model = %q, want gemini-x", cfg.Model)
	}
	if starts != 1 {
		t.Errorf("starter called %d times, want 1", starts)
	}
}

func TestManager_NoRetrofitWhenLocationArrivesLate(t *testing.T) {
	chat := &fakeChat{reply: &model.Reply{Text: "ok"}}
	starts := 0
	var configs []gemini.ChatConfig
	loc := &mutableLocation{}
	mgr := NewManager(countingStarter(chat, &starts, &configs), "", loc)

	_, _ = mgr.Send(context.Background(), "first")
	loc.set(geo.Coordinates{Latitude: 5, Longitude: 6})
	_, _ = mgr.Send(context.Background(), "second")

	cfg, _ := mgr.Config()
	if cfg.LatLng != nil {
		t.Errorf("LatLng = %v, want nil for the whole session", cfg.LatLng)
	}
}

func TestManager_ErrorPropagatesWithoutRetry(t *testing.T) {
	boom := errors.New("quota exceeded")
	chat := &fakeChat{err: boom}
	starts := 0
	var configs []gemini.ChatConfig
	mgr := NewManager(countingStarter(chat, &starts, &configs), "", nil)

	_, err := mgr.Send(context.Background(), "x")
	if !errors.Is(err, boom) {
		t.Fatalf("Send() error = %v, want %v", err, boom)
	}
	if len(chat.sent) != 1 {
		t.Errorf("sent %d times, want 1", len(chat.sent))
	}
	if mgr.State() != StateActive {
		t.Error("a send failure should not reset the session")
	}
}

func TestManager_StarterFailureStaysUninitialized(t *testing.T) {
	calls := 0
	mgr := NewManager(func(gemini.ChatConfig) (Chat, error) {
		calls++
		return nil, errors.New("no client")
	}, "", nil)

	if _, err := mgr.Send(context.Background(), "x"); err == nil {
		t.Fatal("Send() error = nil, want error")
	}
	if mgr.State() != StateUninitialized {
		t.Errorf("State() = %v, want uninitialized", mgr.State())
	}
	_, _ = mgr.Send(context.Background(), "y")
	if calls != 2 {
		t.Errorf("starter called %d times, want 2", calls)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, UnknownError},
		{"empty message", errors.New(""), UnknownError},
		{"whitespace message", errors.New("  "), UnknownError},
		{"message", errors.New("rate limited"), "rate limited"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Describe(tc.err); got != tc.want {
				t.Errorf("Describe() = %q, want %q", got, tc.want)
			}
		})
	}
}
