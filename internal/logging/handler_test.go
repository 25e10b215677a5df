// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandler_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Options{Level: slog.LevelDebug, Source: NoSource, NoColor: true}))

	logger.With("model", "gemini").WithGroup("req").Info("sent", "status", 200, "error", errors.New("none"))

	out := buf.String()
	for _, want := range []string{"INFO", "| sent", "model=gemini", "req.status=200", "req.error=none"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("NoColor output contains ANSI: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("record should end with a newline")
	}
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Options{Level: slog.LevelWarn, NoColor: true}))

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
}

func TestHandler_ConnID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Options{NoColor: true}))

	ctx := ContextWithConnID(context.Background(), "c-42")
	logger.InfoContext(ctx, "hello")

	if !strings.Contains(buf.String(), "c-42 ") {
		t.Errorf("output %q missing conn id", buf.String())
	}
}

func TestHandler_ShortFile(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Options{Source: ShortFile, NoColor: true}))
	logger.Info("where")

	if !strings.Contains(buf.String(), "handler_test.go:") {
		t.Errorf("output %q missing call site", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetupFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "robo.log")
	logger, closer, err := SetupFile(path, "debug")
	if err != nil {
		t.Fatalf("SetupFile() error = %v", err)
	}
	logger.Debug("to file")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q, want record", data)
	}
}
