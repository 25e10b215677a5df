// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/robo-tui/internal/config"
	"github.com/jeranaias/robo-tui/internal/conversation"
	"github.com/jeranaias/robo-tui/internal/export"
	"github.com/jeranaias/robo-tui/internal/geo"
	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/session"
)

// =============================================================================
// HELPERS
// =============================================================================

// fakeSender answers every question with the same reply and records what
// it was asked and which location it saw.
type fakeSender struct {
	mu        sync.Mutex
	reply     *model.Reply
	err       error
	questions []string
	coords    []geo.Coordinates
}

func (f *fakeSender) factory(_ *config.Config, loc session.LocationSource, _ *slog.Logger) conversation.Sender {
	return conversation.SenderFunc(func(ctx context.Context, text string) (*model.Reply, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.questions = append(f.questions, text)
		if c, ok := loc.Coordinates(); ok {
			f.coords = append(f.coords, c)
		}
		return f.reply, f.err
	})
}

func cafeReply() *model.Reply {
	return &model.Reply{
		Text: "Try [Café Sprüngli](https://maps.test/s) on Bahnhofstrasse.",
		Sources: []model.GroundingChunk{
			{Maps: &model.MapsChunk{URI: "https://maps.test/s", Title: "Café Sprüngli"}},
			{Web: &model.WebChunk{URI: "https://maps.test/s", Title: "duplicate"}},
			{Web: &model.WebChunk{URI: "https://guide.test", Title: "Zürich guide"}},
		},
	}
}

// isolate points HOME and every override at a temp dir so the developer's
// own config and environment never leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	for _, name := range []string{
		"GEMINI_API_KEY", "API_KEY", "ROBO_MODEL", "ROBO_BASE_URL", "ROBO_TIMEOUT",
		"ROBO_LATITUDE", "ROBO_LONGITUDE", "ROBO_ADDR", "ROBO_LOG_LEVEL", "ROBO_LOG_FILE",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("ROBO_LOCATION_MODE", config.LocationOff)
	t.Setenv("ROBO_EXPORT_DIR", filepath.Join(home, "exports"))

	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)
	return home
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, sender *fakeSender, args ...string) (string, string, error) {
	t.Helper()
	app := &App{Version: "1.2.3"}
	if sender != nil {
		app.NewSender = sender.factory
	}
	cmd := NewRootCmd(app)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestAsk_PrintsReplyAndSources(t *testing.T) {
	isolate(t)
	sender := &fakeSender{reply: cafeReply()}

	out, errOut, err := run(t, sender, "ask", "best", "cafe", "in", "Zürich?")
	require.NoError(t, err)

	assert.Equal(t, []string{"best cafe in Zürich?"}, sender.questions)
	assert.Contains(t, out, "Café Sprüngli (https://maps.test/s)")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "Zürich guide")
	assert.NotContains(t, out, "duplicate")
	assert.NotContains(t, out, model.Greeting)
	assert.Empty(t, errOut, "location off must not print an advisory")
}

func TestAsk_JSON(t *testing.T) {
	isolate(t)
	out, _, err := run(t, &fakeSender{reply: cafeReply()}, "--model", "gemini-test", "ask", "--json", "best cafe?")
	require.NoError(t, err)

	var doc export.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "gemini-test", doc.Model)
	require.Len(t, doc.Messages, 2)
	assert.Equal(t, model.AuthorUser, doc.Messages[0].Author)
	assert.Equal(t, "best cafe?", doc.Messages[0].Text)
	assert.Equal(t, model.AuthorBot, doc.Messages[1].Author)
	assert.Len(t, doc.Messages[1].Sources, 2)
}

func TestAsk_SendFailure(t *testing.T) {
	isolate(t)
	out, _, err := run(t, &fakeSender{err: errors.New("quota exceeded")}, "ask", "hello")
	require.Error(t, err)

	assert.Equal(t, conversation.BannerPrefix+"quota exceeded", err.Error())
	assert.Contains(t, out, "quota exceeded")
}

func TestAsk_RequiresQuestion(t *testing.T) {
	isolate(t)
	_, _, err := run(t, &fakeSender{reply: cafeReply()}, "ask")
	assert.Error(t, err)
}

func TestAsk_BlankQuestion(t *testing.T) {
	isolate(t)
	sender := &fakeSender{reply: cafeReply()}
	_, _, err := run(t, sender, "ask", "   ")
	assert.Error(t, err)
	assert.Empty(t, sender.questions)
}

func TestAsk_StaticLocationReachesChat(t *testing.T) {
	isolate(t)
	t.Setenv("ROBO_LOCATION_MODE", "")
	t.Setenv("ROBO_LATITUDE", "47.37")
	t.Setenv("ROBO_LONGITUDE", "8.54")
	sender := &fakeSender{reply: cafeReply()}

	_, errOut, err := run(t, sender, "ask", "coffee nearby")
	require.NoError(t, err)
	assert.Equal(t, []geo.Coordinates{{Latitude: 47.37, Longitude: 8.54}}, sender.coords)
	assert.Empty(t, errOut)
}

func TestAsk_LocationFailurePrintsAdvisory(t *testing.T) {
	home := isolate(t)
	t.Setenv("ROBO_LOCATION_MODE", "")

	lookup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer lookup.Close()

	path := filepath.Join(home, "robo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[location]\nmode = \"auto\"\nlookup_url = \""+lookup.URL+"\"\n"), 0600))

	sender := &fakeSender{reply: cafeReply()}
	out, errOut, err := run(t, sender, "--config", path, "ask", "coffee nearby")
	require.NoError(t, err)

	assert.Contains(t, errOut, "Could not get your location")
	assert.Contains(t, out, "Café Sprüngli")
	assert.Empty(t, sender.coords)
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestConfigInitAndPath(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom", "robo.toml")

	out, _, err := run(t, nil, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	out, _, err = run(t, nil, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)

	_, _, err = run(t, nil, "--config", path, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, nil, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigShow_RedactsKey(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "super-secret")

	out, _, err := run(t, nil, "--model", "gemini-x", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, `"model": "gemini-x"`)
}

func TestInvalidConfigFails(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "robo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n"), 0600))

	_, _, err := run(t, nil, "--config", path, "version")
	assert.ErrorContains(t, err, "log.level")
}

// =============================================================================
// VERSION TESTS
// =============================================================================

func TestVersion(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"flag", []string{"--version"}, "robo 1.2.3"},
		{"command", []string{"version"}, "robo 1.2.3"},
		{"model override", []string{"-m", "gemini-x", "version"}, "model:    gemini-x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			out, _, err := run(t, nil, tc.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tc.want)
		})
	}
}

// =============================================================================
// REPL TESTS
// =============================================================================

// scriptedInput replays lines, then reports end of input.
type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newTestREPL(t *testing.T, sender *fakeSender, lines ...string) (*repl, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	isolate(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	app := &App{NewSender: sender.factory, cfg: cfg}
	ctrl, slot := app.newConversation(slog.New(slog.NewTextHandler(io.Discard, nil)))
	var out, errOut bytes.Buffer
	return &repl{
		app:    app,
		ctrl:   ctrl,
		slot:   slot,
		in:     &scriptedInput{lines: lines},
		out:    &out,
		errOut: &errOut,
	}, &out, &errOut
}

func TestREPL_Conversation(t *testing.T) {
	sender := &fakeSender{reply: cafeReply()}
	r, out, errOut := newTestREPL(t, sender,
		"   ",
		"best cafe in Zürich?",
		"/location",
		"/bogus",
		"/quit",
		"never read",
	)

	require.NoError(t, r.run(context.Background()))

	assert.Equal(t, []string{"best cafe in Zürich?"}, sender.questions)
	assert.Contains(t, out.String(), "Robo AI - Map Advisor")
	assert.Contains(t, out.String(), model.Greeting[:20])
	assert.Contains(t, out.String(), "Café Sprüngli (https://maps.test/s)")
	assert.Contains(t, out.String(), "Location: not available")
	assert.Contains(t, errOut.String(), "unknown command /bogus")
	assert.Equal(t, 3, r.ctrl.Log().Len())
}

func TestREPL_FailureShowsBanner(t *testing.T) {
	sender := &fakeSender{err: errors.New("network down")}
	r, out, errOut := newTestREPL(t, sender, "hello")

	require.NoError(t, r.run(context.Background()))
	assert.Contains(t, out.String(), "network down")
	assert.Contains(t, errOut.String(), conversation.BannerPrefix+"network down")
}

func TestREPL_Export(t *testing.T) {
	sender := &fakeSender{reply: cafeReply()}
	r, out, errOut := newTestREPL(t, sender, "best cafe?", "/export json", "/export pdf")

	require.NoError(t, r.run(context.Background()))
	assert.Contains(t, out.String(), "Exported to ")
	assert.Contains(t, errOut.String(), "unknown export format")

	files, err := filepath.Glob(filepath.Join(r.app.cfg.Export.Dir, "robo_best-cafe_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var doc export.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Messages, 3)
}

func TestREPL_Help(t *testing.T) {
	r, out, _ := newTestREPL(t, &fakeSender{reply: cafeReply()}, "/help")
	require.NoError(t, r.run(context.Background()))
	assert.Contains(t, out.String(), "/export [format]")
	assert.Contains(t, out.String(), "Ctrl+D")
}
