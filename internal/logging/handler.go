// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the colored slog handler used by every robo
// command, and helpers to install it as the default logger.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// SourceFileMode selects how the call site is printed.
type SourceFileMode int

const (
	// NoSource omits the call site.
	NoSource SourceFileMode = iota
	// ShortFile prints the file name and line, e.g. client.go:42.
	ShortFile
	// LongFile prints the full path and line.
	LongFile
)

// Options configures a Handler.
type Options struct {
	// Level is the minimum level written. Defaults to info.
	Level slog.Leveler

	// TimeFormat formats the record time.
	TimeFormat string

	// Source selects the call site format.
	Source SourceFileMode

	// NoColor strips ANSI sequences, for log files.
	NoColor bool
}

// DefaultOptions returns options for interactive stderr output.
func DefaultOptions() Options {
	return Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.DateTime,
		Source:     ShortFile,
	}
}

var (
	faint   = color.New(color.Faint)
	connFg  = color.New(color.FgMagenta)
	keyFg   = color.New(color.FgCyan)
	errKey  = color.New(color.FgRed)
	divider = color.HiWhiteString("| ")

	levelBadges = map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.BgCyan, color.FgHiWhite),
		slog.LevelInfo:  color.New(color.BgGreen, color.FgHiWhite),
		slog.LevelWarn:  color.New(color.BgYellow, color.FgHiWhite),
		slog.LevelError: color.New(color.BgRed, color.FgHiWhite),
	}
)

// Handler is a slog.Handler writing one colored line per record.
type Handler struct {
	groups []string
	attrs  []slog.Attr
	opts   Options

	mu  *sync.Mutex
	out io.Writer
}

// NewHandler creates a handler writing to out.
func NewHandler(out io.Writer, opts Options) *Handler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	if opts.TimeFormat == "" {
		opts.TimeFormat = time.DateTime
	}
	return &Handler{out: out, opts: opts, mu: &sync.Mutex{}}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	bf := bufPool.Get().(*bytes.Buffer)
	bf.Reset()
	defer bufPool.Put(bf)

	if !r.Time.IsZero() {
		bf.WriteString(faint.Sprint(r.Time.Format(h.opts.TimeFormat)))
		bf.WriteByte(' ')
	}

	if id, ok := ConnIDFromContext(ctx); ok {
		bf.WriteString(connFg.Sprint(id))
		bf.WriteByte(' ')
	}

	bf.WriteString(levelBadge(r.Level))
	bf.WriteByte(' ')

	if h.opts.Source != NoSource && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		file := f.File
		if h.opts.Source == ShortFile {
			file = filepath.Base(file)
		}
		fmt.Fprintf(bf, "%s:%d ", file, f.Line)
	}

	bf.WriteString(divider)
	bf.WriteString(r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	writeAttr := func(a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		bf.WriteByte(' ')
		key := prefix + a.Key
		if strings.Contains(a.Key, "err") {
			bf.WriteString(errKey.Sprintf("%s=", key))
		} else {
			bf.WriteString(keyFg.Sprintf("%s=", key))
		}
		bf.WriteString(a.Value.Resolve().String())
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	bf.WriteByte('\n')

	out := bf.Bytes()
	if h.opts.NoColor {
		out = stripANSI(out)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(out)
	return err
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := h.clone()
	h2.attrs = append(h2.attrs, attrs...)
	return h2
}

func (h *Handler) clone() *Handler {
	return &Handler{
		groups: append([]string(nil), h.groups...),
		attrs:  append([]slog.Attr(nil), h.attrs...),
		opts:   h.opts,
		mu:     h.mu,
		out:    h.out,
	}
}

func levelBadge(l slog.Level) string {
	name := fmt.Sprintf("%-5s", l.String())
	switch {
	case l >= slog.LevelError:
		return levelBadges[slog.LevelError].Sprint(name)
	case l >= slog.LevelWarn:
		return levelBadges[slog.LevelWarn].Sprint(name)
	case l >= slog.LevelInfo:
		return levelBadges[slog.LevelInfo].Sprint(name)
	default:
		return levelBadges[slog.LevelDebug].Sprint(name)
	}
}

var bufPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile("[\u001B\u009B][[\\]()#;?]*(?:(?:(?:[a-zA-Z\\d]*(?:;[a-zA-Z\\d]*)*)?\u0007)|(?:(?:\\d{1,4}(?:;\\d{0,4})*)?[\\dA-PRZcf-ntqry=><~]))")

func stripANSI(b []byte) []byte {
	return ansiPattern.ReplaceAll(b, nil)
}
