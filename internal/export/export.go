// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation log to disk.
package export

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/sources"
	"github.com/jeranaias/robo-tui/internal/util"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("conversation has no messages")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a document in one format.
type Exporter interface {
	// Export converts the document to the target format.
	Export(doc *Document) ([]byte, error)

	// FileExtension returns the file extension, e.g. ".md".
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// ForFormat returns the exporter for a format name.
func ForFormat(name string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "markdown", "md", "":
		return Markdown(), nil
	case "html":
		return HTML(), nil
	case "json":
		return JSON(), nil
	case "yaml", "yml":
		return YAML(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want markdown, html, json or yaml)", name)
	}
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is the export view of a conversation.
type Document struct {
	Title      string    `json:"title" yaml:"title"`
	Model      string    `json:"model" yaml:"model"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Messages   []Entry   `json:"messages" yaml:"messages"`
}

// Entry is one exported message.
type Entry struct {
	ID      string           `json:"id" yaml:"id"`
	Author  model.Author     `json:"author" yaml:"author"`
	Time    time.Time        `json:"time" yaml:"time"`
	Text    string           `json:"text" yaml:"text"`
	Sources []sources.Source `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// NewDocument snapshots the log.
func NewDocument(log *model.Log, modelID string) *Document {
	msgs := log.Messages()
	doc := &Document{
		Title:      "Robo AI conversation",
		Model:      modelID,
		ExportedAt: time.Now(),
		Messages: lo.Map(msgs, func(m *model.Message, _ int) Entry {
			return Entry{
				ID:      m.ID,
				Author:  m.Author,
				Time:    m.CreatedAt,
				Text:    m.Text,
				Sources: sources.Normalize(m.Sources),
			}
		}),
	}
	if first, ok := lo.Find(msgs, func(m *model.Message) bool { return m.IsUser() }); ok {
		doc.Title = firstLine(first.Text, 60)
	}
	return doc
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are saved.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{OutputDir: "."}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile writes doc with exporter and returns the file path.
func ExportToFile(doc *Document, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if doc == nil || len(doc.Messages) == 0 {
		return "", ErrEmpty
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := doc.ExportedAt.Format("20060102_150405")
	filename := fmt.Sprintf("robo_%s_%s%s", slugify(doc.Title), timestamp, exporter.FileExtension())

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644, 0755); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open file: %v\n", err)
		}
	}

	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// slugify turns a title into a filename-safe ASCII slug. Accents are
// stripped, other characters outside [a-z0-9] become single dashes.
func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 40 {
		slug = strings.TrimSuffix(slug[:40], "-")
	}
	if slug == "" {
		return "conversation"
	}
	return slug
}

func firstLine(s string, max int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return util.TruncateRunes(s, max)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
