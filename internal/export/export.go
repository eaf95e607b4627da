// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/folio-tui/internal/model"
	"github.com/jeranaias/folio-tui/internal/util"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("transcript has no messages")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Transcript is a snapshot of one widget session.
type Transcript struct {
	Subject      string
	EndpointBase string
	Messages     []model.Message
	ExportedAt   time.Time
}

// Exporter renders a transcript in one file format.
type Exporter interface {
	// Export converts the transcript to the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the extension including the dot.
	FileExtension() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where generated file names are placed. Default ".".
	OutputDir string

	// IncludeMetadata adds the frontmatter and session section.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message times.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "markdown", "md", "":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// FormatForPath picks a format from a file extension, markdown by default.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "markdown"
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile renders t and writes it to path. An empty path generates
// a name under opts.OutputDir. Returns the path written.
func ExportToFile(t *Transcript, exporter Exporter, path string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if t == nil || len(t.Messages) == 0 {
		return "", ErrEmptyTranscript
	}
	if t.ExportedAt.IsZero() {
		t.ExportedAt = time.Now()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if path == "" {
		path = filepath.Join(opts.OutputDir, FileName(t, exporter.FileExtension()))
	}

	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// FileName builds "folio_<subject>_<timestamp><ext>".
func FileName(t *Transcript, ext string) string {
	at := t.ExportedAt
	if at.IsZero() {
		at = time.Now()
	}
	return fmt.Sprintf("folio_%s_%s%s", sanitizeFilename(t.Subject), at.Format("20060102_150405"), ext)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	s = util.TruncateRunes(strings.TrimSpace(s), 50)

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "transcript"
	}
	return b.String()
}

// roleLabel names the sender in exported text.
func roleLabel(msg model.Message) string {
	if msg.Kind.IsError() {
		return "Error"
	}
	return msg.Role.DisplayName()
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
