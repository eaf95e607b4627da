// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/folio-tui/internal/model"
)

// JSONExporter exports transcripts to JSON. Options are ignored; the
// output always carries every message, its kind and its sources.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonTranscript struct {
	Subject      string        `json:"subject"`
	EndpointBase string        `json:"endpoint_base"`
	ExportedAt   time.Time     `json:"exported_at"`
	Messages     []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	model.Message
	Kind string `json:"kind"`
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil || len(t.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	out := jsonTranscript{
		Subject:      t.Subject,
		EndpointBase: t.EndpointBase,
		ExportedAt:   t.ExportedAt,
		Messages:     make([]jsonMessage, len(t.Messages)),
	}
	if out.ExportedAt.IsZero() {
		out.ExportedAt = time.Now()
	}
	for i, msg := range t.Messages {
		out.Messages[i] = jsonMessage{Message: msg, Kind: msg.Kind.String()}
	}

	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
