// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripting.
//
// ask and status accept --json and print one JSONResponse on stdout.

package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jeranaias/folio-tui/internal/model"
)

// JSONResponse is the response envelope for --json output.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponseStr creates an error JSON response that still
// carries data.
func NewJSONErrorResponseStr(command string, errMsg string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   false,
		Data:      data,
		Error:     &errMsg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the JSON response to w.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// AskData is the data of "folio ask --json".
type AskData struct {
	Question string                `json:"question"`
	Answer   string                `json:"answer,omitempty"`
	Sources  []model.SourceSnippet `json:"sources,omitempty"`
	Endpoint string                `json:"endpoint"`
}

// StatusData is the data of "folio status --json".
type StatusData struct {
	Endpoint  string `json:"endpoint"`
	Online    bool   `json:"online"`
	Documents *int   `json:"document_count,omitempty"`
	Text      string `json:"text"`
}
