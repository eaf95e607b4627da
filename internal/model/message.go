// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind says what a message is beyond its role.
type Kind int

const (
	KindQuestion         Kind = iota // user question
	KindAnswer                       // backend answer
	KindApplicationError             // backend returned a structured error
	KindTransportError               // backend could not be reached or parsed
)

// String returns the kind name used in logs and JSON output.
func (k Kind) String() string {
	switch k {
	case KindQuestion:
		return "question"
	case KindAnswer:
		return "answer"
	case KindApplicationError:
		return "application_error"
	case KindTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// IsError reports whether the message renders a failed request.
func (k Kind) IsError() bool {
	return k == KindApplicationError || k == KindTransportError
}

// =============================================================================
// SOURCE SNIPPET
// =============================================================================

// SourceSnippet is a citation excerpt returned with an answer. Fields other
// than content are kept in Metadata untouched.
type SourceSnippet struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"-"`
}

// UnmarshalJSON decodes {"content": ..., ...} and keeps every other key
// in Metadata.
func (s *SourceSnippet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = SourceSnippet{}
	if content, ok := raw["content"]; ok {
		// A null or non-string content is shown as empty, not rejected.
		_ = json.Unmarshal(content, &s.Content)
		delete(raw, "content")
	}

	if len(raw) > 0 {
		s.Metadata = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err == nil {
				s.Metadata[k] = val
			}
		}
	}
	return nil
}

// MarshalJSON writes the snippet back in the backend's shape.
func (s SourceSnippet) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		out[k] = v
	}
	out["content"] = s.Content
	return json.Marshal(out)
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one transcript entry. Treat it as immutable once created.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Kind      Kind            `json:"-"`
	Text      string          `json:"text"`
	Sources   []SourceSnippet `json:"sources,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with a generated ID and the current time.
func NewMessage(role Role, kind Kind, text string, sources []SourceSnippet) Message {
	var copied []SourceSnippet
	if len(sources) > 0 {
		copied = make([]SourceSnippet, len(sources))
		copy(copied, sources)
	}
	return Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Kind:      kind,
		Text:      text,
		Sources:   copied,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a question from the visitor.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, KindQuestion, text, nil)
}

// NewAnswerMessage creates an assistant answer with its citations.
func NewAnswerMessage(text string, sources []SourceSnippet) Message {
	return NewMessage(RoleAssistant, KindAnswer, text, sources)
}

// NewErrorMessage creates an assistant-role message that reports a failed
// request. kind must be KindApplicationError or KindTransportError.
func NewErrorMessage(kind Kind, text string) Message {
	return NewMessage(RoleAssistant, kind, text, nil)
}

// Clone returns a copy of m that shares no slices or maps with it.
func (m Message) Clone() Message {
	if m.Sources == nil {
		return m
	}
	sources := make([]SourceSnippet, len(m.Sources))
	for i, src := range m.Sources {
		sources[i] = SourceSnippet{Content: src.Content, Metadata: maps.Clone(src.Metadata)}
	}
	m.Sources = sources
	return m
}

// HasSources reports whether the message carries citations.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}
