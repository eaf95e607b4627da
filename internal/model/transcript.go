// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Transcript is the ordered, append-only list of messages shown in the
// conversation view. The zero value is an empty transcript.
//
// Transcript is not safe for concurrent use; it belongs to the widget
// controller that appends to it.
type Transcript struct {
	messages []Message
}

// Append adds msg at the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg.Clone())
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// IsEmpty returns true when nothing has been appended yet.
func (t *Transcript) IsEmpty() bool {
	return len(t.messages) == 0
}

// Messages returns a deep copy of the messages in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	for i, msg := range t.messages {
		out[i] = msg.Clone()
	}
	return out
}

// At returns the message at index i.
func (t *Transcript) At(i int) (Message, bool) {
	if i < 0 || i >= len(t.messages) {
		return Message{}, false
	}
	return t.messages[i].Clone(), true
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	return t.At(len(t.messages) - 1)
}
