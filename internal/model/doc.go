// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the assistant transcript.
//
// # Key Types
//
//   - Message: one transcript entry (user question or assistant reply)
//   - SourceSnippet: a citation excerpt returned by the backend
//   - Transcript: ordered, append-only list of Messages
//   - Role, Kind: who sent a message and what kind of reply it is
//
// Messages are plain values. Once appended to a Transcript they are never
// edited or removed. Append, Messages, At and Last copy sources and their
// metadata, so callers cannot reach back into the list.
//
// # Usage
//
//	var t model.Transcript
//	t.Append(model.NewUserMessage("What languages do you know?"))
//	t.Append(model.NewAnswerMessage("Python, SQL and JavaScript.", sources))
//	for _, msg := range t.Messages() {
//	    fmt.Println(msg.Role.DisplayName(), msg.Text)
//	}
package model
