// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget implements the assistant widget's state machine.
//
// A Controller owns the window visibility, the processing gate, the
// transcript, the quick actions and the backend status indicator. It does
// no I/O and holds no locks: callers drive it from a single goroutine,
// either the Bubble Tea Update loop or a sequential REPL.
//
// # Visibility
//
//	Closed --Toggle/Open--> Opening --AnimationDone--> Open
//	Open --Toggle/Close--> Closing --AnimationDone--> Closed
//
// Every transition bumps AnimationSeq; AnimationDone ignores stale
// sequence numbers so a toggle during an animation wins.
//
// # Submitting
//
// Begin validates and gates a question, records it and returns the
// request to issue. Complete records the single assistant reply for that
// request and reopens the gate. SubmitQuestion composes both around a
// blocking Asker for line-mode front ends.
package widget
