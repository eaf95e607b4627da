// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/folio-tui/internal/query"
)

// =============================================================================
// QUERY MESSAGES
// =============================================================================

// AnswerMsg carries the settled result of the in-flight question.
type AnswerMsg struct {
	Result query.Result
}

// HealthMsg carries a status check result.
type HealthMsg struct {
	Health query.Health
}

// =============================================================================
// ANIMATION MESSAGES
// =============================================================================

// AnimationDoneMsg completes the visibility transition Seq.
type AnimationDoneMsg struct {
	Seq uint64
}

// AnimationFrameMsg redraws the transition Seq while it runs.
type AnimationFrameMsg struct {
	Seq uint64
}
