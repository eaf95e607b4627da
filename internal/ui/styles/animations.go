// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingSpinner is the pending-answer indicator.
var TypingSpinner = spinner.Spinner{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    time.Second / 6,
}

// =============================================================================
// WINDOW TRANSITIONS
// =============================================================================

// TransitionFPS is how often an opening or closing window is redrawn.
const TransitionFPS = 30

// FrameInterval is the delay between transition frames.
func FrameInterval() time.Duration {
	return time.Second / TransitionFPS
}

// EasingFunc maps progress (0-1) to output (0-1).
type EasingFunc func(t float64) float64

// EaseLinear - constant speed
func EaseLinear(t float64) float64 {
	return clamp01(t)
}

// EaseOutCubic - decelerating to zero
func EaseOutCubic(t float64) float64 {
	t = clamp01(t) - 1
	return t*t*t + 1
}

// EaseInQuad - accelerating from zero
func EaseInQuad(t float64) float64 {
	t = clamp01(t)
	return t * t
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Progress returns how far through d the elapsed time is, in 0-1.
// A zero duration is always complete.
func Progress(elapsed, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	return clamp01(float64(elapsed) / float64(d))
}

// RevealLines returns how many of total lines are visible at eased
// progress p. At least one line shows while anything is drawn.
func RevealLines(total int, p float64) int {
	if total <= 0 {
		return 0
	}
	n := int(float64(total)*clamp01(p) + 0.5)
	if n < 1 {
		return 1
	}
	if n > total {
		return total
	}
	return n
}
