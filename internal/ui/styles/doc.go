// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the folio widget.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection; NewThemeFor can pin either background.

# Color System (colors.go)

  - Purple - Launcher, window border, assistant accents
  - Cyan - Quick actions, key hints, input prompt
  - Emerald - Backend online
  - Rose - Backend offline, failed requests
  - Amber - Status check in progress

Every status color is paired with an ASCII indicator from StatusIndicators
so state never depends on color alone.

# Theme (theme.go)

	theme := styles.NewThemeFor(cfg.UI.Theme)
	theme.SetSize(msg.Width, msg.Height)
	bubble := theme.AssistantBubble.Width(theme.WindowWidth() - 8).Render(text)

# Animations (animations.go)

The window opens and closes over ui.animation_ms. Progress and an easing
function turn elapsed time into the share of window lines revealed:

	p := styles.EaseOutCubic(styles.Progress(elapsed, delay))
	visible := styles.RevealLines(len(lines), p)
*/
package styles
