// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the widget.
type KeyMap struct {
	Toggle      key.Binding
	Minimize    key.Binding
	Submit      key.Binding
	FocusNext   key.Binding
	PrevAction  key.Binding
	NextAction  key.Binding
	QuickAction key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "open/close"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "minimize"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "ask"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("Tab", "quick questions"),
		),
		PrevAction: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left", "previous question"),
		),
		NextAction: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right", "next question"),
		),
		QuickAction: key.NewBinding(
			key.WithKeys(
				"alt+1", "alt+2", "alt+3", "alt+4", "alt+5",
				"alt+6", "alt+7", "alt+8", "alt+9",
			),
			key.WithHelp("M-1..9", "quick question"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.FocusNext, k.Minimize, k.Help}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.QuickAction, k.FocusNext, k.PrevAction, k.NextAction},
		{k.PageUp, k.PageDown},
		{k.Toggle, k.Minimize, k.Help, k.Quit},
	}
}

// quickActionIndex maps alt+digit and bare digit keys to a zero-based index.
func quickActionIndex(s string) (int, bool) {
	if len(s) == 5 && s[:4] == "alt+" {
		s = s[4:]
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '1'), true
	}
	return 0, false
}
