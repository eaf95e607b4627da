// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/folio-tui/internal/ui/chat"
	"github.com/jeranaias/folio-tui/internal/ui/styles"
	"github.com/jeranaias/folio-tui/internal/widget"
)

// runTUI opens the widget in the terminal and blocks until it quits.
func runTUI(cmd *cobra.Command, opts *rootOptions, startOpen bool) error {
	if err := RequiresTTY("open the widget"); err != nil {
		return err
	}

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	defer setupLogging(cfg)()

	client := newClient(cfg)
	ctrl := widget.New(widget.OptionsFromConfig(cfg))

	m := chat.New(ctrl, client, client, styles.NewThemeFor(cfg.UI.Theme), chat.Options{
		AnimationDelay: cfg.AnimationDelay(),
		Markdown:       cfg.UI.Markdown,
		StartOpen:      startOpen || cfg.UI.StartOpen,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return NewCommandError("folio", "run", "terminal UI", err)
	}
	return nil
}
