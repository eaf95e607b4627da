// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/folio-tui/internal/model"
	"github.com/jeranaias/folio-tui/internal/ui/styles"
	"github.com/jeranaias/folio-tui/internal/util"
	"github.com/jeranaias/folio-tui/internal/widget"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the launcher when closed and the window otherwise. While
// the window opens or closes only part of it is drawn.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ctrl.Visible() {
		return m.renderLauncher()
	}

	window := m.renderWindow()
	if !m.animating() {
		return window
	}

	p := styles.Progress(m.now().Sub(m.animStart), m.opts.AnimationDelay)
	if m.ctrl.Visibility() == widget.VisibilityClosing {
		p = 1 - p
	}
	lines := strings.Split(window, "\n")
	n := styles.RevealLines(len(lines), styles.EaseOutCubic(p))
	return strings.Join(lines[len(lines)-n:], "\n")
}

func (m Model) renderLauncher() string {
	label := m.theme.Launcher.Render(widget.CheckingStatusText(m.ctrl.Subject()))
	hint := m.theme.LauncherHint.Render("enter or ctrl+o to open, ctrl+c to quit")
	return lipgloss.JoinHorizontal(lipgloss.Center, label, hint)
}

func (m Model) renderWindow() string {
	style := m.theme.Window
	if m.animating() {
		style = m.theme.WindowOpening
	}

	parts := []string{m.renderHeader(), m.renderGreeting()}
	if actions := m.renderQuickActions(); actions != "" {
		parts = append(parts, actions)
	}
	parts = append(parts, m.viewport.View(), m.renderInput(), m.renderHelp())

	return style.
		Width(m.theme.WindowWidth() - m.theme.Window.GetHorizontalBorderSize()).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	width := m.innerWidth()

	var dot string
	status := m.ctrl.Status()
	switch status.State {
	case widget.StatusOnline:
		dot = m.theme.StatusOnline.Render(styles.StatusIndicators.Online)
	case widget.StatusOffline:
		dot = m.theme.StatusOffline.Render(styles.StatusIndicators.Offline)
	default:
		dot = m.theme.StatusPending.Render(styles.StatusIndicators.Pending)
	}
	right := dot + " " + m.theme.StatusText.Render(m.ctrl.StatusText())

	titleWidth := width - lipgloss.Width(right) - 3
	title := m.theme.HeaderTitle.Render(util.TruncateWidth(m.ctrl.Subject()+"'s AI Assistant", titleWidth))

	gap := width - lipgloss.Width(title) - lipgloss.Width(right) - m.theme.Header.GetHorizontalFrameSize()
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Render(title + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// GREETING AND QUICK ACTIONS
// =============================================================================

func (m Model) renderGreeting() string {
	width := m.innerWidth() - m.theme.Greeting.GetHorizontalBorderSize()
	return m.theme.Greeting.Width(width).Render(m.ctrl.Greeting())
}

// renderQuickActions lays the actions out in rows that fit the window.
func (m Model) renderQuickActions() string {
	actions := m.ctrl.QuickActions()
	if len(actions) == 0 {
		return ""
	}

	var rows []string
	var row []string
	rowWidth := 0
	for i, qa := range actions {
		style := m.theme.QuickAction
		switch {
		case qa.Used:
			style = m.theme.QuickActionUsed
		case m.focus == focusActions && i == m.selected:
			style = m.theme.QuickActionSelected
		}

		label := fmt.Sprintf("%d %s", i+1, qa.Label)
		button := style.Render(util.TruncateWidth(label, m.innerWidth()-style.GetHorizontalFrameSize()))
		w := lipgloss.Width(button)

		if rowWidth > 0 && rowWidth+w > m.innerWidth() {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, button)
		rowWidth += w
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// transcriptKey describes what the transcript would show right now.
func (m Model) transcriptKey() transcriptKey {
	key := transcriptKey{
		width:      m.innerWidth(),
		count:      m.ctrl.TranscriptLen(),
		processing: m.ctrl.Processing(),
	}
	if key.processing {
		key.frame = m.spinner.View()
	}
	return key
}

// renderTranscript renders every message followed by the typing indicator
// while a request is in flight. Message bubbles come from the cache.
func (m Model) renderTranscript(key transcriptKey) string {
	var sb strings.Builder
	for _, msg := range m.ctrl.Messages() {
		msg := msg
		sb.WriteString(m.cache.message(msg.ID, key.width, func() string {
			return m.renderMessage(msg, key.width)
		}))
		sb.WriteString("\n")
	}
	if key.processing {
		sb.WriteString(key.frame)
		sb.WriteString(m.theme.Typing.Render(" typing"))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) renderMessage(msg model.Message, width int) string {
	switch {
	case msg.Role == model.RoleUser:
		style := m.theme.UserBubble
		textWidth := width - style.GetHorizontalMargins() - style.GetHorizontalBorderSize()
		return style.Width(textWidth).Render(msg.Text)

	case msg.Kind.IsError():
		style := m.theme.ErrorBubble
		textWidth := width - style.GetHorizontalMargins() - style.GetHorizontalBorderSize()
		return style.Width(textWidth).Render(msg.Text)

	default:
		style := m.theme.AssistantBubble
		textWidth := width - style.GetHorizontalMargins() - style.GetHorizontalBorderSize()
		contentWidth := textWidth - style.GetHorizontalPadding()

		body := m.renderMarkdown(msg.Text, contentWidth)
		if msg.HasSources() {
			body += "\n\n" + m.renderSources(msg.Sources, contentWidth)
		}
		return style.Width(textWidth).Render(body)
	}
}

func (m Model) renderSources(sources []model.SourceSnippet, width int) string {
	lines := []string{m.theme.SourceHeader.Render("Sources:")}
	for _, src := range sources {
		lines = append(lines, m.theme.Source.Width(width).Render("- "+src.Content))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderMarkdown renders answer text with glamour. Returns the original
// content if markdown is off or rendering fails.
func (m Model) renderMarkdown(content string, width int) string {
	if !m.opts.Markdown || width < 10 {
		return content
	}

	r, ok := m.renderers[width]
	if !ok {
		style := "light"
		if m.theme.IsDark {
			style = "dark"
		}
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		m.renderers[width] = r
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

// =============================================================================
// INPUT AND HELP
// =============================================================================

func (m Model) renderInput() string {
	view := m.input.View()
	if !m.ctrl.InputEnabled() {
		view = m.theme.InputDisabled.Render(m.input.Prompt + "waiting for answer...")
	}
	return m.theme.InputContainer.Width(m.innerWidth()).Render(view)
}

func (m Model) renderHelp() string {
	return m.help.View(m.keys)
}
