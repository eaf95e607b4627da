// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/folio-tui/internal/ui/styles"
	"github.com/jeranaias/folio-tui/internal/widget"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options tunes the host program around the controller.
type Options struct {
	// AnimationDelay is how long opening and closing take.
	AnimationDelay time.Duration

	// Markdown renders answers with glamour.
	Markdown bool

	// StartOpen opens the window on start.
	StartOpen bool

	// StatusTimeout bounds the startup status check.
	StatusTimeout time.Duration
}

// DefaultStatusTimeout bounds the startup status check.
const DefaultStatusTimeout = 5 * time.Second

// =============================================================================
// MODEL
// =============================================================================

// focusArea is the part of the window receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusActions
)

// Model is the Bubble Tea host for a widget.Controller. All controller
// mutation happens in Update; commands only capture immutable inputs.
type Model struct {
	ctrl    *widget.Controller
	asker   widget.Asker
	checker widget.HealthChecker
	opts    Options

	theme    *styles.Theme
	keys     KeyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	renderers map[int]*glamour.TermRenderer
	cache     *renderCache

	width  int
	height int

	focus    focusArea
	selected int

	animStart time.Time
	now       func() time.Time

	lastScroll uint64
	quitting   bool
}

// New creates the host model. The controller must not be used by anything
// else while the program runs.
func New(ctrl *widget.Controller, asker widget.Asker, checker widget.HealthChecker, theme *styles.Theme, opts Options) Model {
	if theme == nil {
		theme = styles.NewTheme()
	}
	if opts.StatusTimeout <= 0 {
		opts.StatusTimeout = DefaultStatusTimeout
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 1000
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	sp := spinner.New(
		spinner.WithSpinner(styles.TypingSpinner),
		spinner.WithStyle(theme.Typing),
	)

	h := help.New()
	h.Styles.ShortKey = theme.Help.Bold(true)
	h.Styles.ShortDesc = theme.Help
	h.Styles.FullKey = theme.Help.Bold(true)
	h.Styles.FullDesc = theme.Help

	m := Model{
		ctrl:      ctrl,
		asker:     asker,
		checker:   checker,
		opts:      opts,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      h,
		input:     ti,
		viewport:  viewport.New(60, 10),
		spinner:   sp,
		renderers: make(map[int]*glamour.TermRenderer),
		cache:     newRenderCache(),
		selected:  ctrl.NextQuickAction(-1),
		now:       time.Now,
	}
	m.setSize(80, 24)

	if opts.StartOpen && ctrl.Open() {
		m.animStart = m.now()
	}
	return m
}

// Controller returns the controller the model drives.
func (m Model) Controller() *widget.Controller {
	return m.ctrl
}

// Init starts the status check and any pending open animation.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{CheckStatusCmd(m.checker, m.opts.StatusTimeout)}
	if m.ctrl.Visibility() == widget.VisibilityOpening {
		cmds = append(cmds, m.animationCmds())
	}
	return tea.Batch(cmds...)
}

// setSize lays out the window for a terminal of width x height.
func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	inner := m.innerWidth()
	m.input.Width = inner - lipgloss.Width(m.input.Prompt) - 1
	m.help.Width = inner
	m.viewport.Width = inner
	m.viewport.Height = m.transcriptHeight()
	m.refreshTranscript(false)
}

// innerWidth is the usable width inside the window border and padding.
func (m Model) innerWidth() int {
	w := m.theme.WindowWidth() - m.theme.Window.GetHorizontalFrameSize()
	if w < 10 {
		return 10
	}
	return w
}

// windowHeight is the outer height of the open window.
func (m Model) windowHeight() int {
	h := m.height
	if h > 36 {
		h = 36
	}
	return h
}

// transcriptHeight is what remains for the transcript after the fixed parts.
func (m Model) transcriptHeight() int {
	fixed := m.theme.Window.GetVerticalFrameSize() +
		height(m.renderHeader()) +
		height(m.renderGreeting()) +
		height(m.renderQuickActions()) +
		height(m.renderInput()) +
		height(m.renderHelp())

	h := m.windowHeight() - fixed
	if h < 3 {
		return 3
	}
	return h
}

// height is the line count of a rendered block; empty blocks take none.
func height(s string) int {
	if s == "" {
		return 0
	}
	return lipgloss.Height(s)
}
