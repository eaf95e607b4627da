// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/folio-tui/internal/query"
	"github.com/jeranaias/folio-tui/internal/ui/styles"
	"github.com/jeranaias/folio-tui/internal/widget"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// AskCmd sends req and reports the result as an AnswerMsg. A panicking
// asker is reported as a transport failure so the gate always reopens.
func AskCmd(asker widget.Asker, req query.Request) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = AnswerMsg{Result: query.NewTransportFailure(fmt.Errorf("asker panicked: %v", r))}
			}
		}()

		if asker == nil {
			return AnswerMsg{Result: query.NewTransportFailure(errors.New("no backend configured"))}
		}
		return AnswerMsg{Result: asker.Ask(context.Background(), req.Question, req.NResults)}
	}
}

// CheckStatusCmd runs one status check bounded by timeout.
func CheckStatusCmd(checker widget.HealthChecker, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if checker == nil {
			return HealthMsg{Health: query.Health{Online: false}}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return HealthMsg{Health: checker.Health(ctx)}
	}
}

// animationCmds schedules completion and redraw frames for the current
// transition. With no delay the transition is completed immediately.
func (m Model) animationCmds() tea.Cmd {
	seq := m.ctrl.AnimationSeq()
	if m.opts.AnimationDelay <= 0 {
		return func() tea.Msg { return AnimationDoneMsg{Seq: seq} }
	}
	return tea.Batch(
		tea.Tick(m.opts.AnimationDelay, func(time.Time) tea.Msg {
			return AnimationDoneMsg{Seq: seq}
		}),
		frameCmd(seq),
	)
}

func frameCmd(seq uint64) tea.Cmd {
	return tea.Tick(styles.FrameInterval(), func(time.Time) tea.Msg {
		return AnimationFrameMsg{Seq: seq}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case AnswerMsg:
		m.ctrl.Complete(msg.Result)

	case HealthMsg:
		m.ctrl.ApplyHealth(msg.Health)

	case AnimationDoneMsg:
		if m.ctrl.AnimationDone(msg.Seq) && !m.ctrl.Session().IsOpen() {
			m.input.Blur()
		}

	case AnimationFrameMsg:
		if msg.Seq == m.ctrl.AnimationSeq() && m.animating() {
			cmds = append(cmds, frameCmd(msg.Seq))
		}

	case spinner.TickMsg:
		// The spinner loop ends once nothing is pending.
		if m.ctrl.Processing() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.ctrl.TakeFocusRequest() {
		m.focus = focusInput
		cmds = append(cmds, m.input.Focus())
	}
	m.refreshTranscript(true)

	if m.quitting {
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) animating() bool {
	v := m.ctrl.Visibility()
	return v == widget.VisibilityOpening || v == widget.VisibilityClosing
}

// handleKey routes a key press. Global keys work in every state; the rest
// only while the window is open.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return nil

	case key.Matches(msg, m.keys.Toggle):
		m.ctrl.Toggle()
		return m.startAnimation()
	}

	if !m.ctrl.Session().IsOpen() {
		if key.Matches(msg, m.keys.Submit) && m.ctrl.Open() {
			return m.startAnimation()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Minimize):
		if m.ctrl.Close() {
			return m.startAnimation()
		}
		return nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.viewport.Height = m.transcriptHeight()
		return nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return nil

	case key.Matches(msg, m.keys.FocusNext):
		return m.toggleFocus()

	case key.Matches(msg, m.keys.QuickAction):
		if i, ok := quickActionIndex(msg.String()); ok {
			return m.useQuickAction(i)
		}
		return nil
	}

	if m.focus == focusActions {
		return m.handleActionKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	// The input is disabled while a request is in flight.
	if !m.ctrl.InputEnabled() {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleActionKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.useQuickAction(m.selected)

	case key.Matches(msg, m.keys.NextAction):
		if next := m.ctrl.NextQuickAction(m.selected); next >= 0 {
			m.selected = next
		}

	case key.Matches(msg, m.keys.PrevAction):
		m.selected = m.prevQuickAction()

	default:
		if i, ok := quickActionIndex(msg.String()); ok {
			return m.useQuickAction(i)
		}
	}
	return nil
}

func (m *Model) prevQuickAction() int {
	actions := m.ctrl.QuickActions()
	n := len(actions)
	for step := 1; step <= n; step++ {
		j := ((m.selected-step)%n + n) % n
		if !actions[j].Used {
			return j
		}
	}
	return m.selected
}

// toggleFocus moves keys between the input and the quick actions row.
func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusActions {
		m.focus = focusInput
		return m.input.Focus()
	}

	next := m.ctrl.NextQuickAction(m.selected - 1)
	if next < 0 {
		return nil
	}
	m.selected = next
	m.focus = focusActions
	m.input.Blur()
	return nil
}

// submit sends the typed question. The input is cleared only when the
// controller accepts it.
func (m *Model) submit() tea.Cmd {
	req, ok := m.ctrl.Begin(m.input.Value())
	if !ok {
		return nil
	}
	m.input.Reset()
	return tea.Batch(AskCmd(m.asker, req), m.spinner.Tick)
}

func (m *Model) useQuickAction(i int) tea.Cmd {
	req, ok := m.ctrl.UseQuickAction(i)
	if !ok {
		return nil
	}

	var focusCmd tea.Cmd
	if next := m.ctrl.NextQuickAction(i); next >= 0 {
		m.selected = next
	} else if m.focus == focusActions {
		m.focus = focusInput
		focusCmd = m.input.Focus()
	}
	return tea.Batch(AskCmd(m.asker, req), m.spinner.Tick, focusCmd)
}

// startAnimation records the transition start and schedules its ticks.
func (m *Model) startAnimation() tea.Cmd {
	m.animStart = m.now()
	if !m.ctrl.Session().IsOpen() {
		m.input.Blur()
	}
	return m.animationCmds()
}

// refreshTranscript updates the viewport when the transcript, the
// pending indicator or the width changed, and scrolls to the bottom when
// the controller asks for it.
func (m *Model) refreshTranscript(follow bool) {
	key := m.transcriptKey()
	if !m.cache.current(key) {
		m.viewport.SetContent(m.renderTranscript(key))
		m.cache.mark(key)
	}

	rev := m.ctrl.ScrollRevision()
	if !follow || rev != m.lastScroll {
		m.viewport.GotoBottom()
		m.lastScroll = rev
	}
}
