// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat hosts a widget.Controller inside a Bubble Tea program.

The package draws the launcher and the chat window, routes keys to the
controller and runs backend requests as commands. It holds no chat state of
its own: the transcript, the processing gate and the quick actions all live
in the controller, which is only touched from Update.

# Key Components

## Model (model.go)

The Model wraps the controller with the Bubbles components it needs:
  - textinput for the question field
  - viewport for the transcript
  - spinner for the typing indicator
  - help for the key hints

## Update Loop (update.go)

Handles keys, window resizes and the results of commands:
  - AnswerMsg completes the pending request
  - HealthMsg updates the header status
  - AnimationDoneMsg finishes an opening or closing transition

Stale animation messages carry an old sequence number and are ignored, so
toggling mid-transition is safe.

## View Rendering (view.go)

  - Launcher line while closed
  - Header with the subject and backend status
  - Greeting and numbered quick actions
  - User, assistant and error bubbles, with answers rendered by glamour
  - Input field, shown disabled while a request is in flight

# Keys

	ctrl+o     open or close the window
	enter      open the window, or send the question
	esc        close the window
	tab        move between the input and the quick actions
	alt+1..9   ask a quick action
	pgup/pgdn  scroll the transcript
	f1         full help
	ctrl+c     quit

# Usage

	ctrl := widget.New(widget.OptionsFromConfig(cfg))
	client := query.NewClientWithConfig(&query.ClientConfig{BaseURL: cfg.EndpointBase()})
	m := chat.New(ctrl, client, client, styles.NewThemeFor(cfg.UI.Theme), chat.Options{
		AnimationDelay: cfg.AnimationDelay(),
		Markdown:       cfg.UI.Markdown,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
