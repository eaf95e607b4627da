// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat session.
//
// Command: chat
//
// A readline-style session over the same controller the widget uses.
// Type a question, or one of:
//   /1 .. /9     ask a quick question
//   /actions     list the quick questions
//   /status      check the backend again
//   /history     print the conversation so far
//   /export [f]  save the conversation (.md or .json)
//   /help        show commands
//   /quit        leave (also: exit, quit, Ctrl+D)

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/folio-tui/internal/config"
	"github.com/jeranaias/folio-tui/internal/export"
	"github.com/jeranaias/folio-tui/internal/model"
	"github.com/jeranaias/folio-tui/internal/widget"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of input.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// chatSession drives one controller from a line reader. It runs on a
// single goroutine, so the controller is never shared.
type chatSession struct {
	ctrl     *widget.Controller
	asker    widget.Asker
	checker  widget.HealthChecker
	out      io.Writer
	markdown bool
}

func newChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			defer setupLogging(cfg)()

			client := newClient(cfg)
			session := &chatSession{
				ctrl:     widget.New(widget.OptionsFromConfig(cfg)),
				asker:    client,
				checker:  client,
				out:      cmd.OutOrStdout(),
				markdown: cfg.UI.Markdown && IsStdoutTTY(),
			}

			input := NewChatCLI()
			defer input.Close()

			return session.run(cmd.Context(), input)
		},
	}
}

// run prints the banner and reads lines until the user leaves or input ends.
func (s *chatSession) run(ctx context.Context, in lineReader) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.checkStatus(ctx)
	s.printBanner()

	for {
		line, err := in.ReadInput(PromptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C, Ctrl+D and EOF all end the session.
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return NewCommandError("chat", "read", "input", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}
		if strings.HasPrefix(line, "/") {
			if !s.handleCommand(ctx, line) {
				return nil
			}
			continue
		}

		if s.ctrl.SubmitQuestion(ctx, s.asker, line) {
			s.printLastReply()
		}
	}
}

// handleCommand runs a slash command. It returns false to end the session.
func (s *chatSession) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])

	switch name {
	case "/quit", "/exit", "/q":
		return false
	case "/help", "/?":
		s.printHelp()
	case "/actions":
		s.printQuickActions()
	case "/status":
		s.checkStatus(ctx)
	case "/history":
		s.printHistory()
	case "/export":
		path := ""
		if len(fields) > 1 {
			path = fields[1]
		}
		s.exportTranscript(path)
	default:
		n, err := strconv.Atoi(strings.TrimPrefix(name, "/"))
		if err != nil {
			fmt.Fprintf(s.out, "%s unknown command %s (try /help)\n", ErrorStyle.Render("[Error]"), name)
			return true
		}
		if !s.ctrl.SubmitQuickAction(ctx, s.asker, n-1) {
			fmt.Fprintln(s.out, DimStyle.Render("That quick question is not available."))
			return true
		}
		s.printLastReply()
	}
	return true
}

func (s *chatSession) checkStatus(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	status := s.ctrl.CheckStatus(ctx, s.checker)
	style := SuccessStyle
	if status.State != widget.StatusOnline {
		style = WarningStyle
	}
	fmt.Fprintf(s.out, "%s %s\n", style.Render("*"), s.ctrl.StatusText())
}

func (s *chatSession) printBanner() {
	fmt.Fprintln(s.out, TitleStyle.Render(s.ctrl.Subject()+"'s AI Assistant"))
	fmt.Fprintln(s.out, s.ctrl.Greeting())
	s.printQuickActions()
	fmt.Fprintln(s.out, DimStyle.Render("Type /help for commands, Ctrl+D to leave."))
	fmt.Fprintln(s.out)
}

func (s *chatSession) printQuickActions() {
	for i, qa := range s.ctrl.QuickActions() {
		if qa.Used {
			continue
		}
		fmt.Fprintf(s.out, "  %s %s\n", PromptStyle.Render(fmt.Sprintf("/%d", i+1)), qa.Label)
	}
}

func (s *chatSession) printHelp() {
	fmt.Fprintln(s.out, `Commands:
  /1 .. /9     ask a quick question
  /actions     list the quick questions
  /status      check the backend again
  /history     print the conversation so far
  /export [f]  save the conversation (.md or .json)
  /quit        leave`)
}

func (s *chatSession) printHistory() {
	for _, msg := range s.ctrl.Messages() {
		if msg.Role == model.RoleUser {
			fmt.Fprintln(s.out, PromptStyle.Render("you> ")+msg.Text)
			continue
		}
		printReply(s.out, msg, s.markdown)
	}
}

func (s *chatSession) printLastReply() {
	msgs := s.ctrl.Messages()
	if len(msgs) == 0 {
		return
	}
	printReply(s.out, msgs[len(msgs)-1], s.markdown)
	fmt.Fprintln(s.out)
}

// exportTranscript writes the conversation to path, or to a generated
// markdown file in the working directory.
func (s *chatSession) exportTranscript(path string) {
	exporter, err := export.ForFormat(export.FormatForPath(path), nil)
	if err != nil {
		fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return
	}

	t := &export.Transcript{
		Subject:      s.ctrl.Subject(),
		EndpointBase: s.ctrl.EndpointBase(),
		Messages:     s.ctrl.Messages(),
	}
	written, err := export.ExportToFile(t, exporter, path, nil)
	if errors.Is(err, export.ErrEmptyTranscript) {
		fmt.Fprintln(s.out, DimStyle.Render("Nothing to export yet."))
		return
	}
	if err != nil {
		fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return
	}
	fmt.Fprintf(s.out, "%s Saved %s\n", SuccessStyle.Render("[OK]"), written)
}
