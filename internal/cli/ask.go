// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command.
//
// Command: ask [question]
//
// Examples:
//   folio ask "What programming languages does Ishika know?"
//   echo "What has she built?" | folio ask
//   folio ask --json "Tell me about her experience"
//
// Flags:
//   --json      Output the reply as JSON
//   --plain     Do not render markdown

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/folio-tui/internal/model"
	"github.com/jeranaias/folio-tui/internal/widget"
)

// maxStdinQuestion bounds a question read from a pipe.
const maxStdinQuestion = 64 * 1024

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	markdownRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

// printReply writes one assistant message. Markdown is only rendered when
// asked for, which callers tie to stdout being a TTY.
func printReply(w io.Writer, msg model.Message, markdown bool) {
	if msg.Kind.IsError() {
		fmt.Fprintln(w, ErrorStyle.Render(msg.Text))
		return
	}

	text := msg.Text
	if markdown {
		text = renderMarkdown(text)
	}
	fmt.Fprintln(w, text)

	if msg.HasSources() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, DimStyle.Render("Sources:"))
		for _, src := range msg.Sources {
			fmt.Fprintln(w, DimStyle.Render("  - "+src.Content))
		}
	}
}

// replyExit maps an error reply to an exit code.
func replyExit(msg model.Message) error {
	switch msg.Kind {
	case model.KindTransportError:
		return &ExitError{Code: ExitNetworkError}
	case model.KindApplicationError:
		return &ExitError{Code: ExitGeneralError}
	default:
		return nil
	}
}

// =============================================================================
// COMMAND
// =============================================================================

type askOptions struct {
	json     bool
	markdown bool
}

func newAskCommand(opts *rootOptions) *cobra.Command {
	var jsonOut, plain bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Example: `  folio ask "What programming languages does Ishika know?"
  echo "What has she built?" | folio ask
  folio ask --json "Tell me about her experience"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if strings.TrimSpace(question) == "" && !IsTTY() {
				data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxStdinQuestion))
				if err != nil {
					return NewCommandError("ask", "read", "stdin", err)
				}
				question = string(data)
			}

			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			defer setupLogging(cfg)()

			ctrl := widget.New(widget.OptionsFromConfig(cfg))
			return runAsk(cmd.Context(), cmd.OutOrStdout(), ctrl, newClient(cfg), question, askOptions{
				json:     jsonOut,
				markdown: !plain && !jsonOut && cfg.UI.Markdown && IsStdoutTTY(),
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output the reply as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "do not render markdown")
	return cmd
}

// runAsk submits question through ctrl and prints the reply.
func runAsk(ctx context.Context, w io.Writer, ctrl *widget.Controller, asker widget.Asker, question string, out askOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !ctrl.SubmitQuestion(ctx, asker, question) {
		return NewValidationErrorWithExample("question", "", "question is empty", `folio ask "What does she work on?"`)
	}

	msgs := ctrl.Messages()
	question, reply := msgs[0].Text, msgs[len(msgs)-1]

	if out.json {
		data := AskData{Question: question, Endpoint: ctrl.EndpointBase()}
		if reply.Kind.IsError() {
			if err := NewJSONErrorResponseStr("ask", reply.Text, data).Print(w); err != nil {
				return err
			}
			return replyExit(reply)
		}
		data.Answer = reply.Text
		data.Sources = reply.Sources
		return NewJSONResponse("ask", data).Print(w)
	}

	printReply(w, reply, out.markdown)
	return replyExit(reply)
}
