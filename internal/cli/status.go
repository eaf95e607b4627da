// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend status command.
//
// Command: status
//
// Prints whether the backend answers GET {base}/stats and how many
// documents it has loaded. Exits with status 1 when the backend is offline.

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/folio-tui/internal/ui/styles"
	"github.com/jeranaias/folio-tui/internal/widget"
)

// statusTimeout bounds one status check.
const statusTimeout = 5 * time.Second

func newStatusCommand(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			defer setupLogging(cfg)()

			ctrl := widget.New(widget.OptionsFromConfig(cfg))
			return runStatus(cmd.Context(), cmd.OutOrStdout(), ctrl, newClient(cfg), jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output status as JSON")
	return cmd
}

// runStatus checks the backend once and reports it.
func runStatus(ctx context.Context, w io.Writer, ctrl *widget.Controller, checker widget.HealthChecker, jsonOut bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	status := ctrl.CheckStatus(ctx, checker)
	online := status.State == widget.StatusOnline

	if jsonOut {
		data := StatusData{Endpoint: ctrl.EndpointBase(), Online: online, Text: ctrl.StatusText()}
		if online {
			n := status.Documents
			data.Documents = &n
		}
		if err := NewJSONResponse("status", data).Print(w); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, TitleStyle.Render(ctrl.Subject()+"'s AI Assistant"))
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Endpoint:"), ValueStyle.Render(ctrl.EndpointBase()))
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Backend:"), styles.RenderStatus(online, ctrl.StatusText()))
	}

	if !online {
		return &ExitError{Code: ExitGeneralError}
	}
	return nil
}
