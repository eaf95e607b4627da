// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/folio-tui/internal/config"
	"github.com/jeranaias/folio-tui/internal/query"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	endpoint   string
	debug      bool
}

// loadConfig loads the configuration named by --config, or the default
// files, and applies --endpoint and --debug on top.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
		if err != nil {
			return nil, NewCommandError("config", "load", o.configPath, err)
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, NewCommandError("config", "load", "default files", err)
		}
		if err != nil {
			// Broken files fall back to defaults; say so and carry on.
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", WarningStyle.Render("Warning:"), err)
		}
	}

	if o.endpoint != "" {
		cfg.API.EndpointBase = strings.TrimSuffix(o.endpoint, "/")
		if err := cfg.Validate(); err != nil {
			return nil, NewValidationErrorWithExample("--endpoint", o.endpoint, err.Error(), "https://example.com/api")
		}
	}
	if o.debug {
		cfg.Log.Debug = true
	}
	return cfg, nil
}

// setupLogging sends the standard logger to the log file when debugging
// and discards it otherwise. The returned func closes the file.
func setupLogging(cfg *config.Config) func() {
	if !cfg.Log.Debug {
		log.SetOutput(io.Discard)
		return func() {}
	}

	path, err := cfg.LogPath()
	if err == nil {
		err = config.EnsureConfigDir()
	}
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}

	f, err := tea.LogToFile(path, "folio")
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.Printf("folio %s starting, endpoint %s", Version, cfg.EndpointBase())
	return func() { f.Close() }
}

// newClient builds the backend client for cfg.
func newClient(cfg *config.Config) *query.Client {
	return query.NewClientWithConfig(&query.ClientConfig{
		BaseURL:           cfg.EndpointBase(),
		Timeout:           cfg.Timeout(),
		UserAgent:         "folio/" + Version,
		RequestsPerMinute: cfg.API.RequestsPerMinute,
	})
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the folio command tree. Without a subcommand the
// widget opens in the terminal.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	var startOpen bool

	root := &cobra.Command{
		Use:   "folio",
		Short: "Ask questions about a portfolio from the terminal",
		Long: `folio is a terminal chat widget for a portfolio question-answering backend.

Run it without a command to open the widget. Use "folio ask" for a single
question and "folio chat" for a line-mode session.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, startOpen)
		},
	}
	root.SetVersionTemplate(versionString() + "\n")

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.folio/config.toml)")
	root.PersistentFlags().StringVarP(&opts.endpoint, "endpoint", "e", "", "backend endpoint base, e.g. https://example.com/api")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write debug logs to ~/.folio/folio.log")
	root.Flags().BoolVar(&startOpen, "open", false, "open the chat window on start")

	root.AddCommand(
		newAskCommand(opts),
		newChatCommand(opts),
		newStatusCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func versionString() string {
	return fmt.Sprintf("folio version %s\n  Git commit: %s\n  Build date: %s", Version, GitCommit, BuildDate)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

// Main runs folio and returns the process exit code.
func Main() int {
	err := Execute()
	if err == nil {
		return ExitSuccess
	}
	DisplayError(os.Stderr, err)
	return ExitCode(err)
}
