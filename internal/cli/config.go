// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for folio.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   init                Write a default config file
//   get <key>           Print one value
//   set <key> <value>   Set a value in the config file
//   path                Show configuration file path
//   watch               Print the configuration each time the file changes
//
// Examples:
//   folio config set subject Ishika
//   folio config set api.origin https://ishika.dev
//   folio config get api.endpoint_base
//   folio config show --json

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/folio-tui/internal/config"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts, jsonOut)
		},
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")

	show := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts, jsonOut)
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.configFile()
			if err != nil {
				return err
			}
			return runConfigInit(cmd.OutOrStdout(), path, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runConfigGet(cmd.OutOrStdout(), cfg, args[0])
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.configFile()
			if err != nil {
				return err
			}
			return runConfigSet(cmd.OutOrStdout(), path, args[0], args[1])
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.configFile()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print the configuration each time the file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.configFile()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", path)
			return runConfigWatch(ctx, cmd.OutOrStdout(), path)
		},
	}

	cmd.AddCommand(show, initCmd, get, set, path, watch)
	return cmd
}

// configFile is the file --config names, or the default TOML path.
func (o *rootOptions) configFile() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", NewCommandError("config", "locate", "config directory", err)
	}
	return path, nil
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func runConfigShow(cmd *cobra.Command, opts *rootOptions, jsonOut bool) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if jsonOut {
		return NewJSONResponse("config", cfg).Print(w)
	}

	fmt.Fprintln(w, TitleStyle.Render("folio configuration"))
	fmt.Fprintln(w, RenderSeparator(41))
	for _, key := range config.GetAllKeys() {
		if key == "quick_actions" {
			continue
		}
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s%s\n", RenderLabel(key+":"), ValueStyle.Render(fmt.Sprint(value)))
	}
	fmt.Fprintf(w, "  %s%s\n", RenderLabel("endpoint (resolved):"), ValueStyle.Render(cfg.EndpointBase()))

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Quick questions"))
	for i, qa := range cfg.QuickActions {
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, qa.Label, DimStyle.Render("("+qa.Question+")"))
	}
	return nil
}

// runConfigInit writes the defaults to path unless a file already exists.
func runConfigInit(w io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return NewCommandError("config", "init", path+" already exists (use --force to overwrite)", nil)
	}
	if err := saveConfigFile(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

func runConfigGet(w io.Writer, cfg *config.Config, key string) error {
	if key == "quick_actions" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.QuickActions)
	}

	value, err := cfg.Get(key)
	if err != nil {
		return NewValidationErrorWithExample("key", key, err.Error(), strings.Join(config.GetAllKeys(), ", "))
	}
	fmt.Fprintln(w, value)
	return nil
}

// runConfigSet updates key in the file at path. Environment overrides are
// not applied, so they never leak into the file.
func runConfigSet(w io.Writer, path, key, value string) error {
	if key == "quick_actions" {
		return NewValidationError("key", key, "edit [[quick_actions]] in the config file directly")
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		load := config.LoadTOML
		if strings.HasSuffix(path, ".json") {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return NewCommandError("config", "load", path, err)
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return NewValidationErrorWithExample("key", key, err.Error(), "folio config set ui.theme dark")
	}
	if err := cfg.Validate(); err != nil {
		return NewCommandError("config", "set", key, err)
	}
	if err := saveConfigFile(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	return nil
}

func saveConfigFile(cfg *config.Config, path string) error {
	var err error
	if strings.HasSuffix(path, ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return NewCommandError("config", "save", path, err)
	}
	return nil
}

// runConfigWatch prints a line per reload until ctx is done.
func runConfigWatch(ctx context.Context, w io.Writer, path string) error {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			fmt.Fprintf(w, "%s %v\n", ErrorStyle.Render("[X]"), err)
			return
		}
		fmt.Fprintf(w, "%s reloaded: subject %q, endpoint %s\n",
			SuccessStyle.Render("[OK]"), cfg.Subject, cfg.EndpointBase())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return NewCommandError("config", "watch", path, err)
	}
	return nil
}
