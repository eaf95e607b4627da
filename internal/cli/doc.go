// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the folio command tree.
//
// Every command builds a widget.Controller from the loaded configuration
// and a query.Client for the resolved endpoint base, so the terminal
// widget, line-mode chat and one-shot ask share the same submission rules
// and error wording.
//
// # Commands
//
//   - (none): open the terminal widget
//   - ask: single question, markdown when stdout is a terminal
//   - chat: line-mode session with history
//   - status: backend status, exit status 1 when offline
//   - config: show, init, get, set, path and watch
//   - version: build information
//
// # Global Flags
//
//	-c, --config FILE     config file instead of ~/.folio/config.toml
//	-e, --endpoint URL    endpoint base, overriding the config
//	    --debug           write logs to ~/.folio/folio.log
//
// # Exit Codes
//
// ExitCode maps errors to exit codes: 2 for usage errors, 3 for config
// errors, 5 when the backend cannot be reached, 1 otherwise.
package cli
