// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a widget transcript to a file.
//
// Markdown output is meant for reading and sharing; JSON output keeps
// message kinds and full source objects. Files are written atomically.
//
//	t := &export.Transcript{Subject: "Ishika", Messages: ctrl.Messages()}
//	path, err := export.ExportToFile(t, export.NewMarkdownExporter(nil), "", nil)
package export
