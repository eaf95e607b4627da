// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by folio.
//
// String helpers count runes, never bytes, so citation excerpts and
// status text never split a multi-byte character. Width helpers use
// go-runewidth so CJK and emoji occupy the right number of cells.
//
//	excerpt := util.Excerpt(source.Content, 80) // "first 80 runes..."
//	line := util.TruncateWidth(excerpt, 40)      // fits 40 terminal cells
//
// AtomicWriteFile is used by the config package when writing
// ~/.folio/config.toml.
package util
