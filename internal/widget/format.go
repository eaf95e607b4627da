// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/folio-tui/internal/model"
	"github.com/jeranaias/folio-tui/internal/util"
)

// Fixed wordings shown to the visitor.
const (
	ApplicationErrorPrefix = "Sorry, I encountered an error: "
	TransportErrorText     = "Sorry, I had trouble connecting. Please make sure the backend server is running."
	OfflineStatusText      = "Backend not connected"
)

// NormalizeQuestion trims surrounding whitespace and composes the text to
// NFC. An empty result means there is nothing to ask.
func NormalizeQuestion(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// ApplicationErrorText is the transcript text for a backend error reason.
func ApplicationErrorText(reason string) string {
	return ApplicationErrorPrefix + reason
}

// OnlineStatusText is the status text for a reachable backend.
func OnlineStatusText(documents int) string {
	return fmt.Sprintf("%d docs loaded", documents)
}

// CheckingStatusText is the status text before the first health result.
func CheckingStatusText(subject string) string {
	return "Ask about " + subject
}

// FormatSources keeps the first maxSources snippets, each cut to
// snippetChars runes and marked with an ellipsis. Metadata is carried
// through untouched.
func FormatSources(sources []model.SourceSnippet, maxSources, snippetChars int) []model.SourceSnippet {
	if maxSources <= 0 || len(sources) == 0 {
		return nil
	}
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	out := make([]model.SourceSnippet, len(sources))
	for i, src := range sources {
		out[i] = model.SourceSnippet{
			Content:  util.Excerpt(src.Content, snippetChars),
			Metadata: src.Metadata,
		}
	}
	return out
}
