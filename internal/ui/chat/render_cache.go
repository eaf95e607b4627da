// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// =============================================================================
// TRANSCRIPT RENDER CACHE
// =============================================================================

// transcriptKey identifies one rendering of the transcript. Messages are
// never edited, so the count stands in for their content.
type transcriptKey struct {
	width      int
	count      int
	processing bool
	frame      string
}

// renderCache keeps rendered message bubbles by message ID and the key of
// the transcript last put in the viewport, so keystrokes and spinner ticks
// do not re-run markdown rendering. Every copy of a Model shares one.
type renderCache struct {
	width    int
	messages map[string]string

	key   transcriptKey
	valid bool

	// renders counts message bubbles actually rendered.
	renders int
}

func newRenderCache() *renderCache {
	return &renderCache{messages: make(map[string]string)}
}

// message returns the bubble for id at width, calling render on a miss.
// A width change drops every cached bubble.
func (c *renderCache) message(id string, width int, render func() string) string {
	if width != c.width {
		c.width = width
		c.messages = make(map[string]string)
	}
	if s, ok := c.messages[id]; ok {
		return s
	}
	s := render()
	c.renders++
	c.messages[id] = s
	return s
}

// current reports whether the viewport already shows key.
func (c *renderCache) current(key transcriptKey) bool {
	return c.valid && c.key == key
}

// mark records key as shown.
func (c *renderCache) mark(key transcriptKey) {
	c.key = key
	c.valid = true
}
