// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"

	"github.com/jeranaias/folio-tui/internal/query"
)

// QuickAction is a preset question offered under the greeting.
type QuickAction struct {
	Label    string
	Question string
	Used     bool
}

// QuickActions returns a copy of the quick actions in display order.
func (c *Controller) QuickActions() []QuickAction {
	out := make([]QuickAction, len(c.quickActions))
	copy(out, c.quickActions)
	return out
}

// UseQuickAction submits quick action i as if its question had been
// typed. Each action can be used once; used or out-of-range actions and
// any action while a request is in flight are ignored.
func (c *Controller) UseQuickAction(i int) (query.Request, bool) {
	if i < 0 || i >= len(c.quickActions) || c.quickActions[i].Used {
		return query.Request{}, false
	}

	req, ok := c.Begin(c.quickActions[i].Question)
	if !ok {
		return query.Request{}, false
	}
	c.quickActions[i].Used = true
	return req, true
}

// SubmitQuickAction is the blocking form of UseQuickAction, for callers
// without an event loop.
func (c *Controller) SubmitQuickAction(ctx context.Context, asker Asker, i int) bool {
	req, ok := c.UseQuickAction(i)
	if !ok {
		return false
	}
	c.settle(ctx, asker, req)
	return true
}

// NextQuickAction returns the first unused action after i, wrapping
// around, or -1 when none is left.
func (c *Controller) NextQuickAction(i int) int {
	n := len(c.quickActions)
	for step := 1; step <= n; step++ {
		j := ((i+step)%n + n) % n
		if !c.quickActions[j].Used {
			return j
		}
	}
	return -1
}
