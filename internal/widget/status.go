// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"

	"github.com/jeranaias/folio-tui/internal/query"
)

// StatusState is the backend availability shown in the header.
type StatusState int

const (
	StatusChecking StatusState = iota
	StatusOnline
	StatusOffline
)

// String returns the state name.
func (s StatusState) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Status is the header indicator.
type Status struct {
	State     StatusState
	Documents int
}

// Status returns the current indicator.
func (c *Controller) Status() Status { return c.status }

// StatusText returns the header text for the current indicator.
func (c *Controller) StatusText() string {
	switch c.status.State {
	case StatusOnline:
		return OnlineStatusText(c.status.Documents)
	case StatusOffline:
		return OfflineStatusText
	default:
		return CheckingStatusText(c.opts.Subject)
	}
}

// ApplyHealth records a status check result. It never affects the gate
// or the transcript.
func (c *Controller) ApplyHealth(h query.Health) {
	if !h.Online {
		c.status = Status{State: StatusOffline}
		return
	}
	c.status = Status{State: StatusOnline, Documents: h.Documents()}
}

// CheckStatus runs a blocking status check and applies it.
func (c *Controller) CheckStatus(ctx context.Context, checker HealthChecker) Status {
	c.ApplyHealth(checker.Health(ctx))
	return c.status
}
