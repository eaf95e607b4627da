// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jeranaias/folio-tui/internal/config"
	"github.com/jeranaias/folio-tui/internal/model"
	"github.com/jeranaias/folio-tui/internal/query"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Asker answers one question. *query.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string, resultLimit int) query.Result
}

// HealthChecker reports backend availability. *query.Client satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) query.Health
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Controller.
type Options struct {
	Subject      string
	Greeting     string
	EndpointBase string
	ResultLimit  int
	MaxSources   int
	SnippetChars int
	QuickActions []QuickAction
}

// OptionsFromConfig builds Options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	actions := make([]QuickAction, len(cfg.QuickActions))
	for i, qa := range cfg.QuickActions {
		actions[i] = QuickAction{Label: qa.Label, Question: qa.Question}
	}
	return Options{
		Subject:      cfg.Subject,
		Greeting:     cfg.GreetingText(),
		EndpointBase: cfg.EndpointBase(),
		ResultLimit:  cfg.API.ResultLimit,
		MaxSources:   cfg.UI.MaxSources,
		SnippetChars: cfg.UI.SnippetChars,
		QuickActions: actions,
	}
}

func (o Options) withDefaults() Options {
	defaults := config.Default()
	if o.Subject == "" {
		o.Subject = defaults.Subject
	}
	if o.EndpointBase == "" {
		o.EndpointBase = config.DevEndpointBase
	}
	if o.ResultLimit <= 0 {
		o.ResultLimit = defaults.API.ResultLimit
	}
	if o.MaxSources < 0 {
		o.MaxSources = 0
	}
	if o.SnippetChars <= 0 {
		o.SnippetChars = defaults.UI.SnippetChars
	}
	return o
}

// =============================================================================
// VISIBILITY
// =============================================================================

// Visibility is the window lifecycle state.
type Visibility int

const (
	VisibilityClosed Visibility = iota
	VisibilityOpening
	VisibilityOpen
	VisibilityClosing
)

// String returns the state name.
func (v Visibility) String() string {
	switch v {
	case VisibilityClosed:
		return "closed"
	case VisibilityOpening:
		return "opening"
	case VisibilityOpen:
		return "open"
	case VisibilityClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the per-run widget state.
type Session struct {
	Visibility   Visibility
	Processing   bool
	EndpointBase string
}

// IsOpen reports whether the window is open or on its way there.
func (s Session) IsOpen() bool {
	return s.Visibility == VisibilityOpen || s.Visibility == VisibilityOpening
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the widget state machine. It is not safe for concurrent
// use; a single goroutine must own it.
type Controller struct {
	opts Options

	visibility     Visibility
	animationSeq   uint64
	focusRequested bool

	processing bool
	transcript model.Transcript

	quickActions []QuickAction
	status       Status

	scrollRevision uint64
}

// New creates a closed, idle controller with an empty transcript.
func New(opts Options) *Controller {
	opts = opts.withDefaults()
	actions := make([]QuickAction, len(opts.QuickActions))
	copy(actions, opts.QuickActions)
	for i := range actions {
		actions[i].Used = false
	}

	return &Controller{
		opts:         opts,
		visibility:   VisibilityClosed,
		quickActions: actions,
		status:       Status{State: StatusChecking},
	}
}

// Session returns a snapshot of visibility, gate and endpoint.
func (c *Controller) Session() Session {
	return Session{
		Visibility:   c.visibility,
		Processing:   c.processing,
		EndpointBase: c.opts.EndpointBase,
	}
}

// Visibility returns the current window state.
func (c *Controller) Visibility() Visibility { return c.visibility }

// Visible reports whether the window should be drawn. The window stays
// on screen while it animates closed.
func (c *Controller) Visible() bool { return c.visibility != VisibilityClosed }

// Processing reports whether a request is in flight. The pending
// indicator is shown exactly while this is true.
func (c *Controller) Processing() bool { return c.processing }

// InputEnabled reports whether the input and submit control accept input.
func (c *Controller) InputEnabled() bool { return !c.processing }

// Subject returns the person the widget answers questions about.
func (c *Controller) Subject() string { return c.opts.Subject }

// Greeting returns the greeting shown above the transcript.
func (c *Controller) Greeting() string { return c.opts.Greeting }

// EndpointBase returns the resolved API base.
func (c *Controller) EndpointBase() string { return c.opts.EndpointBase }

// Messages returns a copy of the transcript in append order.
func (c *Controller) Messages() []model.Message { return c.transcript.Messages() }

// TranscriptLen returns the number of transcript entries.
func (c *Controller) TranscriptLen() int { return c.transcript.Len() }

// ScrollRevision changes whenever the transcript view should scroll to
// the bottom.
func (c *Controller) ScrollRevision() uint64 { return c.scrollRevision }

// AnimationSeq identifies the latest visibility transition.
func (c *Controller) AnimationSeq() uint64 { return c.animationSeq }

// =============================================================================
// VISIBILITY TRANSITIONS
// =============================================================================

// Toggle flips the window. An opening window starts closing and a
// closing window starts opening.
func (c *Controller) Toggle() {
	switch c.visibility {
	case VisibilityClosed, VisibilityClosing:
		c.beginTransition(VisibilityOpening)
	case VisibilityOpen, VisibilityOpening:
		c.beginTransition(VisibilityClosing)
	}
}

// Open starts opening the window. It returns false when the window is
// already open or opening.
func (c *Controller) Open() bool {
	if c.Session().IsOpen() {
		return false
	}
	c.beginTransition(VisibilityOpening)
	return true
}

// Close starts closing the window. It returns false when the window is
// already closed or closing.
func (c *Controller) Close() bool {
	if !c.Session().IsOpen() {
		return false
	}
	c.beginTransition(VisibilityClosing)
	return true
}

func (c *Controller) beginTransition(to Visibility) {
	c.visibility = to
	c.animationSeq++
	c.focusRequested = false
}

// AnimationDone completes the transition identified by seq. Stale
// sequence numbers and settled states are ignored. Completing an
// opening raises a focus request.
func (c *Controller) AnimationDone(seq uint64) bool {
	if seq != c.animationSeq {
		return false
	}
	switch c.visibility {
	case VisibilityOpening:
		c.visibility = VisibilityOpen
		c.focusRequested = true
		return true
	case VisibilityClosing:
		c.visibility = VisibilityClosed
		return true
	default:
		return false
	}
}

// TakeFocusRequest reports and clears a pending focus request.
func (c *Controller) TakeFocusRequest() bool {
	requested := c.focusRequested
	c.focusRequested = false
	return requested
}

// =============================================================================
// SUBMISSION PIPELINE
// =============================================================================

// Begin accepts a question for sending. Blank text and submissions while
// a request is in flight are rejected without any state change. On
// acceptance the question is appended, the gate closes and the request
// to issue is returned.
func (c *Controller) Begin(text string) (query.Request, bool) {
	question := NormalizeQuestion(text)
	if question == "" || c.processing {
		return query.Request{}, false
	}

	c.transcript.Append(model.NewUserMessage(question))
	c.scrollRevision++

	c.processing = true
	c.scrollRevision++

	return query.Request{Question: question, NResults: c.opts.ResultLimit}, true
}

// Complete settles the in-flight request with result: exactly one
// assistant message is appended and the gate reopens. It returns false,
// changing nothing, when no request is in flight.
func (c *Controller) Complete(result query.Result) (model.Message, bool) {
	if !c.processing {
		return model.Message{}, false
	}

	msg := c.replyFor(result)
	c.transcript.Append(msg)
	c.scrollRevision++
	c.processing = false
	return msg, true
}

func (c *Controller) replyFor(result query.Result) model.Message {
	switch r := result.(type) {
	case query.Answer:
		return model.NewAnswerMessage(r.Text, FormatSources(r.Sources, c.opts.MaxSources, c.opts.SnippetChars))
	case query.Failure:
		if r.Kind == query.FailureApplication {
			return model.NewErrorMessage(model.KindApplicationError, ApplicationErrorText(r.Reason))
		}
		log.Printf("Query failed: %v", r.Err)
	default:
		log.Printf("Query failed: unexpected result %T", result)
	}
	return model.NewErrorMessage(model.KindTransportError, TransportErrorText)
}

// SubmitQuestion runs one full round trip against asker and blocks until
// it settles. It returns false when the question was rejected. The gate
// is reopened even if asker panics; the panic becomes a transport error.
func (c *Controller) SubmitQuestion(ctx context.Context, asker Asker, text string) bool {
	req, ok := c.Begin(text)
	if !ok {
		return false
	}
	c.settle(ctx, asker, req)
	return true
}

// settle issues req and completes the in-flight request with its result.
func (c *Controller) settle(ctx context.Context, asker Asker, req query.Request) {
	var result query.Result = query.NewTransportFailure(errors.New("request did not complete"))
	defer func() {
		if r := recover(); r != nil {
			result = query.NewTransportFailure(fmt.Errorf("asker panicked: %v", r))
		}
		c.Complete(result)
	}()

	if asker == nil {
		result = query.NewTransportFailure(errors.New("no backend configured"))
		return
	}
	result = asker.Ask(ctx, req.Question, req.NResults)
}
