// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/folio-tui/internal/config"
	"github.com/jeranaias/folio-tui/internal/model"
	"github.com/jeranaias/folio-tui/internal/query"
)

// fakeAsker records calls and answers with a fixed result.
type fakeAsker struct {
	result    query.Result
	calls     []query.Request
	onAsk     func()
	panicWith any
}

func (f *fakeAsker) Ask(ctx context.Context, question string, resultLimit int) query.Result {
	f.calls = append(f.calls, query.Request{Question: question, NResults: resultLimit})
	if f.onAsk != nil {
		f.onAsk()
	}
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.result
}

type fakeChecker struct {
	health query.Health
}

func (f fakeChecker) Health(ctx context.Context) query.Health {
	return f.health
}

func newController() *Controller {
	return New(OptionsFromConfig(config.Default()))
}

func intPtr(n int) *int { return &n }

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitQuestion_AppendsQuestionThenAnswer(t *testing.T) {
	inputs := []string{"What does Ishika do?", "  padded question  ", "\tskills?\n", "é"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			c := newController()
			asker := &fakeAsker{result: query.Answer{Text: "An answer"}}

			require.True(t, c.SubmitQuestion(context.Background(), asker, input))

			msgs := c.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, model.RoleUser, msgs[0].Role)
			assert.Equal(t, NormalizeQuestion(input), msgs[0].Text)
			assert.Equal(t, model.RoleAssistant, msgs[1].Role)
			assert.Equal(t, "An answer", msgs[1].Text)
			assert.False(t, c.Processing())
			assert.True(t, c.InputEnabled())

			require.Len(t, asker.calls, 1)
			assert.Equal(t, 3, asker.calls[0].NResults)
		})
	}
}

func TestSubmitQuestion_NormalizesToNFC(t *testing.T) {
	c := newController()
	asker := &fakeAsker{result: query.Answer{Text: "ok"}}

	c.SubmitQuestion(context.Background(), asker, "Cafe\u0301?")
	require.Len(t, asker.calls, 1)
	assert.Equal(t, "Caf\u00e9?", asker.calls[0].Question)
	assert.Equal(t, "Caf\u00e9?", c.Messages()[0].Text)
}

func TestSubmitQuestion_RejectsBlank(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		c := newController()
		asker := &fakeAsker{result: query.Answer{Text: "unused"}}

		assert.False(t, c.SubmitQuestion(context.Background(), asker, input))
		assert.Zero(t, c.TranscriptLen())
		assert.Empty(t, asker.calls)
		assert.False(t, c.Processing())
	}
}

func TestSubmitQuestion_GateBlocksNestedSubmission(t *testing.T) {
	c := newController()
	inner := &fakeAsker{result: query.Answer{Text: "inner"}}

	var nestedAccepted bool
	var lenDuring int
	outer := &fakeAsker{result: query.Answer{Text: "outer"}}
	outer.onAsk = func() {
		assert.True(t, c.Processing())
		assert.False(t, c.InputEnabled())
		lenDuring = c.TranscriptLen()
		nestedAccepted = c.SubmitQuestion(context.Background(), inner, "second question")
	}

	require.True(t, c.SubmitQuestion(context.Background(), outer, "first question"))

	assert.False(t, nestedAccepted)
	assert.Empty(t, inner.calls, "no network call while busy")
	assert.Equal(t, 1, lenDuring)
	assert.Equal(t, 2, c.TranscriptLen())
}

func TestSubmitQuestion_AnswerSourcesAreCappedAndTruncated(t *testing.T) {
	c := newController()
	long := strings.Repeat("a", 120)
	asker := &fakeAsker{result: query.Answer{
		Text: "X",
		Sources: []model.SourceSnippet{
			{Content: long, Metadata: map[string]any{"section": "skills"}},
			{Content: "short"},
			{Content: "third is dropped"},
		},
	}}

	c.SubmitQuestion(context.Background(), asker, "q")

	reply := c.Messages()[1]
	assert.Equal(t, "X", reply.Text)
	require.Len(t, reply.Sources, 2)
	assert.Equal(t, strings.Repeat("a", 80)+"...", reply.Sources[0].Content)
	assert.LessOrEqual(t, len([]rune(reply.Sources[0].Content)), 83)
	assert.Equal(t, "skills", reply.Sources[0].Metadata["section"])
	assert.Equal(t, "short...", reply.Sources[1].Content)
}

func TestSubmitQuestion_ApplicationError(t *testing.T) {
	c := newController()
	asker := &fakeAsker{result: query.NewApplicationFailure("bad request")}

	c.SubmitQuestion(context.Background(), asker, "q")

	reply := c.Messages()[1]
	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.Equal(t, model.KindApplicationError, reply.Kind)
	assert.Equal(t, "Sorry, I encountered an error: bad request", reply.Text)
	assert.False(t, c.Processing())
}

func TestSubmitQuestion_TransportErrorHidesCause(t *testing.T) {
	c := newController()
	cause := errors.New("dial tcp 127.0.0.1:5000: connect: connection refused")
	asker := &fakeAsker{result: query.NewTransportFailure(cause)}

	c.SubmitQuestion(context.Background(), asker, "q")

	reply := c.Messages()[1]
	assert.Equal(t, model.KindTransportError, reply.Kind)
	assert.Equal(t, TransportErrorText, reply.Text)
	assert.NotContains(t, reply.Text, "connection refused")
	assert.False(t, c.Processing())
}

func TestSubmitQuestion_RecoversFromPanic(t *testing.T) {
	c := newController()
	asker := &fakeAsker{panicWith: "boom"}

	assert.NotPanics(t, func() {
		assert.True(t, c.SubmitQuestion(context.Background(), asker, "q"))
	})

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, TransportErrorText, msgs[1].Text)
	assert.False(t, c.Processing())
}

func TestSubmitQuestion_NilResultIsTransportError(t *testing.T) {
	c := newController()
	c.SubmitQuestion(context.Background(), &fakeAsker{}, "q")
	assert.Equal(t, TransportErrorText, c.Messages()[1].Text)
}

func TestTranscriptAlternatesAcrossSubmissions(t *testing.T) {
	c := newController()
	results := []query.Result{
		query.Answer{Text: "one"},
		query.NewApplicationFailure("nope"),
		query.NewTransportFailure(errors.New("down")),
	}
	for i, r := range results {
		c.SubmitQuestion(context.Background(), &fakeAsker{result: r}, "question "+string(rune('A'+i)))
	}

	msgs := c.Messages()
	require.Len(t, msgs, 6)
	for i, msg := range msgs {
		if i%2 == 0 {
			assert.Equal(t, model.RoleUser, msg.Role)
		} else {
			assert.Equal(t, model.RoleAssistant, msg.Role)
		}
	}
	assert.Equal(t, "question A", msgs[0].Text)
	assert.Equal(t, "question C", msgs[4].Text)
}

// =============================================================================
// BEGIN / COMPLETE
// =============================================================================

func TestBeginComplete(t *testing.T) {
	c := newController()
	rev := c.ScrollRevision()

	req, ok := c.Begin("  hello ")
	require.True(t, ok)
	assert.Equal(t, query.Request{Question: "hello", NResults: 3}, req)
	assert.True(t, c.Processing())
	assert.Greater(t, c.ScrollRevision(), rev, "pending indicator scrolls")

	_, ok = c.Begin("again")
	assert.False(t, ok)
	assert.Equal(t, 1, c.TranscriptLen())

	rev = c.ScrollRevision()
	msg, ok := c.Complete(query.Answer{Text: "hi"})
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Text)
	assert.False(t, c.Processing())
	assert.Greater(t, c.ScrollRevision(), rev)

	_, ok = c.Complete(query.Answer{Text: "late"})
	assert.False(t, ok, "nothing in flight")
	assert.Equal(t, 2, c.TranscriptLen())
}

func TestCompleteAppliesWhileClosed(t *testing.T) {
	c := newController()
	c.Open()
	c.AnimationDone(c.AnimationSeq())

	_, ok := c.Begin("q")
	require.True(t, ok)
	c.Close()
	c.AnimationDone(c.AnimationSeq())
	require.Equal(t, VisibilityClosed, c.Visibility())

	_, ok = c.Complete(query.Answer{Text: "arrived late"})
	assert.True(t, ok)
	assert.Equal(t, "arrived late", c.Messages()[1].Text)
}

// =============================================================================
// VISIBILITY
// =============================================================================

func TestToggleRoundTrip(t *testing.T) {
	c := newController()
	require.Equal(t, VisibilityClosed, c.Visibility())
	assert.False(t, c.Visible())

	c.Toggle()
	assert.Equal(t, VisibilityOpening, c.Visibility())
	assert.True(t, c.AnimationDone(c.AnimationSeq()))
	assert.Equal(t, VisibilityOpen, c.Visibility())
	assert.True(t, c.TakeFocusRequest())
	assert.False(t, c.TakeFocusRequest(), "focus request is consumed")

	c.Toggle()
	assert.Equal(t, VisibilityClosing, c.Visibility())
	assert.True(t, c.Visible(), "window stays drawn while closing")
	assert.True(t, c.AnimationDone(c.AnimationSeq()))
	assert.Equal(t, VisibilityClosed, c.Visibility())
	assert.False(t, c.TakeFocusRequest())
}

func TestToggleDuringAnimation(t *testing.T) {
	c := newController()

	c.Toggle()
	opening := c.AnimationSeq()
	c.Toggle()
	assert.Equal(t, VisibilityClosing, c.Visibility())

	assert.False(t, c.AnimationDone(opening), "stale tick ignored")
	assert.Equal(t, VisibilityClosing, c.Visibility())

	c.Toggle()
	assert.Equal(t, VisibilityOpening, c.Visibility())
	assert.True(t, c.AnimationDone(c.AnimationSeq()))
	assert.Equal(t, VisibilityOpen, c.Visibility())
}

func TestOpenCloseAreIdempotent(t *testing.T) {
	c := newController()

	assert.False(t, c.Close())
	assert.True(t, c.Open())
	seq := c.AnimationSeq()
	assert.False(t, c.Open(), "already opening")
	assert.Equal(t, seq, c.AnimationSeq())

	c.AnimationDone(seq)
	assert.False(t, c.Open())
	assert.True(t, c.Close())
	assert.False(t, c.Close())
	assert.False(t, c.Session().IsOpen())
}

func TestAnimationDoneWhenSettled(t *testing.T) {
	c := newController()
	assert.False(t, c.AnimationDone(c.AnimationSeq()))
	assert.Equal(t, VisibilityClosed, c.Visibility())
}

func TestVisibilityDoesNotTouchGate(t *testing.T) {
	c := newController()
	c.Begin("q")
	c.Toggle()
	c.AnimationDone(c.AnimationSeq())
	assert.True(t, c.Processing())
	assert.Equal(t, 1, c.TranscriptLen())
}

func TestVisibilityString(t *testing.T) {
	assert.Equal(t, "closed", VisibilityClosed.String())
	assert.Equal(t, "opening", VisibilityOpening.String())
	assert.Equal(t, "open", VisibilityOpen.String())
	assert.Equal(t, "closing", VisibilityClosing.String())
}

// =============================================================================
// QUICK ACTIONS
// =============================================================================

func TestUseQuickAction(t *testing.T) {
	c := newController()

	req, ok := c.UseQuickAction(1)
	require.True(t, ok)
	assert.Equal(t, "Tell me about Ishika's AI projects", req.Question)
	assert.True(t, c.QuickActions()[1].Used)
	assert.False(t, c.QuickActions()[0].Used)

	_, ok = c.UseQuickAction(0)
	assert.False(t, ok, "busy")
	assert.False(t, c.QuickActions()[0].Used, "rejected action stays available")

	c.Complete(query.Answer{Text: "done"})

	_, ok = c.UseQuickAction(1)
	assert.False(t, ok, "used once")
	_, ok = c.UseQuickAction(7)
	assert.False(t, ok)
	_, ok = c.UseQuickAction(-1)
	assert.False(t, ok)
	assert.Equal(t, 2, c.TranscriptLen())
}

func TestSubmitQuickAction(t *testing.T) {
	c := newController()
	asker := &fakeAsker{result: query.Answer{Text: "Plenty of Go"}}

	require.True(t, c.SubmitQuickAction(context.Background(), asker, 0))
	require.Len(t, asker.calls, 1)
	assert.Equal(t, c.QuickActions()[0].Question, asker.calls[0].Question)
	assert.True(t, c.QuickActions()[0].Used)
	assert.False(t, c.Processing())
	assert.Equal(t, 2, c.TranscriptLen())

	assert.False(t, c.SubmitQuickAction(context.Background(), asker, 0))
	assert.Len(t, asker.calls, 1)
}

func TestSubmitQuestion_NilAsker(t *testing.T) {
	c := newController()

	require.True(t, c.SubmitQuestion(context.Background(), nil, "anyone there?"))
	last := c.Messages()[1]
	assert.Equal(t, model.KindTransportError, last.Kind)
	assert.Equal(t, TransportErrorText, last.Text)
	assert.False(t, c.Processing())
}

func TestNextQuickAction(t *testing.T) {
	c := newController()
	assert.Equal(t, 0, c.NextQuickAction(-1))
	assert.Equal(t, 2, c.NextQuickAction(1))
	assert.Equal(t, 0, c.NextQuickAction(2))

	c.UseQuickAction(0)
	c.Complete(query.Answer{Text: "a"})
	assert.Equal(t, 1, c.NextQuickAction(2))

	c.UseQuickAction(1)
	c.Complete(query.Answer{Text: "b"})
	c.UseQuickAction(2)
	c.Complete(query.Answer{Text: "c"})
	assert.Equal(t, -1, c.NextQuickAction(0))
}

func TestQuickActionsAreCopied(t *testing.T) {
	opts := OptionsFromConfig(config.Default())
	c := New(opts)
	opts.QuickActions[0].Label = "mutated"

	actions := c.QuickActions()
	actions[1].Used = true
	assert.Equal(t, "Programming Skills", c.QuickActions()[0].Label)
	assert.False(t, c.QuickActions()[1].Used)
}

// =============================================================================
// STATUS
// =============================================================================

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name   string
		health query.Health
		state  StatusState
		text   string
	}{
		{"online with count", query.Health{Online: true, DocumentCount: intPtr(5)}, StatusOnline, "5 docs loaded"},
		{"online without count", query.Health{Online: true}, StatusOnline, "0 docs loaded"},
		{"offline", query.Health{Online: false}, StatusOffline, "Backend not connected"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newController()
			c.Begin("in flight")

			status := c.CheckStatus(context.Background(), fakeChecker{health: tc.health})

			assert.Equal(t, tc.state, status.State)
			assert.Equal(t, tc.text, c.StatusText())
			assert.True(t, c.Processing(), "status never touches the gate")
			assert.Equal(t, 1, c.TranscriptLen(), "status never touches the transcript")
		})
	}
}

func TestInitialStatus(t *testing.T) {
	c := newController()
	assert.Equal(t, StatusChecking, c.Status().State)
	assert.Equal(t, "Ask about Ishika", c.StatusText())
	assert.Equal(t, "checking", StatusChecking.String())
}

// =============================================================================
// OPTIONS
// =============================================================================

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Subject = "Ada"
	cfg.API.Origin = "https://ada.dev"
	cfg.API.ResultLimit = 4

	c := New(OptionsFromConfig(cfg))
	assert.Equal(t, "Ada", c.Subject())
	assert.Equal(t, "https://ada.dev/api", c.EndpointBase())
	assert.Equal(t, "https://ada.dev/api", c.Session().EndpointBase)
	assert.Contains(t, c.Greeting(), "Ada's AI assistant")

	req, _ := c.Begin("q")
	assert.Equal(t, 4, req.NResults)
}

func TestNewFillsDefaults(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, config.DevEndpointBase, c.EndpointBase())
	req, ok := c.Begin("q")
	require.True(t, ok)
	assert.Equal(t, 3, req.NResults)
	assert.Empty(t, c.QuickActions())
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormatSources(t *testing.T) {
	assert.Nil(t, FormatSources(nil, 2, 80))
	assert.Nil(t, FormatSources([]model.SourceSnippet{{Content: "x"}}, 0, 80))

	out := FormatSources([]model.SourceSnippet{{Content: "  héllo wörld  "}}, 2, 5)
	require.Len(t, out, 1)
	assert.Equal(t, "héllo...", out[0].Content)
}
