// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"errors"

	"github.com/jeranaias/folio-tui/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// Request is the body of POST {base}/query.
type Request struct {
	Question string `json:"question"`
	NResults int    `json:"n_results"`
}

// answerResponse is the 2xx body of POST {base}/query. A missing or null
// answer makes the body unusable.
type answerResponse struct {
	Answer  *string               `json:"answer"`
	Sources []model.SourceSnippet `json:"sources"`
}

// errorResponse is the non-2xx body of either endpoint.
type errorResponse struct {
	Error *string `json:"error"`
}

// statsResponse is the 2xx body of GET {base}/stats.
type statsResponse struct {
	DocumentCount *int `json:"document_count"`
}

// =============================================================================
// RESULT VARIANT
// =============================================================================

// Result is the outcome of one Ask call: either Answer or Failure.
type Result interface {
	isResult()
}

// Answer is a successful reply from the backend.
type Answer struct {
	Text    string
	Sources []model.SourceSnippet
}

func (Answer) isResult() {}

// FailureKind separates backend-reported errors from transport problems.
type FailureKind int

const (
	// FailureApplication means the backend answered with {"error": ...}.
	FailureApplication FailureKind = iota
	// FailureTransport means no usable response arrived.
	FailureTransport
)

// String returns the kind name.
func (k FailureKind) String() string {
	if k == FailureApplication {
		return "application"
	}
	return "transport"
}

// Failure is an unsuccessful Ask. Reason is the backend's message for
// application failures and a short diagnostic for transport failures.
// Err keeps the underlying error for logging.
type Failure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (Failure) isResult() {}

// NewApplicationFailure builds the failure for a backend {"error": reason}.
func NewApplicationFailure(reason string) Failure {
	return Failure{
		Kind:   FailureApplication,
		Reason: reason,
		Err:    &ClientError{Type: ErrTypeApplication, Message: reason},
	}
}

// NewTransportFailure builds the failure for err. Errors that are not a
// *ClientError are wrapped as ErrTypeUnknown.
func NewTransportFailure(err error) Failure {
	reason := "transport failure"
	if err != nil {
		reason = err.Error()
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		err = &ClientError{Type: ErrTypeUnknown, Message: "transport failure", Cause: err}
	}
	return Failure{Kind: FailureTransport, Reason: reason, Err: err}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health is the outcome of one status check. DocumentCount is nil when the
// backend did not report one.
type Health struct {
	Online        bool
	DocumentCount *int
}

// Documents returns the reported document count, or 0 when absent.
func (h Health) Documents() int {
	if h.DocumentCount == nil {
		return 0
	}
	return *h.DocumentCount
}
