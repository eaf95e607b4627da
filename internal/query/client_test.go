// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: server.URL + "/api/"})
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClientWithConfig(nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestNewClientWithConfig_TrimsTrailingSlash(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "https://example.com/api/"})
	assert.Equal(t, "https://example.com/api", c.BaseURL())
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestAsk_Success(t *testing.T) {
	var got Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"I know Python.","sources":[{"content":"Python (Expert)","score":0.9},{"content":"SQL"}]}`))
	})

	result := client.Ask(context.Background(), "What languages?", 3)

	answer, ok := result.(Answer)
	require.True(t, ok, "result = %#v", result)
	assert.Equal(t, "I know Python.", answer.Text)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "Python (Expert)", answer.Sources[0].Content)
	assert.Equal(t, 0.9, answer.Sources[0].Metadata["score"])

	assert.Equal(t, "What languages?", got.Question)
	assert.Equal(t, 3, got.NResults)
}

func TestAsk_SuccessWithoutSources(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"Hello!","model":"gpt-4o-mini","status":"success"}`))
	})

	answer, ok := client.Ask(context.Background(), "hi", 3).(Answer)
	require.True(t, ok)
	assert.Equal(t, "Hello!", answer.Text)
	assert.Empty(t, answer.Sources)
}

func TestAsk_ApplicationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad request"}`))
	})

	failure, ok := client.Ask(context.Background(), "q", 3).(Failure)
	require.True(t, ok)
	assert.Equal(t, FailureApplication, failure.Kind)
	assert.Equal(t, "bad request", failure.Reason)
	var clientErr *ClientError
	require.ErrorAs(t, failure.Err, &clientErr)
	assert.Equal(t, ErrTypeApplication, clientErr.Type)
}

func TestAsk_ErrorBodyWithoutMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"debug":null}`))
	})

	failure, ok := client.Ask(context.Background(), "q", 3).(Failure)
	require.True(t, ok)
	assert.Equal(t, FailureApplication, failure.Kind)
	assert.Equal(t, "500 Internal Server Error", failure.Reason)
}

func TestAsk_TransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errType ErrorType
	}{
		{"malformed success body", http.StatusOK, `{"answer":`, ErrTypeInvalidResponse},
		{"null success body", http.StatusOK, `null`, ErrTypeInvalidResponse},
		{"empty success object", http.StatusOK, `{}`, ErrTypeInvalidResponse},
		{"sources without answer", http.StatusOK, `{"sources":[]}`, ErrTypeInvalidResponse},
		{"null answer", http.StatusOK, `{"answer":null}`, ErrTypeInvalidResponse},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`, ErrTypeInvalidResponse},
		{"empty error body", http.StatusServiceUnavailable, ``, ErrTypeInvalidResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			failure, ok := client.Ask(context.Background(), "q", 3).(Failure)
			require.True(t, ok)
			assert.Equal(t, FailureTransport, failure.Kind)

			var clientErr *ClientError
			require.ErrorAs(t, failure.Err, &clientErr)
			assert.Equal(t, tc.errType, clientErr.Type)
		})
	}
}

func TestAsk_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: url})
	failure, ok := client.Ask(context.Background(), "q", 3).(Failure)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, failure.Kind)
	assert.True(t, IsNotReachable(failure.Err))
}

func TestAsk_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.httpClient.Timeout = 50 * time.Millisecond

	failure, ok := client.Ask(context.Background(), "q", 3).(Failure)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, failure.Kind)
	assert.True(t, IsTimeout(failure.Err), "err = %v", failure.Err)
}

func TestAsk_ResponseTooLarge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"`))
		w.Write([]byte(strings.Repeat("x", MaxResponseSize)))
		w.Write([]byte(`"}`))
	})

	failure, ok := client.Ask(context.Background(), "q", 3).(Failure)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, failure.Kind)
}

func TestAsk_SingleShot(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"try later"}`))
	})

	client.Ask(context.Background(), "q", 3)
	assert.Equal(t, int32(1), calls.Load(), "failed requests must not be retried")
}

func TestAsk_RateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"answer":"ok"}`))
	}))
	t.Cleanup(server.Close)
	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL + "/api", RequestsPerMinute: 1})

	for i := 0; i < RateBurst; i++ {
		_, ok := client.Ask(context.Background(), "q", 3).(Answer)
		require.True(t, ok, "request %d within burst", i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	failure, ok := client.Ask(ctx, "q", 3).(Failure)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, failure.Kind)
	assert.True(t, IsTimeout(failure.Err))
	assert.Equal(t, int32(RateBurst), calls.Load(), "throttled request never reaches the backend")
}

func TestNewClientWithConfig_NoLimiterByDefault(t *testing.T) {
	assert.Nil(t, NewClientWithConfig(nil).limiter)
	assert.NotNil(t, NewClientWithConfig(&ClientConfig{RequestsPerMinute: 30}).limiter)
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestHealth(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		online    bool
		documents int
		hasCount  bool
	}{
		{"with count", http.StatusOK, `{"document_count":5}`, true, 5, true},
		{"without count", http.StatusOK, `{"status":"ready","version":"3.0"}`, true, 0, false},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, false, 0, false},
		{"malformed body", http.StatusOK, `not json`, false, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/stats", r.URL.Path)
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			health := client.Health(context.Background())
			assert.Equal(t, tc.online, health.Online)
			assert.Equal(t, tc.documents, health.Documents())
			assert.Equal(t, tc.hasCount, health.DocumentCount != nil)
		})
	}
}

func TestHealth_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	health := NewClientWithConfig(&ClientConfig{BaseURL: url}).Health(context.Background())
	assert.False(t, health.Online)
}

// =============================================================================
// ERROR HELPER TESTS
// =============================================================================

func TestClientError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: cause}

	assert.Equal(t, "request timed out: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsTimeout(err))
	assert.False(t, IsNotReachable(err))
	assert.False(t, IsTimeout(context.Canceled))
}

func TestNewTransportFailure_WrapsForeignErrors(t *testing.T) {
	cause := errors.New("asker panicked")
	failure := NewTransportFailure(cause)

	assert.Equal(t, FailureTransport, failure.Kind)
	assert.Equal(t, "asker panicked", failure.Reason)
	var clientErr *ClientError
	require.ErrorAs(t, failure.Err, &clientErr)
	assert.Equal(t, ErrTypeUnknown, clientErr.Type)
	assert.ErrorIs(t, failure.Err, cause)

	failure = NewTransportFailure(ErrTimeout)
	assert.Same(t, ErrTimeout, failure.Err)

	failure = NewTransportFailure(nil)
	require.ErrorAs(t, failure.Err, &clientErr)
	assert.Equal(t, ErrTypeUnknown, clientErr.Type)
}

func TestFailureKindString(t *testing.T) {
	assert.Equal(t, "application", FailureApplication.String())
	assert.Equal(t, "transport", FailureTransport.String())
}
