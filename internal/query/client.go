// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the query client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeInvalidResponse
	ErrTypeApplication
)

// Sentinel errors for easy checking.
var (
	ErrNotReachable = &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is the local development backend.
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultTimeout bounds a single request. The widget adds no timeout
	// of its own; this is the transport's.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 4 * 1024 * 1024

	// RateBurst is how many requests may go out back to back before
	// RequestsPerMinute applies.
	RateBurst = 5
)

// ClientConfig holds configuration options for the query client.
type ClientConfig struct {
	// BaseURL is the endpoint base, e.g. https://example.com/api
	BaseURL string

	// Timeout for each request (default: 60s)
	Timeout time.Duration

	// UserAgent sent with every request
	UserAgent string

	// RequestsPerMinute throttles requests; 0 means unlimited.
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: "folio/0.1",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the question-answering backend.
//
// The Client holds no per-request state and is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the default local backend.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}

	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	c := &Client{
		config: &cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), RateBurst)
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// BaseURL returns the endpoint base this client targets.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// ASK
// =============================================================================

// Ask sends one question and returns an Answer or a Failure.
func (c *Client) Ask(ctx context.Context, question string, resultLimit int) Result {
	body, err := json.Marshal(Request{Question: question, NResults: resultLimit})
	if err != nil {
		return NewTransportFailure(&ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return NewTransportFailure(&ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err})
	}
	req.Header.Set("Content-Type", "application/json")

	status, data, err := c.do(req)
	if err != nil {
		return NewTransportFailure(err)
	}

	if status >= 200 && status < 300 {
		var answer answerResponse
		if err := json.Unmarshal(data, &answer); err != nil {
			return NewTransportFailure(&ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode answer", Cause: err})
		}
		if answer.Answer == nil {
			return NewTransportFailure(&ClientError{Type: ErrTypeInvalidResponse, Message: "response has no answer"})
		}
		return Answer{Text: *answer.Answer, Sources: answer.Sources}
	}

	var apiErr errorResponse
	if err := json.Unmarshal(data, &apiErr); err != nil {
		return NewTransportFailure(&ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: fmt.Sprintf("unexpected status %d with unreadable body", status),
			Cause:   err,
		})
	}
	if apiErr.Error == nil || *apiErr.Error == "" {
		return NewApplicationFailure(fmt.Sprintf("%d %s", status, http.StatusText(status)))
	}
	return NewApplicationFailure(*apiErr.Error)
}

// =============================================================================
// HEALTH
// =============================================================================

// Health checks GET {base}/stats. Anything but a readable 2xx is offline.
func (c *Client) Health(ctx context.Context) Health {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/stats", nil)
	if err != nil {
		return Health{Online: false}
	}

	status, data, err := c.do(req)
	if err != nil {
		log.Printf("Status check failed: %v", err)
		return Health{Online: false}
	}
	if status < 200 || status >= 300 {
		return Health{Online: false}
	}

	var stats statsResponse
	if err := json.Unmarshal(data, &stats); err != nil {
		log.Printf("Status check returned unreadable body: %v", err)
		return Health{Online: false}
	}
	return Health{Online: true, DocumentCount: stats.DocumentCount}
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs req and reads the body. A non-nil error is always a
// *ClientError describing a transport problem.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return 0, nil, &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
		}
	}

	// Bodies may contain visitor questions; only the route is logged.
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return 0, nil, &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
		}
		return 0, nil, &ClientError{Type: ErrTypeConnection, Message: ErrNotReachable.Message, Cause: err}
	}
	defer drainAndClose(resp.Body)

	log.Printf("API Response: %d (%v)", resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		if isTimeout(err) {
			return 0, nil, &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
		}
		return 0, nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}
	if len(data) > MaxResponseSize {
		return 0, nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "response exceeds size limit"}
	}
	return resp.StatusCode, data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return false
}

// IsNotReachable checks if an error means the backend could not be reached.
func IsNotReachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConnection
	}
	return false
}

func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
