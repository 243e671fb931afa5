// Package apiclient provides the HTTP transport to the task server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/runoshun/tasker/internal/domain"
)

// RequestIDHeader carries a per-call ID that also appears in the log.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// Client issues JSON requests to the server's API base path.
// The bearer credential is read from the CredentialSource on every call,
// so a login or logout is honored without rebuilding the client.
// Fields are ordered to minimize memory padding.
type Client struct {
	http    *http.Client
	creds   domain.CredentialSource
	logger  domain.Logger
	baseURL string
}

// New creates a Client for baseURL (e.g. "http://localhost:5000/api").
// creds may be nil for unauthenticated use. timeout <= 0 uses domain.DefaultTimeout.
func New(baseURL string, timeout time.Duration, creds domain.CredentialSource, logger domain.Logger) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
		logger:  logger,
	}
}

// NewWithHTTPClient creates a Client with a custom http.Client.
// This is useful for testing.
func NewWithHTTPClient(baseURL string, hc *http.Client, creds domain.CredentialSource, logger domain.Logger) *Client {
	c := New(baseURL, hc.Timeout, creds, logger)
	c.http = hc
	return c
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request and decodes a 2xx JSON response into out (may be nil).
// Non-2xx responses return *domain.TransportError; connectivity failures and
// timeouts return *domain.NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.Credential(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug(0, "http", fmt.Sprintf("%s %s (request %s)", method, path, requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(0, "http", fmt.Sprintf("%s %s failed (request %s): %v", method, path, requestID, err))
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		tErr := &domain.TransportError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
		c.logger.Warn(0, "http", fmt.Sprintf("%s %s (request %s): %v", method, path, requestID, tErr))
		return tErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorBody covers the message fields the server uses in error responses.
type errorBody struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Error   string `json:"error"`
}

// errorMessage extracts a human-readable message from an error response body.
func errorMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.Msg != "":
			return body.Msg
		case body.Error != "":
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
