// Package gateway talks to the Flink SQL Gateway REST API (v1): it opens
// sessions, submits statements and waits for their operations to finish.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	logpkg "sqlsubmit/internal/log"
	"sqlsubmit/internal/version"
)

// Operation states reported by the gateway.
const (
	StatusFinished = "FINISHED"
	StatusError    = "ERROR"
	StatusCanceled = "CANCELED"
	StatusClosed   = "CLOSED"
	StatusTimeout  = "TIMEOUT"
)

// ErrOperationFailed is wrapped by every error caused by an operation that
// ended in a failed state.
var ErrOperationFailed = errors.New("operation failed")

// --- Typed request/response structs for the SQL Gateway ---
type sessionCreateRequest struct {
	SessionName string            `json:"sessionName"`
	Properties  map[string]string `json:"properties"`
}

type sessionCreateResponse struct {
	SessionHandle string `json:"sessionHandle"`
}

type statementSubmitRequest struct {
	Statement string `json:"statement"`
}

type statementSubmitResponse struct {
	OperationHandle string `json:"operationHandle"`
}

type operationStatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// parseSessionID decodes the session creation response and returns the session handle
func parseSessionID(body []byte) (string, error) {
	var resp sessionCreateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unable to decode session response: %w", err)
	}
	if resp.SessionHandle == "" {
		return "", fmt.Errorf("sessionHandle missing in response")
	}
	return resp.SessionHandle, nil
}

// parseOperationHandle decodes the statement submission response
func parseOperationHandle(body []byte) (string, error) {
	var resp statementSubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unable to decode statement response: %w", err)
	}
	if resp.OperationHandle == "" {
		return "", fmt.Errorf("operationHandle missing in response")
	}
	return resp.OperationHandle, nil
}

// parseOperationStatus decodes the operation status response
func parseOperationStatus(body []byte) (*operationStatusResponse, error) {
	var resp operationStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unable to decode operation status: %w", err)
	}
	if resp.Status == "" {
		return nil, fmt.Errorf("status missing in operation status response")
	}
	return &resp, nil
}

// Client is a SQL Gateway REST client bound to one base URL.
type Client struct {
	baseURL string
	logger  logpkg.Logger

	// HTTPClient is used for every request; http.DefaultClient when nil.
	HTTPClient *http.Client
	// PollInterval is the delay between operation status polls.
	PollInterval time.Duration
	// MaxPolls bounds how many times an operation status is polled.
	MaxPolls int
}

// NewClient creates a client for the gateway at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logpkg.Global(),
		PollInterval: time.Second,
		MaxPolls:     30,
	}
}

// BaseURL returns the gateway root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(format string, args ...interface{}) string {
	return c.baseURL + "/" + version.GatewayAPIVersion + fmt.Sprintf(format, args...)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// do sends a request and returns the status code and the full body.
func (c *Client) do(ctx context.Context, method, url string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", "error", cerr)
		}
	}()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// WaitReady polls the sessions endpoint until it answers 200 or the timeout
// expires. Connection errors are treated as transient.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	endpoint := c.endpoint("/sessions")
	var lastErr error
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for SQL Gateway readiness: %w", ctx.Err())
		default:
		}
		status, _, err := c.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			lastErr = err
			c.logger.Warn("sql gateway readiness transient error", "error", err)
		} else if status == http.StatusOK {
			c.logger.Info("sql gateway readiness confirmed", "url", c.baseURL)
			return nil
		} else {
			lastErr = fmt.Errorf("status %d", status)
			c.logger.Debug("sql gateway readiness non-200", "status", status)
		}
		if err := sleep(ctx, 750*time.Millisecond); err != nil {
			return fmt.Errorf("context cancelled while waiting for SQL Gateway readiness: %w", err)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("unknown readiness failure")
	}
	return lastErr
}

// OpenSession creates a session with the given properties, retrying with
// exponential backoff (capped at 30s). Right after startup the gateway may
// accept connections before it can serve requests.
func (c *Client) OpenSession(ctx context.Context, name string, properties map[string]string, maxAttempts int, initialBackoff time.Duration) (*Session, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if properties == nil {
		properties = map[string]string{}
	}
	endpoint := c.endpoint("/sessions")
	payload := sessionCreateRequest{SessionName: name, Properties: properties}

	var lastErr error
	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled while creating session: %w", ctx.Err())
		default:
		}

		status, body, err := c.do(ctx, http.MethodPost, endpoint, payload)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("session creation attempt %d/%d failed: %w", attempt, maxAttempts, err)
			c.logger.Warn("session creation attempt failed", "attempt", attempt, "max", maxAttempts, "error", err)
		case status == http.StatusOK:
			id, perr := parseSessionID(body)
			if perr == nil {
				c.logger.Info("session created", "session_id", id, "name", name, "attempts", attempt)
				return &Session{client: c, id: id, name: name}, nil
			}
			lastErr = fmt.Errorf("attempt %d: session parse failure: %v body=%s", attempt, perr, string(body))
			c.logger.Warn("session parse failure", "attempt", attempt, "error", perr, "body", string(body))
		default:
			lastErr = fmt.Errorf("attempt %d: non-200 status %d: %s", attempt, status, string(body))
			c.logger.Warn("non-200 session create status", "attempt", attempt, "status", status, "body", string(body))
		}

		if attempt < maxAttempts {
			c.logger.Info("retrying session creation", "next_backoff", backoff.String(), "attempt", attempt, "max", maxAttempts)
			if err := sleep(ctx, backoff); err != nil {
				return nil, fmt.Errorf("context cancelled during backoff: %w", err)
			}
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("unknown failure creating session")
	}
	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
