package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Session is an open SQL Gateway session. Statements submitted through one
// session share its configuration and catalog state.
type Session struct {
	client *Client
	id     string
	name   string
}

// ID returns the session handle.
func (s *Session) ID() string { return s.id }

// Name returns the session name the session was opened with.
func (s *Session) Name() string { return s.name }

// Configure sets one session configuration option. Later statements of the
// session see the new value.
func (s *Session) Configure(ctx context.Context, key, value string) error {
	sql := fmt.Sprintf("SET '%s' = '%s'", escapeLiteral(key), escapeLiteral(value))
	if _, err := s.Execute(ctx, sql); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Execute submits one statement and waits until its operation finishes. It
// returns the operation handle.
func (s *Session) Execute(ctx context.Context, sql string) (string, error) {
	c := s.client
	status, body, err := c.do(ctx, http.MethodPost, c.endpoint("/sessions/%s/statements", s.id), statementSubmitRequest{Statement: sql})
	if err != nil {
		return "", fmt.Errorf("failed to send SQL statement to Flink SQL Gateway: %w", err)
	}
	if status != http.StatusOK {
		c.logger.Error("statement submission failed", "status", status, "body", string(body))
		return "", fmt.Errorf("flink SQL Gateway returned status %d: %s", status, string(body))
	}
	operationHandle, err := parseOperationHandle(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse statement submit response: %w", err)
	}
	c.logger.Debug("statement submitted", "session_id", s.id, "operation", operationHandle)

	if err := s.waitOperation(ctx, operationHandle); err != nil {
		return operationHandle, err
	}
	return operationHandle, nil
}

// waitOperation polls the operation status until it reaches a final state.
func (s *Session) waitOperation(ctx context.Context, operationHandle string) error {
	c := s.client
	endpoint := c.endpoint("/sessions/%s/operations/%s/status", s.id, operationHandle)
	var opStatus, opError string
	for i := 0; i < c.MaxPolls; i++ {
		status, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to poll operation status: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("operation status returned %d: %s", status, string(body))
		}
		resp, err := parseOperationStatus(body)
		if err != nil {
			c.logger.Error("parse op status failed", "operation", operationHandle, "error", err, "body", string(body))
			return err
		}
		opStatus, opError = resp.Status, resp.Error

		switch {
		case opStatus == StatusFinished:
			return nil
		case opStatus == StatusError || opError != "":
			if details, derr := s.fetchOperationResult(ctx, operationHandle); derr == nil && details != "" {
				c.logger.Error("statement error details", "operation", operationHandle, "details", details)
				if opError == "" {
					opError = details
				}
			} else if derr != nil {
				c.logger.Warn("result detail retrieval failed", "operation", operationHandle, "error", derr)
			}
			return fmt.Errorf("%w: %s", ErrOperationFailed, opError)
		case opStatus == StatusCanceled || opStatus == StatusClosed || opStatus == StatusTimeout:
			return fmt.Errorf("%w: operation ended in state %s", ErrOperationFailed, opStatus)
		}

		if err := sleep(ctx, c.PollInterval); err != nil {
			return fmt.Errorf("context cancelled while waiting for operation status: %w", err)
		}
	}
	return fmt.Errorf("operation did not finish after %d polls, last status: %s", c.MaxPolls, opStatus)
}

// fetchOperationResult retrieves the operation result, used for error details.
// It tries the token based endpoint first (/result/0) and falls back to the
// legacy one without a token when the first answers 404. The result may show
// up slightly after the ERROR status, so a few quick attempts are made.
func (s *Session) fetchOperationResult(ctx context.Context, operationHandle string) (string, error) {
	c := s.client
	endpoints := []string{
		c.endpoint("/sessions/%s/operations/%s/result/0", s.id, operationHandle),
		c.endpoint("/sessions/%s/operations/%s/result", s.id, operationHandle),
	}
	var lastErr error
	for attempt := 0; attempt < 4; attempt++ {
		for idx, ep := range endpoints {
			status, body, err := c.do(ctx, http.MethodGet, ep, nil)
			if err != nil {
				lastErr = err
				continue
			}
			if status == http.StatusOK {
				return string(body), nil
			}
			if status == http.StatusNotFound && idx == 0 {
				continue
			}
			lastErr = fmt.Errorf("result endpoint %s returned %d", ep, status)
		}
		if err := sleep(ctx, 100*time.Millisecond); err != nil {
			return "", err
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("no result body available")
}

// Close releases the session on the gateway.
func (s *Session) Close(ctx context.Context) error {
	c := s.client
	status, body, err := c.do(ctx, http.MethodDelete, c.endpoint("/sessions/%s", s.id), nil)
	if err != nil {
		return fmt.Errorf("failed to close session %s: %w", s.id, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("closing session %s returned %d: %s", s.id, status, string(body))
	}
	c.logger.Info("session closed", "session_id", s.id)
	return nil
}

// escapeLiteral doubles single quotes for use inside a SQL string literal.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
