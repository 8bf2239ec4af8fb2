// Package bookingapi is the HTTP client for the remote booking backend. It is
// a thin gateway: it never interprets workflow rules, it only moves payloads
// and surfaces the server's answer verbatim.
package bookingapi

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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound matches any RemoteError carrying a 404.
var ErrNotFound = errors.New("booking not found")

// RemoteError is a non-success answer from the gateway. Message carries the
// server-provided text verbatim for display; it is never retried here.
type RemoteError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway: %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Conflict reports whether the server rejected a mutation against a stale
// status. Callers surface this, they do not retry blindly.
func (e *RemoteError) Conflict() bool {
	return e.StatusCode == http.StatusConflict
}

// errorEnvelope is the backend's error body shape.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func New(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Logger:     log,
	}
}

// doJSON runs one request against the gateway. bearer may be empty for the
// public token-scoped routes.
func (c *Client) doJSON(ctx context.Context, method, path, bearer string, reqBody, respBody any) (int, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.BaseURL == "" {
		return 0, fmt.Errorf("missing gateway base url")
	}

	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := &RemoteError{StatusCode: resp.StatusCode, Message: string(b)}
		var env errorEnvelope
		if json.Unmarshal(b, &env) == nil && env.Error.Message != "" {
			rerr.Code = env.Error.Code
			rerr.Message = env.Error.Message
		}
		if c.Logger != nil {
			c.Logger.Warn("gateway rejected request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("code", rerr.Code))
		}
		return resp.StatusCode, rerr
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			// Malformed success payload: fail loudly with body context rather
			// than let a partial record into the cache.
			return resp.StatusCode, fmt.Errorf("decode gateway response: %w body=%s", err, string(b))
		}
	}

	return resp.StatusCode, nil
}
