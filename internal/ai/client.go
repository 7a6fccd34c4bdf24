// Package ai is the HTTP client for the external responder service.
package ai

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
)

// ErrUnavailable covers every failure mode of the responder: unreachable,
// non-2xx status, malformed body, timeout. Callers fall back on it.
var ErrUnavailable = errors.New("ai responder unavailable")

// Client calls the external responder service.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a responder client. An empty baseURL yields a client
// whose Reply always fails, which the relay turns into the fallback text.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

type replyRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type replyResponse struct {
	Response string `json:"response"`
}

// Reply sends the user's text to the responder and returns its reply.
func (c *Client) Reply(ctx context.Context, userID, message string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("%w: not configured", ErrUnavailable)
	}

	body, err := json.Marshal(replyRequest{UserID: userID, Message: message})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var reply replyResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if strings.TrimSpace(reply.Response) == "" {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	return reply.Response, nil
}
