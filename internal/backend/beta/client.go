// Package beta adapts the auth and database contracts to the auth+database
// service. The vendor has no storage surface; the factory never constructs a
// beta storage provider.
package beta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/provider"
)

// Client is the shared underlying handle for both capabilities: endpoint,
// project, API key and the bearer token from the last login.
type Client struct {
	endpoint  string
	projectID string
	apiKey    string
	httpc     *http.Client
	logger    *zap.Logger

	mu      sync.RWMutex
	idToken string
}

// NewClient creates the shared service handle.
func NewClient(endpoint, projectID, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		projectID: projectID,
		apiKey:    apiKey,
		httpc:     &http.Client{},
		logger:    logger,
	}
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.idToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idToken
}

// wireError is the service's error envelope.
type wireError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// call performs one JSON API call. The API key rides as a query parameter,
// the session token as a bearer header.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	u := c.endpoint + path
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	u += sep + "key=" + url.QueryEscape(c.apiKey)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(method, path, resp)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) statusError(method, path string, resp *http.Response) error {
	var we wireError
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&we); err == nil && we.Error.Message != "" {
		msg = we.Error.Message
	}

	c.logger.Debug("beta call failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", msg))

	// Auth failures come back as 400 with a symbolic message rather than a
	// 401, so the message is part of the mapping.
	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_ID_TOKEN"),
		strings.HasPrefix(msg, "TOKEN_EXPIRED"):
		return fmt.Errorf("%s: %w", msg, provider.ErrUnauthenticated)
	case strings.HasPrefix(msg, "EMAIL_EXISTS"), resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, provider.ErrConflict)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, provider.ErrNotFound)
	default:
		return fmt.Errorf("%s %s: %s (status %d)", method, path, msg, resp.StatusCode)
	}
}
