// Package alpha adapts the capability contracts to the combined
// auth+database+storage service. One Client handle is constructed per
// deployment and shared across all three capabilities.
package alpha

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
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/provider"
)

// Client is the shared underlying handle: endpoint, project binding and the
// active session token. It is constructed once and reused; the session token
// is the only mutable state.
type Client struct {
	endpoint  string
	projectID string
	httpc     *http.Client
	logger    *zap.Logger

	mu      sync.RWMutex
	session string
}

// NewClient creates the shared service handle.
func NewClient(endpoint, projectID string, logger *zap.Logger) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		projectID: projectID,
		httpc:     &http.Client{},
		logger:    logger,
	}
}

// Endpoint returns the configured service endpoint.
func (c *Client) Endpoint() string { return c.endpoint }

// ProjectID returns the configured project binding.
func (c *Client) ProjectID() string { return c.projectID }

func (c *Client) setSession(token string) {
	c.mu.Lock()
	c.session = token
	c.mu.Unlock()
}

func (c *Client) sessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// apiError is the service's wire error shape.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// do performs one JSON API call. Non-2xx responses are mapped to the nearest
// taxonomy kind without losing the service message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

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
	c.decorate(req)

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

// doMultipart performs one multipart API call (file uploads).
func (c *Client) doMultipart(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.decorate(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(http.MethodPost, path, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("X-Alpha-Project", c.projectID)
	if token := c.sessionToken(); token != "" {
		req.Header.Set("X-Alpha-Session", token)
	}
}

func (c *Client) statusError(method, path string, resp *http.Response) error {
	var ae apiError
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&ae); err == nil && ae.Message != "" {
		msg = ae.Message
	}

	c.logger.Debug("alpha call failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, provider.ErrUnauthenticated)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, provider.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, provider.ErrConflict)
	default:
		return fmt.Errorf("%s %s: %s (status %d)", method, path, msg, resp.StatusCode)
	}
}

// encodeQueries renders the common query vocabulary in the service's
// repeated queries[] parameter syntax, one JSON directive per value.
func encodeQueries(queries []provider.Query) url.Values {
	if len(queries) == 0 {
		return nil
	}
	values := url.Values{}
	for _, q := range queries {
		data, err := json.Marshal(q)
		if err != nil {
			continue
		}
		values.Add("queries[]", string(data))
	}
	return values
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
