// Package api is the outbound HTTP adapter. Every backend call in the client
// goes through Client, which joins the configured base URL, attaches the
// bearer token when one exists and maps non-2xx answers onto the typed error
// taxonomy. It does not retry, refresh tokens or queue requests.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"craftfolio/internal/logging"
)

// TokenSource supplies the current access token. An empty string means the
// request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// TokenFunc adapts a plain func to TokenSource.
type TokenFunc func() string

// AccessToken implements TokenSource.
func (f TokenFunc) AccessToken() string { return f() }

// Client is the HTTP adapter. Base URL is fixed at construction.
type Client struct {
	base   string
	tokens TokenSource
	http   *http.Client
	log    *zap.Logger
}

// NewClient builds a client for the given base URL. tokens may be nil for a
// permanently unauthenticated client.
func NewClient(base string, tokens TokenSource) *Client {
	return &Client{
		base:   base,
		tokens: tokens,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    logging.Get(logging.CategoryAPI),
	}
}

// SetHTTPClient swaps the underlying http.Client; tests use this for short
// timeouts.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

var apiSuffix = regexp.MustCompile(`/api/?$`)

// Origin returns the base URL with a trailing /api prefix removed. Media
// paths are served from the origin, not from under the API prefix.
func (c *Client) Origin() string {
	return apiSuffix.ReplaceAllString(c.base, "")
}

// Get issues a GET and decodes the JSON answer into out (out may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body (body may be nil).
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE. The answer body is discarded.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, "", nil, nil)
}

// PostForm issues a multipart POST.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, out any) error {
	contentType, body, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, contentType, body, out)
}

// PatchForm issues a multipart PATCH.
func (c *Client) PatchForm(ctx context.Context, path string, form *Form, out any) error {
	contentType, body, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	return c.do(ctx, http.MethodPatch, path, contentType, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, reader, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= 300 {
		c.log.Debug("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return classifyStatus(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode answer from %s: %w", path, err)
		}
	}
	return nil
}
