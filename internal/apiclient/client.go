// Package apiclient is the typed HTTP client for the site's JSON API. It is
// the sole channel through which the widgets observe backend failures: every
// non-2xx response surfaces as a *StatusError carrying the raw body.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pawsteps/platform/pkg/logging"
)

// StatusError is returned for non-2xx responses. Body holds the raw
// response bytes so callers can extract a server-supplied message.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: request failed with status %s", e.Status)
}

// IsStatus reports whether err is a StatusError with the given code. The ban
// manager and the admin reply flow special-case 400 through this.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// ResolveErrorMessage extracts the server's "error" field from a failed
// response, falling back to the supplied message when the error carries no
// parseable body.
func ResolveErrorMessage(err error, fallback string) string {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return fallback
	}
	var payload struct {
		Error string `json:"error"`
	}
	if jsonErr := json.Unmarshal(statusErr.Body, &payload); jsonErr != nil {
		return fallback
	}
	if payload.Error == "" {
		return fallback
	}
	return payload.Error
}

// Client talks to the site API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("apiclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		c.logger.Debug("request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: raw}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}
