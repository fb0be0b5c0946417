// Package apiclient provides a client for the activities HTTP API.
//
// Example usage:
//
//	client := apiclient.New("http://localhost:5000/api", apiclient.WithTimeout(5*time.Second))
//	activities, err := client.List(ctx)
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nomis52/reactivities/activity"
)

const (
	// DefaultBaseURL is where the activities API listens in development.
	DefaultBaseURL = "http://localhost:5000/api"
	// DefaultTimeout bounds each request.
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 4096
)

// ErrRequestFailed is wrapped by every error the client returns.
var ErrRequestFailed = errors.New("request failed")

// StatusError is returned when the API responds with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap makes StatusError match ErrRequestFailed.
func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}

// Client is an activities API client.
// Use New() to create a new client for a given base URL.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for request debugging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new Client for the given base URL, e.g. "http://localhost:5000/api".
// An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List returns all activities.
func (c *Client) List(ctx context.Context) ([]activity.Activity, error) {
	var activities []activity.Activity
	if err := c.do(ctx, http.MethodGet, "/activities", nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Details returns a single activity.
func (c *Client) Details(ctx context.Context, id string) (activity.Activity, error) {
	var a activity.Activity
	if err := c.do(ctx, http.MethodGet, activityPath(id), nil, &a); err != nil {
		return activity.Activity{}, err
	}
	return a, nil
}

// Create creates an activity.
func (c *Client) Create(ctx context.Context, a activity.Activity) error {
	return c.do(ctx, http.MethodPost, "/activities", a, nil)
}

// Update replaces an existing activity.
func (c *Client) Update(ctx context.Context, a activity.Activity) error {
	return c.do(ctx, http.MethodPut, activityPath(a.ID), a, nil)
}

// Delete deletes an activity.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, activityPath(id), nil, nil)
}

func activityPath(id string) string {
	return "/activities/" + url.PathEscape(id)
}

// do sends a request with an optional JSON body and decodes an optional JSON response.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %w", ErrRequestFailed, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s response: %w", ErrRequestFailed, method, path, err)
	}
	return nil
}
