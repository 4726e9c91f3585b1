package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jpalmerr/todoapi/internal/store"
)

const maxResponseBodySize = 1 << 20 // 1MB

const (
	defaultTimeout         = 10 * time.Second
	defaultMaxIdleConns    = 10
	defaultIdleConnTimeout = 60 * time.Second
)

// APIError is returned when the server answers with a failure envelope.
type APIError struct {
	// StatusCode is the HTTP status code (e.g., 400, 404).
	StatusCode int

	// Message is the envelope's error string.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// envelope is the wire form of every API response.
type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// Client talks to a running todo API over HTTP.
//
// Client uses per-request timeouts via context rather than a global timeout.
// Response bodies are limited to 1MB to prevent memory issues.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a [Client] for the API rooted at baseURL
// (e.g. "http://localhost:3000"). A zero timeout uses 10 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    defaultMaxIdleConns,
				IdleConnTimeout: defaultIdleConnTimeout,
			},
		},
	}
}

// List returns all todos in insertion order.
func (c *Client) List(ctx context.Context) ([]store.Todo, error) {
	var todos []store.Todo
	if _, err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Get returns a single todo.
func (c *Client) Get(ctx context.Context, id int) (store.Todo, error) {
	var todo store.Todo
	_, err := c.do(ctx, http.MethodGet, todoPath(id), nil, &todo)
	return todo, err
}

// Create adds a todo with the given text.
func (c *Client) Create(ctx context.Context, text string) (store.Todo, error) {
	var todo store.Todo
	_, err := c.do(ctx, http.MethodPost, "/api/todos", map[string]string{"text": text}, &todo)
	return todo, err
}

// Update sends a partial update. Nil fields are omitted from the body.
func (c *Client) Update(ctx context.Context, id int, text *string, done *bool) (store.Todo, error) {
	body := struct {
		Text *string `json:"text,omitempty"`
		Done *bool   `json:"done,omitempty"`
	}{Text: text, Done: done}

	var todo store.Todo
	_, err := c.do(ctx, http.MethodPut, todoPath(id), body, &todo)
	return todo, err
}

// Toggle flips a todo's done flag.
func (c *Client) Toggle(ctx context.Context, id int) (store.Todo, error) {
	var todo store.Todo
	_, err := c.do(ctx, http.MethodPut, todoPath(id)+"/toggle", nil, &todo)
	return todo, err
}

// Delete removes a todo and returns the removed record.
func (c *Client) Delete(ctx context.Context, id int) (store.Todo, error) {
	var todo store.Todo
	_, err := c.do(ctx, http.MethodDelete, todoPath(id), nil, &todo)
	return todo, err
}

// ClearCompleted removes all done todos and returns the server's message.
func (c *Client) ClearCompleted(ctx context.Context) (string, error) {
	env, err := c.do(ctx, http.MethodDelete, "/api/todos/completed/clear", nil, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// do performs a request and decodes the envelope. When out is non-nil the
// envelope's data is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return envelope{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return envelope{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("invalid response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return env, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env, fmt.Errorf("invalid response data: %w", err)
		}
	}
	return env, nil
}

func todoPath(id int) string {
	return "/api/todos/" + strconv.Itoa(id)
}
