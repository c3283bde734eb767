package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// TestClient provides HTTP client utilities for testing
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewTestClient creates a new test HTTP client
func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RequestOption configures HTTP requests
type RequestOption func(*http.Request)

// WithHeader adds a header to the request
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// WithQuery adds query parameters
func WithQuery(params map[string]string) RequestOption {
	return func(r *http.Request) {
		q := r.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
}

// Response wraps HTTP response with helpers
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// JSON unmarshals response body into v
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// String returns response body as string
func (r *Response) String() string {
	return string(r.Body)
}

// IsSuccess returns true if status code is 2xx
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorCode returns the code of an error envelope, or "".
func (r *Response) ErrorCode() string {
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Code
}

// Get performs HTTP GET request
func (c *TestClient) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, "", opts...)
}

// Post performs HTTP POST request with a raw body. Command payloads are
// sent verbatim so that fenced or malformed text reaches the parser.
func (c *TestClient) Post(ctx context.Context, path, body string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, opts...)
}

// Delete performs HTTP DELETE request
func (c *TestClient) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, "", opts...)
}

// do performs the actual HTTP request
func (c *TestClient) do(ctx context.Context, method, path, body string, opts ...RequestOption) (*Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// ---- Action protocol helpers ----

// RunCommands posts a command payload and decodes the report.
func (c *TestClient) RunCommands(ctx context.Context, payload string, opts ...RequestOption) (*types.ExecutionReport, error) {
	resp, err := c.Post(ctx, "/actions", payload, opts...)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("run failed: %d %s", resp.StatusCode, resp.String())
	}
	var report types.ExecutionReport
	if err := resp.JSON(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

// State fetches the host UI state.
func (c *TestClient) State(ctx context.Context) (*types.UIState, error) {
	resp, err := c.Get(ctx, "/state")
	if err != nil {
		return nil, err
	}
	var state types.UIState
	if err := resp.JSON(&state); err != nil {
		return nil, err
	}
	return &state, nil
}

// History fetches the history snapshot.
func (c *TestClient) History(ctx context.Context) (*types.HistorySnapshot, error) {
	resp, err := c.Get(ctx, "/history")
	if err != nil {
		return nil, err
	}
	var snap types.HistorySnapshot
	if err := resp.JSON(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Move posts to a history navigation endpoint such as "/history/undo" and
// reports whether the cursor moved.
func (c *TestClient) Move(ctx context.Context, path string) (bool, error) {
	resp, err := c.Post(ctx, path, "")
	if err != nil {
		return false, err
	}
	if !resp.IsSuccess() {
		return false, fmt.Errorf("move failed: %d %s", resp.StatusCode, resp.String())
	}
	var moved struct {
		Moved bool `json:"moved"`
	}
	if err := resp.JSON(&moved); err != nil {
		return false, err
	}
	return moved.Moved, nil
}

// ClearHistory deletes the history log.
func (c *TestClient) ClearHistory(ctx context.Context) error {
	resp, err := c.Delete(ctx, "/history")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("clear failed: %d", resp.StatusCode)
	}
	return nil
}
