// Package api is the HTTP client for the AskSQL backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint paths.
const (
	PathProcessPrompt = "/process_prompt"
	PathFetchLogs     = "/fetch-logs"
	PathDownloadDB    = "/download_db"
)

// Client talks to the backend. Requests have no timeout and are never
// retried; cancellation comes only from the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProcessPrompt asks the backend to generate a schema for prompt.
func (c *Client) ProcessPrompt(ctx context.Context, prompt, token string) (*Generation, error) {
	var resp promptResponse
	status, err := c.postJSON(ctx, PathProcessPrompt, PromptRequest{Prompt: prompt, Token: token}, &resp)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		msg := resp.Error
		if msg == "" {
			msg = "Failed to process prompt"
		}
		return nil, &Error{StatusCode: status, Message: msg}
	}
	if resp.Data == nil {
		return nil, &Error{StatusCode: status, Message: "Failed to process prompt"}
	}

	c.logger.Info("prompt processed",
		slog.Int("databases", len(resp.Data.DBStructure)),
		slog.Int("tables", resp.Data.DBStructure.TotalTables()),
		slog.String("file", resp.Data.DBFilePath),
	)
	return resp.Data, nil
}

// FetchLogs returns the history records for token in server order.
func (c *Client) FetchLogs(ctx context.Context, token string) ([]HistoryRecord, error) {
	var resp logsResponse
	status, err := c.postJSON(ctx, PathFetchLogs, LogsRequest{Token: token}, &resp)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, &Error{StatusCode: status, Message: resp.Error}
	}

	if resp.Logs == nil {
		return []HistoryRecord{}, nil
	}
	return resp.Logs, nil
}

// DownloadURL returns the direct-download URL for a generated db file.
func (c *Client) DownloadURL(path string) string {
	return c.baseURL + PathDownloadDB + "?path=" + url.QueryEscape(path)
}

// Download streams the generated db file at path into w and returns the
// number of bytes written.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(path), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Op: "download", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		return 0, &Error{StatusCode: resp.StatusCode, Message: er.Error}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &TransportError{Op: "download", Err: err}
	}
	return n, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("backend request", slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Op: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, &TransportError{Op: path, Err: fmt.Errorf("invalid response body: %w", err)}
	}
	return resp.StatusCode, nil
}
