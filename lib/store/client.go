// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package store

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
)

// ErrAuthFailed reports that the store rejected the configured
// credentials. It is permanent for the process lifetime.
var ErrAuthFailed = errors.New("store: authentication rejected")

// maxResponseBytes bounds how much of a response body the client will
// read. Store documents are small; anything larger is a server fault.
const maxResponseBytes = 1 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root of the document store's REST surface
	// (e.g. "https://store.example.com"). Document paths are
	// appended directly, with a ".json" suffix.
	BaseURL string

	// Email and Password are exchanged for an access token at
	// startup via the store's /auth endpoint.
	Email    string
	Password string

	// QueueDepth is the capacity of the pending-write queue. If
	// zero, a default of 16 is used.
	QueueDepth int

	// HTTPClient is used for all requests. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to the document store. Reads are synchronous; writes
// go through the background worker started by Run.
//
// The disabled flag is written only by Authenticate, which the caller
// runs before Run starts the worker, so no locking is needed.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	logger     *slog.Logger

	token    string
	disabled bool

	tasks       chan setTask
	completions chan Completion
}

// setTask is one queued write.
type setTask struct {
	id       uint64
	path     string
	document any
}

// Completion reports the outcome of one queued Set. Bytes is the size
// of the encoded document on success.
type Completion struct {
	TaskID uint64
	Bytes  int
	Err    error
}

// New creates a Client. It performs no network I/O; call Authenticate
// before Run.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("store: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("store: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	queueDepth := config.QueueDepth
	if queueDepth <= 0 {
		queueDepth = 16
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		email:       config.Email,
		password:    config.Password,
		httpClient:  httpClient,
		logger:      logger,
		tasks:       make(chan setTask, queueDepth),
		completions: make(chan Completion, queueDepth),
	}, nil
}

// Authenticate exchanges the configured email and password for an
// access token. A 401 or 403 response disables publishing for the
// process lifetime and returns ErrAuthFailed; any other failure is
// transient (the caller may retry or proceed unauthenticated against
// a store that allows it).
func (c *Client) Authenticate(ctx context.Context) error {
	if c.email == "" && c.password == "" {
		return nil
	}

	credentials := map[string]string{
		"email":    c.email,
		"password": c.password,
	}
	body, status, err := c.doRequest(ctx, http.MethodPost, "/auth", credentials)
	if err != nil {
		return fmt.Errorf("store: auth request failed: %w", err)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.disabled = true
		c.logger.Error("store credentials rejected, publishing disabled for process lifetime",
			"status", status,
		)
		return ErrAuthFailed
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("store: unexpected %d response from auth: %s", status, string(body))
	}

	var response struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("store: failed to parse auth response: %w", err)
	}
	if response.Token == "" {
		return fmt.Errorf("store: auth response carried no token")
	}
	c.token = response.Token
	return nil
}

// Disabled reports whether publishing has been permanently disabled
// by an authentication failure.
func (c *Client) Disabled() bool { return c.disabled }

// GetInt reads the integer document at path. The second return is
// false when the document does not exist (the store answers null or
// 404 for absent paths).
func (c *Client) GetInt(ctx context.Context, path string) (int, bool, error) {
	body, status, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, false, fmt.Errorf("store: get %s failed: %w", path, err)
	}
	if status == http.StatusNotFound {
		return 0, false, nil
	}
	if status < 200 || status >= 300 {
		return 0, false, fmt.Errorf("store: unexpected %d response from get %s: %s", status, path, string(body))
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return 0, false, nil
	}

	var value json.Number
	if err := json.Unmarshal(body, &value); err != nil {
		return 0, false, fmt.Errorf("store: non-numeric document at %s: %s", path, trimmed)
	}
	n, err := value.Int64()
	if err != nil {
		return 0, false, fmt.Errorf("store: non-integer document at %s: %s", path, trimmed)
	}
	return int(n), true, nil
}

// Set enqueues a write of document to path. The outcome arrives on
// Completions carrying taskID. Returns false when publishing is
// disabled or the queue is full; in both cases the write is dropped,
// matching the no-retry delivery policy.
func (c *Client) Set(path string, document any, taskID uint64) bool {
	if c.disabled {
		return false
	}
	select {
	case c.tasks <- setTask{id: taskID, path: path, document: document}:
		return true
	default:
		c.logger.Warn("store write queue full, dropping document", "path", path, "task_id", taskID)
		return false
	}
}

// Completions delivers the outcome of each queued Set. The engine
// drains it non-blocking; if it falls behind, the oldest completion
// is dropped rather than stalling the worker.
func (c *Client) Completions() <-chan Completion { return c.completions }

// Run ships queued writes until the context is cancelled. It runs in
// its own goroutine for the sensor's lifetime.
func (c *Client) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-c.tasks:
			n, err := c.put(ctx, task.path, task.document)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Warn("store write failed",
					"path", task.path,
					"task_id", task.id,
					"error", err,
				)
			}
			c.complete(Completion{TaskID: task.id, Bytes: n, Err: err})
		}
	}
}

// complete delivers one completion without blocking, dropping the
// oldest pending completion if the channel is full.
func (c *Client) complete(completion Completion) {
	for {
		select {
		case c.completions <- completion:
			return
		default:
		}
		select {
		case <-c.completions:
		default:
		}
	}
}

// put writes document to path and returns the encoded size.
func (c *Client) put(ctx context.Context, path string, document any) (int, error) {
	encoded, err := json.Marshal(document)
	if err != nil {
		return 0, fmt.Errorf("failed to encode document: %w", err)
	}

	requestURL := c.documentURL(path)
	request, err := http.NewRequestWithContext(ctx, http.MethodPut, requestURL, bytes.NewReader(encoded))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected %d response: %s", response.StatusCode, string(body))
	}
	return len(encoded), nil
}

// doRequest performs one JSON request against the store and returns
// the body and status. Unlike put, it does not treat non-2xx statuses
// as errors; callers interpret the status themselves.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any) ([]byte, int, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	requestURL := c.documentURL(path)
	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, response.StatusCode, nil
}

// documentURL maps a document path to its REST URL: the path is
// appended to the base URL with a ".json" suffix, plus the auth token
// when one is held.
func (c *Client) documentURL(path string) string {
	requestURL := c.baseURL + path + ".json"
	if c.token != "" {
		requestURL += "?auth=" + url.QueryEscape(c.token)
	}
	return requestURL
}
