// Package client talks to the inference API, waiting for it to become ready
// before every call.
package client

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

	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/llm"
	"katutubo-llm/pkg/logger"
)

const (
	DefaultMaxRetries    = 20
	DefaultRetryDelay    = 5 * time.Second
	DefaultHealthTimeout = 5 * time.Second
)

type Options struct {
	MaxRetries    int
	RetryDelay    time.Duration
	HealthTimeout time.Duration
	// RequestTimeout bounds a single API call; generation can take minutes.
	RequestTimeout time.Duration
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("API request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("API request failed: %d %s", e.StatusCode, e.Detail)
}

// ErrUnavailable is wrapped by the error returned when the service never
// reported ready.
var ErrUnavailable = errors.New("API service is not available")

type Client struct {
	baseURL string
	opts    Options
	health  *http.Client
	http    *http.Client
}

// New returns a client for baseURL. A zero RetryDelay is kept as is, so
// MaxRetries and HealthTimeout are the only defaulted options.
func New(baseURL string, opts Options) *Client {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = DefaultHealthTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		health:  &http.Client{Timeout: opts.HealthTimeout},
		http:    &http.Client{Timeout: opts.RequestTimeout},
	}
}

// Health reports whether /healthz answered 200 with ready=true.
func (c *Client) Health(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.health.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var body llm.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Ready, nil
}

// WaitReady polls Health up to MaxRetries times, sleeping RetryDelay after
// each failed attempt.
func (c *Client) WaitReady(ctx context.Context) error {
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		ready, err := c.Health(ctx)
		if err == nil && ready {
			return nil
		}
		logger.Info("Waiting for API... (Attempt %d/%d)", attempt, c.opts.MaxRetries)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.RetryDelay):
		}
	}
	logger.Warn("API did not start in time.")
	return status.New(status.ServiceUnavailable, ErrUnavailable)
}

// Root returns the service banner.
func (c *Client) Root(ctx context.Context) (llm.RootResponse, error) {
	var out llm.RootResponse
	err := c.safeRequest(ctx, http.MethodGet, "/", nil, &out)
	return out, err
}

// Infer sends prompt with the session history.
func (c *Client) Infer(ctx context.Context, prompt string, history llm.History) (llm.InferResponse, error) {
	if history == nil {
		history = llm.History{}
	}
	var out llm.InferResponse
	err := c.safeRequest(ctx, http.MethodPost, "/infer", llm.InferRequest{Prompt: prompt, History: history}, &out)
	return out, err
}

func (c *Client) safeRequest(ctx context.Context, method, endpoint string, body any, out any) error {
	if err := c.WaitReady(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail llm.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
