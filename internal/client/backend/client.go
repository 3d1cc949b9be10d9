// AngelaMos | 2026
// client.go

// Package backend is the HTTP client for the TaskFlow API. It exposes three
// sub-clients: Auth (sessions, sign-in/out, change notifications), Tasks,
// and Profiles. All calls decode the server's response envelope and surface
// failures as *APIError.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	BaseURL string
	Logger  *slog.Logger
	// Storage persists the refresh token between runs. Nil disables
	// persistence; sessions then live only as long as the process.
	Storage SessionStorage
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	Auth     *Auth
	Tasks    *Tasks
	Profiles *Profiles
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
		logger:  logger,
	}

	c.Auth = newAuth(c, cfg.Storage, logger)
	c.Tasks = &Tasks{client: c}
	c.Profiles = &Profiles{client: c}

	return c
}

// APIError is a structured backend rejection: a non-2xx response with the
// server's error code and message attached.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend error: status %d", e.Status)
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do issues a request and decodes the envelope's data field into out. A nil
// out discards the payload. An empty token sends the request anonymously.
func (c *Client) do(
	ctx context.Context,
	method, path, token string,
	body, out any,
) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		method,
		c.baseURL+path,
		reqBody,
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		//nolint:errcheck // drain for connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}

	return nil
}
