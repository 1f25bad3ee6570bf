package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/circuitbreaker"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	nrpkg "github.com/piresc/ukdrive/internal/pkg/newrelic"
)

// DefaultTimeout for HTTP requests
const DefaultTimeout = 10 * time.Second

// Config configures a Client
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	BearerToken string
	// Breakers guards each host with a circuit breaker when set
	Breakers *circuitbreaker.Manager
}

// Client is a JSON client for the tracking REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breakers   *circuitbreaker.Manager
}

// HTTPError is returned for responses with a status of 400 or above
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a new HTTP client
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.BearerToken,
		httpClient: &http.Client{Timeout: timeout},
		breakers:   config.Breakers,
	}
}

// PatchJSON sends body as JSON with PATCH and discards the response body
func (c *Client) PatchJSON(ctx context.Context, path string, body interface{}) error {
	return c.DoJSON(ctx, http.MethodPatch, path, body, nil)
}

// PostJSON sends body as JSON with POST and discards the response body
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}) error {
	return c.DoJSON(ctx, http.MethodPost, path, body, nil)
}

// GetJSON performs a GET request and decodes the JSON response into result
func (c *Client) GetJSON(ctx context.Context, path string, result interface{}) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, result)
}

// DoJSON performs a request with an optional JSON body and decodes the JSON
// response into result when result is not nil
func (c *Client) DoJSON(ctx context.Context, method, path string, body, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	call := func(ctx context.Context) error {
		resp, err := nrpkg.InstrumentHTTPRequest(ctx, req, func() (*http.Response, error) {
			return c.httpClient.Do(req)
		})
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
		}
		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	}

	logger.Debug("Making HTTP request",
		logger.String("method", method),
		logger.String("url", endpoint))

	if c.breakers == nil {
		return call(ctx)
	}
	return c.breakers.Execute(ctx, hostOf(endpoint), call)
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
