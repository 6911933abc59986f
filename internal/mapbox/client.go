// Package mapbox talks to the Mapbox Styles and Static Images APIs.
// Requests are not retried; unexpected status codes surface as *TransportError.
package mapbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL  = "https://api.mapbox.com"
	DefaultUsername = "mapbox"
)

// Config configures a Client.
type Config struct {
	BaseURL     string       // defaults to DefaultBaseURL
	Credentials Credentials  // zero value means DefaultCredentials
	HTTPClient  *http.Client // defaults to http.DefaultClient
	Logger      *slog.Logger // optional

	// Observer, when set, is called after every request with the response
	// status (0 if the request failed) and the elapsed time.
	Observer func(method string, status int, elapsed time.Duration)
}

// Client is a Mapbox API client. It is safe for concurrent use.
type Client struct {
	baseURL  string
	creds    Credentials
	http     *http.Client
	logger   *slog.Logger
	observer func(method string, status int, elapsed time.Duration)
}

// NewClient creates a client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.Credentials = DefaultCredentials().With(cfg.Credentials.PublicToken, cfg.Credentials.SecretToken)
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		creds:    cfg.Credentials,
		http:     cfg.HTTPClient,
		logger:   cfg.Logger,
		observer: cfg.Observer,
	}
}

// Credentials returns the tokens used by c.
func (c *Client) Credentials() Credentials {
	return c.creds
}

// do sends the request and returns the response body when the status is want.
func (c *Client) do(ctx context.Context, method, rawURL string, payload any, want int) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, 0, time.Since(start))
		return nil, fmt.Errorf("mapbox: %s %s: %w", method, RedactURL(rawURL), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.observe(method, resp.StatusCode, time.Since(start))
	c.logger.DebugContext(ctx, "mapbox request",
		"method", method,
		"url", RedactURL(rawURL),
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode != want {
		return nil, &TransportError{
			Method:     method,
			StatusCode: resp.StatusCode,
			Body:       string(data),
			URL:        rawURL,
		}
	}
	return data, nil
}

func (c *Client) observe(method string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer(method, status, elapsed)
	}
}

func decode[T any](data []byte) (T, error) {
	var v T
	if len(bytes.TrimSpace(data)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode response: %w", err)
	}
	return v, nil
}
