// Package rawg is a rate-limited client for the RAWG video game database API.
package rawg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gamedash/gamedash-server/internal/metrics"
	"github.com/gamedash/gamedash-server/internal/ratelimit"
)

const (
	DefaultBaseURL = "https://api.rawg.io/api"

	defaultRPS          = 5.0
	defaultBurst        = 5
	defaultFetchTimeout = 10 * time.Second

	// Upper bound on a single response body.
	maxBodyBytes = 8 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	APIKey       string
	FetchTimeout time.Duration
	RPS          float64
	Burst        int
}

// Client is a rate-limited RAWG API client.
type Client struct {
	http         *http.Client
	baseURL      *url.URL
	apiKey       string
	fetchTimeout time.Duration
	limiter      *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// New creates a RAWG client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}

	return &Client{
		// Per-fetch deadlines come from the request context; the transport
		// timeout only guards against a stuck connection.
		http:         &http.Client{Timeout: 2 * cfg.FetchTimeout},
		baseURL:      base,
		apiKey:       cfg.APIKey,
		fetchTimeout: cfg.FetchTimeout,
		limiter:      ratelimit.New(cfg.RPS, cfg.Burst),
		logger:       logger,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// doRequest executes a rate-limited GET with its own fetch timeout.
func (c *Client) doRequest(ctx context.Context, op, path string, query url.Values) (body []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = statusLabel(err)
		}
		metrics.RecordUpstream(op, status, time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx, c.baseURL.Host); err != nil {
		return nil, classifyTransportError(fmt.Errorf("rate limit wait: %w", err))
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.apiKey)

	u := *c.baseURL
	u.Path = u.Path + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "GameDash/1.0")

	c.logger.Debug("rawg request", "op", op, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadRequest
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
}

// classifyTransportError maps an expired fetch deadline to ErrTimeout.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrServer):
		return "server_error"
	default:
		return "error"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
