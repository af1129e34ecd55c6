package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/logger"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/redis"
)

// Client is an HTTP client wrapper with retry logic and logging.
// All upstream requests go through this client.
type Client struct {
	httpClient   *http.Client
	logger       *logger.Logger
	retryConfig  RetryConfig
	rateLimiter  *redis.RateLimiter
	rateLimitCfg *redis.RateLimitConfig

	// sleep is time.Sleep unless replaced in tests.
	sleep func(time.Duration)
}

// RetryConfig holds retry configuration. The delay after a failed
// attempt n is InitialDelay * 2^(n-1): 2s, 4s, 8s with the defaults.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Enabled      bool
}

// New creates a new HTTP client with a cookie jar, so that session
// cookies acquired by a bootstrap request are reused on every
// subsequent request through the same client.
func New(log *logger.Logger, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: log,
		retryConfig: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			Enabled:      true,
		},
		sleep: time.Sleep,
	}
}

// WithRetry configures retry behavior.
func (c *Client) WithRetry(maxAttempts int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxAttempts = maxAttempts
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry.
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// WithRateLimiter sets a shared rate limiter for this client.
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	c.rateLimiter = limiter
	c.rateLimitCfg = &cfg
	return c
}

// Jar exposes the underlying cookie jar.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.GetWithHeaders(ctx, url, nil)
}

// GetWithHeaders performs a GET request with custom headers.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.do(req)
}

// do executes the request with retry logic and logging.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	url := req.URL.String()

	if c.rateLimiter != nil && c.rateLimitCfg != nil {
		if err := c.rateLimiter.Wait(req.Context(), *c.rateLimitCfg); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"method": req.Method,
		"url":    url,
	}).Debug("HTTP request started")

	var resp *http.Response
	var err error
	if c.retryConfig.Enabled {
		resp, err = c.doWithRetry(req)
	} else {
		resp, err = c.httpClient.Do(req)
	}

	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method":   req.Method,
			"url":      url,
			"duration": duration,
			"error":    err.Error(),
		}).Error("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      req.Method,
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// doWithRetry executes the request with exponential backoff. A 404 is
// permanent (the archive file for that date does not exist) and is
// returned immediately without retrying.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	delay := c.retryConfig.InitialDelay

	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		resp, err = c.httpClient.Do(req)

		if err == nil && resp.StatusCode == http.StatusNotFound {
			return resp, nil
		}
		if err == nil && !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err == nil {
			resp.Body.Close()
		}

		c.logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"delay":   delay,
			"url":     req.URL.String(),
		}).Warn("Retrying HTTP request")

		c.sleep(delay)
		delay *= 2
	}

	if err != nil {
		return nil, fmt.Errorf("all %d attempts failed: %w", c.retryConfig.MaxAttempts, err)
	}
	return nil, fmt.Errorf("all %d attempts failed: last status %d", c.retryConfig.MaxAttempts, resp.StatusCode)
}

// isRetryableStatus reports whether a response status warrants a retry.
func isRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
