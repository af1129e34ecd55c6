package nse

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/config"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/httputil"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client handles communication with the NSE. The exchange rejects
// requests without a browser-like session, so every data call goes
// through a cookie-bootstrapped session acquired from the landing page.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.NSEConfig

	// limiter spaces out archive requests; NSE throttles bursts.
	limiter *rate.Limiter

	mu        sync.Mutex
	session   bool
	sessionAt time.Time
}

// NewClient creates a new NSE client.
func NewClient(httpClient *httputil.Client, cfg config.NSEConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

// EnsureSession performs the cookie warm-up request against the landing
// page if the current session is missing or expired. All data endpoints
// call this first; the acquired cookies live in the shared jar.
func (c *Client) EnsureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session && time.Since(c.sessionAt) < c.cfg.SessionTTL {
		return nil
	}

	c.logger.Info("Bootstrapping NSE session")
	resp, err := c.httpClient.GetWithHeaders(ctx, c.cfg.BaseURL+"/", pageHeaders())
	if err != nil {
		return fmt.Errorf("session bootstrap failed: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("session bootstrap failed: status %d", resp.StatusCode)
	}

	c.session = true
	c.sessionAt = time.Now()
	return nil
}

// get fetches one data URL inside an established session, honoring the
// politeness limiter. A 404 response maps to ErrSourceUnavailable.
func (c *Client) get(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	if err := c.EnsureSession(ctx); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.GetWithHeaders(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		c.logger.WithField("url", url).Warn("NSE returned 404, data not available")
		return nil, fmt.Errorf("%w: 404 for %s", ErrSourceUnavailable, url)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d for %s", ErrSourceUnavailable, resp.StatusCode, url)
	}

	return resp, nil
}

// pageHeaders are the browser headers for HTML/file requests.
func pageHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Referer", "https://www.nseindia.com/")
	h.Set("Connection", "keep-alive")
	return h
}

// apiHeaders are the headers for the JSON API endpoints.
func apiHeaders() http.Header {
	h := pageHeaders()
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("X-Requested-With", "XMLHttpRequest")
	return h
}
