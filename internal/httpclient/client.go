// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httpclient provides the rate-limited, retrying HTTP fetch
// primitive shared by all source parsers. One Client serves one source;
// its request-spacing gate is scoped to the instance.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// StatusError reports a non-retryable HTTP status. The fetch-all driver
// treats it as terminal for the source being crawled.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.Code, e.URL)
}

// IsTerminal reports whether err carries a non-retryable HTTP status.
func IsTerminal(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// transientError reports a retryable HTTP status (429 or 5xx).
type transientError struct {
	Code int
	URL  string
}

func (e *transientError) Error() string {
	return fmt.Sprintf("transient HTTP %d fetching %s", e.Code, e.URL)
}

// retryableStatus lists the HTTP statuses worth retrying.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client is a rate-gated HTTP client. Every call through one instance is
// spaced at least RequestDelay from the end of the previous call, so a
// caller may block for the delay plus any retry backoff.
type Client struct {
	httpClient *http.Client
	cfg        types.TransportConfig
	encoding   string
	log        logger.Logger

	mu       sync.Mutex
	lastDone time.Time

	closeOnce sync.Once
}

// New builds a Client for one source. encoding is the source's declared
// page charset; an empty string means utf-8.
func New(cfg types.TransportConfig, encoding string, log logger.Logger) *Client {
	cfg.SetDefaults()
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		encoding:   encoding,
		log:        log,
	}
}

// Get fetches url with optional query parameters and returns the decoded
// body text.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (string, error) {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}
	return c.do(ctx, http.MethodGet, rawURL, "")
}

// Post submits form data to url and returns the decoded body text.
func (c *Client) Post(ctx context.Context, rawURL string, form url.Values) (string, error) {
	return c.do(ctx, http.MethodPost, rawURL, form.Encode())
}

// Close releases idle connections. Safe to call more than once and safe
// when no request was ever made.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.httpClient.CloseIdleConnections()
	})
}

func (c *Client) do(ctx context.Context, method, rawURL, body string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryTimes; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.cfg.RetryDelay
			c.log.Debug("retrying request",
				logger.String("url", rawURL),
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		c.gate()
		text, err := c.doOnce(ctx, method, rawURL, body)
		if err == nil {
			return text, nil
		}
		if !retryable(ctx, err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("request failed after %d retries: %w", c.cfg.RetryTimes, lastErr)
}

// gate blocks until at least RequestDelay has passed since the previous
// request finished, then claims the slot.
func (c *Client) gate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.RequestDelay > 0 && !c.lastDone.IsZero() {
		if wait := c.cfg.RequestDelay - time.Since(c.lastDone); wait > 0 {
			time.Sleep(wait)
		}
	}
	c.lastDone = time.Now()
}

func (c *Client) doOnce(ctx context.Context, method, rawURL, body string) (string, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		if retryableStatus[resp.StatusCode] {
			return "", &transientError{Code: resp.StatusCode, URL: rawURL}
		}
		return "", &StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body of %s: %w", rawURL, err)
	}
	return decodeBody(raw, c.encoding, resp.Header.Get("Content-Type")), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Connection", "keep-alive")
}

// retryable reports whether err is a transient transport failure:
// a retryable HTTP status, a timeout, or a connection-level error.
// A deadline error counts as fatal only when it came from the caller's
// context; a per-request timeout from http.Client.Timeout also satisfies
// errors.Is(err, context.DeadlineExceeded), so the caller's ctx decides.
func retryable(ctx context.Context, err error) bool {
	if IsTerminal(err) {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var te *transientError
	return errors.As(err, &te)
}
