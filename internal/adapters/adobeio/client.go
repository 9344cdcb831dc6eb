// Package adobeio provides a resilient HTTP client for Adobe I/O REST APIs
// (journaling and GCS). Every request carries the bearer token plus the
// x-api-key / x-ims-org-id headers Adobe requires.
package adobeio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUA        = "gcsbridge-poller"
	defaultRetryBase = 500 * time.Millisecond
	backoffCeiling   = 30 * time.Second
)

// Options configures the Client
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// Adobe identity headers sent on every call
	ClientID string // x-api-key
	OrgID    string // x-ims-org-id

	// Retry config for transient and rate limited responses. Zero MaxRetries
	// means a single attempt: the poll loop carries its own retry budget, so
	// transport retries stay off unless the client is used standalone.
	// 401/403 are never retried here; the caller refreshes the token instead.
	MaxRetries int
	RetryBase  time.Duration
}

// Client is a minimal Adobe I/O REST client with retry and backoff
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("adobeio"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Do issues a request with Adobe auth headers, retries, and rate limit handling.
// body may be nil; it is re-sent verbatim on retries. The caller owns resp.Body.
func (c *Client) Do(ctx context.Context, method, url, token string, body []byte, contentType string) (*http.Response, error) {
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rd)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "adobeio new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Authorization", "Bearer "+token)
		if c.opts.ClientID != "" {
			req.Header.Set("x-api-key", c.opts.ClientID)
		}
		if c.opts.OrgID != "" {
			req.Header.Set("x-ims-org-id", c.opts.OrgID)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "adobeio %s %s failed", method, url)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("adobeio transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("adobeio http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// not retried here; the poll loop refreshes the token and retries once
			_ = drainAndClose(resp.Body)
			return nil, perr.Unauthorizedf("adobeio %s rejected with status %d", url, resp.StatusCode)
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.TooManyf("adobeio rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("adobeio rate limited backing off")
			_ = drainAndClose(resp.Body)
			c.sleep(wait)
			attempts++
			continue
		case resp.StatusCode >= 500:
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.Unavailablef("adobeio transient server error %d", resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Int("status", resp.StatusCode).
				Msg("adobeio transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue
		default:
			// permanent 4xx: read a small tail for diagnostics then return
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.FromHTTPStatus(resp.StatusCode),
				"adobeio unexpected status %d body %s", resp.StatusCode, string(tail))
		}
	}
}

// DoJSON issues a request and decodes a JSON response body into v
func (c *Client) DoJSON(ctx context.Context, method, url, token string, body []byte, contentType string, v any) error {
	resp, err := c.Do(ctx, method, url, token, body, contentType)
	if err != nil {
		return err
	}
	defer func() { _ = drainAndClose(resp.Body) }()
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeMalformed, "adobeio %s returned undecodable body", url)
	}
	return nil
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(backoffCeiling / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

// retryAfter parses a seconds-valued Retry-After header; 0 when absent/invalid
func retryAfter(h http.Header) time.Duration {
	s := h.Get("Retry-After")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
