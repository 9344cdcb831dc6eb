// Package ims exchanges Adobe IMS client credentials for short-lived access
// tokens used by the journaling and GCS clients.
package ims

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/logger"
)

// DefaultScope is the scope set IMS expects for server-to-server credentials
const DefaultScope = "AdobeID,openid,read_organizations,additional_info.projectedProductContext,additional_info.roles"

const (
	defaultTimeout   = 15 * time.Second
	defaultRetryBase = 500 * time.Millisecond
)

// Token is an IMS access token with its expiry instant
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Usable reports whether the token is still valid with margin to spare at now
func (t Token) Usable(now time.Time, margin time.Duration) bool {
	return t.Value != "" && now.Add(margin).Before(t.ExpiresAt)
}

// Options configures the IMS client
type Options struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string

	Timeout time.Duration

	// Zero MaxRetries means a single attempt; the poll loop's own retry
	// budget already re-drives transient token fetches
	MaxRetries int
	RetryBase  time.Duration
}

// Client fetches tokens from the IMS token endpoint
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates an IMS client with sane defaults
func NewClient(o Options) *Client {
	if o.Scope == "" {
		o.Scope = DefaultScope
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
		log:   *logger.Named("ims"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Fetch performs the client_credentials grant and returns a fresh token.
// 4xx responses mean the credentials are bad and come back as terminal
// credential errors; network failures and 5xx are retried with backoff.
func (c *Client) Fetch(ctx context.Context) (Token, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.opts.ClientID},
		"client_secret": {c.opts.ClientSecret},
		"scope":         {c.opts.Scope},
	}.Encode()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return Token{}, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.TokenURL, strings.NewReader(form))
		if err != nil {
			return Token{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "ims new request failed")
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempts >= c.opts.MaxRetries {
				return Token{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ims token endpoint unreachable")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("ims transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var tr tokenResponse
			err := json.NewDecoder(resp.Body).Decode(&tr)
			_ = resp.Body.Close()
			if err != nil {
				return Token{}, perr.Wrapf(err, perr.ErrorCodeMalformed, "ims token response undecodable")
			}
			if tr.AccessToken == "" || tr.ExpiresIn <= 0 {
				return Token{}, perr.Malformedf("ims token response missing access_token or expires_in")
			}
			tok := Token{
				Value:     tr.AccessToken,
				ExpiresAt: c.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
			}
			c.log.Debug().Time("expires_at", tok.ExpiresAt).Msg("ims token acquired")
			return tok, nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
			if attempts >= c.opts.MaxRetries {
				return Token{}, perr.Unavailablef("ims transient error %d", resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Int("status", resp.StatusCode).
				Msg("ims transient error retrying")
			c.sleep(back)
			attempts++
			continue
		default:
			// bad credentials or malformed grant; body tail kept for diagnostics,
			// the secret itself never appears in logs or errors
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return Token{}, perr.Credentialsf("ims rejected credential grant with status %d body %s",
				resp.StatusCode, string(tail))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase/time.Millisecond) << uint(attempt)
	if ceil := int64(30 * time.Second / time.Millisecond); ms > ceil {
		ms = ceil
	}
	return time.Duration(ms) * time.Millisecond
}
