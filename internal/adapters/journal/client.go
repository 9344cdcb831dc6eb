// Package journal reads the Adobe I/O journaling event log for GCS tasks.
// The log is consumed through an opaque continuation URL carried in the
// response Link header; 204 means the log is fully drained.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gcsbridge/internal/adapters/adobeio"
	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/logger"
)

// RawEvent is a single journal entry. Body is the GCS event payload,
// left opaque here and decoded by the classifier.
type RawEvent struct {
	ID   string
	Body json.RawMessage
}

// Page is one journaling response: the events plus the continuation cursor.
// Next is "" when the response carried no next link.
type Page struct {
	Events []RawEvent
	Next   string
}

// Options configures the journal client
type Options struct {
	BaseURL  string // events base, e.g. https://events-va6.adobe.io
	Endpoint string // journaling path under the base, without leading slash
	Limit    int    // page size requested on the initial fetch
}

// Client fetches journal pages through the shared Adobe I/O transport
type Client struct {
	api  *adobeio.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a journal client
func NewClient(api *adobeio.Client, o Options) *Client {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	return &Client{api: api, opts: o, log: *logger.Named("journal")}
}

type envelope struct {
	Events []struct {
		Position string `json:"position"`
		Event    struct {
			Body json.RawMessage `json:"body"`
		} `json:"event"`
	} `json:"events"`
}

// Fetch returns the next page of journal events. An empty cursor starts from
// the head of the log; otherwise cursor is the (possibly malformed)
// continuation URL from a previous page.
func (c *Client) Fetch(ctx context.Context, token, cursor string) (Page, error) {
	url := fmt.Sprintf("%s/%s?limit=%d", c.opts.BaseURL, c.opts.Endpoint, c.opts.Limit)
	if cursor != "" {
		url = FixURL(c.opts.BaseURL, cursor)
	}

	c.log.Debug().Str("url", url).Msg("polling journal")

	resp, err := c.api.Do(ctx, http.MethodGet, url, token, nil, "")
	if err != nil {
		return Page{}, perr.WithOp(err, "journal.fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	// drained: nothing new, keep polling from the same cursor
	if resp.StatusCode == http.StatusNoContent {
		return Page{Next: cursor}, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Page{}, perr.Wrapf(err, perr.ErrorCodeMalformed, "journal page undecodable")
	}

	page := Page{Next: ParseNext(resp.Header.Get("Link"))}
	for i, e := range env.Events {
		id := e.Position
		if id == "" {
			id = fmt.Sprintf("%s#%d", cursor, i)
		}
		page.Events = append(page.Events, RawEvent{ID: id, Body: e.Event.Body})
	}

	c.log.Debug().Int("events", len(page.Events)).Bool("has_next", page.Next != "").Msg("journal page fetched")
	return page, nil
}
