// Package claude wraps the Anthropic Messages API for translation prompts.
// Retry policy lives in the poll loop, so the SDK's own retries are disabled
// and failures are classified into the shared error taxonomy instead.
package claude

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/logger"
)

const defaultModel = string(anthropic.ModelClaude3_5HaikuLatest)

// Options configures the translator
type Options struct {
	APIKey    string
	BaseURL   string // override for tests; empty uses the SDK default
	Model     string
	MaxTokens int64
	Timeout   time.Duration

	// HTTPClient overrides the transport, used by tests
	HTTPClient *http.Client
}

// Client calls the Messages API with a single user prompt per translation
type Client struct {
	msgs  messageCreator
	model string
	maxTk int64
	log   logger.Logger
}

// messageCreator is the SDK seam the tests fake out
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// NewClient creates a translator client
func NewClient(o Options) *Client {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 4000
	}
	if o.Timeout <= 0 {
		o.Timeout = 120 * time.Second
	}

	ropts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(o.Timeout),
	}
	if o.BaseURL != "" {
		ropts = append(ropts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		ropts = append(ropts, option.WithHTTPClient(o.HTTPClient))
	}

	sdk := anthropic.NewClient(ropts...)
	return &Client{
		msgs:  &sdk.Messages,
		model: o.Model,
		maxTk: o.MaxTokens,
		log:   *logger.Named("claude"),
	}
}

// Complete sends prompt as a single user message and returns the
// concatenated text blocks of the response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.msgs.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTk,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := sb.String()
	if out == "" {
		return "", perr.Malformedf("model response carried no text content")
	}

	c.log.Debug().
		Str("model", c.model).
		Int64("input_tokens", msg.Usage.InputTokens).
		Int64("output_tokens", msg.Usage.OutputTokens).
		Msg("translation completion finished")
	return out, nil
}

// classify maps SDK errors onto the shared taxonomy: rate limits and server
// errors are retryable, auth means a bad API key and is terminal for the task,
// other client errors (including refusals) are fatal.
func classify(err error) error {
	var apierr *anthropic.Error
	if !errors.As(err, &apierr) {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "anthropic api unreachable")
	}
	switch {
	case apierr.StatusCode == http.StatusTooManyRequests:
		return perr.Wrap(err, perr.ErrorCodeTooManyRequests, "anthropic api rate limited")
	case apierr.StatusCode >= 500:
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "anthropic api server error")
	case apierr.StatusCode == http.StatusUnauthorized || apierr.StatusCode == http.StatusForbidden:
		// distinct from Adobe token auth; refreshing the IMS token cannot fix this
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "anthropic api key rejected")
	default:
		return perr.Wrap(err, perr.ErrorCodeContentPolicy, "anthropic api refused request")
	}
}
