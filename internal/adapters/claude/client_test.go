package claude

import (
	"context"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/logger"
)

type fakeMsgs struct {
	resp *anthropic.Message
	err  error
	got  anthropic.MessageNewParams
}

func (f *fakeMsgs) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.got = params
	return f.resp, f.err
}

func newFakeClient(f *fakeMsgs) *Client {
	return &Client{msgs: f, model: "test-model", maxTk: 1234, log: *logger.Named("claude")}
}

func TestCompleteReturnsJoinedText(t *testing.T) {
	f := &fakeMsgs{resp: &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "Segment 0:\nBonjour"},
			{Type: "text", Text: "\nSegment 1:\nMonde"},
		},
	}}
	c := newFakeClient(f)

	out, err := c.Complete(context.Background(), "translate this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Segment 0:\nBonjour\nSegment 1:\nMonde" {
		t.Fatalf("out = %q", out)
	}
	if string(f.got.Model) != "test-model" || f.got.MaxTokens != 1234 {
		t.Fatalf("params = model %q maxTokens %d", f.got.Model, f.got.MaxTokens)
	}
	if len(f.got.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(f.got.Messages))
	}
}

func TestCompleteEmptyResponseIsMalformed(t *testing.T) {
	f := &fakeMsgs{resp: &anthropic.Message{}}
	c := newFakeClient(f)

	_, err := c.Complete(context.Background(), "p")
	if !perr.IsCode(err, perr.ErrorCodeMalformed) {
		t.Fatalf("err = %v, want Malformed", err)
	}
}

func apiError(status int) *anthropic.Error {
	req, _ := http.NewRequest(http.MethodPost, "https://api.anthropic.test/v1/messages", nil)
	return &anthropic.Error{
		StatusCode: status,
		Request:    req,
		Response:   &http.Response{StatusCode: status},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want perr.ErrorCode
	}{
		{"rate limited", apiError(http.StatusTooManyRequests), perr.ErrorCodeTooManyRequests},
		{"server error", apiError(http.StatusBadGateway), perr.ErrorCodeUnavailable},
		{"bad api key", apiError(http.StatusUnauthorized), perr.ErrorCodeInvalidArgument},
		{"refused", apiError(http.StatusBadRequest), perr.ErrorCodeContentPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if code := perr.CodeOf(got); code != tt.want {
				t.Fatalf("code = %v, want %v", code, tt.want)
			}
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	f := &fakeMsgs{err: context.DeadlineExceeded}
	c := newFakeClient(f)

	_, err := c.Complete(context.Background(), "p")
	if !perr.IsTransient(err) {
		t.Fatalf("err = %v, want transient", err)
	}
}
