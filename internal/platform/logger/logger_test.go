package logger

import (
	"bytes"
	"context"
	"testing"

	kit "gcsbridge/internal/platform/testkit"
)

// Init is process-wide (sync.Once), so this file owns initialization and
// every test here shares the same buffer-backed root logger.
var buf bytes.Buffer

func initOnce() {
	Init(Options{
		Level:   "debug",
		Format:  "json",
		Service: "gcsbridge-test",
		Writer:  &buf,
	})
}

func TestInitAndGet(t *testing.T) {
	initOnce()
	buf.Reset()

	Get().Info().Str("k", "v").Msg("hello")
	out := buf.String()
	kit.MustContain(t, out, `"service":"gcsbridge-test"`)
	kit.MustContain(t, out, `"k":"v"`)
	kit.MustContain(t, out, `"message":"hello"`)
}

func TestNamed(t *testing.T) {
	initOnce()
	buf.Reset()

	Named("journal").Debug().Msg("polling")
	kit.MustContain(t, buf.String(), `"component":"journal"`)

	if Named("") != Get() {
		t.Fatalf("Named(\"\") should return the root logger")
	}
}

func TestContextEnrichment(t *testing.T) {
	initOnce()
	buf.Reset()

	ctx := WithTick(context.Background(), "tick-1")
	ctx = WithTask(ctx, "ev-9", "task-42")
	C(ctx).Warn().Msg("task failed")

	out := buf.String()
	kit.MustContain(t, out, `"tick_id":"tick-1"`)
	kit.MustContain(t, out, `"event_id":"ev-9"`)
	kit.MustContain(t, out, `"task_id":"task-42"`)
}

func TestContextEmptyValuesOmitted(t *testing.T) {
	initOnce()
	buf.Reset()

	ctx := WithTick(context.Background(), "")
	C(ctx).Info().Msg("plain")
	if bytes.Contains(buf.Bytes(), []byte("tick_id")) {
		t.Fatalf("empty tick id should not be attached")
	}
}
