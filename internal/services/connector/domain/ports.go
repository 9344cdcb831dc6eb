package domain

import (
	"context"

	"gcsbridge/internal/core/classify"
)

// TokenPort mints fresh access tokens
type TokenPort interface {
	Fetch(ctx context.Context) (Token, error)
}

// JournalPort reads pages from the journaling event log
type JournalPort interface {
	Fetch(ctx context.Context, token, cursor string) (EventPage, error)
}

// ContentPort covers the GCS asset operations a task needs
type ContentPort interface {
	Assets(ctx context.Context, token string, task classify.Task) ([]Asset, error)
	Content(ctx context.Context, token, tenantID, objectKey string) ([]byte, error)
	FetchURL(ctx context.Context, token, assetURL string) ([]byte, error)
	Upload(ctx context.Context, token, tenantID, assetName, targetLocale string, content []byte) (string, error)
	Complete(ctx context.Context, token, projectID, taskID, assetName, targetLocale, tenantID, translatedURL string) error
}

// TranslatorPort produces a completion for one prompt
type TranslatorPort interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CursorStore persists the journal cursor between ticks
type CursorStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, cursor string) error
}

// AuditPort records terminal task outcomes; failures are telemetry-only and
// never affect the pipeline
type AuditPort interface {
	RecordTask(ctx context.Context, runID string, res TaskResult) error
}

// RunnerPort drives the poll loop
type RunnerPort interface {
	Run(ctx context.Context) error
	Tick(ctx context.Context) (TickReport, error)
	Status() Status
}
