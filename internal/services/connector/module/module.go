// Package module assembles the connector: IMS auth, journaling, GCS content,
// the Anthropic translator, cursor persistence, and the poll loop service.
package module

import (
	"context"

	"gcsbridge/internal/adapters/adobeio"
	"gcsbridge/internal/adapters/claude"
	"gcsbridge/internal/adapters/gcs"
	"gcsbridge/internal/adapters/ims"
	"gcsbridge/internal/adapters/journal"
	"gcsbridge/internal/platform/config"
	"gcsbridge/internal/platform/logger"
	"gcsbridge/internal/platform/store"
	"gcsbridge/internal/services/connector/domain"
	"gcsbridge/internal/services/connector/repo"
	"gcsbridge/internal/services/connector/service"
)

// Deps are the module's external collaborators
type Deps struct {
	Cfg   config.Conf
	Store *store.Store
}

// Module owns the wired connector
type Module struct {
	opts   Options
	runner domain.RunnerPort
	cursor domain.CursorStore
}

// New wires the connector from config. When the store carries Postgres the
// cursor survives restarts; otherwise it lives in memory and the journal
// replays from the head after a restart. ClickHouse, when present, receives
// the task audit trail.
func New(ctx context.Context, deps Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	log := logger.Named("connector")

	// transport retries stay off: the service's per-tick retrier is the
	// single retry state machine for every remote call
	api := adobeio.NewClient(adobeio.Options{
		ClientID: opts.ClientID,
		OrgID:    opts.OrgID,
		Timeout:  opts.HTTPTimeout,
	})

	imsClient := ims.NewClient(ims.Options{
		TokenURL:     opts.TokenURL,
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Scope:        opts.Scope,
	})

	journalClient := journal.NewClient(api, journal.Options{
		BaseURL:  opts.EventsBaseURL,
		Endpoint: opts.JournalingEndpoint,
		Limit:    opts.PageLimit,
	})

	gcsClient := gcs.NewClient(api, gcs.Options{BaseURL: opts.GCSBaseURL})

	translator := claude.NewClient(claude.Options{
		APIKey:    opts.AnthropicAPIKey,
		BaseURL:   opts.AnthropicBaseURL,
		Model:     opts.Model,
		MaxTokens: int64(opts.MaxTokens),
	})

	var cursor domain.CursorStore
	if deps.Store != nil && deps.Store.PG != nil {
		pg := repo.NewPG(deps.Store.PG)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		cursor = pg
		log.Info().Msg("cursor persisted in postgres")
	} else {
		cursor = repo.NewMemory()
		log.Warn().Msg("no database wired, cursor is in-memory and restarts replay the journal")
	}

	var audit domain.AuditPort
	if deps.Store != nil && deps.Store.CH != nil {
		audit = repo.NewAudit(deps.Store.CH)
		log.Info().Msg("task audit trail enabled")
	}

	svc := service.New(service.Config{
		PollInterval: opts.PollInterval,
		MaxRetries:   opts.MaxRetries,
		RetryBase:    opts.RetryBase,
		TokenMargin:  opts.TokenMargin,
		DryRun:       opts.DryRun,
	}, service.Deps{
		Tokens:     tokenSource{ims: imsClient},
		Journal:    journalSource{j: journalClient},
		Content:    contentSource{g: gcsClient},
		Translator: translator,
		Cursor:     cursor,
		Audit:      audit,
		Log:        log,
	})

	return &Module{opts: opts, runner: svc, cursor: cursor}, nil
}

// Runner exposes the poll loop
func (m *Module) Runner() domain.RunnerPort { return m.runner }

// Name identifies the module
func (m *Module) Name() string { return "connector" }
