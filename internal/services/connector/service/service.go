// Package service implements the connector poll loop: fetch a journal page,
// classify and process every event, then advance the cursor. The cursor only
// moves once the whole page is terminally handled, so an aborted tick replays
// the same page and delivery is at-least-once.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gcsbridge/internal/core/classify"
	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/logger"
	"gcsbridge/internal/services/connector/domain"
)

// Config holds the poll loop settings
type Config struct {
	PollInterval time.Duration
	MaxRetries   int
	RetryBase    time.Duration
	TokenMargin  time.Duration
	DryRun       bool
}

// Deps are the collaborators the service drives
type Deps struct {
	Tokens     domain.TokenPort
	Journal    domain.JournalPort
	Content    domain.ContentPort
	Translator domain.TranslatorPort
	Cursor     domain.CursorStore
	Audit      domain.AuditPort
	Log        *logger.Logger
}

// Svc is the connector service
type Svc struct {
	cfg    Config
	tokens *tokenManager
	deps   Deps
	log    logger.Logger

	now   func() time.Time
	sleep func(time.Duration)
	newID func() string

	status statusTracker
}

// New constructs the service
func New(cfg Config, deps Deps) *Svc {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.TokenMargin <= 0 {
		cfg.TokenMargin = 60 * time.Second
	}
	log := deps.Log
	if log == nil {
		log = logger.Named("connector")
	}
	return &Svc{
		cfg:    cfg,
		tokens: newTokenManager(deps.Tokens, cfg.TokenMargin),
		deps:   deps,
		log:    *log,
		now:    time.Now,
		sleep:  time.Sleep,
		newID:  uuid.NewString,
	}
}

// Run drives ticks on the poll interval until ctx is done. Tick errors are
// logged and counted and the loop keeps going, with one exception: a
// credential rejection by the token endpoint is terminal and returned.
func (s *Svc) Run(ctx context.Context) error {
	s.status.setRunning(true)
	defer s.status.setRunning(false)

	s.log.Info().Dur("interval", s.cfg.PollInterval).Bool("dryrun", s.cfg.DryRun).Msg("poll loop started")

	t := time.NewTicker(s.cfg.PollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("poll loop stopped")
			return ctx.Err()
		case <-t.C:
			if _, err := s.Tick(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if perr.IsCredentials(err) {
					// bad credentials cannot heal on retry; surface the error
					// so the process exits non-zero
					s.log.Error().Err(err).Msg("credentials rejected, poll loop stopping")
					return err
				}
				s.log.Warn().Err(err).Msg("tick aborted, cursor preserved")
			}
		}
	}
}

// Tick runs one poll cycle. On error the cursor is untouched and the same
// page replays next tick.
func (s *Svc) Tick(ctx context.Context) (domain.TickReport, error) {
	report := domain.TickReport{RunID: s.newID(), Started: s.now()}
	ctx = logger.WithTick(ctx, report.RunID)
	log := logger.C(ctx)

	defer func() {
		report.Duration = s.now().Sub(report.Started)
		s.status.record(report)
	}()

	cursor, err := s.deps.Cursor.Load(ctx)
	if err != nil {
		s.status.tickErr()
		return report, perr.WithOp(err, "connector.cursor.load")
	}

	r := s.newRetrier()
	page, err := s.fetchPage(ctx, r, cursor)
	if err != nil {
		s.status.tickErr()
		return report, perr.WithOp(err, "connector.fetch")
	}
	report.Events = len(page.Events)

	for _, ev := range page.Events {
		res := s.handleEvent(ctx, r, ev)
		report.Results = append(report.Results, res.TaskResult)

		switch res.Outcome {
		case domain.OutcomeCompleted:
			report.Completed++
		case domain.OutcomeIgnored:
			report.Ignored++
		case domain.OutcomeFailed:
			if res.abort != nil {
				// transient or auth exhaustion: stop here so the cursor
				// stays put and the page replays
				s.status.tickErr()
				return report, perr.WithOp(res.abort, "connector.process")
			}
			report.Failed++
		}

		if s.deps.Audit != nil {
			if aerr := s.deps.Audit.RecordTask(ctx, report.RunID, res.TaskResult); aerr != nil {
				log.Warn().Err(aerr).Msg("audit write failed")
			}
		}
	}

	if page.Next != "" && page.Next != cursor {
		if err := s.deps.Cursor.Save(ctx, page.Next); err != nil {
			s.status.tickErr()
			return report, perr.WithOp(err, "connector.cursor.save")
		}
		report.CursorAdvanced = true
		s.status.setCursor(page.Next)
	}

	if report.Events > 0 {
		log.Info().
			Int("events", report.Events).
			Int("completed", report.Completed).
			Int("ignored", report.Ignored).
			Int("failed", report.Failed).
			Bool("cursor_advanced", report.CursorAdvanced).
			Msg("tick finished")
	}
	return report, nil
}

// Status returns a snapshot of the connector state
func (s *Svc) Status() domain.Status {
	return s.status.snapshot()
}

func (s *Svc) newRetrier() *retrier {
	return &retrier{max: s.cfg.MaxRetries, base: s.cfg.RetryBase, sleep: s.sleep}
}

// fetchPage reads one journal page, refreshing the token once on rejection
// and retrying transient failures within the tick budget.
func (s *Svc) fetchPage(ctx context.Context, r *retrier, cursor string) (domain.EventPage, error) {
	var page domain.EventPage
	err := s.call(ctx, r, func(token string) error {
		var err error
		page, err = s.deps.Journal.Fetch(ctx, token, cursor)
		return err
	})
	return page, err
}

// call runs fn with a valid token. An auth rejection invalidates the cached
// token and retries exactly once with a fresh one; transient failures draw
// from the tick's retry budget; anything else returns as-is.
func (s *Svc) call(ctx context.Context, r *retrier, fn func(token string) error) error {
	refreshed := false
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		token, err := s.tokens.get(ctx)
		if err != nil {
			if perr.IsTransient(err) && r.next() {
				continue
			}
			return err
		}
		err = fn(token)
		if err == nil {
			return nil
		}
		if perr.IsAuth(err) && !refreshed {
			refreshed = true
			s.tokens.invalidate()
			logger.C(ctx).Warn().Msg("token rejected, refreshing once")
			continue
		}
		if perr.IsTransient(err) && r.next() {
			continue
		}
		return err
	}
}

// eventResult carries the terminal record plus an abort error when the
// failure was not permanent and the tick must stop
type eventResult struct {
	domain.TaskResult
	abort error
}

func (s *Svc) handleEvent(ctx context.Context, r *retrier, ev domain.Event) (res eventResult) {
	start := s.now()
	defer func() { res.Elapsed = s.now().Sub(start) }()

	task, cerr := classify.Classify(ev.ID, ev.Body)
	res = eventResult{TaskResult: domain.TaskResult{
		EventID: ev.ID,
		TaskID:  task.TaskID,
		Kind:    task.Kind.String(),
	}}

	if task.Kind == classify.Ignored {
		res.Outcome = domain.OutcomeIgnored
		if cerr != nil {
			res.Err = cerr.Error()
			logger.C(ctx).Warn().Err(cerr).Str("event_id", ev.ID).Msg("event ignored")
		}
		return res
	}

	ctx = logger.WithTask(ctx, ev.ID, task.TaskID)

	if s.cfg.DryRun {
		logger.C(ctx).Info().Str("kind", task.Kind.String()).Msg("dryrun, task not processed")
		res.Outcome = domain.OutcomeCompleted
		return res
	}

	if err := s.processTask(ctx, r, task); err != nil {
		res.Outcome = domain.OutcomeFailed
		res.Err = err.Error()
		if perr.IsFatal(err) {
			// permanent: log, skip, and let the cursor move past it
			logger.C(ctx).Error().Err(err).Msg("task failed permanently, skipping")
			return res
		}
		res.abort = err
		return res
	}

	res.Outcome = domain.OutcomeCompleted
	return res
}
