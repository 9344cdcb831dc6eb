// Package repo provides cursor persistence and audit bindings for the
// connector. The Postgres store survives restarts; the memory store keeps
// the documented at-least-once behavior when no database is wired in.
package repo

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"

	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/store"
)

// PG persists the journal cursor in Postgres
type PG struct {
	db store.SQL
}

// NewPG returns a Postgres cursor store
func NewPG(db store.SQL) *PG { return &PG{db: db} }

// Migrate creates the cursor table when missing
func (r *PG) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS connector_cursor (
			id         smallint PRIMARY KEY,
			cursor     text NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "cursor table migrate failed")
	}
	return nil
}

// Load returns the persisted cursor, or "" when none was saved yet
func (r *PG) Load(ctx context.Context) (string, error) {
	var cursor string
	err := r.db.QueryRow(ctx, `SELECT cursor FROM connector_cursor WHERE id = 1`).Scan(&cursor)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeDB, "cursor load failed")
	}
	return cursor, nil
}

// Save upserts the cursor
func (r *PG) Save(ctx context.Context, cursor string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO connector_cursor (id, cursor, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET cursor = EXCLUDED.cursor, updated_at = now()
	`, cursor)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "cursor save failed")
	}
	return nil
}

// Memory is an in-process cursor store. Losing it on restart replays the
// journal from the head, which GCS-side task state absorbs.
type Memory struct {
	mu     sync.Mutex
	cursor string
}

// NewMemory returns an in-process cursor store
func NewMemory() *Memory { return &Memory{} }

// Load returns the held cursor
func (m *Memory) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor, nil
}

// Save replaces the held cursor
func (m *Memory) Save(ctx context.Context, cursor string) error {
	m.mu.Lock()
	m.cursor = cursor
	m.mu.Unlock()
	return nil
}
