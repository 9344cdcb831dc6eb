package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGConfig configures postgres connectivity
type PGConfig struct {
	Enabled  bool
	URL      string
	MaxConns int32

	// Guard/boot knobs
	PingRetries int           // default 20
	PingTimeout time.Duration // default 3s
}

// newPool is a seam so tests can swap pool construction
var newPool = pgxpool.NewWithConfig

// pgAdapter adapts *pgxpool.Pool to the store.SQL seam
type pgAdapter struct {
	pool *pgxpool.Pool
}

var _ SQL = (*pgAdapter)(nil)

func (a *pgAdapter) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := a.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (a *pgAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return a.pool.QueryRow(ctx, sql, args...)
}

// Ping verifies connectivity with Postgres
func (a *pgAdapter) Ping(ctx context.Context) error { return a.pool.Ping(ctx) }

// Close closes the pool
func (a *pgAdapter) Close() { a.pool.Close() }

// openPG opens a pgx pool and pings it with retry/backoff before publishing the adapter
func openPG(ctx context.Context, cfg PGConfig, s *Store) (SQL, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	retries := cfg.PingRetries
	if retries <= 0 {
		retries = 20
	}
	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < retries; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return &pgAdapter{pool: pool}, nil
		}
		if ctx.Err() != nil {
			pool.Close()
			return nil, ctx.Err()
		}
		s.Log.Debug().Err(lastErr).Dur("backoff", backoff).Msg("pg ping failed, retrying")
		time.Sleep(backoff)
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}

	pool.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", retries, lastErr)
}
