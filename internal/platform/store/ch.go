package store

import (
	"context"
	"errors"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientTag shows up in ClickHouse client info (e.g. "poller")
	ClientTag string
}

// chAdapter adapts a clickhouse-go connection to the store.Clickhouse seam
type chAdapter struct {
	conn driver.Conn
}

var _ Clickhouse = (*chAdapter)(nil)

// openCH opens a native clickhouse connection from a DSN
func openCH(ctx context.Context, cfg CHConfig) (Clickhouse, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.ClientInfo = buildClientInfo(cfg.ClientTag)
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &chAdapter{conn: conn}, nil
}

// Insert appends rows to table via a prepared batch
func (a *chAdapter) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if a == nil || a.conn == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	q := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ")"
	batch, err := a.conn.PrepareBatch(ctx, q)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := batch.Append(r...); err != nil {
			return err
		}
	}
	return batch.Send()
}

// Ping verifies connectivity with ClickHouse
func (a *chAdapter) Ping(ctx context.Context) error {
	if a == nil || a.conn == nil {
		return errors.New("store: nil clickhouse adapter")
	}
	return a.conn.Ping(ctx)
}

// Close closes the connection
func (a *chAdapter) Close() error {
	if a == nil || a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

// buildClientInfo returns a ClientInfo describing this process
func buildClientInfo(tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()

	type kv = struct{ Name, Version string }

	products := []kv{
		{Name: "gcsbridge", Version: safe(tag)},
		{Name: "go", Version: safe(runtime.Version())},
		{Name: "commit", Version: safe(vcsShortSHA())},
		{Name: "host", Version: safe(host)},
	}

	return clickhouse.ClientInfo{Products: products}
}

func vcsShortSHA() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}

func safe(s string) string {
	return strings.TrimSpace(s)
}
