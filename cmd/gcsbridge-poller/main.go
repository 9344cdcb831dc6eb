package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"gcsbridge/internal/ops"
	"gcsbridge/internal/platform/config"
	"gcsbridge/internal/platform/logger"
	"gcsbridge/internal/platform/store"
	connmod "gcsbridge/internal/services/connector/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	opsCfg := root.Prefix("OPS_")

	l := logger.Get()

	var (
		fMode   = flag.String("mode", "worker", "poller mode: worker | once")
		fDryRun = flag.Bool("dryrun", false, "classify events but skip translation and submission")
	)
	flag.Parse()

	if *fDryRun {
		_ = os.Setenv("CONNECTOR_DRYRUN", "1")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres and clickhouse are both optional: without them the cursor is
	// in-memory and no audit trail is written
	st, err := store.Open(ctx, store.Config{
		AppName: "gcsbridge-poller",
		PG: store.PGConfig{
			Enabled:  pgCfg.MayString("DBURL", "") != "",
			URL:      pgCfg.MayString("DBURL", ""),
			MaxConns: int32(pgCfg.MayInt("MAX_CONNS", 4)),
		},
		CH: store.CHConfig{
			Enabled:   chCfg.MayString("DBURL", "") != "",
			URL:       chCfg.MayString("DBURL", ""),
			ClientTag: "poller",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	mod, err := connmod.New(ctx, connmod.Deps{Cfg: root, Store: st})
	if err != nil {
		l.Panic().Err(err).Msg("connector wiring failed")
	}
	runner := mod.Runner()

	if *fMode == "once" {
		report, err := runner.Tick(ctx)
		if err != nil {
			l.Error().Err(err).Msg("tick failed")
			os.Exit(1)
		}
		l.Info().
			Int("events", report.Events).
			Int("completed", report.Completed).
			Int("ignored", report.Ignored).
			Int("failed", report.Failed).
			Msg("single tick finished")
		return
	}

	if port := opsCfg.MayInt("PORT", 0); port > 0 {
		srv := ops.New(ops.Options{Port: port}, runner.Status, st.Guard)
		go func() {
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				l.Error().Err(err).Msg("ops server stopped")
			}
		}()
	}

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		l.Panic().Err(err).Msg("poll loop stopped")
	}
}
